// Package siwe validates EIP-4361 sign-in messages against the nonce store
// and the configured origin allow-list.
package siwe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	siwego "github.com/spruceid/siwe-go"

	"worldfund-api/internal/nonce"
	"worldfund-api/internal/observability"
)

var (
	ErrInvalidMessage   = errors.New("invalid sign-in message format")
	ErrNonceInvalid     = errors.New("invalid or expired nonce")
	ErrDomainRejected   = errors.New("sign-in domain not allowed")
	ErrSignatureInvalid = errors.New("signature verification failed")
)

type Verifier struct {
	nonces         nonce.Store
	allowedDomains map[string]struct{}
	logger         *slog.Logger
}

// NewVerifier accepts the configured origins as-is; entries are reduced to
// their host form because a message's domain field never carries a scheme.
func NewVerifier(nonces nonce.Store, allowedDomains []string, logger *slog.Logger) *Verifier {
	allowed := make(map[string]struct{}, len(allowedDomains))
	for _, d := range allowedDomains {
		allowed[stripScheme(d)] = struct{}{}
	}
	return &Verifier{nonces: nonces, allowedDomains: allowed, logger: logger}
}

func stripScheme(origin string) string {
	origin = strings.TrimPrefix(origin, "https://")
	origin = strings.TrimPrefix(origin, "http://")
	return strings.TrimSuffix(origin, "/")
}

// Verify runs the full authentication pass and returns the verified wallet
// address. The order is load-bearing: the nonce burns before the signature
// is checked, so a failed attempt still costs the caller their challenge and
// brute-force attempts stay bounded.
func (v *Verifier) Verify(ctx context.Context, message, signature, requestOrigin string) (string, error) {
	msg, err := siwego.ParseMessage(message)
	if err != nil {
		observability.RecordAuthEvent(ctx, "parse", "invalid")
		return "", fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}

	if err := v.nonces.Consume(ctx, msg.GetNonce()); err != nil {
		if errors.Is(err, nonce.ErrNotFound) {
			observability.RecordAuthEvent(ctx, "nonce", "rejected")
			return "", ErrNonceInvalid
		}
		observability.RecordAuthEvent(ctx, "nonce", "error")
		return "", err
	}

	domain := msg.GetDomain()
	if _, ok := v.allowedDomains[domain]; !ok {
		observability.RecordAuthEvent(ctx, "domain", "rejected")
		return "", fmt.Errorf("%w: %s", ErrDomainRejected, domain)
	}
	// Divergence between the message's declared domain and the request
	// origin is tolerated for proxied deployments, but it is worth a trace.
	if requestOrigin != "" && stripScheme(requestOrigin) != domain {
		v.logger.WarnContext(ctx, "sign-in domain differs from request origin",
			"message_domain", domain, "request_origin", requestOrigin)
	}

	if _, err := msg.Verify(signature, nil, nil, nil); err != nil {
		observability.RecordAuthEvent(ctx, "signature", "rejected")
		return "", fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	}

	observability.RecordAuthEvent(ctx, "signature", "success")
	return msg.GetAddress().Hex(), nil
}
