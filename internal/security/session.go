package security

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrUnauthorized is the single outcome for every bearer-token failure.
// Callers deliberately cannot distinguish "expired" from "malformed".
var ErrUnauthorized = errors.New("invalid or expired token")

type sessionClaims struct {
	WalletAddress string `json:"wallet_address"`
	jwt.RegisteredClaims
}

// SessionManager mints and verifies the stateless session tokens handed out
// after a successful wallet sign-in. There is no revocation list; a token
// dies only by expiry.
type SessionManager struct {
	secrets SecretSource
	ttl     time.Duration
}

func NewSessionManager(secrets SecretSource, ttl time.Duration) *SessionManager {
	return &SessionManager{secrets: secrets, ttl: ttl}
}

func (m *SessionManager) Mint(ctx context.Context, walletAddress string) (string, error) {
	secret, err := m.secrets.Secret(ctx)
	if err != nil {
		return "", err
	}
	now := time.Now()
	claims := sessionClaims{
		WalletAddress: walletAddress,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   walletAddress,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// VerifyBearer accepts either a bare token or an Authorization header value
// with the "Bearer " scheme and returns the bound wallet address.
func (m *SessionManager) VerifyBearer(ctx context.Context, bearer string) (string, error) {
	token := strings.TrimSpace(bearer)
	if after, ok := strings.CutPrefix(token, "Bearer "); ok {
		token = strings.TrimSpace(after)
	}
	if token == "" {
		return "", ErrUnauthorized
	}

	secret, err := m.secrets.Secret(ctx)
	if err != nil {
		return "", err
	}

	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid || claims.WalletAddress == "" {
		return "", ErrUnauthorized
	}
	return claims.WalletAddress, nil
}
