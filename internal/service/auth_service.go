package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"worldfund-api/internal/nonce"
	"worldfund-api/internal/repository"
	"worldfund-api/internal/security"
)

// MessageVerifier is the signed-message verification pass; implemented by
// the siwe package.
type MessageVerifier interface {
	Verify(ctx context.Context, message, signature, requestOrigin string) (string, error)
}

// AuthService drives the challenge/response sign-in flow: issue a nonce,
// verify the signed message, upsert the user, mint a session token.
type AuthService struct {
	nonces   nonce.Store
	verifier MessageVerifier
	users    repository.UserRepository
	sessions *security.SessionManager
	logger   *slog.Logger
}

func NewAuthService(nonces nonce.Store, verifier MessageVerifier, users repository.UserRepository, sessions *security.SessionManager, logger *slog.Logger) *AuthService {
	return &AuthService{
		nonces:   nonces,
		verifier: verifier,
		users:    users,
		sessions: sessions,
		logger:   logger,
	}
}

func (s *AuthService) IssueNonce(ctx context.Context) (string, error) {
	return s.nonces.Issue(ctx)
}

type AuthResult struct {
	Token         string
	WalletAddress string
}

func (s *AuthService) VerifySignedAuth(ctx context.Context, message, signature, requestOrigin string) (*AuthResult, error) {
	wallet, err := s.verifier.Verify(ctx, message, signature, requestOrigin)
	if err != nil {
		return nil, err
	}

	if err := s.users.UpsertOnLogin(wallet, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}

	token, err := s.sessions.Mint(ctx, wallet)
	if err != nil {
		return nil, fmt.Errorf("mint session token: %w", err)
	}

	s.logger.InfoContext(ctx, "wallet authenticated", "wallet", wallet)
	return &AuthResult{Token: token, WalletAddress: wallet}, nil
}
