package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"worldfund-api/internal/observability"
	"worldfund-api/internal/repository"
	"worldfund-api/internal/worldid"
)

// ProofVerifier is the cloud verification surface of the worldid client.
type ProofVerifier interface {
	VerifyProof(ctx context.Context, req worldid.VerifyRequest) (*worldid.VerifyResult, error)
	TransactionStatusByID(ctx context.Context, txID string) (*worldid.TransactionStatus, error)
}

type ProofInput struct {
	MerkleRoot        string `json:"merkle_root"`
	NullifierHash     string `json:"nullifier_hash"`
	Proof             string `json:"proof"`
	VerificationLevel string `json:"verification_level"`
	Signal            string `json:"signal"`
}

type ProofResult struct {
	Verified          bool   `json:"verified"`
	NullifierHash     string `json:"nullifierHash"`
	VerificationLevel string `json:"verificationLevel"`
}

// WorldIDService submits uniqueness proofs for cloud verification and
// records successful outcomes on the caller's user record.
type WorldIDService struct {
	client   ProofVerifier
	users    repository.UserRepository
	actionID string
	logger   *slog.Logger
}

func NewWorldIDService(client ProofVerifier, users repository.UserRepository, actionID string, logger *slog.Logger) *WorldIDService {
	return &WorldIDService{client: client, users: users, actionID: actionID, logger: logger}
}

func (s *WorldIDService) VerifyProof(ctx context.Context, walletAddress string, input ProofInput) (*ProofResult, error) {
	if input.MerkleRoot == "" || input.NullifierHash == "" || input.Proof == "" || input.VerificationLevel == "" {
		observability.RecordProofEvent(ctx, "bad_request")
		return nil, ErrMissingFields
	}

	_, err := s.client.VerifyProof(ctx, worldid.VerifyRequest{
		MerkleRoot:        input.MerkleRoot,
		NullifierHash:     input.NullifierHash,
		Proof:             input.Proof,
		VerificationLevel: input.VerificationLevel,
		Action:            s.actionID,
		Signal:            input.Signal,
	})
	if err != nil {
		if apiErr, ok := worldid.IsVerifierRejection(err); ok {
			observability.RecordProofEvent(ctx, "rejected")
			return nil, &ProofRejectedError{Code: apiErr.Code, Detail: apiErr.Detail}
		}
		observability.RecordProofEvent(ctx, "upstream_error")
		return nil, fmt.Errorf("%w: %v", ErrVerifierUnavailable, err)
	}

	if err := s.users.MarkWorldIDVerified(walletAddress, input.NullifierHash, s.actionID, input.Signal, time.Now().UTC()); err != nil {
		observability.RecordProofEvent(ctx, "record_error")
		return nil, fmt.Errorf("record verification: %w", err)
	}

	observability.RecordProofEvent(ctx, "success")
	s.logger.InfoContext(ctx, "world id proof verified", "wallet", walletAddress, "action", s.actionID)
	return &ProofResult{
		Verified:          true,
		NullifierHash:     input.NullifierHash,
		VerificationLevel: input.VerificationLevel,
	}, nil
}

func (s *WorldIDService) TransactionStatus(ctx context.Context, txID string) (*worldid.TransactionStatus, error) {
	if txID == "" {
		return nil, ErrMissingFields
	}
	return s.client.TransactionStatusByID(ctx, txID)
}
