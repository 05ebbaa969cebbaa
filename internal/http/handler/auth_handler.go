package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"worldfund-api/internal/http/middleware"
	"worldfund-api/internal/http/response"
	"worldfund-api/internal/service"
	"worldfund-api/internal/siwe"
	"worldfund-api/internal/worldid"
)

type AuthHandler struct {
	authSvc    *service.AuthService
	worldIDSvc *service.WorldIDService
}

func NewAuthHandler(authSvc *service.AuthService, worldIDSvc *service.WorldIDService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, worldIDSvc: worldIDSvc}
}

// Nonce issues a fresh single-use sign-in challenge.
func (h *AuthHandler) Nonce(w http.ResponseWriter, r *http.Request) {
	nonce, err := h.authSvc.IssueNonce(r.Context())
	if err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to issue nonce", nil)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{"nonce": nonce})
}

// VerifySignature completes the challenge/response sign-in and returns a
// session token for the recovered wallet.
func (h *AuthHandler) VerifySignature(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message   string `json:"message"`
		Signature string `json:"signature"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}
	if req.Message == "" || req.Signature == "" {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "message and signature are required", nil)
		return
	}

	result, err := h.authSvc.VerifySignedAuth(r.Context(), req.Message, req.Signature, r.Header.Get("Origin"))
	if err != nil {
		switch {
		case errors.Is(err, siwe.ErrInvalidMessage):
			response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "malformed sign-in message", nil)
		// Nonce, domain and signature rejections mean the whole sign-in
		// flow must restart, so they are forbidden rather than unauthorized.
		case errors.Is(err, siwe.ErrNonceInvalid):
			response.Error(w, r, http.StatusForbidden, "NONCE_INVALID", "nonce is unknown, expired or already used", nil)
		case errors.Is(err, siwe.ErrDomainRejected):
			response.Error(w, r, http.StatusForbidden, "DOMAIN_REJECTED", "sign-in message domain is not allowed", nil)
		case errors.Is(err, siwe.ErrSignatureInvalid):
			response.Error(w, r, http.StatusForbidden, "SIGNATURE_INVALID", "signature verification failed", nil)
		default:
			response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "sign-in failed", nil)
		}
		return
	}

	response.JSON(w, r, http.StatusOK, map[string]any{
		"token":         result.Token,
		"walletAddress": result.WalletAddress,
	})
}

// VerifyWorldID forwards a uniqueness proof to the cloud verifier and marks
// the session's wallet verified on success.
func (h *AuthHandler) VerifyWorldID(w http.ResponseWriter, r *http.Request) {
	wallet, ok := middleware.WalletFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing session", nil)
		return
	}

	var req service.ProofInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}

	result, err := h.worldIDSvc.VerifyProof(r.Context(), wallet, req)
	if err != nil {
		var rejected *service.ProofRejectedError
		switch {
		case errors.Is(err, service.ErrMissingFields):
			response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "merkle_root, nullifier_hash, proof and verification_level are required", nil)
		case errors.As(err, &rejected):
			// The verifier's own code and detail pass through unchanged.
			response.Error(w, r, http.StatusBadRequest, rejected.Code, rejected.Detail, nil)
		case errors.Is(err, service.ErrVerifierUnavailable):
			response.Error(w, r, http.StatusBadGateway, "UPSTREAM_ERROR", "proof verification is unavailable", nil)
		default:
			// A verified proof we failed to record locally is our fault,
			// not the verifier's.
			response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to record verification", nil)
		}
		return
	}

	response.JSON(w, r, http.StatusOK, result)
}

// MiniKitTxStatus resolves a wallet-app transaction id into its on-chain
// status and hash.
func (h *AuthHandler) MiniKitTxStatus(w http.ResponseWriter, r *http.Request) {
	txID := chi.URLParam(r, "txID")

	status, err := h.worldIDSvc.TransactionStatus(r.Context(), txID)
	if err != nil {
		if errors.Is(err, service.ErrMissingFields) {
			response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "transaction id is required", nil)
			return
		}
		var apiErr *worldid.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "transaction not found", nil)
			return
		}
		response.Error(w, r, http.StatusBadGateway, "UPSTREAM_ERROR", "transaction lookup is unavailable", nil)
		return
	}

	response.JSON(w, r, http.StatusOK, status)
}
