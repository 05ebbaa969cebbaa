// Package worldid talks to the Worldcoin developer API: cloud verification
// of uniqueness proofs and MiniKit transaction status lookups. External
// payloads are decoded into explicit success/error variants before any
// field is trusted.
package worldid

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const DefaultBaseURL = "https://developer.worldcoin.org"

// VerifyRequest is the proof payload forwarded to the cloud verifier.
type VerifyRequest struct {
	MerkleRoot        string `json:"merkle_root"`
	NullifierHash     string `json:"nullifier_hash"`
	Proof             string `json:"proof"`
	VerificationLevel string `json:"verification_level,omitempty"`
	Action            string `json:"action"`
	Signal            string `json:"signal"`
}

// VerifyResult is the success variant of the verifier's response.
type VerifyResult struct {
	NullifierHash string `json:"nullifier_hash"`
	Action        string `json:"action"`
	CreatedAt     string `json:"created_at"`
}

// APIError is the error variant; Code and Detail pass through to the caller
// so the client can distinguish "already verified" from a bad proof.
type APIError struct {
	StatusCode int
	Code       string `json:"code"`
	Detail     string `json:"detail"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("worldcoin api: %s (%s)", e.Detail, e.Code)
}

// TransactionStatus is the MiniKit transaction lookup result, used to map a
// Worldcoin transaction id onto an on-chain hash.
type TransactionStatus struct {
	TransactionStatus string `json:"transaction_status"`
	TransactionHash   string `json:"transaction_hash"`
	ErrorMessage      string `json:"error_message"`
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	appID      string
}

func NewClient(baseURL, appID string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    baseURL,
		appID:      appID,
	}
}

// VerifyProof submits a uniqueness proof for cloud verification. A non-2xx
// response decodes into *APIError; transport failures return as-is so the
// caller can classify them as upstream trouble.
func (c *Client) VerifyProof(ctx context.Context, req VerifyRequest) (*VerifyResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode proof payload: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/verify/%s", c.baseURL, c.appID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call proof verifier: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Code: "verification_failed", Detail: "unknown verification error"}
		// Best effort: an undecodable error body keeps the defaults.
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		return nil, apiErr
	}

	var result VerifyResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode verifier response: %w", err)
	}
	if result.NullifierHash == "" {
		result.NullifierHash = req.NullifierHash
	}
	return &result, nil
}

// TransactionStatusByID resolves a MiniKit transaction id submitted by the
// wallet app into its current status and on-chain hash.
func (c *Client) TransactionStatusByID(ctx context.Context, txID string) (*TransactionStatus, error) {
	url := fmt.Sprintf("%s/api/v2/minikit/transaction/%s?app_id=%s", c.baseURL, txID, c.appID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call minikit api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Code: "transaction_lookup_failed", Detail: resp.Status}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		return nil, apiErr
	}

	var status TransactionStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("decode minikit response: %w", err)
	}
	return &status, nil
}

// IsVerifierRejection reports whether err is the verifier refusing the
// proof, as opposed to the service being unreachable.
func IsVerifierRejection(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
		return apiErr, true
	}
	return nil, false
}
