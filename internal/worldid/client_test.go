package worldid

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestVerifyProofSuccess(t *testing.T) {
	var gotPath string
	var gotBody VerifyRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(VerifyResult{NullifierHash: "0xnull", Action: "verify-account"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "app_test")
	result, err := c.VerifyProof(context.Background(), VerifyRequest{
		MerkleRoot:    "0xroot",
		NullifierHash: "0xnull",
		Proof:         "0xproof",
		Action:        "verify-account",
		Signal:        "0xwallet",
	})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if gotPath != "/api/v1/verify/app_test" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotBody.Action != "verify-account" || gotBody.Signal != "0xwallet" {
		t.Fatalf("unexpected request body %+v", gotBody)
	}
	if result.NullifierHash != "0xnull" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestVerifyProofRejectionPassesThroughDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"code":   "already_verified",
			"detail": "This person has already verified for this action.",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "app_test")
	_, err := c.VerifyProof(context.Background(), VerifyRequest{Action: "verify-account"})
	if err == nil {
		t.Fatal("expected rejection")
	}
	apiErr, ok := IsVerifierRejection(err)
	if !ok {
		t.Fatalf("expected verifier rejection, got %v", err)
	}
	if apiErr.Code != "already_verified" {
		t.Fatalf("unexpected code %q", apiErr.Code)
	}
}

func TestVerifyProofServerErrorIsNotRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "app_test")
	_, err := c.VerifyProof(context.Background(), VerifyRequest{})
	if err == nil {
		t.Fatal("expected error")
	}
	if _, ok := IsVerifierRejection(err); ok {
		t.Fatal("5xx must not classify as a proof rejection")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected APIError with 502, got %v", err)
	}
}

func TestVerifyProofUndecodableErrorBodyKeepsDefaults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "app_test")
	_, err := c.VerifyProof(context.Background(), VerifyRequest{})
	apiErr, ok := IsVerifierRejection(err)
	if !ok {
		t.Fatalf("expected rejection, got %v", err)
	}
	if apiErr.Code != "verification_failed" {
		t.Fatalf("expected default code, got %q", apiErr.Code)
	}
}

func TestTransactionStatusByID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v2/minikit/transaction/tx_123" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("app_id"); got != "app_test" {
			t.Errorf("unexpected app_id %q", got)
		}
		_ = json.NewEncoder(w).Encode(TransactionStatus{
			TransactionStatus: "mined",
			TransactionHash:   "0xabc",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "app_test")
	status, err := c.TransactionStatusByID(context.Background(), "tx_123")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.TransactionStatus != "mined" || status.TransactionHash != "0xabc" {
		t.Fatalf("unexpected status %+v", status)
	}
}
