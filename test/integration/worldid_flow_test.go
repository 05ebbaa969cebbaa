package integration

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"worldfund-api/internal/domain"
)

func TestWorldIDVerifyMarksUser(t *testing.T) {
	var seenPath string
	var seenBody map[string]any
	env := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		seenPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&seenBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"nullifier_hash":"0xnull","action":"donate-once"}`))
	})
	token, address := signIn(t, env)

	resp, body := doJSON(t, env.Client, http.MethodPost, env.BaseURL+"/api/v1/verify-worldid", map[string]string{
		"merkle_root":        "0xroot",
		"nullifier_hash":     "0xnull",
		"proof":              "0xproof",
		"verification_level": "orb",
		"signal":             address,
	}, map[string]string{"Authorization": "Bearer " + token})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("verify-worldid: status %d, error %+v", resp.StatusCode, body.Error)
	}

	if !strings.HasPrefix(seenPath, "/api/v1/verify/") {
		t.Errorf("verifier path = %q", seenPath)
	}
	if seenBody["action"] != "donate-once" {
		t.Errorf("action forwarded = %v", seenBody["action"])
	}
	if seenBody["signal"] != address {
		t.Errorf("signal forwarded = %v", seenBody["signal"])
	}

	var user domain.User
	if err := env.DB.First(&user, "wallet_address = ?", address).Error; err != nil {
		t.Fatal(err)
	}
	if !user.IsWorldIDVerified {
		t.Error("user not marked verified")
	}
	if user.WorldIDNullifier != "0xnull" {
		t.Errorf("nullifier = %q", user.WorldIDNullifier)
	}
}

func TestWorldIDRejectionPassesThrough(t *testing.T) {
	env := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":"already_verified","detail":"this person has already verified for this action"}`))
	})
	token, address := signIn(t, env)

	resp, body := doJSON(t, env.Client, http.MethodPost, env.BaseURL+"/api/v1/verify-worldid", map[string]string{
		"merkle_root":        "0xroot",
		"nullifier_hash":     "0xnull",
		"proof":              "0xproof",
		"verification_level": "orb",
	}, map[string]string{"Authorization": "Bearer " + token})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if body.Error == nil || body.Error.Code != "already_verified" {
		t.Fatalf("error = %+v, want already_verified passthrough", body.Error)
	}

	var user domain.User
	if err := env.DB.First(&user, "wallet_address = ?", address).Error; err != nil {
		t.Fatal(err)
	}
	if user.IsWorldIDVerified {
		t.Error("rejected proof must not mark the user verified")
	}
}

func TestWorldIDUpstreamOutageIsBadGateway(t *testing.T) {
	env := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	token, _ := signIn(t, env)

	resp, body := doJSON(t, env.Client, http.MethodPost, env.BaseURL+"/api/v1/verify-worldid", map[string]string{
		"merkle_root":        "0xroot",
		"nullifier_hash":     "0xnull",
		"proof":              "0xproof",
		"verification_level": "orb",
	}, map[string]string{"Authorization": "Bearer " + token})
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", resp.StatusCode)
	}
	if body.Error == nil || body.Error.Code != "UPSTREAM_ERROR" {
		t.Fatalf("error = %+v", body.Error)
	}
}

func TestMiniKitTransactionStatus(t *testing.T) {
	env := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/api/v2/minikit/transaction/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"transaction_status":"mined","transaction_hash":"0xdeadbeef"}`))
	})

	resp, body := doJSON(t, env.Client, http.MethodGet, env.BaseURL+"/api/v1/minikit-tx-status/tx-42", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var status struct {
		TransactionStatus string `json:"transaction_status"`
		TransactionHash   string `json:"transaction_hash"`
	}
	if err := json.Unmarshal(body.Data, &status); err != nil {
		t.Fatal(err)
	}
	if status.TransactionStatus != "mined" || status.TransactionHash != "0xdeadbeef" {
		t.Errorf("status = %+v", status)
	}
}
