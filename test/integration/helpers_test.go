package integration

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"worldfund-api/internal/database"
	"worldfund-api/internal/domain"
	"worldfund-api/internal/http/handler"
	"worldfund-api/internal/http/middleware"
	"worldfund-api/internal/nonce"
	"worldfund-api/internal/repository"
	"worldfund-api/internal/security"
	"worldfund-api/internal/service"
	"worldfund-api/internal/siwe"
	"worldfund-api/internal/worldid"
)

const (
	testDomain   = "fund.example.com"
	testChainID  = int64(480)
	testContract = "0x2cFc85d8E48F8EAB294be644d9E25C3030863003"
	testDecimals = 18
)

var dbSeq atomic.Int64

type receiptStub struct {
	mu sync.Mutex
	fn func(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

func (s *receiptStub) set(fn func(ctx context.Context, txHash common.Hash) (*types.Receipt, error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fn = fn
}

func (s *receiptStub) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	s.mu.Lock()
	fn := s.fn
	s.mu.Unlock()
	if fn == nil {
		return nil, fmt.Errorf("no receipt stub configured")
	}
	return fn(ctx, txHash)
}

type testEnv struct {
	BaseURL  string
	Client   *http.Client
	DB       *gorm.DB
	Receipts *receiptStub
	Redis    *miniredis.Miniredis
}

// newTestServer wires the full stack against sqlite, miniredis, a stubbed
// receipt fetcher and an httptest Worldcoin API.
func newTestServer(t *testing.T, worldIDHandler http.HandlerFunc) *testEnv {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:integration_%s_%d?mode=memory&cache=shared", name, dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	if worldIDHandler == nil {
		worldIDHandler = func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"nullifier_hash":"0xstub","action":"donate-once"}`))
		}
	}
	worldIDSrv := httptest.NewServer(worldIDHandler)
	t.Cleanup(worldIDSrv.Close)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	nonces := nonce.NewRedisStore(redisClient, 5*time.Minute)
	verifier := siwe.NewVerifier(nonces, []string{testDomain}, log)
	sessions := security.NewSessionManager(security.StaticSecretSource("integration-test-secret-0123456789ab"), time.Hour)
	users := repository.NewUserRepository(db)
	campaigns := repository.NewCampaignRepository(db)
	receipts := &receiptStub{}

	authSvc := service.NewAuthService(nonces, verifier, users, sessions, log)
	worldIDSvc := service.NewWorldIDService(worldid.NewClient(worldIDSrv.URL, "app_test"), users, "donate-once", log)
	donationSvc := service.NewDonationService(campaigns, receipts, testChainID, testContract, testDecimals, log)

	limiter := middleware.NewRateLimiter(middleware.NewRedisFixedWindowLimiter(redisClient, "rl:auth"), 1000, time.Minute, middleware.FailClosed)
	router := handler.NewRouter(handler.RouterConfig{
		Auth:           handler.NewAuthHandler(authSvc, worldIDSvc),
		Donations:      handler.NewDonationHandler(donationSvc),
		Sessions:       sessions,
		AuthLimiter:    limiter,
		AllowedOrigins: []string{"https://" + testDomain},
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testEnv{
		BaseURL:  srv.URL,
		Client:   srv.Client(),
		DB:       db,
		Receipts: receipts,
		Redis:    mr,
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any, headers map[string]string) (*http.Response, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return resp, env
}

func buildSignInMessage(address, nonceValue string) string {
	return fmt.Sprintf("%s wants you to sign in with your Ethereum account:\n%s\n\nSign in to WorldFund\n\nURI: https://%s\nVersion: 1\nChain ID: %d\nNonce: %s\nIssued At: %s",
		testDomain, address, testDomain, testChainID, nonceValue, time.Now().UTC().Format(time.RFC3339))
}

func signMessage(t *testing.T, key *ecdsa.PrivateKey, message string) string {
	t.Helper()
	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	sig[64] += 27
	return hexutil.Encode(sig)
}

// signIn walks the whole challenge/response flow and returns a live session
// token plus the wallet it belongs to.
func signIn(t *testing.T, env *testEnv) (token, address string) {
	t.Helper()

	resp, body := doJSON(t, env.Client, http.MethodGet, env.BaseURL+"/api/v1/auth/nonce", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("nonce: status %d", resp.StatusCode)
	}
	var noncePayload struct {
		Nonce string `json:"nonce"`
	}
	if err := json.Unmarshal(body.Data, &noncePayload); err != nil {
		t.Fatalf("decode nonce: %v", err)
	}

	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	address = crypto.PubkeyToAddress(key.PublicKey).Hex()
	message := buildSignInMessage(address, noncePayload.Nonce)

	resp, body = doJSON(t, env.Client, http.MethodPost, env.BaseURL+"/api/v1/auth/verify-signature", map[string]string{
		"message":   message,
		"signature": signMessage(t, key, message),
	}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("verify-signature: status %d, error %+v", resp.StatusCode, body.Error)
	}
	var authPayload struct {
		Token         string `json:"token"`
		WalletAddress string `json:"walletAddress"`
	}
	if err := json.Unmarshal(body.Data, &authPayload); err != nil {
		t.Fatalf("decode auth payload: %v", err)
	}
	if authPayload.WalletAddress != address {
		t.Fatalf("recovered wallet %q, signed with %q", authPayload.WalletAddress, address)
	}
	return authPayload.Token, address
}

func seedCampaign(t *testing.T, db *gorm.DB, owner string) *domain.Campaign {
	t.Helper()
	campaign := &domain.Campaign{
		ID:       "camp-" + strings.ToLower(t.Name()),
		OwnerID:  owner,
		Title:    "Integration campaign",
		Goal:     100,
		Currency: "WLD",
		Status:   domain.CampaignStatusActive,
	}
	if err := db.Create(campaign).Error; err != nil {
		t.Fatalf("seed campaign: %v", err)
	}
	return campaign
}

func transferLog(contract, from, to string, value string) *types.Log {
	topic := crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))
	v, ok := new(big.Int).SetString(value, 10)
	if !ok {
		panic("bad value: " + value)
	}
	return &types.Log{
		Address: common.HexToAddress(contract),
		Topics: []common.Hash{
			topic,
			common.BytesToHash(common.LeftPadBytes(common.HexToAddress(from).Bytes(), 32)),
			common.BytesToHash(common.LeftPadBytes(common.HexToAddress(to).Bytes(), 32)),
		},
		Data: common.LeftPadBytes(v.Bytes(), 32),
	}
}
