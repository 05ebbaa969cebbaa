package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"worldfund-api/internal/http/middleware"
	"worldfund-api/internal/http/response"
	"worldfund-api/internal/security"
)

type RouterConfig struct {
	Auth           *AuthHandler
	Donations      *DonationHandler
	Sessions       *security.SessionManager
	AuthLimiter    *middleware.RateLimiter
	AllowedOrigins []string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		response.JSON(w, req, http.StatusOK, map[string]any{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		// The challenge endpoints are the cheapest way to fill redis with
		// nonces, so they carry their own per-IP limit.
		r.Group(func(r chi.Router) {
			if cfg.AuthLimiter != nil {
				r.Use(cfg.AuthLimiter.Middleware())
			}
			r.Get("/auth/nonce", cfg.Auth.Nonce)
			r.Post("/auth/verify-signature", cfg.Auth.VerifySignature)
		})

		r.Get("/minikit-tx-status/{txID}", cfg.Auth.MiniKitTxStatus)
		r.Get("/campaigns/{campaignID}", cfg.Donations.GetCampaign)
		r.Get("/users/{walletAddress}/campaigns", cfg.Donations.ListUserCampaigns)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession(cfg.Sessions))
			r.Post("/verify-worldid", cfg.Auth.VerifyWorldID)
			r.Post("/campaigns/{campaignID}/donate", cfg.Donations.Donate)
		})
	})

	return r
}
