package middleware

import (
	"context"
	"net/http"

	"worldfund-api/internal/http/response"
	"worldfund-api/internal/security"
)

type contextKey string

const walletContextKey contextKey = "wallet_address"

// WalletFromContext returns the authenticated wallet address placed on the
// request context by RequireSession.
func WalletFromContext(ctx context.Context) (string, bool) {
	wallet, ok := ctx.Value(walletContextKey).(string)
	return wallet, ok && wallet != ""
}

// RequireSession verifies the Authorization bearer token and stores the
// wallet address it was minted for on the request context. Every failure
// is the same 401; callers learn nothing about why a token was refused.
func RequireSession(sessions *security.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wallet, err := sessions.VerifyBearer(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				response.Error(w, r, http.StatusUnauthorized, "INVALID_OR_EXPIRED_TOKEN", "invalid or expired token", nil)
				return
			}
			ctx := context.WithValue(r.Context(), walletContextKey, wallet)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
