package httpx

import (
	"context"
	"net/http"

	"surveyhub/internal/domains"

	"github.com/gorilla/mux"
)

const accountContextKey contextKey = "account"

type AccountLookup interface {
	GetAccountByID(ctx context.Context, id int64) (domains.Account, error)
}

// RequireAdmin loads the authenticated account and rejects anyone not
// flagged admin with a 403. Runs after Protected.
func RequireAdmin(provider AccountLookup) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sub, ok := UserIDFromContext(r.Context())
			if !ok {
				Error(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			account, err := provider.GetAccountByID(r.Context(), sub)
			if err != nil {
				Error(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			if !account.IsAdmin {
				Error(w, http.StatusForbidden, "Admin access required")
				return
			}

			ctx := context.WithValue(r.Context(), accountContextKey, account)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func AccountFromContext(ctx context.Context) (domains.Account, bool) {
	account, ok := ctx.Value(accountContextKey).(domains.Account)
	return account, ok
}
