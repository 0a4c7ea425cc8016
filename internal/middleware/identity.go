package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/baristalabs/coffee/backend/internal/model/account"
	"github.com/baristalabs/coffee/backend/internal/store"
	"github.com/baristalabs/coffee/backend/pkg/utils"
)

type contextKey string

const userContextKey contextKey = "coffee.user"

// Identity resolves the caller from the X-User-ID header against the
// account store. Real session management belongs to the auth
// collaborator in front of this service; here the identity header is
// trusted as-is. Requests without an identity get 401.
func Identity(accounts store.AccountStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get("X-User-ID"))
			if id == "" {
				utils.RespondError(w, http.StatusUnauthorized, "not authenticated")
				return
			}

			user, err := accounts.Resolve(r.Context(), id, strings.TrimSpace(r.Header.Get("X-User-Name")))
			if err != nil {
				utils.RespondError(w, http.StatusInternalServerError, "failed to resolve account")
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFrom extracts the resolved caller placed by Identity.
func UserFrom(ctx context.Context) (account.User, bool) {
	user, ok := ctx.Value(userContextKey).(account.User)
	return user, ok
}
