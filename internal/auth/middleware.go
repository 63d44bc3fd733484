package auth

import (
	"errors"
	"net/http"

	"github.com/todump/todump/internal/domain"
)

// Middleware rejects requests without a valid bearer token and stores the
// resolved user id in the request context. onError writes the rejection.
func Middleware(a Authenticator, onError func(http.ResponseWriter, *http.Request, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := a.Authenticate(r.Context(), BearerToken(r.Header.Get("Authorization")))
			if err == nil && userID == "" {
				err = domain.ErrUnauthorized
			}
			if err != nil {
				// Details of why a token was rejected stay server-side.
				if errors.Is(err, domain.ErrUnauthorized) {
					err = domain.ErrUnauthorized
				}
				onError(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), userID)))
		})
	}
}
