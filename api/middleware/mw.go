package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/splitbook/splitbook-services/internal/authn"
	"github.com/splitbook/splitbook-services/models"
)

const RequestIDHeader = "X-Request-ID"

// AuthMiddleware resolves the bearer token to a user and adds both to the
// request context. Requests without a valid token are rejected with 401.
func AuthMiddleware(authenticator authn.Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				logger := zerolog.Ctx(r.Context()).With().
					Str("handler", "AuthMiddleware").Logger()

				token, err := authn.BearerToken(r.Header.Get("Authorization"))
				if err != nil {
					logger.Debug().Err(err).Msg("rejecting request without bearer token")
					unauthorized(w, err)
					return
				}

				user, err := authenticator.Authenticate(r.Context(), token)
				if err != nil {
					logger.Warn().Err(err).Msg("authentication failed")
					unauthorized(w, err)
					return
				}

				ctx := authn.WithUser(r.Context(), user, token)
				ctx = logger.With().Str("user_id", user.ID).Logger().WithContext(ctx)

				next.ServeHTTP(w, r.WithContext(ctx))
			},
		)
	}
}

// unauthorized writes a 401 naming the failure without echoing the token.
func unauthorized(w http.ResponseWriter, err error) {
	msg := authn.ErrUnauthenticated.Error()
	for _, known := range []error{authn.ErrMissingToken, authn.ErrInvalidFormat, authn.ErrExpiredToken, authn.ErrInvalidToken} {
		if errors.Is(err, known) {
			msg = known.Error()
			break
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(models.ErrorResponse{Error: msg})
}

// WithLogger adds a logger to the context and logs request information.
func WithLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, requestID)

			logger := log.With().
				Str("host", r.Host).
				Str("method", r.Method).
				Str("url", r.URL.String()).
				Str("remote_addr", r.RemoteAddr).
				Str("request_id", requestID).
				Time("timestamp", time.Now()).
				Logger()

			// Add the logger to the context
			ctx := logger.WithContext(r.Context())
			next.ServeHTTP(w, r.WithContext(ctx))
		},
	)
}
