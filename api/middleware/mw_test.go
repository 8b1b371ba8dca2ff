package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/splitbook/splitbook-services/internal/authn"
	"github.com/splitbook/splitbook-services/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Authenticate(ctx context.Context, token string) (*models.User, error) {
	args := m.Called(token)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func TestAuthMiddleware(t *testing.T) {
	authenticator := new(MockAuthenticator)
	authenticator.On("Authenticate", "good-token").Return(&models.User{ID: "u1", Email: "u1@example.com"}, nil)
	authenticator.On("Authenticate", "old-token").Return(nil, authn.ErrExpiredToken)
	authenticator.On("Authenticate", "bad-token").Return(nil, authn.ErrInvalidToken)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantError  string
	}{
		{name: "valid token", header: "Bearer good-token", wantStatus: http.StatusOK},
		{name: "missing header", wantStatus: http.StatusUnauthorized, wantError: "authorization header missing"},
		{name: "not a bearer token", header: "Basic dXNlcjpwYXNz", wantStatus: http.StatusUnauthorized, wantError: "invalid token format"},
		{name: "expired token", header: "Bearer old-token", wantStatus: http.StatusUnauthorized, wantError: "token has expired"},
		{name: "rejected token", header: "Bearer bad-token", wantStatus: http.StatusUnauthorized, wantError: "invalid bearer token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				user, ok := authn.UserFromContext(r.Context())
				require.True(t, ok)
				assert.Equal(t, "u1", user.ID)
				token, ok := authn.TokenFromContext(r.Context())
				require.True(t, ok)
				assert.Equal(t, "good-token", token)
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/groups", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			AuthMiddleware(authenticator)(next).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantStatus == http.StatusOK, called)
			if tt.wantError != "" {
				var body models.ErrorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, tt.wantError, body.Error)
				assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			}
		})
	}
}

func TestWithLogger_RequestID(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	WithLogger(next).ServeHTTP(w, req)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	WithLogger(next).ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestMetrics_LabelsByRouteTemplate(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)

	r := mux.NewRouter()
	r.Use(metrics.Middleware)
	r.HandleFunc("/api/groups/{group-id:[0-9]+}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}).Methods(http.MethodDelete)

	for _, path := range []string{"/api/groups/1", "/api/groups/2"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, path, nil))
	}

	count := testutil.ToFloat64(metrics.requests.WithLabelValues("/api/groups/{group-id:[0-9]+}", http.MethodDelete, "404"))
	assert.Equal(t, float64(2), count)
}
