package authn

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteAuthenticator_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/user", r.URL.Path)
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"id": "user-1", "email": "u1@example.com", "user_metadata": {"name": "U1"}}`))
	}))
	defer server.Close()

	a := NewRemoteAuthenticator(server.URL+"/", "anon-key", 5*time.Second)
	user, err := a.Authenticate(context.Background(), "user-token")
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
	assert.Equal(t, "u1@example.com", user.Email)
	assert.Equal(t, "U1", user.UserMetadata["name"])
}

func TestRemoteAuthenticator_Rejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"msg": "invalid JWT"}`))
	}))
	defer server.Close()

	a := NewRemoteAuthenticator(server.URL, "anon-key", 5*time.Second)
	_, err := a.Authenticate(context.Background(), "expired-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRemoteAuthenticator_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	a := NewRemoteAuthenticator(server.URL, "anon-key", 50*time.Millisecond)
	_, err := a.Authenticate(context.Background(), "token")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestRemoteAuthenticator_Ping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	a := NewRemoteAuthenticator(server.URL, "anon-key", time.Second)
	assert.NoError(t, a.Ping(context.Background()))
}
