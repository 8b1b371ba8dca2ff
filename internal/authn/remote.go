package authn

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/splitbook/splitbook-services/models"
)

// RemoteAuthenticator verifies tokens against the identity provider's
// current-user endpoint. Any non-200 response means the token is rejected.
type RemoteAuthenticator struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewRemoteAuthenticator creates a remote authenticator whose calls are
// bounded by timeout.
func NewRemoteAuthenticator(baseURL, apiKey string, timeout time.Duration) *RemoteAuthenticator {
	return &RemoteAuthenticator{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

func (a *RemoteAuthenticator) Authenticate(ctx context.Context, token string) (*models.User, error) {
	logger := zerolog.Ctx(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.BaseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("apikey", a.APIKey)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		logger.Warn().Err(err).Msg("identity provider unreachable")
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		logger.Debug().Int("status", resp.StatusCode).Msg("identity provider rejected token")
		return nil, ErrInvalidToken
	}

	var user models.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("%w: failed to decode user: %v", ErrUnauthenticated, err)
	}
	if user.ID == "" {
		return nil, ErrInvalidToken
	}
	return &user, nil
}

// Ping checks that the identity endpoint answers at all. Without a token the
// provider is expected to reply 401, which counts as reachable.
func (a *RemoteAuthenticator) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.BaseURL+"/auth/v1/user", nil)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", a.APIKey)

	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("identity provider returned status %d", resp.StatusCode)
	}
	return nil
}
