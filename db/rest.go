package db

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/splitbook/splitbook-services/internal/authn"
)

// CredentialMode selects which key the REST store presents upstream.
type CredentialMode string

const (
	// CredentialAnon sends the anonymous key as apikey and forwards the
	// caller's bearer token so upstream row-level security applies.
	CredentialAnon CredentialMode = "anon"
	// CredentialService sends the elevated service key for both headers.
	CredentialService CredentialMode = "service"
)

// RestStore talks to a PostgREST-dialect tabular REST API rooted at
// {BaseURL}/rest/v1.
type RestStore struct {
	BaseURL    string
	APIKey     string
	Mode       CredentialMode
	HTTPClient *http.Client
}

// NewRestStore creates a REST store. Every call is bounded by timeout.
func NewRestStore(baseURL, apiKey string, mode CredentialMode, timeout time.Duration) *RestStore {
	return &RestStore{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		APIKey:     apiKey,
		Mode:       mode,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

func (s *RestStore) Insert(ctx context.Context, collection string, record any, out any) error {
	if err := validName(collection); err != nil {
		return err
	}

	body, err := json.Marshal(record)
	if err != nil {
		return &StoreError{Op: "insert", Collection: collection, Err: err}
	}

	respBody, err := s.makeRequest(ctx, "insert", collection, http.MethodPost, nil, body)
	if err != nil {
		return err
	}

	var rows []json.RawMessage
	if err := json.Unmarshal(respBody, &rows); err != nil {
		return &StoreError{Op: "insert", Collection: collection, Body: string(respBody), Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	if len(rows) == 0 {
		return &StoreError{Op: "insert", Collection: collection, Err: ErrEmptyResult}
	}
	if err := json.Unmarshal(rows[0], out); err != nil {
		return &StoreError{Op: "insert", Collection: collection, Err: fmt.Errorf("failed to decode record: %w", err)}
	}
	return nil
}

func (s *RestStore) Select(ctx context.Context, collection string, q Query, out any) error {
	if err := validName(collection); err != nil {
		return err
	}

	params, err := encodeFilters(q.Filters)
	if err != nil {
		return err
	}
	params.Set("select", "*")
	if q.Order != nil {
		if err := validName(q.Order.Field); err != nil {
			return err
		}
		dir := "asc"
		if q.Order.Desc {
			dir = "desc"
		}
		params.Set("order", q.Order.Field+"."+dir)
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	respBody, err := s.makeRequest(ctx, "select", collection, http.MethodGet, params, nil)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return &StoreError{Op: "select", Collection: collection, Body: string(respBody), Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

func (s *RestStore) Delete(ctx context.Context, collection string, filters Filters) error {
	if err := validName(collection); err != nil {
		return err
	}
	if len(filters) == 0 {
		return ErrUnfilteredDelete
	}

	params, err := encodeFilters(filters)
	if err != nil {
		return err
	}

	_, err = s.makeRequest(ctx, "delete", collection, http.MethodDelete, params, nil)
	return err
}

// Ping requests the API root, which lists the exposed collections.
func (s *RestStore) Ping(ctx context.Context) error {
	_, err := s.makeRequest(ctx, "ping", "", http.MethodGet, nil, nil)
	return err
}

func (s *RestStore) Close() error {
	s.HTTPClient.CloseIdleConnections()
	return nil
}

// encodeFilters renders filters as field=eq.value parameters.
func encodeFilters(filters Filters) (url.Values, error) {
	keys, err := filters.sortedKeys()
	if err != nil {
		return nil, err
	}
	params := url.Values{}
	for _, k := range keys {
		params.Set(k, "eq."+fmt.Sprint(filters[k]))
	}
	return params, nil
}

// Helper function for making HTTP requests to the REST API.
func (s *RestStore) makeRequest(ctx context.Context, op, collection, method string, params url.Values, body []byte) ([]byte, error) {
	logger := zerolog.Ctx(ctx)

	endpoint := s.BaseURL + "/rest/v1/" + collection
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &StoreError{Op: op, Collection: collection, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	req.Header.Set("apikey", s.APIKey)
	req.Header.Set("Authorization", "Bearer "+s.bearer(ctx))
	req.Header.Set("Content-Type", "application/json")
	if method == http.MethodPost {
		req.Header.Set("Prefer", "return=representation")
	}

	start := time.Now()
	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return nil, &StoreError{Op: op, Collection: collection, Err: fmt.Errorf("failed to make request: %w", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &StoreError{Op: op, Collection: collection, Status: resp.StatusCode, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	logger.Debug().Str("op", op).Str("collection", collection).Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).Msg("store request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StoreError{Op: op, Collection: collection, Status: resp.StatusCode, Body: string(respBody)}
	}

	return respBody, nil
}

func (s *RestStore) bearer(ctx context.Context) string {
	if s.Mode == CredentialAnon {
		if token, ok := authn.TokenFromContext(ctx); ok {
			return token
		}
	}
	return s.APIKey
}
