package models

// User represents an identity resolved from a bearer token. It is never
// persisted by this service.
type User struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
}
