package rpc

import (
	"encoding/json"
	"time"
)

// Item is one saved link on the wire.
type Item struct {
	ID         string     `json:"id"`
	Owner      string     `json:"user_id"`
	URL        string     `json:"url"`
	Title      string     `json:"title"`
	Thumbnail  string     `json:"thumbnail"`
	Platform   string     `json:"platform"`
	Category   string     `json:"category"`
	Tags       []string   `json:"tags"`
	CreatedAt  time.Time  `json:"created_at"`
	DeletedAt  *time.Time `json:"deleted_at"`
	ReviewedAt *time.Time `json:"reviewed_at"`
}

// Settings is the profile payload on the wire.
type Settings struct {
	AppLockEnabled      bool `json:"app_lock_enabled"`
	BiometricRegistered bool `json:"biometric_registered"`
}

type Empty struct{}

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Salt     []byte `json:"salt"`
	Verifier []byte `json:"verifier"`
}

type RegisterResponse struct {
	UserID string `json:"user_id"`
}

type GetSaltRequest struct {
	Username string `json:"username"`
}

type GetSaltResponse struct {
	Salt []byte `json:"salt"`
}

type LoginRequest struct {
	Username          string `json:"username"`
	VerifierCandidate []byte `json:"verifier_candidate"`
}

type LoginResponse struct {
	UserID       string `json:"user_id"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type FetchAllRequest struct {
	Owner string `json:"owner"`
}

type FetchAllResponse struct {
	Items []Item `json:"items"`
}

type InsertRequest struct {
	Item Item `json:"item"`
}

type InsertResponse struct {
	ID string `json:"id"`
}

// UpdateRequest carries a partial update as column name to JSON value.
// A JSON null clears a nullable column.
type UpdateRequest struct {
	Owner  string                     `json:"owner"`
	ID     string                     `json:"id"`
	Fields map[string]json.RawMessage `json:"fields"`
}

type DeleteRequest struct {
	Owner string `json:"owner"`
	ID    string `json:"id"`
}

type DeleteManyRequest struct {
	Owner string   `json:"owner"`
	IDs   []string `json:"ids"`
}

type DeleteManyResponse struct {
	Deleted int64 `json:"deleted"`
}

type GetProfileRequest struct {
	Owner string `json:"owner"`
}

type ProfileResponse struct {
	Settings Settings `json:"settings"`
}

type UpdateProfileRequest struct {
	Owner               string `json:"owner"`
	AppLockEnabled      *bool  `json:"app_lock_enabled,omitempty"`
	BiometricRegistered *bool  `json:"biometric_registered,omitempty"`
}
