package credentials

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/blazeapp-lab/blazeapp-sub000/pkg/api"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	json "github.com/json-iterator/go"
)

// Credentials is the signed-in session. SessionID is minted locally at login
// and scopes the counter overlay to this session.
type Credentials struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	Username     string    `json:"username,omitempty"`
	SessionID    string    `json:"session_id"`
}

// FromToken builds credentials from a password grant response. The viewer id
// and expiry come from the access token's claims; the signature is the
// backend's business and is not checked here.
func FromToken(token *api.TokenResponse) (*Credentials, error) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token.AccessToken, &claims); err != nil {
		return nil, fmt.Errorf("malformed access token: %w", err)
	}

	creds := &Credentials{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		UserID:       claims.Subject,
		Email:        token.User.Email,
		SessionID:    uuid.NewString(),
	}
	if creds.UserID == "" {
		creds.UserID = token.User.ID
	}
	if creds.UserID == "" {
		return nil, errors.New("access token carries no user id")
	}

	switch {
	case claims.ExpiresAt != nil:
		creds.ExpiresAt = claims.ExpiresAt.Time
	case token.ExpiresIn > 0:
		creds.ExpiresAt = time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	default:
		creds.ExpiresAt = time.Now().Add(time.Hour)
	}
	return creds, nil
}

// Load loads credentials from disk
func Load() (*Credentials, error) {
	path := config.GetCredentialsPath()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // Not logged in
		}
		return nil, err
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, err
	}

	return &creds, nil
}

// Current returns the stored credentials if they are still valid, nil otherwise.
func Current() *Credentials {
	creds, err := Load()
	if err != nil || creds == nil || !creds.IsValid() {
		return nil
	}
	return creds
}

// Save saves credentials to disk
func Save(creds *Credentials) error {
	path := config.GetCredentialsPath()

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	// Owner read/write only
	return os.WriteFile(path, data, 0o600)
}

// Delete deletes credentials from disk. Deleting missing credentials is not
// an error.
func Delete() error {
	path := config.GetCredentialsPath()
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// IsExpired checks if the access token is expired
func (c *Credentials) IsExpired() bool {
	return time.Now().After(c.ExpiresAt)
}

// IsValid checks if credentials are valid
func (c *Credentials) IsValid() bool {
	return c.AccessToken != "" && c.UserID != "" && !c.IsExpired()
}
