package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/blazeapp-lab/blazeapp-sub000/pkg/api"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/credentials"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/logger"
)

// ErrNoRefreshToken means the stored session cannot be renewed.
var ErrNoRefreshToken = errors.New("no refresh token available")

// Refresher trades a refresh token for a new token pair.
type Refresher interface {
	RefreshSession(ctx context.Context, refreshToken string) (*api.TokenResponse, error)
}

// SessionRecovery handles automatic session recovery
type SessionRecovery struct {
	refresher  Refresher
	maxRetries int
	retryDelay time.Duration
}

// NewSessionRecovery creates a new session recovery handler
func NewSessionRecovery(refresher Refresher) *SessionRecovery {
	return &SessionRecovery{
		refresher:  refresher,
		maxRetries: 3,
		retryDelay: 2 * time.Second,
	}
}

// RecoverSession renews expired credentials with their refresh token and
// saves the result. The session id is kept, so the renewed session still
// sees its counter overlay.
func (sr *SessionRecovery) RecoverSession(ctx context.Context, creds *credentials.Credentials) (*credentials.Credentials, error) {
	if creds == nil || creds.RefreshToken == "" {
		return nil, ErrNoRefreshToken
	}
	logger.Debug("Attempting to recover session", "user_id", creds.UserID)

	var lastErr error
	for attempt := 1; attempt <= sr.maxRetries; attempt++ {
		token, err := sr.refresher.RefreshSession(ctx, creds.RefreshToken)
		if err == nil {
			return sr.renew(creds, token)
		}
		lastErr = err
		if !retryable(err) {
			break
		}
		logger.Debug("Token refresh failed", "attempt", attempt, "error", err)

		if attempt < sr.maxRetries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(sr.retryDelay):
			}
		}
	}

	return nil, fmt.Errorf("failed to recover session: %w", lastErr)
}

func (sr *SessionRecovery) renew(prev *credentials.Credentials, token *api.TokenResponse) (*credentials.Credentials, error) {
	next, err := credentials.FromToken(token)
	if err != nil {
		return nil, err
	}
	if next.UserID != prev.UserID {
		return nil, fmt.Errorf("refreshed token belongs to %s, not %s", next.UserID, prev.UserID)
	}
	next.SessionID = prev.SessionID
	next.Username = prev.Username
	if next.Email == "" {
		next.Email = prev.Email
	}
	if next.RefreshToken == "" {
		next.RefreshToken = prev.RefreshToken
	}

	if err := credentials.Save(next); err != nil {
		logger.Error("Failed to save updated credentials", "error", err)
	}
	logger.Info("Session recovered", "user_id", next.UserID)
	return next, nil
}

// retryable is true for transport failures and 5xx responses. Any other
// rejection of the refresh token is final.
func retryable(err error) bool {
	var apiErr *api.APIError
	if !errors.As(err, &apiErr) {
		return !errors.Is(err, context.Canceled)
	}
	return api.IsServerError(err)
}
