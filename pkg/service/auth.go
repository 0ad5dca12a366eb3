package service

import (
	"context"
	"time"

	"github.com/blazeapp-lab/blazeapp-sub000/pkg/api"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/client"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/credentials"
	clierrors "github.com/blazeapp-lab/blazeapp-sub000/pkg/errors"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/logger"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/output"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/overlay"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/prompter"
)

type AuthService struct {
	api *api.Client
	// openStore opens the overlay store of a session. Tests replace it.
	openStore func(ctx context.Context, sessionID string) (overlay.Store, func() error, error)
}

// NewAuthService creates a new auth service
func NewAuthService(apiClient *api.Client) *AuthService {
	return &AuthService{api: apiClient, openStore: overlay.OpenStore}
}

// Login handles user login
func (s *AuthService) Login(ctx context.Context) error {
	creds, err := credentials.Load()
	if err != nil {
		logger.Error("Failed to load credentials", "error", err)
		return err
	}

	if creds != nil && creds.IsValid() {
		output.PrintWarning("Already logged in as %s", displayName(creds))
		confirm, err := prompter.PromptConfirm("Continue with new login?")
		if err != nil {
			return err
		}
		if !confirm {
			return nil
		}
	}

	email, err := prompter.PromptString("Email: ")
	if err != nil {
		return err
	}
	if email == "" {
		return clierrors.ValidationError("email", "cannot be empty")
	}

	password, err := prompter.PromptPassword("Password: ")
	if err != nil {
		return err
	}
	if password == "" {
		return clierrors.ValidationError("password", "cannot be empty")
	}

	output.PrintInfo("Authenticating...")
	token, err := s.api.SignIn(ctx, email, password)
	if err != nil {
		if api.IsUnauthorized(err) || api.IsForbidden(err) {
			return clierrors.AuthError("Invalid email or password")
		}
		return clierrors.CategorizeError(err)
	}

	creds, err = credentials.FromToken(token)
	if err != nil {
		return clierrors.NewCLIError(clierrors.ErrorTypeAuth, "Login returned an unusable session", err)
	}

	client.SetAuthToken(creds.AccessToken)
	if profile, err := s.api.GetProfile(ctx, creds.UserID); err != nil {
		logger.Warn("Failed to fetch profile", "user_id", creds.UserID, "error", err)
	} else {
		creds.Username = profile.Username
	}

	if err := credentials.Save(creds); err != nil {
		return clierrors.WriteError("Could not save credentials", err)
	}

	logger.Info("Logged in", "user_id", creds.UserID)
	output.PrintSuccess("Logged in as %s", displayName(creds))
	return nil
}

// Logout revokes the session, drops its counter overlay and forgets the
// stored credentials.
func (s *AuthService) Logout(ctx context.Context) error {
	creds, err := credentials.Load()
	if err != nil {
		logger.Error("Failed to load credentials", "error", err)
		return err
	}
	if creds == nil {
		output.PrintWarning("Not logged in")
		return nil
	}

	if err := s.api.SignOut(ctx, creds.AccessToken); err != nil {
		// An expired or revoked token is already signed out.
		logger.Warn("Sign out request failed", "error", err)
	}

	if err := s.clearOverlay(ctx, creds.SessionID); err != nil {
		logger.Warn("Failed to clear counter overlay", "session_id", creds.SessionID, "error", err)
	}

	if err := credentials.Delete(); err != nil {
		return clierrors.WriteError("Could not delete credentials", err)
	}
	client.ClearAuthToken()

	output.PrintSuccess("Logged out")
	return nil
}

func (s *AuthService) clearOverlay(ctx context.Context, sessionID string) error {
	store, closeStore, err := s.openStore(ctx, sessionID)
	if err != nil {
		return err
	}
	defer closeStore()
	return store.Clear(ctx)
}

// WhoAmI prints the stored session.
func (s *AuthService) WhoAmI() error {
	creds, err := credentials.Load()
	if err != nil {
		return clierrors.ReadError("Could not read credentials", err)
	}
	if creds == nil {
		return clierrors.AuthError("Not logged in")
	}
	if creds.IsExpired() {
		return clierrors.SessionExpiredError()
	}

	return output.PrintRecord("Session", map[string]interface{}{
		"user_id":    creds.UserID,
		"username":   creds.Username,
		"email":      creds.Email,
		"session_id": creds.SessionID,
		"expires_at": creds.ExpiresAt.Format(time.RFC3339),
	})
}

func displayName(creds *credentials.Credentials) string {
	if creds.Username != "" {
		return "@" + creds.Username
	}
	if creds.Email != "" {
		return creds.Email
	}
	return creds.UserID
}
