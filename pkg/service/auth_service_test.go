package service

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/blazeapp-lab/blazeapp-sub000/pkg/api"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/config"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/credentials"
	clierrors "github.com/blazeapp-lab/blazeapp-sub000/pkg/errors"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/overlay"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/prompter"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withPromptInput(t *testing.T, in string) {
	t.Helper()
	prevIn, prevOut := prompter.Input, prompter.Output
	prompter.Input = strings.NewReader(in)
	prompter.Output = &syncBuffer{}
	t.Cleanup(func() { prompter.Input, prompter.Output = prevIn, prevOut })
}

func accessToken(t *testing.T, sub string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   sub,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestAuthService_LoginSavesSession(t *testing.T) {
	e := setup(t)
	e.backend.token = accessToken(t, "u1")
	withPromptInput(t, "ann@example.com\nhunter2\n")

	require.NoError(t, NewAuthService(e.api).Login(context.Background()))

	creds, err := credentials.Load()
	require.NoError(t, err)
	require.NotNil(t, creds)
	assert.Equal(t, "u1", creds.UserID)
	assert.Equal(t, "viewer", creds.Username)
	assert.NotEmpty(t, creds.SessionID)
	assert.True(t, creds.IsValid())
	assert.Contains(t, e.out.String(), "Logged in as @viewer")
}

func TestAuthService_LoginRejectsEmptyEmail(t *testing.T) {
	e := setup(t)
	withPromptInput(t, "\n")

	err := NewAuthService(e.api).Login(context.Background())
	var cliErr *clierrors.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, clierrors.ErrorTypeValidation, cliErr.Type)
}

func TestAuthService_LogoutClearsSessionOverlay(t *testing.T) {
	e := setup(t)
	creds := &credentials.Credentials{
		AccessToken: "tok",
		UserID:      "u1",
		SessionID:   "s-1",
		ExpiresAt:   time.Now().Add(time.Hour),
	}
	require.NoError(t, credentials.Save(creds))

	store := overlay.NewFileStore(config.GetConfigDir(), "s-1")
	require.NoError(t, store.Save(context.Background(), map[string]overlay.Entry{
		"p1": {Counters: api.Counters{Likes: api.Int(1)}, UpdatedAt: 1},
	}))

	require.NoError(t, NewAuthService(e.api).Logout(context.Background()))

	_, err := os.Stat(store.Path())
	assert.True(t, os.IsNotExist(err), "overlay file removed")
	after, err := credentials.Load()
	require.NoError(t, err)
	assert.Nil(t, after)
	assert.Contains(t, e.backend.writes(), "POST /auth/v1/logout")
}

func TestAuthService_LogoutWhenLoggedOut(t *testing.T) {
	e := setup(t)
	require.NoError(t, NewAuthService(e.api).Logout(context.Background()))
	assert.Contains(t, e.out.String(), "Not logged in")
	assert.Empty(t, e.backend.writes())
}

func TestAuthService_WhoAmI(t *testing.T) {
	e := setup(t)
	svc := NewAuthService(e.api)

	var cliErr *clierrors.CLIError
	require.ErrorAs(t, svc.WhoAmI(), &cliErr)
	assert.Equal(t, clierrors.ErrorTypeAuth, cliErr.Type)

	require.NoError(t, credentials.Save(&credentials.Credentials{
		AccessToken: "tok", UserID: "u1", Username: "ann", SessionID: "s-1",
		ExpiresAt: time.Now().Add(time.Hour),
	}))
	require.NoError(t, svc.WhoAmI())
	assert.Contains(t, e.out.String(), "username: ann")

	require.NoError(t, credentials.Save(&credentials.Credentials{
		AccessToken: "tok", UserID: "u1", ExpiresAt: time.Now().Add(-time.Minute),
	}))
	require.ErrorAs(t, svc.WhoAmI(), &cliErr)
	assert.Equal(t, clierrors.ErrorTypeSessionExpired, cliErr.Type)
}

func TestOpenSession_ExpiredCredentialsAreAnonymous(t *testing.T) {
	setup(t)
	config.Set("overlay.store", "memory")
	require.NoError(t, credentials.Save(&credentials.Credentials{
		AccessToken: "tok", UserID: "u1", ExpiresAt: time.Now().Add(-time.Minute),
	}))

	s, err := OpenSession(context.Background())
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, "", s.ViewerID())
	assert.Error(t, s.RequireViewer())
}

func TestOpenSession_ValidCredentials(t *testing.T) {
	setup(t)
	config.Set("overlay.store", "memory")
	require.NoError(t, credentials.Save(&credentials.Credentials{
		AccessToken: "tok", UserID: "u1", SessionID: "s-1", ExpiresAt: time.Now().Add(time.Hour),
	}))

	s, err := OpenSession(context.Background())
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, "u1", s.ViewerID())
	assert.NoError(t, s.RequireViewer())
}
