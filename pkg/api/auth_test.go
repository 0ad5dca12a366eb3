package api

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignOut_SendsUserToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/logout", r.URL.Path)
		assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.SignOut(context.Background(), "user-token"))
}

func TestSignOut_Unauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	err := c.SignOut(context.Background(), "expired")
	assert.True(t, IsUnauthorized(err))
}

func TestRefreshSession(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/token", r.URL.Path)
		assert.Equal(t, "refresh_token", r.URL.Query().Get("grant_type"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"refresh_token":"r-1"}`, string(body))
		w.Write([]byte(`{"access_token":"a-2","refresh_token":"r-2","expires_in":3600}`))
	})

	token, err := c.RefreshSession(context.Background(), "r-1")
	require.NoError(t, err)
	assert.Equal(t, "a-2", token.AccessToken)
	assert.Equal(t, "r-2", token.RefreshToken)
}

func TestRefreshSession_Revoked(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid_grant","error_description":"Refresh Token Not Found"}`))
	})

	_, err := c.RefreshSession(context.Background(), "gone")
	assert.True(t, IsUnauthorized(err))
}
