package client

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/blazeapp-lab/blazeapp-sub000/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_SendsAnonKeyHeaders(t *testing.T) {
	var gotKey, gotAuth, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("apikey")
		gotAuth = r.Header.Get("Authorization")
		gotUA = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL, "anon-123", 5*time.Second)
	_, err := c.R().Get("/rest/v1/posts")
	require.NoError(t, err)

	assert.Equal(t, "anon-123", gotKey)
	assert.Equal(t, "Bearer anon-123", gotAuth)
	assert.Equal(t, userAgent, gotUA)
}

func TestNew_WithoutAnonKey(t *testing.T) {
	c := New("http://localhost", "", time.Second)
	assert.Empty(t, c.Header.Get("apikey"))
	assert.Equal(t, "http://localhost", c.BaseURL)
}

func TestGetClientSingleton(t *testing.T) {
	require.NoError(t, config.Init(filepath.Join(t.TempDir(), "config.toml")))
	httpClient = nil

	c1 := GetClient()
	c2 := GetClient()
	assert.Same(t, c1, c2)
}

func TestSetAndClearAuthToken(t *testing.T) {
	require.NoError(t, config.Init(filepath.Join(t.TempDir(), "config.toml")))
	httpClient = nil

	SetAuthToken("user-token")
	assert.Equal(t, "user-token", GetClient().Token)

	ClearAuthToken()
	assert.NotEqual(t, "user-token", GetClient().Token)
}
