package client

import (
	"time"

	"github.com/blazeapp-lab/blazeapp-sub000/pkg/config"
	"github.com/blazeapp-lab/blazeapp-sub000/pkg/logger"
	"github.com/go-resty/resty/v2"
)

const userAgent = "blaze-cli/0.3.0"

var httpClient *resty.Client

// New builds a client for the backend at baseURL. The anon key is sent as the
// apikey header on every request and doubles as the bearer token until a user
// session token replaces it.
func New(baseURL, anonKey string, timeout time.Duration) *resty.Client {
	c := resty.New()
	c.SetBaseURL(baseURL)
	c.SetTimeout(timeout)
	c.SetHeader("User-Agent", userAgent)
	c.SetHeader("Accept", "application/json")
	if anonKey != "" {
		c.SetHeader("apikey", anonKey)
		c.SetAuthToken(anonKey)
	}

	c.OnBeforeRequest(func(c *resty.Client, req *resty.Request) error {
		logger.Debug("HTTP Request", "method", req.Method, "url", req.URL)
		return nil
	})

	c.OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
		logger.Debug("HTTP Response", "status", resp.StatusCode(), "elapsed", resp.Time())
		return nil
	})
	return c
}

// Init initializes the shared HTTP client from config
func Init() {
	httpClient = New(
		config.GetString("backend.url"),
		config.GetString("backend.anon_key"),
		time.Duration(config.GetInt("api.timeout"))*time.Second,
	)
}

// GetClient returns the HTTP client
func GetClient() *resty.Client {
	if httpClient == nil {
		Init()
	}
	return httpClient
}

// SetAuthToken sets the user's access token as the bearer token
func SetAuthToken(token string) {
	GetClient().SetAuthToken(token)
}

// ClearAuthToken drops the user token and falls back to the anon key
func ClearAuthToken() {
	Init()
}
