package api

import (
	"context"
	"fmt"

	"github.com/blazeapp-lab/blazeapp-sub000/pkg/logger"
	json "github.com/json-iterator/go"
)

const authPrefix = "/auth/v1"

// SignIn exchanges email and password for a session token pair.
func (c *Client) SignIn(ctx context.Context, email, password string) (*TokenResponse, error) {
	logger.Debug("Attempting login", "email", email)

	token, err := c.grant(ctx, "password", passwordGrant{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	logger.Debug("Login successful", "user_id", token.User.ID)
	return token, nil
}

// RefreshSession trades a refresh token for a new token pair.
func (c *Client) RefreshSession(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	token, err := c.grant(ctx, "refresh_token", refreshGrant{RefreshToken: refreshToken})
	if err != nil {
		return nil, fmt.Errorf("token refresh failed: %w", err)
	}
	return token, nil
}

func (c *Client) grant(ctx context.Context, grantType string, body interface{}) (*TokenResponse, error) {
	reqBody, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetQueryParam("grant_type", grantType).
		SetBody(reqBody).
		Post(authPrefix + "/token")
	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}

	var token TokenResponse
	if err := json.Unmarshal(resp.Body(), &token); err != nil {
		return nil, err
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("empty access token")
	}
	return &token, nil
}

// SignOut revokes the session identified by accessToken.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		Post(authPrefix + "/logout")
	return CheckResponse(resp, err)
}
