package api

import (
	"context"
	"net/http"

	"github.com/atinyakov/taskdeck/internal/models"
)

// LoginResult is the payload returned by a successful login.
type LoginResult struct {
	AccessToken string             `json:"access_token"`
	User        models.UserProfile `json:"user"`
}

type userEnvelope struct {
	User models.UserProfile `json:"user"`
}

// Login submits credentials and returns the issued token together with
// the authenticated profile. The client's stored token is not touched;
// installing it is the session store's job.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	req := struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}{username, password}

	var res LoginResult
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Me fetches the server-authoritative profile for the current token.
func (c *Client) Me(ctx context.Context) (*models.UserProfile, error) {
	var env userEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, nil, &env); err != nil {
		return nil, err
	}
	return &env.User, nil
}

// UpdateProfile submits the editable profile fields and returns the
// updated profile.
func (c *Client) UpdateProfile(ctx context.Context, displayName, email string) (*models.UserProfile, error) {
	req := struct {
		DisplayName string `json:"display_name"`
		Email       string `json:"email"`
	}{displayName, email}

	var env userEnvelope
	if err := c.do(ctx, http.MethodPut, "/api/auth/update-profile", nil, req, &env); err != nil {
		return nil, err
	}
	return &env.User, nil
}

// ChangePassword rotates the current user's password.
func (c *Client) ChangePassword(ctx context.Context, current, updated string) error {
	req := struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}{current, updated}

	return c.do(ctx, http.MethodPost, "/api/auth/change-password", nil, req, nil)
}
