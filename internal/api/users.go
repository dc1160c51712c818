package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/atinyakov/taskdeck/internal/models"
)

// UserRequest is the payload for creating or updating a user.
// Password is omitted when empty (keep the current one on update);
// IsActive is only sent on updates.
type UserRequest struct {
	Username    string      `json:"username"`
	Email       string      `json:"email"`
	DisplayName string      `json:"display_name"`
	Role        models.Role `json:"role"`
	Password    string      `json:"password,omitempty"`
	IsActive    *bool       `json:"is_active,omitempty"`
}

type userListEnvelope struct {
	Users []models.UserProfile `json:"users"`
}

// Users lists all users. The server enforces that only admin roles may
// call this; the client-side guard in the view layer is a convenience,
// not a security boundary.
func (c *Client) Users(ctx context.Context) ([]models.UserProfile, error) {
	var env userListEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/users", nil, nil, &env); err != nil {
		return nil, err
	}
	return env.Users, nil
}

// CreateUser creates a user account and returns the stored copy.
func (c *Client) CreateUser(ctx context.Context, req UserRequest) (*models.UserProfile, error) {
	var env userEnvelope
	if err := c.do(ctx, http.MethodPost, "/api/users", nil, req, &env); err != nil {
		return nil, err
	}
	return &env.User, nil
}

// UpdateUser replaces the editable fields of the user with the given ID.
func (c *Client) UpdateUser(ctx context.Context, id int64, req UserRequest) (*models.UserProfile, error) {
	var env userEnvelope
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/users/%d", id), nil, req, &env); err != nil {
		return nil, err
	}
	return &env.User, nil
}
