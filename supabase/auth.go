package supabase

import (
	"context"
	"encoding/json"
	"fmt"

	"nutriflow/models"
)

type gotrueUser struct {
	ID               string  `json:"id"`
	Email            string  `json:"email"`
	EmailConfirmedAt *string `json:"email_confirmed_at"`
}

// signUpResponse is either a bare user (email confirmation on) or a session
// wrapping one (auto-confirm).
type signUpResponse struct {
	gotrueUser
	User *gotrueUser `json:"user"`
}

// SignUp creates an identity with email and password.
func (c *Client) SignUp(ctx context.Context, email, password string) (*models.AuthUser, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+c.anonKey).
		SetBody(map[string]string{"email": email, "password": password}).
		Post("/auth/v1/signup")
	if err != nil {
		return nil, fmt.Errorf("supabase sign up: %w", err)
	}
	if res.IsError() {
		return nil, responseError(res)
	}

	var body signUpResponse
	if err := json.Unmarshal(res.Body(), &body); err != nil {
		return nil, fmt.Errorf("supabase sign up: decode response: %w", err)
	}
	u := body.gotrueUser
	if body.User != nil {
		u = *body.User
	}
	if u.ID == "" {
		return nil, nil
	}
	return &models.AuthUser{ID: u.ID, Email: u.Email, EmailConfirmed: u.EmailConfirmedAt != nil}, nil
}

// DeleteUser removes an identity through the admin API.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	if c.serviceKey == "" {
		return ErrServiceKeyRequired
	}
	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("apikey", c.serviceKey).
		SetHeader("Authorization", "Bearer "+c.serviceKey).
		SetPathParam("id", id).
		Delete("/auth/v1/admin/users/{id}")
	if err != nil {
		return fmt.Errorf("supabase delete user: %w", err)
	}
	if res.IsError() {
		return responseError(res)
	}
	return nil
}
