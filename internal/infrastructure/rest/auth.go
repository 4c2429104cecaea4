package rest

import (
	"context"
	"net/http"

	"github.com/orderdesk/crm-console/internal/core/ports"
)

// The auth endpoints go out without a bearer token and are never retried: a
// 401 from login is a wrong password, not an expired session.

func (c *Client) Login(ctx context.Context, email, password string) (*ports.TokenGrant, error) {
	var grant ports.TokenGrant
	body := map[string]string{"email": email, "password": password}
	if err := c.send(ctx, http.MethodPost, "/auth/login", nil, body, &grant, false); err != nil {
		return nil, err
	}
	return &grant, nil
}

func (c *Client) Register(ctx context.Context, email, password, fullName string) (*ports.TokenGrant, error) {
	var grant ports.TokenGrant
	body := map[string]string{"email": email, "password": password, "fullName": fullName}
	if err := c.send(ctx, http.MethodPost, "/auth/register", nil, body, &grant, false); err != nil {
		return nil, err
	}
	return &grant, nil
}

func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	body := map[string]string{"refreshToken": refreshToken}
	return c.send(ctx, http.MethodPost, "/auth/logout", nil, body, nil, false)
}
