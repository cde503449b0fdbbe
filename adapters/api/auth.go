package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/khoahotran/jutjub/internal/domain/user"
	"github.com/khoahotran/jutjub/pkg/apperror"
)

var _ user.Gateway = (*Client)(nil)

// Register returns the plain-text confirmation the API answers with.
func (c *Client) Register(ctx context.Context, req user.RegisterRequest) (string, error) {
	res, err := c.doJSON(ctx, "register", http.MethodPost, authPath+"/register", nil, req)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(res.body)), nil
}

func (c *Client) Login(ctx context.Context, req user.LoginRequest) (string, error) {
	res, err := c.doJSON(ctx, "login", http.MethodPost, authPath+"/login", nil, req)
	if err != nil {
		return "", err
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(res.body, &out); err != nil {
		return "", wrapParse(&ParseError{Endpoint: "login", Reason: "invalid JSON", Err: err})
	}
	if out.Token == "" {
		return "", wrapParse(&ParseError{Endpoint: "login", Reason: "missing token"})
	}
	return out.Token, nil
}

func (c *Client) Activate(ctx context.Context, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", apperror.NewInvalidInput("No activation token provided.", nil)
	}
	q := url.Values{}
	q.Set("token", token)
	res, err := c.do(ctx, call{
		endpoint: "activate",
		method:   http.MethodGet,
		path:     authPath + "/activate",
		query:    q,
		accept:   "text/plain",
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(res.body)), nil
}
