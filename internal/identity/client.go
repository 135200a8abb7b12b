package identity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"expenses-app-go/internal/config"
)

// ErrUnauthenticated covers every way a bearer token can fail to resolve to
// a subject: missing, expired, or rejected by the provider.
var ErrUnauthenticated = errors.New("unauthenticated")

// Identity is the resolved caller. Token keeps the raw bearer credential so
// handlers can pass it explicitly into delegated directory calls; it is
// request-scoped, never stored.
type Identity struct {
	Subject string
	Email   string
	Name    string
	Token   string
}

// Client resolves bearer tokens against the identity provider's userinfo
// endpoint.
type Client struct {
	userinfoURL string
	httpClient  *http.Client
}

func NewClient(cfg config.IdentityConfig) *Client {
	timeout := cfg.AuthTimeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		userinfoURL: strings.TrimRight(cfg.IssuerURL, "/") + "/connect/userinfo",
		httpClient:  &http.Client{Timeout: timeout},
	}
}

type userinfoResponse struct {
	Sub        string `json:"sub"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
}

func (c *Client) Resolve(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userinfoURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ErrUnauthenticated
	}

	var payload userinfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, ErrUnauthenticated
	}
	if payload.Sub == "" {
		return nil, ErrUnauthenticated
	}

	name := payload.Name
	if name == "" {
		name = strings.TrimSpace(payload.GivenName + " " + payload.FamilyName)
	}

	return &Identity{
		Subject: payload.Sub,
		Email:   payload.Email,
		Name:    name,
		Token:   token,
	}, nil
}
