package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"expenses-app-go/internal/config"
	userdomain "expenses-app-go/internal/domain/user"
	"golang.org/x/oauth2"
)

// ErrDirectoryUnavailable wraps any non-success response from the user
// directory so transport details never leak to callers.
var ErrDirectoryUnavailable = errors.New("could not fetch users from the directory")

const delegationGrantType = "delegation"

// Directory queries the identity provider's user directory on behalf of a
// caller. Each call exchanges the caller's bearer token for a delegated
// credential via the provider's token-exchange grant; the user token is a
// parameter of every call, never ambient state.
type Directory struct {
	tokenURL        string
	usersAPIURL     string
	clientID        string
	clientSecret    string
	delegationScope string
	httpClient      *http.Client
}

func NewDirectory(cfg config.IdentityConfig) *Directory {
	timeout := cfg.AuthTimeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &Directory{
		tokenURL:        strings.TrimRight(cfg.IssuerURL, "/") + "/connect/token",
		usersAPIURL:     strings.TrimRight(cfg.UsersAPIURL, "/"),
		clientID:        cfg.ClientID,
		clientSecret:    cfg.ClientSecret,
		delegationScope: cfg.DelegationScope,
		httpClient:      &http.Client{Timeout: timeout},
	}
}

func (d *Directory) Search(ctx context.Context, userToken, query string) ([]userdomain.DirectoryUser, error) {
	endpoint := d.usersAPIURL + "/api/account/list?query=" + url.QueryEscape(query)
	return d.fetchUsers(ctx, userToken, endpoint)
}

func (d *Directory) Details(ctx context.Context, userToken string, ids []string) ([]userdomain.DirectoryUser, error) {
	if len(ids) == 0 {
		return []userdomain.DirectoryUser{}, nil
	}

	values := url.Values{}
	for _, id := range ids {
		values.Add("ids", id)
	}
	endpoint := d.usersAPIURL + "/api/account/details?" + values.Encode()
	return d.fetchUsers(ctx, userToken, endpoint)
}

func (d *Directory) fetchUsers(ctx context.Context, userToken, endpoint string) ([]userdomain.DirectoryUser, error) {
	token, err := d.delegate(ctx, userToken)
	if err != nil {
		return nil, err
	}

	client := oauth2.NewClient(
		context.WithValue(ctx, oauth2.HTTPClient, d.httpClient),
		oauth2.StaticTokenSource(token),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrDirectoryUnavailable, resp.StatusCode)
	}

	var users []userdomain.DirectoryUser
	if err := json.NewDecoder(resp.Body).Decode(&users); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}
	return users, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// delegate exchanges the caller's token for one scoped to the directory
// API. The x/oauth2 clientcredentials flow cannot carry a custom grant
// type, so the exchange request is a plain form POST; the response is still
// handled as an oauth2.Token.
func (d *Directory) delegate(ctx context.Context, userToken string) (*oauth2.Token, error) {
	form := url.Values{
		"grant_type":    {delegationGrantType},
		"client_id":     {d.clientID},
		"client_secret": {d.clientSecret},
		"scope":         {d.delegationScope},
		"token":         {userToken},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: token exchange status %d", ErrDirectoryUnavailable, resp.StatusCode)
	}

	var payload tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}
	if payload.AccessToken == "" {
		return nil, fmt.Errorf("%w: empty access token", ErrDirectoryUnavailable)
	}

	tokenType := payload.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}

	return &oauth2.Token{
		AccessToken: payload.AccessToken,
		TokenType:   tokenType,
		Expiry:      time.Now().Add(time.Duration(payload.ExpiresIn) * time.Second),
	}, nil
}
