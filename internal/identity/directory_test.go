package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"expenses-app-go/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDirectory(issuerURL, usersAPIURL string) *Directory {
	return NewDirectory(config.IdentityConfig{
		IssuerURL:       issuerURL,
		UsersAPIURL:     usersAPIURL,
		ClientID:        "test-client",
		ClientSecret:    "test-secret",
		DelegationScope: "users-api",
	})
}

func TestSearchExchangesAndForwardsToken(t *testing.T) {
	var tokenForm map[string]string
	var apiAuth string

	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/connect/token", r.URL.Path)
		require.NoError(t, r.ParseForm())
		tokenForm = map[string]string{
			"grant_type":    r.PostFormValue("grant_type"),
			"client_id":     r.PostFormValue("client_id"),
			"client_secret": r.PostFormValue("client_secret"),
			"scope":         r.PostFormValue("scope"),
			"token":         r.PostFormValue("token"),
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "delegated-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}))
	defer provider.Close()

	usersAPI := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/account/list", r.URL.Path)
		apiAuth = r.Header.Get("Authorization")
		assert.Equal(t, "jan", r.URL.Query().Get("query"))
		_ = json.NewEncoder(w).Encode([]map[string]string{
			{"id": "u1", "userName": "jan@example.com"},
		})
	}))
	defer usersAPI.Close()

	directory := newTestDirectory(provider.URL, usersAPI.URL)
	users, err := directory.Search(context.Background(), "caller-token", "jan")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "u1", users[0].ID)

	assert.Equal(t, "delegation", tokenForm["grant_type"])
	assert.Equal(t, "test-client", tokenForm["client_id"])
	assert.Equal(t, "test-secret", tokenForm["client_secret"])
	assert.Equal(t, "users-api", tokenForm["scope"])
	assert.Equal(t, "caller-token", tokenForm["token"])
	assert.Equal(t, "Bearer delegated-token", apiAuth)
}

func TestDetailsSendsAllIDs(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"access_token": "delegated", "token_type": "Bearer"})
	}))
	defer provider.Close()

	var gotIDs []string
	usersAPI := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/account/details", r.URL.Path)
		gotIDs = r.URL.Query()["ids"]
		_ = json.NewEncoder(w).Encode([]map[string]string{})
	}))
	defer usersAPI.Close()

	directory := newTestDirectory(provider.URL, usersAPI.URL)
	_, err := directory.Details(context.Background(), "caller-token", []string{"u1", "u2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2"}, gotIDs)
}

func TestDetailsEmptyIDsSkipsNetwork(t *testing.T) {
	directory := newTestDirectory("http://127.0.0.1:1", "http://127.0.0.1:1")
	users, err := directory.Details(context.Background(), "caller-token", nil)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestSearchTokenExchangeFailure(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer provider.Close()

	directory := newTestDirectory(provider.URL, provider.URL)
	_, err := directory.Search(context.Background(), "caller-token", "jan")
	require.ErrorIs(t, err, ErrDirectoryUnavailable)
}

func TestSearchUsersAPIFailure(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/connect/token" {
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"access_token": "delegated", "token_type": "Bearer"})
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer provider.Close()

	directory := newTestDirectory(provider.URL, provider.URL)
	_, err := directory.Search(context.Background(), "caller-token", "jan")
	require.ErrorIs(t, err, ErrDirectoryUnavailable)
}

func TestResolveUserinfo(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/connect/userinfo", r.URL.Path)
		require.Equal(t, "Bearer caller-token", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]string{
			"sub":         "user-1",
			"email":       "jan@example.com",
			"given_name":  "Jan",
			"family_name": "Kowalski",
		})
	}))
	defer provider.Close()

	client := NewClient(config.IdentityConfig{IssuerURL: provider.URL})
	ident, err := client.Resolve(context.Background(), "caller-token")
	require.NoError(t, err)
	assert.Equal(t, "user-1", ident.Subject)
	assert.Equal(t, "jan@example.com", ident.Email)
	assert.Equal(t, "Jan Kowalski", ident.Name)
	assert.Equal(t, "caller-token", ident.Token)
}

func TestResolveRejected(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer provider.Close()

	client := NewClient(config.IdentityConfig{IssuerURL: provider.URL})
	_, err := client.Resolve(context.Background(), "bad-token")
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestResolveEmptyToken(t *testing.T) {
	client := NewClient(config.IdentityConfig{IssuerURL: "http://127.0.0.1:1"})
	_, err := client.Resolve(context.Background(), "")
	require.ErrorIs(t, err, ErrUnauthenticated)
}
