package oauth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func fakeGoogle(t *testing.T, profile string) *Google {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer at" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(profile))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	g := NewGoogle(Config{ClientID: "id", ClientSecret: "secret", RedirectURL: "http://localhost/cb"})
	g.oauth.Endpoint = oauth2.Endpoint{
		AuthURL:   srv.URL + "/auth",
		TokenURL:  srv.URL + "/token",
		AuthStyle: oauth2.AuthStyleInParams,
	}
	g.profileURL = srv.URL + "/userinfo"
	return g
}

func TestAuthenticate(t *testing.T) {
	t.Run("verified profile", func(t *testing.T) {
		g := fakeGoogle(t, `{"id":"42","email":"Owner@Shop.Example","verified_email":true,"given_name":"Ada","family_name":"Wanjiru"}`)

		id, err := g.Authenticate(context.Background(), "code")
		require.NoError(t, err)
		assert.Equal(t, "42", id.Subject)
		assert.Equal(t, "owner@shop.example", id.Email)
		assert.Equal(t, "Ada", id.GivenName)
	})

	t.Run("unverified email", func(t *testing.T) {
		g := fakeGoogle(t, `{"id":"42","email":"a@b.c","verified_email":false}`)
		_, err := g.Authenticate(context.Background(), "code")
		assert.True(t, errors.Is(err, ErrUnverified))
	})

	t.Run("incomplete profile", func(t *testing.T) {
		g := fakeGoogle(t, `{"verified_email":true}`)
		_, err := g.Authenticate(context.Background(), "code")
		assert.True(t, errors.Is(err, ErrProfileFailed))
	})

	t.Run("empty code", func(t *testing.T) {
		g := fakeGoogle(t, `{}`)
		_, err := g.Authenticate(context.Background(), " ")
		assert.True(t, errors.Is(err, ErrExchangeFailed))
	})

	t.Run("not configured", func(t *testing.T) {
		g := NewGoogle(Config{})
		assert.False(t, g.Enabled())
		_, err := g.Authenticate(context.Background(), "code")
		assert.True(t, errors.Is(err, ErrNotConfigured))
	})
}

func TestAuthCodeURL(t *testing.T) {
	g := NewGoogle(Config{ClientID: "id", ClientSecret: "secret", RedirectURL: "http://localhost/cb"})
	u, err := url.Parse(g.AuthCodeURL("xyz"))
	require.NoError(t, err)
	assert.Equal(t, "xyz", u.Query().Get("state"))
	assert.Equal(t, "id", u.Query().Get("client_id"))
	assert.Equal(t, "select_account", u.Query().Get("prompt"))
}

func TestRedirects(t *testing.T) {
	g := NewGoogle(Config{SuccessURL: "https://admin.example/done", ErrorURL: "https://admin.example/login?next=%2F"})

	assert.Equal(t, "https://admin.example/done#access_token=a", g.SuccessRedirect(url.Values{"access_token": {"a"}}))

	u, err := url.Parse(g.FailureRedirect("invalid state"))
	require.NoError(t, err)
	assert.Equal(t, "invalid state", u.Query().Get("error"))
	assert.Equal(t, "/", u.Query().Get("next"))

	empty := NewGoogle(Config{})
	assert.Empty(t, empty.SuccessRedirect(url.Values{}))
	assert.Empty(t, empty.FailureRedirect("x"))
}
