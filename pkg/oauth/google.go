package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

var (
	ErrNotConfigured  = errors.New("google sign-in is not configured")
	ErrExchangeFailed = errors.New("authorization code exchange failed")
	ErrProfileFailed  = errors.New("could not read google profile")
	ErrUnverified     = errors.New("google account email is not verified")
)

// Identity is the part of a Google profile the back office needs to find or
// register a store owner.
type Identity struct {
	Subject    string
	Email      string
	GivenName  string
	FamilyName string
	Picture    string
}

type googleProfile struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Picture       string `json:"picture"`
}

// Config holds the Google client credentials and the frontend pages the
// callback lands on.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	SuccessURL   string
	ErrorURL     string
}

type Google struct {
	oauth      *oauth2.Config
	successURL string
	errorURL   string
	profileURL string
}

func NewGoogle(cfg Config) *Google {
	return &Google{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		successURL: strings.TrimSpace(cfg.SuccessURL),
		errorURL:   strings.TrimSpace(cfg.ErrorURL),
		profileURL: googleUserInfoURL,
	}
}

func (g *Google) Enabled() bool {
	return g != nil && g.oauth.ClientID != "" && g.oauth.ClientSecret != ""
}

// AuthCodeURL is the consent page for state. Refresh tokens are not requested.
func (g *Google) AuthCodeURL(state string) string {
	return g.oauth.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account"))
}

// Authenticate trades an authorization code for the caller's verified
// Google identity.
func (g *Google) Authenticate(ctx context.Context, code string) (*Identity, error) {
	if !g.Enabled() {
		return nil, ErrNotConfigured
	}
	if strings.TrimSpace(code) == "" {
		return nil, fmt.Errorf("%w: empty code", ErrExchangeFailed)
	}

	token, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}

	profile, err := g.fetchProfile(ctx, token)
	if err != nil {
		return nil, err
	}
	if !profile.VerifiedEmail {
		return nil, ErrUnverified
	}

	return &Identity{
		Subject:    profile.ID,
		Email:      strings.ToLower(profile.Email),
		GivenName:  profile.GivenName,
		FamilyName: profile.FamilyName,
		Picture:    profile.Picture,
	}, nil
}

func (g *Google) fetchProfile(ctx context.Context, token *oauth2.Token) (*googleProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.profileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProfileFailed, err)
	}
	resp, err := g.oauth.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProfileFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrProfileFailed, resp.StatusCode, body)
	}

	var profile googleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProfileFailed, err)
	}
	if profile.ID == "" || profile.Email == "" {
		return nil, fmt.Errorf("%w: profile has no id or email", ErrProfileFailed)
	}
	return &profile, nil
}

// SuccessRedirect puts the values in the fragment of the success page so they
// never reach server logs. An empty string means no success page is set.
func (g *Google) SuccessRedirect(values url.Values) string {
	if g == nil || g.successURL == "" {
		return ""
	}
	return g.successURL + "#" + values.Encode()
}

// FailureRedirect adds reason as the error query parameter of the error page.
func (g *Google) FailureRedirect(reason string) string {
	if g == nil || g.errorURL == "" {
		return ""
	}
	u, err := url.Parse(g.errorURL)
	if err != nil {
		return ""
	}
	q := u.Query()
	q.Set("error", reason)
	u.RawQuery = q.Encode()
	return u.String()
}
