package msdrive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/microsoft"
)

// Permission is the set of OAuth2 scopes to request: read-only by default,
// optionally write access, access to items shared with the user, and
// offline access (a refresh token). Value-chained:
//
//	perm := msdrive.NewReadPermission().Write(true).OfflineAccess(true)
type Permission struct {
	write         bool
	accessShared  bool
	offlineAccess bool
}

// NewReadPermission is the minimal permission: read the user's own files.
func NewReadPermission() Permission {
	return Permission{}
}

// Write also requests write access.
func (p Permission) Write(v bool) Permission {
	p.write = v
	return p
}

// AccessShared also requests access to items shared with the user.
func (p Permission) AccessShared(v bool) Permission {
	p.accessShared = v
	return p
}

// OfflineAccess also requests a refresh token. Required for the refresh
// flow.
func (p Permission) OfflineAccess(v bool) Permission {
	p.offlineAccess = v
	return p
}

func (p Permission) scopes() []string {
	scope := "files.read"
	if p.write {
		scope = "files.readwrite"
	}

	if p.accessShared {
		scope += ".all"
	}

	scopes := []string{scope}
	if p.offlineAccess {
		scopes = append(scopes, "offline_access")
	}

	return scopes
}

// Token is the outcome of a successful login: a bearer access token, the
// wall-clock time it expires, and, with offline access, a refresh token.
type Token struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
}

// Authentication drives the OAuth2 code and token flows against the
// Microsoft identity platform. Construct with NewAuthentication.
type Authentication struct {
	client     Doer
	cfg        oauth2.Config
	permission Permission
	logger     *slog.Logger
}

// NewAuthentication builds the auth flow state for a registered application.
// redirectURI must match the app registration.
func NewAuthentication(clientID string, permission Permission, redirectURI string) *Authentication {
	return &Authentication{
		client: http.DefaultClient,
		cfg: oauth2.Config{
			ClientID:    clientID,
			Endpoint:    microsoft.AzureADEndpoint("common"),
			RedirectURL: redirectURI,
			Scopes:      permission.scopes(),
		},
		permission: permission,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithClient swaps the HTTP backend used for token requests.
func (a *Authentication) WithClient(client Doer) *Authentication {
	a.client = client
	return a
}

// WithLogger attaches a logger.
func (a *Authentication) WithLogger(logger *slog.Logger) *Authentication {
	a.logger = logger
	return a
}

// CodeAuthURL is the URL to open in a browser for the authorization-code
// flow. The redirect lands on the configured URI with a ?code= parameter to
// pass to LoginWithCode.
func (a *Authentication) CodeAuthURL() string {
	return a.cfg.AuthCodeURL("")
}

// TokenAuthURL is the URL for the implicit token flow: the redirect carries
// the access token directly in its fragment. No refresh token is ever
// issued this way.
func (a *Authentication) TokenAuthURL() string {
	q := url.Values{
		"client_id":     {a.cfg.ClientID},
		"scope":         {strings.Join(a.cfg.Scopes, " ")},
		"response_type": {"token"},
		"redirect_uri":  {a.cfg.RedirectURL},
	}

	return a.cfg.Endpoint.AuthURL + "?" + q.Encode()
}

// LoginWithCode redeems an authorization code for tokens. clientSecret is
// required for confidential (web) applications and must be empty for public
// ones. A refresh token is expected exactly when the permission includes
// offline access.
func (a *Authentication) LoginWithCode(ctx context.Context, code, clientSecret string) (*Token, error) {
	form := url.Values{
		"client_id":    {a.cfg.ClientID},
		"code":         {code},
		"grant_type":   {"authorization_code"},
		"redirect_uri": {a.cfg.RedirectURL},
	}
	if clientSecret != "" {
		form.Set("client_secret", clientSecret)
	}

	return a.requestToken(ctx, form, a.permission.offlineAccess)
}

// LoginWithRefreshToken redeems a refresh token for a fresh token pair.
// Panics if the permission lacks offline access, since no refresh token can
// exist without it.
func (a *Authentication) LoginWithRefreshToken(ctx context.Context, refreshToken, clientSecret string) (*Token, error) {
	if !a.permission.offlineAccess {
		panic("msdrive: refresh login requires offline access permission")
	}

	form := url.Values{
		"client_id":     {a.cfg.ClientID},
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}
	if clientSecret != "" {
		form.Set("client_secret", clientSecret)
	}

	return a.requestToken(ctx, form, true)
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

type tokenErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (a *Authentication) requestToken(ctx context.Context, form url.Values, requireRefresh bool) (*Token, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.Endpoint.TokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("building token request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	a.logger.Debug("token request", "grant_type", form.Get("grant_type"))

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, &RequestError{Op: "POST " + req.URL.Path, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RequestError{Op: "POST " + req.URL.Path, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var te tokenErrorResponse
		if err := json.Unmarshal(body, &te); err != nil || te.Error == "" {
			return nil, &UnexpectedResponseError{
				Reason: fmt.Sprintf("token endpoint returned status %d with unrecognized body", resp.StatusCode),
			}
		}

		return nil, &OAuth2Error{
			StatusCode:  resp.StatusCode,
			Code:        te.Error,
			Description: te.ErrorDescription,
			RetryAfter:  parseRetryAfter(resp.Header),
		}
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, &UnexpectedResponseError{
			Reason: fmt.Sprintf("malformed token response: %v", err),
		}
	}

	if tr.AccessToken == "" {
		return nil, &UnexpectedResponseError{Reason: "token response carries no access token"}
	}

	if requireRefresh && tr.RefreshToken == "" {
		return nil, &UnexpectedResponseError{Reason: "token response carries no refresh token"}
	}

	tok := &Token{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
	}
	if tr.ExpiresIn > 0 {
		tok.Expiry = time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	}

	return tok, nil
}

// TokenSource adapts this flow into an oauth2.TokenSource that refreshes
// automatically as the access token nears expiry. The initial token must
// carry a refresh token.
func (a *Authentication) TokenSource(ctx context.Context, initial *Token, clientSecret string) oauth2.TokenSource {
	first := &oauth2.Token{
		AccessToken:  initial.AccessToken,
		RefreshToken: initial.RefreshToken,
		Expiry:       initial.Expiry,
	}

	return oauth2.ReuseTokenSource(first, &refreshingSource{
		auth:         a,
		ctx:          ctx,
		refreshToken: initial.RefreshToken,
		clientSecret: clientSecret,
	})
}

// refreshingSource mints a new token pair through LoginWithRefreshToken,
// tracking refresh-token rotation across calls.
type refreshingSource struct {
	auth         *Authentication
	ctx          context.Context
	refreshToken string
	clientSecret string
}

func (s *refreshingSource) Token() (*oauth2.Token, error) {
	tok, err := s.auth.LoginWithRefreshToken(s.ctx, s.refreshToken, s.clientSecret)
	if err != nil {
		return nil, err
	}

	s.refreshToken = tok.RefreshToken

	return &oauth2.Token{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	}, nil
}
