package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"

	"hisapi/internal/config"
)

// ErrNotConfigured is returned when no client id/secret pair is configured for the code flow.
var ErrNotConfigured = errors.New("google oauth is not configured")

// OAuthClient runs the authorization code flow for the primary client id.
type OAuthClient struct {
	conf       oauth2.Config
	httpClient *http.Client
}

func NewOAuthClient(cfg config.GoogleConfig) *OAuthClient {
	return &OAuthClient{
		conf: oauth2.Config{
			ClientID:     cfg.ClientID(),
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     googleoauth.Endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
		httpClient: newHTTPClient(cfg.HTTPTimeout),
	}
}

// withEndpoint points the client at another token server; used by tests.
func (o *OAuthClient) withEndpoint(ep oauth2.Endpoint) *OAuthClient {
	o.conf.Endpoint = ep
	return o
}

func (o *OAuthClient) configured() bool {
	return o.conf.ClientID != "" && o.conf.ClientSecret != ""
}

// config returns a copy of the oauth2 config, overriding the redirect URI when one is given.
func (o *OAuthClient) config(redirectURI string) (*oauth2.Config, error) {
	if !o.configured() {
		return nil, ErrNotConfigured
	}
	c := o.conf
	if redirectURI != "" {
		c.RedirectURL = redirectURI
	}
	if c.RedirectURL == "" {
		return nil, fmt.Errorf("%w: redirect uri missing", ErrNotConfigured)
	}
	return &c, nil
}

// AuthCodeURL builds the consent page URL.
func (o *OAuthClient) AuthCodeURL(redirectURI, state string) (string, error) {
	c, err := o.config(redirectURI)
	if err != nil {
		return "", err
	}
	return c.AuthCodeURL(state, oauth2.AccessTypeOnline, oauth2.SetAuthURLParam("prompt", "select_account")), nil
}

// Exchange trades an authorization code for a token. It returns the id_token when Google sends
// one, otherwise the access token, and reports which one it returned.
func (o *OAuthClient) Exchange(ctx context.Context, code, redirectURI string) (token string, isIDToken bool, err error) {
	c, err := o.config(redirectURI)
	if err != nil {
		return "", false, err
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, o.httpClient)
	tok, err := c.Exchange(ctx, code)
	if err != nil {
		return "", false, fmt.Errorf("%w: exchange code: %v", ErrInvalidToken, err)
	}
	if idToken, ok := tok.Extra("id_token").(string); ok && idToken != "" {
		return idToken, true, nil
	}
	return tok.AccessToken, false, nil
}
