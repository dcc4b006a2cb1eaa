package discord

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const (
	DefaultAuthorizeURL = "https://discord.com/oauth2/authorize"
	DefaultTokenURL     = "https://discord.com/api/oauth2/token"
	DefaultAPIBase      = "https://discord.com/api"
)

// Scopes is the fixed permission set the platform requires. Under-scoping is
// a configuration bug, not a runtime condition.
var Scopes = []string{"identify", "email", "guilds"}

type Client struct {
	h       *http.Client
	conf    *oauth2.Config
	apiBase string
}

type ClientArgs struct {
	H            *http.Client
	ClientID     string
	ClientSecret string
	RedirectURI  string

	// Endpoint overrides, used by tests. Zero values select Discord.
	AuthorizeURL string
	TokenURL     string
	APIBase      string
}

func NewClient(args ClientArgs) (*Client, error) {
	if args.ClientID == "" {
		return nil, fmt.Errorf("no client id provided")
	}

	if args.ClientSecret == "" {
		return nil, fmt.Errorf("no client secret provided")
	}

	if args.RedirectURI == "" {
		return nil, fmt.Errorf("no redirect uri provided")
	}

	if args.H == nil {
		args.H = &http.Client{
			Timeout: 5 * time.Second,
		}
	}

	if args.AuthorizeURL == "" {
		args.AuthorizeURL = DefaultAuthorizeURL
	}

	if args.TokenURL == "" {
		args.TokenURL = DefaultTokenURL
	}

	if args.APIBase == "" {
		args.APIBase = DefaultAPIBase
	}

	return &Client{
		h: args.H,
		conf: &oauth2.Config{
			ClientID:     args.ClientID,
			ClientSecret: args.ClientSecret,
			RedirectURL:  args.RedirectURI,
			Scopes:       Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   args.AuthorizeURL,
				TokenURL:  args.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		apiBase: strings.TrimSuffix(args.APIBase, "/"),
	}, nil
}

// AuthorizeURL serializes the authorization redirect for the given state
// token. Pure; no network call.
func (c *Client) AuthorizeURL(state string) string {
	return c.conf.AuthCodeURL(state)
}

// ExchangeCode trades a single-use authorization code for an access token.
// Must only run where the client secret is available.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*TokenResult, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.h)

	tok, err := c.conf.Exchange(ctx, code)
	if err != nil {
		var rerr *oauth2.RetrieveError
		if errors.As(err, &rerr) {
			if rerr.ErrorCode == "invalid_grant" {
				return nil, fmt.Errorf("%w: %s", ErrInvalidGrant, rerr.ErrorDescription)
			}
			return nil, fmt.Errorf("%w: status %d: %s", ErrExchangeFailed, rerr.Response.StatusCode, providerMessage(rerr))
		}
		return nil, fmt.Errorf("%w: %v", ErrExchangeUnreachable, err)
	}

	if tok.AccessToken == "" {
		return nil, fmt.Errorf("%w: response contained no access token", ErrExchangeFailed)
	}

	result := &TokenResult{
		AccessToken: tok.AccessToken,
		TokenType:   tok.TokenType,
	}

	if scope, ok := tok.Extra("scope").(string); ok {
		result.Scope = scope
	}

	if !tok.Expiry.IsZero() {
		result.ExpiresIn = int64(time.Until(tok.Expiry).Round(time.Second).Seconds())
	}

	return result, nil
}

// FetchIdentity resolves the authenticated user behind an access token and
// normalizes it. Succeeds whenever the HTTP call succeeds and the payload
// carries an id; a missing email is synthesized, never fatal.
func (c *Client) FetchIdentity(ctx context.Context, accessToken string) (Identity, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.apiBase+"/users/@me", nil)
	if err != nil {
		return Identity{}, fmt.Errorf("error creating request for current user: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.h.Do(req)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrIdentityFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return Identity{}, fmt.Errorf("%w: received status %d from provider", ErrIdentityFetchFailed, resp.StatusCode)
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: could not read body: %v", ErrIdentityFetchFailed, err)
	}

	var raw userPayload
	if err := json.Unmarshal(b, &raw); err != nil {
		return Identity{}, fmt.Errorf("%w: could not unmarshal user payload: %v", ErrMalformedIdentity, err)
	}

	return normalizeIdentity(raw)
}

// providerMessage extracts a loggable message from a provider rejection
// without assuming the body is well-formed JSON.
func providerMessage(rerr *oauth2.RetrieveError) string {
	if rerr.ErrorCode != "" {
		if rerr.ErrorDescription != "" {
			return rerr.ErrorCode + ": " + rerr.ErrorDescription
		}
		return rerr.ErrorCode
	}
	return string(rerr.Body)
}
