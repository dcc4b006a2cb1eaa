package discord

import "errors"

// Error categories for the token exchange and identity fetch. The text of
// each sentinel is safe to surface to a user; provider payload details only
// ever appear in the wrapped message, which stays server-side.
var (
	ErrInvalidGrant        = errors.New("discord: authorization code is expired or already used")
	ErrExchangeFailed      = errors.New("discord: token exchange was rejected")
	ErrExchangeUnreachable = errors.New("discord: could not reach token endpoint")
	ErrIdentityFetchFailed = errors.New("discord: could not fetch user identity")
	ErrMalformedIdentity   = errors.New("discord: provider returned a malformed identity")
)
