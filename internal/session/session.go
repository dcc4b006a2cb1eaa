// Package session holds the client-facing authentication state: the
// identity/token pair and the transient pending-state value for the OAuth
// round trip. Storage is an injected key/value capability so the server can
// back it with a cookie session and tests with a plain map.
package session

import (
	"encoding/json"
	"fmt"

	"github.com/jmswan/fivemhub/discord"
	"github.com/jmswan/fivemhub/internal/helpers"
)

const (
	identityKey = "fivemhub_user"
	tokenKey    = "fivemhub_token"
	stateKey    = "fivemhub_oauth_state"
)

// KV is the storage capability behind a Store. Implementations are confined
// to a single logical owner; no locking discipline is required.
type KV interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Delete(key string)
}

// Memory is a map-backed KV for tests and CLI use.
type Memory map[string]string

func (m Memory) Get(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

func (m Memory) Set(key, value string) {
	m[key] = value
}

func (m Memory) Delete(key string) {
	delete(m, key)
}

type Store struct {
	kv KV
}

func New(kv KV) *Store {
	return &Store{kv: kv}
}

// NewState mints a pending anti-forgery token for a new login attempt,
// overwriting any previous one.
func (s *Store) NewState() (string, error) {
	state, err := helpers.GenerateToken(16)
	if err != nil {
		return "", fmt.Errorf("could not generate state token: %w", err)
	}

	s.kv.Set(stateKey, state)

	return state, nil
}

// ValidateState compares the returned state against the pending value. The
// pending value is consumed regardless of outcome, so a state can be
// validated at most once.
func (s *Store) ValidateState(returned string) bool {
	pending, ok := s.kv.Get(stateKey)
	s.kv.Delete(stateKey)

	if !ok || pending == "" {
		return false
	}

	return returned != "" && returned == pending
}

// Save writes a complete session. Identity first, token last: a reader
// requires both keys, so it never observes a half-written session.
func (s *Store) Save(identity discord.Identity, accessToken string) error {
	b, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("could not marshal identity: %w", err)
	}

	s.kv.Set(identityKey, string(b))
	s.kv.Set(tokenKey, accessToken)

	return nil
}

// Clear removes the session and any pending state. Idempotent.
func (s *Store) Clear() {
	s.kv.Delete(identityKey)
	s.kv.Delete(tokenKey)
	s.kv.Delete(stateKey)
}

func (s *Store) IsAuthenticated() bool {
	return s.Current() != nil
}

// Current returns the stored identity, or nil when either half of the
// session is missing.
func (s *Store) Current() *discord.Identity {
	raw, ok := s.kv.Get(identityKey)
	if !ok || raw == "" {
		return nil
	}

	token, ok := s.kv.Get(tokenKey)
	if !ok || token == "" {
		return nil
	}

	var identity discord.Identity
	if err := json.Unmarshal([]byte(raw), &identity); err != nil {
		return nil
	}

	return &identity
}

func (s *Store) AccessToken() string {
	if !s.IsAuthenticated() {
		return ""
	}

	token, _ := s.kv.Get(tokenKey)

	return token
}
