package authflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmswan/fivemhub/discord"
	"github.com/jmswan/fivemhub/internal/session"
)

var ctx = context.Background()

var bob = discord.Identity{
	ExternalID: "1",
	Email:      "bob@x.com",
	Username:   "bob",
}

type fakeProvider struct {
	mu          sync.Mutex
	exchanges   int
	exchangeErr error
	identity    discord.Identity
	identityErr error
	gate        chan struct{}
}

func (p *fakeProvider) ExchangeCode(ctx context.Context, code string) (*discord.TokenResult, error) {
	p.mu.Lock()
	p.exchanges++
	gate := p.gate
	p.mu.Unlock()

	if gate != nil {
		<-gate
	}

	if p.exchangeErr != nil {
		return nil, p.exchangeErr
	}

	return &discord.TokenResult{AccessToken: "tok", TokenType: "Bearer"}, nil
}

func (p *fakeProvider) FetchIdentity(ctx context.Context, accessToken string) (discord.Identity, error) {
	if p.identityErr != nil {
		return discord.Identity{}, p.identityErr
	}

	return p.identity, nil
}

func (p *fakeProvider) exchangeCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.exchanges
}

type fakeProfiles struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeProfiles) EnsureProfile(ctx context.Context, identity discord.Identity) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++

	return f.err
}

func pendingSession(t *testing.T) (*session.Store, string) {
	t.Helper()

	store := session.New(session.Memory{})

	state, err := store.NewState()
	require.NoError(t, err)

	return store, state
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHandleHappyPath(t *testing.T) {
	assert := assert.New(t)

	provider := &fakeProvider{identity: bob}
	profiles := &fakeProfiles{}
	flow := New(provider, profiles, discardLogger())

	signals := 0
	flow.OnAuthChanged(func() { signals++ })

	sess, state := pendingSession(t)

	result, err := flow.Handle(ctx, sess, "abc", state)
	require.NoError(t, err)

	assert.Equal(bob, result.Identity)
	assert.Equal("tok", result.AccessToken)

	assert.True(sess.IsAuthenticated())
	require.NotNil(t, sess.Current())
	assert.Equal(bob, *sess.Current())
	assert.Equal("tok", sess.AccessToken())

	assert.Equal(1, profiles.calls)
	assert.Equal(1, signals)
}

func TestHandleMissingCode(t *testing.T) {
	assert := assert.New(t)

	provider := &fakeProvider{identity: bob}
	flow := New(provider, &fakeProfiles{}, discardLogger())

	sess, state := pendingSession(t)

	_, err := flow.Handle(ctx, sess, "", state)
	assertAbort(t, err, ReasonMissingCode)

	assert.Zero(provider.exchangeCount())
	assert.False(sess.IsAuthenticated())
}

func TestHandleStateMismatch(t *testing.T) {
	assert := assert.New(t)

	provider := &fakeProvider{identity: bob}
	flow := New(provider, &fakeProfiles{}, discardLogger())

	sess, _ := pendingSession(t)

	_, err := flow.Handle(ctx, sess, "abc", "wrong-state")
	assertAbort(t, err, ReasonStateMismatch)

	// no exchange happens on a forged state
	assert.Zero(provider.exchangeCount())
	assert.False(sess.IsAuthenticated())
}

func TestHandleNoPendingState(t *testing.T) {
	assert := assert.New(t)

	provider := &fakeProvider{identity: bob}
	flow := New(provider, &fakeProfiles{}, discardLogger())

	sess := session.New(session.Memory{})

	_, err := flow.Handle(ctx, sess, "abc", "xyz")
	assertAbort(t, err, ReasonStateMismatch)
	assert.Zero(provider.exchangeCount())
}

func TestHandleExchangeErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		reason AbortReason
	}{
		{"invalid grant", fmt.Errorf("wrapped: %w", discord.ErrInvalidGrant), ReasonInvalidGrant},
		{"rejected", fmt.Errorf("wrapped: %w", discord.ErrExchangeFailed), ReasonExchangeFailed},
		{"unreachable", fmt.Errorf("wrapped: %w", discord.ErrExchangeUnreachable), ReasonExchangeUnreachable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			provider := &fakeProvider{exchangeErr: tc.err}
			flow := New(provider, &fakeProfiles{}, discardLogger())

			signals := 0
			flow.OnAuthChanged(func() { signals++ })

			sess, state := pendingSession(t)

			_, err := flow.Handle(ctx, sess, "abc", state)
			assertAbort(t, err, tc.reason)

			assert.False(sess.IsAuthenticated())
			assert.Zero(signals)
		})
	}
}

func TestHandleIdentityErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		reason AbortReason
	}{
		{"fetch failed", fmt.Errorf("wrapped: %w", discord.ErrIdentityFetchFailed), ReasonIdentityFetchFailed},
		{"malformed", fmt.Errorf("wrapped: %w", discord.ErrMalformedIdentity), ReasonMalformedIdentity},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			provider := &fakeProvider{identityErr: tc.err}
			flow := New(provider, &fakeProfiles{}, discardLogger())

			sess, state := pendingSession(t)

			_, err := flow.Handle(ctx, sess, "abc", state)
			assertAbort(t, err, tc.reason)
			assert.False(sess.IsAuthenticated())
		})
	}
}

func TestHandleIncompleteIdentityAborts(t *testing.T) {
	assert := assert.New(t)

	provider := &fakeProvider{identity: discord.Identity{Username: "ghost"}}
	flow := New(provider, &fakeProfiles{}, discardLogger())

	sess, state := pendingSession(t)

	_, err := flow.Handle(ctx, sess, "abc", state)
	assertAbort(t, err, ReasonMalformedIdentity)
	assert.False(sess.IsAuthenticated())
}

func TestHandleReconciliationFailureIsNotFatal(t *testing.T) {
	assert := assert.New(t)

	provider := &fakeProvider{identity: bob}
	profiles := &fakeProfiles{err: errors.New("storage unreachable")}
	flow := New(provider, profiles, discardLogger())

	sess, state := pendingSession(t)

	result, err := flow.Handle(ctx, sess, "abc", state)
	require.NoError(t, err)

	assert.Equal(bob, result.Identity)
	assert.True(sess.IsAuthenticated())
	assert.Equal(1, profiles.calls)
}

func TestHandleRejectsConcurrentDuplicate(t *testing.T) {
	assert := assert.New(t)

	gate := make(chan struct{})
	provider := &fakeProvider{identity: bob, gate: gate}
	flow := New(provider, &fakeProfiles{}, discardLogger())

	first, firstState := pendingSession(t)

	done := make(chan error, 1)
	go func() {
		_, err := flow.Handle(ctx, first, "abc", firstState)
		done <- err
	}()

	// wait for the first callback to reach the exchange
	require.Eventually(t, func() bool {
		return provider.exchangeCount() == 1
	}, time.Second, time.Millisecond)

	second, secondState := pendingSession(t)

	_, err := flow.Handle(ctx, second, "abc", secondState)
	assertAbort(t, err, ReasonDuplicateCallback)

	close(gate)
	require.NoError(t, <-done)

	// only the first invocation performed an exchange
	assert.Equal(1, provider.exchangeCount())
	assert.True(first.IsAuthenticated())
	assert.False(second.IsAuthenticated())
}

func TestHandleStateConsumedOnAbort(t *testing.T) {
	assert := assert.New(t)

	provider := &fakeProvider{exchangeErr: fmt.Errorf("wrapped: %w", discord.ErrInvalidGrant)}
	flow := New(provider, &fakeProfiles{}, discardLogger())

	sess, state := pendingSession(t)

	_, err := flow.Handle(ctx, sess, "abc", state)
	assertAbort(t, err, ReasonInvalidGrant)

	// the pending state was consumed by the failed attempt
	assert.False(sess.ValidateState(state))
}

func assertAbort(t *testing.T, err error, reason AbortReason) {
	t.Helper()

	var aerr *AbortError
	require.ErrorAs(t, err, &aerr)
	require.Equal(t, reason, aerr.Reason)
	require.NotEmpty(t, aerr.Message)
}
