// Package authflow sequences the Discord callback: state validation, code
// exchange, identity resolution, profile reconciliation, session write.
package authflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jmswan/fivemhub/discord"
)

// Step names the orchestrator's position for logging and test assertions.
type Step string

const (
	StepIdle               Step = "idle"
	StepAwaitingCode       Step = "awaiting_code"
	StepExchangingToken    Step = "exchanging_token"
	StepFetchingIdentity   Step = "fetching_identity"
	StepReconcilingProfile Step = "reconciling_profile"
	StepComplete           Step = "complete"
)

// Provider is the slice of the Discord client the flow needs.
type Provider interface {
	ExchangeCode(ctx context.Context, code string) (*discord.TokenResult, error)
	FetchIdentity(ctx context.Context, accessToken string) (discord.Identity, error)
}

// Sessions is the per-request session store the flow writes on completion.
type Sessions interface {
	ValidateState(returned string) bool
	Save(identity discord.Identity, accessToken string) error
	Clear()
}

// Profiles reconciles the durable member record. Failures are non-fatal.
type Profiles interface {
	EnsureProfile(ctx context.Context, identity discord.Identity) error
}

type Result struct {
	Identity    discord.Identity
	AccessToken string
}

type Flow struct {
	provider Provider
	profiles Profiles
	logger   *slog.Logger

	mu       sync.Mutex
	inflight map[string]struct{}

	lmu       sync.Mutex
	listeners []func()
}

func New(provider Provider, profiles Profiles, logger *slog.Logger) *Flow {
	if logger == nil {
		logger = slog.Default()
	}

	return &Flow{
		provider: provider,
		profiles: profiles,
		logger:   logger,
		inflight: map[string]struct{}{},
	}
}

// OnAuthChanged registers an observer notified once per completed login.
func (f *Flow) OnAuthChanged(fn func()) {
	f.lmu.Lock()
	defer f.lmu.Unlock()

	f.listeners = append(f.listeners, fn)
}

func (f *Flow) notifyAuthChanged() {
	f.lmu.Lock()
	defer f.lmu.Unlock()

	for _, fn := range f.listeners {
		fn()
	}
}

// Handle runs the callback for a single (code, state) delivery. On any abort
// the session is left unauthenticated: nothing durable is written before the
// final step, and the pending state is consumed either way.
func (f *Flow) Handle(ctx context.Context, sess Sessions, code, state string) (*Result, error) {
	if code == "" {
		sess.Clear()
		return nil, abort(ReasonMissingCode, "no authorization code was returned by discord", nil)
	}

	// A code is single-use at the provider; reject concurrent duplicates
	// locally rather than racing two exchanges.
	if !f.begin(code) {
		return nil, abort(ReasonDuplicateCallback, "this login attempt is already being processed", nil)
	}
	defer f.finish(code)

	f.logger.Debug("handling callback", slog.String("step", string(StepAwaitingCode)))

	if !sess.ValidateState(state) {
		sess.Clear()
		return nil, abort(ReasonStateMismatch, "login state did not match, please try logging in again", nil)
	}

	f.logger.Debug("handling callback", slog.String("step", string(StepExchangingToken)))

	token, err := f.provider.ExchangeCode(ctx, code)
	if err != nil {
		sess.Clear()
		return nil, classifyExchange(err)
	}

	if token.AccessToken == "" {
		sess.Clear()
		return nil, abort(ReasonExchangeFailed, "discord did not return an access token", nil)
	}

	f.logger.Debug("handling callback", slog.String("step", string(StepFetchingIdentity)))

	identity, err := f.provider.FetchIdentity(ctx, token.AccessToken)
	if err != nil {
		sess.Clear()
		return nil, classifyIdentity(err)
	}

	if identity.ExternalID == "" || identity.Email == "" {
		sess.Clear()
		return nil, abort(ReasonMalformedIdentity, "discord returned an incomplete identity", nil)
	}

	f.logger.Debug("handling callback", slog.String("step", string(StepReconcilingProfile)))

	// Best-effort: the user is authenticated even if profile bootstrap is
	// delayed.
	if err := f.profiles.EnsureProfile(ctx, identity); err != nil {
		f.logger.Error("profile reconciliation failed, login continues",
			slog.String("discord_id", identity.ExternalID),
			slog.String("err", err.Error()),
		)
	}

	if err := sess.Save(identity, token.AccessToken); err != nil {
		return nil, fmt.Errorf("could not save session: %w", err)
	}

	f.logger.Debug("handling callback", slog.String("step", string(StepComplete)))

	f.notifyAuthChanged()

	return &Result{
		Identity:    identity,
		AccessToken: token.AccessToken,
	}, nil
}

func (f *Flow) begin(code string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.inflight[code]; ok {
		return false
	}

	f.inflight[code] = struct{}{}

	return true
}

func (f *Flow) finish(code string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.inflight, code)
}

func classifyExchange(err error) error {
	switch {
	case errors.Is(err, discord.ErrInvalidGrant):
		return abort(ReasonInvalidGrant, "this login link was already used or has expired, please log in again", err)
	case errors.Is(err, discord.ErrExchangeUnreachable):
		return abort(ReasonExchangeUnreachable, "could not reach discord, please try again", err)
	default:
		return abort(ReasonExchangeFailed, "discord rejected the login, please try again", err)
	}
}

func classifyIdentity(err error) error {
	if errors.Is(err, discord.ErrMalformedIdentity) {
		return abort(ReasonMalformedIdentity, "discord returned an incomplete identity", err)
	}
	return abort(ReasonIdentityFetchFailed, "could not load your discord profile, please try again", err)
}
