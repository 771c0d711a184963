package services

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/mymind/internal/client/models"
	"github.com/dmitrijs2005/mymind/internal/logging"
	"github.com/google/uuid"
)

type LockState int

const (
	Unlocked LockState = iota
	Locked
)

func (s LockState) String() string {
	if s == Locked {
		return "locked"
	}
	return "unlocked"
}

type ChallengeOutcome int

const (
	ChallengeSucceeded ChallengeOutcome = iota
	ChallengeFailed
	ChallengeUnavailable
)

func (o ChallengeOutcome) String() string {
	switch o {
	case ChallengeSucceeded:
		return "succeeded"
	case ChallengeFailed:
		return "failed"
	default:
		return "unavailable"
	}
}

// UnlockChallenge asks the user to prove presence.
type UnlockChallenge interface {
	Attempt(ctx context.Context) ChallengeOutcome
}

// SessionMarker remembers that this process has been unlocked once.
// It lives as long as the process.
type SessionMarker struct {
	mu       sync.Mutex
	id       string
	unlocked bool
}

func NewSessionMarker() *SessionMarker {
	return &SessionMarker{id: uuid.NewString()}
}

func (m *SessionMarker) ID() string { return m.id }

func (m *SessionMarker) Unlocked() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unlocked
}

func (m *SessionMarker) Record() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unlocked = true
}

// SettingsSource is the read/write profile path the gate needs.
type SettingsSource interface {
	Settings() models.Settings
	UpdateSettings(ctx context.Context, patch models.SettingsPatch) (models.Settings, error)
}

// LockGate guards the item views behind a once-per-session unlock.
// The state only changes in Evaluate and Unlock; flipping the app lock
// setting leaves it alone.
type LockGate struct {
	mu      sync.Mutex
	state   LockState
	marker  *SessionMarker
	profile SettingsSource
	logger  logging.Logger
}

func NewLockGate(profile SettingsSource, marker *SessionMarker, logger logging.Logger) *LockGate {
	return &LockGate{
		state:   Unlocked,
		marker:  marker,
		profile: profile,
		logger:  logger.With("module", "lock", "session", marker.ID()),
	}
}

// Evaluate computes the starting state for a freshly signed-in owner.
func (g *LockGate) Evaluate(ctx context.Context) LockState {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.state = Unlocked
	if g.profile.Settings().AppLockEnabled && !g.marker.Unlocked() {
		g.state = Locked
	}
	g.logger.Debug(ctx, "lock evaluated", "state", g.state.String())
	return g.state
}

func (g *LockGate) State() LockState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *LockGate) IsLocked() bool {
	return g.State() == Locked
}

// Unlock runs the challenge when locked. Every outcome unlocks: the gate is
// a convenience, not an access control. The outcome is returned for display.
func (g *LockGate) Unlock(ctx context.Context, ch UnlockChallenge) ChallengeOutcome {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state == Unlocked {
		return ChallengeSucceeded
	}

	outcome := ch.Attempt(ctx)
	if outcome == ChallengeSucceeded {
		g.logger.Info(ctx, "unlocked")
	} else {
		g.logger.Warn(ctx, "unlock challenge did not succeed, unlocking anyway", "outcome", outcome.String())
	}
	g.marker.Record()
	g.state = Unlocked
	return outcome
}

// SetAppLock persists the setting without touching the current state.
func (g *LockGate) SetAppLock(ctx context.Context, enabled bool) error {
	_, err := g.profile.UpdateSettings(ctx, models.SettingsPatch{AppLockEnabled: &enabled})
	return err
}
