package auth

import (
	"context"
	"fmt"
	"time"
)

// SessionGuard enforces the inactivity timeout on top of token verification.
type SessionGuard struct {
	store   ActivityStore
	timeout time.Duration
	clock   func() time.Time
}

func NewSessionGuard(store ActivityStore, timeout time.Duration) *SessionGuard {
	return &SessionGuard{
		store:   store,
		timeout: timeout,
		clock:   time.Now,
	}
}

// WithClock replaces the time source.
func (g *SessionGuard) WithClock(clock func() time.Time) *SessionGuard {
	g.clock = clock
	return g
}

// Check rejects revoked or idle sessions and records the activity otherwise.
func (g *SessionGuard) Check(ctx context.Context, identity *Identity) error {
	now := g.clock()

	revokedAt, revoked, err := g.store.RevokedAt(ctx, identity.UserID)
	if err != nil {
		return fmt.Errorf("failed to read session revocation: %w", err)
	}
	// iat has whole-second precision, so a token from the revocation second is rejected too
	if revoked && !identity.IssuedAt.After(revokedAt) {
		return ErrSessionExpired
	}

	lastSeen, seen, err := g.store.LastSeen(ctx, identity.UserID)
	if err != nil {
		return fmt.Errorf("failed to read session activity: %w", err)
	}
	if seen && g.timeout > 0 && now.Sub(lastSeen) > g.timeout {
		if err := g.store.Evict(ctx, identity.UserID, now.Truncate(time.Second)); err != nil {
			return fmt.Errorf("failed to evict idle session: %w", err)
		}
		return ErrSessionExpired
	}

	if err := g.store.Touch(ctx, identity.UserID, now); err != nil {
		return fmt.Errorf("failed to record session activity: %w", err)
	}
	return nil
}

// Logout ends the user's session.
func (g *SessionGuard) Logout(ctx context.Context, userID string) error {
	return g.store.Evict(ctx, userID, g.clock().Truncate(time.Second))
}
