package tier

import (
	"context"
	"fmt"
	"time"

	"github.com/aman-churiwal/tutor-gateway/internal/models"
	"github.com/google/uuid"
)

// LedgerStore is the slice of persistence the gate needs.
type LedgerStore interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateUserLedger(ctx context.Context, id uuid.UUID, tokensUsed int, lastReset time.Time) error
}

// Budget is the gate's verdict for one request.
type Budget struct {
	Allowed   bool `json:"allowed"`
	Remaining int  `json:"remaining"`
}

// Gate decides whether a user may spend more tokens today.
type Gate struct {
	store    LedgerStore
	now      func() time.Time
	location *time.Location
}

func NewGate(store LedgerStore) *Gate {
	return &Gate{
		store:    store,
		now:      time.Now,
		location: time.Local,
	}
}

// WithClock replaces the gate's time source. Used by tests.
func (g *Gate) WithClock(now func() time.Time) *Gate {
	g.now = now
	return g
}

// WithLocation sets the timezone the calendar day boundary is evaluated in.
func (g *Gate) WithLocation(loc *time.Location) *Gate {
	if loc != nil {
		g.location = loc
	}
	return g
}

// Check returns the budget for userID under tier t. A stale ledger from an
// earlier day is reset as a side effect. A missing user fails closed.
func (g *Gate) Check(ctx context.Context, userID uuid.UUID, t models.Tier) (Budget, error) {
	user, err := g.store.GetUserByID(ctx, userID)
	if err != nil {
		return Budget{}, fmt.Errorf("load ledger: %w", err)
	}
	if user == nil {
		return Budget{Allowed: false, Remaining: 0}, nil
	}

	policy := Lookup(t)
	if !policy.Metered() {
		return Budget{Allowed: true, Remaining: Unlimited}, nil
	}

	now := g.now()
	if NewDay(user.LastTokenReset, now, g.location) {
		if err := g.store.UpdateUserLedger(ctx, user.ID, 0, now); err != nil {
			return Budget{}, fmt.Errorf("reset ledger: %w", err)
		}
		return Budget{Allowed: true, Remaining: policy.TokenLimit}, nil
	}

	remaining := policy.TokenLimit - user.TokensUsedToday
	if remaining < 0 {
		remaining = 0
	}

	return Budget{Allowed: remaining > 0, Remaining: remaining}, nil
}

// Permit applies the enforcement policy: free tier requests always proceed,
// every other tier needs the gate's approval.
func Permit(t models.Tier, b Budget) bool {
	return t == models.TierFree || b.Allowed
}

// NewDay reports whether now falls on a different calendar day than last.
// Only day-of-month and month are compared.
func NewDay(last, now time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.Local
	}
	last = last.In(loc)
	now = now.In(loc)

	return last.Day() != now.Day() || last.Month() != now.Month()
}
