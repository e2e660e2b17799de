// Package limits tracks per-entity spending-velocity limits (per-transaction,
// daily, weekly, monthly caps) with rolling counters that reset automatically
// by elapsed wall time. It is a pre-authorization control, independent of the
// pattern detectors.
package limits

import (
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Violations returned by Check. Amounts are in minor units.
var (
	ErrPerTransactionLimit = errors.New("per-transaction limit exceeded")
	ErrDailyLimit          = errors.New("daily spending limit exceeded")
	ErrWeeklyLimit         = errors.New("weekly spending limit exceeded")
	ErrMonthlyLimit        = errors.New("monthly spending limit exceeded")
)

// Limits defines spending caps in minor units. Zero means no cap for that tier.
type Limits struct {
	PerTransaction int64 `json:"per_transaction"`
	Daily          int64 `json:"daily"`
	Weekly         int64 `json:"weekly"`
	Monthly        int64 `json:"monthly"`
}

// counters holds rolling totals and their last reset times.
type counters struct {
	dailyTotal   int64
	weeklyTotal  int64
	monthlyTotal int64
	dailyReset   time.Time
	weeklyReset  time.Time
	monthlyReset time.Time
}

// Tracker enforces Limits per entity.
type Tracker struct {
	mu       sync.Mutex
	limits   map[string]Limits
	counts   map[string]*counters
	defaults Limits
	now      func() time.Time
}

// NewTracker creates a tracker applying the given default limits to entities
// without explicit limits.
func NewTracker(defaults Limits) *Tracker {
	return &Tracker{
		limits:   make(map[string]Limits),
		counts:   make(map[string]*counters),
		defaults: defaults,
		now:      time.Now,
	}
}

// SetLimits replaces the limits for one entity.
func (t *Tracker) SetLimits(entityID string, l Limits) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.limits[entityID] = l
}

// Check verifies the amount against the entity's limits without recording it.
// Returns the first violated limit, tier-ordered.
func (t *Tracker) Check(entityID string, amount int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	l := t.limitsFor(entityID)
	c := t.countersFor(entityID)
	t.rollIfDue(c)

	if l.PerTransaction > 0 && amount > l.PerTransaction {
		return ErrPerTransactionLimit
	}
	if l.Daily > 0 && c.dailyTotal+amount > l.Daily {
		return ErrDailyLimit
	}
	if l.Weekly > 0 && c.weeklyTotal+amount > l.Weekly {
		return ErrWeeklyLimit
	}
	if l.Monthly > 0 && c.monthlyTotal+amount > l.Monthly {
		return ErrMonthlyLimit
	}
	return nil
}

// Record adds the amount to the entity's rolling counters.
func (t *Tracker) Record(entityID string, amount int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	c := t.countersFor(entityID)
	t.rollIfDue(c)
	c.dailyTotal += amount
	c.weeklyTotal += amount
	c.monthlyTotal += amount
}

// Usage reports the entity's current rolling totals as decimal major units
// (two decimal places), for limit dashboards and API responses.
func (t *Tracker) Usage(entityID string) map[string]decimal.Decimal {
	t.mu.Lock()
	defer t.mu.Unlock()

	c := t.countersFor(entityID)
	t.rollIfDue(c)

	cents := decimal.NewFromInt(100)
	return map[string]decimal.Decimal{
		"daily":   decimal.NewFromInt(c.dailyTotal).Div(cents),
		"weekly":  decimal.NewFromInt(c.weeklyTotal).Div(cents),
		"monthly": decimal.NewFromInt(c.monthlyTotal).Div(cents),
	}
}

func (t *Tracker) limitsFor(entityID string) Limits {
	if l, ok := t.limits[entityID]; ok {
		return l
	}
	return t.defaults
}

func (t *Tracker) countersFor(entityID string) *counters {
	c, ok := t.counts[entityID]
	if !ok {
		now := t.now()
		c = &counters{dailyReset: now, weeklyReset: now, monthlyReset: now}
		t.counts[entityID] = c
	}
	return c
}

// rollIfDue zeroes any counter whose period has elapsed since its last reset.
func (t *Tracker) rollIfDue(c *counters) {
	now := t.now()
	if now.Sub(c.dailyReset) >= 24*time.Hour {
		c.dailyTotal = 0
		c.dailyReset = now
	}
	if now.Sub(c.weeklyReset) >= 7*24*time.Hour {
		c.weeklyTotal = 0
		c.weeklyReset = now
	}
	if now.Sub(c.monthlyReset) >= 30*24*time.Hour {
		c.monthlyTotal = 0
		c.monthlyReset = now
	}
}
