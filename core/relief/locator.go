// Package relief locates the crew assignments that need a relief within a
// tenant's planning horizon.
package relief

import (
	"context"
	"sort"
	"time"

	"github.com/kilianp07/crewplan/core/model"
	"github.com/kilianp07/crewplan/core/store"
)

// Locator finds relief needs for a tenant.
type Locator struct {
	store store.ReliefStore
	now   func() time.Time
}

// NewLocator creates a Locator reading from s.
func NewLocator(s store.ReliefStore) *Locator {
	return &Locator{store: s, now: time.Now}
}

// SetClock overrides the time source.
func (l *Locator) SetClock(now func() time.Time) { l.now = now }

// Cutoff returns the latest sign-off date considered due for the tenant.
func (l *Locator) Cutoff(t model.TenantConfig) time.Time {
	return l.now().UTC().AddDate(0, 0, t.HorizonDays)
}

// Due returns the active assignments of the tenant signing off within the
// horizon, most urgent first. A read failure is reported as a
// *model.DataAccessError.
func (l *Locator) Due(ctx context.Context, t model.TenantConfig) ([]model.ReliefNeed, error) {
	needs, err := l.store.ActiveSigningOffBefore(ctx, t.TenantID, l.Cutoff(t))
	if err != nil {
		return nil, &model.DataAccessError{TenantID: t.TenantID, Op: "locate relief needs", Err: err}
	}
	sort.SliceStable(needs, func(i, j int) bool {
		if needs[i].SignOffDate.Equal(needs[j].SignOffDate) {
			return needs[i].AssignmentID < needs[j].AssignmentID
		}
		return needs[i].SignOffDate.Before(needs[j].SignOffDate)
	})
	return needs, nil
}
