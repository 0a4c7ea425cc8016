package quota

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/baristalabs/coffee/backend/internal/model/account"
	"github.com/baristalabs/coffee/backend/internal/model/usage"
	"github.com/baristalabs/coffee/backend/internal/store"
)

// Guard enforces per-user monthly allowances before backend capacity is
// spent, and records consumption afterwards.
type Guard struct {
	usage store.UsageStore

	// Record is a read-modify-write; serialize it per process so
	// concurrent service callers cannot lose increments.
	mu sync.Mutex
}

// NewGuard creates a quota guard over the usage store.
func NewGuard(usageStore store.UsageStore) *Guard {
	return &Guard{usage: usageStore}
}

// Authorize checks the current period's counter against the plan
// allowance. It never mutates state. A store failure denies the turn:
// giving away capacity is worse than asking the user to retry.
func (g *Guard) Authorize(ctx context.Context, user account.User, rt account.RequestType) (bool, error) {
	limit := user.Plan.Allowance(rt)
	if limit == account.Unlimited {
		return true, nil
	}
	if limit == 0 {
		return false, nil
	}

	rec, ok, err := g.usage.Find(ctx, usage.CurrentPeriod(), user.ID)
	if err != nil {
		return false, fmt.Errorf("quota lookup failed: %w", err)
	}
	if !ok {
		return true, nil
	}

	return counter(rec, rt) < limit, nil
}

// Record adds one request of the given type to the current period,
// creating the period record on first use.
func (g *Guard) Record(ctx context.Context, user account.User, rt account.RequestType) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	period := usage.CurrentPeriod()
	rec, ok, err := g.usage.Find(ctx, period, user.ID)
	if err != nil {
		return fmt.Errorf("quota lookup failed: %w", err)
	}

	if !ok {
		rec = usage.Record{UserID: user.ID, Period: period}
		bump(&rec, rt)
		if _, err := g.usage.Create(ctx, rec); err != nil {
			return fmt.Errorf("quota record create failed: %w", err)
		}
		return nil
	}

	bump(&rec, rt)
	if _, err := g.usage.Update(ctx, rec); err != nil {
		return fmt.Errorf("quota record update failed: %w", err)
	}
	return nil
}

// RecordNonFatal logs and swallows recording failures. Losing one usage
// increment is preferable to failing a turn that already produced output.
func (g *Guard) RecordNonFatal(ctx context.Context, user account.User, rt account.RequestType) {
	if err := g.Record(ctx, user, rt); err != nil {
		log.Printf("[quota] usage recording degraded for user=%s: %v", user.ID, err)
	}
}

// Snapshot returns the current period's record (zero-valued when absent)
// for the usage endpoint.
func (g *Guard) Snapshot(ctx context.Context, user account.User) (usage.Record, error) {
	period := usage.CurrentPeriod()
	rec, ok, err := g.usage.Find(ctx, period, user.ID)
	if err != nil {
		return usage.Record{}, fmt.Errorf("quota lookup failed: %w", err)
	}
	if !ok {
		return usage.Record{UserID: user.ID, Period: period}, nil
	}
	return rec, nil
}

func counter(rec usage.Record, rt account.RequestType) int {
	if rt == account.RequestSlow {
		return rec.SlowRequests
	}
	return rec.FastRequests
}

func bump(rec *usage.Record, rt account.RequestType) {
	if rt == account.RequestSlow {
		rec.SlowRequests++
		return
	}
	rec.FastRequests++
}
