package quota_test

import (
	"context"
	"testing"

	"github.com/baristalabs/coffee/backend/internal/model/account"
	"github.com/baristalabs/coffee/backend/internal/model/usage"
	"github.com/baristalabs/coffee/backend/internal/service/quota"
	"github.com/baristalabs/coffee/backend/internal/store"
)

func seed(t *testing.T, s store.UsageStore, userID string, fast, slow int) {
	t.Helper()
	_, err := s.Create(context.Background(), usage.Record{
		UserID:       userID,
		Period:       usage.CurrentPeriod(),
		FastRequests: fast,
		SlowRequests: slow,
	})
	if err != nil {
		t.Fatalf("seed err: %v", err)
	}
}

func TestAuthorizeFreeUserAtLimit(t *testing.T) {
	usageStore := store.NewMemoryUsageStore()
	guard := quota.NewGuard(usageStore)
	user := account.User{ID: "dev@example.com", Plan: account.PlanFree}

	seed(t, usageStore, user.ID, 50, 0)

	allowed, err := guard.Authorize(context.Background(), user, account.RequestFast)
	if err != nil {
		t.Fatalf("Authorize err: %v", err)
	}
	if allowed {
		t.Fatal("free user at 50 fast requests must be denied")
	}
}

func TestAuthorizeUnderLimit(t *testing.T) {
	usageStore := store.NewMemoryUsageStore()
	guard := quota.NewGuard(usageStore)
	user := account.User{ID: "dev@example.com", Plan: account.PlanFree}

	seed(t, usageStore, user.ID, 49, 0)

	allowed, err := guard.Authorize(context.Background(), user, account.RequestFast)
	if err != nil {
		t.Fatalf("Authorize err: %v", err)
	}
	if !allowed {
		t.Fatal("free user under the limit must be allowed")
	}
}

func TestAuthorizeNeverMutates(t *testing.T) {
	usageStore := store.NewMemoryUsageStore()
	guard := quota.NewGuard(usageStore)
	user := account.User{ID: "dev@example.com", Plan: account.PlanFree}

	seed(t, usageStore, user.ID, 12, 0)

	for i := 0; i < 3; i++ {
		if _, err := guard.Authorize(context.Background(), user, account.RequestFast); err != nil {
			t.Fatalf("Authorize err: %v", err)
		}
	}

	rec, ok, err := usageStore.Find(context.Background(), usage.CurrentPeriod(), user.ID)
	if err != nil || !ok {
		t.Fatalf("Find err=%v ok=%v", err, ok)
	}
	if rec.FastRequests != 12 || rec.SlowRequests != 0 {
		t.Fatalf("Authorize mutated the record: %+v", rec)
	}
}

func TestAuthorizeWithoutRecordAllows(t *testing.T) {
	guard := quota.NewGuard(store.NewMemoryUsageStore())
	user := account.User{ID: "new@example.com", Plan: account.PlanFree}

	allowed, err := guard.Authorize(context.Background(), user, account.RequestFast)
	if err != nil {
		t.Fatalf("Authorize err: %v", err)
	}
	if !allowed {
		t.Fatal("a user without a usage record has consumed nothing")
	}
}

func TestAuthorizeSlowTiers(t *testing.T) {
	guard := quota.NewGuard(store.NewMemoryUsageStore())

	free := account.User{ID: "free@example.com", Plan: account.PlanFree}
	if allowed, _ := guard.Authorize(context.Background(), free, account.RequestSlow); allowed {
		t.Fatal("free plan has no slow allowance")
	}

	pro := account.User{ID: "pro@example.com", Plan: account.PlanPro}
	if allowed, _ := guard.Authorize(context.Background(), pro, account.RequestSlow); !allowed {
		t.Fatal("pro plan slow requests are unbounded")
	}
}

func TestRecordCreatesLazilyAndIncrementsOnce(t *testing.T) {
	usageStore := store.NewMemoryUsageStore()
	guard := quota.NewGuard(usageStore)
	user := account.User{ID: "dev@example.com", Plan: account.PlanFree}

	if err := guard.Record(context.Background(), user, account.RequestFast); err != nil {
		t.Fatalf("Record err: %v", err)
	}
	if err := guard.Record(context.Background(), user, account.RequestFast); err != nil {
		t.Fatalf("Record err: %v", err)
	}

	rec, ok, err := usageStore.Find(context.Background(), usage.CurrentPeriod(), user.ID)
	if err != nil || !ok {
		t.Fatalf("Find err=%v ok=%v", err, ok)
	}
	if rec.FastRequests != 2 {
		t.Fatalf("expected 2 fast requests, got %d", rec.FastRequests)
	}
	if rec.SlowRequests != 0 {
		t.Fatalf("slow counter must be untouched, got %d", rec.SlowRequests)
	}
}

func TestSnapshotZeroValuedWhenAbsent(t *testing.T) {
	guard := quota.NewGuard(store.NewMemoryUsageStore())
	user := account.User{ID: "new@example.com", Plan: account.PlanFree}

	rec, err := guard.Snapshot(context.Background(), user)
	if err != nil {
		t.Fatalf("Snapshot err: %v", err)
	}
	if rec.FastRequests != 0 || rec.SlowRequests != 0 {
		t.Fatalf("expected zeroed snapshot, got %+v", rec)
	}
	if rec.Period != usage.CurrentPeriod() {
		t.Fatalf("unexpected period %q", rec.Period)
	}
}
