package usage

import (
	"testing"
	"time"
)

func TestPeriodKeyFormatsYearMonth(t *testing.T) {
	moment := time.Date(2025, time.March, 9, 14, 30, 0, 0, time.UTC)
	if got := PeriodKey(moment); got != "2025-03" {
		t.Fatalf("PeriodKey = %q, want 2025-03", got)
	}
}

func TestPeriodKeyPinnedToUTC(t *testing.T) {
	// 2025-06-30 23:30 in UTC-5 is already July in that zone, but the
	// period key must follow UTC.
	zone := time.FixedZone("UTC+5", 5*3600)
	moment := time.Date(2025, time.July, 1, 2, 0, 0, 0, zone)

	if got := PeriodKey(moment); got != "2025-06" {
		t.Fatalf("PeriodKey = %q, want 2025-06", got)
	}
}
