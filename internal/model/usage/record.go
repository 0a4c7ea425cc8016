package usage

import "time"

// Record accumulates billed requests for one user in one calendar month.
// Exactly one record exists per (user, period); it is created lazily on
// the first charge of the period.
type Record struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Period       string    `json:"monthYear"`
	FastRequests int       `json:"fastRequests"`
	SlowRequests int       `json:"slowRequests"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PeriodKey buckets a moment into its calendar year-month. Pinned to UTC
// so authorize and record within one turn always agree near month
// boundaries regardless of server timezone.
func PeriodKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// CurrentPeriod returns the key for the present month.
func CurrentPeriod() string {
	return PeriodKey(time.Now())
}
