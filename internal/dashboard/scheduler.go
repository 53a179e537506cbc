package dashboard

import "time"

// ShouldRefresh reports whether more than interval has passed since last.
// A zero last time always opens the gate. It only gates; the caller
// fetches and then records the new time.
func ShouldRefresh(now, last time.Time, interval time.Duration) bool {
	if last.IsZero() {
		return true
	}
	return now.Sub(last) > interval
}

// refreshTimer tracks one refresh cadence. attempted gates the next fetch,
// succeeded is the time of the last good result shown to the user.
type refreshTimer struct {
	interval  time.Duration
	attempted time.Time
	succeeded time.Time
}

func (t *refreshTimer) due(now time.Time) bool {
	return ShouldRefresh(now, t.attempted, t.interval)
}

func (t *refreshTimer) reset(now time.Time) {
	t.attempted = now
}

func (t *refreshTimer) record(now time.Time, err error) {
	t.attempted = now
	if err == nil {
		t.succeeded = now
	}
}

func (t *refreshTimer) clear() {
	t.attempted = time.Time{}
	t.succeeded = time.Time{}
}
