package trends

import "time"

const (
	DefaultLookbackDays = 7
	maxLookbackDays     = 30
)

// LookbackWindow returns the inclusive [from, to] range in YYYY-MM-DD that
// covers the last n calendar days ending on now's date. n is clamped to 1..30.
func LookbackWindow(n int, now time.Time) (from, to string) {
	if n < 1 {
		n = 1
	}
	if n > maxLookbackDays {
		n = maxLookbackDays
	}
	end := truncateToDate(now)
	start := end.AddDate(0, 0, -(n - 1))
	return start.Format(time.DateOnly), end.Format(time.DateOnly)
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
