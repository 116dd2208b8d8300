package core

import (
	"fmt"
	"time"
)

// Displayed status values.
const (
	StatusDone       = "Selesai"
	StatusInProgress = "Proses"
)

// Thresholds for WindowedStatusPolicy. Records touched after
// StatusDoneAfter are treated as finished, records touched inside the window
// as in progress.
var (
	StatusWindowStart = time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	StatusDoneAfter   = time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC)
)

// StatusPolicy decides the status shown for a search result from its stored
// report status and the timestamps of its report, log and ticket. Zero
// timestamps are absent.
type StatusPolicy func(stored string, timestamps ...time.Time) string

// WindowedStatusPolicy infers status from the most recent timestamp.
func WindowedStatusPolicy(stored string, timestamps ...time.Time) string {
	latest, ok := latestOf(timestamps)
	if !ok {
		return stored
	}
	switch {
	case latest.After(StatusDoneAfter):
		return StatusDone
	case !latest.Before(StatusWindowStart):
		return StatusInProgress
	default:
		return stored
	}
}

// StoredStatusPolicy always shows the stored status.
func StoredStatusPolicy(stored string, _ ...time.Time) string {
	return stored
}

func latestOf(ts []time.Time) (time.Time, bool) {
	var latest time.Time
	found := false
	for _, t := range ts {
		if t.IsZero() {
			continue
		}
		if !found || t.After(latest) {
			latest = t
			found = true
		}
	}
	return latest, found
}

// FormatDuration renders d as "N days, H:MM:SS". Negative durations keep a
// negative day count with a positive clock part, so -1h is "-1 day, 23:00:00".
func FormatDuration(d time.Duration) string {
	const day = 24 * time.Hour

	days := int64(d / day)
	rem := d % day
	if rem < 0 {
		days--
		rem += day
	}

	secs := int64(rem / time.Second)
	clock := fmt.Sprintf("%d:%02d:%02d", secs/3600, secs%3600/60, secs%60)

	switch days {
	case 0:
		return clock
	case 1, -1:
		return fmt.Sprintf("%d day, %s", days, clock)
	default:
		return fmt.Sprintf("%d days, %s", days, clock)
	}
}
