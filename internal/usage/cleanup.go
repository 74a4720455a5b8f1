package usage

import "time"

// RunCleanupLoop runs cleanupFn immediately and then every interval until stop is closed.
func RunCleanupLoop(stop <-chan struct{}, interval time.Duration, cleanupFn func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	cleanupFn()

	for {
		select {
		case <-ticker.C:
			cleanupFn()
		case <-stop:
			return
		}
	}
}

func retentionCutoff(now time.Time, retentionDays int) time.Time {
	return now.AddDate(0, 0, -retentionDays).UTC()
}
