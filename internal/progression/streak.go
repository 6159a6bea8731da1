package progression

import "time"

// NextLoginStreak computes the streak value after a login at now (UTC days).
// Same-day repeat logins keep the streak, a login the day after the last
// activity extends it, anything else restarts at 1.
func NextLoginStreak(lastActiveAt *time.Time, current int, now time.Time) int {
	if lastActiveAt == nil || current <= 0 {
		return 1
	}

	lastDay := lastActiveAt.UTC().Truncate(24 * time.Hour)
	today := now.UTC().Truncate(24 * time.Hour)

	switch today.Sub(lastDay) {
	case 0:
		return current
	case 24 * time.Hour:
		return current + 1
	default:
		return 1
	}
}
