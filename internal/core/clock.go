package core

const (
	PhaseNone        Phase = "none"
	PhaseConfiguring Phase = "configuring"
	PhaseActive      Phase = "active"
	PhaseCompleted   Phase = "completed"
)

// Phase is the challenge lifecycle state. It is derived from the session on
// every read; the Active -> Completed transition happens opportunistically
// when the clock reports elapse, not on a timer.
type Phase string

// CurrentDay returns the 1-indexed day of the challenge for the given
// calendar date. Both dates are already day-truncated, so the difference is
// an exact whole number of days. A start date in the future clamps to
// day 1 rather than reporting day 0 or negative days.
func CurrentDay(start, today Date) int {
	days := int(today.Sub(start.Time).Hours() / 24)
	if days < 0 {
		return 1
	}
	return days + 1
}

// IsElapsed reports whether the challenge is over: the current day has
// moved past the challenge length.
func IsElapsed(currentDay, durationDays int) bool {
	return currentDay > durationDays
}
