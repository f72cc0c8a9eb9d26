package adaptive

import (
	"time"

	"examprep/backend/models"
)

// ActiveElapsed returns the seconds a session has been running, excluding
// time spent paused. While paused the in-progress pause interval is also
// excluded, so the countdown is frozen.
func ActiveElapsed(s *models.AdaptiveSession, now time.Time) int {
	elapsed := int(now.Sub(s.StartedAt).Seconds()) - s.PausedSeconds
	if s.PausedAt != nil {
		elapsed -= int(now.Sub(*s.PausedAt).Seconds())
	}
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// Remaining returns the seconds left in the time budget, floored at zero.
func Remaining(s *models.AdaptiveSession, now time.Time) int {
	left := s.TimeLimitSeconds - ActiveElapsed(s, now)
	if left < 0 {
		return 0
	}
	return left
}

// Expired reports whether an ACTIVE session has exhausted its time budget.
// Paused and completed sessions never expire; their countdown is frozen.
func Expired(s *models.AdaptiveSession, now time.Time) bool {
	return s.Status == models.SessionActive && Remaining(s, now) <= 0
}
