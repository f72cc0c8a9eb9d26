package adaptive

import (
	"testing"
	"time"

	"examprep/backend/models"

	"github.com/stretchr/testify/assert"
)

func TestActiveElapsedExcludesPausedTime(t *testing.T) {
	start := time.Now().Add(-10 * time.Minute)
	session := &models.AdaptiveSession{
		Status:           models.SessionActive,
		TimeLimitSeconds: 900,
		StartedAt:        start,
		PausedSeconds:    180,
	}

	now := start.Add(10 * time.Minute)
	assert.Equal(t, 420, ActiveElapsed(session, now))
	assert.Equal(t, 480, Remaining(session, now))
}

func TestPausedSessionCountdownIsFrozen(t *testing.T) {
	start := time.Now().Add(-30 * time.Minute)
	pausedAt := start.Add(5 * time.Minute)
	session := &models.AdaptiveSession{
		Status:           models.SessionPaused,
		TimeLimitSeconds: 600,
		StartedAt:        start,
		PausedAt:         &pausedAt,
	}

	// However long the pause lasts, only the five active minutes count.
	now := start.Add(30 * time.Minute)
	assert.Equal(t, 300, ActiveElapsed(session, now))
	assert.False(t, Expired(session, now))
}

func TestExpiredOnlyForActiveSessions(t *testing.T) {
	start := time.Now().Add(-2 * time.Hour)
	session := &models.AdaptiveSession{
		Status:           models.SessionActive,
		TimeLimitSeconds: 60,
		StartedAt:        start,
	}
	assert.True(t, Expired(session, time.Now()))

	session.Status = models.SessionCompleted
	assert.False(t, Expired(session, time.Now()))
}
