package adaptive

import (
	"fmt"

	"examprep/backend/models"
)

// NextDifficulty picks the tier for the next question from the answer
// history so far. The contract:
//
//   - two most recent answers both correct: escalate one tier (capped at HARD)
//   - most recent answer incorrect: de-escalate one tier (floored at EASY)
//   - otherwise: hold the current tier
//
// It returns the tier together with a human-readable reason for the
// session's decision log.
func NextDifficulty(history []models.AnswerRecord, current Difficulty) (Difficulty, string) {
	if len(history) == 0 {
		return current, "no answer history, keeping starting difficulty"
	}

	last := history[len(history)-1]
	if !last.IsCorrect {
		next := current.Deescalate()
		if next == current {
			return current, fmt.Sprintf("incorrect answer, already at %s", current)
		}
		return next, fmt.Sprintf("incorrect answer, dropping to %s", next)
	}

	if len(history) >= 2 && history[len(history)-2].IsCorrect {
		next := current.Escalate()
		if next == current {
			return current, fmt.Sprintf("two consecutive correct answers, already at %s", current)
		}
		return next, fmt.Sprintf("two consecutive correct answers, moving up to %s", next)
	}

	return current, fmt.Sprintf("one correct answer in a row, holding at %s", current)
}
