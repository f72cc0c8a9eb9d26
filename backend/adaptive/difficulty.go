package adaptive

// Difficulty is one of the three ordered tiers a question can carry.
type Difficulty string

const (
	Easy   Difficulty = "EASY"
	Medium Difficulty = "MEDIUM"
	Hard   Difficulty = "HARD"
)

// ParseDifficulty validates a caller-supplied tier string.
func ParseDifficulty(s string) (Difficulty, bool) {
	switch Difficulty(s) {
	case Easy, Medium, Hard:
		return Difficulty(s), true
	}
	return "", false
}

// Escalate moves one tier up, capped at HARD.
func (d Difficulty) Escalate() Difficulty {
	switch d {
	case Easy:
		return Medium
	case Medium:
		return Hard
	default:
		return Hard
	}
}

// Deescalate moves one tier down, floored at EASY.
func (d Difficulty) Deescalate() Difficulty {
	switch d {
	case Hard:
		return Medium
	case Medium:
		return Easy
	default:
		return Easy
	}
}

// Adjacent returns the other tiers ordered by distance, nearest first. Used
// when the bank runs short at the requested tier.
func (d Difficulty) Adjacent() []Difficulty {
	switch d {
	case Easy:
		return []Difficulty{Medium, Hard}
	case Hard:
		return []Difficulty{Medium, Easy}
	default:
		return []Difficulty{Easy, Hard}
	}
}
