package interview

import "time"

// MaxQuestions is the number of questions in a complete interview.
const MaxQuestions = 6

// LastQuestionIndex is the index of the final question.
const LastQuestionIndex = MaxQuestions - 1

// Difficulty is the tier of a question, determined solely by its position.
type Difficulty string

// Difficulty tiers.
const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Countdown seconds per tier.
const (
	easySeconds   = 20
	mediumSeconds = 60
	hardSeconds   = 120
)

// DifficultyOf maps a question index (0-5) to its tier.
func DifficultyOf(index int) Difficulty {
	switch {
	case index < 2:
		return DifficultyEasy
	case index < 4:
		return DifficultyMedium
	default:
		return DifficultyHard
	}
}

// Seconds returns the countdown length for the tier.
func (d Difficulty) Seconds() int {
	switch d {
	case DifficultyEasy:
		return easySeconds
	case DifficultyMedium:
		return mediumSeconds
	default:
		return hardSeconds
	}
}

// Valid reports whether d is one of the known tiers.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// TimerSecondsOf returns the countdown in seconds for the question at index.
func TimerSecondsOf(index int) int {
	return DifficultyOf(index).Seconds()
}

// TimerDurationOf returns the countdown for the question at index.
func TimerDurationOf(index int) time.Duration {
	return time.Duration(TimerSecondsOf(index)) * time.Second
}
