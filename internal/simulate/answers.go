package simulate

import (
	"github.com/AVSAkash/interview-assistant/internal/domain/interview"
)

// Canned answers used when the configuration supplies fewer than six.
var defaultAnswers = map[interview.Difficulty]string{ //nolint:gochecknoglobals // static answer table
	interview.DifficultyEasy: "React keeps a virtual DOM and reconciles it against the real DOM, " +
		"so only the nodes whose props or state changed are updated.",
	interview.DifficultyMedium: "I would move the shared state into a context or a store, memoize " +
		"derived values, and keep API calls in an Express route that validates input before touching the database.",
	interview.DifficultyHard: "I would put a cache in front of the read path, paginate on an indexed cursor, " +
		"stream large responses, and profile both the Node event loop and React renders before changing code.",
}

// answerFor returns the configured answer for index or a default one.
func answerFor(cfg *Config, index int) string {
	if index < len(cfg.Answers) && cfg.Answers[index] != "" {
		return cfg.Answers[index]
	}
	return defaultAnswers[interview.DifficultyOf(index)]
}
