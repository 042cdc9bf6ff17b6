// Package resume turns an uploaded resume into plain text and pulls the
// candidate's name, email and phone out of it.
//
// Field extraction is a best-effort heuristic: each field is the first match
// of a fixed pattern, and a field without a match is nil rather than an error.
// False positives (a leading section header taken as a name) are expected.
package resume

import (
	"regexp"
	"strings"
)

var (
	emailPattern = regexp.MustCompile(`(?i)\b[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}\b`)
	phonePattern = regexp.MustCompile(`(?:\+?\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
	// Capitalized words separated by spaces or tabs at the very start of the text.
	namePattern = regexp.MustCompile(`^[A-Z][a-z]+(?:[ \t][A-Z][a-z]+)*`)
)

// Details are the candidate fields found in a resume. Nil means not found.
type Details struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
}

// Parse runs the three field patterns over text.
func Parse(text string) Details {
	return Details{
		Name:  firstMatch(namePattern, text),
		Email: firstMatch(emailPattern, text),
		Phone: firstMatch(phonePattern, text),
	}
}

func firstMatch(re *regexp.Regexp, text string) *string {
	m := re.FindString(text)
	if m == "" {
		return nil
	}
	m = strings.TrimSpace(m)
	return &m
}
