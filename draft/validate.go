package draft

import (
	"fmt"
	"strings"
)

// Validate checks the draft before submission. Checks run in order and the
// first failure is returned: the title, then every question text, then the
// active option cap of every question.
func (d *Draft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}

	for i, q := range d.Questions {
		if strings.TrimSpace(q.Text) == "" {
			return &ValidationError{
				Field:   fmt.Sprintf("questions[%d].text", i),
				Message: fmt.Sprintf("question %d has no text", i+1),
			}
		}
	}

	for i, q := range d.Questions {
		if n := q.ActiveCount(); n > MaxActiveOptions {
			return &ValidationError{
				Field:   fmt.Sprintf("questions[%d].options", i),
				Message: fmt.Sprintf("question %d has %d active options, at most %d allowed", i+1, n, MaxActiveOptions),
			}
		}
	}

	return nil
}
