package draft

import (
	"errors"
	"fmt"
)

var (
	ErrQuestionNotFound = errors.New("question not found")
	ErrOptionNotFound   = errors.New("option not found")
	ErrUnknownTemplate  = errors.New("unknown template")

	// ErrActiveCapReached is wrapped by every Warning raised because a
	// question already holds MaxActiveOptions active options.
	ErrActiveCapReached = errors.New("max active options reached")
)

// Warning is a non-fatal notice about a mutation that was adjusted or
// refused to keep the active option cap. The draft stays usable.
type Warning struct {
	QuestionID ID
	Message    string
}

func (w *Warning) Error() string {
	return w.Message
}

func (w *Warning) Unwrap() error {
	return ErrActiveCapReached
}

// ValidationError reports the first problem found in a draft before
// submission. Field is a path such as "title" or "questions[2].text".
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
