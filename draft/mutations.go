package draft

import (
	"fmt"

	"github.com/samber/lo"
)

// AddQuestion appends a question with DefaultOptionSlots empty active
// options, ordered after the existing questions.
func (d *Draft) AddQuestion() ID {
	options := make([]Option, DefaultOptionSlots)
	for i := range options {
		options[i] = Option{ID: NewID(), Active: true}
	}

	q := Question{
		ID:      NewID(),
		Order:   len(d.Questions) + 1,
		Options: options,
	}
	d.Questions = append(d.Questions, q)
	return q.ID
}

// RemoveQuestion removes a question. Removing the only question left is a
// no-op.
func (d *Draft) RemoveQuestion(id ID) error {
	_, i, ok := d.findQuestion(id)
	if !ok {
		return ErrQuestionNotFound
	}
	if len(d.Questions) == 1 {
		return nil
	}
	d.Questions = append(d.Questions[:i], d.Questions[i+1:]...)
	return nil
}

func (d *Draft) SetQuestionText(id ID, text string) error {
	_, i, ok := d.findQuestion(id)
	if !ok {
		return ErrQuestionNotFound
	}
	d.Questions[i].Text = text
	return nil
}

// SetQuestionOrder replaces the order as given; it is checked on submit.
func (d *Draft) SetQuestionOrder(id ID, order int) error {
	_, i, ok := d.findQuestion(id)
	if !ok {
		return ErrQuestionNotFound
	}
	d.Questions[i].Order = order
	return nil
}

// AddOption appends an option to a question. When the question is already
// at MaxActiveOptions the option is created inactive and a Warning is
// returned with it.
func (d *Draft) AddOption(questionID ID) (ID, *Warning, error) {
	q, i, ok := d.findQuestion(questionID)
	if !ok {
		return "", nil, ErrQuestionNotFound
	}

	o := Option{ID: NewID(), Active: true}
	var warn *Warning
	if q.ActiveCount() >= MaxActiveOptions {
		o.Active = false
		warn = &Warning{
			QuestionID: questionID,
			Message:    fmt.Sprintf("max %d active options reached; new option created inactive", MaxActiveOptions),
		}
	}

	d.Questions[i].Options = append(d.Questions[i].Options, o)
	return o.ID, warn, nil
}

// RemoveOption removes an option. Removing the only option of a question is
// a no-op.
func (d *Draft) RemoveOption(questionID, optionID ID) error {
	q, i, ok := d.findQuestion(questionID)
	if !ok {
		return ErrQuestionNotFound
	}
	_, j, ok := findOption(q, optionID)
	if !ok {
		return ErrOptionNotFound
	}
	if len(q.Options) == 1 {
		return nil
	}
	d.Questions[i].Options = append(q.Options[:j], q.Options[j+1:]...)
	return nil
}

func (d *Draft) SetOptionText(questionID, optionID ID, text string) error {
	q, i, ok := d.findQuestion(questionID)
	if !ok {
		return ErrQuestionNotFound
	}
	_, j, ok := findOption(q, optionID)
	if !ok {
		return ErrOptionNotFound
	}
	d.Questions[i].Options[j].Text = text
	return nil
}

// SetOptionActive flags an option active or inactive. Deactivating always
// succeeds. Activating is refused with a *Warning, leaving the draft
// unchanged, when the other options of the question already hold
// MaxActiveOptions active flags.
func (d *Draft) SetOptionActive(questionID, optionID ID, active bool) error {
	q, i, ok := d.findQuestion(questionID)
	if !ok {
		return ErrQuestionNotFound
	}
	o, j, ok := findOption(q, optionID)
	if !ok {
		return ErrOptionNotFound
	}

	if active {
		others := q.ActiveCount()
		if o.Active {
			others--
		}
		if others >= MaxActiveOptions {
			return &Warning{
				QuestionID: questionID,
				Message:    fmt.Sprintf("max %d active options reached; option not activated", MaxActiveOptions),
			}
		}
	}

	d.Questions[i].Options[j].Active = active
	return nil
}

func findOption(q Question, id ID) (Option, int, bool) {
	return lo.FindIndexOf(q.Options, func(o Option) bool { return o.ID == id })
}
