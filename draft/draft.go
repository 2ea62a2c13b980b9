// Package draft holds the in-memory survey being authored in the console:
// an ordered tree of questions and options that is edited interactively,
// validated, and finally handed to the submission pipeline.
//
// Every mutation enforces the per-question cap on active options at the
// moment it happens. A Draft is not safe for concurrent use.
package draft

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/samber/lo"
)

const (
	// MaxActiveOptions is the number of options a question may have
	// marked active at the same time.
	MaxActiveOptions = 5
	// DefaultOptionSlots is the number of option slots a new question
	// starts with.
	DefaultOptionSlots = 5
)

// ID identifies a question or an option within one draft. It is never the
// identifier the backend assigns once the survey is created.
type ID string

func NewID() ID {
	return ID(uuid.Must(uuid.NewV4()).String())
}

type Draft struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Active      bool       `json:"active"`
	ExpiresAt   *time.Time `json:"expires_at"`
	Questions   []Question `json:"questions"`
}

type Question struct {
	ID      ID       `json:"id"`
	Text    string   `json:"text"`
	Order   int      `json:"order"`
	Options []Option `json:"options"`
}

type Option struct {
	ID     ID     `json:"id"`
	Text   string `json:"text"`
	Active bool   `json:"active"`
}

// New returns a draft in its initial state: no title, active, and a single
// empty question holding a single empty active option.
func New() *Draft {
	return &Draft{
		Active: true,
		Questions: []Question{{
			ID:      NewID(),
			Order:   1,
			Options: []Option{{ID: NewID(), Active: true}},
		}},
	}
}

// ActiveCount returns how many options of q are active.
func (q Question) ActiveCount() int {
	return lo.CountBy(q.Options, func(o Option) bool { return o.Active })
}

func (d *Draft) Question(id ID) (Question, bool) {
	q, _, ok := d.findQuestion(id)
	return q, ok
}

func (d *Draft) SetTitle(title string) {
	d.Title = title
}

func (d *Draft) SetDescription(description string) {
	d.Description = description
}

func (d *Draft) SetActive(active bool) {
	d.Active = active
}

// SetExpiresAt sets the expiry; nil clears it.
func (d *Draft) SetExpiresAt(t *time.Time) {
	if t == nil {
		d.ExpiresAt = nil
		return
	}
	v := *t
	d.ExpiresAt = &v
}

// Reset restores d to the state returned by New.
func (d *Draft) Reset() {
	*d = *New()
}

// Clone returns a deep copy of d.
func (d *Draft) Clone() *Draft {
	c := *d
	if d.ExpiresAt != nil {
		t := *d.ExpiresAt
		c.ExpiresAt = &t
	}
	c.Questions = make([]Question, len(d.Questions))
	for i, q := range d.Questions {
		q.Options = append([]Option(nil), q.Options...)
		c.Questions[i] = q
	}
	return &c
}

func (d *Draft) findQuestion(id ID) (Question, int, bool) {
	return lo.FindIndexOf(d.Questions, func(q Question) bool { return q.ID == id })
}
