package draft

import (
	"sort"

	"github.com/samber/lo"
)

// Template is fixed example content used to bootstrap the builder.
type Template struct {
	ID          string
	Title       string
	Description string
	Active      bool
	Questions   []TemplateQuestion
}

type TemplateQuestion struct {
	Text    string
	Options []string
}

const SupermarketTemplate = "supermarket"

var satisfaction = []string{
	"Very dissatisfied",
	"Dissatisfied",
	"Neutral",
	"Satisfied",
	"Very satisfied",
}

var templates = map[string]Template{
	SupermarketTemplate: {
		ID:          SupermarketTemplate,
		Title:       "Supermarket satisfaction survey",
		Description: "Help us improve your shopping experience by rating your last visit.",
		Active:      true,
		Questions: []TemplateQuestion{
			{"How satisfied are you with the variety of products?", satisfaction},
			{"How satisfied are you with the freshness of fruit and vegetables?", satisfaction},
			{"How satisfied are you with our prices?", satisfaction},
			{"How satisfied are you with the cleanliness of the store?", satisfaction},
			{"How satisfied are you with the friendliness of the staff?", satisfaction},
			{"How satisfied are you with the waiting time at the checkout?", satisfaction},
			{"How easy was it to find the products you were looking for?", []string{
				"Very difficult", "Difficult", "Neither easy nor difficult", "Easy", "Very easy",
			}},
			{"How often do you shop at our supermarket?", []string{
				"Every day", "Several times a week", "Once a week", "A few times a month", "Rarely",
			}},
			{"How satisfied are you with our promotions and offers?", satisfaction},
			{"How likely are you to recommend us to a friend?", []string{
				"Very unlikely", "Unlikely", "Not sure", "Likely", "Very likely",
			}},
		},
	},
}

// Templates returns the ids of the available templates, sorted.
func Templates() []string {
	ids := lo.Keys(templates)
	sort.Strings(ids)
	return ids
}

// LoadTemplate replaces the title, description, active flag and the whole
// question tree with the content of the template. The expiry is kept.
func (d *Draft) LoadTemplate(templateID string) error {
	t, ok := templates[templateID]
	if !ok {
		return ErrUnknownTemplate
	}

	d.Title = t.Title
	d.Description = t.Description
	d.Active = t.Active
	d.Questions = lo.Map(t.Questions, func(tq TemplateQuestion, i int) Question {
		return Question{
			ID:    NewID(),
			Text:  tq.Text,
			Order: i + 1,
			Options: lo.Map(tq.Options, func(text string, _ int) Option {
				return Option{ID: NewID(), Text: text, Active: true}
			}),
		}
	})
	return nil
}
