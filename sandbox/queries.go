package sandbox

import (
	"context"
	"database/sql"
	"time"

	"github.com/mbolis/quick-survey-console/model"
)

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func loadSurvey(ctx context.Context, db querier, surveyId int) (model.Survey, error) {
	s := model.Survey{}
	err := db.QueryRowContext(ctx, `
		SELECT id, title, description, active, expires_at, created_at
		FROM survey
		WHERE id = ?`,
		surveyId,
	).Scan(&s.ID, &s.Title, &s.Description, &s.Active, &s.ExpiresAt, &s.CreatedAt)
	return s, err
}

// loadQuestions returns the questions of a survey, with their options, in
// survey order.
func loadQuestions(ctx context.Context, db querier, surveyId int, activeOnly bool) ([]model.Question, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT
			q.id, q.text, q."order",
			o.id, o.text, o.active
		FROM question q
		LEFT OUTER JOIN option o ON (q.id = o.question_id AND (o.active OR NOT ?))
		WHERE q.survey_id = ?
		ORDER BY q."order", q.id, o.id`,
		activeOnly,
		surveyId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := []model.Question{}
	for rows.Next() {
		q := model.Question{SurveyID: surveyId, Options: []model.Option{}}
		var optionId sql.NullInt64
		var optionText sql.NullString
		var optionActive sql.NullBool
		err = rows.Scan(&q.ID, &q.Text, &q.Order, &optionId, &optionText, &optionActive)
		if err != nil {
			return nil, err
		}

		last := len(questions) - 1
		if last < 0 || questions[last].ID != q.ID {
			questions = append(questions, q)
			last++
		}
		if optionId.Valid {
			questions[last].Options = append(questions[last].Options, model.Option{
				ID:         int(optionId.Int64),
				QuestionID: q.ID,
				Text:       optionText.String,
				Active:     optionActive.Bool,
			})
		}
	}
	return questions, rows.Err()
}

func isOpen(s model.Survey, now time.Time) bool {
	return s.Active && (s.ExpiresAt == nil || s.ExpiresAt.After(now))
}
