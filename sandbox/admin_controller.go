package sandbox

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/mbolis/quick-survey-console/app"
	"github.com/mbolis/quick-survey-console/httpx"
	"github.com/mbolis/quick-survey-console/log"
	"github.com/mbolis/quick-survey-console/model"
)

func CreateSurvey(sb app.Sandbox) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := model.CreateSurveyRequest{}
		if !bindAndValidate(w, r, "create_survey", &req) {
			return
		}

		var surveyId int
		err := sb.QueryRowContext(r.Context(), `
			INSERT INTO survey (title, description, active, expires_at) VALUES (?, ?, ?, ?)
			RETURNING id`,
			req.Title,
			req.Description,
			req.Active,
			req.ExpiresAt,
		).Scan(&surveyId)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_survey", err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, model.Created{ID: surveyId})
	}
}

func CreateQuestion(sb app.Sandbox) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := model.CreateQuestionRequest{}
		if !bindAndValidate(w, r, "create_question", &req) {
			return
		}

		tx, err := sb.BeginTx(r.Context(), nil)
		if err != nil {
			httpx.LogInternalError(w, "db.begin_tx", err)
			return
		}
		defer tx.Rollback()

		var exists bool
		err = tx.QueryRowContext(r.Context(), `SELECT 1 FROM survey WHERE id = ?`, req.SurveyID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			httpx.LogStatusMsg(w, http.StatusNotFound, log.DebugLevel, "create_question.survey", "survey %d not found", req.SurveyID)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.insert_question.survey", err)
			return
		}

		var questionId int
		err = tx.QueryRowContext(r.Context(), `
			INSERT INTO question (survey_id, text, "order") VALUES (?, ?, ?)
			RETURNING id`,
			req.SurveyID,
			req.Text,
			req.Order,
		).Scan(&questionId)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_question", err)
			return
		}

		if err = tx.Commit(); err != nil {
			httpx.LogInternalError(w, "db.insert_question.commit", err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, model.Created{ID: questionId})
	}
}

func CreateOption(sb app.Sandbox) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := model.CreateOptionRequest{}
		if !bindAndValidate(w, r, "create_option", &req) {
			return
		}

		tx, err := sb.BeginTx(r.Context(), nil)
		if err != nil {
			httpx.LogInternalError(w, "db.begin_tx", err)
			return
		}
		defer tx.Rollback()

		var exists bool
		err = tx.QueryRowContext(r.Context(), `SELECT 1 FROM question WHERE id = ?`, req.QuestionID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			httpx.LogStatusMsg(w, http.StatusNotFound, log.DebugLevel, "create_option.question", "question %d not found", req.QuestionID)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.insert_option.question", err)
			return
		}

		var optionId int
		err = tx.QueryRowContext(r.Context(), `
			INSERT INTO option (question_id, text, active) VALUES (?, ?, ?)
			RETURNING id`,
			req.QuestionID,
			req.Text,
			req.Active,
		).Scan(&optionId)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_option", err)
			return
		}

		if err = tx.Commit(); err != nil {
			httpx.LogInternalError(w, "db.insert_option.commit", err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, model.Created{ID: optionId})
	}
}

func ListSurveys(sb app.Sandbox) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := sb.QueryContext(r.Context(), `
			SELECT id, title, description, active, expires_at, created_at
			FROM survey
			ORDER BY id`)
		if err != nil {
			httpx.LogInternalError(w, "db.get_surveys", err)
			return
		}
		defer rows.Close()

		surveys := []model.Survey{}
		for rows.Next() {
			s := model.Survey{}
			err = rows.Scan(&s.ID, &s.Title, &s.Description, &s.Active, &s.ExpiresAt, &s.CreatedAt)
			if err != nil {
				httpx.LogInternalError(w, "db.get_surveys.scan", err)
				return
			}

			surveys = append(surveys, s)
		}
		if err = rows.Err(); err != nil {
			httpx.LogInternalError(w, "db.get_surveys.rows", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"surveys": surveys,
		})
	}
}

func GetSurveyById(sb app.Sandbox) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		survey, err := loadSurvey(r.Context(), sb, surveyId)
		if errors.Is(err, sql.ErrNoRows) {
			httpx.LogNotFound(w, "get_survey", surveyId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_survey", err)
			return
		}

		survey.Questions, err = loadQuestions(r.Context(), sb, surveyId, false)
		if err != nil {
			httpx.LogInternalError(w, "db.get_survey.questions", err)
			return
		}

		render.JSON(w, r, survey)
	}
}

func GetSurveyMetrics(sb app.Sandbox) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		survey, err := loadSurvey(r.Context(), sb, surveyId)
		if errors.Is(err, sql.ErrNoRows) {
			httpx.LogNotFound(w, "get_survey_metrics", surveyId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_survey_metrics", err)
			return
		}

		metrics := model.SurveyMetrics{
			SurveyID:  survey.ID,
			Title:     survey.Title,
			Questions: []model.QuestionMetrics{},
		}
		err = sb.QueryRowContext(r.Context(), `
			SELECT COUNT(*) FROM response WHERE survey_id = ?`,
			surveyId,
		).Scan(&metrics.Respondents)
		if err != nil {
			httpx.LogInternalError(w, "db.get_survey_metrics.respondents", err)
			return
		}

		rows, err := sb.QueryContext(r.Context(), `
			SELECT
				q.id, q.text,
				o.id, o.text, o.active,
				COUNT(a.response_id)
			FROM question q
			LEFT OUTER JOIN option o ON (q.id = o.question_id)
			LEFT OUTER JOIN response_answer a ON (o.id = a.option_id)
			WHERE q.survey_id = ?
			GROUP BY q.id, o.id
			ORDER BY q."order", q.id, o.id`,
			surveyId,
		)
		if err != nil {
			httpx.LogInternalError(w, "db.get_survey_metrics.options", err)
			return
		}
		defer rows.Close()

		for rows.Next() {
			var q model.QuestionMetrics
			var optionId sql.NullInt64
			var optionText sql.NullString
			var optionActive sql.NullBool
			var count int
			err = rows.Scan(&q.QuestionID, &q.Text, &optionId, &optionText, &optionActive, &count)
			if err != nil {
				httpx.LogInternalError(w, "db.get_survey_metrics.scan", err)
				return
			}

			last := len(metrics.Questions) - 1
			if last < 0 || metrics.Questions[last].QuestionID != q.QuestionID {
				q.Options = []model.OptionMetrics{}
				metrics.Questions = append(metrics.Questions, q)
				last++
			}
			if optionId.Valid {
				qm := &metrics.Questions[last]
				qm.Answers += count
				qm.Options = append(qm.Options, model.OptionMetrics{
					OptionID: int(optionId.Int64),
					Text:     optionText.String,
					Active:   optionActive.Bool,
					Count:    count,
				})
			}
		}
		if err = rows.Err(); err != nil {
			httpx.LogInternalError(w, "db.get_survey_metrics.rows", err)
			return
		}

		for i := range metrics.Questions {
			qm := &metrics.Questions[i]
			if qm.Answers == 0 {
				continue
			}
			for j := range qm.Options {
				qm.Options[j].Share = float64(qm.Options[j].Count) / float64(qm.Answers)
			}
		}

		render.JSON(w, r, metrics)
	}
}
