package sandbox

import (
	"database/sql"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/samber/lo"

	"github.com/mbolis/quick-survey-console/app"
	"github.com/mbolis/quick-survey-console/httpx"
	"github.com/mbolis/quick-survey-console/log"
	"github.com/mbolis/quick-survey-console/model"
)

// PublicGetSurveyById serves an open survey to respondents, with its active
// options only.
func PublicGetSurveyById(sb app.Sandbox) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		survey, err := loadSurvey(r.Context(), sb, surveyId)
		if errors.Is(err, sql.ErrNoRows) || (err == nil && !isOpen(survey, time.Now())) {
			httpx.LogNotFound(w, "public_get_survey", surveyId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_survey", err)
			return
		}

		survey.Questions, err = loadQuestions(r.Context(), sb, surveyId, true)
		if err != nil {
			httpx.LogInternalError(w, "db.get_survey.questions", err)
			return
		}

		render.JSON(w, r, survey)
	}
}

func PublicSubmitResponse(sb app.Sandbox) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		submission := model.ResponseSubmission{}
		if !bindAndValidate(w, r, "submit_response", &submission) {
			return
		}

		tx, err := sb.BeginTx(r.Context(), nil)
		if err != nil {
			httpx.LogInternalError(w, "db.begin_tx", err)
			return
		}
		defer tx.Rollback()

		survey, err := loadSurvey(r.Context(), tx, surveyId)
		if errors.Is(err, sql.ErrNoRows) || (err == nil && !isOpen(survey, time.Now())) {
			httpx.LogNotFound(w, "submit_response", surveyId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_survey", err)
			return
		}

		answers := lo.Uniq(submission.Answers)
		for _, a := range answers {
			var active bool
			err = tx.QueryRowContext(r.Context(), `
				SELECT o.active
				FROM option o
				INNER JOIN question q ON (q.id = o.question_id)
				WHERE o.id = ?
					AND q.id = ?
					AND q.survey_id = ?`,
				a.OptionID,
				a.QuestionID,
				surveyId,
			).Scan(&active)
			if errors.Is(err, sql.ErrNoRows) || (err == nil && !active) {
				httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "submit_response.answer",
					"option %d is not a valid answer to question %d", a.OptionID, a.QuestionID)
				return
			}
			if err != nil {
				httpx.LogInternalError(w, "db.submit_response.answer", err)
				return
			}
		}

		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		var responseId int
		err = tx.QueryRowContext(r.Context(), `
			INSERT INTO response (survey_id, time, ip) VALUES (?, ?, ?)
			RETURNING id`,
			surveyId,
			time.Now(),
			ip,
		).Scan(&responseId)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_response", err)
			return
		}

		stmt, err := tx.PrepareContext(r.Context(), `
			INSERT INTO response_answer (response_id, question_id, option_id)
			VALUES (?, ?, ?)`)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_response.answers.prepare", err)
			return
		}
		defer stmt.Close()

		for _, a := range answers {
			_, err := stmt.ExecContext(r.Context(), responseId, a.QuestionID, a.OptionID)
			if err != nil {
				httpx.LogInternalError(w, "db.insert_response.answers.insert", err)
				return
			}
		}

		if err = tx.Commit(); err != nil {
			httpx.LogInternalError(w, "db.insert_response.commit", err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, model.Created{ID: responseId})
	}
}
