package routes

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/mbolis/quick-survey-console/app"
	"github.com/mbolis/quick-survey-console/draft"
	"github.com/mbolis/quick-survey-console/httpx"
	"github.com/mbolis/quick-survey-console/log"
	"github.com/mbolis/quick-survey-console/routes/middlewares"
	"github.com/mbolis/quick-survey-console/submission"
	"github.com/mbolis/quick-survey-console/surveyapi"
)

// SubmitDraft sends a snapshot of the draft to the backend. On success the
// session is discarded; on any failure the draft stays as it was so the
// author can fix it and submit again.
func SubmitDraft(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := findSession(app, w, r)
		if !ok {
			return
		}

		api := app.API.WithToken(middlewares.Token(r.Context()))
		surveyId, err := submission.Submit(r.Context(), api, sess.Snapshot())

		var invalid *draft.ValidationError
		var remote *submission.RemoteError
		switch {
		case err == nil:
		case errors.As(err, &invalid):
			httpx.LogStatusJSON(w, r, http.StatusUnprocessableEntity, log.DebugLevel, "draft.submit.validate",
				httpx.ErrorBody{Message: invalid.Message, Field: invalid.Field})
			return
		case errors.As(err, &remote):
			log.WithFields(log.Fields{
				"draft":     sess.ID,
				"step":      remote.Step,
				"survey":    remote.Created.Survey,
				"questions": remote.Created.Questions,
				"options":   remote.Created.Options,
			}).Warn("draft.submit: partial submission left on backend")

			status := http.StatusBadGateway
			if surveyapi.IsUnauthorized(err) {
				status = http.StatusUnauthorized
			}
			httpx.LogStatusJSON(w, r, status, log.InfoLevel, "draft.submit",
				httpx.ErrorBody{Message: remoteMessage(remote.Err), Field: remote.Step})
			return
		default:
			httpx.LogInternalError(w, "draft.submit", err)
			return
		}

		app.Drafts.Discard(sess.ID)
		log.WithFields(log.Fields{"draft": sess.ID, "survey": surveyId}).Info("draft.submit: survey created")

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, map[string]int{"survey_id": surveyId})
	}
}

// remoteMessage is the backend's own message when it sent one.
func remoteMessage(err error) string {
	var apiErr *surveyapi.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
