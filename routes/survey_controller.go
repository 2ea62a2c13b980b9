package routes

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/mbolis/quick-survey-console/app"
	"github.com/mbolis/quick-survey-console/routes/middlewares"
)

func ListSurveys(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		api := app.API.WithToken(middlewares.Token(r.Context()))
		surveys, err := api.ListSurveys(r.Context())
		if err != nil {
			backendError(w, r, "surveys.list", err)
			return
		}
		render.JSON(w, r, map[string]any{"surveys": surveys})
	}
}

func GetSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, _ := strconv.Atoi(chi.URLParam(r, "id"))

		api := app.API.WithToken(middlewares.Token(r.Context()))
		survey, err := api.GetSurvey(r.Context(), surveyId)
		if err != nil {
			backendError(w, r, "surveys.get", err)
			return
		}
		render.JSON(w, r, survey)
	}
}

func GetSurveyMetrics(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, _ := strconv.Atoi(chi.URLParam(r, "id"))

		api := app.API.WithToken(middlewares.Token(r.Context()))
		metrics, err := api.GetSurveyMetrics(r.Context(), surveyId)
		if err != nil {
			backendError(w, r, "surveys.metrics", err)
			return
		}
		render.JSON(w, r, metrics)
	}
}
