package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mbolis/quick-survey-console/app"
	"github.com/mbolis/quick-survey-console/httpx"
	"github.com/mbolis/quick-survey-console/routes/middlewares"
)

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(httpx.LogRequests, middleware.Recoverer)

	root.Mount("/api", apiRouter(app))

	return root
}

func apiRouter(app app.App) http.Handler {
	api := chi.NewRouter()

	api.Post("/login", Login(app))
	api.Post("/refresh", Refresh(app))
	api.Post("/logout", Logout())

	api.Group(func(r chi.Router) {
		r.Use(middlewares.TokenAuth(app.API))

		r.Get("/templates", ListTemplates())

		r.Post("/drafts", CreateDraft(app))
		r.Route("/drafts/{draftID}", func(r chi.Router) {
			r.Get("/", GetDraft(app))
			r.Patch("/", UpdateDraft(app))
			r.Delete("/", DiscardDraft(app))
			r.Post("/reset", ResetDraft(app))
			r.Post("/template/{templateID}", LoadTemplate(app))
			r.Post("/submit", SubmitDraft(app))

			r.Post("/questions", AddQuestion(app))
			r.Patch("/questions/{questionID}", UpdateQuestion(app))
			r.Delete("/questions/{questionID}", RemoveQuestion(app))

			r.Post("/questions/{questionID}/options", AddOption(app))
			r.Patch("/questions/{questionID}/options/{optionID}", UpdateOption(app))
			r.Delete("/questions/{questionID}/options/{optionID}", RemoveOption(app))
		})

		r.Get("/surveys", ListSurveys(app))
		r.Get(`/surveys/{id:^\d+$}`, GetSurvey(app))
		r.Get(`/surveys/{id:^\d+$}/metrics`, GetSurveyMetrics(app))
	})

	return api
}
