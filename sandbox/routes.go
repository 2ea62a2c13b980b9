// Package sandbox is a small SQLite implementation of the survey backend
// REST API, for local development and integration tests of the console.
package sandbox

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/oauth"

	"github.com/mbolis/quick-survey-console/app"
	"github.com/mbolis/quick-survey-console/config"
	"github.com/mbolis/quick-survey-console/httpx"
)

func New(db *sql.DB, cfg config.Config) app.Sandbox {
	verifier := httpx.CredentialsVerifier(db, refreshTokenTTL)
	return app.Sandbox{
		DB:           db,
		BearerServer: oauth.NewBearerServer(cfg.TokenSecret, cfg.TokenTTL, verifier, nil),
		Config:       cfg,
	}
}

func Wire(sb app.Sandbox) http.Handler {
	root := chi.NewRouter()
	root.Use(httpx.LogRequests, middleware.Recoverer)

	root.Mount("/api", apiRouter(sb))

	return root
}

func apiRouter(sb app.Sandbox) http.Handler {
	api := chi.NewRouter()

	api.Get(`/surveys/{id:^\d+$}`, PublicGetSurveyById(sb))
	api.Post(`/surveys/{id:^\d+$}/responses`, PublicSubmitResponse(sb))

	api.Route("/admin", func(r chi.Router) {
		r.Use(Admin(sb.Config.TokenSecret))

		r.Post("/surveys", CreateSurvey(sb))
		r.Get("/surveys", ListSurveys(sb))
		r.Get(`/surveys/{id:^\d+$}`, GetSurveyById(sb))
		r.Get(`/surveys/{id:^\d+$}/metrics`, GetSurveyMetrics(sb))

		r.Post("/questions", CreateQuestion(sb))
		r.Post("/options", CreateOption(sb))
	})

	api.Post("/login", Login(sb))
	api.Post("/refresh", Refresh(sb))

	return api
}
