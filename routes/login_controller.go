package routes

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/mbolis/quick-survey-console/app"
	"github.com/mbolis/quick-survey-console/httpx"
	"github.com/mbolis/quick-survey-console/log"
	"github.com/mbolis/quick-survey-console/routes/middlewares"
	"github.com/mbolis/quick-survey-console/surveyapi"
)

// Login forwards HTTP Basic credentials to the backend and keeps the
// resulting tokens in cookies.
func Login(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok {
			httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "login.basic_auth")
			return
		}

		token, err := app.API.Login(r.Context(), user, pass)
		if surveyapi.IsUnauthorized(err) {
			httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "login.unauthorized")
			return
		}
		if err != nil {
			backendError(w, r, "login", err)
			return
		}

		middlewares.SetTokenCookies(w, token)
		render.JSON(w, r, token)
	}
}

func Refresh(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(middlewares.RefreshTokenCookie)
		if err != nil || cookie.Value == "" {
			httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "refresh.cookie")
			return
		}

		token, err := app.API.Refresh(r.Context(), cookie.Value)
		if surveyapi.IsUnauthorized(err) {
			middlewares.ClearTokenCookies(w)
			httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "refresh.unauthorized")
			return
		}
		if err != nil {
			backendError(w, r, "refresh", err)
			return
		}

		middlewares.SetTokenCookies(w, token)
		render.JSON(w, r, token)
	}
}

func Logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		middlewares.ClearTokenCookies(w)
		w.WriteHeader(http.StatusNoContent)
	}
}

// backendError answers with the backend's own status and message when it
// gave one, 502 otherwise.
func backendError(w http.ResponseWriter, r *http.Request, code string, err error) {
	var apiErr *surveyapi.APIError
	if errors.As(err, &apiErr) {
		status := apiErr.Status
		if status < 400 {
			status = http.StatusBadGateway
		}
		httpx.LogStatusJSON(w, r, status, log.InfoLevel, code+".backend", httpx.ErrorBody{Message: apiErr.Message})
		return
	}
	httpx.LogStatusJSON(w, r, http.StatusBadGateway, log.ErrorLevel, code+".backend", httpx.ErrorBody{Message: err.Error()})
}
