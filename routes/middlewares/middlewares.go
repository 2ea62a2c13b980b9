package middlewares

import (
	"context"
	"net/http"
	"regexp"

	"github.com/mbolis/quick-survey-console/httpx"
	"github.com/mbolis/quick-survey-console/log"
	"github.com/mbolis/quick-survey-console/model"
	"github.com/mbolis/quick-survey-console/surveyapi"
)

const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
)

type tokenKey struct{}

var reBearer = regexp.MustCompile(`(?i)^bearer\s+(.+)`)

// Token returns the backend access token stored by TokenAuth.
func Token(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenAuth finds the backend access token of the request, from the
// authorization header or the access_token cookie. When only a refresh
// token cookie is left it asks the backend for new tokens and re-issues
// both cookies. Requests with no usable token get 401.
func TokenAuth(api *surveyapi.Client) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if match := reBearer.FindStringSubmatch(r.Header.Get("authorization")); match != nil {
				next.ServeHTTP(w, r.WithContext(WithToken(r.Context(), match[1])))
				return
			}

			if cookie, err := r.Cookie(AccessTokenCookie); err == nil && cookie.Value != "" {
				next.ServeHTTP(w, r.WithContext(WithToken(r.Context(), cookie.Value)))
				return
			}

			refreshToken, err := r.Cookie(RefreshTokenCookie)
			if err != nil || refreshToken.Value == "" {
				httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "auth.no_token")
				return
			}

			token, err := api.Refresh(r.Context(), refreshToken.Value)
			if surveyapi.IsUnauthorized(err) {
				ClearTokenCookies(w)
				httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "auth.refresh.unauthorized")
				return
			}
			if err != nil {
				log.Errorf("auth.refresh: %s", err)
				http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
				return
			}

			SetTokenCookies(w, token)
			next.ServeHTTP(w, r.WithContext(WithToken(r.Context(), token.AccessToken)))
		})
	}
}

func SetTokenCookies(w http.ResponseWriter, token model.Token) {
	http.SetCookie(w, &http.Cookie{
		Path:     "/",
		Name:     AccessTokenCookie,
		Value:    token.AccessToken,
		MaxAge:   int(token.ExpiresIn),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	http.SetCookie(w, &http.Cookie{
		Path:     "/",
		Name:     RefreshTokenCookie,
		Value:    token.RefreshToken,
		MaxAge:   60 * 60 * 24 * 365,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func ClearTokenCookies(w http.ResponseWriter) {
	for _, name := range []string{AccessTokenCookie, RefreshTokenCookie} {
		http.SetCookie(w, &http.Cookie{
			Path:   "/",
			Name:   name,
			Value:  "",
			MaxAge: -1,
		})
	}
}
