package sandbox

import (
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mbolis/quick-survey-console/app"
	"github.com/mbolis/quick-survey-console/httpx"
	"github.com/mbolis/quick-survey-console/log"
)

const refreshTokenTTL = 365 * 24 * time.Hour

var reRefresh = regexp.MustCompile(`(?i)^refresh\s+(.*)`)

func Login(sb app.Sandbox) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok {
			httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "login.basic_auth")
			return
		}

		body := url.Values{
			"grant_type": {"password"},
			"username":   {user},
			"password":   {pass},
		}
		issueToken(sb, w, r, body)
	}
}

func Refresh(sb app.Sandbox) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		match := reRefresh.FindStringSubmatch(r.Header.Get("authorization"))
		if len(match) == 0 {
			httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "refresh.token")
			return
		}

		body := url.Values{
			"grant_type":    {"refresh_token"},
			"refresh_token": {match[1]},
		}
		issueToken(sb, w, r, body)
	}
}

// issueToken runs the bearer server on a form-encoded grant request.
func issueToken(sb app.Sandbox, w http.ResponseWriter, r *http.Request, body url.Values) {
	encoded := body.Encode()
	req, err := http.NewRequestWithContext(r.Context(), http.MethodPost, "/", strings.NewReader(encoded))
	if err != nil {
		httpx.LogInternalError(w, "token.new_request", err)
		return
	}
	req.Header.Set("content-type", "application/x-www-form-urlencoded")
	req.Header.Set("content-length", strconv.Itoa(len(encoded)))

	resp := httpx.NewResponseBuffer()
	sb.UserCredentials(resp, req)
	if resp.Status() != http.StatusOK {
		log.Debugf("token.%s: status %d", body.Get("grant_type"), resp.Status())
	}
	if err := resp.Flush(w); err != nil {
		log.Errorf("token.flush: %s", err)
	}
}
