package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbolis/quick-survey-console/app"
	"github.com/mbolis/quick-survey-console/config"
	"github.com/mbolis/quick-survey-console/database"
	"github.com/mbolis/quick-survey-console/draft"
	"github.com/mbolis/quick-survey-console/httpx"
	"github.com/mbolis/quick-survey-console/sandbox"
	"github.com/mbolis/quick-survey-console/surveyapi"
)

type draftBody struct {
	ID      string      `json:"id"`
	Draft   draft.Draft `json:"draft"`
	Created draft.ID    `json:"created"`
	Warning string      `json:"warning"`
}

// setupConsole serves the console API against the backend at apiUrl.
func setupConsole(t *testing.T, apiUrl string) (*httptest.Server, app.App) {
	t.Helper()

	a := app.App{
		Config: config.Config{APIUrl: apiUrl},
		API:    surveyapi.New(apiUrl),
		Drafts: app.NewDraftStore(),
	}
	srv := httptest.NewServer(Wire(a))
	t.Cleanup(srv.Close)
	return srv, a
}

// setupSandbox starts a sandbox backend on an in-memory database.
func setupSandbox(t *testing.T) *httptest.Server {
	t.Helper()

	db, err := database.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.EnsureUser(db, "admin", "pw"))

	cfg := config.Config{TokenSecret: "test-secret", TokenTTL: time.Minute}
	srv := httptest.NewServer(sandbox.Wire(sandbox.New(db, cfg)))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, srv *httptest.Server, token, method, path string, in, out any) int {
	t.Helper()

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, srv.URL+path, body)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	if out != nil && res.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(res.Body).Decode(out))
	}
	return res.StatusCode
}

func createDraft(t *testing.T, srv *httptest.Server, query string) draftBody {
	t.Helper()

	var created draftBody
	status := doJSON(t, srv, "tok", http.MethodPost, "/api/drafts"+query, nil, &created)
	require.Equal(t, http.StatusCreated, status)
	require.NotEmpty(t, created.ID)
	return created
}

func login(t *testing.T, srv *httptest.Server) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/login", nil)
	require.NoError(t, err)
	req.SetBasicAuth("admin", "pw")
	res, err := srv.Client().Do(req)
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	return res
}

func cookie(res *http.Response, name string) *http.Cookie {
	for _, c := range res.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestLogin_SetsTokenCookies(t *testing.T) {
	console, _ := setupConsole(t, setupSandbox(t).URL)

	res := login(t, console)
	access := cookie(res, "access_token")
	refresh := cookie(res, "refresh_token")
	require.NotNil(t, access)
	require.NotNil(t, refresh)
	assert.NotEmpty(t, access.Value)
	assert.NotEmpty(t, refresh.Value)
	assert.True(t, access.HttpOnly)
}

func TestLogin_WrongPassword(t *testing.T) {
	console, _ := setupConsole(t, setupSandbox(t).URL)

	req, _ := http.NewRequest(http.MethodPost, console.URL+"/api/login", nil)
	req.SetBasicAuth("admin", "nope")
	res, err := console.Client().Do(req)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestTokenAuth_NoToken(t *testing.T) {
	console, _ := setupConsole(t, "http://127.0.0.1:1")

	status := doJSON(t, console, "", http.MethodGet, "/api/templates", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestTokenAuth_AccessCookie(t *testing.T) {
	console, _ := setupConsole(t, "http://127.0.0.1:1")

	req, _ := http.NewRequest(http.MethodGet, console.URL+"/api/templates", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: "tok"})
	res, err := console.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	var body struct {
		Templates []string `json:"templates"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, []string{draft.SupermarketTemplate}, body.Templates)
}

func TestTokenAuth_RefreshesFromCookie(t *testing.T) {
	console, _ := setupConsole(t, setupSandbox(t).URL)
	refresh := cookie(login(t, console), "refresh_token")

	req, _ := http.NewRequest(http.MethodGet, console.URL+"/api/surveys", nil)
	req.AddCookie(refresh)
	res, err := console.Client().Do(req)
	require.NoError(t, err)
	res.Body.Close()

	assert.Equal(t, http.StatusOK, res.StatusCode)
	renewed := cookie(res, "access_token")
	require.NotNil(t, renewed)
	assert.NotEmpty(t, renewed.Value)
}

func TestTokenAuth_RevokedRefresh(t *testing.T) {
	console, _ := setupConsole(t, setupSandbox(t).URL)

	req, _ := http.NewRequest(http.MethodGet, console.URL+"/api/surveys", nil)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: "forged"})
	res, err := console.Client().Do(req)
	require.NoError(t, err)
	res.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	cleared := cookie(res, "refresh_token")
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
}

func TestLogout_ClearsCookies(t *testing.T) {
	console, _ := setupConsole(t, "http://127.0.0.1:1")

	res, err := console.Client().Post(console.URL+"/api/logout", "", nil)
	require.NoError(t, err)
	res.Body.Close()

	assert.Equal(t, http.StatusNoContent, res.StatusCode)
	require.NotNil(t, cookie(res, "access_token"))
	assert.Equal(t, -1, cookie(res, "access_token").MaxAge)
}

func TestErrorBodyShape(t *testing.T) {
	console, _ := setupConsole(t, "http://127.0.0.1:1")

	var body httpx.ErrorBody
	status := doJSON(t, console, "tok", http.MethodGet, "/api/drafts/missing", nil, &body)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Not Found", body.Error)
	assert.Contains(t, body.Message, "missing")
}
