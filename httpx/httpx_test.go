package httpx

import (
	"bytes"
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/oauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbolis/quick-survey-console/database"
	"github.com/mbolis/quick-survey-console/log"
)

func TestResponseBuffer_Flush(t *testing.T) {
	buf := NewResponseBuffer()
	buf.Header().Set("X-Test", "yes")
	buf.WriteHeader(http.StatusTeapot)
	buf.WriteHeader(http.StatusOK)
	buf.Write([]byte("short and stout"))

	assert.Equal(t, http.StatusTeapot, buf.Status())
	assert.Equal(t, "short and stout", string(buf.Body()))

	rec := httptest.NewRecorder()
	require.NoError(t, buf.Flush(rec))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "yes", rec.Header().Get("X-Test"))
	assert.Equal(t, "short and stout", rec.Body.String())
}

func TestResponseBuffer_ImplicitOK(t *testing.T) {
	buf := NewResponseBuffer()
	assert.Equal(t, 0, buf.Status())

	buf.Write([]byte("{}"))
	assert.Equal(t, http.StatusOK, buf.Status())
}

func TestLogRequests(t *testing.T) {
	var out bytes.Buffer
	log.SetOutput(&out)
	defer log.SetOutput(os.Stderr)

	h := LogRequests(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/drafts/x", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, out.String(), "status=404")
	assert.Contains(t, out.String(), "path=/api/drafts/x")
}

func TestLogStatusJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", nil)

	LogStatusJSON(rec, req, http.StatusUnprocessableEntity, log.DebugLevel, "draft.submit.validate", ErrorBody{
		Message: "title is required",
		Field:   "title",
	})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t, `{"error":"Unprocessable Entity","message":"title is required","field":"title"}`, rec.Body.String())
}

func openDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.EnsureUser(db, "admin", "pw"))
	return db
}

func TestCredentialsVerifier_ValidateUser(t *testing.T) {
	v := CredentialsVerifier(openDB(t), time.Hour)
	req := httptest.NewRequest(http.MethodPost, "/", nil)

	assert.NoError(t, v.ValidateUser("admin", "pw", "", req))
	assert.Error(t, v.ValidateUser("admin", "wrong", "", req))
	assert.Error(t, v.ValidateUser("nobody", "pw", "", req))
}

func TestCredentialsVerifier_RefreshTokenUsedOnce(t *testing.T) {
	v := CredentialsVerifier(openDB(t), time.Hour)

	require.NoError(t, v.StoreTokenID(oauth.BearerToken, "admin", "t1", "r1"))

	assert.NoError(t, v.ValidateTokenID(oauth.BearerToken, "admin", "t1", "r1"))
	assert.Error(t, v.ValidateTokenID(oauth.BearerToken, "admin", "t1", "r1"))
}

func TestCredentialsVerifier_ExpiredRefreshToken(t *testing.T) {
	v := CredentialsVerifier(openDB(t), -time.Minute)

	require.NoError(t, v.StoreTokenID(oauth.BearerToken, "admin", "t1", "r1"))
	assert.Error(t, v.ValidateTokenID(oauth.BearerToken, "admin", "t1", "r1"))
}

func TestCredentialsVerifier_AddClaims(t *testing.T) {
	v := CredentialsVerifier(openDB(t), time.Hour)
	req := httptest.NewRequest(http.MethodPost, "/", nil)

	claims, err := v.AddClaims(oauth.BearerToken, "admin", "t1", "", req)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims["roles"])

	_, err = v.AddClaims(oauth.BearerToken, "nobody", "t1", "", req)
	assert.Error(t, err)
}
