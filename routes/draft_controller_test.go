package routes

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbolis/quick-survey-console/draft"
	"github.com/mbolis/quick-survey-console/httpx"
)

const noBackend = "http://127.0.0.1:1"

func TestCreateDraft_InitialState(t *testing.T) {
	console, a := setupConsole(t, noBackend)

	created := createDraft(t, console, "")
	assert.Equal(t, 1, a.Drafts.Len())
	assert.True(t, created.Draft.Active)
	assert.Empty(t, created.Draft.Title)
	require.Len(t, created.Draft.Questions, 1)
	assert.Equal(t, 1, created.Draft.Questions[0].Order)
	require.Len(t, created.Draft.Questions[0].Options, 1)
	assert.True(t, created.Draft.Questions[0].Options[0].Active)
}

func TestCreateDraft_FromTemplate(t *testing.T) {
	console, _ := setupConsole(t, noBackend)

	created := createDraft(t, console, "?template=supermarket")
	assert.NotEmpty(t, created.Draft.Title)
	require.Len(t, created.Draft.Questions, 10)
	for _, q := range created.Draft.Questions {
		assert.Equal(t, draft.MaxActiveOptions, q.ActiveCount())
	}
}

func TestCreateDraft_UnknownTemplate(t *testing.T) {
	console, a := setupConsole(t, noBackend)

	var body httpx.ErrorBody
	status := doJSON(t, console, "tok", http.MethodPost, "/api/drafts?template=bakery", nil, &body)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, body.Message, "bakery")
	assert.Zero(t, a.Drafts.Len())
}

func TestGetAndDiscardDraft(t *testing.T) {
	console, a := setupConsole(t, noBackend)
	created := createDraft(t, console, "")

	var got draftBody
	status := doJSON(t, console, "tok", http.MethodGet, "/api/drafts/"+created.ID, nil, &got)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, created.Draft, got.Draft)

	status = doJSON(t, console, "tok", http.MethodDelete, "/api/drafts/"+created.ID, nil, nil)
	assert.Equal(t, http.StatusNoContent, status)
	assert.Zero(t, a.Drafts.Len())

	status = doJSON(t, console, "tok", http.MethodDelete, "/api/drafts/"+created.ID, nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestUpdateDraft_Header(t *testing.T) {
	console, _ := setupConsole(t, noBackend)
	created := createDraft(t, console, "")
	path := "/api/drafts/" + created.ID

	expiry := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	var updated draftBody
	status := doJSON(t, console, "tok", http.MethodPatch, path, map[string]any{
		"title":       "Lunch",
		"description": "Pick one",
		"active":      false,
		"expires_at":  expiry,
	}, &updated)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Lunch", updated.Draft.Title)
	assert.Equal(t, "Pick one", updated.Draft.Description)
	assert.False(t, updated.Draft.Active)
	require.NotNil(t, updated.Draft.ExpiresAt)
	assert.True(t, expiry.Equal(*updated.Draft.ExpiresAt))

	// absent fields stay, explicit null clears the expiry
	status = doJSON(t, console, "tok", http.MethodPatch, path, map[string]any{"expires_at": nil}, &updated)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Lunch", updated.Draft.Title)
	assert.Nil(t, updated.Draft.ExpiresAt)
}

func TestUpdateDraft_BadExpiry(t *testing.T) {
	console, _ := setupConsole(t, noBackend)
	created := createDraft(t, console, "")

	var body httpx.ErrorBody
	status := doJSON(t, console, "tok", http.MethodPatch, "/api/drafts/"+created.ID,
		map[string]any{"expires_at": "tomorrow"}, &body)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "expires_at", body.Field)
}

func TestQuestions(t *testing.T) {
	console, _ := setupConsole(t, noBackend)
	created := createDraft(t, console, "")
	path := "/api/drafts/" + created.ID + "/questions"

	var added draftBody
	status := doJSON(t, console, "tok", http.MethodPost, path, nil, &added)
	require.Equal(t, http.StatusCreated, status)
	require.Len(t, added.Draft.Questions, 2)
	q := added.Draft.Questions[1]
	assert.Equal(t, added.Created, q.ID)
	assert.Equal(t, 2, q.Order)
	assert.Len(t, q.Options, draft.DefaultOptionSlots)

	var updated draftBody
	status = doJSON(t, console, "tok", http.MethodPatch, path+"/"+string(q.ID),
		map[string]any{"text": "Favourite aisle?", "order": 7}, &updated)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Favourite aisle?", updated.Draft.Questions[1].Text)
	assert.Equal(t, 7, updated.Draft.Questions[1].Order)

	var removed draftBody
	status = doJSON(t, console, "tok", http.MethodDelete, path+"/"+string(q.ID), nil, &removed)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, removed.Draft.Questions, 1)

	// the last question cannot go
	last := removed.Draft.Questions[0].ID
	status = doJSON(t, console, "tok", http.MethodDelete, path+"/"+string(last), nil, &removed)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, removed.Draft.Questions, 1)
}

func TestQuestions_Unknown(t *testing.T) {
	console, _ := setupConsole(t, noBackend)
	created := createDraft(t, console, "")
	path := "/api/drafts/" + created.ID + "/questions/nope"

	status := doJSON(t, console, "tok", http.MethodPatch, path, map[string]any{}, nil)
	assert.Equal(t, http.StatusNotFound, status)
	status = doJSON(t, console, "tok", http.MethodDelete, path, nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
	status = doJSON(t, console, "tok", http.MethodPost, path+"/options", nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestOptions(t *testing.T) {
	console, _ := setupConsole(t, noBackend)
	created := createDraft(t, console, "")
	q := created.Draft.Questions[0]
	path := "/api/drafts/" + created.ID + "/questions/" + string(q.ID) + "/options"

	var added draftBody
	status := doJSON(t, console, "tok", http.MethodPost, path, nil, &added)
	require.Equal(t, http.StatusCreated, status)
	assert.Empty(t, added.Warning)
	options := added.Draft.Questions[0].Options
	require.Len(t, options, 2)
	assert.Equal(t, added.Created, options[1].ID)
	assert.True(t, options[1].Active)

	var updated draftBody
	status = doJSON(t, console, "tok", http.MethodPatch, path+"/"+string(added.Created),
		map[string]any{"text": "Cheese", "active": false}, &updated)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Cheese", updated.Draft.Questions[0].Options[1].Text)
	assert.False(t, updated.Draft.Questions[0].Options[1].Active)

	var removed draftBody
	status = doJSON(t, console, "tok", http.MethodDelete, path+"/"+string(added.Created), nil, &removed)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, removed.Draft.Questions[0].Options, 1)

	// the last option cannot go
	status = doJSON(t, console, "tok", http.MethodDelete, path+"/"+string(q.Options[0].ID), nil, &removed)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, removed.Draft.Questions[0].Options, 1)

	status = doJSON(t, console, "tok", http.MethodPatch, path+"/nope", map[string]any{}, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestOptions_ActiveCap(t *testing.T) {
	console, _ := setupConsole(t, noBackend)
	created := createDraft(t, console, "?template=supermarket")
	q := created.Draft.Questions[0]
	path := "/api/drafts/" + created.ID + "/questions/" + string(q.ID) + "/options"

	// added inactive, with a warning
	var added draftBody
	status := doJSON(t, console, "tok", http.MethodPost, path, nil, &added)
	require.Equal(t, http.StatusCreated, status)
	assert.NotEmpty(t, added.Warning)
	extra, ok := added.Draft.Question(q.ID)
	require.True(t, ok)
	require.Len(t, extra.Options, 6)
	assert.False(t, extra.Options[5].Active)
	assert.Equal(t, draft.MaxActiveOptions, extra.ActiveCount())

	// activating it is refused and nothing in the patch applies
	var refused draftBody
	status = doJSON(t, console, "tok", http.MethodPatch, path+"/"+string(added.Created),
		map[string]any{"text": "Bakery", "active": true}, &refused)
	assert.Equal(t, http.StatusConflict, status)
	assert.NotEmpty(t, refused.Warning)
	same, _ := refused.Draft.Question(q.ID)
	assert.False(t, same.Options[5].Active)
	assert.Empty(t, same.Options[5].Text)

	// freeing a slot lets it through
	status = doJSON(t, console, "tok", http.MethodPatch, path+"/"+string(q.Options[0].ID),
		map[string]any{"active": false}, nil)
	require.Equal(t, http.StatusOK, status)
	var accepted draftBody
	status = doJSON(t, console, "tok", http.MethodPatch, path+"/"+string(added.Created),
		map[string]any{"active": true}, &accepted)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, accepted.Warning)
	after, _ := accepted.Draft.Question(q.ID)
	assert.True(t, after.Options[5].Active)
	assert.Equal(t, draft.MaxActiveOptions, after.ActiveCount())
}

func TestResetAndLoadTemplate(t *testing.T) {
	console, _ := setupConsole(t, noBackend)
	created := createDraft(t, console, "")
	path := "/api/drafts/" + created.ID

	expiry := time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)
	status := doJSON(t, console, "tok", http.MethodPatch, path, map[string]any{"expires_at": expiry}, nil)
	require.Equal(t, http.StatusOK, status)

	var loaded draftBody
	status = doJSON(t, console, "tok", http.MethodPost, path+"/template/supermarket", nil, &loaded)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, loaded.Draft.Questions, 10)
	require.NotNil(t, loaded.Draft.ExpiresAt)

	status = doJSON(t, console, "tok", http.MethodPost, path+"/template/bakery", nil, nil)
	assert.Equal(t, http.StatusNotFound, status)

	var reset draftBody
	status = doJSON(t, console, "tok", http.MethodPost, path+"/reset", nil, &reset)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, reset.Draft.Title)
	assert.Len(t, reset.Draft.Questions, 1)
	assert.Len(t, reset.Draft.Questions[0].Options, 1)
}
