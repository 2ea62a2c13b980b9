package routes

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/samber/lo"

	"github.com/mbolis/quick-survey-console/app"
	"github.com/mbolis/quick-survey-console/draft"
	"github.com/mbolis/quick-survey-console/httpx"
	"github.com/mbolis/quick-survey-console/log"
)

type draftResponse struct {
	ID      string       `json:"id"`
	Draft   *draft.Draft `json:"draft"`
	Created draft.ID     `json:"created,omitempty"`
	Warning string       `json:"warning,omitempty"`
}

func ListTemplates() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]any{"templates": draft.Templates()})
	}
}

func CreateDraft(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		templateId := r.URL.Query().Get("template")
		if templateId != "" && !hasTemplate(templateId) {
			httpx.LogStatusJSON(w, r, http.StatusNotFound, log.DebugLevel, "draft.create.template",
				httpx.ErrorBody{Message: draft.ErrUnknownTemplate.Error() + ": " + templateId})
			return
		}

		sess := app.Drafts.Create()
		if templateId != "" {
			err := sess.Update(func(d *draft.Draft) error { return d.LoadTemplate(templateId) })
			if err != nil {
				app.Drafts.Discard(sess.ID)
				httpx.LogInternalError(w, "draft.create.template", err)
				return
			}
		}

		log.WithFields(log.Fields{"draft": sess.ID, "template": templateId}).Debug("draft.create")
		respondDraft(w, r, http.StatusCreated, sess, "", nil)
	}
}

func GetDraft(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := findSession(app, w, r)
		if !ok {
			return
		}
		respondDraft(w, r, http.StatusOK, sess, "", nil)
	}
}

func DiscardDraft(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "draftID")
		if err := app.Drafts.Discard(id); err != nil {
			httpx.LogNotFound(w, "draft.discard", id)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type draftPatch struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Active      *bool           `json:"active"`
	ExpiresAt   json.RawMessage `json:"expires_at"`
}

// UpdateDraft patches the survey header. An explicit null expires_at
// clears the expiry.
func UpdateDraft(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := findSession(app, w, r)
		if !ok {
			return
		}

		var patch draftPatch
		if err := render.DecodeJSON(r.Body, &patch); err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		var expiresAt *time.Time
		if len(patch.ExpiresAt) > 0 && string(patch.ExpiresAt) != "null" {
			var t time.Time
			if err := json.Unmarshal(patch.ExpiresAt, &t); err != nil {
				httpx.LogStatusJSON(w, r, http.StatusBadRequest, log.DebugLevel, "request.expires_at",
					httpx.ErrorBody{Message: "expires_at must be an RFC 3339 timestamp", Field: "expires_at"})
				return
			}
			expiresAt = &t
		}

		sess.Update(func(d *draft.Draft) error {
			if patch.Title != nil {
				d.SetTitle(*patch.Title)
			}
			if patch.Description != nil {
				d.SetDescription(*patch.Description)
			}
			if patch.Active != nil {
				d.SetActive(*patch.Active)
			}
			if len(patch.ExpiresAt) > 0 {
				d.SetExpiresAt(expiresAt)
			}
			return nil
		})

		respondDraft(w, r, http.StatusOK, sess, "", nil)
	}
}

func ResetDraft(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := findSession(app, w, r)
		if !ok {
			return
		}
		sess.Update(func(d *draft.Draft) error {
			d.Reset()
			return nil
		})
		respondDraft(w, r, http.StatusOK, sess, "", nil)
	}
}

func LoadTemplate(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := findSession(app, w, r)
		if !ok {
			return
		}
		templateId := chi.URLParam(r, "templateID")
		err := sess.Update(func(d *draft.Draft) error { return d.LoadTemplate(templateId) })
		if err != nil {
			mutationError(w, r, "draft.load_template", sess, err)
			return
		}
		respondDraft(w, r, http.StatusOK, sess, "", nil)
	}
}

func AddQuestion(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := findSession(app, w, r)
		if !ok {
			return
		}
		var questionId draft.ID
		sess.Update(func(d *draft.Draft) error {
			questionId = d.AddQuestion()
			return nil
		})
		respondDraft(w, r, http.StatusCreated, sess, questionId, nil)
	}
}

type questionPatch struct {
	Text  *string `json:"text"`
	Order *int    `json:"order"`
}

func UpdateQuestion(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := findSession(app, w, r)
		if !ok {
			return
		}

		var patch questionPatch
		if err := render.DecodeJSON(r.Body, &patch); err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		questionId := draft.ID(chi.URLParam(r, "questionID"))
		err := sess.Update(func(d *draft.Draft) error {
			if _, ok := d.Question(questionId); !ok {
				return draft.ErrQuestionNotFound
			}
			if patch.Text != nil {
				if err := d.SetQuestionText(questionId, *patch.Text); err != nil {
					return err
				}
			}
			if patch.Order != nil {
				return d.SetQuestionOrder(questionId, *patch.Order)
			}
			return nil
		})
		if err != nil {
			mutationError(w, r, "draft.update_question", sess, err)
			return
		}
		respondDraft(w, r, http.StatusOK, sess, "", nil)
	}
}

func RemoveQuestion(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := findSession(app, w, r)
		if !ok {
			return
		}
		questionId := draft.ID(chi.URLParam(r, "questionID"))
		err := sess.Update(func(d *draft.Draft) error { return d.RemoveQuestion(questionId) })
		if err != nil {
			mutationError(w, r, "draft.remove_question", sess, err)
			return
		}
		respondDraft(w, r, http.StatusOK, sess, "", nil)
	}
}

// AddOption appends an option. At the cap the option is still added,
// inactive, and the response carries the warning.
func AddOption(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := findSession(app, w, r)
		if !ok {
			return
		}

		questionId := draft.ID(chi.URLParam(r, "questionID"))
		var optionId draft.ID
		var warning *draft.Warning
		err := sess.Update(func(d *draft.Draft) (err error) {
			optionId, warning, err = d.AddOption(questionId)
			return
		})
		if err != nil {
			mutationError(w, r, "draft.add_option", sess, err)
			return
		}
		respondDraft(w, r, http.StatusCreated, sess, optionId, warning)
	}
}

type optionPatch struct {
	Text   *string `json:"text"`
	Active *bool   `json:"active"`
}

// UpdateOption applies the activation first, so a toggle refused at the
// cap leaves the option untouched.
func UpdateOption(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := findSession(app, w, r)
		if !ok {
			return
		}

		var patch optionPatch
		if err := render.DecodeJSON(r.Body, &patch); err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		questionId := draft.ID(chi.URLParam(r, "questionID"))
		optionId := draft.ID(chi.URLParam(r, "optionID"))
		err := sess.Update(func(d *draft.Draft) error {
			if patch.Active != nil {
				if err := d.SetOptionActive(questionId, optionId, *patch.Active); err != nil {
					return err
				}
			}
			if patch.Text != nil {
				return d.SetOptionText(questionId, optionId, *patch.Text)
			}
			_, err := lookupOption(d, questionId, optionId)
			return err
		})
		if err != nil {
			mutationError(w, r, "draft.update_option", sess, err)
			return
		}
		respondDraft(w, r, http.StatusOK, sess, "", nil)
	}
}

func RemoveOption(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := findSession(app, w, r)
		if !ok {
			return
		}
		questionId := draft.ID(chi.URLParam(r, "questionID"))
		optionId := draft.ID(chi.URLParam(r, "optionID"))
		err := sess.Update(func(d *draft.Draft) error { return d.RemoveOption(questionId, optionId) })
		if err != nil {
			mutationError(w, r, "draft.remove_option", sess, err)
			return
		}
		respondDraft(w, r, http.StatusOK, sess, "", nil)
	}
}

func findSession(app app.App, w http.ResponseWriter, r *http.Request) (*app.Session, bool) {
	id := chi.URLParam(r, "draftID")
	sess, err := app.Drafts.Get(id)
	if err != nil {
		httpx.LogStatusJSON(w, r, http.StatusNotFound, log.DebugLevel, "draft.get",
			httpx.ErrorBody{Message: err.Error() + ": " + id})
		return nil, false
	}
	return sess, true
}

func respondDraft(w http.ResponseWriter, r *http.Request, status int, sess *app.Session, created draft.ID, warning *draft.Warning) {
	res := draftResponse{
		ID:      sess.ID,
		Draft:   sess.Snapshot(),
		Created: created,
	}
	if warning != nil {
		res.Warning = warning.Message
	}
	render.Status(r, status)
	render.JSON(w, r, res)
}

func mutationError(w http.ResponseWriter, r *http.Request, code string, sess *app.Session, err error) {
	var warning *draft.Warning
	switch {
	case errors.As(err, &warning):
		log.WithFields(log.Fields{"draft": sess.ID, "question": warning.QuestionID}).Debug(code + ": " + warning.Message)
		respondDraft(w, r, http.StatusConflict, sess, "", warning)
	case errors.Is(err, draft.ErrQuestionNotFound),
		errors.Is(err, draft.ErrOptionNotFound),
		errors.Is(err, draft.ErrUnknownTemplate):
		httpx.LogStatusJSON(w, r, http.StatusNotFound, log.DebugLevel, code, httpx.ErrorBody{Message: err.Error()})
	default:
		httpx.LogInternalError(w, code, err)
	}
}

func hasTemplate(id string) bool {
	return lo.Contains(draft.Templates(), id)
}

func lookupOption(d *draft.Draft, questionId, optionId draft.ID) (draft.Option, error) {
	q, ok := d.Question(questionId)
	if !ok {
		return draft.Option{}, draft.ErrQuestionNotFound
	}
	o, ok := lo.Find(q.Options, func(o draft.Option) bool { return o.ID == optionId })
	if !ok {
		return draft.Option{}, draft.ErrOptionNotFound
	}
	return o, nil
}
