// Package submission persists a validated draft through the backend create
// calls: the survey first, then every question, each followed by its
// options. Calls are strictly sequential because every child needs the id
// its parent was just given. A failure stops the pipeline; nothing already
// created is rolled back.
package submission

import (
	"context"
	"fmt"
	"strings"

	"github.com/mbolis/quick-survey-console/draft"
	"github.com/mbolis/quick-survey-console/log"
	"github.com/mbolis/quick-survey-console/model"
)

// Creator issues the backend create calls.
type Creator interface {
	CreateSurvey(ctx context.Context, req model.CreateSurveyRequest) (int, error)
	CreateQuestion(ctx context.Context, req model.CreateQuestionRequest) (int, error)
	CreateOption(ctx context.Context, req model.CreateOptionRequest) (int, error)
}

// Submit validates d and, if valid, creates it through c. It returns the id
// of the new survey. A validation failure is returned as the
// *draft.ValidationError and no call is made; a failing call is returned
// as a *RemoteError. d is never modified.
func Submit(ctx context.Context, c Creator, d *draft.Draft) (int, error) {
	snapshot := d.Clone()
	if err := snapshot.Validate(); err != nil {
		return 0, err
	}

	p := pipeline{creator: c}
	return p.run(ctx, snapshot)
}

type pipeline struct {
	creator Creator
	created Created
}

func (p *pipeline) run(ctx context.Context, d *draft.Draft) (int, error) {
	surveyID, err := p.creator.CreateSurvey(ctx, SurveyRequest(d))
	if err != nil {
		return 0, p.fail("survey", err)
	}
	p.created.Survey = surveyID
	log.Debugf("submission: created survey %d", surveyID)

	for i, q := range d.Questions {
		questionID, err := p.creator.CreateQuestion(ctx, model.CreateQuestionRequest{
			Text:     strings.TrimSpace(q.Text),
			Order:    q.Order,
			SurveyID: surveyID,
		})
		if err != nil {
			return 0, p.fail(fmt.Sprintf("question %d", i+1), err)
		}
		p.created.Questions = append(p.created.Questions, questionID)
		log.Debugf("submission: survey %d: created question %d", surveyID, questionID)

		for j, o := range q.Options {
			text := strings.TrimSpace(o.Text)
			if text == "" {
				continue
			}
			optionID, err := p.creator.CreateOption(ctx, model.CreateOptionRequest{
				Text:       text,
				Active:     o.Active,
				QuestionID: questionID,
			})
			if err != nil {
				return 0, p.fail(fmt.Sprintf("question %d option %d", i+1, j+1), err)
			}
			p.created.Options = append(p.created.Options, optionID)
		}
	}

	log.WithFields(log.Fields{
		"survey":    surveyID,
		"questions": len(p.created.Questions),
		"options":   len(p.created.Options),
	}).Info("submission: survey created")
	return surveyID, nil
}

func (p *pipeline) fail(step string, err error) error {
	rerr := &RemoteError{Step: step, Created: p.created, Err: err}
	log.WithFields(log.Fields{
		"step":      step,
		"survey":    p.created.Survey,
		"questions": p.created.Questions,
		"options":   p.created.Options,
	}).WithError(err).Warn("submission: aborted, already created entities are left in place")
	return rerr
}

// SurveyRequest builds the survey create call for d.
func SurveyRequest(d *draft.Draft) model.CreateSurveyRequest {
	req := model.CreateSurveyRequest{
		Title:  strings.TrimSpace(d.Title),
		Active: d.Active,
	}
	if desc := strings.TrimSpace(d.Description); desc != "" {
		req.Description = &desc
	}
	if d.ExpiresAt != nil {
		t := d.ExpiresAt.UTC()
		req.ExpiresAt = &t
	}
	return req
}
