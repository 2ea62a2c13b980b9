// Package surveyapi is the client of the survey backend REST API.
package surveyapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/pkg/errors"

	"github.com/mbolis/quick-survey-console/log"
	"github.com/mbolis/quick-survey-console/model"
)

type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

type Option func(*Client)

// WithHTTPClient replaces the pooled default client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    cleanhttp.DefaultPooledClient(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithToken returns a copy of c that authenticates with the given bearer
// access token.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

func (c *Client) Login(ctx context.Context, username, password string) (model.Token, error) {
	var token model.Token
	err := c.do(ctx, "login", http.MethodPost, "/api/login", nil, &token, func(r *http.Request) {
		r.SetBasicAuth(username, password)
	})
	return token, err
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (model.Token, error) {
	var token model.Token
	err := c.do(ctx, "refresh", http.MethodPost, "/api/refresh", nil, &token, func(r *http.Request) {
		r.Header.Set("Authorization", "Refresh "+refreshToken)
	})
	return token, err
}

func (c *Client) CreateSurvey(ctx context.Context, req model.CreateSurveyRequest) (int, error) {
	var created model.Created
	err := c.do(ctx, "create_survey", http.MethodPost, "/api/admin/surveys", req, &created, c.bearer)
	return created.ID, err
}

func (c *Client) CreateQuestion(ctx context.Context, req model.CreateQuestionRequest) (int, error) {
	var created model.Created
	err := c.do(ctx, "create_question", http.MethodPost, "/api/admin/questions", req, &created, c.bearer)
	return created.ID, err
}

func (c *Client) CreateOption(ctx context.Context, req model.CreateOptionRequest) (int, error) {
	var created model.Created
	err := c.do(ctx, "create_option", http.MethodPost, "/api/admin/options", req, &created, c.bearer)
	return created.ID, err
}

func (c *Client) ListSurveys(ctx context.Context) ([]model.Survey, error) {
	var body struct {
		Surveys []model.Survey `json:"surveys"`
	}
	err := c.do(ctx, "list_surveys", http.MethodGet, "/api/admin/surveys", nil, &body, c.bearer)
	return body.Surveys, err
}

func (c *Client) GetSurvey(ctx context.Context, id int) (model.Survey, error) {
	var survey model.Survey
	err := c.do(ctx, "get_survey", http.MethodGet, fmt.Sprintf("/api/admin/surveys/%d", id), nil, &survey, c.bearer)
	return survey, err
}

func (c *Client) GetSurveyMetrics(ctx context.Context, id int) (model.SurveyMetrics, error) {
	var metrics model.SurveyMetrics
	err := c.do(ctx, "get_survey_metrics", http.MethodGet, fmt.Sprintf("/api/admin/surveys/%d/metrics", id), nil, &metrics, c.bearer)
	return metrics, err
}

func (c *Client) bearer(r *http.Request) {
	if c.token != "" {
		r.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out any, auth func(*http.Request)) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return errors.Wrapf(err, "%s: encode request", op)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return errors.Wrapf(err, "%s: new request", op)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != nil {
		auth(req)
	}

	log.Debugf("surveyapi.%s: %s %s", op, method, req.URL)
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s: %s %s", op, method, path)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(err, "%s: read response", op)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(op, resp.StatusCode, respBody)
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return errors.Wrapf(err, "%s: decode response", op)
	}
	return nil
}
