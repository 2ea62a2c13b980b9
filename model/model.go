package model

import "time"

type CreateSurveyRequest struct {
	Title       string     `json:"title" validate:"required"`
	Description *string    `json:"description"`
	Active      bool       `json:"active"`
	ExpiresAt   *time.Time `json:"expires_at"`
}

type CreateQuestionRequest struct {
	Text     string `json:"text" validate:"required"`
	Order    int    `json:"order" validate:"min=1"`
	SurveyID int    `json:"survey_id" validate:"required"`
}

type CreateOptionRequest struct {
	Text       string `json:"text" validate:"required"`
	Active     bool   `json:"active"`
	QuestionID int    `json:"question_id" validate:"required"`
}

type Created struct {
	ID int `json:"id"`
}

type Survey struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Active      bool       `json:"active"`
	ExpiresAt   *time.Time `json:"expires_at"`
	CreatedAt   time.Time  `json:"created_at"`
	Questions   []Question `json:"questions,omitempty"`
}

type Question struct {
	ID       int      `json:"id"`
	SurveyID int      `json:"survey_id"`
	Text     string   `json:"text"`
	Order    int      `json:"order"`
	Options  []Option `json:"options"`
}

type Option struct {
	ID         int    `json:"id"`
	QuestionID int    `json:"question_id"`
	Text       string `json:"text"`
	Active     bool   `json:"active"`
}

// Token is the OAuth token response of the backend login and refresh calls.
type Token struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
}

type ResponseSubmission struct {
	Answers []Answer `json:"answers" validate:"required,min=1,dive"`
}

type Answer struct {
	QuestionID int `json:"question_id" validate:"required"`
	OptionID   int `json:"option_id" validate:"required"`
}

type SurveyMetrics struct {
	SurveyID    int               `json:"survey_id"`
	Title       string            `json:"title"`
	Respondents int               `json:"respondents"`
	Questions   []QuestionMetrics `json:"questions"`
}

type QuestionMetrics struct {
	QuestionID int             `json:"question_id"`
	Text       string          `json:"text"`
	Answers    int             `json:"answers"`
	Options    []OptionMetrics `json:"options"`
}

type OptionMetrics struct {
	OptionID int     `json:"option_id"`
	Text     string  `json:"text"`
	Active   bool    `json:"active"`
	Count    int     `json:"count"`
	Share    float64 `json:"share"`
}
