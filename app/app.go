package app

import (
	"database/sql"

	"github.com/go-chi/oauth"

	"github.com/mbolis/quick-survey-console/config"
	"github.com/mbolis/quick-survey-console/surveyapi"
)

// App is what the console handlers run against.
type App struct {
	config.Config
	API    *surveyapi.Client
	Drafts *DraftStore
}

// Sandbox is what the sandbox backend handlers run against.
type Sandbox struct {
	*sql.DB
	*oauth.BearerServer
	Config config.Config
}
