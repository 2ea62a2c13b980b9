package main

import (
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/mbolis/quick-survey-console/app"
	"github.com/mbolis/quick-survey-console/config"
	"github.com/mbolis/quick-survey-console/database"
	"github.com/mbolis/quick-survey-console/log"
	"github.com/mbolis/quick-survey-console/routes"
	"github.com/mbolis/quick-survey-console/sandbox"
	"github.com/mbolis/quick-survey-console/surveyapi"
)

func main() {
	cfg, err := config.ParseFlags(os.Args[1:])
	if err != nil {
		log.Fatal("main.config:", err)
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}

	if cfg.Sandbox {
		db, err := database.Open(cfg.DBUrl)
		if err != nil {
			log.Fatal("main.db.open:", err)
		}
		defer db.Close()

		if err = database.EnsureUser(db, cfg.AdminUser, cfg.AdminPassword); err != nil {
			log.Fatal("main.db.admin_user:", err)
		}

		go func() {
			handler := sandbox.Wire(sandbox.New(db, cfg))
			err := runServer(cfg.SandboxAddr, "http://"+cfg.SandboxAddr, handler)
			if !errors.Is(err, http.ErrServerClosed) {
				log.Fatal("main.sandbox:", err)
			}
		}()
	}

	app := app.App{
		Config: cfg,
		API:    surveyapi.New(cfg.APIUrl),
		Drafts: app.NewDraftStore(),
	}

	handler := routes.Wire(app)

	err = runServer(cfg.Addr, cfg.Url(), handler)
	if !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("main.server:", err)
	}
}

func runServer(addr, url string, handler http.Handler) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Info("Listening on " + url)
	return srv.ListenAndServe()
}
