package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/gorilla/sessions"
	echosession "github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	slogecho "github.com/samber/slog-echo"
	"github.com/urfave/cli/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/jmswan/fivemhub/internal/entities"
	"github.com/jmswan/fivemhub/internal/helpers"
	"github.com/jmswan/fivemhub/internal/profiles"
	"github.com/jmswan/fivemhub/internal/refresh"
)

func main() {
	app := &cli.App{
		Name:   "fivemhub-server",
		Action: run,
	}

	app.RunAndExitOnError()
}

func run(cmd *cli.Context) error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("could not load config: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return fmt.Errorf("could not open database: %w", err)
	}

	if err := db.AutoMigrate(
		&profiles.Profile{},
		&entities.Asset{},
		&entities.ForumPost{},
		&entities.PostLike{},
		&entities.Report{},
		&entities.Notification{},
	); err != nil {
		return fmt.Errorf("could not migrate database: %w", err)
	}

	srv, err := newServer(cfg, logger, db)
	if err != nil {
		return err
	}

	secret := cfg.SessionSecret
	if secret == "" {
		secret, err = helpers.GenerateToken(32)
		if err != nil {
			return err
		}

		logger.Warn("SESSION_SECRET not set, sessions will not survive a restart")
	}

	e := echo.New()
	e.Use(slogecho.New(logger))
	e.Use(echosession.Middleware(sessions.NewCookieStore([]byte(secret))))

	srv.routes(e)

	go refresh.New(cfg.FeedInterval, logger, srv.refreshFeed).Run(cmd.Context)

	httpd := http.Server{
		Addr:    cfg.Addr,
		Handler: e,
	}

	logger.Info("starting http server", slog.String("addr", cfg.Addr))

	if err := httpd.ListenAndServe(); err != nil {
		return err
	}

	return nil
}
