// Package app assembles the Home Service bot from the core runtime and
// the intake dialogue.
package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/homeservice/hsbot/core/bootstrap"
	"github.com/homeservice/hsbot/core/buildinfo"
	coretelegram "github.com/homeservice/hsbot/core/telegram"
	"github.com/homeservice/hsbot/core/telegram/commands"
	tghelpers "github.com/homeservice/hsbot/core/telegram/helpers"
	"github.com/homeservice/hsbot/core/telegram/router"
	"github.com/homeservice/hsbot/internal/intake"
	"github.com/homeservice/hsbot/internal/notify"

	tele "gopkg.in/telebot.v4"
)

// App holds the assembled application components.
type App struct {
	cfg      *Config
	db       *sqlx.DB
	engine   *intake.Engine
	handlers *intake.Handlers
	notifier *notify.Notifier
}

// Bootstrap initializes logging, storage, and the dialogue engine.
func Bootstrap(cfg *Config) (*App, error) {
	if cfg == nil || cfg.CoreConfig() == nil {
		return nil, fmt.Errorf("app: nil config provided")
	}

	res, err := bootstrap.Run(bootstrap.Options{
		Config:   cfg.CoreConfig(),
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}

	notifier := notify.New(cfg.CoreConfig().Telegram.AdminID)
	engine := intake.NewEngine(
		intake.NewStore(),
		intake.NewRepository(res.DB),
		notifier,
	)

	return &App{
		cfg:      cfg,
		db:       res.DB,
		engine:   engine,
		handlers: intake.NewHandlers(engine),
		notifier: notifier,
	}, nil
}

// TelegramRunOptions wires the registry, routes, and lifecycle hooks.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	cfg := a.cfg.CoreConfig()

	reg := coretelegram.NewRegistry()
	a.handlers.Register(reg)
	reg.RegisterCommand("/version", commands.Command{
		Description: "Версия бота",
		AdminOnly:   true,
		Handler: func(c tele.Context) error {
			return tghelpers.SendText(c, fmt.Sprintf("hsbot %s (%s, %s)",
				buildinfo.Version, buildinfo.Commit, buildinfo.Date))
		},
	})

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID: cfg.Telegram.AdminID,
	})
	routes = append(routes, router.TextRoutes(a.engine.Sessions(), reg, router.TextOptions{})...)

	opts := coretelegram.RunOptions{
		Config:      cfg,
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(cfg, nil),
		Routes:      routes,
		OnStart: func(ctx context.Context, rt coretelegram.Runtime) error {
			a.notifier.Bind(rt.Bot)
			return nil
		},
		OnStop: func(ctx context.Context, rt coretelegram.Runtime) error {
			return a.db.Close()
		},
	}
	return opts, nil
}
