// Package app wires the shared component graph used by the
// server, the scheduler, and the one-shot CLI commands.
package app

import (
	"context"
	"fmt"

	"log/slog"

	"punchd.org/core/config"
	"punchd.org/core/db"
	"punchd.org/core/kekaclient"
	"punchd.org/core/location"
	"punchd.org/core/log"
	"punchd.org/core/notify"
	"punchd.org/core/punch"
	"punchd.org/core/token"
	"punchd.org/core/token/chrome"
	"punchd.org/core/user"
)

type App struct {
	Config  *config.Config
	DB      *db.DB
	User    *user.User
	Tokens  *token.Manager
	Client  *kekaclient.Client
	Tracker *punch.Tracker
	Engine  *punch.Engine
	Notify  *notify.Ntfy
	Logger  *slog.Logger
}

// Build loads config and constructs the component graph. The
// user's location is resolved here; a user without a resolvable
// location cannot run at all.
func Build(ctx context.Context) (*App, error) {
	logger := log.FromContext(ctx)

	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	d, err := db.Make(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	resolver, err := location.NewResolver(d, log.New("location"))
	if err != nil {
		return nil, err
	}

	u, err := user.Load(ctx, user.Config{
		Email:       cfg.User.Email,
		Password:    cfg.User.Password,
		Lat:         cfg.User.Lat,
		Lng:         cfg.User.Lng,
		NtfyChannel: cfg.User.NtfyChannel,
	}, d, resolver, logger)
	if err != nil {
		return nil, err
	}

	provider := &chrome.Provider{
		LoginURL: cfg.Keka.Base() + "/",
		Headless: cfg.Token.Headless,
		Timeout:  cfg.Token.LoginTimeout,
		Logger:   log.New("chrome"),
	}

	tokens := token.NewManager(d, provider, token.Config{
		Email:      cfg.User.Email,
		Password:   cfg.User.Password,
		MaxAge:     cfg.Token.MaxAge,
		MaxRetries: cfg.Token.MaxRetries,
	}, u.Timezone, log.New("token"))

	client, err := kekaclient.NewWithBase(cfg.Keka.Base(), tokens)
	if err != nil {
		return nil, err
	}

	punchLog := log.New("punch")
	tracker := punch.NewTracker(d, u.Email, u.Timezone, punchLog)
	calendar := punch.NewCalendar(d, client, u.Email, punchLog)
	engine := punch.NewEngine(u, client, tracker, calendar, punchLog)

	return &App{
		Config:  cfg,
		DB:      d,
		User:    u,
		Tokens:  tokens,
		Client:  client,
		Tracker: tracker,
		Engine:  engine,
		Notify:  notify.NewNtfy(cfg.User.NtfyChannel, log.New("notify")),
		Logger:  logger,
	}, nil
}

func (a *App) Close() error {
	return a.DB.Close()
}
