// Package server exposes the punchd HTTP API: trigger punches,
// inspect state and token age, and report work time.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/urfave/cli/v3"

	"punchd.org/core/app"
	"punchd.org/core/log"
)

type Server struct {
	app *app.App
	l   *slog.Logger
}

func Command() *cli.Command {
	return &cli.Command{
		Name:   "server",
		Usage:  "run the punchd http api",
		Action: Run,
		Description: `
Environment variables:
	PUNCHD_KEKA_SUBDOMAIN       (required)
	PUNCHD_USER_EMAIL           (required)
	PUNCHD_USER_PASSWORD        (required)
	PUNCHD_USER_LAT             (default: 22.4809532)
	PUNCHD_USER_LNG             (default: 88.4112943)
	PUNCHD_USER_NTFY_CHANNEL    (optional)
	PUNCHD_SERVER_LISTEN_ADDR   (default: 0.0.0.0:5000)
	PUNCHD_TOKEN_MAX_AGE        (default: 156h)
	PUNCHD_TOKEN_MAX_RETRIES    (default: 3)
	PUNCHD_TOKEN_HEADLESS       (default: true)
	PUNCHD_DB_PATH              (default: punchd.db)
`,
	}
}

func Run(ctx context.Context, cmd *cli.Command) error {
	logger := log.New("server")
	ctx = log.IntoContext(ctx, logger)

	a, err := app.Build(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	s := &Server{app: a, l: logger}

	logger.Info("starting server", "address", a.Config.Server.ListenAddr)
	return http.ListenAndServe(a.Config.Server.ListenAddr, s.Router())
}
