package main

import (
	"context"
	"os"

	"github.com/carlmjohnson/versioninfo"
	"github.com/urfave/cli/v3"

	"punchd.org/core/app"
	"punchd.org/core/log"
	"punchd.org/core/scheduler"
	"punchd.org/core/server"
)

func main() {
	cmd := &cli.Command{
		Name:    "punchd",
		Usage:   "attendance automation for keka-hosted workplaces",
		Version: versioninfo.Short(),
		Commands: []*cli.Command{
			server.Command(),
			scheduler.Command(),
			app.PunchCommand(),
			app.TokenCommand(),
		},
	}

	ctx := context.Background()
	logger := log.New("punchd")
	ctx = log.IntoContext(ctx, logger)

	if err := cmd.Run(ctx, os.Args); err != nil {
		logger.Error(err.Error())
		os.Exit(-1)
	}
}
