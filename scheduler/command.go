package scheduler

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/urfave/cli/v3"

	"punchd.org/core/app"
	"punchd.org/core/log"
	"punchd.org/core/punch"
)

func Command() *cli.Command {
	return &cli.Command{
		Name:   "sched",
		Usage:  "run the punch scheduler loop",
		Action: Run,
		Description: `
Environment variables:
	PUNCHD_KEKA_SUBDOMAIN           (required)
	PUNCHD_USER_EMAIL               (required)
	PUNCHD_USER_PASSWORD            (required)
	PUNCHD_SCHED_PUNCH_IN_CRON      (default: 0 10 * * *)
	PUNCHD_SCHED_PUNCH_OUT_CRON     (default: 0 20 * * *)
	PUNCHD_SCHED_TOKEN_REFRESH_CRON (default: 44 22 * * 0)
	PUNCHD_SCHED_MAX_JITTER         (default: 10m)
	PUNCHD_DB_PATH                  (default: punchd.db)
`,
	}
}

func Run(ctx context.Context, cmd *cli.Command) error {
	logger := log.New("sched")
	ctx = log.IntoContext(ctx, logger)

	a, err := app.Build(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	s := New(a.User.Timezone, logger)

	cfg := a.Config.Sched
	if err := s.Add("punch-in", cfg.PunchInCron, punchJob(a, punch.In, cfg.MaxJitter)); err != nil {
		return err
	}
	if err := s.Add("punch-out", cfg.PunchOutCron, punchJob(a, punch.Out, cfg.MaxJitter)); err != nil {
		return err
	}
	if err := s.Add("token-refresh", cfg.TokenRefreshCron, func(ctx context.Context) {
		if _, err := a.Tokens.Refresh(ctx); err != nil {
			logger.Error("scheduled token refresh failed", "err", err)
		}
	}); err != nil {
		return err
	}

	logger.Info("starting scheduler", "timezone", a.User.Timezone.String())
	return s.Run(ctx)
}

// punchJob punches with a random jitter so the vendor doesn't see
// the same minute every day. Outcomes are pushed to ntfy.
func punchJob(a *app.App, punchType punch.Type, maxJitter time.Duration) func(ctx context.Context) {
	return func(ctx context.Context) {
		jitter := 2 * time.Second
		if maxJitter > jitter {
			jitter += rand.N(maxJitter - jitter)
		}

		a.Logger.Info("sleeping before punch", "jitter", jitter.Round(time.Second), "type", punchType.Message())
		select {
		case <-ctx.Done():
			return
		case <-time.After(jitter):
		}

		result, err := a.Engine.Punch(ctx, punchType, false)
		if err != nil {
			a.Logger.Error("punch failed", "err", err)
			a.Notify.Send(ctx, "punchd", fmt.Sprintf("Punch failed: %v", err))
			return
		}

		a.Logger.Info(result.Message, "status", result.Status)
		a.Notify.Send(ctx, "punchd", result.Message)
	}
}
