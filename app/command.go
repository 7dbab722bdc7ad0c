package app

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"punchd.org/core/log"
	"punchd.org/core/punch"
)

// PunchCommand is the one-shot CLI punch: derive-or-explicit
// type, optional force, print the outcome.
func PunchCommand() *cli.Command {
	return &cli.Command{
		Name:  "punch",
		Usage: "punch in or out once and exit",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "type",
				Usage: "0 for clock-in, 1 for clock-out; omit to punch the opposite of the last state",
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "bypass duplicate, holiday and leave checks",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ctx = log.IntoContext(ctx, log.New("punch"))

			a, err := Build(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			punchType := punch.Unspecified
			if arg := cmd.String("type"); arg != "" {
				punchType, err = punch.ParseType(arg)
				if err != nil {
					return err
				}
			}

			result, err := a.Engine.Punch(ctx, punchType, cmd.Bool("force"))
			if err != nil {
				return err
			}

			fmt.Printf("%d: %s\n", result.Status, result.Message)
			return nil
		},
	}
}

// TokenCommand inspects or renews the stored bearer token.
func TokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "inspect or renew the vendor bearer token",
		Commands: []*cli.Command{
			{
				Name:  "age",
				Usage: "print how old the stored token is",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					ctx = log.IntoContext(ctx, log.New("token"))

					a, err := Build(ctx)
					if err != nil {
						return err
					}
					defer a.Close()

					age, issued := a.Tokens.Age(ctx)
					fmt.Printf("Token is %s (issued %s, age %s)\n",
						humanize.RelTime(issued, a.User.Now(), "old", "from now"),
						issued.Format(time.RFC3339),
						age.Round(time.Second))
					return nil
				},
			},
			{
				Name:  "refresh",
				Usage: "force a renewal via browser login",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					ctx = log.IntoContext(ctx, log.New("token"))

					a, err := Build(ctx)
					if err != nil {
						return err
					}
					defer a.Close()

					rec, err := a.Tokens.Refresh(ctx)
					if err != nil {
						return err
					}

					fmt.Printf("Token refreshed at %s\n", rec.Timestamp.Format(time.RFC3339))
					return nil
				},
			},
		},
	}
}
