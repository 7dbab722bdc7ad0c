// Package scheduler runs punchd's recurring jobs: the daily
// punches and the weekly token refresh. The loop is cooperative
// single-threaded polling — compute the minimum time to the next
// job, sleep, run whatever is due, repeat.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

type Job struct {
	Name     string
	Schedule Schedule
	Run      func(ctx context.Context)
}

type Scheduler struct {
	jobs []Job
	tz   *time.Location
	l    *slog.Logger

	now func() time.Time
}

func New(tz *time.Location, l *slog.Logger) *Scheduler {
	return &Scheduler{
		tz:  tz,
		l:   l,
		now: time.Now,
	}
}

// Add registers a job under a cron expression evaluated in the
// scheduler's timezone.
func (s *Scheduler) Add(name, expr string, run func(ctx context.Context)) error {
	schedule, err := ParseCron(expr)
	if err != nil {
		return err
	}
	s.jobs = append(s.jobs, Job{Name: name, Schedule: schedule, Run: run})
	return nil
}

// Run blocks until ctx is cancelled. Jobs run synchronously, one
// after another; a long login inside a job simply delays the next
// wake-up evaluation.
func (s *Scheduler) Run(ctx context.Context) error {
	if len(s.jobs) == 0 {
		return errors.New("no jobs registered")
	}

	for {
		now := s.now().In(s.tz)

		var wake time.Time
		for _, job := range s.jobs {
			next, err := job.Schedule.Next(now)
			if err != nil {
				return err
			}
			s.l.Info("scheduled", "job", job.Name, "at", next, "in", next.Sub(now).Round(time.Second))
			if wake.IsZero() || next.Before(wake) {
				wake = next
			}
		}

		timer := time.NewTimer(wake.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		for _, job := range s.jobs {
			next, err := job.Schedule.Next(now)
			if err != nil {
				return err
			}
			if !next.After(wake) {
				s.l.Info("running job", "job", job.Name)
				job.Run(ctx)
			}
		}
	}
}
