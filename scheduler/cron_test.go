package scheduler_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"punchd.org/core/scheduler"
)

func TestParseCronErrors(t *testing.T) {
	for _, expr := range []string{
		"",
		"* * * *",
		"* * * * * *",
		"60 * * * *",
		"* 24 * * *",
		"* * 0 * *",
		"* * * 13 *",
		"* * * * 7",
		"a * * * *",
		"*/0 * * * *",
		"5-1 * * * *",
	} {
		_, err := scheduler.ParseCron(expr)
		assert.Error(t, err, "ParseCron(%q)", expr)
	}
}

func TestNext(t *testing.T) {
	date := func(y int, m time.Month, d, hh, mm int) time.Time {
		return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
	}

	tests := []struct {
		expr string
		from time.Time
		want time.Time
	}{
		// the daily punch windows
		{"0 10 * * *", date(2026, 8, 26, 9, 30), date(2026, 8, 26, 10, 0)},
		{"0 10 * * *", date(2026, 8, 26, 10, 0), date(2026, 8, 27, 10, 0)},
		{"0 20 * * *", date(2026, 8, 26, 10, 0), date(2026, 8, 26, 20, 0)},

		// the weekly token refresh, sundays at 22:44
		{"44 22 * * 0", date(2026, 8, 26, 10, 0), date(2026, 8, 30, 22, 44)},
		{"44 22 * * 0", date(2026, 8, 30, 23, 0), date(2026, 9, 6, 22, 44)},

		{"*/15 * * * *", date(2026, 8, 26, 10, 7), date(2026, 8, 26, 10, 15)},
		{"30 9 * * 1-5", date(2026, 8, 29, 12, 0), date(2026, 8, 31, 9, 30)},
		{"0 0 1 1 *", date(2026, 8, 26, 10, 0), date(2027, 1, 1, 0, 0)},
		{"0 12 29 2 *", date(2026, 3, 1, 0, 0), date(2028, 2, 29, 12, 0)},
	}

	for _, tt := range tests {
		s, err := scheduler.ParseCron(tt.expr)
		require.NoError(t, err, "ParseCron(%q)", tt.expr)

		next, err := s.Next(tt.from)
		require.NoError(t, err, "Next(%q, %s)", tt.expr, tt.from)
		assert.True(t, tt.want.Equal(next), "Next(%q, %s) = %s, want %s",
			tt.expr, tt.from, next, tt.want)
	}
}

func TestNextImpossibleSchedule(t *testing.T) {
	s, err := scheduler.ParseCron("0 0 31 2 *")
	require.NoError(t, err)

	_, err = s.Next(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Error(t, err)
}
