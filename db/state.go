package db

import (
	"time"
)

// PunchState is the last vendor-confirmed punch for a user. One
// row per email, overwritten on every successful punch.
type PunchState struct {
	Email       string
	PunchStatus int
	Timestamp   time.Time
}

func SaveState(e Execer, state PunchState) error {
	_, err := e.Exec(`
		insert into state (email, punch_status, timestamp)
		values (?, ?, ?)
			on conflict(email) do update set
			punch_status = excluded.punch_status,
			timestamp = excluded.timestamp`,
		state.Email,
		state.PunchStatus,
		state.Timestamp.Format(TimeFormat),
	)
	return err
}

func GetState(e Execer, email string) (PunchState, error) {
	var state PunchState
	var timestamp string
	err := e.QueryRow(`
		select email, punch_status, timestamp
		from state
		where email = ?`, email).Scan(
		&state.Email,
		&state.PunchStatus,
		&timestamp,
	)
	if err != nil {
		return state, err
	}

	state.Timestamp, err = time.Parse(TimeFormat, timestamp)
	return state, err
}
