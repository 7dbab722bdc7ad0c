package db

import (
	"time"
)

type UserRecord struct {
	Email       string
	NtfyChannel string
	PasswHash   string
	Lat         string
	Lng         string
	Timestamp   time.Time
}

func SaveUser(e Execer, user UserRecord) error {
	_, err := e.Exec(`
		insert into users (email, ntfy_channel, passw_hash, lat, lng, timestamp)
		values (?, ?, ?, ?, ?, ?)
			on conflict(email) do update set
			ntfy_channel = excluded.ntfy_channel,
			passw_hash = excluded.passw_hash,
			lat = excluded.lat,
			lng = excluded.lng,
			timestamp = excluded.timestamp`,
		user.Email,
		user.NtfyChannel,
		user.PasswHash,
		user.Lat,
		user.Lng,
		user.Timestamp.Format(TimeFormat),
	)
	return err
}

func GetUser(e Execer, email string) (UserRecord, error) {
	var user UserRecord
	var timestamp string
	err := e.QueryRow(`
		select email, ntfy_channel, passw_hash, lat, lng, timestamp
		from users
		where email = ?`, email).Scan(
		&user.Email,
		&user.NtfyChannel,
		&user.PasswHash,
		&user.Lat,
		&user.Lng,
		&timestamp,
	)
	if err != nil {
		return user, err
	}

	user.Timestamp, err = time.Parse(TimeFormat, timestamp)
	return user, err
}
