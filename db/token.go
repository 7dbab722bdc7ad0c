package db

import (
	"time"
)

// Token is the captured vendor bearer credential. One row per
// email, overwritten on every successful renewal.
type Token struct {
	Email     string
	Token     string
	Timestamp time.Time
}

func SaveToken(e Execer, token Token) error {
	_, err := e.Exec(`
		insert into token (email, token, timestamp)
		values (?, ?, ?)
			on conflict(email) do update set
			token = excluded.token,
			timestamp = excluded.timestamp`,
		token.Email,
		token.Token,
		token.Timestamp.Format(TimeFormat),
	)
	return err
}

func GetToken(e Execer, email string) (Token, error) {
	var token Token
	var timestamp string
	err := e.QueryRow(`
		select email, token, timestamp
		from token
		where email = ?`, email).Scan(
		&token.Email,
		&token.Token,
		&timestamp,
	)
	if err != nil {
		return token, err
	}

	token.Timestamp, err = time.Parse(TimeFormat, timestamp)
	return token, err
}
