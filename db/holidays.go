package db

// SaveHolidays stores the raw vendor holiday calendar for a user.
// The value is the JSON body as returned by the vendor; callers
// decode it. Overwritten wholesale on every refresh.
func SaveHolidays(e Execer, email string, value []byte) error {
	_, err := e.Exec(`
		insert into holidays (email, value)
		values (?, ?)
			on conflict(email) do update set
			value = excluded.value`,
		email, string(value),
	)
	return err
}

func GetHolidays(e Execer, email string) ([]byte, error) {
	var value string
	err := e.QueryRow(`
		select value
		from holidays
		where email = ?`, email).Scan(&value)
	if err != nil {
		return nil, err
	}
	return []byte(value), nil
}
