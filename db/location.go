package db

// LocationRecord is a resolved address cached by "lat,lng"
// coordinates. Immutable once resolved.
type LocationRecord struct {
	Coords       string
	Latitude     string
	Longitude    string
	Zip          string
	CountryCode  string
	State        string
	City         string
	AddressLine1 string
	AddressLine2 string
}

func SaveLocation(e Execer, loc LocationRecord) error {
	_, err := e.Exec(`
		insert into location (
			coords,
			latitude,
			longitude,
			zip,
			country_code,
			state,
			city,
			address_line1,
			address_line2
		) values (?, ?, ?, ?, ?, ?, ?, ?, ?)
			on conflict(coords) do nothing`,
		loc.Coords,
		loc.Latitude,
		loc.Longitude,
		loc.Zip,
		loc.CountryCode,
		loc.State,
		loc.City,
		loc.AddressLine1,
		loc.AddressLine2,
	)
	return err
}

func GetLocation(e Execer, coords string) (LocationRecord, error) {
	var loc LocationRecord
	err := e.QueryRow(`
		select
			coords,
			latitude,
			longitude,
			zip,
			country_code,
			state,
			city,
			address_line1,
			address_line2
		from location
		where coords = ?`, coords).Scan(
		&loc.Coords,
		&loc.Latitude,
		&loc.Longitude,
		&loc.Zip,
		&loc.CountryCode,
		&loc.State,
		&loc.City,
		&loc.AddressLine1,
		&loc.AddressLine2,
	)
	return loc, err
}
