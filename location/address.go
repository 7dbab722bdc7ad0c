package location

// Address is the resolved address payload the vendor expects on
// remote clock-in writes. Field names follow the vendor wire
// format.
type Address struct {
	Latitude     string `json:"latitude"`
	Longitude    string `json:"longitude"`
	Zip          string `json:"zip,omitempty"`
	CountryCode  string `json:"countryCode"`
	State        string `json:"state,omitempty"`
	City         string `json:"city,omitempty"`
	AddressLine1 string `json:"addressLine1,omitempty"`
	AddressLine2 string `json:"addressLine2,omitempty"`
}
