// Package location resolves the user's coordinates to a postal
// address (for punch payloads) and a timezone. Resolved addresses
// are cached indefinitely; coordinates don't move.
package location

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ringsaturn/tzf"

	"punchd.org/core/db"
)

const defaultEndpoint = "https://nominatim.openstreetmap.org"

type Resolver struct {
	db       *db.DB
	client   *http.Client
	endpoint string
	finder   tzf.F
	l        *slog.Logger
}

func NewResolver(d *db.DB, l *slog.Logger) (*Resolver, error) {
	finder, err := tzf.NewDefaultFinder()
	if err != nil {
		return nil, fmt.Errorf("failed to build timezone finder: %w", err)
	}

	return &Resolver{
		db:       d,
		client:   &http.Client{Timeout: 10 * time.Second},
		endpoint: defaultEndpoint,
		finder:   finder,
		l:        l,
	}, nil
}

type nominatimResponse struct {
	DisplayName string `json:"display_name"`
	Address     struct {
		Postcode    string `json:"postcode"`
		CountryCode string `json:"country_code"`
		State       string `json:"state"`
		City        string `json:"city"`
		Town        string `json:"town"`
	} `json:"address"`
}

// Resolve maps coordinates to an address, through the cache first.
func (r *Resolver) Resolve(ctx context.Context, lat, lng string) (*Address, error) {
	coords := lat + "," + lng

	if rec, err := db.GetLocation(r.db, coords); err == nil {
		r.l.Info("using cached location", "address", rec.AddressLine1)
		return recordToAddress(rec), nil
	}

	resolved, err := r.reverseGeocode(ctx, lat, lng)
	if err != nil {
		return nil, fmt.Errorf("unable to reverse geocode location: %w", err)
	}

	city := resolved.Address.City
	if city == "" {
		city = resolved.Address.Town
	}
	countryCode := resolved.Address.CountryCode
	if countryCode == "" {
		countryCode = "in"
	}

	addr := &Address{
		Latitude:     lat,
		Longitude:    lng,
		Zip:          resolved.Address.Postcode,
		CountryCode:  strings.ToUpper(countryCode),
		State:        resolved.Address.State,
		City:         city,
		AddressLine1: resolved.DisplayName,
		AddressLine2: city,
	}

	if err := db.SaveLocation(r.db, addressToRecord(coords, addr)); err != nil {
		return nil, err
	}

	r.l.Info("resolved location", "address", addr.AddressLine1)
	return addr, nil
}

// Timezone returns the IANA timezone at the coordinates.
func (r *Resolver) Timezone(lat, lng string) (*time.Location, error) {
	latF, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid latitude %q: %w", lat, err)
	}
	lngF, err := strconv.ParseFloat(lng, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid longitude %q: %w", lng, err)
	}

	name := r.finder.GetTimezoneName(lngF, latF)
	if name == "" {
		return nil, fmt.Errorf("no timezone found at %s,%s", lat, lng)
	}

	return time.LoadLocation(name)
}

func (r *Resolver) reverseGeocode(ctx context.Context, lat, lng string) (*nominatimResponse, error) {
	query := url.Values{}
	query.Add("format", "jsonv2")
	query.Add("lat", lat)
	query.Add("lon", lng)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		r.endpoint+"/reverse?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	// nominatim requires an identifying user agent
	req.Header.Set("User-Agent", "punchd")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoder returned %d: %s", resp.StatusCode, body)
	}

	var result nominatimResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

func recordToAddress(rec db.LocationRecord) *Address {
	return &Address{
		Latitude:     rec.Latitude,
		Longitude:    rec.Longitude,
		Zip:          rec.Zip,
		CountryCode:  rec.CountryCode,
		State:        rec.State,
		City:         rec.City,
		AddressLine1: rec.AddressLine1,
		AddressLine2: rec.AddressLine2,
	}
}

func addressToRecord(coords string, addr *Address) db.LocationRecord {
	return db.LocationRecord{
		Coords:       coords,
		Latitude:     addr.Latitude,
		Longitude:    addr.Longitude,
		Zip:          addr.Zip,
		CountryCode:  addr.CountryCode,
		State:        addr.State,
		City:         addr.City,
		AddressLine1: addr.AddressLine1,
		AddressLine2: addr.AddressLine2,
	}
}
