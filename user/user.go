// Package user models the single configured user: credentials,
// coordinates, resolved address, and timezone.
package user

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"punchd.org/core/db"
	"punchd.org/core/location"
)

type Config struct {
	Email       string
	Password    string
	Lat         string
	Lng         string
	NtfyChannel string
}

type User struct {
	Email       string
	Password    string
	Lat         string
	Lng         string
	NtfyChannel string

	// Location is the resolved address attached to every punch.
	// A user without a resolved location cannot punch.
	Location *location.Address

	// Timezone is derived from the coordinates; all punch-side
	// timestamps are taken in it.
	Timezone *time.Location
}

// Load resolves the user's location and timezone and persists the
// users record. The stored password hash is an audit field, never
// verified against.
func Load(ctx context.Context, cfg Config, d *db.DB, resolver *location.Resolver, l *slog.Logger) (*User, error) {
	addr, err := resolver.Resolve(ctx, cfg.Lat, cfg.Lng)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user location: %w", err)
	}

	tz, err := resolver.Timezone(cfg.Lat, cfg.Lng)
	if err != nil {
		return nil, fmt.Errorf("failed to derive user timezone: %w", err)
	}

	u := &User{
		Email:       cfg.Email,
		Password:    cfg.Password,
		Lat:         cfg.Lat,
		Lng:         cfg.Lng,
		NtfyChannel: cfg.NtfyChannel,
		Location:    addr,
		Timezone:    tz,
	}

	hash := sha256.Sum256([]byte(cfg.Password))
	err = db.SaveUser(d, db.UserRecord{
		Email:       u.Email,
		NtfyChannel: u.NtfyChannel,
		PasswHash:   hex.EncodeToString(hash[:]),
		Lat:         u.Lat,
		Lng:         u.Lng,
		Timestamp:   u.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save user record: %w", err)
	}

	l.Info("saved user", "email", u.Email, "timezone", tz.String())
	return u, nil
}

// Now is the current instant in the user's timezone.
func (u *User) Now() time.Time {
	return time.Now().In(u.Timezone)
}
