// Package token owns the vendor bearer credential: staleness
// detection, renewal through an interactive login, and retry
// semantics around it.
package token

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"

	"punchd.org/core/db"
)

// ErrNoCredentials means no email/password is configured. This is
// fatal: renewal is never retried without credentials.
var ErrNoCredentials = errors.New("email or password not configured")

// ErrNoToken means the login completed but no bearer token was
// captured from its network trace.
var ErrNoToken = errors.New("no bearer token captured during login")

// CredentialProvider performs an interactive login and returns
// the captured bearer token. Implementations block for the whole
// login, typically tens of seconds.
type CredentialProvider interface {
	Login(ctx context.Context, email, password string) (string, error)
}

type Config struct {
	Email    string
	Password string

	// MaxAge is the age beyond which a stored token is considered
	// stale and renewal is attempted.
	MaxAge time.Duration

	// MaxRetries bounds login attempts per renewal.
	MaxRetries uint
}

type Manager struct {
	db       *db.DB
	provider CredentialProvider
	cfg      Config
	tz       *time.Location
	l        *slog.Logger

	now func() time.Time
}

func NewManager(d *db.DB, provider CredentialProvider, cfg Config, tz *time.Location, l *slog.Logger) *Manager {
	return &Manager{
		db:       d,
		provider: provider,
		cfg:      cfg,
		tz:       tz,
		l:        l,
		now:      time.Now,
	}
}

// epoch is the issued-at assumed for absent or foreign-owned
// records: far enough in the past to always force renewal.
func (m *Manager) epoch() time.Time {
	return time.Date(2020, 1, 1, 0, 0, 0, 0, m.tz)
}

// load returns the stored token and its issue time. A record
// owned by a different email is treated as absent.
func (m *Manager) load() (string, time.Time) {
	rec, err := db.GetToken(m.db, m.cfg.Email)
	if err != nil || rec.Email != m.cfg.Email {
		return "", m.epoch()
	}
	return rec.Token, rec.Timestamp
}

// Age reports how old the stored token is and when it was issued.
func (m *Manager) Age(ctx context.Context) (time.Duration, time.Time) {
	_, issued := m.load()
	return m.now().In(m.tz).Sub(issued), issued
}

// Refresh performs a login and persists the captured token.
func (m *Manager) Refresh(ctx context.Context) (db.Token, error) {
	if m.cfg.Email == "" || m.cfg.Password == "" {
		return db.Token{}, ErrNoCredentials
	}

	bearer, err := m.provider.Login(ctx, m.cfg.Email, m.cfg.Password)
	if err != nil {
		return db.Token{}, err
	}
	if bearer == "" {
		return db.Token{}, ErrNoToken
	}

	rec := db.Token{
		Email:     m.cfg.Email,
		Token:     bearer,
		Timestamp: m.now().In(m.tz),
	}
	if err := db.SaveToken(m.db, rec); err != nil {
		return db.Token{}, err
	}

	m.l.Info("token has been updated", "email", m.cfg.Email)
	return rec, nil
}

// Valid returns a token no older than MaxAge, renewing through
// the credential provider when necessary. Renewal failure after
// MaxRetries attempts is non-fatal: the stored (possibly stale)
// token is returned and the vendor call is left to surface any
// authorization failure.
func (m *Manager) Valid(ctx context.Context) (string, error) {
	if m.cfg.Email == "" || m.cfg.Password == "" {
		return "", ErrNoCredentials
	}

	bearer, issued := m.load()
	age := m.now().In(m.tz).Sub(issued)
	if age <= m.cfg.MaxAge {
		return bearer, nil
	}

	m.l.Info("token is stale, refreshing", "issued", issued, "age", age)

	err := retry.Do(
		func() error {
			rec, err := m.Refresh(ctx)
			if err != nil {
				return err
			}
			bearer = rec.Token
			return nil
		},
		retry.Attempts(m.cfg.MaxRetries),
		retry.Delay(time.Second),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, ErrNoCredentials)
		}),
		retry.OnRetry(func(n uint, err error) {
			m.l.Info("retrying login", "attempt", n+1, "err", err)
		}),
		retry.Context(ctx),
	)
	if errors.Is(err, ErrNoCredentials) {
		return "", err
	}
	if err != nil {
		m.l.Warn("token renewal failed, proceeding with stale token",
			"age", age, "err", err)
	}

	return bearer, nil
}

// Token implements kekaclient.TokenSource.
func (m *Manager) Token(ctx context.Context) (string, error) {
	return m.Valid(ctx)
}
