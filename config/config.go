package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Keka struct {
	Subdomain string `env:"SUBDOMAIN, required"`

	// BaseURL overrides the tenant URL entirely. Dev/test only.
	BaseURL string `env:"BASE_URL"`
}

func (k Keka) Base() string {
	if k.BaseURL != "" {
		return k.BaseURL
	}
	return fmt.Sprintf("https://%s.keka.com", k.Subdomain)
}

type User struct {
	Email       string `env:"EMAIL, required"`
	Password    string `env:"PASSWORD, required"`
	Lat         string `env:"LAT, default=22.4809532"`
	Lng         string `env:"LNG, default=88.4112943"`
	NtfyChannel string `env:"NTFY_CHANNEL"`
}

type Server struct {
	ListenAddr string `env:"LISTEN_ADDR, default=0.0.0.0:5000"`
}

type Token struct {
	// MaxAge is how old a token may get before renewal; the
	// vendor invalidates sessions after roughly a week, so stay
	// under it.
	MaxAge       time.Duration `env:"MAX_AGE, default=156h"`
	MaxRetries   uint          `env:"MAX_RETRIES, default=3"`
	Headless     bool          `env:"HEADLESS, default=true"`
	LoginTimeout time.Duration `env:"LOGIN_TIMEOUT, default=90s"`
}

type Sched struct {
	PunchInCron      string `env:"PUNCH_IN_CRON, default=0 10 * * *"`
	PunchOutCron     string `env:"PUNCH_OUT_CRON, default=0 20 * * *"`
	TokenRefreshCron string `env:"TOKEN_REFRESH_CRON, default=44 22 * * 0"`

	// MaxJitter randomizes scheduled punches so they don't land
	// on the exact minute every day.
	MaxJitter time.Duration `env:"MAX_JITTER, default=10m"`
}

type Config struct {
	DBPath string `env:"PUNCHD_DB_PATH, default=punchd.db"`
	Keka   Keka   `env:", prefix=PUNCHD_KEKA_"`
	User   User   `env:", prefix=PUNCHD_USER_"`
	Server Server `env:", prefix=PUNCHD_SERVER_"`
	Token  Token  `env:", prefix=PUNCHD_TOKEN_"`
	Sched  Sched  `env:", prefix=PUNCHD_SCHED_"`
}

func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
