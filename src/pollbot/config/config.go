package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

type Discord struct {
	Token   string `env:"DISCORD_TOKEN,notEmpty"`
	GuildID string `env:"GUILD_ID,notEmpty"`
}

type Storage struct {
	MySQLDSN string `env:"MYSQL_DSN" envDefault:"pollbot:pollbot@tcp(127.0.0.1:3306)/pollbot"`
	RedisURL string `env:"REDIS_URL" envDefault:"redis://127.0.0.1:6379/0"`
}

// Reminders carries every scheduling constant. The cadences are deliberately
// configuration, not code: the deadline windows are wide enough to tolerate
// tick jitter around the hourly check.
type Reminders struct {
	CheckInterval     time.Duration `env:"REMINDER_CHECK_INTERVAL" envDefault:"1h"`
	DailyHour         int           `env:"DAILY_REMINDER_HOUR" envDefault:"19"`
	DeadlineSoonMin   time.Duration `env:"REMINDER_DEADLINE_SOON_MIN" envDefault:"47h"`
	DeadlineSoonMax   time.Duration `env:"REMINDER_DEADLINE_SOON_MAX" envDefault:"49h"`
	DeadlineLastMin   time.Duration `env:"REMINDER_DEADLINE_LAST_MIN" envDefault:"23h"`
	DeadlineLastMax   time.Duration `env:"REMINDER_DEADLINE_LAST_MAX" envDefault:"25h"`
	EveningStartHour  int           `env:"REMINDER_EVENING_START_HOUR" envDefault:"18"`
	EveningEndHour    int           `env:"REMINDER_EVENING_END_HOUR" envDefault:"20"`
	NonVoterCadence   int           `env:"REMINDER_NON_VOTER_CADENCE_DAYS" envDefault:"2"`
}

type Limits struct {
	MaxOptions        int `env:"POLL_MAX_OPTIONS" envDefault:"20"`
	MaxMentions       int `env:"POLL_MAX_MENTIONS" envDefault:"20"`
	MaxContentLength  int `env:"POLL_MAX_CONTENT_LENGTH" envDefault:"2000"`
	MaxEventDaysAhead int `env:"POLL_MAX_EVENT_DAYS_AHEAD" envDefault:"730"`
}

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"production"`
	Timezone    string `env:"POLL_TIMEZONE" envDefault:"Europe/Paris"`
	Discord     Discord
	Storage     Storage
	Reminders   Reminders
	Limits      Limits
}

func (c Config) Development() bool {
	return c.Environment == "dev"
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return Config{}, fmt.Errorf("bad POLL_TIMEZONE %q: %w", cfg.Timezone, err)
	}
	return cfg, nil
}

// Location resolves the configured timezone. Load already validated it.
func (c Config) Location() *time.Location {
	loc, _ := time.LoadLocation(c.Timezone)
	return loc
}
