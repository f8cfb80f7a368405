package config

import (
	"fmt"
	"path"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/eskrenkovic/slotbot/internal/modules/env"

	"go.uber.org/zap"
)

const (
	PortEnv        = "PORT"
	DatabaseUrlEnv = "DATABASE_URL"
	RedisUrlEnv    = "REDIS_URL"
	RootPathEnv    = "ROOT_PATH"
	LogLevelEnv    = "LOG_LEVEL"

	TelegramTokenEnv      = "TELEGRAM_TOKEN"
	TelegramWebhookURLEnv = "TELEGRAM_WEBHOOK_URL"

	AllowedChatsEnv    = "ALLOWED_CHATS"
	DaysOffEnv         = "DAYS_OFF"
	ExpiryWindowEnv    = "EXPIRY_WINDOW"
	ReminderLeadEnv    = "REMINDER_LEAD"
	CallMinPlayersEnv  = "CALL_MIN_PLAYERS"
	CallWindowEnv      = "CALL_WINDOW"
	DefaultTimezoneEnv = "DEFAULT_TIMEZONE"
	MainHoursEnv       = "MAIN_HOURS"
	NightCutoffHourEnv = "NIGHT_CUTOFF_HOUR"
)

var defaultMainHours = []int{18, 19, 20, 21, 22, 23, 0, 1}

type TelegramConfiguration struct {
	Token      string
	WebhookURL string
}

// RosterConfiguration holds the knobs of the slot lifecycle.
type RosterConfiguration struct {
	ExpiryWindow    time.Duration
	ReminderLead    time.Duration
	CallMinPlayers  int
	CallWindow      time.Duration
	DefaultTimezone *time.Location
	MainHours       []int
	NightCutoffHour int
	AllowedChats    []int64
	DaysOff         []time.Weekday
}

type Config struct {
	Logger *zap.Logger

	Port           int
	DatabaseURL    string
	RedisURL       string
	MigrationsPath string

	Telegram TelegramConfiguration
	Roster   RosterConfiguration
}

func Load() (Config, error) {
	logger, err := newLogger(env.GetStringOrDefault(LogLevelEnv, "info"))
	if err != nil {
		return Config{}, err
	}

	port, err := env.GetIntOrDefault(PortEnv, 8080)
	if err != nil {
		return Config{}, err
	}

	rootPath := env.MustGetString(RootPathEnv)

	roster, err := loadRosterConfiguration()
	if err != nil {
		return Config{}, err
	}

	return Config{
		Logger:         logger,
		Port:           port,
		DatabaseURL:    env.GetStringOrDefault(DatabaseUrlEnv, ""),
		RedisURL:       env.GetStringOrDefault(RedisUrlEnv, ""),
		MigrationsPath: path.Join(rootPath, "db", "migrations"),
		Telegram: TelegramConfiguration{
			Token:      env.GetStringOrDefault(TelegramTokenEnv, ""),
			WebhookURL: env.GetStringOrDefault(TelegramWebhookURLEnv, ""),
		},
		Roster: roster,
	}, nil
}

func loadRosterConfiguration() (RosterConfiguration, error) {
	var (
		c   RosterConfiguration
		err error
	)

	if c.ExpiryWindow, err = env.GetDurationOrDefault(ExpiryWindowEnv, time.Hour); err != nil {
		return c, err
	}
	if c.ReminderLead, err = env.GetDurationOrDefault(ReminderLeadEnv, 5*time.Minute); err != nil {
		return c, err
	}
	if c.CallMinPlayers, err = env.GetIntOrDefault(CallMinPlayersEnv, 3); err != nil {
		return c, err
	}
	if c.CallWindow, err = env.GetDurationOrDefault(CallWindowEnv, 30*time.Minute); err != nil {
		return c, err
	}
	if c.NightCutoffHour, err = env.GetIntOrDefault(NightCutoffHourEnv, 4); err != nil {
		return c, err
	}
	if c.MainHours, err = env.GetIntListOrDefault(MainHoursEnv, defaultMainHours); err != nil {
		return c, err
	}
	if c.AllowedChats, err = env.GetInt64ListOrDefault(AllowedChatsEnv, nil); err != nil {
		return c, err
	}

	c.DefaultTimezone, err = time.LoadLocation(env.GetStringOrDefault(DefaultTimezoneEnv, "Europe/Amsterdam"))
	if err != nil {
		return c, fmt.Errorf("%s: %w", DefaultTimezoneEnv, err)
	}

	for _, day := range env.GetStringListOrDefault(DaysOffEnv, nil) {
		weekday, err := ParseWeekday(day)
		if err != nil {
			return c, fmt.Errorf("%s: %w", DaysOffEnv, err)
		}
		c.DaysOff = append(c.DaysOff, weekday)
	}

	return c, nil
}

func ParseWeekday(s string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := d.String()
		if strings.EqualFold(s, name) || strings.EqualFold(s, name[:3]) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}

func newLogger(level string) (*zap.Logger, error) {
	if strings.EqualFold(level, "debug") {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
