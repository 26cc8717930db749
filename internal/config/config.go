// Package config builds the immutable configuration value the rest of the
// process receives by value. Nothing outside this package reads ambient
// environment state.
package config

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Credentials are the venue application credentials plus the account
// access token. Token refresh is out of scope; the token is taken as-is.
type Credentials struct {
	ClientID     string
	ClientSecret string
	AccessToken  string
}

// Telegram is the notification target.
type Telegram struct {
	BotToken string
	ChatID   string
}

// Schedule holds the three report deadline knobs.
type Schedule struct {
	PnLIntervalHours  int           // evenly spaced PnL snapshots per day
	PnLMinute         int           // minute-of-hour the PnL snapshot fires
	DealsIntervalDays int           // daily deal report cadence in days
	DealsTime         string        // "HH:MM" time-of-day for the deal report
	WeeklyTime        string        // "HH:MM" Friday time for the weekly report
	TickInterval      time.Duration // scheduler polling cadence
}

// Reconnect is the reconnection policy. MaxAttempts caps the alerting,
// not the retrying: past the ceiling the session keeps dialing at
// QuietInterval and stays silent until it recovers.
type Reconnect struct {
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	MaxAttempts   int
	QuietInterval time.Duration
}

// Config is the root configuration object, constructed once at startup.
type Config struct {
	Credentials Credentials
	HostType    string // "live" or "demo"
	Telegram    Telegram
	Schedule    Schedule
	Reconnect   Reconnect
	AccountIDs  []int64
	LogLevel    string
	SymbolsFile string // optional symbol catalog override
}

// Load reads the environment (and an optional config file) into a Config.
// A missing account list is the only fatal condition; an unrecognized
// account type silently falls back to demo.
func Load(configFile string) (Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SCHEDULE_PNL_REPORT_INTERVAL", 4)
	v.SetDefault("SCHEDULE_PNL_REPORT_TIME", 0)
	v.SetDefault("SCHEDULE_DEALS_REPORT_INTERVAL", 1)
	v.SetDefault("SCHEDULE_DEALS_REPORT_TIME", "00:05")
	v.SetDefault("SCHEDULE_WEEKLY_REPORT_TIME", "21:00")
	v.SetDefault("SCHEDULER_TICK_SECONDS", 60)
	v.SetDefault("RECONNECT_INITIAL_DELAY_MS", 1000)
	v.SetDefault("RECONNECT_MAX_DELAY_MS", 60000)
	v.SetDefault("RECONNECT_MAX_ATTEMPTS", 10)
	v.SetDefault("RECONNECT_QUIET_INTERVAL_MS", 300000)
	v.SetDefault("LOG_LEVEL", "info")

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	hostType := strings.ToLower(v.GetString("ACCOUNT_TYPE"))
	if hostType != "live" && hostType != "demo" {
		hostType = "demo"
	}

	accounts, err := parseAccountList(v.GetString("ACCOUNT_ID_LIST"))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Credentials: Credentials{
			ClientID:     v.GetString("APP_CLIENT_ID"),
			ClientSecret: v.GetString("APP_CLIENT_SECRET"),
			AccessToken:  v.GetString("ACCESS_TOKEN"),
		},
		HostType: hostType,
		Telegram: Telegram{
			BotToken: v.GetString("TELEGRAM_BOT_TOKEN"),
			ChatID:   v.GetString("TELEGRAM_CHAT_ID"),
		},
		Schedule: Schedule{
			PnLIntervalHours:  v.GetInt("SCHEDULE_PNL_REPORT_INTERVAL"),
			PnLMinute:         v.GetInt("SCHEDULE_PNL_REPORT_TIME"),
			DealsIntervalDays: v.GetInt("SCHEDULE_DEALS_REPORT_INTERVAL"),
			DealsTime:         v.GetString("SCHEDULE_DEALS_REPORT_TIME"),
			WeeklyTime:        v.GetString("SCHEDULE_WEEKLY_REPORT_TIME"),
			TickInterval:      time.Duration(v.GetInt("SCHEDULER_TICK_SECONDS")) * time.Second,
		},
		Reconnect: Reconnect{
			InitialDelay:  time.Duration(v.GetInt("RECONNECT_INITIAL_DELAY_MS")) * time.Millisecond,
			MaxDelay:      time.Duration(v.GetInt("RECONNECT_MAX_DELAY_MS")) * time.Millisecond,
			MaxAttempts:   v.GetInt("RECONNECT_MAX_ATTEMPTS"),
			QuietInterval: time.Duration(v.GetInt("RECONNECT_QUIET_INTERVAL_MS")) * time.Millisecond,
		},
		AccountIDs:  accounts,
		LogLevel:    v.GetString("LOG_LEVEL"),
		SymbolsFile: v.GetString("SYMBOL_CATALOG_FILE"),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// parseAccountList accepts the original JSON-array form ("[123, 456]").
func parseAccountList(raw string) ([]int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("ACCOUNT_ID_LIST is required")
	}
	var ids []int64
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("parse ACCOUNT_ID_LIST %q: %w", raw, err)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("ACCOUNT_ID_LIST is empty")
	}
	return ids, nil
}

func (c Config) validate() error {
	if c.Credentials.ClientID == "" || c.Credentials.ClientSecret == "" {
		return fmt.Errorf("APP_CLIENT_ID and APP_CLIENT_SECRET are required")
	}
	if c.Credentials.AccessToken == "" {
		return fmt.Errorf("ACCESS_TOKEN is required")
	}
	if c.Telegram.BotToken == "" || c.Telegram.ChatID == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID are required")
	}
	if c.Schedule.PnLIntervalHours < 1 || c.Schedule.PnLIntervalHours > 24 {
		return fmt.Errorf("SCHEDULE_PNL_REPORT_INTERVAL must be 1..24, got %d", c.Schedule.PnLIntervalHours)
	}
	if c.Schedule.PnLMinute < 0 || c.Schedule.PnLMinute > 59 {
		return fmt.Errorf("SCHEDULE_PNL_REPORT_TIME must be 0..59, got %d", c.Schedule.PnLMinute)
	}
	if c.Schedule.DealsIntervalDays < 1 {
		return fmt.Errorf("SCHEDULE_DEALS_REPORT_INTERVAL must be >= 1, got %d", c.Schedule.DealsIntervalDays)
	}
	if _, _, err := ParseClock(c.Schedule.DealsTime); err != nil {
		return fmt.Errorf("SCHEDULE_DEALS_REPORT_TIME: %w", err)
	}
	if _, _, err := ParseClock(c.Schedule.WeeklyTime); err != nil {
		return fmt.Errorf("SCHEDULE_WEEKLY_REPORT_TIME: %w", err)
	}
	return nil
}

// ParseClock splits an "HH:MM" time-of-day string.
func ParseClock(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	return t.Hour(), t.Minute(), nil
}
