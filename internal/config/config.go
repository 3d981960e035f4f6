package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime configuration loaded from environment variables.
type Config struct {
	DatabaseURL             string
	ChannelSecret           string
	ChannelAccessToken      string
	Port                    string
	CorsOrigins             []string
	LogDir                  string
	LogLevel                string
	LogMaxSizeMB            int
	LogRetentionDays        int
	FetchTimeout            time.Duration
	CardLayoutPath          string
	WeeklyGroupID           string
	SummaryAPISecret        string
	ScopeRepliesToProject   bool
	CountEmptyTasksComplete bool
	JoinSuccessURL          string
}

func Load() Config {
	return Config{
		DatabaseURL:             mustEnv("DATABASE_URL"),
		ChannelSecret:           envOr("CHANNEL_SECRET", ""),
		ChannelAccessToken:      envOr("CHANNEL_ACCESS_TOKEN", ""),
		Port:                    envOr("PORT", "8080"),
		CorsOrigins:             parseCSV(envOr("CORS_ORIGINS", "")),
		LogDir:                  envOr("LOG_DIR", "storage/logs"),
		LogLevel:                envOr("LOG_LEVEL", "info"),
		LogMaxSizeMB:            envOrInt("LOG_MAX_SIZE_MB", 50),
		LogRetentionDays:        envOrInt("LOG_RETENTION_DAYS", 7),
		FetchTimeout:            time.Duration(envOrInt("FETCH_TIMEOUT_SECONDS", 10)) * time.Second,
		CardLayoutPath:          envOr("CARD_LAYOUT_PATH", ""),
		WeeklyGroupID:           envOr("WEEKLY_GROUP_ID", ""),
		SummaryAPISecret:        envOr("SUMMARY_API_SECRET", ""),
		ScopeRepliesToProject:   envOrBool("SCOPE_REPLIES_TO_PROJECT", false),
		CountEmptyTasksComplete: envOrBool("COUNT_EMPTY_TASKS_COMPLETE", false),
		JoinSuccessURL:          envOr("JOIN_SUCCESS_URL", "https://project-piaopiao-v1.vercel.app/"),
	}
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}

func mustEnv(key string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		panic("missing env var: " + key)
	}
	return value
}

func envOr(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func envOrBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func parseCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		value := strings.TrimSpace(part)
		if value != "" {
			items = append(items, value)
		}
	}
	return items
}
