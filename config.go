package main

import (
	"os"
	"strconv"
	"strings"
	"time"

	"lg/hayl-fuel-api/logger"
)

// config holds server settings read from the environment (and .env, when present).
type config struct {
	DBURL              string
	Port               string
	LogMode            string
	RedisAddr          string // empty disables the adaptive signal cache
	SignalCacheTTL     time.Duration
	CORSOrigins        []string
	DefaultMealsPerDay int
}

var defaultCORSOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
	"http://127.0.0.1:3000",
	"http://127.0.0.1:5173",
}

// loadConfig reads settings with defaults. log may be nil before the logger exists.
func loadConfig(log *logger.Logger) config {
	origins := defaultCORSOrigins
	if raw := getEnv("CORS_ORIGINS", "", log); raw != "" {
		origins = splitCSV(raw)
	}
	meals := getEnvAsInt("DEFAULT_MEALS_PER_DAY", 3, log)
	if meals < 1 {
		meals = 1
	}
	return config{
		DBURL:              getEnv("DB_URL", "", log),
		Port:               getEnv("PORT", "3000", log),
		LogMode:            getEnv("LOG_MODE", "dev", log),
		RedisAddr:          strings.TrimSpace(getEnv("REDIS_ADDR", "", log)),
		SignalCacheTTL:     time.Duration(getEnvAsInt("SIGNAL_CACHE_TTL_SECONDS", 900, log)) * time.Second,
		CORSOrigins:        origins,
		DefaultMealsPerDay: meals,
	}
}

func getEnv(key, defaultVal string, log *logger.Logger) string {
	val, ok := os.LookupEnv(key)
	if !ok {
		if log != nil {
			log.Debug("Environment variable not found, using default", "env_var", key, "default", defaultVal)
		}
		return defaultVal
	}
	return val
}

func getEnvAsInt(key string, defaultVal int, log *logger.Logger) int {
	valStr, ok := os.LookupEnv(key)
	if !ok {
		return defaultVal
	}
	i, err := strconv.Atoi(strings.TrimSpace(valStr))
	if err != nil {
		if log != nil {
			log.Warn("Environment variable could not be parsed as int, using default",
				"env_var", key, "provided", valStr, "default", defaultVal)
		}
		return defaultVal
	}
	return i
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
