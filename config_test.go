package main

import (
	"reflect"
	"testing"
	"time"
)

func TestSplitCSV(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"https://app.example.com", []string{"https://app.example.com"}},
		{" http://a.test , http://b.test ,,", []string{"http://a.test", "http://b.test"}},
		{" , ", nil},
	}
	for _, tc := range cases {
		if got := splitCSV(tc.in); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("splitCSV(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestGetEnvAsInt(t *testing.T) {
	t.Setenv("HAYL_TEST_INT", " 42 ")
	if got := getEnvAsInt("HAYL_TEST_INT", 7, nil); got != 42 {
		t.Errorf("parsed value = %d, want 42", got)
	}
	t.Setenv("HAYL_TEST_INT", "forty")
	if got := getEnvAsInt("HAYL_TEST_INT", 7, nil); got != 7 {
		t.Errorf("unparseable value = %d, want default 7", got)
	}
	if got := getEnvAsInt("HAYL_TEST_UNSET_INT", 9, nil); got != 9 {
		t.Errorf("unset value = %d, want default 9", got)
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("REDIS_ADDR", " localhost:6379 ")
	t.Setenv("SIGNAL_CACHE_TTL_SECONDS", "60")
	t.Setenv("CORS_ORIGINS", "https://fuel.example.com")
	t.Setenv("DEFAULT_MEALS_PER_DAY", "0")

	cfg := loadConfig(nil)
	if cfg.Port != "8081" {
		t.Errorf("port = %q, want 8081", cfg.Port)
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Errorf("redis addr = %q, want trimmed localhost:6379", cfg.RedisAddr)
	}
	if cfg.SignalCacheTTL != time.Minute {
		t.Errorf("ttl = %v, want 1m", cfg.SignalCacheTTL)
	}
	if !reflect.DeepEqual(cfg.CORSOrigins, []string{"https://fuel.example.com"}) {
		t.Errorf("origins = %v", cfg.CORSOrigins)
	}
	if cfg.DefaultMealsPerDay != 1 {
		t.Errorf("meals per day = %d, want clamped to 1", cfg.DefaultMealsPerDay)
	}
}
