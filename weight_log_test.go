package main

import (
	"strings"
	"testing"
	"time"
)

func TestNormalizeWeightRequest(t *testing.T) {
	body := createWeightRequest{WeightKg: 81.2, Source: "  "}
	if msg := normalizeWeightRequest(&body, fixedNow); msg != "" {
		t.Fatalf("unexpected rejection: %s", msg)
	}
	if body.Source != "manual" {
		t.Errorf("source = %q, want manual", body.Source)
	}
	if body.LoggedAt == nil || !body.LoggedAt.Equal(fixedNow) {
		t.Errorf("logged_at = %v, want %v", body.LoggedAt, fixedNow)
	}

	soon := fixedNow.Add(2 * time.Hour)
	later := fixedNow.Add(30 * time.Hour)
	cases := []struct {
		name string
		body createWeightRequest
		want string
	}{
		{"scale sync slightly ahead", createWeightRequest{WeightKg: 80, LoggedAt: &soon, Source: "scale"}, ""},
		{"zero", createWeightRequest{WeightKg: 0}, "weight_kg must be between 0 and 700"},
		{"too heavy", createWeightRequest{WeightKg: 701}, "weight_kg must be between 0 and 700"},
		{"too far ahead", createWeightRequest{WeightKg: 80, LoggedAt: &later}, "logged_at is too far in the future"},
		{"long source", createWeightRequest{WeightKg: 80, Source: strings.Repeat("x", 33)}, "source must be at most 32 characters"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := normalizeWeightRequest(&tc.body, fixedNow); got != tc.want {
				t.Errorf("normalizeWeightRequest = %q, want %q", got, tc.want)
			}
		})
	}
}
