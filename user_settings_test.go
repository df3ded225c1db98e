package main

import (
	"testing"
)

func ptr[T any](v T) *T { return &v }

func TestValidateProfilePatch(t *testing.T) {
	cases := []struct {
		name string
		body patchProfileRequest
		want string
	}{
		{"valid full patch", patchProfileRequest{
			WeightKg: ptr(72.5), HeightCm: ptr(168.0), DateOfBirth: ptr("1995-04-02"),
			Sex: ptr("female"), ActivityLevel: ptr("light"), BodyFatPercent: ptr(0.0),
			Goal: ptr("cut"), ExperienceLevel: ptr("intermediate"), MealsPerDay: ptr(5),
		}, ""},
		{"zero weight", patchProfileRequest{WeightKg: ptr(0.0)}, "weight_kg must be between 0 and 700"},
		{"huge height", patchProfileRequest{HeightCm: ptr(320.0)}, "height_cm must be between 0 and 300"},
		{"unparseable dob", patchProfileRequest{DateOfBirth: ptr("02/04/1995")}, "invalid date_of_birth, expected YYYY-MM-DD"},
		{"future dob", patchProfileRequest{DateOfBirth: ptr("2030-01-01")}, "date_of_birth gives an implausible age"},
		{"unknown sex", patchProfileRequest{Sex: ptr("other")}, "sex must be one of: male, female"},
		{"unknown activity", patchProfileRequest{ActivityLevel: ptr("extreme")},
			"activity_level must be one of: sedentary, light, moderate, active, athlete"},
		{"body fat 100", patchProfileRequest{BodyFatPercent: ptr(100.0)}, "body_fat_percent must be between 0 and 100"},
		{"unknown goal", patchProfileRequest{Goal: ptr("recomp")}, "goal must be one of: cut, maintain, bulk"},
		{"unknown experience", patchProfileRequest{ExperienceLevel: ptr("pro")},
			"experience_level must be one of: beginner, intermediate, elite"},
		{"zero meals", patchProfileRequest{MealsPerDay: ptr(0)}, "meals_per_day must be between 1 and 12"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := validateProfilePatch(tc.body, fixedNow); got != tc.want {
				t.Errorf("validateProfilePatch = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestWithAge(t *testing.T) {
	p := withAge(makeProfile(), fixedNow)
	if p.Age == nil || *p.Age != 35 {
		t.Errorf("age = %v, want 35", p.Age)
	}

	p = makeProfile()
	p.DateOfBirth = nil
	if withAge(p, fixedNow).Age != nil {
		t.Error("expected nil age without a date of birth")
	}
}
