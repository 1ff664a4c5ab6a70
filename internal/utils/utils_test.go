package utils

import (
	"testing"
	"time"
)

func TestClamp01(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{-0.5, 0},
		{0, 0},
		{0.42, 0.42},
		{1, 1},
		{1.7, 1},
	}
	for _, tc := range cases {
		if got := Clamp01(tc.in); got != tc.want {
			t.Errorf("Clamp01(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestRound2(t *testing.T) {
	if got := Round2(0.12345); got != 0.12 {
		t.Errorf("Round2(0.12345) = %v, want 0.12", got)
	}
	if got := Round2(0.995); got != 1.0 {
		t.Errorf("Round2(0.995) = %v, want 1.0", got)
	}
}

func TestFormatDate(t *testing.T) {
	date := time.Date(2026, 8, 25, 14, 5, 0, 0, time.UTC)
	if got := FormatDate(date); got != "2026-08-25" {
		t.Errorf("FormatDate = %s, want 2026-08-25", got)
	}
}

func TestGenerateUUIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateUUID()
		if seen[id] {
			t.Fatalf("duplicate UUID: %s", id)
		}
		seen[id] = true
	}
}

func TestCalculateWeekRange(t *testing.T) {
	// Wednesday
	wednesday := time.Date(2026, 8, 19, 15, 30, 0, 0, time.UTC)
	monday, sunday := CalculateWeekRange(wednesday)

	if monday.Weekday() != time.Monday {
		t.Errorf("start weekday = %s, want Monday", monday.Weekday())
	}
	if sunday.Weekday() != time.Sunday {
		t.Errorf("end weekday = %s, want Sunday", sunday.Weekday())
	}
	if FormatDate(monday) != "2026-08-17" {
		t.Errorf("monday = %s, want 2026-08-17", FormatDate(monday))
	}
	if FormatDate(sunday) != "2026-08-23" {
		t.Errorf("sunday = %s, want 2026-08-23", FormatDate(sunday))
	}

	// A Sunday belongs to the week that started the previous Monday
	sun := time.Date(2026, 8, 23, 9, 0, 0, 0, time.UTC)
	monday, _ = CalculateWeekRange(sun)
	if FormatDate(monday) != "2026-08-17" {
		t.Errorf("monday for Sunday input = %s, want 2026-08-17", FormatDate(monday))
	}
}
