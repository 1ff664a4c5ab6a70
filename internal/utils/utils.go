package utils

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// GenerateUUID returns a new random UUID string
func GenerateUUID() string {
	return uuid.New().String()
}

// FormatDate formats a time.Time as YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// Clamp01 clamps a value into [0, 1]
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Round2 rounds a value to 2 decimal places
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// CalculateWeekRange calculates the Monday (start) and Sunday (end) of the
// week containing the given date.
func CalculateWeekRange(date time.Time) (monday time.Time, sunday time.Time) {
	weekday := int(date.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday becomes 7
	}
	daysFromMonday := weekday - 1

	monday = date.AddDate(0, 0, -daysFromMonday)
	monday = time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, monday.Location())

	sunday = monday.AddDate(0, 0, 6)
	sunday = time.Date(sunday.Year(), sunday.Month(), sunday.Day(), 23, 59, 59, 999999999, sunday.Location())

	return monday, sunday
}
