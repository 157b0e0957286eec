package services

import (
	"regexp"
	"strings"
	"time"

	"codetrack/backend/models"
)

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases the title and collapses every run of non-alphanumeric
// characters into a single hyphen. It does not guarantee uniqueness; callers
// check for collisions before inserting.
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = slugPattern.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// LevelFromXP maps cumulative XP to a level on a quadratic curve: level N
// requires N^2 * 100 XP. Level 1 is the floor, so the result is always >= 1.
func LevelFromXP(xp int) int {
	level := 1
	for xp >= level*level*100 {
		level++
	}
	return level
}

// AddXP is the only place XP is mutated; it keeps the stored Level in sync
// with the curve.
func AddXP(stats *models.UserStats, amount int) {
	stats.XP += amount
	stats.Level = LevelFromXP(stats.XP)
}

// UpdateStreak applies one day of activity to the streak counters.
// A second call on the same calendar day is a no-op, so every user-visible
// action can call it unconditionally. A gap of more than one day, or a date
// before the recorded one (clock skew), resets the streak to 1.
func UpdateStreak(stats *models.UserStats, today time.Time) {
	today = DateOf(today)
	if stats.LastActivityDate == nil {
		stats.CurrentStreak = 1
	} else {
		delta := int(today.Sub(DateOf(*stats.LastActivityDate)).Hours() / 24)
		switch {
		case delta == 0:
			return
		case delta == 1:
			stats.CurrentStreak++
		default:
			stats.CurrentStreak = 1
		}
	}
	if stats.CurrentStreak > stats.LongestStreak {
		stats.LongestStreak = stats.CurrentStreak
	}
	day := today
	stats.LastActivityDate = &day
}

// DateOf truncates t to its UTC calendar date.
func DateOf(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
