// Package models defines the row-level data structures shared by the
// row store, the cache and the aggregation services, together with the
// tolerant field parsers used at the spreadsheet boundary.
package models

import (
	"strconv"
	"strings"
	"time"
)

// Row is a single spreadsheet row: a mapping from column name to the
// raw cell value. Cells are untyped strings; callers parse them with
// the helpers below and skip values that do not parse.
type Row map[string]string

// DateLayout is the calendar-date format used in performance rows.
const DateLayout = "2006-01-02"

// User represents an application user parsed from a users row.
type User struct {
	// ID is the unique identifier for the user.
	ID string
	// Username is the login name chosen by the user.
	Username string
	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string
	// Role is either "user" or "admin".
	Role string
	// Active reports whether the row's is_active cell parsed as a
	// truthy token. Users that are not active never appear on the
	// leaderboard.
	Active bool
}

// Exercise represents an exercise definition owned by one user.
type Exercise struct {
	ID       string
	UserID   string
	Name     string
	Zone     string
	VideoURL string
}

// Performance represents one logged training set. Weight and Date are
// nil when the cell was empty or did not parse; aggregations treat a
// missing weight as zero and a missing date as "no date".
type Performance struct {
	ID         string
	UserID     string
	ExerciseID string
	Date       *time.Time
	Weight     *float64
	Reps       *int
	Ressenti   string
	Notes      string
}

// UserFromRow parses a users row. Fields that do not parse keep their
// zero value; the row is never rejected.
func UserFromRow(r Row) User {
	return User{
		ID:           r["user_id"],
		Username:     r["username"],
		PasswordHash: r["password_hash"],
		Role:         r["role"],
		Active:       ParseBool(r["is_active"]),
	}
}

// ExerciseFromRow parses an exercises row.
func ExerciseFromRow(r Row) Exercise {
	return Exercise{
		ID:       r["exercise_id"],
		UserID:   r["user_id"],
		Name:     r["name"],
		Zone:     r["zone"],
		VideoURL: r["video_url"],
	}
}

// PerformanceFromRow parses a performances row.
func PerformanceFromRow(r Row) Performance {
	return Performance{
		ID:         r["performance_id"],
		UserID:     r["user_id"],
		ExerciseID: r["exercise_id"],
		Date:       ParseDate(r["date"]),
		Weight:     ParseWeight(r["weight"]),
		Reps:       ParseReps(r["reps"]),
		Ressenti:   r["ressenti"],
		Notes:      r["notes"],
	}
}

// truthy holds the tokens accepted as "active". The sheet has been
// filled by hand in two languages, so both English and French tokens
// appear in it.
var truthy = map[string]bool{
	"true": true, "vrai": true, "1": true, "yes": true, "oui": true, "y": true,
}

// ParseBool reports whether s is a truthy token, case-insensitively.
// Anything else, including an empty or unreadable cell, is false.
func ParseBool(s string) bool {
	return truthy[strings.ToLower(strings.TrimSpace(s))]
}

// ParseWeight parses an optional numeric cell. It returns nil when the
// cell is empty or not a number; a nil weight contributes zero to
// volume sums and nothing to maximums.
func ParseWeight(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

// ParseReps parses a repetition count cell, nil when absent or not an
// integer.
func ParseReps(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

// ParseDate parses a calendar-date cell in DateLayout, nil when absent
// or unparseable.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}
