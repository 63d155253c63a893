package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-day format used on the wire and in the database
const DateLayout = "2006-01-02"

// Score bounds accepted on write
const (
	MinMoodScore = 1
	MaxMoodScore = 10
)

// User represents a diary owner
type User struct {
	ID        int64     `json:"id" db:"id"`
	Username  string    `json:"username" db:"username"`
	Email     string    `json:"email" db:"email"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// DiaryEntry is one user's dated mood record.
// A NULL score is represented as a nil pointer; such rows are skipped by numeric aggregates.
type DiaryEntry struct {
	ID          int64      `json:"id" db:"id"`
	UserID      int64      `json:"userId" db:"user_id"`
	Date        EntryDate  `json:"date" db:"date"`
	MoodScore   *int       `json:"emotion_score" db:"emotion_score"`
	Description *string    `json:"description" db:"description"`
	Activities  Activities `json:"activities" db:"activities"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// Score returns the mood score and whether it is usable in aggregates
func (e *DiaryEntry) Score() (int, bool) {
	if e == nil || e.MoodScore == nil {
		return 0, false
	}
	return *e.MoodScore, true
}

// EntryDate is a calendar date that tolerates whatever the store hands back:
// a time value, a string, or nothing at all. Scanning never fails; callers ask
// Day or Valid to learn whether the value parsed.
type EntryDate struct {
	Time  time.Time
	Raw   string
	Valid bool
}

var dateLayouts = []string{
	DateLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05.999999999-07:00",
}

// NewEntryDate wraps a parsed time
func NewEntryDate(t time.Time) EntryDate {
	return EntryDate{Time: t, Valid: true}
}

// ParseEntryDate parses s leniently. Unparseable input is kept in Raw with Valid=false.
func ParseEntryDate(s string) EntryDate {
	trimmed := strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return EntryDate{Time: t, Raw: s, Valid: true}
		}
	}
	return EntryDate{Raw: s}
}

// Day returns the YYYY-MM-DD key and true when the date parsed
func (d EntryDate) Day() (string, bool) {
	if !d.Valid {
		return "", false
	}
	return d.Time.Format(DateLayout), true
}

// String returns the normalized day, the raw text, or "" when missing
func (d EntryDate) String() string {
	if day, ok := d.Day(); ok {
		return day
	}
	return d.Raw
}

// Scan implements sql.Scanner
func (d *EntryDate) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		*d = NewEntryDate(v)
	case string:
		*d = ParseEntryDate(v)
	case []byte:
		*d = ParseEntryDate(string(v))
	default:
		// NULL or an unexpected column type
		*d = EntryDate{}
	}
	return nil
}

// Value implements driver.Valuer
func (d EntryDate) Value() (driver.Value, error) {
	if s := d.String(); s != "" {
		return s, nil
	}
	return nil, nil
}

// MarshalJSON implements json.Marshaler
func (d EntryDate) MarshalJSON() ([]byte, error) {
	if s := d.String(); s != "" {
		return json.Marshal(s)
	}
	return []byte("null"), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (d *EntryDate) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*d = EntryDate{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*d = EntryDate{}
		return nil
	}
	*d = ParseEntryDate(s)
	return nil
}

// Activities is the list of activity tags attached to an entry, stored as JSON
type Activities []string

// Scan implements sql.Scanner
func (a *Activities) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*a = Activities{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported activities type %T", src)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		*a = Activities{}
		return nil
	}

	var out []string
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("failed to decode activities: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	*a = out
	return nil
}

// Value implements driver.Valuer
func (a Activities) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]string(a))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}
