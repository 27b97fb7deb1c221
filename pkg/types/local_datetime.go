package types

import (
	"bytes"
	"fmt"
	"strings"
	"time"
)

// LocalDateTimeLayout is the wire format for timestamps: date and time to the second,
// no zone. Values are interpreted as UTC wall-clock time.
const LocalDateTimeLayout = "2006-01-02T15:04:05"

// ParseLocalDateTime parses value strictly using LocalDateTimeLayout.
func ParseLocalDateTime(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("timestamp is empty")
	}
	parsed, err := time.ParseInLocation(LocalDateTimeLayout, trimmed, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("timestamp %q must match %s", value, LocalDateTimeLayout)
	}
	return parsed, nil
}

// FormatLocalDateTime renders t in UTC using LocalDateTimeLayout.
func FormatLocalDateTime(t time.Time) string {
	return t.UTC().Format(LocalDateTimeLayout)
}

// LocalDateTime is a JSON-friendly timestamp encoded with LocalDateTimeLayout.
type LocalDateTime struct {
	time.Time
}

// NewLocalDateTime truncates t to the second and normalizes it to UTC.
func NewLocalDateTime(t time.Time) LocalDateTime {
	return LocalDateTime{Time: t.UTC().Truncate(time.Second)}
}

func (l LocalDateTime) MarshalJSON() ([]byte, error) {
	if l.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + FormatLocalDateTime(l.Time) + `"`), nil
}

func (l *LocalDateTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		l.Time = time.Time{}
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("timestamp must be a string in %s format", LocalDateTimeLayout)
	}
	parsed, err := ParseLocalDateTime(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	l.Time = parsed
	return nil
}

func (l LocalDateTime) String() string {
	return FormatLocalDateTime(l.Time)
}
