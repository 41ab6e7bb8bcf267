// Package calendar holds the month-grid and time-of-day helpers used to
// render sessions. Dates are YYYY-MM-DD strings and times zero-padded
// 24-hour HH:MM strings; nothing here deals with time zones.
package calendar

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Month identifies a displayed month.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month { return Month{Year: t.Year(), Month: t.Month()} }

// ParseMonth parses "YYYY-MM".
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q", s)
	}
	return MonthOf(t), nil
}

func (m Month) String() string { return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month)) }

// Shift moves n months forward (or back when n < 0).
func (m Month) Shift(n int) Month {
	return MonthOf(time.Date(m.Year, m.Month+time.Month(n), 1, 0, 0, 0, 0, time.UTC))
}

// Days returns the number of days in the month.
func (m Month) Days() int {
	return time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Offset is the weekday of the first day, Sunday = 0.
func (m Month) Offset() int {
	return int(time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).Weekday())
}

// Key returns the date string of day d of the month.
func (m Month) Key(d int) string { return DateKey(m.Year, m.Month, d) }

// DateKey formats a date as YYYY-MM-DD.
func DateKey(year int, month time.Month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, int(month), day)
}

// Grid returns the cells of the month view: Offset() leading blanks (0)
// followed by the days 1..Days().
func (m Month) Grid() []int {
	off := m.Offset()
	cells := make([]int, off, off+m.Days())
	for d := 1; d <= m.Days(); d++ {
		cells = append(cells, d)
	}
	return cells
}

// Weeks splits Grid into rows of seven, padding the last row with blanks.
func (m Month) Weeks() [][]int {
	cells := m.Grid()
	for len(cells)%7 != 0 {
		cells = append(cells, 0)
	}
	weeks := make([][]int, 0, len(cells)/7)
	for i := 0; i < len(cells); i += 7 {
		weeks = append(weeks, cells[i:i+7])
	}
	return weeks
}

// Bucket groups items of the month by day using an exact match of the
// date string returned by dateOf. Items from other months are skipped.
func Bucket[T any](m Month, items []T, dateOf func(T) string) map[int][]T {
	byKey := make(map[string]int, m.Days())
	for d := 1; d <= m.Days(); d++ {
		byKey[m.Key(d)] = d
	}
	out := make(map[int][]T)
	for _, it := range items {
		if d, ok := byKey[dateOf(it)]; ok {
			out[d] = append(out[d], it)
		}
	}
	return out
}

// ErrInvalidDate and ErrInvalidClock report malformed values.
var (
	ErrInvalidDate  = errors.New("date must be YYYY-MM-DD")
	ErrInvalidClock = errors.New("time must be HH:MM")
)

// NormalizeDate validates a YYYY-MM-DD date and returns it unchanged.
func NormalizeDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return "", ErrInvalidDate
	}
	return s, nil
}

// NormalizeClock accepts HH:MM or HH:MM:SS and returns zero-padded HH:MM.
func NormalizeClock(s string) (string, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return "", ErrInvalidClock
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return "", ErrInvalidClock
	}
	mm, err := strconv.Atoi(parts[1])
	if err != nil || mm < 0 || mm > 59 || len(parts[1]) != 2 {
		return "", ErrInvalidClock
	}
	if len(parts) == 3 {
		if sec, err := strconv.Atoi(parts[2]); err != nil || sec < 0 || sec > 59 {
			return "", ErrInvalidClock
		}
	}
	return fmt.Sprintf("%02d:%02d", h, mm), nil
}

// FormatTime renders a 24-hour HH:MM value as 12-hour time with an AM/PM
// suffix: 00:30 -> 12:30 AM, 13:05 -> 1:05 PM. Malformed input is returned
// unchanged.
func FormatTime(s string) string {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) < 2 {
		return s
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return s
	}
	suffix := "AM"
	if h >= 12 {
		suffix = "PM"
	}
	h12 := h % 12
	if h12 == 0 {
		h12 = 12
	}
	return fmt.Sprintf("%d:%s %s", h12, parts[1], suffix)
}
