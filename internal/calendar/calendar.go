// Package calendar builds month grids for the date picker popup.
//
// Weeks start on Monday. The first and last week of a month are filled
// with spill days from the neighbouring months, which stay selectable.
package calendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Format selects how a picked date is written back.
type Format string

// Supported write-back formats.
const (
	FormatDE  Format = "de"  // dd.mm.yyyy
	FormatEN  Format = "en"  // mm/dd/yyyy
	FormatSQL Format = "sql" // yyyy-mm-dd
)

// ParseFormat returns the named format, defaulting to FormatDE.
func ParseFormat(s string) Format {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatEN, FormatSQL:
		return f
	}
	return FormatDE
}

// Date formats a day in f.
func (f Format) Date(d, m, y int) string {
	switch f {
	case FormatEN:
		return fmt.Sprintf("%02d/%02d/%04d", m, d, y)
	case FormatSQL:
		return fmt.Sprintf("%04d-%02d-%02d", y, m, d)
	}
	return fmt.Sprintf("%02d.%02d.%04d", d, m, y)
}

// Weekdays are the column labels of a month grid.
var Weekdays = [7]string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"}

// Day is one cell of a month grid.
type Day struct {
	Day   int    `json:"day"`
	Month int    `json:"month"`
	Year  int    `json:"year"`
	Date  string `json:"date"`
	Other bool   `json:"other,omitempty"`

	// Entries are annotations for the day, shown as a tooltip.
	Entries []string `json:"entries,omitempty"`
}

// Month is a Monday-first month grid.
type Month struct {
	Month     int      `json:"month"`
	Year      int      `json:"year"`
	Title     string   `json:"title"`
	PrevMonth int      `json:"prev_month"`
	PrevYear  int      `json:"prev_year"`
	NextMonth int      `json:"next_month"`
	NextYear  int      `json:"next_year"`
	Weeks     [][7]Day `json:"weeks"`
}

// Build creates the grid for month m of year y. Out-of-range months and
// non-positive years fall back to the month and year of now. entries
// keys are dates formatted in f.
func Build(m, y int, f Format, entries map[string][]string, now time.Time) Month {
	if m < 1 || m > 12 {
		m = int(now.Month())
	}
	if y <= 0 {
		y = now.Year()
	}

	out := Month{Month: m, Year: y, Title: fmt.Sprintf("%s %d", time.Month(m), y)}
	out.PrevMonth, out.PrevYear = m-1, y
	if m == 1 {
		out.PrevMonth, out.PrevYear = 12, y-1
	}
	out.NextMonth, out.NextYear = m+1, y
	if m == 12 {
		out.NextMonth, out.NextYear = 1, y+1
	}

	day := func(d, m, y int, other bool) Day {
		date := f.Date(d, m, y)
		return Day{Day: d, Month: m, Year: y, Date: date, Other: other, Entries: entries[date]}
	}

	first := time.Date(y, time.Month(m), 1, 0, 0, 0, 0, time.UTC)
	weekday := int(first.Weekday())
	if weekday == 0 {
		weekday = 7
	}

	var days []Day
	prevDays := DaysIn(out.PrevMonth, out.PrevYear)
	for i := 1; i < weekday; i++ {
		days = append(days, day(prevDays-weekday+1+i, out.PrevMonth, out.PrevYear, true))
	}
	for d := 1; d <= DaysIn(m, y); d++ {
		days = append(days, day(d, m, y, false))
	}
	for d := 1; len(days)%7 != 0; d++ {
		days = append(days, day(d, out.NextMonth, out.NextYear, true))
	}

	for i := 0; i < len(days); i += 7 {
		var week [7]Day
		copy(week[:], days[i:i+7])
		out.Weeks = append(out.Weeks, week)
	}
	return out
}

// DaysIn returns the number of days in month m of year y.
func DaysIn(m, y int) int {
	return time.Date(y, time.Month(m)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ParseSeed extracts the day, month and year of a dd.mm.yyyy or a
// yyyy-mm-dd value. ok is false when the value has neither shape.
func ParseSeed(v string) (d, m, y int, ok bool) {
	v = strings.TrimSpace(v)
	var ds, ms, ys string
	if parts := strings.Split(v, "-"); len(parts) == 3 && len(parts[0]) == 4 {
		ys, ms, ds = parts[0], parts[1], parts[2]
	} else if parts := strings.Split(v, "."); len(parts) >= 3 {
		ds, ms, ys = parts[0], parts[1], parts[2]
	} else {
		return 0, 0, 0, false
	}

	var err error
	if d, err = strconv.Atoi(ds); err != nil {
		return 0, 0, 0, false
	}
	if m, err = strconv.Atoi(ms); err != nil || m < 1 || m > 12 {
		return 0, 0, 0, false
	}
	if y, err = strconv.Atoi(ys); err != nil || y <= 0 {
		return 0, 0, 0, false
	}
	if d < 1 || d > DaysIn(m, y) {
		d = 1
	}
	return d, m, y, true
}
