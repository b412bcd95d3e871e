package validate

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dshills/gridstorm/internal/column"
)

// Messages produced by the built-in validator.
const (
	MsgRequired      = "Value is required"
	MsgTooLong       = "Value is too long"
	MsgYearNotNumber = "Year is not a number"
	MsgYearRange     = "Year should be positive"
	MsgMonthNotNum   = "Month is not a number"
	MsgMonthRange    = "Month must be between 1 and 12"
	MsgDayNotNumber  = "Day is not a number"
	MsgNotDate       = "Not a valid date"
	MsgNotNumber     = "Please enter a valid number"
	MsgInvalidTime   = "Time format must be HH:MM[:SS] or HHMM or HHMMSS"
	MsgHourRange     = "Hour must be between 0 and 23"
	MsgMinuteRange   = "Minute must be between 0 and 59"
	MsgSecondRange   = "Second must be between 0 and 59"
	MsgInvalidEmail  = "Invalid email syntax"
	MsgBlockedDomain = "Domain not allowed"
	MsgInvalidURL    = "Invalid URL"
	MsgInvalidMoney  = "Please enter a valid amount"
	MsgInvalidChoice = "Invalid field value"
)

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]+@[a-zA-Z0-9_.-]+\.[a-zA-Z]{2,}$`)
	urlPattern   = regexp.MustCompile("(?i)^(https?|ftp)://([a-z0-9.-]+\\.[a-z]{2,4}|localhost)(/[^\\s<>\"#%{}|\\\\^~\\[\\]`]*)?$")
	digitsOnly   = regexp.MustCompile(`^[0-9]+$`)
	moneyJunk    = regexp.MustCompile(`[^0-9.,-]`)
)

// Builtin validates the column types known to the grid.
type Builtin struct {
	blocked []string
}

// Option configures a Builtin validator.
type Option func(*Builtin)

// WithBlockedDomains rejects email addresses at the given domains.
func WithBlockedDomains(domains ...string) Option {
	return func(b *Builtin) {
		for _, d := range domains {
			d = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(d), "@"))
			if d != "" {
				b.blocked = append(b.blocked, d)
			}
		}
	}
}

// NewBuiltin creates the built-in validator.
func NewBuiltin(opts ...Option) *Builtin {
	b := &Builtin{}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Func returns the validator as a Func.
func (b *Builtin) Func() Func {
	return b.Validate
}

// Validate implements Func. Unknown types always pass.
func (b *Builtin) Validate(raw string, rule column.Rule) Result {
	value := strings.TrimSpace(raw)
	res := Result{OK: true, Value: value, ReformattedValue: value}

	if value == "" && rule.Mandatory {
		return reject(value, MsgRequired)
	}
	if rule.MaxLength > 0 && utf8.RuneCountInString(value) > rule.MaxLength {
		return reject(value, MsgTooLong)
	}

	switch strings.ToLower(rule.Type) {
	case column.TypeDate:
		return validateDate(value)
	case column.TypeNumber:
		return validateNumber(value)
	case column.TypeTime:
		return validateTime(value)
	case column.TypeEmail:
		return b.validateEmail(value)
	case column.TypeURL:
		if value != "" && !urlPattern.MatchString(value) {
			return reject(value, MsgInvalidURL)
		}
	case column.TypeMoney:
		return validateMoney(value)
	case column.TypeSelect:
		return validateChoice(value, rule)
	}
	return res
}

func reformatted(value, canonical string) Result {
	return Result{
		OK:               true,
		Value:            value,
		Reformatted:      canonical != value,
		ReformattedValue: canonical,
	}
}

// validateDate accepts dd.mm.yyyy and yyyy-mm-dd and reformats to the
// latter. An empty date becomes 0000-00-00.
func validateDate(value string) Result {
	if value == "" {
		return Result{OK: true, Reformatted: true, ReformattedValue: "0000-00-00"}
	}

	var yy, mm, dd string
	if strings.Contains(value, ".") {
		parts := strings.Split(value, ".")
		if len(parts) != 3 {
			return reject(value, MsgNotDate)
		}
		dd, mm, yy = parts[0], parts[1], parts[2]
	} else {
		parts := strings.Split(value, "-")
		yy = parts[0]
		if len(parts) > 1 {
			mm = parts[1]
		}
		if len(parts) > 2 {
			dd = parts[2]
		}
	}

	y, m, d, msgs := checkDate(yy, mm, dd)
	if len(msgs) > 0 {
		return reject(value, strings.Join(msgs, "\n"))
	}
	return reformatted(value, fmt.Sprintf("%04d-%02d-%02d", y, m, d))
}

func checkDate(yy, mm, dd string) (y, m, d int, msgs []string) {
	monthDays := [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

	y, err := strconv.Atoi(yy)
	switch {
	case err != nil:
		msgs = append(msgs, MsgYearNotNumber)
	case y < 0:
		msgs = append(msgs, MsgYearRange)
	default:
		if y < 100 {
			y += 2000
		}
		if isLeap(y) {
			monthDays[1] = 29
		}
	}

	maxDay := 0
	m, err = strconv.Atoi(mm)
	switch {
	case err != nil:
		msgs = append(msgs, MsgMonthNotNum)
	case m < 1 || m > 12:
		msgs = append(msgs, MsgMonthRange)
	default:
		maxDay = monthDays[m-1]
	}

	d, err = strconv.Atoi(dd)
	switch {
	case err != nil:
		msgs = append(msgs, MsgDayNotNumber)
	case maxDay > 0 && (d < 1 || d > maxDay):
		msgs = append(msgs, fmt.Sprintf("Day must be between 1 and %d", maxDay))
	}
	return y, m, d, msgs
}

func isLeap(y int) bool {
	return (y%4 == 0 && y%100 != 0) || y%400 == 0
}

// validateNumber accepts a single decimal comma and rewrites it as a
// point. An empty number becomes 0. Only finite decimal notation passes:
// hex floats, infinities and NaN are rejected.
func validateNumber(value string) Result {
	if value == "" {
		return reformatted(value, "0")
	}
	canonical := value
	if parts := strings.Split(value, ","); len(parts) == 2 {
		canonical = parts[0] + "." + parts[1]
	}
	if digits := strings.TrimLeft(canonical, "+-"); strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X") {
		return reject(canonical, MsgNotNumber)
	}
	f, err := strconv.ParseFloat(canonical, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return reject(canonical, MsgNotNumber)
	}
	return reformatted(value, canonical)
}

// validateTime accepts HHMM, HHMMSS and H:M[:S] and always reformats to
// HH:MM:SS.
func validateTime(value string) Result {
	if value == "" {
		return reformatted(value, "00:00:00")
	}

	var h, m, s string
	switch {
	case digitsOnly.MatchString(value):
		switch len(value) {
		case 4:
			h, m, s = value[0:2], value[2:4], "00"
		case 6:
			h, m, s = value[0:2], value[2:4], value[4:6]
		default:
			return reject(value, MsgInvalidTime)
		}
	case strings.Contains(value, ":"):
		parts := strings.Split(value, ":")
		h, m, s = parts[0], "00", "00"
		if len(parts) > 1 {
			m = parts[1]
		}
		if len(parts) > 2 {
			s = parts[2]
		}
	default:
		return reject(value, MsgInvalidTime)
	}

	var msgs []string
	hh, ok := inRange(h, 0, 23)
	if !ok {
		msgs = append(msgs, MsgHourRange)
	}
	mi, ok := inRange(m, 0, 59)
	if !ok {
		msgs = append(msgs, MsgMinuteRange)
	}
	ss, ok := inRange(s, 0, 59)
	if !ok {
		msgs = append(msgs, MsgSecondRange)
	}
	if len(msgs) > 0 {
		return reject(value, strings.Join(msgs, "\n"))
	}

	res := reformatted(value, fmt.Sprintf("%02d:%02d:%02d", hh, mi, ss))
	res.Reformatted = true
	return res
}

func inRange(v string, lo, hi int) (int, bool) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, n >= lo && n <= hi
}

func (b *Builtin) validateEmail(value string) Result {
	if value == "" {
		return Result{OK: true}
	}
	if !emailPattern.MatchString(value) {
		return reject(value, MsgInvalidEmail)
	}
	lower := strings.ToLower(value)
	for _, d := range b.blocked {
		if strings.HasSuffix(lower, "@"+d) {
			return reject(value, MsgBlockedDomain)
		}
	}
	return Result{OK: true, Value: value, ReformattedValue: value}
}

// validateMoney strips currency symbols and grouping, treats the last
// separator followed by one or two digits as the decimal mark and
// reformats to two decimals.
func validateMoney(value string) Result {
	if value == "" {
		return reformatted(value, "0.00")
	}
	cleaned := moneyJunk.ReplaceAllString(value, "")

	decimal := -1
	if i := strings.LastIndexAny(cleaned, ".,"); i >= 0 {
		if tail := len(cleaned) - i - 1; tail == 1 || tail == 2 {
			decimal = i
		}
	}
	var b strings.Builder
	for i, r := range cleaned {
		switch {
		case i == decimal:
			b.WriteByte('.')
		case r == '.' || r == ',':
		default:
			b.WriteRune(r)
		}
	}

	f, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return reject(value, MsgInvalidMoney)
	}
	return reformatted(value, strconv.FormatFloat(f, 'f', 2, 64))
}

func validateChoice(value string, rule column.Rule) Result {
	choices := rule.Choices()
	if len(choices) == 0 || value == "" {
		return Result{OK: true, Value: value, ReformattedValue: value}
	}
	for _, c := range choices {
		if c.Value == value {
			return Result{OK: true, Value: value, ReformattedValue: value}
		}
	}
	return reject(value, MsgInvalidChoice)
}
