package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dshills/gridstorm/internal/column"
)

func rule(typ string) column.Rule {
	r := column.Default()
	r.Type = typ
	return r
}

func TestBuiltinDate(t *testing.T) {
	v := NewBuiltin()

	tests := []struct {
		name   string
		input  string
		ok     bool
		final  string
		reform bool
		msg    string
	}{
		{"dotted", "02.01.2024", true, "2024-01-02", true, ""},
		{"iso", "2024-01-02", true, "2024-01-02", false, ""},
		{"padded", "2024-1-2", true, "2024-01-02", true, ""},
		{"empty", "", true, "0000-00-00", true, ""},
		{"short year leap", "29.02.24", true, "2024-02-29", true, ""},
		{"not leap", "29.02.2023", false, "", false, "Day must be between 1 and 28"},
		{"century leap", "29.02.2000", true, "2000-02-29", true, ""},
		{"two dots", "02.2024", false, "", false, MsgNotDate},
		{"bad month", "01.13.2024", false, "", false, MsgMonthRange},
		{"words", "yesterday", false, "", false, MsgYearNotNumber + "\n" + MsgMonthNotNum + "\n" + MsgDayNotNumber},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := v.Validate(tt.input, rule(column.TypeDate))
			assert.Equal(t, tt.ok, r.OK)
			if tt.ok {
				assert.Equal(t, tt.reform, r.Reformatted)
				assert.Equal(t, tt.final, r.Final(tt.input))
				return
			}
			assert.Equal(t, tt.msg, r.Msg)
		})
	}
}

func TestBuiltinNumber(t *testing.T) {
	v := NewBuiltin()

	r := v.Validate("1,5", rule(column.TypeNumber))
	assert.True(t, r.OK)
	assert.True(t, r.Reformatted)
	assert.Equal(t, "1.5", r.ReformattedValue)

	r = v.Validate("42", rule(column.TypeNumber))
	assert.True(t, r.OK)
	assert.False(t, r.Reformatted)

	r = v.Validate("", rule(column.TypeNumber))
	assert.True(t, r.OK)
	assert.Equal(t, "0", r.Final(""))

	r = v.Validate("12abc", rule(column.TypeNumber))
	assert.False(t, r.OK)
	assert.Equal(t, MsgNotNumber, r.Msg)

	r = v.Validate("1,000,5", rule(column.TypeNumber))
	assert.False(t, r.OK)

	for _, bad := range []string{"Inf", "+Inf", "-infinity", "NaN", "0x1p3", "-0X10", "1e400"} {
		r = v.Validate(bad, rule(column.TypeNumber))
		assert.False(t, r.OK, bad)
		assert.Equal(t, MsgNotNumber, r.Msg, bad)
	}

	r = v.Validate("-2,5e3", rule(column.TypeNumber))
	assert.True(t, r.OK)
	assert.Equal(t, "-2.5e3", r.Final(""))
}

func TestBuiltinTime(t *testing.T) {
	v := NewBuiltin()

	tests := []struct {
		input string
		ok    bool
		want  string
	}{
		{"0930", true, "09:30:00"},
		{"093015", true, "09:30:15"},
		{"9:5", true, "09:05:00"},
		{"23:59:59", true, "23:59:59"},
		{"", true, "00:00:00"},
		{"24:00", false, MsgHourRange},
		{"12:60", false, MsgMinuteRange},
		{"12345", false, MsgInvalidTime},
		{"noon", false, MsgInvalidTime},
		{"25:61:61", false, MsgHourRange + "\n" + MsgMinuteRange + "\n" + MsgSecondRange},
	}
	for _, tt := range tests {
		r := v.Validate(tt.input, rule(column.TypeTime))
		assert.Equal(t, tt.ok, r.OK, tt.input)
		if tt.ok {
			assert.True(t, r.Reformatted, tt.input)
			assert.Equal(t, tt.want, r.ReformattedValue, tt.input)
		} else {
			assert.Equal(t, tt.want, r.Msg, tt.input)
		}
	}
}

func TestBuiltinEmail(t *testing.T) {
	v := NewBuiltin(WithBlockedDomains("@spam.example", " ", "Junk.Example"))

	assert.True(t, v.Validate("", rule(column.TypeEmail)).OK)
	assert.True(t, v.Validate("jane.doe@mail.example.org", rule(column.TypeEmail)).OK)

	r := v.Validate("not-an-address", rule(column.TypeEmail))
	assert.False(t, r.OK)
	assert.Equal(t, MsgInvalidEmail, r.Msg)

	r = v.Validate("someone@spam.example", rule(column.TypeEmail))
	assert.False(t, r.OK)
	assert.Equal(t, MsgBlockedDomain, r.Msg)

	r = v.Validate("SOMEONE@JUNK.EXAMPLE", rule(column.TypeEmail))
	assert.False(t, r.OK)
	assert.Equal(t, MsgBlockedDomain, r.Msg)
}

func TestBuiltinURL(t *testing.T) {
	v := NewBuiltin()

	for _, ok := range []string{"", "https://example.com", "http://localhost/path?q=1", "FTP://files.example.org/a/b"} {
		assert.True(t, v.Validate(ok, rule(column.TypeURL)).OK, ok)
	}
	for _, bad := range []string{"example.com", "mailto:me@example.com", "http://exa mple.com"} {
		r := v.Validate(bad, rule(column.TypeURL))
		assert.False(t, r.OK, bad)
		assert.Equal(t, MsgInvalidURL, r.Msg)
	}
}

func TestBuiltinMoney(t *testing.T) {
	v := NewBuiltin()

	tests := map[string]string{
		"€ 1.234,56": "1234.56",
		"$1,234.5":   "1234.50",
		"1.234":      "1234.00",
		"12":         "12.00",
		"-3,5":       "-3.50",
		"":           "0.00",
	}
	for in, want := range tests {
		r := v.Validate(in, rule(column.TypeMoney))
		assert.True(t, r.OK, in)
		assert.Equal(t, want, r.Final(in), in)
	}

	r := v.Validate("lots", rule(column.TypeMoney))
	assert.False(t, r.OK)
	assert.Equal(t, MsgInvalidMoney, r.Msg)
}

func TestBuiltinSelect(t *testing.T) {
	v := NewBuiltin()
	r := rule(column.TypeSelect)
	r.Options = []string{"y|Yes", "n|No"}

	assert.True(t, v.Validate("y", r).OK)
	assert.True(t, v.Validate("", r).OK)

	res := v.Validate("Yes", r)
	assert.False(t, res.OK)
	assert.Equal(t, MsgInvalidChoice, res.Msg)
}

func TestBuiltinMandatoryAndLength(t *testing.T) {
	v := NewBuiltin()

	r := rule(column.TypeText)
	r.Mandatory = true
	res := v.Validate("   ", r)
	assert.False(t, res.OK)
	assert.Equal(t, MsgRequired, res.Msg)

	r = rule(column.TypeText)
	r.MaxLength = 3
	res = v.Validate("abcd", r)
	assert.False(t, res.OK)
	assert.Equal(t, MsgTooLong, res.Msg)
}

func TestBuiltinUnknownType(t *testing.T) {
	res := NewBuiltin().Func()("anything", rule("colour"))
	assert.True(t, res.OK)
	assert.Equal(t, "anything", res.Final("anything"))
}

func TestAccept(t *testing.T) {
	res := Accept("x", column.Default())
	assert.True(t, res.OK)
	assert.False(t, res.Reformatted)
	assert.Equal(t, "x", res.Final("x"))
}
