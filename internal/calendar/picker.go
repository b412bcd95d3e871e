package calendar

import (
	"time"

	"github.com/dshills/gridstorm/internal/input/key"
)

// Request asks for a date picker bound to one input.
type Request struct {
	// InputID identifies the input the selection is written to.
	InputID string

	// Seed is the input value at the time of the request.
	Seed string

	// WriteBack stores the picked date in the input.
	WriteBack func(date string)
}

// Picker is the interactive state of the date popup.
type Picker struct {
	format  Format
	entries map[string][]string
	now     func() time.Time

	req    Request
	cursor time.Time
	month  Month
	open   bool
}

// PickerOption configures a Picker.
type PickerOption func(*Picker)

// WithEntries annotates days; keys are dates in the picker's format.
func WithEntries(entries map[string][]string) PickerOption {
	return func(p *Picker) {
		p.entries = entries
	}
}

// WithClock overrides the source of the current date.
func WithClock(now func() time.Time) PickerOption {
	return func(p *Picker) {
		p.now = now
	}
}

// NewPicker creates a closed picker writing dates in f.
func NewPicker(f Format, opts ...PickerOption) *Picker {
	p := &Picker{format: f, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Open shows the picker for req, positioned on the seed date when the
// seed parses and on today otherwise.
func (p *Picker) Open(req Request) {
	p.req = req
	now := p.now()
	p.cursor = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if d, m, y, ok := ParseSeed(req.Seed); ok {
		p.cursor = time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	}
	p.rebuild()
	p.open = true
}

// IsOpen reports whether the picker is showing.
func (p *Picker) IsOpen() bool { return p.open }

// Close hides the picker without writing back.
func (p *Picker) Close() {
	p.open = false
	p.req = Request{}
}

// Month returns the displayed grid.
func (p *Picker) Month() Month { return p.month }

// InputID returns the id of the input being edited.
func (p *Picker) InputID() string { return p.req.InputID }

// Cursor returns the highlighted date.
func (p *Picker) Cursor() time.Time { return p.cursor }

func (p *Picker) rebuild() {
	p.month = Build(int(p.cursor.Month()), p.cursor.Year(), p.format, p.entries, p.now())
}

// MoveDays shifts the cursor by n days, switching months as needed.
func (p *Picker) MoveDays(n int) {
	p.cursor = p.cursor.AddDate(0, 0, n)
	p.rebuild()
}

// MoveMonths shifts the displayed month by n, keeping the day where the
// target month allows.
func (p *Picker) MoveMonths(n int) {
	first := time.Date(p.cursor.Year(), p.cursor.Month()+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	d := min(p.cursor.Day(), DaysIn(int(first.Month()), first.Year()))
	p.cursor = first.AddDate(0, 0, d-1)
	p.rebuild()
}

// Select writes the cursor date back and closes the picker.
func (p *Picker) Select() {
	p.pick(p.format.Date(p.cursor.Day(), int(p.cursor.Month()), p.cursor.Year()))
}

// SelectAt writes the date at grid position (week, weekday) back and
// closes the picker. Spill days are selectable.
func (p *Picker) SelectAt(week, weekday int) bool {
	if week < 0 || week >= len(p.month.Weeks) || weekday < 0 || weekday > 6 {
		return false
	}
	p.pick(p.month.Weeks[week][weekday].Date)
	return true
}

func (p *Picker) pick(date string) {
	if !p.open {
		return
	}
	wb := p.req.WriteBack
	p.Close()
	if wb != nil {
		wb(date)
	}
}

// HandleKey applies a key press while the picker is open. Arrows move by
// day and week, PgUp/PgDn by month, Enter selects and Escape closes.
func (p *Picker) HandleKey(ev key.Event) bool {
	if !p.open {
		return false
	}
	switch ev.Key {
	case key.KeyLeft:
		p.MoveDays(-1)
	case key.KeyRight:
		p.MoveDays(1)
	case key.KeyUp:
		p.MoveDays(-7)
	case key.KeyDown:
		p.MoveDays(7)
	case key.KeyPageUp:
		p.MoveMonths(-1)
	case key.KeyPageDown:
		p.MoveMonths(1)
	case key.KeyEnter:
		p.Select()
	case key.KeyEscape:
		p.Close()
	default:
		return false
	}
	return true
}
