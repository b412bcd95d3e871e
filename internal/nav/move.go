// Package nav computes keyboard navigation targets inside a grid.
//
// The engine works on absolute row indices. Rows 0..nh-1 are header rows
// and are never a navigation target; moves that leave the data rows wrap
// around to the other end. Columns overflow into the neighbouring row.
package nav

// Move is a navigation request.
type Move uint8

const (
	// None resolves a session without moving.
	None Move = iota
	Up
	Down
	Tab
	Enter
	ShiftTab
)

var moveNames = [...]string{
	None:     "None",
	Up:       "Up",
	Down:     "Down",
	Tab:      "Tab",
	Enter:    "Enter",
	ShiftTab: "ShiftTab",
}

// String returns the move name.
func (m Move) String() string {
	if int(m) < len(moveNames) {
		return moveNames[m]
	}
	return "Move(?)"
}

// Delta returns the row and column offsets of the move.
func (m Move) Delta() (dr, dc int) {
	switch m {
	case Up:
		return -1, 0
	case Down:
		return 1, 0
	case Tab, Enter:
		return 0, 1
	case ShiftTab:
		return 0, -1
	}
	return 0, 0
}

// continuation returns the move used to step past a cell that cannot be
// entered. Backward moves keep going backward; everything else goes
// forward.
func (m Move) continuation() Move {
	if m == ShiftTab {
		return ShiftTab
	}
	return Tab
}
