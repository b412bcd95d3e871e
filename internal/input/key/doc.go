// Package key provides key event types and parsing for grid input.
//
//   - Key: identifies a special key, or KeyRune for characters
//   - Modifier: Ctrl, Alt, Shift and Meta
//   - Event: a single key press
//
// # Key Specifications
//
// Bindings in configuration files are written as:
//
//   - Simple keys: "q", "Enter", "F2"
//   - With modifiers: "Ctrl+S", "Shift+Tab"
//   - Vim-style: "<C-s>", "<S-Tab>", "<CR>", "<Esc>"
package key
