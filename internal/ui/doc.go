// Package ui provides the terminal interface for td2chat.
//
// The UI is a Bubble Tea program. It never tails files or calls translation
// backends itself: the feed writes transcript events into a state.Store and
// the model reads a Snapshot on every tick, re-rendering the viewport only
// when the snapshot revision changes.
//
// # Layout
//
//   - Status bar: target language, backend, open logs, update notice, last error
//   - Tab strip: one tab per tailed log plus the "Live Translation" tab
//   - Transcript: the active tab, colored by sender category
//   - Command bar: key hints, replaced by the input line while typing
//
// Overlay mode (v) drops the chrome and shows only the newest few lines of
// the active tab, sized for a small terminal kept beside the game.
//
// # Preferences
//
// Theme, language, backend, the show-original toggle and the overlay line
// count are written to prefs.toml whenever they change.
package ui
