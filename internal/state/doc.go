// Package state holds the per-tab chat transcript shared between the feed
// and the UI.
//
// The feed never writes here directly. It emits Events on a channel and a
// single consumer goroutine calls Store.Apply, so the transcript has exactly
// one writer. The UI reads copies through Snapshot on its own refresh tick
// and compares Revision to decide whether anything needs redrawing.
//
// Each tab keeps at most the configured number of entries; older lines are
// dropped from the front. Events that target a tab which is not open are
// ignored, so translations that finish after a tab was closed never reappear.
//
// The zero Store is usable and falls back to DefaultMaxLines.
package state
