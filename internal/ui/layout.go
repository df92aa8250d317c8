package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which the status bar drops labels.
	LayoutCompactWidth = 100

	// HelpModalWidth is the width of the help overlay.
	HelpModalWidth = 44
)

// Vertical chrome around the transcript: status bar, tab strip, command bar.
const chromeRows = 3

// Overlay limits.
const (
	MinOverlayLines = 1
	MaxOverlayLines = 30
)

// Timing constants.
const (
	// DefaultUIInterval is how often the UI reads a fresh snapshot.
	DefaultUIInterval = 250 * time.Millisecond

	// ManualTimeout bounds a manual translation, including slow assistant runs.
	ManualTimeout = 90 * time.Second

	// StatusMessageTTL is how long a transient status message stays visible.
	StatusMessageTTL = 4 * time.Second
)
