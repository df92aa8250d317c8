package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bravuralion/td2-chat-translator/internal/state"
)

// renderTranscript renders entries as wrapped lines. With showOriginal each
// chat line is followed by its untranslated body, dimmed.
func (m Model) renderTranscript(entries []state.Entry, width int) string {
	if len(entries) == 0 {
		return m.theme.Styles().FaintText.Render("No chat messages yet.")
	}
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(m.renderEntry(e, width))
	}
	return b.String()
}

func (m Model) renderEntry(e state.Entry, width int) string {
	styles := m.theme.Styles()
	style := styles.CategoryStyle(e.Category)
	if e.Failed {
		style = styles.DangerText
	}
	if width > 0 {
		style = style.Width(width)
	}
	line := style.Render(e.Text)

	if m.showOriginal && e.Original != "" && e.Category != state.CategoryWarning {
		orig := styles.FaintText.Italic(true)
		if width > 2 {
			orig = orig.Width(width).PaddingLeft(2)
		}
		line += "\n" + orig.Render("↳ "+e.Original)
	}
	return line
}

// renderOverlay shows only the newest lines of the active tab with minimal
// chrome, for a small terminal kept on top of the game window.
func (m Model) renderOverlay() string {
	styles := m.theme.Styles()
	tab, _ := m.snapshot.Tab(m.activeTab)

	entries := tab.Entries
	if len(entries) > m.overlayLines {
		entries = entries[len(entries)-m.overlayLines:]
	}

	lines := make([]string, 0, len(entries)+1)
	for _, e := range entries {
		lines = append(lines, m.renderEntry(e, m.width))
	}
	body := lipgloss.JoinVertical(lipgloss.Left, lines...)

	hint := styles.FaintText.Render(truncate(tab.Title, 30) + "  v: full view  +/-: lines")
	return lipgloss.JoinVertical(lipgloss.Left, body, hint)
}
