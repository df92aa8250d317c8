package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bravuralion/td2-chat-translator/internal/state"
)

// renderHeader renders the status bar: language, backend, tab count, notices
// and the last error.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	compact := m.width < LayoutCompactWidth

	parts := []string{bg.Render("td2chat", styles.Logo)}

	if m.ctrl != nil {
		s := m.ctrl.Settings()
		label := func(name string) string {
			if compact {
				return ""
			}
			return bg.Render(name+":", styles.MutedText) + bg.Space()
		}
		parts = append(parts,
			label("Language")+bg.Render(s.Language, styles.Text),
			label("Backend")+bg.Render(s.Backend.String(), styles.AccentText),
		)
	}

	tabs := 0
	for _, t := range m.snapshot.Tabs {
		if t.ID != state.LiveTab {
			tabs++
		}
	}
	parts = append(parts,
		bg.Render("Logs:", styles.MutedText)+bg.Space()+bg.Render(fmt.Sprintf("%d", tabs), styles.Text))

	if m.showOriginal {
		parts = append(parts, bg.Render("original", styles.FaintText))
	}
	if m.ctrl != nil && m.ctrl.DriverWarnings() {
		parts = append(parts, bg.Render("warnings", styles.WarningText))
	}

	if m.snapshot.Notice != "" {
		parts = append(parts, bg.Render(m.snapshot.Notice, styles.SuccessText))
	}

	if m.snapshot.LastError != nil {
		maxErr := 80
		if compact {
			maxErr = 40
		}
		parts = append(parts,
			bg.Render("ERROR", styles.DangerText.Bold(true))+bg.Space()+
				bg.Render(truncate(m.snapshot.LastError.Error(), maxErr), styles.DangerText))
	}

	if m.status != "" {
		parts = append(parts,
			bg.Render("!", styles.WarningText.Bold(true))+bg.Space()+
				bg.Render(m.status, styles.WarningText))
	}

	return styles.Header.Width(m.width).Render(bg.Join(parts, "  "))
}

// renderTabs renders one label per open tab, highlighting the active one.
func (m Model) renderTabs() string {
	styles := m.theme.Styles()
	if len(m.snapshot.Tabs) == 0 {
		return NewBgStyle(m.theme.SurfaceAlt).FillLine("", m.width)
	}

	limit := 24
	if m.width < LayoutCompactWidth {
		limit = 14
	}
	labels := make([]string, 0, len(m.snapshot.Tabs))
	for _, t := range m.snapshot.Tabs {
		title := truncateMiddle(t.Title, limit)
		if t.ID == m.activeTab {
			labels = append(labels, styles.ActiveTab.Render(title))
		} else {
			labels = append(labels, styles.Tab.Render(title))
		}
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, labels...)
	return NewBgStyle(m.theme.SurfaceAlt).FillLine(row, m.width)
}

// renderCommandBar renders the key hints.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	originalLabel := "Original"
	if m.showOriginal {
		originalLabel = "Hide original"
	}
	commands := []cmd{
		{"tab", "Next"},
		{"x", "Close"},
		{"o", originalLabel},
		{"L", "Language"},
		{"B", "Backend"},
		{"/", "Translate"},
		{"v", "Overlay"},
		{"?", "More"},
	}

	colon := bg.Sep(":")
	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}
	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(strings.Join(segments, bg.Spaces(2)))
}

// renderInput renders the manual translation prompt in place of the command bar.
func (m Model) renderInput() string {
	styles := m.theme.Styles()
	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.SurfaceAlt)).
		Foreground(lipgloss.Color(m.theme.Text)).
		Width(m.width).
		Render(m.input.View() + "  " + styles.FaintText.Render("enter: translate  esc: cancel"))
}
