package tui

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"tasktrack/app"
	"tasktrack/model"
)

type styleSet struct {
	header   lipgloss.Style
	pane     lipgloss.Style
	paneGlow lipgloss.Style
	title    lipgloss.Style
	cursor   lipgloss.Style
	dim      lipgloss.Style
	done     lipgloss.Style
	overdue  lipgloss.Style
	soon     lipgloss.Style
	badge    lipgloss.Style
	status   lipgloss.Style
	errText  lipgloss.Style
	prompt   lipgloss.Style
}

func stylesFor(theme model.Theme) styleSet {
	accent := lipgloss.Color("63")
	muted := lipgloss.Color("245")
	text := lipgloss.Color("252")
	if theme == model.ThemeLight {
		accent = lipgloss.Color("27")
		muted = lipgloss.Color("243")
		text = lipgloss.Color("236")
	}
	return styleSet{
		header:   lipgloss.NewStyle().Bold(true).Foreground(accent),
		pane:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(muted).Padding(0, 1),
		paneGlow: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accent).Padding(0, 1),
		title:    lipgloss.NewStyle().Bold(true).Foreground(text),
		cursor:   lipgloss.NewStyle().Bold(true).Foreground(accent),
		dim:      lipgloss.NewStyle().Foreground(muted),
		done:     lipgloss.NewStyle().Foreground(muted).Strikethrough(true),
		overdue:  lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		soon:     lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		badge:    lipgloss.NewStyle().Foreground(muted),
		status:   lipgloss.NewStyle().Foreground(text),
		errText:  lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		prompt:   lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
	}
}

func (m *Model) View() string {
	st := stylesFor(m.svc.Settings().Theme)
	width := m.viewportWidth()

	header := m.renderHeader(st, width)
	var body string
	if m.showHelp {
		body = m.renderHelp(st, width)
	} else if m.mode == modeSubtasks {
		body = m.renderSubtasks(st, width)
	} else {
		body = m.renderPanes(st, width)
	}
	footer := m.renderFooter(st, width)

	parts := []string{header, body, footer}
	if prompt := m.renderPrompt(st, width); prompt != "" {
		parts = append(parts, prompt)
	}
	return strings.Join(parts, "\n")
}

func (m *Model) renderHeader(st styleSet, width int) string {
	set := m.svc.Settings()
	stats := m.svc.Stats(set.ActiveListID, time.Now(), m.horizons)
	left := st.header.Render("tasktrack") + st.dim.Render("  "+m.svc.ActiveList().Name)
	right := st.dim.Render(fmt.Sprintf(
		"%d remaining · %d overdue · %d soon · %d%% done",
		stats.Remaining, stats.Overdue, stats.Soon, stats.Percent,
	))
	return joinEdges(left, right, width)
}

func (m *Model) renderPanes(st styleSet, width int) string {
	leftW, rightW := paneWidths(width, 1)
	listPane := st.pane
	taskPane := st.pane
	if m.focus == focusLists {
		listPane = st.paneGlow
	} else {
		taskPane = st.paneGlow
	}

	lists := listPane.Width(leftW).Render(m.renderListLines(st, leftW-2))
	tasks := taskPane.Width(rightW).Render(m.renderTaskLines(st, rightW-2))
	return lipgloss.JoinHorizontal(lipgloss.Top, lists, " ", tasks)
}

func (m *Model) renderListLines(st styleSet, width int) string {
	now := time.Now()
	active := m.svc.Settings().ActiveListID
	rows := []string{st.title.Render("Lists")}
	for i, list := range m.svc.Lists() {
		stats := m.svc.Stats(list.ID, now, m.horizons)
		marker := "  "
		if list.ID == active {
			marker = "* "
		}
		line := fmt.Sprintf("%s%s (%d)", marker, list.Name, stats.Remaining)
		line = truncateRunes(line, width)
		if i == m.listCursor && m.focus == focusLists {
			line = st.cursor.Render(line)
		} else if list.ID == active {
			line = st.title.Render(line)
		} else {
			line = st.status.Render(line)
		}
		rows = append(rows, line)
	}
	return strings.Join(rows, "\n")
}

func (m *Model) renderTaskLines(st styleSet, width int) string {
	set := m.svc.Settings()
	title := fmt.Sprintf("Tasks · %s/%s/%s", set.StatusFilter, set.DueFilter, set.SortMode)
	if set.Query != "" {
		title += fmt.Sprintf(" · %q", set.Query)
	}
	rows := []string{st.title.Render(truncateRunes(title, width))}

	if len(m.visible) == 0 {
		rows = append(rows, st.dim.Render("Nothing here. Add a task with 'a'."))
		return strings.Join(rows, "\n")
	}

	now := time.Now()
	for i, task := range m.visible {
		line := taskLine(task, now, m.horizons)
		line = truncateRunes(line, width)
		switch {
		case i == m.taskCursor && m.focus == focusTasks:
			line = st.cursor.Render(line)
		case task.Completed():
			line = st.done.Render(line)
		case app.IsOverdue(task, now):
			line = st.overdue.Render(line)
		case app.IsDueSoon(task, now, m.horizons):
			line = st.soon.Render(line)
		default:
			line = st.status.Render(line)
		}
		rows = append(rows, line)
	}
	return strings.Join(rows, "\n")
}

// taskLine renders one task row: checkbox, pin, text, then badges.
func taskLine(t model.Task, now time.Time, h app.Horizons) string {
	check := "[ ]"
	if t.Completed() {
		check = "[x]"
	}
	var sb strings.Builder
	sb.WriteString(check)
	if t.Pinned {
		sb.WriteString(" !")
	}
	sb.WriteString(" ")
	sb.WriteString(t.Text)

	badges := taskBadges(t, now, h)
	if len(badges) > 0 {
		sb.WriteString("  ")
		sb.WriteString(strings.Join(badges, " "))
	}
	return sb.String()
}

func taskBadges(t model.Task, now time.Time, h app.Horizons) []string {
	var out []string
	out = append(out, string(t.Priority))
	if t.DueAt != nil {
		out = append(out, "due "+t.DueAt.Local().Format("Jan 02 15:04"))
	}
	switch {
	case app.IsOverdue(t, now):
		out = append(out, "overdue")
	case app.IsDueSoon(t, now, h):
		out = append(out, "soon")
	}
	if t.Archived() {
		out = append(out, "archived")
	}
	if t.Recurrence != nil {
		if t.Recurrence.Kind == model.RecurCustom {
			out = append(out, fmt.Sprintf("every %dd", t.Recurrence.EveryDays))
		} else {
			out = append(out, string(t.Recurrence.Kind))
		}
	}
	for _, tag := range t.Tags {
		out = append(out, "#"+tag)
	}
	if len(t.Subtasks) > 0 {
		done := 0
		for _, st := range t.Subtasks {
			if st.Done {
				done++
			}
		}
		out = append(out, fmt.Sprintf("%d/%d", done, len(t.Subtasks)))
	}
	if app.IsNew(t, now, h) {
		out = append(out, "new")
	}
	return out
}

func (m *Model) renderSubtasks(st styleSet, width int) string {
	task, ok := m.cursorTask()
	if !ok {
		return st.dim.Render("No task selected")
	}
	rows := []string{st.title.Render("Subtasks · " + truncateRunes(task.Text, width-12))}
	if len(task.Subtasks) == 0 {
		rows = append(rows, st.dim.Render("No subtasks. Add one with 'a'."))
	}
	for i, sub := range task.Subtasks {
		check := "[ ]"
		if sub.Done {
			check = "[x]"
		}
		line := truncateRunes(fmt.Sprintf("%s %s", check, sub.Text), width)
		if i == m.subCursor {
			line = st.cursor.Render(line)
		} else if sub.Done {
			line = st.done.Render(line)
		} else {
			line = st.status.Render(line)
		}
		rows = append(rows, line)
	}
	rows = append(rows, "", st.dim.Render("space toggle · a add · d remove · esc back"))
	return st.paneGlow.Width(width - 2).Render(strings.Join(rows, "\n"))
}

func (m *Model) renderHelp(st styleSet, width int) string {
	rows := []string{
		st.title.Render("Keys"),
		"",
		st.dim.Render("Global"),
		"  tab focus · j/k move · q quit · ? help · t theme",
		"  / search · s sort · f status · F due · P priority · T tag",
		"",
		st.dim.Render("Lists"),
		"  a add · r rename · D delete · enter activate",
		"",
		st.dim.Render("Tasks"),
		"  a add · e edit · enter complete · p pin · x archive",
		"  o subtasks · d delete · u undo · c clear completed",
		"",
		st.dim.Render("Document"),
		"  E export JSON · C export CSV · I import · R reset",
	}
	return st.pane.Width(width - 2).Render(strings.Join(rows, "\n"))
}

func (m *Model) renderFooter(st styleSet, width int) string {
	status := m.status
	style := st.status
	if m.statusErr {
		style = st.errText
	}
	hint := "? help"
	if m.pendingUndo != nil {
		hint = "u undo · ? help"
	}
	return joinEdges(style.Render(truncateRunes(status, width-utf8.RuneCountInString(hint)-1)), st.dim.Render(hint), width)
}

func (m *Model) renderPrompt(st styleSet, width int) string {
	switch m.mode {
	case modeConfirm:
		var text string
		switch m.confirm {
		case confirmDeleteList:
			text = fmt.Sprintf("Delete list %q and all its tasks? [y/N]", m.confirmName)
		case confirmClearCompleted:
			text = fmt.Sprintf("Clear completed tasks in %q (archived are kept)? [y/N]", m.confirmName)
		case confirmReset:
			text = "Reset everything? This deletes all lists and tasks. [y/N]"
		}
		return st.prompt.Width(width).Render(text)
	case modeNormal, modeSubtasks:
		return ""
	}
	return st.prompt.Width(width).Render(m.input.View())
}

func (m *Model) viewportWidth() int {
	if m.width <= 1 {
		return 80
	}
	return m.width - 1
}

func paneWidths(total, gap int) (int, int) {
	if total <= 0 {
		return 24, 40
	}
	left := total / 4
	if left < 18 {
		left = 18
	}
	if left > 32 {
		left = 32
	}
	right := total - left - gap
	if right < 20 {
		right = 20
		left = total - right - gap
		if left < 12 {
			left = 12
		}
	}
	return left, right
}

func joinEdges(left, right string, width int) string {
	pad := width - lipgloss.Width(left) - lipgloss.Width(right)
	if pad < 1 {
		pad = 1
	}
	return left + strings.Repeat(" ", pad) + right
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 1 {
		return string(runes[:max])
	}
	return string(runes[:max-1]) + "…"
}
