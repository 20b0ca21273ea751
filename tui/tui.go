// Package tui renders the task tracker and wires key events to the service.
// All state changes go through app.Service; this package only presents.
package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"tasktrack/app"
	"tasktrack/config"
	"tasktrack/model"
	"tasktrack/store"
)

type focusPane int

const (
	focusLists focusPane = iota
	focusTasks
)

type uiMode int

const (
	modeNormal uiMode = iota
	modeAddList
	modeRenameList
	modeAddTask
	modeEditTask
	modeSearch
	modeAddSubtask
	modeImport
	modeConfirm
	modeSubtasks
)

type confirmKind int

const (
	confirmNone confirmKind = iota
	confirmDeleteList
	confirmClearCompleted
	confirmReset
)

// editField walks the edit wizard through one task attribute at a time.
type editField int

const (
	fieldText editField = iota
	fieldDue
	fieldPriority
	fieldTags
	fieldNotes
	fieldRepeat
	fieldCount
)

type undoExpiredMsg struct{ seq int }

// Model is the bubbletea model for the whole screen.
type Model struct {
	svc       *app.Service
	statePath string
	horizons  app.Horizons
	undoTTL   time.Duration

	focus      focusPane
	mode       uiMode
	listCursor int
	taskCursor int
	subCursor  int

	input      textinput.Model
	editTaskID string
	editField  editField
	draft      app.Draft

	confirm     confirmKind
	confirmID   string
	confirmName string

	pendingUndo *app.Removed
	undoSeq     int

	showHelp  bool
	status    string
	statusErr bool

	width  int
	height int

	visible []model.Task
}

// NewModel builds the initial screen model.
func NewModel(svc *app.Service, cfg config.Config) *Model {
	ti := textinput.New()
	ti.CharLimit = model.MaxNotesLen
	m := &Model{
		svc:       svc,
		statePath: cfg.StatePath,
		horizons: app.Horizons{
			Soon:   time.Duration(cfg.SoonHorizonHours) * time.Hour,
			Recent: time.Duration(cfg.RecentHorizonHours) * time.Hour,
		},
		undoTTL: time.Duration(cfg.UndoSeconds) * time.Second,
		input:   ti,
		status:  "Ready",
	}
	m.refresh()
	return m
}

// Run starts the program.
func Run(svc *app.Service, cfg config.Config) error {
	p := tea.NewProgram(NewModel(svc, cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case undoExpiredMsg:
		if m.pendingUndo != nil && msg.seq == m.undoSeq {
			m.pendingUndo = nil
		}
	case tea.KeyMsg:
		switch m.mode {
		case modeNormal:
			return m.updateNormal(msg)
		case modeConfirm:
			m.updateConfirm(msg)
		case modeSubtasks:
			m.updateSubtasks(msg)
		default:
			return m.updateInput(msg)
		}
	}
	return m, nil
}

func (m *Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "?":
		m.showHelp = !m.showHelp
	case "tab":
		if m.focus == focusLists {
			m.focus = focusTasks
		} else {
			m.focus = focusLists
		}
	case "j", "down":
		m.moveCursor(1)
	case "k", "up":
		m.moveCursor(-1)
	case "enter", " ":
		if m.focus == focusLists {
			m.activateList()
		} else {
			m.toggleComplete()
		}
	case "a":
		if m.focus == focusLists {
			m.startInput(modeAddList, "New list name", "")
		} else {
			m.startInput(modeAddTask, "New task", "")
		}
	case "r":
		if m.focus == focusLists {
			if list, ok := m.cursorList(); ok {
				m.startInput(modeRenameList, "Rename list", list.Name)
			}
		}
	case "D":
		if m.focus == focusLists {
			if list, ok := m.cursorList(); ok {
				m.confirm = confirmDeleteList
				m.confirmID = list.ID
				m.confirmName = list.Name
				m.mode = modeConfirm
			}
		}
	case "e":
		if task, ok := m.cursorTask(); ok {
			m.startEdit(task)
		}
	case "o":
		if _, ok := m.cursorTask(); ok {
			m.subCursor = 0
			m.mode = modeSubtasks
		}
	case "d":
		m.deleteTask()
		return m, m.undoTimer()
	case "u":
		m.undoDelete()
	case "p":
		if task, ok := m.cursorTask(); ok {
			if _, err := m.svc.TogglePinned(task.ID); err == nil {
				m.persist("Pin toggled")
			}
		}
	case "x":
		if task, ok := m.cursorTask(); ok {
			if _, err := m.svc.ToggleArchive(task.ID); err == nil {
				m.persist("Archive toggled")
			}
		}
	case "c":
		list := m.svc.ActiveList()
		m.confirm = confirmClearCompleted
		m.confirmID = list.ID
		m.confirmName = list.Name
		m.mode = modeConfirm
	case "/":
		m.startInput(modeSearch, "Search", m.svc.Settings().Query)
	case "f":
		m.cycleStatusFilter()
	case "F":
		m.cycleDueFilter()
	case "P":
		m.cyclePriorityFilter()
	case "T":
		m.cycleTagFilter()
	case "s":
		m.cycleSort()
	case "t":
		theme := m.svc.ToggleTheme()
		m.persist(fmt.Sprintf("Theme: %s", theme))
	case "E":
		m.exportJSON()
	case "C":
		m.exportCSV()
	case "I":
		m.startInput(modeImport, "Import file path", "")
	case "R":
		m.confirm = confirmReset
		m.mode = modeConfirm
	}
	return m, nil
}

func (m *Model) updateConfirm(msg tea.KeyMsg) {
	switch msg.String() {
	case "y", "Y":
		switch m.confirm {
		case confirmDeleteList:
			if err := m.svc.DeleteList(m.confirmID); err != nil {
				m.setStatus(err.Error(), true)
			} else {
				m.persist(fmt.Sprintf("Deleted list %q", m.confirmName))
			}
		case confirmClearCompleted:
			n := m.svc.ClearCompleted(m.confirmID)
			m.persist(fmt.Sprintf("Cleared %d completed", n))
		case confirmReset:
			m.svc.Replace(store.Reset(m.statePath))
			m.persist("Reset to a fresh document")
		}
	}
	m.confirm = confirmNone
	m.confirmID = ""
	m.confirmName = ""
	m.mode = modeNormal
	m.refresh()
}

func (m *Model) updateSubtasks(msg tea.KeyMsg) {
	task, ok := m.cursorTask()
	if !ok {
		m.mode = modeNormal
		return
	}
	switch msg.String() {
	case "esc", "o", "q":
		m.mode = modeNormal
	case "j", "down":
		if m.subCursor < len(task.Subtasks)-1 {
			m.subCursor++
		}
	case "k", "up":
		if m.subCursor > 0 {
			m.subCursor--
		}
	case " ", "enter":
		if m.subCursor < len(task.Subtasks) {
			if err := m.svc.ToggleSubtask(task.ID, task.Subtasks[m.subCursor].ID); err == nil {
				m.persist("Subtask toggled")
			}
		}
	case "a":
		m.startInput(modeAddSubtask, "New subtask", "")
	case "d":
		if m.subCursor < len(task.Subtasks) {
			if err := m.svc.RemoveSubtask(task.ID, task.Subtasks[m.subCursor].ID); err == nil {
				m.persist("Subtask removed")
				if m.subCursor > 0 {
					m.subCursor--
				}
			}
		}
	}
}

func (m *Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		prev := m.mode
		m.mode = modeNormal
		if prev == modeSearch {
			m.svc.SetQuery("")
			m.persist("Search cleared")
		}
		if prev == modeAddSubtask {
			m.mode = modeSubtasks
		}
		m.input.Blur()
		return m, nil
	case "enter":
		return m, m.submitInput()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.mode == modeSearch {
		m.svc.SetQuery(m.input.Value())
		m.refresh()
	}
	return m, cmd
}

func (m *Model) submitInput() tea.Cmd {
	value := strings.TrimSpace(m.input.Value())
	switch m.mode {
	case modeAddList:
		if _, err := m.svc.CreateList(value); err != nil {
			m.setStatus(err.Error(), true)
		} else {
			m.persist(fmt.Sprintf("Created list %q", value))
		}
	case modeRenameList:
		if list, ok := m.cursorList(); ok {
			if _, err := m.svc.RenameList(list.ID, value); err != nil {
				m.setStatus(err.Error(), true)
			} else {
				m.persist("List renamed")
			}
		}
	case modeAddTask:
		if _, err := m.svc.AddTask(m.svc.ActiveList().ID, app.Draft{Text: value, Priority: model.PriorityMed}); err != nil {
			m.setStatus(err.Error(), true)
		} else {
			m.persist("Task added")
		}
	case modeSearch:
		m.svc.SetQuery(value)
		m.persist("Search applied")
	case modeAddSubtask:
		if task, ok := m.cursorTask(); ok {
			if _, err := m.svc.AddSubtask(task.ID, value); err != nil {
				m.setStatus(err.Error(), true)
			} else {
				m.persist("Subtask added")
			}
		}
		m.mode = modeSubtasks
		m.input.Blur()
		m.refresh()
		return nil
	case modeImport:
		m.importJSON(value)
	case modeEditTask:
		return m.advanceEdit(value)
	}
	m.mode = modeNormal
	m.input.Blur()
	m.refresh()
	return nil
}

func (m *Model) startInput(mode uiMode, prompt, value string) {
	m.mode = mode
	m.input.Prompt = prompt + ": "
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Focus()
}

func (m *Model) startEdit(task model.Task) {
	m.editTaskID = task.ID
	m.editField = fieldText
	m.draft = app.Draft{
		Text:       task.Text,
		Notes:      task.Notes,
		DueAt:      task.DueAt,
		Priority:   task.Priority,
		Tags:       task.Tags,
		Recurrence: task.Recurrence,
	}
	m.startInput(modeEditTask, editPrompt(fieldText), task.Text)
}

// advanceEdit stores the submitted field into the draft and moves to the
// next wizard step, applying the edit after the last one.
func (m *Model) advanceEdit(value string) tea.Cmd {
	switch m.editField {
	case fieldText:
		m.draft.Text = value
	case fieldDue:
		due, err := parseDueInput(value)
		if err != nil {
			m.setStatus(err.Error(), true)
			return nil
		}
		m.draft.DueAt = due
	case fieldPriority:
		p := model.Priority(value)
		if value == "" {
			p = m.draft.Priority
		}
		if !p.Valid() {
			m.setStatus("priority must be low, med or high", true)
			return nil
		}
		m.draft.Priority = p
	case fieldTags:
		m.draft.Tags = app.ParseTags(value)
	case fieldNotes:
		m.draft.Notes = value
	case fieldRepeat:
		rec, err := parseRecurrenceInput(value)
		if err != nil {
			m.setStatus(err.Error(), true)
			return nil
		}
		m.draft.Recurrence = rec
	}

	m.editField++
	if m.editField < fieldCount {
		m.startInput(modeEditTask, editPrompt(m.editField), m.editValue(m.editField))
		return nil
	}

	if _, err := m.svc.EditTask(m.editTaskID, m.draft); err != nil {
		m.setStatus(err.Error(), true)
	} else {
		m.persist("Task updated")
	}
	m.mode = modeNormal
	m.input.Blur()
	m.refresh()
	return nil
}

func (m *Model) editValue(f editField) string {
	switch f {
	case fieldDue:
		if m.draft.DueAt == nil {
			return ""
		}
		return m.draft.DueAt.Format("2006-01-02 15:04")
	case fieldPriority:
		return string(m.draft.Priority)
	case fieldTags:
		return strings.Join(m.draft.Tags, ", ")
	case fieldNotes:
		return m.draft.Notes
	case fieldRepeat:
		return recurrenceInput(m.draft.Recurrence)
	}
	return m.draft.Text
}

func editPrompt(f editField) string {
	switch f {
	case fieldDue:
		return "Due (YYYY-MM-DD [HH:MM], empty for none)"
	case fieldPriority:
		return "Priority (low/med/high)"
	case fieldTags:
		return "Tags (comma separated)"
	case fieldNotes:
		return "Notes"
	case fieldRepeat:
		return "Repeat (none/daily/weekly/monthly/Nd)"
	}
	return "Task text"
}

func parseDueInput(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			utc := t.UTC()
			return &utc, nil
		}
	}
	return nil, fmt.Errorf("cannot parse due date %q", value)
}

func parseRecurrenceInput(value string) (*model.Recurrence, error) {
	switch value {
	case "", "none":
		return nil, nil
	case "daily":
		return &model.Recurrence{Kind: model.RecurDaily}, nil
	case "weekly":
		return &model.Recurrence{Kind: model.RecurWeekly}, nil
	case "monthly":
		return &model.Recurrence{Kind: model.RecurMonthly}, nil
	}
	if strings.HasSuffix(value, "d") {
		if n, err := strconv.Atoi(strings.TrimSuffix(value, "d")); err == nil && n >= 1 {
			return &model.Recurrence{Kind: model.RecurCustom, EveryDays: n}, nil
		}
	}
	return nil, fmt.Errorf("cannot parse repeat rule %q", value)
}

func recurrenceInput(rec *model.Recurrence) string {
	if rec == nil {
		return ""
	}
	if rec.Kind == model.RecurCustom {
		return fmt.Sprintf("%dd", rec.EveryDays)
	}
	return string(rec.Kind)
}

func (m *Model) moveCursor(delta int) {
	if m.focus == focusLists {
		m.listCursor = clamp(m.listCursor+delta, 0, len(m.svc.Lists())-1)
		return
	}
	m.taskCursor = clamp(m.taskCursor+delta, 0, len(m.visible)-1)
}

func (m *Model) cursorList() (model.List, bool) {
	lists := m.svc.Lists()
	if m.listCursor < 0 || m.listCursor >= len(lists) {
		return model.List{}, false
	}
	return lists[m.listCursor], true
}

func (m *Model) cursorTask() (model.Task, bool) {
	if m.taskCursor < 0 || m.taskCursor >= len(m.visible) {
		return model.Task{}, false
	}
	// Re-read through the service so subtask edits are always current.
	task, err := m.svc.Task(m.visible[m.taskCursor].ID)
	if err != nil {
		return model.Task{}, false
	}
	return task, true
}

func (m *Model) activateList() {
	if list, ok := m.cursorList(); ok {
		if err := m.svc.SetActiveList(list.ID); err == nil {
			m.taskCursor = 0
			m.persist(fmt.Sprintf("Active list: %s", list.Name))
		}
	}
}

func (m *Model) toggleComplete() {
	task, ok := m.cursorTask()
	if !ok {
		return
	}
	updated, err := m.svc.ToggleComplete(task.ID)
	if err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	if updated.Completed() {
		if updated.Recurrence != nil {
			m.persist("Completed, next occurrence scheduled")
		} else {
			m.persist("Completed")
		}
	} else {
		m.persist("Reopened")
	}
}

func (m *Model) deleteTask() {
	task, ok := m.cursorTask()
	if !ok {
		return
	}
	removed, err := m.svc.DeleteTask(task.ID)
	if err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.pendingUndo = &removed
	m.undoSeq++
	m.persist(fmt.Sprintf("Deleted %q (u to undo)", removed.Task.Text))
}

func (m *Model) undoTimer() tea.Cmd {
	if m.pendingUndo == nil {
		return nil
	}
	seq := m.undoSeq
	return tea.Tick(m.undoTTL, func(time.Time) tea.Msg {
		return undoExpiredMsg{seq: seq}
	})
}

func (m *Model) undoDelete() {
	if m.pendingUndo == nil {
		m.setStatus("Nothing to undo", true)
		return
	}
	m.svc.RestoreTask(*m.pendingUndo)
	m.pendingUndo = nil
	m.persist("Restored")
}

func (m *Model) cycleStatusFilter() {
	order := []model.StatusFilter{model.StatusAll, model.StatusActive, model.StatusCompleted, model.StatusArchived}
	next := nextInCycle(order, m.svc.Settings().StatusFilter)
	_ = m.svc.SetStatusFilter(next)
	m.persist(fmt.Sprintf("Status: %s", next))
}

func (m *Model) cycleDueFilter() {
	order := []model.DueFilter{model.DueAny, model.DueOverdue, model.DueToday, model.DueWeek, model.DueNone}
	next := nextInCycle(order, m.svc.Settings().DueFilter)
	_ = m.svc.SetDueFilter(next)
	m.persist(fmt.Sprintf("Due: %s", next))
}

func (m *Model) cyclePriorityFilter() {
	order := []string{model.FilterAny, string(model.PriorityLow), string(model.PriorityMed), string(model.PriorityHigh)}
	next := nextInCycle(order, m.svc.Settings().PriorityFilter)
	_ = m.svc.SetPriorityFilter(next)
	m.persist(fmt.Sprintf("Priority: %s", next))
}

func (m *Model) cycleTagFilter() {
	order := append([]string{model.FilterAny}, m.svc.TagOptions(m.svc.ActiveList().ID)...)
	next := nextInCycle(order, m.svc.Settings().TagFilter)
	m.svc.SetTagFilter(next)
	m.persist(fmt.Sprintf("Tag: %s", next))
}

func (m *Model) cycleSort() {
	order := []model.SortMode{
		model.SortPriorityDue, model.SortPinnedDue, model.SortCreatedDesc,
		model.SortDueAsc, model.SortPriorityDesc, model.SortAlphaAsc,
	}
	next := nextInCycle(order, m.svc.Settings().SortMode)
	_ = m.svc.SetSortMode(next)
	m.persist(fmt.Sprintf("Sort: %s", next))
}

func (m *Model) exportJSON() {
	now := time.Now()
	name := store.ExportFilename("tasktrack-backup", "json", now)
	if err := store.ExportJSON(name, m.svc.Document(), now.UTC()); err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.setStatus(fmt.Sprintf("Exported %s", name), false)
}

func (m *Model) exportCSV() {
	name := store.ExportFilename("tasktrack", "csv", time.Now())
	if err := store.ExportCSV(name, m.svc.Document()); err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.setStatus(fmt.Sprintf("Exported %s", name), false)
}

// importJSON replaces the whole document or nothing at all.
func (m *Model) importJSON(path string) {
	doc, err := store.ImportJSON(path)
	if err != nil {
		m.setStatus(fmt.Sprintf("Import failed: %v", err), true)
		return
	}
	m.svc.Replace(doc)
	m.persist("Import complete")
}

// persist autosaves after a successful mutation and shows the status.
// A failed write is reported but never blocks the UI.
func (m *Model) persist(status string) {
	if err := store.Autosave(m.statePath, m.svc.Document()); err != nil {
		m.setStatus(fmt.Sprintf("%s (save failed: %v)", status, err), true)
	} else {
		m.setStatus(status, false)
	}
	m.refresh()
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

// refresh recomputes the visible task view and keeps cursors in range.
func (m *Model) refresh() {
	m.visible = m.svc.VisibleTasks(time.Now(), m.horizons)
	m.taskCursor = clamp(m.taskCursor, 0, len(m.visible)-1)
	m.listCursor = clamp(m.listCursor, 0, len(m.svc.Lists())-1)
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func nextInCycle[T comparable](order []T, current T) T {
	for i, v := range order {
		if v == current {
			return order[(i+1)%len(order)]
		}
	}
	return order[0]
}
