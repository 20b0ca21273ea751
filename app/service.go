// Package app holds the domain rules: mutation operations over the document
// and the derived views the UI renders from.
package app

import (
	"errors"
	"strings"
	"time"

	"tasktrack/model"
)

var (
	ErrListNotFound    = errors.New("list not found")
	ErrTaskNotFound    = errors.New("task not found")
	ErrSubtaskNotFound = errors.New("subtask not found")
	ErrInvalidName     = errors.New("name must not be empty")
	ErrInvalidTask     = errors.New("task text must not be empty")
	ErrLastList        = errors.New("cannot delete the last list")
	ErrInvalidFilter   = errors.New("invalid filter")
	ErrInvalidSort     = errors.New("invalid sort mode")
)

// Draft carries validated user input for creating or editing a task.
type Draft struct {
	Text       string
	Notes      string
	DueAt      *time.Time
	Priority   model.Priority
	Tags       []string
	Recurrence *model.Recurrence
}

// Service owns the document and applies every mutation to it. Each operation
// is all-or-nothing: invalid input or an unknown id returns an error with the
// document untouched.
type Service struct {
	doc model.Document
}

// NewService wraps an already-migrated document.
func NewService(doc model.Document) *Service {
	if _, ok := doc.ListByID(doc.Settings.ActiveListID); !ok && len(doc.Lists) > 0 {
		doc.Settings.ActiveListID = doc.Lists[0].ID
	}
	return &Service{doc: doc}
}

// Document returns a deep copy of the current state.
func (s *Service) Document() model.Document {
	return s.doc.Clone()
}

// Settings returns the current settings.
func (s *Service) Settings() model.Settings {
	return s.doc.Settings
}

// Lists returns all lists in sequence order.
func (s *Service) Lists() []model.List {
	out := make([]model.List, len(s.doc.Lists))
	copy(out, s.doc.Lists)
	return out
}

// ActiveList returns the currently selected list.
func (s *Service) ActiveList() model.List {
	if l, ok := s.doc.ListByID(s.doc.Settings.ActiveListID); ok {
		return l
	}
	return s.doc.Lists[0]
}

// Task returns a copy of the task with the given id.
func (s *Service) Task(id string) (model.Task, error) {
	if t, ok := s.doc.TaskByID(id); ok {
		return t.Clone(), nil
	}
	return model.Task{}, ErrTaskNotFound
}

// CreateList appends a new list and makes it active.
func (s *Service) CreateList(name string) (model.List, error) {
	name = capName(name)
	if name == "" {
		return model.List{}, ErrInvalidName
	}
	list := model.List{ID: model.NewID(), Name: name, CreatedAt: time.Now().UTC()}
	s.doc.Lists = append(s.doc.Lists, list)
	s.doc.Settings.ActiveListID = list.ID
	return list, nil
}

// RenameList overwrites a list's name.
func (s *Service) RenameList(id, name string) (model.List, error) {
	name = capName(name)
	if name == "" {
		return model.List{}, ErrInvalidName
	}
	for i := range s.doc.Lists {
		if s.doc.Lists[i].ID == id {
			s.doc.Lists[i].Name = name
			return s.doc.Lists[i], nil
		}
	}
	return model.List{}, ErrListNotFound
}

// DeleteList removes a list and every task in it. Deleting the sole remaining
// list is refused. When the deleted list was active, the first remaining list
// becomes active.
func (s *Service) DeleteList(id string) error {
	if len(s.doc.Lists) <= 1 {
		return ErrLastList
	}
	idx := -1
	for i := range s.doc.Lists {
		if s.doc.Lists[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ErrListNotFound
	}

	s.doc.Lists = append(s.doc.Lists[:idx], s.doc.Lists[idx+1:]...)
	kept := make([]model.Task, 0, len(s.doc.Tasks))
	for _, t := range s.doc.Tasks {
		if t.ListID != id {
			kept = append(kept, t)
		}
	}
	s.doc.Tasks = kept
	if s.doc.Settings.ActiveListID == id {
		s.doc.Settings.ActiveListID = s.doc.Lists[0].ID
	}
	return nil
}

// AddTask creates a task from the draft and prepends it, newest first.
func (s *Service) AddTask(listID string, draft Draft) (model.Task, error) {
	text := strings.TrimSpace(draft.Text)
	if text == "" {
		return model.Task{}, ErrInvalidTask
	}
	if _, ok := s.doc.ListByID(listID); !ok {
		return model.Task{}, ErrListNotFound
	}
	task := model.Task{
		ID:         model.NewID(),
		ListID:     listID,
		Text:       truncate(text, model.MaxTaskTextLen),
		Notes:      truncate(strings.TrimSpace(draft.Notes), model.MaxNotesLen),
		DueAt:      draft.DueAt,
		CreatedAt:  time.Now().UTC(),
		Priority:   normalizePriority(draft.Priority),
		Tags:       capTags(draft.Tags),
		Recurrence: draft.Recurrence,
		Subtasks:   []model.Subtask{},
	}
	s.doc.Tasks = append([]model.Task{task}, s.doc.Tasks...)
	return task, nil
}

// EditTask overwrites the task's editable fields from the draft.
func (s *Service) EditTask(id string, draft Draft) (model.Task, error) {
	text := strings.TrimSpace(draft.Text)
	if text == "" {
		return model.Task{}, ErrInvalidTask
	}
	for i := range s.doc.Tasks {
		if s.doc.Tasks[i].ID != id {
			continue
		}
		t := &s.doc.Tasks[i]
		t.Text = truncate(text, model.MaxTaskTextLen)
		t.Notes = truncate(strings.TrimSpace(draft.Notes), model.MaxNotesLen)
		t.DueAt = draft.DueAt
		t.Priority = normalizePriority(draft.Priority)
		t.Tags = capTags(draft.Tags)
		t.Recurrence = draft.Recurrence
		return t.Clone(), nil
	}
	return model.Task{}, ErrTaskNotFound
}

// ToggleComplete flips the completion stamp. Completing a recurring task
// spawns one sibling: same fields, fresh id and creation stamp, cleared
// completion/archive/pin, subtasks reset, and the due date advanced by the
// recurrence rule from the previous due date (or from now when it had none).
func (s *Service) ToggleComplete(id string) (model.Task, error) {
	for i := range s.doc.Tasks {
		if s.doc.Tasks[i].ID != id {
			continue
		}
		now := time.Now().UTC()
		t := &s.doc.Tasks[i]
		if t.CompletedAt != nil {
			t.CompletedAt = nil
			return t.Clone(), nil
		}
		t.CompletedAt = &now

		if t.Recurrence != nil {
			next := t.Clone()
			next.ID = model.NewID()
			next.CreatedAt = now
			next.CompletedAt = nil
			next.ArchivedAt = nil
			next.Pinned = false
			next.DueAt = model.NextDue(t.DueAt, t.Recurrence, now)
			for j := range next.Subtasks {
				next.Subtasks[j].ID = model.NewID()
				next.Subtasks[j].Done = false
			}
			s.doc.Tasks = append([]model.Task{next}, s.doc.Tasks...)
		}
		return s.taskClone(id), nil
	}
	return model.Task{}, ErrTaskNotFound
}

// ToggleArchive flips the archive stamp, independent of completion.
func (s *Service) ToggleArchive(id string) (model.Task, error) {
	for i := range s.doc.Tasks {
		if s.doc.Tasks[i].ID != id {
			continue
		}
		t := &s.doc.Tasks[i]
		if t.ArchivedAt != nil {
			t.ArchivedAt = nil
		} else {
			now := time.Now().UTC()
			t.ArchivedAt = &now
		}
		return t.Clone(), nil
	}
	return model.Task{}, ErrTaskNotFound
}

// TogglePinned flips the pin flag.
func (s *Service) TogglePinned(id string) (model.Task, error) {
	for i := range s.doc.Tasks {
		if s.doc.Tasks[i].ID == id {
			s.doc.Tasks[i].Pinned = !s.doc.Tasks[i].Pinned
			return s.doc.Tasks[i].Clone(), nil
		}
	}
	return model.Task{}, ErrTaskNotFound
}

// Removed captures a deleted task and where it sat, for the undo toast.
type Removed struct {
	Task  model.Task
	Index int
}

// DeleteTask removes the task and returns what is needed to restore it.
func (s *Service) DeleteTask(id string) (Removed, error) {
	for i := range s.doc.Tasks {
		if s.doc.Tasks[i].ID != id {
			continue
		}
		removed := Removed{Task: s.doc.Tasks[i].Clone(), Index: i}
		s.doc.Tasks = append(s.doc.Tasks[:i], s.doc.Tasks[i+1:]...)
		return removed, nil
	}
	return Removed{}, ErrTaskNotFound
}

// RestoreTask re-inserts a previously deleted task at its captured index.
func (s *Service) RestoreTask(r Removed) {
	idx := r.Index
	if idx < 0 {
		idx = 0
	}
	if idx > len(s.doc.Tasks) {
		idx = len(s.doc.Tasks)
	}
	tasks := make([]model.Task, 0, len(s.doc.Tasks)+1)
	tasks = append(tasks, s.doc.Tasks[:idx]...)
	tasks = append(tasks, r.Task)
	tasks = append(tasks, s.doc.Tasks[idx:]...)
	s.doc.Tasks = tasks
}

// ClearCompleted removes completed tasks in the list, keeping the ones that
// are also archived.
func (s *Service) ClearCompleted(listID string) int {
	kept := make([]model.Task, 0, len(s.doc.Tasks))
	removed := 0
	for _, t := range s.doc.Tasks {
		if t.ListID == listID && t.Completed() && !t.Archived() {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	s.doc.Tasks = kept
	return removed
}

// AddSubtask appends a checklist entry to the task.
func (s *Service) AddSubtask(taskID, text string) (model.Subtask, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Subtask{}, ErrInvalidTask
	}
	for i := range s.doc.Tasks {
		if s.doc.Tasks[i].ID != taskID {
			continue
		}
		st := model.Subtask{ID: model.NewID(), Text: truncate(text, model.MaxSubtaskTextLen)}
		s.doc.Tasks[i].Subtasks = append(s.doc.Tasks[i].Subtasks, st)
		return st, nil
	}
	return model.Subtask{}, ErrTaskNotFound
}

// RemoveSubtask deletes one checklist entry.
func (s *Service) RemoveSubtask(taskID, subtaskID string) error {
	for i := range s.doc.Tasks {
		if s.doc.Tasks[i].ID != taskID {
			continue
		}
		subtasks := s.doc.Tasks[i].Subtasks
		for j := range subtasks {
			if subtasks[j].ID == subtaskID {
				s.doc.Tasks[i].Subtasks = append(subtasks[:j], subtasks[j+1:]...)
				return nil
			}
		}
		return ErrSubtaskNotFound
	}
	return ErrTaskNotFound
}

// ToggleSubtask flips one checklist entry's done flag.
func (s *Service) ToggleSubtask(taskID, subtaskID string) error {
	for i := range s.doc.Tasks {
		if s.doc.Tasks[i].ID != taskID {
			continue
		}
		subtasks := s.doc.Tasks[i].Subtasks
		for j := range subtasks {
			if subtasks[j].ID == subtaskID {
				subtasks[j].Done = !subtasks[j].Done
				return nil
			}
		}
		return ErrSubtaskNotFound
	}
	return ErrTaskNotFound
}

// SetActiveList switches the selected list.
func (s *Service) SetActiveList(id string) error {
	if _, ok := s.doc.ListByID(id); !ok {
		return ErrListNotFound
	}
	s.doc.Settings.ActiveListID = id
	return nil
}

// SetStatusFilter sets the status filter.
func (s *Service) SetStatusFilter(f model.StatusFilter) error {
	switch f {
	case model.StatusAll, model.StatusActive, model.StatusCompleted, model.StatusArchived:
		s.doc.Settings.StatusFilter = f
		return nil
	}
	return ErrInvalidFilter
}

// SetPriorityFilter sets the priority filter ("any" or a priority).
func (s *Service) SetPriorityFilter(f string) error {
	if f == model.FilterAny || model.Priority(f).Valid() {
		s.doc.Settings.PriorityFilter = f
		return nil
	}
	return ErrInvalidFilter
}

// SetTagFilter sets the tag filter ("any" or a tag).
func (s *Service) SetTagFilter(tag string) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		tag = model.FilterAny
	}
	s.doc.Settings.TagFilter = tag
}

// SetDueFilter sets the due-bucket filter.
func (s *Service) SetDueFilter(f model.DueFilter) error {
	switch f {
	case model.DueAny, model.DueOverdue, model.DueToday, model.DueWeek, model.DueNone:
		s.doc.Settings.DueFilter = f
		return nil
	}
	return ErrInvalidFilter
}

// SetQuery sets the free-text search query.
func (s *Service) SetQuery(q string) {
	s.doc.Settings.Query = strings.TrimSpace(q)
}

// SetSortMode sets the task ordering.
func (s *Service) SetSortMode(mode model.SortMode) error {
	if !mode.Valid() {
		return ErrInvalidSort
	}
	s.doc.Settings.SortMode = mode
	return nil
}

// ToggleTheme flips between light and dark.
func (s *Service) ToggleTheme() model.Theme {
	if s.doc.Settings.Theme == model.ThemeDark {
		s.doc.Settings.Theme = model.ThemeLight
	} else {
		s.doc.Settings.Theme = model.ThemeDark
	}
	return s.doc.Settings.Theme
}

// Replace swaps in a whole new document, used after import and reset.
func (s *Service) Replace(doc model.Document) {
	if _, ok := doc.ListByID(doc.Settings.ActiveListID); !ok && len(doc.Lists) > 0 {
		doc.Settings.ActiveListID = doc.Lists[0].ID
	}
	s.doc = doc
}

func (s *Service) taskClone(id string) model.Task {
	t, _ := s.doc.TaskByID(id)
	return t.Clone()
}

func capName(name string) string {
	return truncate(strings.TrimSpace(name), model.MaxListNameLen)
}

func normalizePriority(p model.Priority) model.Priority {
	if !p.Valid() {
		return model.PriorityMed
	}
	return p
}

func capTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if len(out) == model.MaxTags {
			break
		}
		out = append(out, tag)
	}
	return out
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
