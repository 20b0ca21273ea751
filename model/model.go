package model

import (
	"time"

	"github.com/google/uuid"
)

// Field length caps applied on create/edit and during migration.
const (
	MaxListNameLen    = 60
	MaxTaskTextLen    = 140
	MaxNotesLen       = 300
	MaxTags           = 20
	MaxSubtaskTextLen = 120
)

// Priority is a task priority level.
type Priority string

const (
	PriorityLow  Priority = "low"
	PriorityMed  Priority = "med"
	PriorityHigh Priority = "high"
)

// Rank maps a priority to its comparison weight (high=3, med=2, low=1).
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMed:
		return 2
	default:
		return 1
	}
}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMed || p == PriorityHigh
}

// StatusFilter selects tasks by completion/archive status.
type StatusFilter string

const (
	StatusAll       StatusFilter = "all"
	StatusActive    StatusFilter = "active"
	StatusCompleted StatusFilter = "completed"
	StatusArchived  StatusFilter = "archived"
)

// DueFilter selects tasks by due-date bucket.
type DueFilter string

const (
	DueAny     DueFilter = "any"
	DueOverdue DueFilter = "overdue"
	DueToday   DueFilter = "today"
	DueWeek    DueFilter = "week"
	DueNone    DueFilter = "nodue"
)

// FilterAny is the wildcard value for the priority and tag filters.
const FilterAny = "any"

// SortMode selects the task ordering.
type SortMode string

const (
	SortPinnedDue    SortMode = "pinned_due"
	SortCreatedDesc  SortMode = "created_desc"
	SortDueAsc       SortMode = "due_asc"
	SortPriorityDesc SortMode = "priority_desc"
	SortAlphaAsc     SortMode = "alpha_asc"
	SortPriorityDue  SortMode = "priority_due"
)

// Valid reports whether m is a known sort mode.
func (m SortMode) Valid() bool {
	switch m {
	case SortPinnedDue, SortCreatedDesc, SortDueAsc, SortPriorityDesc, SortAlphaAsc, SortPriorityDue:
		return true
	}
	return false
}

// Theme is the UI color scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// RecurrenceKind names a repeat rule.
type RecurrenceKind string

const (
	RecurDaily   RecurrenceKind = "daily"
	RecurWeekly  RecurrenceKind = "weekly"
	RecurMonthly RecurrenceKind = "monthly"
	RecurCustom  RecurrenceKind = "custom"
)

// Recurrence describes how a completed task respawns.
// EveryDays only applies to RecurCustom.
type Recurrence struct {
	Kind      RecurrenceKind `json:"type"`
	EveryDays int            `json:"everyDays,omitempty"`
}

// Subtask is a checklist entry inside a task.
type Subtask struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Done bool   `json:"done"`
}

// List is a named task container.
type List struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// Task is a single todo item belonging to exactly one list.
type Task struct {
	ID          string      `json:"id"`
	ListID      string      `json:"listId"`
	Text        string      `json:"text"`
	Notes       string      `json:"notes,omitempty"`
	DueAt       *time.Time  `json:"dueAt,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	Priority    Priority    `json:"priority"`
	Tags        []string    `json:"tags"`
	Pinned      bool        `json:"pinned,omitempty"`
	CompletedAt *time.Time  `json:"completedAt,omitempty"`
	ArchivedAt  *time.Time  `json:"archivedAt,omitempty"`
	Recurrence  *Recurrence `json:"recurrence,omitempty"`
	Subtasks    []Subtask   `json:"subtasks"`
}

// Completed reports whether the task has a completion timestamp.
func (t Task) Completed() bool { return t.CompletedAt != nil }

// Archived reports whether the task has an archive timestamp.
func (t Task) Archived() bool { return t.ArchivedAt != nil }

// HasTag reports whether tag is present in the task's tag set.
func (t Task) HasTag(tag string) bool {
	for _, v := range t.Tags {
		if v == tag {
			return true
		}
	}
	return false
}

// Settings is the persisted UI state: theme, active filters, sort and list.
type Settings struct {
	Theme          Theme        `json:"theme"`
	StatusFilter   StatusFilter `json:"statusFilter"`
	PriorityFilter string       `json:"priorityFilter"`
	TagFilter      string       `json:"tagFilter"`
	DueFilter      DueFilter    `json:"dueFilter"`
	Query          string       `json:"query,omitempty"`
	SortMode       SortMode     `json:"sortMode"`
	ActiveListID   string       `json:"activeListId"`
}

// Document is the entire persisted application state. It is the sole unit
// of persistence and of import/export.
type Document struct {
	SchemaVersion int      `json:"schemaVersion"`
	Settings      Settings `json:"settings"`
	Lists         []List   `json:"lists"`
	Tasks         []Task   `json:"tasks"`
}

// NewID returns a fresh opaque identifier.
func NewID() string {
	return uuid.NewString()
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	out := d
	out.Lists = make([]List, len(d.Lists))
	copy(out.Lists, d.Lists)
	out.Tasks = make([]Task, len(d.Tasks))
	for i, t := range d.Tasks {
		out.Tasks[i] = t.Clone()
	}
	return out
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	out := t
	if t.DueAt != nil {
		due := *t.DueAt
		out.DueAt = &due
	}
	if t.CompletedAt != nil {
		done := *t.CompletedAt
		out.CompletedAt = &done
	}
	if t.ArchivedAt != nil {
		arch := *t.ArchivedAt
		out.ArchivedAt = &arch
	}
	if t.Recurrence != nil {
		rec := *t.Recurrence
		out.Recurrence = &rec
	}
	out.Tags = make([]string, len(t.Tags))
	copy(out.Tags, t.Tags)
	out.Subtasks = make([]Subtask, len(t.Subtasks))
	copy(out.Subtasks, t.Subtasks)
	return out
}

// ListByID returns the list with the given id.
func (d Document) ListByID(id string) (List, bool) {
	for _, l := range d.Lists {
		if l.ID == id {
			return l, true
		}
	}
	return List{}, false
}

// TaskByID returns the task with the given id.
func (d Document) TaskByID(id string) (Task, bool) {
	for _, t := range d.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}
