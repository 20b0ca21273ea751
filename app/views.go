package app

import (
	"sort"
	"strings"
	"time"

	"tasktrack/model"
)

// Default badge horizons; the config file can override them.
const (
	DefaultSoonHorizon   = 48 * time.Hour
	DefaultRecentHorizon = 24 * time.Hour
)

// Horizons configures the urgency and recency windows.
type Horizons struct {
	Soon   time.Duration
	Recent time.Duration
}

// DefaultHorizons returns the standard badge windows.
func DefaultHorizons() Horizons {
	return Horizons{Soon: DefaultSoonHorizon, Recent: DefaultRecentHorizon}
}

// IsOverdue reports whether the task's due day has fully elapsed and the task
// is still incomplete. A task due today is not yet overdue.
func IsOverdue(t model.Task, now time.Time) bool {
	if t.DueAt == nil || t.Completed() {
		return false
	}
	return now.After(model.EndOfDay(*t.DueAt))
}

// IsDueSoon reports whether an incomplete, not-overdue task is due within the
// soon horizon.
func IsDueSoon(t model.Task, now time.Time, h Horizons) bool {
	if t.DueAt == nil || t.Completed() || IsOverdue(t, now) {
		return false
	}
	return t.DueAt.Before(now.Add(h.Soon))
}

// IsNew reports whether the task was created within the recent horizon.
// Purely cosmetic; it drives the "new" badge only.
func IsNew(t model.Task, now time.Time, h Horizons) bool {
	return now.Sub(t.CreatedAt) < h.Recent
}

func urgencyBucket(t model.Task, now time.Time, h Horizons) int {
	switch {
	case IsOverdue(t, now):
		return 2
	case IsDueSoon(t, now, h):
		return 1
	default:
		return 0
	}
}

// Matches applies every filter from the settings to one task: list, status,
// priority, tag, due bucket, and free-text search.
func Matches(t model.Task, set model.Settings, now time.Time) bool {
	if t.ListID != set.ActiveListID {
		return false
	}

	switch set.StatusFilter {
	case model.StatusActive:
		if t.Archived() || t.Completed() {
			return false
		}
	case model.StatusCompleted:
		if t.Archived() || !t.Completed() {
			return false
		}
	case model.StatusArchived:
		if !t.Archived() {
			return false
		}
	}

	if set.PriorityFilter != model.FilterAny && string(t.Priority) != set.PriorityFilter {
		return false
	}
	if set.TagFilter != model.FilterAny && !t.HasTag(set.TagFilter) {
		return false
	}

	switch set.DueFilter {
	case model.DueOverdue:
		if t.DueAt == nil || !t.DueAt.Before(now) || t.Completed() {
			return false
		}
	case model.DueToday:
		if t.DueAt == nil || !model.SameDay(*t.DueAt, now) {
			return false
		}
	case model.DueWeek:
		if t.DueAt == nil || t.DueAt.Before(now) || t.DueAt.After(now.AddDate(0, 0, 7)) {
			return false
		}
	case model.DueNone:
		if t.DueAt != nil {
			return false
		}
	}

	if q := strings.ToLower(strings.TrimSpace(set.Query)); q != "" {
		parts := []string{t.Text, t.Notes, strings.Join(t.Tags, " ")}
		for _, st := range t.Subtasks {
			parts = append(parts, st.Text)
		}
		if !strings.Contains(strings.ToLower(strings.Join(parts, " ")), q) {
			return false
		}
	}

	return true
}

// SortTasks orders tasks in place according to the sort mode. Each mode's
// tie-break chain only fires when the earlier keys compare equal.
func SortTasks(tasks []model.Task, mode model.SortMode, now time.Time, h Horizons) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return lessTasks(tasks[i], tasks[j], mode, now, h)
	})
}

func lessTasks(a, b model.Task, mode model.SortMode, now time.Time, h Horizons) bool {
	aDue := model.DueOrSentinel(a)
	bDue := model.DueOrSentinel(b)

	switch mode {
	case model.SortPinnedDue:
		if a.Pinned != b.Pinned {
			return a.Pinned
		}
		if !aDue.Equal(bDue) {
			return aDue.Before(bDue)
		}
		return a.CreatedAt.After(b.CreatedAt)

	case model.SortCreatedDesc:
		return a.CreatedAt.After(b.CreatedAt)

	case model.SortDueAsc:
		return aDue.Before(bDue)

	case model.SortPriorityDesc:
		return a.Priority.Rank() > b.Priority.Rank()

	case model.SortAlphaAsc:
		al, bl := strings.ToLower(a.Text), strings.ToLower(b.Text)
		if al != bl {
			return al < bl
		}
		return a.Text < b.Text

	case model.SortPriorityDue:
		if a.Completed() != b.Completed() {
			return !a.Completed()
		}
		aU, bU := urgencyBucket(a, now, h), urgencyBucket(b, now, h)
		if aU != bU {
			return aU > bU
		}
		if a.Priority.Rank() != b.Priority.Rank() {
			return a.Priority.Rank() > b.Priority.Rank()
		}
		if !aDue.Equal(bDue) {
			return aDue.Before(bDue)
		}
		return a.CreatedAt.After(b.CreatedAt)
	}
	return false
}

// VisibleTasks computes the filtered, sorted task view for the current
// settings.
func (s *Service) VisibleTasks(now time.Time, h Horizons) []model.Task {
	set := s.doc.Settings
	out := make([]model.Task, 0)
	for _, t := range s.doc.Tasks {
		if Matches(t, set, now) {
			out = append(out, t.Clone())
		}
	}
	SortTasks(out, set.SortMode, now, h)
	return out
}

// ListStats are the per-list aggregate counts.
type ListStats struct {
	Total     int
	Completed int
	Remaining int
	Percent   int
	Overdue   int
	Soon      int
}

// Stats computes aggregate counts for one list. Total/completed/remaining
// cover unarchived tasks; overdue and soon cover every incomplete task.
func (s *Service) Stats(listID string, now time.Time, h Horizons) ListStats {
	var st ListStats
	for _, t := range s.doc.Tasks {
		if t.ListID != listID {
			continue
		}
		if !t.Archived() {
			st.Total++
			if t.Completed() {
				st.Completed++
			}
		}
		if !t.Completed() {
			if IsOverdue(t, now) {
				st.Overdue++
			} else if IsDueSoon(t, now, h) {
				st.Soon++
			}
		}
	}
	st.Remaining = st.Total - st.Completed
	if st.Total > 0 {
		st.Percent = st.Completed * 100 / st.Total
	}
	return st
}

// TagOptions returns the sorted set of tags used in one list.
func (s *Service) TagOptions(listID string) []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, t := range s.doc.Tasks {
		if t.ListID != listID {
			continue
		}
		for _, tag := range t.Tags {
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			out = append(out, tag)
		}
	}
	sort.Strings(out)
	return out
}

// ParseTags splits comma-separated input into a capped tag list.
func ParseTags(input string) []string {
	parts := strings.Split(input, ",")
	return capTags(parts)
}
