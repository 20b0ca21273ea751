package app

import (
	"reflect"
	"testing"
	"time"

	"tasktrack/model"
)

var viewNow = time.Date(2026, 3, 12, 12, 0, 0, 0, time.UTC)

func baseSettings(listID string) model.Settings {
	s := model.DefaultSettings()
	s.ActiveListID = listID
	return s
}

func taskIn(listID, text string) model.Task {
	return model.Task{
		ID:        model.NewID(),
		ListID:    listID,
		Text:      text,
		CreatedAt: viewNow.Add(-time.Hour),
		Priority:  model.PriorityMed,
		Tags:      []string{},
		Subtasks:  []model.Subtask{},
	}
}

func at(t time.Time) *time.Time { return &t }

func TestMatchesListAndStatus(t *testing.T) {
	set := baseSettings("l1")
	open := taskIn("l1", "open")
	done := taskIn("l1", "done")
	done.CompletedAt = at(viewNow.Add(-time.Minute))
	archived := taskIn("l1", "archived")
	archived.ArchivedAt = at(viewNow.Add(-time.Minute))
	doneArchived := taskIn("l1", "done+archived")
	doneArchived.CompletedAt = at(viewNow.Add(-time.Minute))
	doneArchived.ArchivedAt = at(viewNow.Add(-time.Minute))
	elsewhere := taskIn("l2", "other list")

	cases := []struct {
		status model.StatusFilter
		want   map[string]bool
	}{
		{model.StatusActive, map[string]bool{"open": true}},
		{model.StatusCompleted, map[string]bool{"done": true}},
		{model.StatusArchived, map[string]bool{"archived": true, "done+archived": true}},
		{model.StatusAll, map[string]bool{"open": true, "done": true, "archived": true, "done+archived": true}},
	}
	for _, tc := range cases {
		set.StatusFilter = tc.status
		for _, task := range []model.Task{open, done, archived, doneArchived, elsewhere} {
			got := Matches(task, set, viewNow)
			if got != tc.want[task.Text] {
				t.Fatalf("status %s task %q: want %v, got %v", tc.status, task.Text, tc.want[task.Text], got)
			}
		}
	}
}

func TestMatchesPriorityAndTag(t *testing.T) {
	set := baseSettings("l1")
	task := taskIn("l1", "tagged")
	task.Priority = model.PriorityHigh
	task.Tags = []string{"home", "money"}

	set.PriorityFilter = string(model.PriorityHigh)
	if !Matches(task, set, viewNow) {
		t.Fatalf("expected priority match")
	}
	set.PriorityFilter = string(model.PriorityLow)
	if Matches(task, set, viewNow) {
		t.Fatalf("expected priority mismatch")
	}

	set.PriorityFilter = model.FilterAny
	set.TagFilter = "money"
	if !Matches(task, set, viewNow) {
		t.Fatalf("expected tag match")
	}
	set.TagFilter = "work"
	if Matches(task, set, viewNow) {
		t.Fatalf("expected tag mismatch")
	}
}

func TestMatchesDueBuckets(t *testing.T) {
	set := baseSettings("l1")

	overdue := taskIn("l1", "overdue")
	overdue.DueAt = at(viewNow.Add(-2 * time.Hour))
	overdueDone := taskIn("l1", "overdue done")
	overdueDone.DueAt = at(viewNow.Add(-2 * time.Hour))
	overdueDone.CompletedAt = at(viewNow)
	today := taskIn("l1", "today")
	today.DueAt = at(viewNow.Add(3 * time.Hour))
	inWeek := taskIn("l1", "week")
	inWeek.DueAt = at(viewNow.AddDate(0, 0, 5))
	beyond := taskIn("l1", "beyond")
	beyond.DueAt = at(viewNow.AddDate(0, 0, 9))
	undated := taskIn("l1", "undated")

	cases := []struct {
		due  model.DueFilter
		want map[string]bool
	}{
		{model.DueOverdue, map[string]bool{"overdue": true}},
		{model.DueToday, map[string]bool{"overdue": true, "overdue done": true, "today": true}},
		{model.DueWeek, map[string]bool{"today": true, "week": true}},
		{model.DueNone, map[string]bool{"undated": true}},
		{model.DueAny, map[string]bool{"overdue": true, "overdue done": true, "today": true, "week": true, "beyond": true, "undated": true}},
	}
	for _, tc := range cases {
		set.DueFilter = tc.due
		for _, task := range []model.Task{overdue, overdueDone, today, inWeek, beyond, undated} {
			got := Matches(task, set, viewNow)
			if got != tc.want[task.Text] {
				t.Fatalf("due %s task %q: want %v, got %v", tc.due, task.Text, tc.want[task.Text], got)
			}
		}
	}
}

func TestMatchesSearchSpansAllTextFields(t *testing.T) {
	set := baseSettings("l1")
	task := taskIn("l1", "Call landlord")
	task.Notes = "about the heating"
	task.Tags = []string{"apartment"}
	task.Subtasks = []model.Subtask{{ID: "s1", Text: "find the Phone Number"}}

	for _, q := range []string{"landlord", "HEATING", "apartment", "phone number", ""} {
		set.Query = q
		if !Matches(task, set, viewNow) {
			t.Fatalf("query %q should match", q)
		}
	}
	set.Query = "plumber"
	if Matches(task, set, viewNow) {
		t.Fatalf("query should not match")
	}
}

func TestUrgencyEndOfDayRule(t *testing.T) {
	h := DefaultHorizons()

	dueEarlierToday := taskIn("l1", "earlier today")
	dueEarlierToday.DueAt = at(viewNow.Add(-3 * time.Hour))
	if IsOverdue(dueEarlierToday, viewNow) {
		t.Fatalf("task due today must not be overdue until the day elapses")
	}
	if !IsDueSoon(dueEarlierToday, viewNow, h) {
		t.Fatalf("task due today should be due soon")
	}

	dueYesterday := taskIn("l1", "yesterday")
	dueYesterday.DueAt = at(viewNow.AddDate(0, 0, -1))
	if !IsOverdue(dueYesterday, viewNow) {
		t.Fatalf("task due yesterday must be overdue")
	}
	if IsDueSoon(dueYesterday, viewNow, h) {
		t.Fatalf("overdue task is not due soon")
	}

	dueYesterday.CompletedAt = at(viewNow)
	if IsOverdue(dueYesterday, viewNow) {
		t.Fatalf("completed task is never overdue")
	}

	dueNextWeek := taskIn("l1", "next week")
	dueNextWeek.DueAt = at(viewNow.AddDate(0, 0, 5))
	if IsOverdue(dueNextWeek, viewNow) || IsDueSoon(dueNextWeek, viewNow, h) {
		t.Fatalf("task due in five days is neither overdue nor soon")
	}

	fresh := taskIn("l1", "fresh")
	fresh.CreatedAt = viewNow.Add(-time.Hour)
	if !IsNew(fresh, viewNow, h) {
		t.Fatalf("hour-old task should be new")
	}
	old := taskIn("l1", "old")
	old.CreatedAt = viewNow.AddDate(0, 0, -2)
	if IsNew(old, viewNow, h) {
		t.Fatalf("two-day-old task is not new")
	}
}

func sortedTexts(tasks []model.Task, mode model.SortMode) []string {
	SortTasks(tasks, mode, viewNow, DefaultHorizons())
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Text
	}
	return out
}

func TestSortPinnedDue(t *testing.T) {
	pinnedLate := taskIn("l1", "pinned late")
	pinnedLate.Pinned = true
	pinnedLate.DueAt = at(viewNow.AddDate(0, 0, 5))
	dueSoonTask := taskIn("l1", "due soon")
	dueSoonTask.DueAt = at(viewNow.Add(time.Hour))
	undated := taskIn("l1", "undated")

	got := sortedTexts([]model.Task{undated, dueSoonTask, pinnedLate}, model.SortPinnedDue)
	want := []string{"pinned late", "due soon", "undated"}
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("want %v, got %v", want, got)
	}
}

func TestSortPinnedDueTieBreaksByCreationDesc(t *testing.T) {
	due := viewNow.AddDate(0, 0, 2)
	older := taskIn("l1", "older")
	older.DueAt = at(due)
	older.CreatedAt = viewNow.Add(-2 * time.Hour)
	newer := taskIn("l1", "newer")
	newer.DueAt = at(due)
	newer.CreatedAt = viewNow.Add(-time.Hour)

	got := sortedTexts([]model.Task{older, newer}, model.SortPinnedDue)
	want := []string{"newer", "older"}
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("want %v, got %v", want, got)
	}
}

func TestSortSimpleModes(t *testing.T) {
	a := taskIn("l1", "banana")
	a.CreatedAt = viewNow.Add(-3 * time.Hour)
	a.Priority = model.PriorityLow
	a.DueAt = at(viewNow.AddDate(0, 0, 3))
	b := taskIn("l1", "Apple")
	b.CreatedAt = viewNow.Add(-time.Hour)
	b.Priority = model.PriorityHigh
	b.DueAt = at(viewNow.AddDate(0, 0, 1))
	c := taskIn("l1", "cherry")
	c.CreatedAt = viewNow.Add(-2 * time.Hour)
	c.Priority = model.PriorityMed

	if got := sortedTexts([]model.Task{a, b, c}, model.SortCreatedDesc); !reflect.DeepEqual([]string{"Apple", "cherry", "banana"}, got) {
		t.Fatalf("created_desc: got %v", got)
	}
	if got := sortedTexts([]model.Task{a, b, c}, model.SortDueAsc); !reflect.DeepEqual([]string{"Apple", "banana", "cherry"}, got) {
		t.Fatalf("due_asc: got %v", got)
	}
	if got := sortedTexts([]model.Task{a, b, c}, model.SortPriorityDesc); !reflect.DeepEqual([]string{"Apple", "cherry", "banana"}, got) {
		t.Fatalf("priority_desc: got %v", got)
	}
	if got := sortedTexts([]model.Task{a, b, c}, model.SortAlphaAsc); !reflect.DeepEqual([]string{"Apple", "banana", "cherry"}, got) {
		t.Fatalf("alpha_asc: got %v", got)
	}
}

func TestSortPriorityDue(t *testing.T) {
	completed := taskIn("l1", "completed high")
	completed.Priority = model.PriorityHigh
	completed.CompletedAt = at(viewNow.Add(-time.Minute))

	overdue := taskIn("l1", "overdue low")
	overdue.Priority = model.PriorityLow
	overdue.DueAt = at(viewNow.AddDate(0, 0, -2))

	soonHigh := taskIn("l1", "soon high")
	soonHigh.Priority = model.PriorityHigh
	soonHigh.DueAt = at(viewNow.Add(5 * time.Hour))

	soonMed := taskIn("l1", "soon med")
	soonMed.Priority = model.PriorityMed
	soonMed.DueAt = at(viewNow.Add(2 * time.Hour))

	laterHigh := taskIn("l1", "later high")
	laterHigh.Priority = model.PriorityHigh
	laterHigh.DueAt = at(viewNow.AddDate(0, 0, 6))

	undatedMed := taskIn("l1", "undated med")

	got := sortedTexts(
		[]model.Task{undatedMed, completed, soonMed, laterHigh, overdue, soonHigh},
		model.SortPriorityDue,
	)
	want := []string{"overdue low", "soon high", "soon med", "later high", "undated med", "completed high"}
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("want %v, got %v", want, got)
	}
}

func TestVisibleTasksAppliesSettings(t *testing.T) {
	svc, home := newTestService(t)
	kept := mustAddTask(t, svc, home.ID, "keep me")
	done := mustAddTask(t, svc, home.ID, "done task")
	if _, err := svc.ToggleComplete(done.ID); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if err := svc.SetStatusFilter(model.StatusActive); err != nil {
		t.Fatalf("set filter failed: %v", err)
	}

	visible := svc.VisibleTasks(viewNow, DefaultHorizons())
	if len(visible) != 1 || visible[0].ID != kept.ID {
		t.Fatalf("expected only the open task, got %+v", visible)
	}
}

func TestOverdueScenarioPayRent(t *testing.T) {
	svc, home := newTestService(t)
	yesterday := time.Now().UTC().AddDate(0, 0, -1)
	task, err := svc.AddTask(home.ID, Draft{
		Text:     "Pay rent",
		DueAt:    &yesterday,
		Priority: model.PriorityHigh,
	})
	if err != nil {
		t.Fatalf("add task failed: %v", err)
	}
	if err := svc.SetDueFilter(model.DueOverdue); err != nil {
		t.Fatalf("set due filter failed: %v", err)
	}

	now := time.Now().UTC()
	visible := svc.VisibleTasks(now, DefaultHorizons())
	if len(visible) != 1 || visible[0].ID != task.ID {
		t.Fatalf("expected overdue view to include the task, got %+v", visible)
	}

	if _, err := svc.ToggleComplete(task.ID); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	visible = svc.VisibleTasks(now, DefaultHorizons())
	for _, v := range visible {
		if v.ID == task.ID {
			t.Fatalf("completed task must leave the overdue view")
		}
	}
}

func TestStatsCounts(t *testing.T) {
	svc, home := newTestService(t)
	open := mustAddTask(t, svc, home.ID, "open")
	_ = open
	done := mustAddTask(t, svc, home.ID, "done")
	archivedTask := mustAddTask(t, svc, home.ID, "archived")
	overdue, err := svc.AddTask(home.ID, Draft{Text: "overdue", DueAt: at(time.Now().UTC().AddDate(0, 0, -2)), Priority: model.PriorityMed})
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	_ = overdue
	soon, err := svc.AddTask(home.ID, Draft{Text: "soon", DueAt: at(time.Now().UTC().Add(3 * time.Hour)), Priority: model.PriorityMed})
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	_ = soon

	if _, err := svc.ToggleComplete(done.ID); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if _, err := svc.ToggleArchive(archivedTask.ID); err != nil {
		t.Fatalf("archive failed: %v", err)
	}

	st := svc.Stats(home.ID, time.Now().UTC(), DefaultHorizons())
	if st.Total != 4 || st.Completed != 1 || st.Remaining != 3 {
		t.Fatalf("unexpected counts %+v", st)
	}
	if st.Overdue != 1 {
		t.Fatalf("expected one overdue, got %d", st.Overdue)
	}
	if st.Soon != 1 {
		t.Fatalf("expected one due soon, got %d", st.Soon)
	}
	if st.Percent != 25 {
		t.Fatalf("expected 25%%, got %d", st.Percent)
	}
}

func TestTagOptionsSortedUnique(t *testing.T) {
	svc, home := newTestService(t)
	if _, err := svc.AddTask(home.ID, Draft{Text: "a", Tags: []string{"home", "money"}, Priority: model.PriorityMed}); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if _, err := svc.AddTask(home.ID, Draft{Text: "b", Tags: []string{"money", "car"}, Priority: model.PriorityMed}); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	got := svc.TagOptions(home.ID)
	want := []string{"car", "home", "money"}
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("want %v, got %v", want, got)
	}
}

func TestParseTags(t *testing.T) {
	got := ParseTags(" home,  money ,, car ")
	want := []string{"home", "money", "car"}
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("want %v, got %v", want, got)
	}
	if got := ParseTags(""); len(got) != 0 {
		t.Fatalf("expected no tags, got %v", got)
	}
}
