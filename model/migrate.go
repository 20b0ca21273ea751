package model

import "time"

// SchemaVersion is the current persisted document version.
const SchemaVersion = 2

// DefaultListName is the name of the list synthesized for fresh documents.
const DefaultListName = "My Tasks"

// DefaultSettings returns settings for a fresh document.
func DefaultSettings() Settings {
	return Settings{
		Theme:          ThemeLight,
		StatusFilter:   StatusAll,
		PriorityFilter: FilterAny,
		TagFilter:      FilterAny,
		DueFilter:      DueAny,
		SortMode:       SortPriorityDue,
	}
}

// DefaultDocument returns a fresh document with one default list and no tasks.
func DefaultDocument() Document {
	list := List{ID: NewID(), Name: DefaultListName, CreatedAt: time.Now().UTC()}
	settings := DefaultSettings()
	settings.ActiveListID = list.ID
	return Document{
		SchemaVersion: SchemaVersion,
		Settings:      settings,
		Lists:         []List{list},
		Tasks:         []Task{},
	}
}

// Migrate turns an untrusted decoded JSON value into a well-formed Document.
// It is the only place in the core that inspects the raw shape; everything
// downstream trusts the result. Non-object input yields a fresh default
// document. Missing or mistyped fields are coerced to safe defaults, a list is
// synthesized when none survive, and tasks are normalized in place. Tasks whose
// listId no longer matches an existing list are kept as-is: orphans are
// tolerated, not repaired. Ids and creation stamps are generated only when
// absent, so running Migrate on an already-valid document changes nothing.
func Migrate(raw any) Document {
	obj, ok := raw.(map[string]any)
	if !ok {
		return DefaultDocument()
	}

	doc := Document{
		SchemaVersion: SchemaVersion,
		Settings:      migrateSettings(obj),
		Lists:         migrateLists(obj["lists"]),
		Tasks:         []Task{},
	}

	if len(doc.Lists) == 0 {
		list := List{ID: NewID(), Name: DefaultListName, CreatedAt: time.Now().UTC()}
		doc.Lists = append(doc.Lists, list)
		doc.Settings.ActiveListID = list.ID
	}
	if _, ok := doc.ListByID(doc.Settings.ActiveListID); !ok {
		doc.Settings.ActiveListID = doc.Lists[0].ID
	}

	for _, v := range asSlice(obj["tasks"]) {
		doc.Tasks = append(doc.Tasks, migrateTask(v, doc.Settings.ActiveListID))
	}

	return doc
}

func migrateSettings(obj map[string]any) Settings {
	s := DefaultSettings()
	raw, _ := obj["settings"].(map[string]any)

	if theme := Theme(asString(raw["theme"])); theme == ThemeDark {
		s.Theme = ThemeDark
	}
	switch sf := StatusFilter(asString(raw["statusFilter"])); sf {
	case StatusActive, StatusCompleted, StatusArchived, StatusAll:
		s.StatusFilter = sf
	}
	switch pf := asString(raw["priorityFilter"]); pf {
	case string(PriorityLow), string(PriorityMed), string(PriorityHigh):
		s.PriorityFilter = pf
	}
	if tag := asString(raw["tagFilter"]); tag != "" {
		s.TagFilter = tag
	}
	switch df := DueFilter(asString(raw["dueFilter"])); df {
	case DueOverdue, DueToday, DueWeek, DueNone, DueAny:
		s.DueFilter = df
	}
	s.Query = asString(raw["query"])
	if mode := SortMode(asString(raw["sortMode"])); mode.Valid() {
		s.SortMode = mode
	}

	s.ActiveListID = asString(raw["activeListId"])
	if s.ActiveListID == "" {
		// Older documents kept the active list at the top level.
		s.ActiveListID = asString(obj["activeListId"])
	}
	return s
}

func migrateLists(raw any) []List {
	out := []List{}
	for _, v := range asSlice(raw) {
		entry, ok := v.(map[string]any)
		if !ok {
			continue
		}
		list := List{
			ID:        asString(entry["id"]),
			Name:      truncate(asString(entry["name"]), MaxListNameLen),
			CreatedAt: asTimeOrNow(entry["createdAt"]),
		}
		if list.ID == "" {
			list.ID = NewID()
		}
		if list.Name == "" {
			list.Name = DefaultListName
		}
		out = append(out, list)
	}
	return out
}

func migrateTask(raw any, fallbackListID string) Task {
	entry, ok := raw.(map[string]any)
	if !ok {
		entry = map[string]any{}
	}
	task := Task{
		ID:          asString(entry["id"]),
		ListID:      asString(entry["listId"]),
		Text:        truncate(asString(entry["text"]), MaxTaskTextLen),
		Notes:       truncate(asString(entry["notes"]), MaxNotesLen),
		DueAt:       asTime(entry["dueAt"]),
		CreatedAt:   asTimeOrNow(entry["createdAt"]),
		Priority:    Priority(asString(entry["priority"])),
		Tags:        migrateTags(entry["tags"]),
		Pinned:      asBool(entry["pinned"]),
		CompletedAt: asTime(entry["completedAt"]),
		ArchivedAt:  asTime(entry["archivedAt"]),
		Recurrence:  migrateRecurrence(entry["recurrence"]),
		Subtasks:    migrateSubtasks(entry["subtasks"]),
	}
	if task.ID == "" {
		task.ID = NewID()
	}
	if task.ListID == "" {
		task.ListID = fallbackListID
	}
	if !task.Priority.Valid() {
		task.Priority = PriorityMed
	}
	return task
}

func migrateTags(raw any) []string {
	out := []string{}
	for _, v := range asSlice(raw) {
		tag, ok := v.(string)
		if !ok || tag == "" {
			continue
		}
		if len(out) == MaxTags {
			break
		}
		out = append(out, tag)
	}
	return out
}

func migrateSubtasks(raw any) []Subtask {
	out := []Subtask{}
	for _, v := range asSlice(raw) {
		entry, ok := v.(map[string]any)
		if !ok {
			continue
		}
		st := Subtask{
			ID:   asString(entry["id"]),
			Text: truncate(asString(entry["text"]), MaxSubtaskTextLen),
			Done: asBool(entry["done"]),
		}
		if st.ID == "" {
			st.ID = NewID()
		}
		out = append(out, st)
	}
	return out
}

func migrateRecurrence(raw any) *Recurrence {
	entry, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	kind := RecurrenceKind(asString(entry["type"]))
	switch kind {
	case RecurDaily, RecurWeekly, RecurMonthly:
		return &Recurrence{Kind: kind}
	case RecurCustom:
		days := int(asFloat(entry["everyDays"]))
		if days < 1 {
			days = 7
		}
		return &Recurrence{Kind: RecurCustom, EveryDays: days}
	}
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func asFloat(v any) float64 {
	f, _ := v.(float64)
	return f
}

func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}

func asTime(v any) *time.Time {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return &t
}

func asTimeOrNow(v any) time.Time {
	if t := asTime(v); t != nil {
		return *t
	}
	return time.Now().UTC()
}
