package store

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestExportFilename(t *testing.T) {
	now := time.Date(2026, 8, 31, 15, 4, 5, 0, time.UTC)
	got := ExportFilename("tasktrack-backup", "json", now)
	if got != "tasktrack-backup-2026-08-31.json" {
		t.Fatalf("unexpected filename %q", got)
	}
}

func TestExportThenImportRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup.json")
	want := sampleDocument("a")
	now := time.Date(2026, 8, 31, 15, 0, 0, 0, time.UTC)

	if err := ExportJSON(path, want, now); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export failed: %v", err)
	}
	if !strings.Contains(string(data), `"exportedAt"`) {
		t.Fatalf("export envelope missing exportedAt:\n%s", data)
	}

	got, err := ImportJSON(path)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("export/import mismatch\nwant=%+v\ngot=%+v", want, got)
	}
}

func TestImportBareDocumentPayload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.json")
	payload := `{"lists": [{"id": "l1", "name": "Inbox"}], "tasks": [{"id": "t1", "listId": "l1", "text": "x"}]}`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	doc, err := ImportJSON(path)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if len(doc.Lists) != 1 || doc.Lists[0].ID != "l1" {
		t.Fatalf("expected bare payload treated as document, got %+v", doc)
	}
	if len(doc.Tasks) != 1 || doc.Tasks[0].Text != "x" {
		t.Fatalf("expected task imported, got %+v", doc.Tasks)
	}
}

func TestImportEmptyListsSynthesizesOne(t *testing.T) {
	path := filepath.Join(t.TempDir(), "import.json")
	payload := `{"data": {"lists": [], "tasks": [{"text": "x"}]}}`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	doc, err := ImportJSON(path)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if len(doc.Lists) != 1 {
		t.Fatalf("expected exactly one synthesized list, got %d", len(doc.Lists))
	}
	if doc.Settings.ActiveListID != doc.Lists[0].ID {
		t.Fatalf("expected active list pointing at synthesized list")
	}
	// A task arriving without a listId is attached to the synthesized list.
	if doc.Tasks[0].ListID != doc.Lists[0].ID {
		t.Fatalf("expected task attached to synthesized list, got %q", doc.Tasks[0].ListID)
	}
}

func TestImportFailuresReturnErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := ImportJSON(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{broken"), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if _, err := ImportJSON(bad); err == nil {
		t.Fatalf("expected error for malformed JSON")
	}
}

func TestWriteCSV(t *testing.T) {
	doc := sampleDocument("a")
	var sb strings.Builder
	if err := WriteCSV(&sb, doc); err != nil {
		t.Fatalf("write csv failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + one row, got %d lines:\n%s", len(lines), sb.String())
	}
	if lines[0] != "list,task,notes,priority,tags,dueAt,pinned,completedAt,archivedAt,subtasks" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	row := lines[1]
	for _, want := range []string{"Inbox-a", "Task-a", "high", "home money", "true", "[ ] step one"} {
		if !strings.Contains(row, want) {
			t.Fatalf("row missing %q:\n%s", want, row)
		}
	}
}

func TestWriteCSVQuotesEmbeddedQuotes(t *testing.T) {
	doc := sampleDocument("a")
	doc.Tasks[0].Text = `say "hello", then stop`

	var sb strings.Builder
	if err := WriteCSV(&sb, doc); err != nil {
		t.Fatalf("write csv failed: %v", err)
	}
	if !strings.Contains(sb.String(), `"say ""hello"", then stop"`) {
		t.Fatalf("expected doubled quotes in output:\n%s", sb.String())
	}
}
