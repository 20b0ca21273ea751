package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"tasktrack/model"
)

// Export is the JSON backup envelope.
type Export struct {
	SchemaVersion int            `json:"schemaVersion"`
	ExportedAt    time.Time      `json:"exportedAt"`
	Data          model.Document `json:"data"`
}

// ExportFilename builds a date-stamped file name like "tasktrack-backup-2026-08-31.json".
func ExportFilename(prefix, ext string, now time.Time) string {
	return fmt.Sprintf("%s-%s.%s", prefix, now.Format("2006-01-02"), ext)
}

// ExportJSON writes the document wrapped in a backup envelope as
// pretty-printed JSON.
func ExportJSON(path string, doc model.Document, now time.Time) error {
	payload := Export{
		SchemaVersion: model.SchemaVersion,
		ExportedAt:    now,
		Data:          doc,
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if err := ensureDir(path); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ImportJSON reads a backup file and migrates it into a document. The file
// may carry the export envelope or a bare document; the "data" field wins
// when present. On any read or parse failure an error is returned and no
// document is produced, so the caller keeps its current state untouched.
func ImportJSON(path string) (model.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Document{}, fmt.Errorf("read import file: %w", err)
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return model.Document{}, fmt.Errorf("parse import file: %w", err)
	}
	if obj, ok := raw.(map[string]any); ok {
		if inner, ok := obj["data"]; ok {
			raw = inner
		}
	}
	return model.Migrate(raw), nil
}

var csvHeader = []string{
	"list", "task", "notes", "priority", "tags", "dueAt",
	"pinned", "completedAt", "archivedAt", "subtasks",
}

// WriteCSV renders one row per task. Tags are space-joined, subtasks are
// pipe-joined with a checkbox marker, and every value is quoted with doubled
// internal quotes.
func WriteCSV(w io.Writer, doc model.Document) error {
	listNames := make(map[string]string, len(doc.Lists))
	for _, l := range doc.Lists {
		listNames[l.ID] = l.Name
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, t := range doc.Tasks {
		row := []string{
			listNames[t.ListID],
			t.Text,
			t.Notes,
			string(t.Priority),
			strings.Join(t.Tags, " "),
			formatOptTime(t.DueAt),
			fmt.Sprintf("%t", t.Pinned),
			formatOptTime(t.CompletedAt),
			formatOptTime(t.ArchivedAt),
			joinSubtasks(t.Subtasks),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportCSV writes the tabular export to a file.
func ExportCSV(path string, doc model.Document) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCSV(f, doc); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func formatOptTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

func joinSubtasks(subtasks []model.Subtask) string {
	parts := make([]string, len(subtasks))
	for i, st := range subtasks {
		marker := "[ ]"
		if st.Done {
			marker = "[x]"
		}
		parts[i] = marker + " " + st.Text
	}
	return strings.Join(parts, " | ")
}
