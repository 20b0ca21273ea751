// Package store persists the task document as a single JSON file.
package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"tasktrack/model"
)

// Load reads the persisted document at path. Every failure path degrades to a
// fresh default document: missing file, unreadable file, malformed JSON, and
// invalid shape all yield the same starting state. Well-formed JSON still goes
// through model.Migrate, so partially valid documents are normalized rather
// than rejected.
func Load(path string) model.Document {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.DefaultDocument()
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return model.DefaultDocument()
	}
	return model.Migrate(raw)
}

// Save writes the document to path as pretty-printed JSON.
func Save(path string, doc model.Document) error {
	return writeJSON(path, doc)
}

// Autosave writes safely using a temporary file + atomic rename, keeping the
// previous contents in a sibling .bak file.
func Autosave(path string, doc model.Document) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	if err := backup(path); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

// Reset removes the persisted file and returns a fresh default document.
func Reset(path string) model.Document {
	_ = os.Remove(path)
	return model.DefaultDocument()
}

func writeJSON(path string, doc model.Document) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}

func backup(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return os.WriteFile(path+".bak", data, 0o644)
}
