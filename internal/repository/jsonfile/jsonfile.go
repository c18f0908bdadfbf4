// Package jsonfile implements the repository interfaces as one JSON
// document per table under a data directory.
//
// Every write rewrites the whole file. Ids are assigned as max+1 under a
// process-local mutex; two processes sharing a directory can hand out the
// same id.
package jsonfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/garnizeh/ambucheck/pkg/repository"
)

const (
	usersFile         = "users.json"
	runsheetsFile     = "runsheets.json"
	checksFile        = "equipment-checks.json"
	overridesFile     = "form-config-overrides.json"
	practitionersFile = "practitioners.json"
	vehiclesFile      = "vehicles.json"
)

func submissionsFile(formID string) string {
	return "form-" + formID + "-submissions.json"
}

// Store keeps all tables as files in dir.
type Store struct {
	dir    string
	mu     sync.Mutex
	logger *slog.Logger
}

var _ repository.Store = (*Store)(nil)

// New returns a store rooted at dir. The directory is created on first write.
func New(dir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Store{dir: dir, logger: logger}
}

func (s *Store) Close() error { return nil }

// load decodes name into out. A missing file leaves out untouched.
func (s *Store) load(name string, out any) error {
	b, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		s.logger.Error("corrupt data file", slog.String("file", name), slog.Any("err", err))
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

// save replaces name atomically with the indented encoding of v.
func (s *Store) save(name string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+name+".*")
	if err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}

func nextID[T any](rows []T, id func(T) int64) int64 {
	var max int64
	for _, r := range rows {
		if v := id(r); v > max {
			max = v
		}
	}
	return max + 1
}
