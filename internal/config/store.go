package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Store is a persisted key/value settings document backed by a JSON file.
// Keys are gjson/sjson paths, so nested settings like "apps.browser" work.
type Store struct {
	mu   sync.RWMutex
	path string
	raw  []byte
}

// Open loads the settings document at path. A missing file is not an
// error; the store starts from an empty document and creates the file on
// the first write.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, ErrNoPath
	}

	s := &Store{path: path, raw: []byte("{}")}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read settings: %w", err)
	}

	if len(data) > 0 {
		if !gjson.ValidBytes(data) {
			return nil, fmt.Errorf("%w: %s", ErrBadDocument, path)
		}
		s.raw = data
	}

	return s, nil
}

// Path returns the settings file path.
func (s *Store) Path() string {
	return s.path
}

// Get returns the value at key. The result's Exists method reports
// whether the key is present.
func (s *Store) Get(key string) gjson.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return gjson.GetBytes(s.raw, key)
}

// String returns the string at key, or def if the key is absent.
func (s *Store) String(key, def string) string {
	if v := s.Get(key); v.Exists() {
		return v.String()
	}
	return def
}

// Bool returns the boolean at key, or def if the key is absent.
func (s *Store) Bool(key string, def bool) bool {
	if v := s.Get(key); v.Exists() {
		return v.Bool()
	}
	return def
}

// Int returns the integer at key, or def if the key is absent.
func (s *Store) Int(key string, def int64) int64 {
	if v := s.Get(key); v.Exists() {
		return v.Int()
	}
	return def
}

// Strings returns the string array at key. Absent or non-array values
// yield an empty slice.
func (s *Store) Strings(key string) []string {
	v := s.Get(key)
	if !v.IsArray() {
		return nil
	}
	items := v.Array()
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.String())
	}
	return out
}

// StringSet returns the string array at key as a membership set.
func (s *Store) StringSet(key string) map[string]struct{} {
	items := s.Strings(key)
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}

// Set writes value at key and persists the document.
func (s *Store) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := sjson.SetBytes(s.raw, key, value)
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	if err := s.writeLocked(raw); err != nil {
		return err
	}
	s.raw = raw
	return nil
}

// Delete removes key from the document and persists it. Deleting an
// absent key is a no-op.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := sjson.DeleteBytes(s.raw, key)
	if err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	if err := s.writeLocked(raw); err != nil {
		return err
	}
	s.raw = raw
	return nil
}

// Reload re-reads the document from disk, discarding in-memory state.
func (s *Store) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.raw = []byte("{}")
			return nil
		}
		return fmt.Errorf("reload settings: %w", err)
	}
	if len(data) == 0 {
		s.raw = []byte("{}")
		return nil
	}
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("%w: %s", ErrBadDocument, s.path)
	}
	s.raw = data
	return nil
}

// writeLocked persists raw to disk. Caller holds the write lock.
// Writes go through a temp file and rename so a crash mid-write never
// leaves a truncated settings file.
func (s *Store) writeLocked(raw []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".settings-*.json")
	if err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write settings: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
