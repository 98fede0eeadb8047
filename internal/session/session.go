// Package session holds the shared assistant state passed by reference
// to every command handler.
//
// The session is owned by the orchestrator. The dispatch core only
// passes the pointer through; handlers read and mutate it under the
// session's own lock.
package session

import (
	"os"
	"path/filepath"
	"sync"

	"deskai/internal/config"
)

// Session is the shared mutable state of one assistant run: user
// preferences, well-known paths, runtime flags, and a generic value bag
// for skills that need scratch state.
type Session struct {
	mu sync.RWMutex

	// User preferences
	userName     string
	voiceEnabled bool
	voiceRate    int

	// Paths
	configDir    string
	notesFile    string
	documentsDir string

	// Runtime state
	listening   bool
	lastCommand string
	debug       bool

	// Skill scratch state
	values map[string]any

	// Pending notices from asynchronous skills (reminders, timers).
	// Drained by the assistant loop between iterations.
	notices []string

	settings *config.Store
}

// Option configures a Session.
type Option func(*Session)

// WithUserName sets the user's name.
func WithUserName(name string) Option {
	return func(s *Session) {
		s.userName = name
	}
}

// WithVoice sets voice output preferences.
func WithVoice(enabled bool, rate int) Option {
	return func(s *Session) {
		s.voiceEnabled = enabled
		s.voiceRate = rate
	}
}

// WithConfigDir sets the assistant config directory. The notes file and
// documents directory default to locations under it.
func WithConfigDir(dir string) Option {
	return func(s *Session) {
		s.configDir = dir
	}
}

// WithSettings attaches the persisted settings store.
func WithSettings(store *config.Store) Option {
	return func(s *Session) {
		s.settings = store
	}
}

// New creates a session with defaults mirroring a fresh install: user
// "User", voice on, config under ~/.deskai.
func New(opts ...Option) *Session {
	s := &Session{
		userName:     "User",
		voiceEnabled: true,
		voiceRate:    175,
		values:       make(map[string]any),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.configDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			s.configDir = filepath.Join(home, ".deskai")
		} else {
			s.configDir = ".deskai"
		}
	}
	if s.notesFile == "" {
		s.notesFile = filepath.Join(s.configDir, "notes.json")
	}
	if s.documentsDir == "" {
		s.documentsDir = filepath.Join(s.configDir, "documents")
	}

	return s
}

// UserName returns the configured user name.
func (s *Session) UserName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userName
}

// SetUserName updates the user name.
func (s *Session) SetUserName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userName = name
}

// VoiceEnabled reports whether spoken responses are enabled.
func (s *Session) VoiceEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.voiceEnabled
}

// SetVoiceEnabled toggles spoken responses.
func (s *Session) SetVoiceEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voiceEnabled = enabled
}

// ConfigDir returns the assistant config directory.
func (s *Session) ConfigDir() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.configDir
}

// NotesFile returns the notes file path.
func (s *Session) NotesFile() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.notesFile
}

// DocumentsDir returns the documents directory used by the files skill.
func (s *Session) DocumentsDir() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.documentsDir
}

// Listening reports whether the assistant is currently listening.
func (s *Session) Listening() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listening
}

// SetListening updates the listening flag.
func (s *Session) SetListening(listening bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listening = listening
}

// LastCommand returns the most recent recognized command.
func (s *Session) LastCommand() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastCommand
}

// SetLastCommand records the most recent recognized command.
func (s *Session) SetLastCommand(cmd string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastCommand = cmd
}

// Debug reports whether debug mode is enabled.
func (s *Session) Debug() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.debug
}

// SetDebug toggles debug mode.
func (s *Session) SetDebug(debug bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.debug = debug
}

// Value returns a skill scratch value.
func (s *Session) Value(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// SetValue stores a skill scratch value.
func (s *Session) SetValue(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// PushNotice queues a notice for delivery on the next loop iteration.
// Used by skills that complete work asynchronously (timers, reminders).
func (s *Session) PushNotice(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = append(s.notices, text)
}

// DrainNotices returns and clears all pending notices.
func (s *Session) DrainNotices() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.notices) == 0 {
		return nil
	}
	out := s.notices
	s.notices = nil
	return out
}

// Settings returns the persisted settings store, or nil when the
// session runs without one (tests).
func (s *Session) Settings() *config.Store {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Setting returns a persisted setting string, or def when the store is
// absent or the key unset.
func (s *Session) Setting(key, def string) string {
	store := s.Settings()
	if store == nil {
		return def
	}
	return store.String(key, def)
}

// SetSetting persists a setting. A session without a store drops the
// write silently, matching the original's non-critical treatment of
// settings persistence.
func (s *Session) SetSetting(key string, value any) error {
	store := s.Settings()
	if store == nil {
		return nil
	}
	return store.Set(key, value)
}

// Snapshot exports displayable session state for the settings skill.
func (s *Session) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]any{
		"user_name":     s.userName,
		"voice_enabled": s.voiceEnabled,
		"voice_rate":    s.voiceRate,
		"config_dir":    s.configDir,
		"debug":         s.debug,
		"last_command":  s.lastCommand,
	}
}
