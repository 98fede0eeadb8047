package session_test

import (
	"path/filepath"
	"sync"
	"testing"

	"deskai/internal/config"
	"deskai/internal/session"
)

func TestSessionDefaults(t *testing.T) {
	s := session.New(session.WithConfigDir(t.TempDir()))

	if s.UserName() != "User" {
		t.Errorf("UserName = %q, want User", s.UserName())
	}
	if !s.VoiceEnabled() {
		t.Error("voice should default to enabled")
	}
	if s.NotesFile() != filepath.Join(s.ConfigDir(), "notes.json") {
		t.Errorf("NotesFile = %q", s.NotesFile())
	}
}

func TestSessionValues(t *testing.T) {
	s := session.New(session.WithConfigDir(t.TempDir()))

	if _, ok := s.Value("missing"); ok {
		t.Error("missing value reported present")
	}

	s.SetValue("counter", 3)
	v, ok := s.Value("counter")
	if !ok || v.(int) != 3 {
		t.Errorf("Value = %v, %v", v, ok)
	}
}

func TestSessionNotices(t *testing.T) {
	s := session.New(session.WithConfigDir(t.TempDir()))

	if got := s.DrainNotices(); got != nil {
		t.Errorf("expected no notices, got %v", got)
	}

	s.PushNotice("timer done")
	s.PushNotice("reminder: stand up")

	got := s.DrainNotices()
	if len(got) != 2 || got[0] != "timer done" {
		t.Errorf("DrainNotices = %v", got)
	}
	if got := s.DrainNotices(); got != nil {
		t.Errorf("second drain should be empty, got %v", got)
	}
}

func TestSessionSettingsPersistence(t *testing.T) {
	dir := t.TempDir()
	store, err := config.Open(filepath.Join(dir, "settings.json"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	s := session.New(session.WithConfigDir(dir), session.WithSettings(store))

	if got := s.Setting("search_engine", "duckduckgo"); got != "duckduckgo" {
		t.Errorf("default Setting = %q", got)
	}
	if err := s.SetSetting("search_engine", "startpage"); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}
	if got := s.Setting("search_engine", ""); got != "startpage" {
		t.Errorf("Setting after write = %q", got)
	}
}

func TestSessionWithoutStoreDropsWrites(t *testing.T) {
	s := session.New(session.WithConfigDir(t.TempDir()))

	if err := s.SetSetting("anything", 1); err != nil {
		t.Fatalf("SetSetting without store: %v", err)
	}
	if got := s.Setting("anything", "fallback"); got != "fallback" {
		t.Errorf("Setting = %q, want fallback", got)
	}
}

func TestSessionConcurrentAccess(t *testing.T) {
	s := session.New(session.WithConfigDir(t.TempDir()))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.SetLastCommand("hello")
				_ = s.LastCommand()
				s.PushNotice("n")
				s.DrainNotices()
			}
		}()
	}
	wg.Wait()
}
