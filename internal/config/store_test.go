package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"deskai/internal/config"
)

func TestStoreMissingFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")

	store, err := config.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if got := store.String("user_name", "User"); got != "User" {
		t.Errorf("expected default, got %q", got)
	}
}

func TestStoreSetGetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")

	store, err := config.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if err := store.Set("user_name", "Ada"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := store.Set("apps.browser", "firefox"); err != nil {
		t.Fatalf("Set nested: %v", err)
	}

	if got := store.String("user_name", ""); got != "Ada" {
		t.Errorf("user_name = %q, want Ada", got)
	}
	if got := store.String("apps.browser", ""); got != "firefox" {
		t.Errorf("apps.browser = %q, want firefox", got)
	}

	// A fresh store must see persisted values.
	reopened, err := config.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if got := reopened.String("apps.browser", ""); got != "firefox" {
		t.Errorf("persisted apps.browser = %q, want firefox", got)
	}
}

func TestStorePreservesForeignKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	seed := `{"written_by_hand": {"keep": true}, "voice_rate": 175}`
	if err := os.WriteFile(path, []byte(seed), 0o644); err != nil {
		t.Fatal(err)
	}

	store, err := config.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.Set("user_name", "Ada"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if !store.Get("written_by_hand.keep").Bool() {
		t.Error("hand-written key lost after Set")
	}
	if got := store.Int("voice_rate", 0); got != 175 {
		t.Errorf("voice_rate = %d, want 175", got)
	}
}

func TestStoreStrings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	seed := `{"disabled_skills": ["notes", "web"]}`
	if err := os.WriteFile(path, []byte(seed), 0o644); err != nil {
		t.Fatal(err)
	}

	store, err := config.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	got := store.Strings("disabled_skills")
	if len(got) != 2 || got[0] != "notes" || got[1] != "web" {
		t.Errorf("Strings = %v, want [notes web]", got)
	}

	set := store.StringSet("disabled_skills")
	if _, ok := set["web"]; !ok {
		t.Error("StringSet missing web")
	}
	if got := store.Strings("missing"); len(got) != 0 {
		t.Errorf("missing key Strings = %v, want empty", got)
	}
}

func TestStoreRejectsInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := config.Open(path); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestStoreDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")

	store, err := config.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.Set("debug", true); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := store.Delete("debug"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if store.Get("debug").Exists() {
		t.Error("debug still present after Delete")
	}
}

func TestOptionsFromEnv(t *testing.T) {
	t.Setenv("DESKAI_CONFIG_DIR", "/tmp/deskai-test")
	t.Setenv("DESKAI_LOG_LEVEL", "debug")
	t.Setenv("DESKAI_DISABLED_SKILLS", "notes,web")

	opts, err := config.OptionsFromEnv()
	if err != nil {
		t.Fatalf("OptionsFromEnv: %v", err)
	}

	if opts.ConfigDir != "/tmp/deskai-test" {
		t.Errorf("ConfigDir = %q", opts.ConfigDir)
	}
	if opts.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", opts.LogLevel)
	}
	if len(opts.DisabledSkills) != 2 {
		t.Errorf("DisabledSkills = %v", opts.DisabledSkills)
	}
	if opts.SettingsPath() != filepath.Join("/tmp/deskai-test", "settings.json") {
		t.Errorf("SettingsPath = %q", opts.SettingsPath())
	}
}
