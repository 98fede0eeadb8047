package skill_test

import (
	"path/filepath"
	"strings"
	"testing"

	"deskai/internal/config"
	"deskai/internal/dispatch"
	"deskai/internal/session"
	"deskai/internal/skill"
)

func newAppsDispatcher(t *testing.T) (*dispatch.Dispatcher, *session.Session) {
	t.Helper()
	dir := t.TempDir()
	store, err := config.Open(filepath.Join(dir, "settings.json"))
	if err != nil {
		t.Fatal(err)
	}
	reg := dispatch.NewRegistry()
	if _, err := skill.Apps().Register(reg); err != nil {
		t.Fatalf("register apps: %v", err)
	}
	sess := session.New(session.WithConfigDir(dir), session.WithSettings(store))
	return dispatch.New(reg), sess
}

func TestAppsOpenKnownSite(t *testing.T) {
	d, sess := newAppsDispatcher(t)

	got := d.Dispatch("open github", sess)
	if got.Action != dispatch.ActionOpenURL {
		t.Fatalf("action = %q, want open-url", got.Action)
	}
	if got.DataString("url") != "https://github.com" {
		t.Errorf("url = %q", got.DataString("url"))
	}
}

func TestAppsConfiguredAliasWinsOverDefault(t *testing.T) {
	d, sess := newAppsDispatcher(t)
	if err := sess.SetSetting("sites.github", "https://git.internal.example"); err != nil {
		t.Fatal(err)
	}

	got := d.Dispatch("open github", sess)
	if got.DataString("url") != "https://git.internal.example" {
		t.Errorf("url = %q, want configured alias", got.DataString("url"))
	}
}

func TestAppsConfiguredApplication(t *testing.T) {
	d, sess := newAppsDispatcher(t)
	if err := sess.SetSetting("apps.editor", "/usr/bin/vim"); err != nil {
		t.Fatal(err)
	}

	got := d.Dispatch("launch editor", sess)
	if got.Action != dispatch.ActionOpenApp {
		t.Fatalf("action = %q, want open-app", got.Action)
	}
	if got.DataString("app") != "/usr/bin/vim" {
		t.Errorf("app = %q", got.DataString("app"))
	}
}

func TestAppsBareDomain(t *testing.T) {
	d, sess := newAppsDispatcher(t)

	got := d.Dispatch("open example.org", sess)
	if got.DataString("url") != "https://example.org" {
		t.Errorf("url = %q", got.DataString("url"))
	}
}

func TestAppsUnknownFallsBackToSearch(t *testing.T) {
	d, sess := newAppsDispatcher(t)

	got := d.Dispatch("open mystery thing", sess)
	if got.Action != dispatch.ActionOpenURL {
		t.Fatalf("action = %q, want open-url", got.Action)
	}
	if !strings.Contains(got.DataString("url"), "duckduckgo.com") {
		t.Errorf("url = %q, want search fallback", got.DataString("url"))
	}
	if !strings.Contains(got.DataString("url"), "mystery") {
		t.Errorf("url = %q, want query terms", got.DataString("url"))
	}
}
