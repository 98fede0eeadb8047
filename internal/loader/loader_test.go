package loader_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"deskai/internal/dispatch"
	"deskai/internal/loader"
	"deskai/internal/session"
	"deskai/internal/skill"
)

func countingModule(name string, patterns ...string) skill.Module {
	return skill.New(name, func(reg *dispatch.Registry) (int, error) {
		for _, p := range patterns {
			if err := reg.Register([]string{p}, func(sess *session.Session, q string) dispatch.Result {
				return dispatch.Reply("ok from " + name)
			}); err != nil {
				return 0, err
			}
		}
		return len(patterns), nil
	})
}

func failingModule(name string) skill.Module {
	return skill.New(name, func(reg *dispatch.Registry) (int, error) {
		return 0, errors.New("setup exploded")
	})
}

func panickingModule(name string) skill.Module {
	return skill.New(name, func(reg *dispatch.Registry) (int, error) {
		panic("registration panic")
	})
}

func TestLoadAllIsolatesFailures(t *testing.T) {
	reg := dispatch.NewRegistry()
	l := loader.New(reg, loader.WithModules(
		countingModule("alpha", "alpha one", "alpha two"),
		failingModule("beta"),
		countingModule("gamma", "gamma one"),
	))

	summary := l.LoadAll()
	if summary.Loaded != 2 {
		t.Errorf("Loaded = %d, want 2", summary.Loaded)
	}
	if summary.Failed != 1 {
		t.Errorf("Failed = %d, want 1", summary.Failed)
	}
	if summary.Handlers != 3 {
		t.Errorf("Handlers = %d, want 3", summary.Handlers)
	}
	if reg.Count() != 3 {
		t.Errorf("registry count = %d, want 3", reg.Count())
	}

	failed := l.FailedNames()
	if len(failed) != 1 || failed[0] != "beta" {
		t.Errorf("FailedNames = %v", failed)
	}
	loaded := l.LoadedNames()
	if len(loaded) != 2 || loaded[0] != "alpha" || loaded[1] != "gamma" {
		t.Errorf("LoadedNames = %v", loaded)
	}
}

func TestLoadAllRecoversFromPanic(t *testing.T) {
	reg := dispatch.NewRegistry()
	l := loader.New(reg, loader.WithModules(
		panickingModule("bad"),
		countingModule("good", "good day"),
	))

	summary := l.LoadAll()
	if summary.Loaded != 1 || summary.Failed != 1 {
		t.Fatalf("summary = %+v", summary)
	}

	for _, r := range l.Results() {
		if r.Name != "bad" {
			continue
		}
		if r.Err == nil || r.Loaded {
			t.Errorf("panicking module result = %+v", r)
		}
	}
}

func TestDisabledModuleNeverInvoked(t *testing.T) {
	invoked := false
	mod := skill.New("spy", func(reg *dispatch.Registry) (int, error) {
		invoked = true
		return 0, nil
	})

	reg := dispatch.NewRegistry()
	l := loader.New(reg,
		loader.WithModules(mod, countingModule("other", "other thing")),
		loader.WithDisabled("spy"),
	)

	summary := l.LoadAll()
	if invoked {
		t.Error("disabled module's Register was invoked")
	}
	if summary.Disabled != 1 || summary.Loaded != 1 {
		t.Errorf("summary = %+v", summary)
	}

	for _, r := range l.Results() {
		if r.Name == "spy" {
			if !errors.Is(r.Err, loader.ErrDisabled) {
				t.Errorf("spy err = %v, want ErrDisabled", r.Err)
			}
		}
	}
	disabled := l.DisabledNames()
	if len(disabled) != 1 || disabled[0] != "spy" {
		t.Errorf("DisabledNames = %v", disabled)
	}
}

func TestDiscoverOrderAndNamingRules(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"zeta.lua", "_draft.lua", "base.lua", "echo.lua", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(`deskai.register("x", function(q) return "x" end)`), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	reg := dispatch.NewRegistry()
	l := loader.New(reg,
		loader.WithModules(countingModule("mike", "mike check"), countingModule("_hidden", "never")),
		loader.WithScriptsDir(dir),
	)

	summary := l.LoadAll()
	// mike + echo + zeta; _draft, _hidden, base and notes.txt excluded.
	if summary.Loaded != 3 {
		t.Fatalf("Loaded = %d, want 3 (results %v)", summary.Loaded, l.Results())
	}

	loaded := l.LoadedNames()
	want := []string{"echo", "mike", "zeta"}
	for i, name := range want {
		if loaded[i] != name {
			t.Fatalf("load order = %v, want %v", loaded, want)
		}
	}
}

func TestBrokenScriptIsIsolated(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "broken.lua"), []byte("not lua ("), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "fine.lua"), []byte(`deskai.register("fine", function(q) return "ok" end)`), 0o644); err != nil {
		t.Fatal(err)
	}

	reg := dispatch.NewRegistry()
	l := loader.New(reg, loader.WithScriptsDir(dir))

	summary := l.LoadAll()
	if summary.Loaded != 1 || summary.Failed != 1 {
		t.Fatalf("summary = %+v", summary)
	}

	got := dispatch.New(reg).Dispatch("fine", session.New())
	if got.Response != "ok" {
		t.Errorf("script handler = %q", got.Response)
	}
}

func TestMissingScriptsDirDegrades(t *testing.T) {
	reg := dispatch.NewRegistry()
	l := loader.New(reg,
		loader.WithModules(countingModule("only", "only one")),
		loader.WithScriptsDir(filepath.Join(t.TempDir(), "does-not-exist")),
	)

	summary := l.LoadAll()
	if summary.Loaded != 1 || summary.Failed != 0 {
		t.Errorf("summary = %+v", summary)
	}
}

func TestLoadOne(t *testing.T) {
	reg := dispatch.NewRegistry()
	l := loader.New(reg)

	result := l.LoadOne(countingModule("late", "late addition"))
	if !result.Loaded || result.Handlers != 1 {
		t.Errorf("result = %+v", result)
	}
	if reg.Count() != 1 {
		t.Errorf("registry count = %d", reg.Count())
	}

	result = l.LoadOne(countingModule("base", "nope"))
	if !errors.Is(result.Err, loader.ErrReservedName) {
		t.Errorf("reserved name err = %v", result.Err)
	}
}
