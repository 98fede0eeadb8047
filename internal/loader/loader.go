package loader

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"deskai/internal/dispatch"
	"deskai/internal/skill"
	skilllua "deskai/internal/skill/lua"
)

// Module sources.
const (
	SourceBuiltin = "builtin"
	SourceScript  = "script"
)

// reservedName is not loadable as a module; it is kept for a shared
// base script that other scripts may grow to depend on.
const reservedName = "base"

// LoadResult records the outcome of loading one module.
type LoadResult struct {
	// Name is the module name. Always set, even when the module itself
	// never instantiated.
	Name string

	// Module is the loaded module, nil when loading failed before
	// instantiation.
	Module skill.Module

	// Source is SourceBuiltin or SourceScript.
	Source string

	// Handlers is the number of handlers the module registered.
	Handlers int

	// Loaded reports whether the module's handlers are installed.
	Loaded bool

	// Err is the load failure, ErrDisabled for skipped modules.
	Err error
}

// Disabled reports whether the module was skipped by configuration.
func (r LoadResult) Disabled() bool {
	return r.Err == ErrDisabled
}

// Summary aggregates a load pass.
type Summary struct {
	Loaded   int
	Failed   int
	Disabled int
	Handlers int
}

// Loader loads skill modules into a dispatch registry.
type Loader struct {
	registry   *dispatch.Registry
	logger     *slog.Logger
	modules    []skill.Module
	scriptsDir string
	disabled   map[string]struct{}

	mu      sync.Mutex
	results []LoadResult
}

// Option configures a Loader.
type Option func(*Loader)

// WithModules sets the compiled-in modules to load.
func WithModules(modules ...skill.Module) Option {
	return func(l *Loader) {
		l.modules = append(l.modules, modules...)
	}
}

// WithScriptsDir sets the directory scanned for Lua skill scripts.
// A missing directory is not an error; it simply yields no scripts.
func WithScriptsDir(dir string) Option {
	return func(l *Loader) {
		l.scriptsDir = dir
	}
}

// WithDisabled marks module names that must not be loaded.
func WithDisabled(names ...string) Option {
	return func(l *Loader) {
		for _, name := range names {
			name = strings.ToLower(strings.TrimSpace(name))
			if name != "" {
				l.disabled[name] = struct{}{}
			}
		}
	}
}

// WithLogger sets the loader's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New creates a loader targeting the given registry.
func New(registry *dispatch.Registry, opts ...Option) *Loader {
	l := &Loader{
		registry: registry,
		logger:   slog.Default(),
		disabled: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Discover returns the loadable modules sorted by name: the configured
// compiled-in modules plus one script module per .lua file in the
// scripts directory. Names starting with "_" and the reserved base
// name are skipped. Script files that fail to load are returned as
// failed results from LoadAll, not dropped here; discovery only skips
// files the naming rules exclude.
func (l *Loader) Discover() []moduleRef {
	var refs []moduleRef

	for _, mod := range l.modules {
		if skipName(mod.Name()) {
			continue
		}
		refs = append(refs, moduleRef{name: mod.Name(), source: SourceBuiltin, module: mod})
	}

	for _, path := range l.scriptPaths() {
		name := strings.TrimSuffix(filepath.Base(path), ".lua")
		if skipName(name) {
			continue
		}
		refs = append(refs, moduleRef{name: name, source: SourceScript, path: path})
	}

	sort.SliceStable(refs, func(i, j int) bool {
		return refs[i].name < refs[j].name
	})
	return refs
}

// moduleRef is a discovered module before loading. Script modules stay
// as paths until load time so a broken file cannot fail discovery.
type moduleRef struct {
	name   string
	source string
	module skill.Module
	path   string
}

// skipName reports whether the naming rules exclude a module.
func skipName(name string) bool {
	return name == "" || strings.HasPrefix(name, "_") || name == reservedName
}

// scriptPaths lists .lua files in the scripts directory. A missing or
// unreadable directory degrades to no scripts.
func (l *Loader) scriptPaths() []string {
	if l.scriptsDir == "" {
		return nil
	}
	entries, err := os.ReadDir(l.scriptsDir)
	if err != nil {
		if !os.IsNotExist(err) {
			l.logger.Warn("scripts directory unreadable", "dir", l.scriptsDir, "error", err)
		}
		return nil
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".lua") {
			continue
		}
		paths = append(paths, filepath.Join(l.scriptsDir, entry.Name()))
	}
	return paths
}

// LoadAll discovers and loads every module, returning the summary.
// Failures are recorded per module and never abort the pass.
func (l *Loader) LoadAll() Summary {
	refs := l.Discover()

	for _, ref := range refs {
		result := l.loadRef(ref)

		l.mu.Lock()
		l.results = append(l.results, result)
		l.mu.Unlock()

		switch {
		case result.Disabled():
			l.logger.Info("skill disabled", "skill", ref.name)
		case result.Err != nil:
			l.logger.Error("skill failed to load", "skill", ref.name, "source", ref.source, "error", result.Err)
		default:
			l.logger.Info("skill loaded", "skill", ref.name, "source", ref.source, "handlers", result.Handlers)
		}
	}

	summary := l.Summary()
	l.logger.Info("skills loaded",
		"loaded", summary.Loaded,
		"failed", summary.Failed,
		"disabled", summary.Disabled,
		"handlers", summary.Handlers)
	return summary
}

// LoadOne loads a single compiled-in module immediately, recording the
// result. Used for modules registered after startup.
func (l *Loader) LoadOne(mod skill.Module) LoadResult {
	var result LoadResult
	if skipName(mod.Name()) {
		result = LoadResult{Name: mod.Name(), Module: mod, Source: SourceBuiltin, Err: ErrReservedName}
	} else {
		result = l.loadRef(moduleRef{name: mod.Name(), source: SourceBuiltin, module: mod})
	}

	l.mu.Lock()
	l.results = append(l.results, result)
	l.mu.Unlock()
	return result
}

// loadRef loads one discovered module with full isolation: disabled
// modules are never instantiated, script load errors and registration
// panics become per-module errors.
func (l *Loader) loadRef(ref moduleRef) (result LoadResult) {
	result = LoadResult{Name: ref.name, Module: ref.module, Source: ref.source}

	if _, off := l.disabled[ref.name]; off {
		result.Err = ErrDisabled
		return result
	}

	defer func() {
		if r := recover(); r != nil {
			result.Loaded = false
			result.Err = fmt.Errorf("module %s panicked during load: %v", ref.name, r)
		}
	}()

	mod := ref.module
	if mod == nil {
		script, err := skilllua.LoadScript(ref.path)
		if err != nil {
			result.Err = err
			return result
		}
		mod = script
		result.Module = mod
	}

	n, err := mod.Register(l.registry)
	result.Handlers = n
	if err != nil {
		result.Err = fmt.Errorf("module %s: %w", ref.name, err)
		return result
	}

	result.Loaded = true
	return result
}

// Results returns a copy of all recorded load results.
func (l *Loader) Results() []LoadResult {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LoadResult, len(l.results))
	copy(out, l.results)
	return out
}

// Summary aggregates the recorded results.
func (l *Loader) Summary() Summary {
	l.mu.Lock()
	defer l.mu.Unlock()

	var s Summary
	for _, r := range l.results {
		switch {
		case r.Disabled():
			s.Disabled++
		case r.Err != nil:
			s.Failed++
		default:
			s.Loaded++
			s.Handlers += r.Handlers
		}
	}
	return s
}

// LoadedNames returns the names of successfully loaded modules.
func (l *Loader) LoadedNames() []string {
	return l.names(func(r LoadResult) bool { return r.Loaded })
}

// FailedNames returns the names of modules that failed to load.
func (l *Loader) FailedNames() []string {
	return l.names(func(r LoadResult) bool { return r.Err != nil && !r.Disabled() })
}

// DisabledNames returns the names of modules skipped by configuration.
func (l *Loader) DisabledNames() []string {
	return l.names(func(r LoadResult) bool { return r.Disabled() })
}

func (l *Loader) names(keep func(LoadResult) bool) []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	var names []string
	for _, r := range l.results {
		if keep(r) {
			names = append(names, r.Name)
		}
	}
	return names
}
