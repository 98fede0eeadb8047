// Package skill defines the loadable skill module contract and the
// built-in skill modules.
//
// A module is an independently loadable unit that registers zero or
// more command handlers when given a registry. Modules report how many
// handlers they registered; the loader uses that count for its summary
// instead of introspecting the registry.
package skill

import (
	"deskai/internal/dispatch"
)

// Module is an independently loadable unit of command handlers.
type Module interface {
	// Name is the module's unique, lower-case identifier.
	Name() string

	// Register installs the module's handlers into the registry and
	// returns the number of handlers registered.
	Register(reg *dispatch.Registry) (int, error)
}

// SetupFunc installs a module's handlers and returns the count.
type SetupFunc func(reg *dispatch.Registry) (int, error)

// funcModule adapts a name and setup function to Module.
type funcModule struct {
	name  string
	setup SetupFunc
}

// New builds a Module from a name and setup function.
func New(name string, setup SetupFunc) Module {
	return &funcModule{name: name, setup: setup}
}

func (m *funcModule) Name() string {
	return m.name
}

func (m *funcModule) Register(reg *dispatch.Registry) (int, error) {
	return m.setup(reg)
}

// Builtins returns the compiled-in skill modules in no particular
// order; the loader sorts modules by name before loading.
func Builtins() []Module {
	return []Module{
		Calculator(),
		Clock(),
		Sysinfo(),
		Profile(),
		Notes(),
		Reminders(),
		Web(),
		Apps(),
		Files(),
		Diagnostics(),
	}
}
