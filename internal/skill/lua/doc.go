// Package lua hosts user-provided Lua skill scripts.
//
// Each script runs in its own sandboxed interpreter state with only the
// safe standard libraries opened. At load time the script calls
// deskai.register to declare command handlers; the host adapts those
// registrations to the skill module contract so scripts load exactly
// like compiled-in skills.
//
// Lua states are not goroutine-safe, so every call into a script is
// serialized by a per-script mutex and wrapped in panic recovery. A
// misbehaving script can fail its own commands but never the host.
package lua
