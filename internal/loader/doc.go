// Package loader discovers skill modules and installs their handlers.
//
// Modules come from two sources: compiled-in skills and Lua scripts in
// the scripts directory. Loading is isolated per module: one module's
// failure (including a panic in its registration code) records an
// error for that module and never prevents the others from loading.
package loader
