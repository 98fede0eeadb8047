// Package config provides the persisted settings store and environment
// option overrides for the assistant.
//
// Settings live in a single settings.json document. Reads go through
// gjson path lookups and writes through sjson so that keys written by
// other tools (or by hand) survive untouched. The store is safe for
// concurrent use.
package config
