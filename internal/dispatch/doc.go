// Package dispatch routes free-text queries to registered command
// handlers.
//
// Skills register handlers with trigger patterns, a priority, and a
// match mode. Dispatch scans registrations in priority order (ties keep
// registration order), invokes the first handler whose pattern matches,
// and normalizes the outcome. A handler may opt out of a match, in
// which case scanning continues as if the registration never matched;
// a handler that fails terminates the dispatch with an error outcome.
//
// The registry is append-only for the life of the process: skills are
// registered during startup loading and never removed.
package dispatch
