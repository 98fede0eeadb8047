package dispatch

import "fmt"

// Status indicates the outcome of a dispatch or handler invocation.
type Status uint8

const (
	// StatusHandled indicates the handler produced a concrete outcome.
	StatusHandled Status = iota
	// StatusOptOut indicates the handler declined despite a pattern match.
	StatusOptOut
	// StatusError indicates the handler failed.
	StatusError
	// StatusNoMatch indicates no registered pattern matched the query.
	StatusNoMatch
)

// String returns a string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusHandled:
		return "handled"
	case StatusOptOut:
		return "opt-out"
	case StatusError:
		return "error"
	case StatusNoMatch:
		return "no-match"
	default:
		return "unknown"
	}
}

// Action is a control-flow token a handler hands to the orchestrator.
type Action string

// Actions understood by the front-end.
const (
	// ActionExit asks the assistant loop to terminate.
	ActionExit Action = "exit"
	// ActionOpenURL asks the front-end to open the URL in Data["url"].
	ActionOpenURL Action = "open-url"
	// ActionOpenApp asks the front-end to launch the app in Data["app"].
	ActionOpenApp Action = "open-app"
)

// Result is the normalized outcome of handling a query.
type Result struct {
	// Status indicates how the dispatch concluded.
	Status Status

	// Response is the human-readable reply text.
	Response string

	// Err holds the failure when Status is StatusError.
	Err error

	// Action is an optional control-flow token for the orchestrator.
	Action Action

	// Data holds handler-specific structured payload for collaborators.
	Data map[string]any
}

// Handled reports whether the result carries a concrete outcome.
func (r Result) Handled() bool {
	return r.Status == StatusHandled
}

// IsError reports whether the result is an error outcome.
func (r Result) IsError() bool {
	return r.Status == StatusError
}

// IsNoMatch reports whether no pattern matched the query.
func (r Result) IsNoMatch() bool {
	return r.Status == StatusNoMatch
}

// IsOptOut reports whether the handler declined the match.
func (r Result) IsOptOut() bool {
	return r.Status == StatusOptOut
}

// Empty reports whether a handled result carries no response, action,
// or data. The dispatcher treats such results as opt-outs.
func (r Result) Empty() bool {
	return r.Response == "" && r.Action == "" && len(r.Data) == 0
}

// Reply creates a handled result with a response message.
func Reply(msg string) Result {
	return Result{Status: StatusHandled, Response: msg}
}

// Replyf creates a handled result with a formatted response message.
func Replyf(format string, args ...any) Result {
	return Result{Status: StatusHandled, Response: fmt.Sprintf(format, args...)}
}

// OptOut creates an opt-out result: the handler recognized the pattern
// but declines, letting lower-priority handlers try.
func OptOut() Result {
	return Result{Status: StatusOptOut}
}

// Error creates an error result.
func Error(err error) Result {
	return Result{Status: StatusError, Err: err, Response: fmt.Sprintf("Command failed: %v", err)}
}

// Errorf creates an error result with a formatted message.
func Errorf(format string, args ...any) Result {
	return Error(fmt.Errorf(format, args...))
}

// NoMatch creates a no-match result. Returned by the dispatcher, never
// by handlers.
func NoMatch() Result {
	return Result{Status: StatusNoMatch}
}

// WithAction returns a copy of the result carrying an action token.
func (r Result) WithAction(action Action) Result {
	r.Action = action
	return r
}

// WithData returns a copy of the result with a data entry added.
func (r Result) WithData(key string, value any) Result {
	if r.Data == nil {
		r.Data = make(map[string]any)
	}
	r.Data[key] = value
	return r
}

// DataString retrieves a string from the result data.
func (r Result) DataString(key string) string {
	if v, ok := r.Data[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
