package skill

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"deskai/internal/dispatch"
	"deskai/internal/session"
)

// Diagnostics answers help and status queries. The handlers close over
// the registry they are registered into, so the help listing always
// reflects the final vocabulary regardless of load order.
func Diagnostics() Module {
	started := time.Now()

	return New("diagnostics", func(reg *dispatch.Registry) (int, error) {
		count := 0

		help := func(sess *session.Session, query string) dispatch.Result {
			patterns := reg.Patterns()
			var b strings.Builder
			fmt.Fprintf(&b, "I understand %d commands:\n", len(patterns))
			for _, p := range patterns {
				fmt.Fprintf(&b, "  - %s\n", p)
			}
			return dispatch.Reply(strings.TrimRight(b.String(), "\n")).
				WithData("patterns", patterns)
		}
		if err := reg.Register([]string{"list commands", "show commands", "available commands", "help"}, help, dispatch.WithPriority(100)); err != nil {
			return count, err
		}
		count++

		status := func(sess *session.Session, query string) dispatch.Result {
			var mem runtime.MemStats
			runtime.ReadMemStats(&mem)
			uptime := time.Since(started).Round(time.Second)
			return dispatch.Replyf(
				"All systems go. Up %s, %d handlers registered, %d goroutines, %d MB in use.",
				uptime, reg.Count(), runtime.NumGoroutine(), mem.Alloc/(1024*1024)).
				WithData("uptime_seconds", int(uptime.Seconds())).
				WithData("handlers", reg.Count())
		}
		if err := reg.Register([]string{"system status", "status", "diagnostics"}, status, dispatch.WithPriority(50)); err != nil {
			return count, err
		}
		count++

		debug := func(sess *session.Session, query string) dispatch.Result {
			q := strings.ToLower(query)
			switch {
			case strings.Contains(q, "disable"), strings.Contains(q, "off"):
				sess.SetDebug(false)
				return dispatch.Reply("Debug mode disabled.")
			default:
				sess.SetDebug(true)
				return dispatch.Reply("Debug mode enabled.")
			}
		}
		if err := reg.Register([]string{"debug mode", "enable debug", "disable debug"}, debug, dispatch.WithPriority(50)); err != nil {
			return count, err
		}
		count++

		return count, nil
	})
}
