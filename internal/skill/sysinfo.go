package skill

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"deskai/internal/dispatch"
	"deskai/internal/session"
)

// Sysinfo reports host facts and owns the exit command. Shutdown,
// restart, and similar OS power controls are deliberately not handled
// here; process control belongs to the platform collaborator.
func Sysinfo() Module {
	return New("sysinfo", func(reg *dispatch.Registry) (int, error) {
		count := 0

		if err := reg.Register([]string{"system info"}, cmdSystemInfo, dispatch.WithPriority(10)); err != nil {
			return count, err
		}
		count++

		// Exact match keeps "exit" from hijacking queries that merely
		// contain the word, like "how do I exit vim".
		err := reg.Register(
			[]string{"exit", "quit", "goodbye", "stop"},
			cmdExit,
			dispatch.WithPriority(100),
			dispatch.WithExactMatch(),
		)
		if err != nil {
			return count, err
		}
		count++

		return count, nil
	})
}

func cmdSystemInfo(sess *session.Session, query string) dispatch.Result {
	hostname, _ := os.Hostname()

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	var b strings.Builder
	fmt.Fprintf(&b, "Host %s running %s/%s with %d CPUs. ",
		hostname, runtime.GOOS, runtime.GOARCH, runtime.NumCPU())
	fmt.Fprintf(&b, "Assistant is using %d MB of memory.",
		mem.Alloc/(1024*1024))

	return dispatch.Reply(b.String()).
		WithData("os", runtime.GOOS).
		WithData("arch", runtime.GOARCH).
		WithData("cpus", runtime.NumCPU())
}

func cmdExit(sess *session.Session, query string) dispatch.Result {
	return dispatch.Reply("Shutting down.").WithAction(dispatch.ActionExit)
}
