package assistant_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"deskai/internal/assistant"
	"deskai/internal/dispatch"
	"deskai/internal/session"
)

// scriptedInput returns its lines in order, then io.EOF.
func scriptedInput(lines ...string) assistant.InputSource {
	i := 0
	return assistant.ListenFunc(func(ctx context.Context) (string, error) {
		if i >= len(lines) {
			return "", io.EOF
		}
		line := lines[i]
		i++
		return line, nil
	})
}

func newTestAssistant(t *testing.T, input assistant.InputSource, opts ...assistant.Option) (*assistant.Assistant, *[]dispatch.Result) {
	t.Helper()

	reg := dispatch.NewRegistry()
	err := reg.Register([]string{"ping"}, func(sess *session.Session, q string) dispatch.Result {
		return dispatch.Reply("pong")
	})
	if err != nil {
		t.Fatal(err)
	}
	err = reg.Register([]string{"exit"}, func(sess *session.Session, q string) dispatch.Result {
		return dispatch.Reply("Shutting down.").WithAction(dispatch.ActionExit)
	}, dispatch.WithExactMatch(), dispatch.WithPriority(100))
	if err != nil {
		t.Fatal(err)
	}
	err = reg.Register([]string{"burn"}, func(sess *session.Session, q string) dispatch.Result {
		return dispatch.Errorf("overheated")
	})
	if err != nil {
		t.Fatal(err)
	}

	var responses []dispatch.Result
	opts = append(opts, assistant.OnResponse(func(r dispatch.Result) {
		responses = append(responses, r)
	}))

	sess := session.New(session.WithUserName("Ada"), session.WithConfigDir(t.TempDir()))
	a := assistant.New(dispatch.New(reg), sess, input, opts...)
	return a, &responses
}

func TestGreetByHour(t *testing.T) {
	cases := []struct {
		hour int
		want string
	}{
		{8, "Good morning"},
		{13, "Good afternoon"},
		{21, "Good evening"},
	}

	for _, tc := range cases {
		clock := func() time.Time {
			return time.Date(2025, 6, 1, tc.hour, 0, 0, 0, time.UTC)
		}
		a, _ := newTestAssistant(t, scriptedInput(), assistant.WithClock(clock))
		got := a.Greet()
		if !strings.HasPrefix(got, tc.want) {
			t.Errorf("Greet() at %d = %q, want prefix %q", tc.hour, got, tc.want)
		}
		if !strings.Contains(got, "Ada") {
			t.Errorf("Greet() = %q, want user name", got)
		}
	}
}

func TestRunDispatchesUntilEOF(t *testing.T) {
	a, responses := newTestAssistant(t, scriptedInput("ping", "", "ping"))

	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Greeting, two pongs (blank line skipped), farewell.
	var texts []string
	for _, r := range *responses {
		texts = append(texts, r.Response)
	}
	if len(texts) != 4 {
		t.Fatalf("responses = %v", texts)
	}
	if texts[1] != "pong" || texts[2] != "pong" {
		t.Errorf("responses = %v", texts)
	}
	if texts[3] != "Goodbye!" {
		t.Errorf("farewell = %q", texts[3])
	}
}

func TestRunStopsOnExitAction(t *testing.T) {
	a, responses := newTestAssistant(t, scriptedInput("exit", "ping"))

	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	for _, r := range *responses {
		if r.Response == "pong" {
			t.Error("loop kept reading after exit action")
		}
	}
	last := (*responses)[len(*responses)-1]
	if last.Response != "Goodbye!" {
		t.Errorf("last response = %q", last.Response)
	}
}

func TestRunUnrecognizedCommand(t *testing.T) {
	a, responses := newTestAssistant(t, scriptedInput("gibberish nobody handles"))

	if err := a.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	found := false
	for _, r := range *responses {
		if strings.Contains(r.Response, "I didn't understand that") {
			found = true
			if !r.IsError() {
				t.Error("fallback response should be error-flagged")
			}
			if !errors.Is(r.Err, dispatch.ErrNoHandler) {
				t.Errorf("fallback err = %v", r.Err)
			}
		}
	}
	if !found {
		t.Errorf("no fallback response in %v", *responses)
	}
}

func TestRunSurvivesHandlerError(t *testing.T) {
	a, responses := newTestAssistant(t, scriptedInput("burn", "ping"))

	if err := a.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	sawFailure, sawPong := false, false
	for _, r := range *responses {
		if strings.Contains(r.Response, "Command failed") {
			sawFailure = true
		}
		if r.Response == "pong" {
			sawPong = true
		}
	}
	if !sawFailure || !sawPong {
		t.Errorf("responses = %v", *responses)
	}
}

func TestRunDrainsNoticesQueuedByHandlers(t *testing.T) {
	reg := dispatch.NewRegistry()
	err := reg.Register([]string{"remind me"}, func(sess *session.Session, q string) dispatch.Result {
		sess.PushNotice("Reminder: stand up")
		return dispatch.Reply("Will do.")
	})
	if err != nil {
		t.Fatal(err)
	}

	var responses []string
	sess := session.New(session.WithConfigDir(t.TempDir()))
	a := assistant.New(dispatch.New(reg), sess, scriptedInput("remind me"),
		assistant.OnResponse(func(r dispatch.Result) {
			responses = append(responses, r.Response)
		}))

	if err := a.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	found := false
	for _, text := range responses {
		if text == "Reminder: stand up" {
			found = true
		}
	}
	if !found {
		t.Errorf("notice not delivered, responses = %v", responses)
	}
}

func TestRunContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	blocking := assistant.ListenFunc(func(ctx context.Context) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})

	a, _ := newTestAssistant(t, blocking)

	done := make(chan error, 1)
	go func() {
		done <- a.Run(ctx)
	}()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}
