package dispatch_test

import (
	"testing"

	"deskai/internal/dispatch"
)

func TestResultConstructors(t *testing.T) {
	r := dispatch.Reply("hello")
	if !r.Handled() || r.Response != "hello" {
		t.Errorf("Reply = %+v", r)
	}

	r = dispatch.Replyf("hi %s", "Ada")
	if r.Response != "hi Ada" {
		t.Errorf("Replyf = %q", r.Response)
	}

	r = dispatch.OptOut()
	if !r.IsOptOut() {
		t.Errorf("OptOut status = %v", r.Status)
	}

	r = dispatch.Errorf("bad %d", 7)
	if !r.IsError() || r.Err == nil {
		t.Errorf("Errorf = %+v", r)
	}
	if r.Response == "" {
		t.Error("error result should carry a human-readable response")
	}

	if !dispatch.NoMatch().IsNoMatch() {
		t.Error("NoMatch status wrong")
	}
}

func TestResultBuilders(t *testing.T) {
	r := dispatch.Reply("opening").
		WithAction(dispatch.ActionOpenURL).
		WithData("url", "https://example.com")

	if r.Action != dispatch.ActionOpenURL {
		t.Errorf("Action = %q", r.Action)
	}
	if r.DataString("url") != "https://example.com" {
		t.Errorf("DataString = %q", r.DataString("url"))
	}
	if r.DataString("missing") != "" {
		t.Error("missing data key should be empty")
	}
}

func TestResultEmpty(t *testing.T) {
	if !(dispatch.Result{Status: dispatch.StatusHandled}).Empty() {
		t.Error("bare handled result should be empty")
	}
	if dispatch.Reply("x").Empty() {
		t.Error("reply should not be empty")
	}
	if (dispatch.Result{Status: dispatch.StatusHandled, Action: dispatch.ActionExit}).Empty() {
		t.Error("action-only result should not be empty")
	}
}

func TestStatusStrings(t *testing.T) {
	cases := map[dispatch.Status]string{
		dispatch.StatusHandled: "handled",
		dispatch.StatusOptOut:  "opt-out",
		dispatch.StatusError:   "error",
		dispatch.StatusNoMatch: "no-match",
	}
	for status, want := range cases {
		if got := status.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", status, got, want)
		}
	}
}
