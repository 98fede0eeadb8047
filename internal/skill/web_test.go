package skill_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"deskai/internal/dispatch"
	"deskai/internal/session"
	"deskai/internal/skill"
)

func TestWikipediaSummaryAndCache(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if r.URL.Path != "/wiki/alan_turing" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `<html><body><div class="mw-parser-output">
			<p></p>
			<p>Alan Turing was an English mathematician and computer scientist.</p>
			<p>He was highly influential in the development of theoretical computer science.</p>
		</div></body></html>`)
	}))
	defer srv.Close()

	reg := dispatch.NewRegistry()
	mod := skill.Web(skill.WithHTTPClient(srv.Client()), skill.WithWikiBase(srv.URL))
	if _, err := mod.Register(reg); err != nil {
		t.Fatal(err)
	}
	d := dispatch.New(reg)
	sess := session.New(session.WithConfigDir(t.TempDir()))

	got := d.Dispatch("wikipedia alan turing", sess)
	if !got.Handled() {
		t.Fatalf("status = %v, err = %v", got.Status, got.Err)
	}
	if !strings.Contains(got.Response, "English mathematician") {
		t.Errorf("summary = %q", got.Response)
	}

	// Second lookup comes from the cache.
	got = d.Dispatch("wikipedia alan turing", sess)
	if hits != 1 {
		t.Errorf("server hits = %d, want 1", hits)
	}
	if v, ok := got.Data["cached"].(bool); !ok || !v {
		t.Errorf("cached flag = %v", got.Data["cached"])
	}
}

func TestWikipediaMissingArticle(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	reg := dispatch.NewRegistry()
	mod := skill.Web(skill.WithHTTPClient(srv.Client()), skill.WithWikiBase(srv.URL))
	if _, err := mod.Register(reg); err != nil {
		t.Fatal(err)
	}

	got := dispatch.New(reg).Dispatch("wikipedia nonexistent topic", session.New(session.WithConfigDir(t.TempDir())))
	if !got.IsError() {
		t.Errorf("status = %v, want error", got.Status)
	}
}

func TestSearchUsesConfiguredEngine(t *testing.T) {
	reg := dispatch.NewRegistry()
	if _, err := skill.Web().Register(reg); err != nil {
		t.Fatal(err)
	}
	d := dispatch.New(reg)
	sess := session.New(session.WithConfigDir(t.TempDir()))

	got := d.Dispatch("search for golang generics", sess)
	if got.Action != dispatch.ActionOpenURL {
		t.Fatalf("action = %q", got.Action)
	}
	if !strings.Contains(got.DataString("url"), "duckduckgo.com") {
		t.Errorf("default engine url = %q", got.DataString("url"))
	}
	if !strings.Contains(got.DataString("url"), "golang+generics") {
		t.Errorf("url = %q, want escaped terms", got.DataString("url"))
	}
}

func TestJokesRotate(t *testing.T) {
	reg := dispatch.NewRegistry()
	if _, err := skill.Web().Register(reg); err != nil {
		t.Fatal(err)
	}
	d := dispatch.New(reg)
	sess := session.New(session.WithConfigDir(t.TempDir()))

	first := d.Dispatch("tell me a joke", sess).Response
	second := d.Dispatch("tell me a joke", sess).Response
	if first == "" || second == "" {
		t.Fatal("empty joke")
	}
	if first == second {
		t.Errorf("jokes did not rotate: %q", first)
	}
}
