package skill

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	lru "github.com/hashicorp/golang-lru/v2"

	"deskai/internal/dispatch"
	"deskai/internal/session"
)

const defaultWikiBase = "https://en.wikipedia.org"

// searchEngines maps the search_engine setting to a query URL prefix.
var searchEngines = map[string]string{
	"duckduckgo": "https://duckduckgo.com/?q=",
	"google":     "https://www.google.com/search?q=",
	"bing":       "https://www.bing.com/search?q=",
	"startpage":  "https://www.startpage.com/sp/search?query=",
}

var jokes = []string{
	"Why do programmers prefer dark mode? Because light attracts bugs.",
	"There are only 10 kinds of people: those who understand binary and those who don't.",
	"I would tell you a UDP joke, but you might not get it.",
	"A SQL query walks into a bar, walks up to two tables and asks: may I join you?",
	"Why did the developer go broke? Because they used up all their cache.",
}

// web answers lookup queries. Opening URLs is the front-end's job; the
// skill returns open-url actions with the target in the data payload.
type web struct {
	client   *http.Client
	cache    *lru.Cache[string, string]
	wikiBase string
	jokeIdx  int
}

// WebOption configures the web skill.
type WebOption func(*web)

// WithHTTPClient sets the HTTP client used for lookups.
func WithHTTPClient(client *http.Client) WebOption {
	return func(w *web) {
		w.client = client
	}
}

// WithWikiBase overrides the wikipedia base URL.
func WithWikiBase(base string) WebOption {
	return func(w *web) {
		w.wikiBase = base
	}
}

// Web provides wikipedia summaries, web searches, and jokes.
func Web(opts ...WebOption) Module {
	cache, _ := lru.New[string, string](64)
	w := &web{
		client:   &http.Client{Timeout: 10 * time.Second},
		cache:    cache,
		wikiBase: defaultWikiBase,
	}
	for _, opt := range opts {
		opt(w)
	}

	return New("web", func(reg *dispatch.Registry) (int, error) {
		count := 0

		if err := reg.Register([]string{"wikipedia", "wiki"}, w.cmdWikipedia, dispatch.WithPriority(10)); err != nil {
			return count, err
		}
		count++

		if err := reg.Register([]string{"search for", "search", "google"}, w.cmdSearch, dispatch.WithPriority(5)); err != nil {
			return count, err
		}
		count++

		if err := reg.Register([]string{"joke", "tell me a joke", "make me laugh"}, w.cmdJoke, dispatch.WithPriority(10)); err != nil {
			return count, err
		}
		count++

		if err := reg.Register([]string{"search youtube", "youtube search", "play on youtube"}, w.cmdYoutube, dispatch.WithPriority(10)); err != nil {
			return count, err
		}
		count++

		return count, nil
	})
}

func (w *web) cmdWikipedia(sess *session.Session, query string) dispatch.Result {
	q := strings.ToLower(query)

	topic := ""
	for _, marker := range []string{"wikipedia", "wiki"} {
		if idx := strings.Index(q, marker); idx >= 0 {
			topic = strings.TrimSpace(q[idx+len(marker):])
			break
		}
	}
	topic = strings.TrimPrefix(topic, "for ")
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return dispatch.Reply("What should I look up? Try: wikipedia alan turing.")
	}

	if summary, ok := w.cache.Get(topic); ok {
		return dispatch.Reply(summary).WithData("topic", topic).WithData("cached", true)
	}

	summary, err := w.fetchSummary(topic)
	if err != nil {
		return dispatch.Errorf("wikipedia lookup failed: %v", err)
	}

	w.cache.Add(topic, summary)
	return dispatch.Reply(summary).WithData("topic", topic)
}

// fetchSummary scrapes the first paragraphs of the article page.
func (w *web) fetchSummary(topic string) (string, error) {
	title := strings.ReplaceAll(topic, " ", "_")
	pageURL := fmt.Sprintf("%s/wiki/%s", w.wikiBase, url.PathEscape(title))

	resp, err := w.client.Get(pageURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("no article for %q (status %d)", topic, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	doc.Find("div.mw-parser-output > p").EachWithBreak(func(i int, p *goquery.Selection) bool {
		text := strings.TrimSpace(p.Text())
		if text == "" {
			return true
		}
		b.WriteString(text)
		return b.Len() < 400 // roughly two spoken sentences
	})

	summary := strings.TrimSpace(b.String())
	if summary == "" {
		return "", fmt.Errorf("no readable summary for %q", topic)
	}
	if len(summary) > 600 {
		summary = summary[:600] + "..."
	}
	return summary, nil
}

func (w *web) cmdSearch(sess *session.Session, query string) dispatch.Result {
	q := strings.ToLower(query)

	terms := ""
	for _, marker := range []string{"search for", "google", "search"} {
		if idx := strings.Index(q, marker); idx >= 0 {
			terms = strings.TrimSpace(q[idx+len(marker):])
			break
		}
	}
	if terms == "" {
		return dispatch.Reply("What should I search for?")
	}

	engine := sess.Setting("search_engine", "duckduckgo")
	prefix, ok := searchEngines[engine]
	if !ok {
		prefix = searchEngines["duckduckgo"]
	}

	target := prefix + url.QueryEscape(terms)
	return dispatch.Replyf("Searching for %s.", terms).
		WithAction(dispatch.ActionOpenURL).
		WithData("url", target)
}

func (w *web) cmdJoke(sess *session.Session, query string) dispatch.Result {
	joke := jokes[w.jokeIdx%len(jokes)]
	w.jokeIdx++
	return dispatch.Reply(joke)
}

func (w *web) cmdYoutube(sess *session.Session, query string) dispatch.Result {
	q := strings.ToLower(query)

	terms := ""
	for _, marker := range []string{"search youtube for", "search youtube", "youtube search for", "youtube search", "play on youtube"} {
		if idx := strings.Index(q, marker); idx >= 0 {
			terms = strings.TrimSpace(q[idx+len(marker):])
			break
		}
	}
	if terms == "" {
		return dispatch.Reply("What should I look for on YouTube?")
	}

	target := "https://www.youtube.com/results?search_query=" + url.QueryEscape(terms)
	return dispatch.Replyf("Searching YouTube for %s.", terms).
		WithAction(dispatch.ActionOpenURL).
		WithData("url", target)
}
