package skill

import (
	"net/url"
	"strings"

	"deskai/internal/dispatch"
	"deskai/internal/session"
)

// defaultSites are well-known site aliases, overridable through the
// "sites" settings table.
var defaultSites = map[string]string{
	"youtube": "https://www.youtube.com",
	"gmail":   "https://mail.google.com",
	"github":  "https://github.com",
	"maps":    "https://maps.google.com",
	"news":    "https://news.ycombinator.com",
}

// Apps resolves "open X" commands against configured app and site
// aliases. The single open handler owns the whole intent: site names
// are resolved inside it rather than registered as separate patterns,
// so there is exactly one precedence rule for overlapping "open"
// queries.
func Apps() Module {
	return New("apps", func(reg *dispatch.Registry) (int, error) {
		err := reg.Register(
			[]string{"open", "launch", "start"},
			cmdOpen,
			dispatch.WithPriority(20),
		)
		if err != nil {
			return 0, err
		}
		return 1, nil
	})
}

func cmdOpen(sess *session.Session, query string) dispatch.Result {
	q := strings.ToLower(query)

	target := ""
	for _, marker := range []string{"open", "launch", "start"} {
		if idx := strings.Index(q, marker); idx >= 0 {
			target = strings.TrimSpace(q[idx+len(marker):])
			break
		}
	}
	if target == "" {
		return dispatch.Reply("What should I open?")
	}

	// 1. Configured site aliases, then the built-in table. Launching is
	// the front-end's job; the skill only resolves the target.
	if u := sess.Setting("sites."+settingKey(target), ""); u != "" {
		return openURL(target, u)
	}
	if u, ok := defaultSites[target]; ok {
		return openURL(target, u)
	}

	// 2. Configured application aliases.
	if cmd := sess.Setting("apps."+settingKey(target), ""); cmd != "" {
		return dispatch.Replyf("Opening %s.", target).
			WithAction(dispatch.ActionOpenApp).
			WithData("app", cmd)
	}

	// 3. Bare domains pass straight through.
	if strings.Contains(target, ".") && !strings.Contains(target, " ") {
		return openURL(target, "https://"+target)
	}

	// 4. Unknown target: fall back to a web search for it.
	engine := sess.Setting("search_engine", "duckduckgo")
	prefix, ok := searchEngines[engine]
	if !ok {
		prefix = searchEngines["duckduckgo"]
	}
	return dispatch.Replyf("I don't know %q; searching for it instead.", target).
		WithAction(dispatch.ActionOpenURL).
		WithData("url", prefix+url.QueryEscape(target))
}

func openURL(name, u string) dispatch.Result {
	return dispatch.Replyf("Opening %s.", name).
		WithAction(dispatch.ActionOpenURL).
		WithData("url", u)
}

// settingKey makes a spoken name safe as a gjson path segment.
func settingKey(name string) string {
	return strings.ReplaceAll(name, " ", "_")
}
