package skill

import (
	"fmt"
	"sort"
	"strings"

	"deskai/internal/dispatch"
	"deskai/internal/session"
)

// Profile handles the user's identity and persisted preferences.
func Profile() Module {
	return New("profile", func(reg *dispatch.Registry) (int, error) {
		count := 0

		// Narrow pattern at a higher priority than the calculator's
		// broad "what is"; the calculator opts out of non-arithmetic
		// queries, but this keeps the name lookup from ever reaching it.
		if err := reg.Register([]string{"what is my name", "who am i"}, cmdWhoAmI, dispatch.WithPriority(60)); err != nil {
			return count, err
		}
		count++

		if err := reg.Register([]string{"my name is", "call me"}, cmdSetName, dispatch.WithPriority(60)); err != nil {
			return count, err
		}
		count++

		if err := reg.Register([]string{"show settings", "view settings", "my settings"}, cmdShowSettings, dispatch.WithPriority(10)); err != nil {
			return count, err
		}
		count++

		if err := reg.Register([]string{"set preference", "set setting", "change setting"}, cmdSetPreference, dispatch.WithPriority(15)); err != nil {
			return count, err
		}
		count++

		if err := reg.Register([]string{"reload config", "refresh config", "reload settings"}, cmdReloadConfig, dispatch.WithPriority(10)); err != nil {
			return count, err
		}
		count++

		return count, nil
	})
}

func cmdWhoAmI(sess *session.Session, query string) dispatch.Result {
	return dispatch.Replyf("Your name is %s.", sess.UserName())
}

func cmdSetName(sess *session.Session, query string) dispatch.Result {
	q := strings.ToLower(query)

	name := ""
	for _, marker := range []string{"my name is", "call me"} {
		if idx := strings.Index(q, marker); idx >= 0 {
			name = strings.TrimSpace(query[idx+len(marker):])
			break
		}
	}
	if name == "" {
		return dispatch.Errorf("I did not catch the name")
	}

	// Title-case the first letter only; names keep their own casing
	// beyond that.
	name = strings.ToUpper(name[:1]) + name[1:]

	sess.SetUserName(name)
	if err := sess.SetSetting("user_name", name); err != nil {
		return dispatch.Errorf("could not save your name: %v", err)
	}
	return dispatch.Replyf("Nice to meet you, %s.", name)
}

func cmdShowSettings(sess *session.Session, query string) dispatch.Result {
	snapshot := sess.Snapshot()

	keys := make([]string, 0, len(snapshot))
	for k := range snapshot {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("Current settings:\n")
	for _, k := range keys {
		fmt.Fprintf(&b, "  %s: %v\n", k, snapshot[k])
	}

	return dispatch.Reply(strings.TrimRight(b.String(), "\n")).
		WithData("settings", snapshot)
}

// cmdSetPreference parses "set preference <key> to <value>".
func cmdSetPreference(sess *session.Session, query string) dispatch.Result {
	q := strings.ToLower(query)

	rest := ""
	for _, marker := range []string{"set preference", "set setting", "change setting"} {
		if idx := strings.Index(q, marker); idx >= 0 {
			rest = strings.TrimSpace(q[idx+len(marker):])
			break
		}
	}

	key, value, found := strings.Cut(rest, " to ")
	if !found {
		return dispatch.Reply("Say it like: set preference search engine to duckduckgo.")
	}

	key = strings.ReplaceAll(strings.TrimSpace(key), " ", "_")
	value = strings.TrimSpace(value)
	if key == "" || value == "" {
		return dispatch.Errorf("preference key or value missing")
	}

	if err := sess.SetSetting(key, value); err != nil {
		return dispatch.Errorf("could not save preference: %v", err)
	}
	return dispatch.Replyf("Saved %s as %s.", strings.ReplaceAll(key, "_", " "), value)
}

func cmdReloadConfig(sess *session.Session, query string) dispatch.Result {
	store := sess.Settings()
	if store == nil {
		return dispatch.Reply("No settings file is configured.")
	}
	if err := store.Reload(); err != nil {
		return dispatch.Errorf("reload failed: %v", err)
	}
	if name := store.String("user_name", ""); name != "" {
		sess.SetUserName(name)
	}
	return dispatch.Reply("Settings reloaded.")
}
