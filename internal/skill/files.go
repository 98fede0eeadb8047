package skill

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"deskai/internal/dispatch"
	"deskai/internal/session"
)

// Files manages plain-text files under the session's documents
// directory. Paths never leave that directory.
func Files() Module {
	return New("files", func(reg *dispatch.Registry) (int, error) {
		count := 0

		if err := reg.Register([]string{"create file", "new file", "make file"}, cmdCreateFile, dispatch.WithPriority(10)); err != nil {
			return count, err
		}
		count++

		if err := reg.Register([]string{"list files", "show files"}, cmdListFiles, dispatch.WithPriority(10)); err != nil {
			return count, err
		}
		count++

		if err := reg.Register([]string{"search file", "find file"}, cmdSearchFiles, dispatch.WithPriority(10)); err != nil {
			return count, err
		}
		count++

		return count, nil
	})
}

// fileName sanitizes a spoken name into a .txt filename inside the
// documents dir. Returns "" for names that would escape it.
func fileName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, " ", "_")
	if name == "" || strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return ""
	}
	if !strings.HasSuffix(name, ".txt") {
		name += ".txt"
	}
	return name
}

func cmdCreateFile(sess *session.Session, query string) dispatch.Result {
	q := strings.ToLower(query)

	name := ""
	for _, marker := range []string{"create file", "new file", "make file"} {
		if idx := strings.Index(q, marker); idx >= 0 {
			name = strings.TrimSpace(q[idx+len(marker):])
			break
		}
	}
	name = strings.TrimPrefix(name, "called ")
	name = strings.TrimPrefix(name, "named ")

	safe := fileName(name)
	if safe == "" {
		return dispatch.Reply("What should the file be called? Try: create file shopping list.")
	}

	if err := os.MkdirAll(sess.DocumentsDir(), 0o755); err != nil {
		return dispatch.Errorf("could not create documents directory: %v", err)
	}

	path := filepath.Join(sess.DocumentsDir(), safe)
	if _, err := os.Stat(path); err == nil {
		return dispatch.Replyf("%s already exists.", safe)
	}
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		return dispatch.Errorf("could not create file: %v", err)
	}

	return dispatch.Replyf("Created %s.", safe).WithData("path", path)
}

func cmdListFiles(sess *session.Session, query string) dispatch.Result {
	entries, err := os.ReadDir(sess.DocumentsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return dispatch.Reply("Your documents folder is empty.")
		}
		return dispatch.Errorf("could not list files: %v", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	if len(names) == 0 {
		return dispatch.Reply("Your documents folder is empty.")
	}

	sort.Strings(names)
	var b strings.Builder
	fmt.Fprintf(&b, "You have %d file(s):\n", len(names))
	for i, name := range names {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, name)
	}
	return dispatch.Reply(strings.TrimRight(b.String(), "\n")).WithData("count", len(names))
}

func cmdSearchFiles(sess *session.Session, query string) dispatch.Result {
	q := strings.ToLower(query)

	term := ""
	for _, marker := range []string{"search file", "find file"} {
		if idx := strings.Index(q, marker); idx >= 0 {
			term = strings.TrimSpace(q[idx+len(marker):])
			break
		}
	}
	term = strings.TrimPrefix(term, "for ")
	term = strings.TrimSpace(term)
	if term == "" {
		return dispatch.Reply("What file should I look for?")
	}

	entries, err := os.ReadDir(sess.DocumentsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return dispatch.Replyf("No files matching %q.", term)
		}
		return dispatch.Errorf("could not search files: %v", err)
	}

	needle := strings.ReplaceAll(term, " ", "_")
	var matches []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.Contains(strings.ToLower(entry.Name()), needle) {
			matches = append(matches, entry.Name())
		}
	}

	if len(matches) == 0 {
		return dispatch.Replyf("No files matching %q.", term)
	}
	sort.Strings(matches)
	return dispatch.Replyf("Found %d file(s): %s", len(matches), strings.Join(matches, ", ")).
		WithData("matches", matches)
}
