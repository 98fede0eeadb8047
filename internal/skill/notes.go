package skill

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"deskai/internal/dispatch"
	"deskai/internal/session"
)

// Notes persists short notes in the session's notes file. The file is
// a JSON document with a "notes" array; sjson updates keep anything
// else in the document intact.
func Notes() Module {
	return New("notes", func(reg *dispatch.Registry) (int, error) {
		count := 0

		if err := reg.Register([]string{"take note", "create note", "make note", "new note"}, cmdTakeNote, dispatch.WithPriority(10)); err != nil {
			return count, err
		}
		count++

		if err := reg.Register([]string{"read notes", "show notes", "my notes", "list notes"}, cmdReadNotes, dispatch.WithPriority(10)); err != nil {
			return count, err
		}
		count++

		if err := reg.Register([]string{"delete note", "remove note"}, cmdDeleteNote, dispatch.WithPriority(10)); err != nil {
			return count, err
		}
		count++

		return count, nil
	})
}

func loadNotesFile(sess *session.Session) ([]byte, error) {
	data, err := os.ReadFile(sess.NotesFile())
	if err != nil {
		if os.IsNotExist(err) {
			return []byte(`{}`), nil
		}
		return nil, fmt.Errorf("read notes: %w", err)
	}
	if len(data) == 0 || !gjson.ValidBytes(data) {
		return []byte(`{}`), nil
	}
	return data, nil
}

func saveNotesFile(sess *session.Session, raw []byte) error {
	if err := os.MkdirAll(sess.ConfigDir(), 0o755); err != nil {
		return fmt.Errorf("save notes: %w", err)
	}
	if err := os.WriteFile(sess.NotesFile(), raw, 0o644); err != nil {
		return fmt.Errorf("save notes: %w", err)
	}
	return nil
}

func cmdTakeNote(sess *session.Session, query string) dispatch.Result {
	q := strings.ToLower(query)

	content := ""
	for _, marker := range []string{"take note", "create note", "make note", "new note"} {
		if idx := strings.Index(q, marker); idx >= 0 {
			content = strings.TrimSpace(query[idx+len(marker):])
			break
		}
	}
	content = strings.TrimPrefix(content, "that ")
	content = strings.TrimPrefix(content, ": ")
	if content == "" {
		return dispatch.Reply("What should the note say? Try: take note buy milk.")
	}

	raw, err := loadNotesFile(sess)
	if err != nil {
		return dispatch.Error(err)
	}

	note := map[string]any{
		"id":      uuid.NewString(),
		"content": content,
		"created": time.Now().Format(time.RFC3339),
	}
	raw, err = sjson.SetBytes(raw, "notes.-1", note)
	if err != nil {
		return dispatch.Errorf("could not add note: %v", err)
	}
	if err := saveNotesFile(sess, raw); err != nil {
		return dispatch.Error(err)
	}

	return dispatch.Replyf("Noted: %s", content).WithData("note", note)
}

func cmdReadNotes(sess *session.Session, query string) dispatch.Result {
	raw, err := loadNotesFile(sess)
	if err != nil {
		return dispatch.Error(err)
	}

	notes := gjson.GetBytes(raw, "notes").Array()
	if len(notes) == 0 {
		return dispatch.Reply("You have no saved notes.")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You have %d note(s):\n", len(notes))
	for i, note := range notes {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, note.Get("content").String())
	}

	return dispatch.Reply(strings.TrimRight(b.String(), "\n")).
		WithData("count", len(notes))
}

// cmdDeleteNote removes the note whose content contains the text after
// the trigger, or the last note when no text is given.
func cmdDeleteNote(sess *session.Session, query string) dispatch.Result {
	q := strings.ToLower(query)

	target := ""
	for _, marker := range []string{"delete note", "remove note"} {
		if idx := strings.Index(q, marker); idx >= 0 {
			target = strings.TrimSpace(q[idx+len(marker):])
			break
		}
	}

	raw, err := loadNotesFile(sess)
	if err != nil {
		return dispatch.Error(err)
	}

	notes := gjson.GetBytes(raw, "notes").Array()
	if len(notes) == 0 {
		return dispatch.Reply("You have no saved notes.")
	}

	idx := len(notes) - 1
	if target != "" {
		idx = -1
		for i, note := range notes {
			if strings.Contains(strings.ToLower(note.Get("content").String()), target) {
				idx = i
				break
			}
		}
		if idx < 0 {
			return dispatch.Replyf("No note matching %q.", target)
		}
	}

	removed := notes[idx].Get("content").String()
	raw, err = sjson.DeleteBytes(raw, fmt.Sprintf("notes.%d", idx))
	if err != nil {
		return dispatch.Errorf("could not delete note: %v", err)
	}
	if err := saveNotesFile(sess, raw); err != nil {
		return dispatch.Error(err)
	}

	return dispatch.Replyf("Deleted note: %s", removed)
}
