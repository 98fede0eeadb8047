package main

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
)

// readlineSource reads queries from the terminal with history and
// line editing.
type readlineSource struct {
	rl *readline.Instance
}

func newReadlineSource(configDir string) (*readlineSource, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            "> ",
		HistoryFile:       filepath.Join(configDir, "history"),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return nil, err
	}
	return &readlineSource{rl: rl}, nil
}

// Listen blocks for one line of input. Ctrl+D ends the session with
// io.EOF; Ctrl+C on an empty line does the same, on a non-empty line
// it clears the input.
func (r *readlineSource) Listen(ctx context.Context) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		line, err := r.rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if len(line) == 0 {
				return "", io.EOF
			}
			continue
		}
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(line), nil
	}
}

func (r *readlineSource) Close() error {
	return r.rl.Close()
}
