package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"deskai/internal/dispatch"
	"deskai/internal/loader"
)

// printer renders assistant responses on the terminal.
type printer struct {
	w io.Writer

	assistantStyle *color.Color
	errorStyle     *color.Color
	actionStyle    *color.Color
	dimStyle       *color.Color
}

func newPrinter(w io.Writer) *printer {
	return &printer{
		w:              w,
		assistantStyle: color.New(color.FgCyan),
		errorStyle:     color.New(color.FgRed),
		actionStyle:    color.New(color.FgYellow),
		dimStyle:       color.New(color.Faint),
	}
}

func (p *printer) banner(summary loader.Summary) {
	p.dimStyle.Fprintf(p.w, "DeskAI ready: %d skills, %d commands", summary.Loaded, summary.Handlers)
	if summary.Failed > 0 {
		p.dimStyle.Fprintf(p.w, " (%d failed to load)", summary.Failed)
	}
	if summary.Disabled > 0 {
		p.dimStyle.Fprintf(p.w, " (%d disabled)", summary.Disabled)
	}
	fmt.Fprintln(p.w)
}

// response prints one result. Launching URLs and applications is left
// to the user; the assistant only announces the target.
func (p *printer) response(result dispatch.Result) {
	if result.Response != "" {
		if result.IsError() {
			p.errorStyle.Fprintf(p.w, "%s\n", result.Response)
		} else {
			p.assistantStyle.Fprintf(p.w, "%s\n", result.Response)
		}
	}

	switch result.Action {
	case dispatch.ActionOpenURL:
		if url := result.DataString("url"); url != "" {
			p.actionStyle.Fprintf(p.w, "  %s\n", url)
		}
	case dispatch.ActionOpenApp:
		if app := result.DataString("app"); app != "" {
			p.actionStyle.Fprintf(p.w, "  run: %s\n", app)
		}
	}
}
