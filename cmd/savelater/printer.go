package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/MrSnakeDoc/savelater/internal/domain"
	"github.com/MrSnakeDoc/savelater/internal/syncer"
)

// printer renders command output. Styles degrade to plain text when the
// output is not a terminal.
type printer struct {
	out io.Writer
	err io.Writer

	id      lipgloss.Style
	title   lipgloss.Style
	url     lipgloss.Style
	visited lipgloss.Style
	pending lipgloss.Style
	warning lipgloss.Style
}

func newPrinter(out, errOut io.Writer) *printer {
	r := lipgloss.NewRenderer(out)
	re := lipgloss.NewRenderer(errOut)

	return &printer{
		out:     out,
		err:     errOut,
		id:      r.NewStyle().Faint(true),
		title:   r.NewStyle().Bold(true),
		url:     r.NewStyle().Foreground(lipgloss.Color("6")),
		visited: r.NewStyle().Strikethrough(true).Faint(true),
		pending: r.NewStyle().Foreground(lipgloss.Color("3")),
		warning: re.NewStyle().Foreground(lipgloss.Color("3")),
	}
}

// links prints one link per line: id, title, url. Visited links are
// struck through, unsynced ones marked with '*'.
func (p *printer) links(list []domain.Hyperlink) {
	if len(list) == 0 {
		writeLine(p.out, "No links saved.")
		return
	}
	for _, h := range list {
		p.link(h)
	}
}

func (p *printer) link(h domain.Hyperlink) {
	mark := " "
	if h.Dirty {
		mark = p.pending.Render("*")
	}

	title, url := p.title.Render(h.DisplayTitle()), p.url.Render(h.URL)
	if h.Visited {
		title, url = p.visited.Render(h.DisplayTitle()), p.visited.Render(h.URL)
	}

	line := []string{mark, p.id.Render(h.ID), title}
	if h.Title != "" {
		line = append(line, url)
	}
	writeLine(p.out, "%s", strings.Join(line, " "))
}

func (p *printer) report(rep syncer.Report) {
	writeLine(p.out, "pushed %d, purged %d, pulled %d (+%d ~%d -%d) in %s",
		rep.Pushed, rep.Purged, rep.Pulled,
		rep.Inserted, rep.Overwritten, rep.Removed,
		rep.Duration.Round(1e6))

	if rep.PushFailed > 0 || rep.PurgeFailed > 0 {
		p.warn("%d change(s) could not be pushed, will retry", rep.PushFailed+rep.PurgeFailed)
	}
	if rep.KeptDirty > 0 {
		writeLine(p.out, "%d local change(s) kept over the remote copy", rep.KeptDirty)
	}
}

func (p *printer) warn(format string, args ...any) {
	writeLine(p.err, "%s", p.warning.Render("! "+fmt.Sprintf(format, args...)))
}
