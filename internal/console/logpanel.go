package console

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/pushchain/unjail-console/internal/activity"
)

// logPanel renders the newest activity entries. Output is cached by a hash
// of the entries and the panel size so unchanged frames skip restyling.
type logPanel struct {
	lastHash uint64
	cached   string
}

func (p *logPanel) cacheKey(content string, w, h int) uint64 {
	return xxhash.Sum64String(fmt.Sprintf("%dx%d|%s", w, h, content))
}

// render draws entries inside a bordered box of the given outer width and
// number of visible lines.
func (p *logPanel) render(entries []activity.Entry, width, lines int) string {
	raw := make([]string, len(entries))
	for i, e := range entries {
		raw[i] = fmt.Sprintf("%d|%s", e.Level, e.String())
	}
	h := p.cacheKey(strings.Join(raw, "\n"), width, lines)
	if h == p.lastHash && p.cached != "" {
		return p.cached
	}
	p.lastHash = h

	inner := width - 4
	if inner < 10 {
		inner = 10
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Activity"))
	if len(entries) == 0 {
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render("nothing yet"))
	}
	for _, e := range entries {
		line := e.String()
		if r := []rune(line); len(r) > inner {
			line = string(r[:inner-1]) + "…"
		}
		b.WriteString("\n")
		b.WriteString(levelStyle(e.Level).Render(line))
	}
	for i := len(entries); i < lines; i++ {
		b.WriteString("\n")
	}
	p.cached = panelStyle.Width(width - 2).Render(b.String())
	return p.cached
}

func levelStyle(l log.Level) lipgloss.Style {
	switch l {
	case log.WarnLevel:
		return warnStyle
	case log.ErrorLevel:
		return errStyle
	}
	return lipgloss.NewStyle()
}
