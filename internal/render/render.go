// Package render turns a session View into terminal tables and Markdown.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/KaramelBytes/sheetsift-cli/internal/session"
)

// Options controls how a view is rendered.
type Options struct {
	// MaxRows caps the rendered rows; 0 renders all of them.
	MaxRows int
	// Offset skips the first rows of the view.
	Offset int
	// Label is the text shown for link cells.
	Label string
	// Hyperlinks wraps link labels in OSC 8 escapes. When false the URL
	// itself is printed.
	Hyperlinks bool
	// Renderer is used for styles; nil means the default renderer.
	Renderer *lipgloss.Renderer
}

type styles struct {
	header lipgloss.Style
	even   lipgloss.Style
	odd    lipgloss.Style
	link   lipgloss.Style
	border lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	base := r.NewStyle().Padding(0, 1)
	return styles{
		header: base.Bold(true).Foreground(lipgloss.Color("252")),
		even:   base.Foreground(lipgloss.Color("245")),
		odd:    base.Foreground(lipgloss.Color("252")),
		link:   base.Foreground(lipgloss.Color("39")).Underline(true),
		border: r.NewStyle().Foreground(lipgloss.Color("238")),
	}
}

// window returns the half-open range of view rows to render.
func window(v *session.View, opt Options) (int, int) {
	start := opt.Offset
	if start < 0 {
		start = 0
	}
	if start > v.Len() {
		start = v.Len()
	}
	end := v.Len()
	if opt.MaxRows > 0 && start+opt.MaxRows < end {
		end = start + opt.MaxRows
	}
	return start, end
}

// LinkText renders one link cell for a terminal.
func LinkText(url string, opt Options) string {
	if url == "" {
		return ""
	}
	if !opt.Hyperlinks {
		return url
	}
	label := opt.Label
	if label == "" {
		label = "Open"
	}
	return "\x1b]8;;" + url + "\x1b\\" + label + "\x1b]8;;\x1b\\"
}

// Table renders the view as a bordered lipgloss table followed by the
// caption.
func Table(v *session.View, opt Options) string {
	st := newStyles(opt.Renderer)
	header := v.Header()
	isLink := make([]bool, len(header))
	for i, h := range header {
		isLink[i] = v.IsLink(h)
	}
	start, end := window(v, opt)
	rows := make([][]string, 0, end-start)
	for i := start; i < end; i++ {
		rec := v.Display(i)
		for c := range rec {
			if isLink[c] {
				rec[c] = LinkText(rec[c], opt)
			}
		}
		rows = append(rows, rec)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(st.border).
		Headers(header...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return st.header
			case col < len(isLink) && isLink[col]:
				return st.link
			case row%2 == 0:
				return st.even
			default:
				return st.odd
			}
		})

	var b strings.Builder
	b.WriteString(t.String())
	b.WriteString("\n")
	b.WriteString(footer(v, start, end))
	return b.String()
}

// Markdown renders the view as a GitHub-flavoured table. Link cells become
// [Label](url).
func Markdown(v *session.View, opt Options) string {
	header := v.Header()
	label := opt.Label
	if label == "" {
		label = "Open"
	}
	var b strings.Builder
	b.WriteString("| ")
	b.WriteString(strings.Join(escapeAll(header), " | "))
	b.WriteString(" |\n|")
	for range header {
		b.WriteString("---|")
	}
	b.WriteString("\n")
	start, end := window(v, opt)
	for i := start; i < end; i++ {
		rec := v.Display(i)
		for c := range rec {
			if v.IsLink(header[c]) && rec[c] != "" {
				rec[c] = fmt.Sprintf("[%s](%s)", escape(label), rec[c])
				continue
			}
			rec[c] = escape(rec[c])
		}
		b.WriteString("| ")
		b.WriteString(strings.Join(rec, " | "))
		b.WriteString(" |\n")
	}
	b.WriteString("\n")
	b.WriteString(footer(v, start, end))
	return b.String()
}

func footer(v *session.View, start, end int) string {
	s := v.Caption()
	if hidden := v.Len() - (end - start); hidden > 0 {
		s += fmt.Sprintf(" (displaying rows %d-%d)", start+1, end)
	}
	return s + "\n"
}

func escapeAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = escape(s)
	}
	return out
}

func escape(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}
