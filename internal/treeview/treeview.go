// Package treeview prints task parameters as a styled tree for terminals.
package treeview

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/newhook/tasklog/internal/taskparam"
)

// DefaultMaxWidth caps item text and metadata values.
const DefaultMaxWidth = 100

var (
	nameStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	kindStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	itemStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	keyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	valueStyle = lipgloss.NewStyle()
)

// Printer renders parameters as a tree.
type Printer struct {
	// MaxWidth truncates long values; zero means DefaultMaxWidth.
	MaxWidth int
}

// Fprint writes one tree per parameter.
func (pr Printer) Fprint(w io.Writer, params ...*taskparam.Parameter) error {
	for _, p := range params {
		if _, err := io.WriteString(w, pr.Render(p)); err != nil {
			return err
		}
	}
	return nil
}

// Render returns the tree for a single parameter, ending in a newline.
func (pr Printer) Render(p *taskparam.Parameter) string {
	var b strings.Builder
	name := p.Name
	if name == "" {
		name = "(unnamed)"
	}
	fmt.Fprintf(&b, "%s %s\n", nameStyle.Render(name), kindStyle.Render("["+p.Kind().String()+"]"))

	items := p.Items()
	for i, item := range items {
		last := i == len(items)-1
		branch, indent := "├── ", "│   "
		if last {
			branch, indent = "└── ", "    "
		}
		fmt.Fprintf(&b, "%s%s\n", branch, itemStyle.Render(pr.clip(item.Text)))

		meta := item.Metadata()
		for j, m := range meta {
			mBranch := "├── "
			if j == len(meta)-1 {
				mBranch = "└── "
			}
			fmt.Fprintf(&b, "%s%s%s = %s\n", indent, mBranch, keyStyle.Render(m.Key), valueStyle.Render(pr.clip(m.Value)))
		}
	}
	return b.String()
}

func (pr Printer) clip(s string) string {
	width := pr.MaxWidth
	if width <= 0 {
		width = DefaultMaxWidth
	}
	s = strings.ReplaceAll(s, "\n", "⏎")
	return truncate.StringWithTail(s, uint(width), "…")
}
