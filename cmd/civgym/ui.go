package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	bannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("14")).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("6")).
			Padding(0, 3)

	sectionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
)

const reportWidth = 46

// report writes the styled console output of the CLI commands.
type report struct {
	w io.Writer
}

func (r report) banner(title, subtitle string) {
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, bannerStyle.Render(title+"\n"+dimStyle.Render(subtitle)))
	fmt.Fprintln(r.w)
}

func (r report) section(title string) {
	n := reportWidth - lipgloss.Width(title) - 1
	if n < 3 {
		n = 3
	}
	fmt.Fprintln(r.w, sectionStyle.Render("── "+title+" "+strings.Repeat("─", n)))
}

// stat prints "label ······ value" padded to the report width.
func (r report) stat(label string, value any) {
	v := fmt.Sprint(value)
	n := reportWidth - 4 - lipgloss.Width(label) - lipgloss.Width(v)
	if n < 3 {
		n = 3
	}
	fmt.Fprintf(r.w, "  %s %s %s\n", label, dimStyle.Render(strings.Repeat("·", n)), valueStyle.Render(v))
}

func (r report) line(format string, args ...any) {
	fmt.Fprintf(r.w, "  "+format+"\n", args...)
}

func (r report) ok(msg string) {
	fmt.Fprintf(r.w, "  %s %s\n", okStyle.Render("✓"), msg)
}

func (r report) fail(msg string) {
	fmt.Fprintf(r.w, "  %s %s\n", warnStyle.Render("✗"), msg)
}

func (r report) blank() { fmt.Fprintln(r.w) }
