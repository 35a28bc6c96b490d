package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/c360studio/archcheck/model"
)

// TextWriter renders a report grouped by file.
type TextWriter struct {
	file    lipgloss.Style
	errSev  lipgloss.Style
	warnSev lipgloss.Style
	rule    lipgloss.Style
	pass    lipgloss.Style
	fail    lipgloss.Style
	quiet   bool
}

// NewTextWriter creates a text writer. Without opts.Color every style renders
// its input unchanged.
func NewTextWriter(opts Options) *TextWriter {
	w := &TextWriter{
		file:    lipgloss.NewStyle(),
		errSev:  lipgloss.NewStyle(),
		warnSev: lipgloss.NewStyle(),
		rule:    lipgloss.NewStyle(),
		pass:    lipgloss.NewStyle(),
		fail:    lipgloss.NewStyle(),
		quiet:   opts.Quiet,
	}
	if opts.Color {
		w.file = w.file.Bold(true).Underline(true)
		w.errSev = w.errSev.Foreground(lipgloss.Color("red")).Bold(true)
		w.warnSev = w.warnSev.Foreground(lipgloss.Color("yellow"))
		w.rule = w.rule.Foreground(lipgloss.Color("240"))
		w.pass = w.pass.Foreground(lipgloss.Color("green")).Bold(true)
		w.fail = w.fail.Foreground(lipgloss.Color("red")).Bold(true)
	}
	return w
}

// Write renders r to out.
func (w *TextWriter) Write(out io.Writer, r *model.Report) error {
	var sb strings.Builder

	current := ""
	for _, v := range visible(r, Options{Quiet: w.quiet}) {
		if v.File != current {
			if current != "" {
				sb.WriteString("\n")
			}
			current = v.File
			sb.WriteString(w.file.Render(v.File))
			sb.WriteString("\n")
		}

		loc := "-"
		if v.Line > 0 {
			loc = fmt.Sprintf("%d", v.Line)
		}
		sev := w.warnSev.Render(fmt.Sprintf("%-7s", v.Severity))
		if v.Severity == model.SeverityError {
			sev = w.errSev.Render(fmt.Sprintf("%-7s", v.Severity))
		}
		fmt.Fprintf(&sb, "  %5s  %s  %s  %s\n", loc, sev, v.Message, w.rule.Render(v.Rule))
	}
	if current != "" {
		sb.WriteString("\n")
	}

	errs := r.Count(model.SeverityError)
	warns := r.Count(model.SeverityWarning)
	summary := fmt.Sprintf("%d files checked, %d errors, %d warnings", r.Files, errs, warns)
	if r.Passed {
		sb.WriteString(w.pass.Render("✓ " + summary))
	} else {
		sb.WriteString(w.fail.Render("✗ " + summary))
	}
	sb.WriteString("\n")

	_, err := io.WriteString(out, sb.String())
	return err
}
