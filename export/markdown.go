package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/c360studio/archcheck/model"
)

// WriteMarkdown writes a summary line followed by a violation table.
func WriteMarkdown(w io.Writer, r *model.Report, opts Options) error {
	var sb strings.Builder

	status := "✅ Passed"
	if !r.Passed {
		status = "❌ Failed"
	}
	fmt.Fprintf(&sb, "### Architecture check: %s\n\n", status)
	fmt.Fprintf(&sb, "%d files checked, %d errors, %d warnings.\n",
		r.Files, r.Count(model.SeverityError), r.Count(model.SeverityWarning))

	rows := visible(r, opts)
	if len(rows) > 0 {
		sb.WriteString("\n| Severity | File | Line | Rule | Message |\n")
		sb.WriteString("|---|---|---|---|---|\n")
		for _, v := range rows {
			line := ""
			if v.Line > 0 {
				line = fmt.Sprintf("%d", v.Line)
			}
			fmt.Fprintf(&sb, "| %s | `%s` | %s | `%s` | %s |\n",
				v.Severity, v.File, line, v.Rule, escapeCell(v.Message))
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

var cellEscaper = strings.NewReplacer("|", "\\|", "\n", " ")

func escapeCell(s string) string { return cellEscaper.Replace(s) }
