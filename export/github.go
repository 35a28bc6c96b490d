package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/c360studio/archcheck/model"
)

// WriteGitHub writes one workflow command per violation, e.g.
//
//	::error file=src/a.ts,line=3,title=layer-order/upward-import::message
func WriteGitHub(w io.Writer, r *model.Report) error {
	for _, v := range r.Violations {
		level := "warning"
		if v.Severity == model.SeverityError {
			level = "error"
		}

		props := []string{"file=" + escapeProperty(v.File)}
		if v.Line > 0 {
			props = append(props, fmt.Sprintf("line=%d", v.Line))
		}
		props = append(props, "title="+escapeProperty(v.Rule))

		if _, err := fmt.Fprintf(w, "::%s %s::%s\n", level, strings.Join(props, ","), escapeData(v.Message)); err != nil {
			return err
		}
	}
	return nil
}

var (
	dataEscaper     = strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A")
	propertyEscaper = strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A", ":", "%3A", ",", "%2C")
)

func escapeData(s string) string     { return dataEscaper.Replace(s) }
func escapeProperty(s string) string { return propertyEscaper.Replace(s) }
