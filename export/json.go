package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/c360studio/archcheck/model"
)

// WriteJSON writes the report as indented JSON. A nil violation list is
// written as an empty array.
func WriteJSON(w io.Writer, r *model.Report) error {
	out := *r
	if out.Violations == nil {
		out.Violations = []model.Violation{}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
