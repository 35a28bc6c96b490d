// Package export renders analysis reports for terminals, CI systems and
// message buses.
package export

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/c360studio/archcheck/model"
)

// Format specifies the report serialization format.
type Format string

const (
	// FormatText produces a styled, human-readable listing.
	FormatText Format = "text"

	// FormatJSON produces the report as indented JSON.
	FormatJSON Format = "json"

	// FormatGitHub produces GitHub Actions workflow commands (annotations).
	FormatGitHub Format = "github"

	// FormatMarkdown produces a table suitable for PR comments and job summaries.
	FormatMarkdown Format = "markdown"
)

// FormatInfo provides metadata about an export format.
type FormatInfo struct {
	// Name is the format identifier.
	Name Format

	// MIMEType is the standard MIME type.
	MIMEType string

	// Extension is the file extension (with dot).
	Extension string

	// Description describes the format.
	Description string
}

// FormatRegistry contains metadata for all supported formats.
var FormatRegistry = map[Format]FormatInfo{
	FormatText: {
		Name:        FormatText,
		MIMEType:    "text/plain",
		Extension:   ".txt",
		Description: "Styled terminal output grouped by file",
	},
	FormatJSON: {
		Name:        FormatJSON,
		MIMEType:    "application/json",
		Extension:   ".json",
		Description: "Machine-readable report",
	},
	FormatGitHub: {
		Name:        FormatGitHub,
		MIMEType:    "text/plain",
		Extension:   ".txt",
		Description: "GitHub Actions ::error / ::warning annotations",
	},
	FormatMarkdown: {
		Name:        FormatMarkdown,
		MIMEType:    "text/markdown",
		Extension:   ".md",
		Description: "Markdown summary table",
	},
}

// GetFormatInfo returns metadata for a format.
func GetFormatInfo(format Format) (FormatInfo, bool) {
	info, ok := FormatRegistry[format]
	return info, ok
}

// FormatNames returns the registered format names, sorted.
func FormatNames() []string {
	names := make([]string, 0, len(FormatRegistry))
	for f := range FormatRegistry {
		names = append(names, string(f))
	}
	sort.Strings(names)
	return names
}

// ParseFormat converts a flag value to a Format.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(s))
	if _, ok := FormatRegistry[f]; !ok {
		return "", fmt.Errorf("unknown format %q (want one of %s)", s, strings.Join(FormatNames(), ", "))
	}
	return f, nil
}

// Options tunes the writers.
type Options struct {
	// Color enables lipgloss styling in the text format.
	Color bool

	// Quiet omits warnings from text and markdown listings.
	Quiet bool
}

// Write renders the report to w in the given format.
func Write(w io.Writer, r *model.Report, format Format, opts Options) error {
	switch format {
	case FormatText:
		return NewTextWriter(opts).Write(w, r)
	case FormatJSON:
		return WriteJSON(w, r)
	case FormatGitHub:
		return WriteGitHub(w, r)
	case FormatMarkdown:
		return WriteMarkdown(w, r, opts)
	}
	return fmt.Errorf("unknown format %q", format)
}

// visible returns the violations a listing shows under opts.
func visible(r *model.Report, opts Options) []model.Violation {
	if !opts.Quiet {
		return r.Violations
	}
	var out []model.Violation
	for _, v := range r.Violations {
		if v.Severity == model.SeverityError {
			out = append(out, v)
		}
	}
	return out
}
