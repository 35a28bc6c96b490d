package conformance

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/c360studio/archcheck/config"
	"github.com/c360studio/archcheck/model"
)

// Policy is the resolved severity of every family for one file.
type Policy map[model.Family]model.Severity

// Enabled reports whether the family runs at all for the file.
func (p Policy) Enabled(f model.Family) bool {
	sev, ok := p[f]
	return ok && sev != model.SeverityOff
}

// scopeEntry sets the severity of one family for the files matching glob.
type scopeEntry struct {
	glob        string
	family      model.Family
	severity    model.Severity
	specificity int
	order       int
}

// Composer resolves, per file and family, which scoped entry applies. The
// most specific matching glob wins; among equally specific globs the entry
// declared last wins. Import-boundary families a feature root turns off stay
// off for every file under that root whatever the entries say.
type Composer struct {
	entries []scopeEntry
	roots   []*Root
}

// NewComposer builds the entry table: a project-wide default per family
// followed by the configured overrides.
func NewComposer(cfg *config.Config, roots []*Root) (*Composer, error) {
	c := &Composer{roots: roots}

	for _, f := range model.AllFamilies() {
		c.add("**", f, cfg.Severity(f))
	}

	for i, o := range cfg.Overrides {
		sev, err := model.ParseSeverity(o.Severity)
		if err != nil {
			return nil, fmt.Errorf("overrides[%d]: %w", i, err)
		}
		for _, glob := range o.Files {
			if !doublestar.ValidatePattern(glob) {
				return nil, fmt.Errorf("overrides[%d]: invalid glob %q", i, glob)
			}
			c.add(glob, model.Family(o.Family), sev)
		}
	}

	sort.SliceStable(c.entries, func(i, j int) bool {
		a, b := c.entries[i], c.entries[j]
		if a.specificity != b.specificity {
			return a.specificity < b.specificity
		}
		return a.order < b.order
	})
	return c, nil
}

func (c *Composer) add(glob string, family model.Family, sev model.Severity) {
	c.entries = append(c.entries, scopeEntry{
		glob:        glob,
		family:      family,
		severity:    sev,
		specificity: Specificity(glob),
		order:       len(c.entries),
	})
}

// Policy resolves every family for filePath. Entries are sorted by ascending
// precedence, so the last match per family is the one that applies.
func (c *Composer) Policy(filePath string) Policy {
	p := make(Policy, len(model.AllFamilies()))
	for _, e := range c.entries {
		if match, _ := doublestar.Match(e.glob, filePath); match {
			p[e.family] = e.severity
		}
	}
	if root := c.rootFor(filePath); root != nil {
		for _, f := range model.ImportBoundaryFamilies() {
			if !root.Enforces(f) {
				p[f] = model.SeverityOff
			}
		}
	}
	return p
}

// rootFor returns the deepest feature root containing filePath.
func (c *Composer) rootFor(filePath string) *Root {
	var best *Root
	for _, r := range c.roots {
		if filePath != r.Path && !strings.HasPrefix(filePath, r.Path+"/") {
			continue
		}
		if best == nil || len(r.Path) > len(best.Path) {
			best = r
		}
	}
	return best
}

// Apply assigns severities from the policy and drops violations whose family is off.
func (p Policy) Apply(raw []model.Violation) []model.Violation {
	out := raw[:0]
	for _, v := range raw {
		sev, ok := p[v.Family]
		if !ok || sev == model.SeverityOff {
			continue
		}
		v.Severity = sev
		out = append(out, v)
	}
	return out
}

// Specificity ranks a glob: each literal path segment outweighs any number of
// literal characters, and wildcard segments count for nothing.
func Specificity(glob string) int {
	score := 0
	for _, seg := range strings.Split(glob, "/") {
		if seg == "**" {
			continue
		}
		literal := 0
		for _, r := range seg {
			switch r {
			case '*', '?', '[', ']', '{', '}', '\\':
			default:
				literal++
			}
		}
		if !strings.ContainsAny(seg, "*?[{") {
			score += 1000
		}
		score += literal
	}
	return score
}
