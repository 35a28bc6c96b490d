// Package resourcemapper discovers resource bindings by scanning a resource
// root: each file's leading name segment becomes a prefix bound to the
// resource that file provides.
package resourcemapper

import (
	"errors"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strings"
)

// ErrPrefixCollision is returned when two resource files in one scope yield
// the same prefix.
var ErrPrefixCollision = errors.New("resource prefix collision")

// Binding maps a prefix to a resource identifier.
type Binding struct {
	Prefix     string `json:"prefix"`
	Identifier string `json:"identifier"`
}

// Options configures one resource-root scan.
type Options struct {
	// Root is the slash-separated resource root (e.g. "src/lib").
	Root string

	// Exclude lists entry names skipped at both levels.
	Exclude []string

	// Extensions limits which files produce bindings. Empty means ".ts".
	Extensions []string

	Logger *slog.Logger
}

// Mapping is the immutable prefix table of one resource root.
type Mapping struct {
	root     string
	bindings map[string]string
}

// Empty returns a mapping with no bindings.
func Empty(root string) *Mapping {
	return &Mapping{root: root, bindings: map[string]string{}}
}

// Build scans opts.Root. A missing root yields an empty mapping. Files bind
// their prefix to the prefix itself; files one directory down bind it to
// "dir/prefix". Anything deeper is ignored.
func Build(fsys FS, opts Options) (*Mapping, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = []string{".ts"}
	}

	m := Empty(opts.Root)
	if opts.Root == "" || !fsys.Exists(opts.Root) {
		logger.Debug("Resource root not found, mapping is empty", "resource_root", opts.Root)
		return m, nil
	}

	entries, err := fsys.ListDirectory(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("list resource root %s: %w", opts.Root, err)
	}

	excluded := make(map[string]bool, len(opts.Exclude))
	for _, name := range opts.Exclude {
		excluded[name] = true
	}

	for _, entry := range entries {
		if excluded[entry.Name] {
			continue
		}

		switch {
		case entry.IsFile:
			if !hasExtension(entry.Name, exts) {
				continue
			}
			prefix := Prefix(entry.Name)
			if err := m.bind(prefix, prefix); err != nil {
				return nil, err
			}

		case entry.IsDir:
			groupDir := path.Join(opts.Root, entry.Name)
			children, err := fsys.ListDirectory(groupDir)
			if err != nil {
				return nil, fmt.Errorf("list resource group %s: %w", groupDir, err)
			}
			for _, child := range children {
				if excluded[child.Name] {
					continue
				}
				if child.IsDir {
					logger.Debug("Ignoring nested resource directory", "path", path.Join(groupDir, child.Name))
					continue
				}
				if !child.IsFile || !hasExtension(child.Name, exts) {
					continue
				}
				prefix := Prefix(child.Name)
				if err := m.bind(prefix, entry.Name+"/"+prefix); err != nil {
					return nil, err
				}
			}
		}
	}

	logger.Debug("Built resource mapping", "resource_root", opts.Root, "bindings", len(m.bindings))
	return m, nil
}

func (m *Mapping) bind(prefix, identifier string) error {
	if existing, ok := m.bindings[prefix]; ok {
		return fmt.Errorf("%w: %q bound to both %q and %q under %s",
			ErrPrefixCollision, prefix, existing, identifier, m.root)
	}
	m.bindings[prefix] = identifier
	return nil
}

// Prefix returns a resource file name's leading segment ("admin.repo.ts" → "admin").
func Prefix(name string) string {
	if i := strings.IndexByte(name, '.'); i > 0 {
		return name[:i]
	}
	return name
}

func hasExtension(name string, exts []string) bool {
	for _, ext := range exts {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// Root returns the scanned resource root.
func (m *Mapping) Root() string { return m.root }

// Len returns the number of bindings.
func (m *Mapping) Len() int { return len(m.bindings) }

// Lookup returns the identifier bound to prefix.
func (m *Mapping) Lookup(prefix string) (string, bool) {
	id, ok := m.bindings[prefix]
	return id, ok
}

// Has reports whether prefix is bound.
func (m *Mapping) Has(prefix string) bool {
	_, ok := m.bindings[prefix]
	return ok
}

// Prefixes returns the bound prefixes, sorted.
func (m *Mapping) Prefixes() []string {
	prefixes := make([]string, 0, len(m.bindings))
	for p := range m.bindings {
		prefixes = append(prefixes, p)
	}
	sort.Strings(prefixes)
	return prefixes
}

// Bindings returns every binding sorted by prefix.
func (m *Mapping) Bindings() []Binding {
	out := make([]Binding, 0, len(m.bindings))
	for _, p := range m.Prefixes() {
		out = append(out, Binding{Prefix: p, Identifier: m.bindings[p]})
	}
	return out
}

// Specifier returns the import specifier of prefix's resource under alias
// ("@/lib" + "supabase/server" → "@/lib/supabase/server").
func (m *Mapping) Specifier(alias, prefix string) (string, bool) {
	id, ok := m.bindings[prefix]
	if !ok {
		return "", false
	}
	return strings.TrimSuffix(alias, "/") + "/" + id, true
}
