// Package discovery finds the source files an analysis run covers.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Options controls a discovery walk.
type Options struct {
	// ProjectRoot is the directory Roots are relative to.
	ProjectRoot string

	// Roots are slash-separated directories to walk. Missing roots are skipped.
	Roots []string

	// Extensions limits results by final extension (".ts", ".tsx").
	Extensions []string

	// Exclude lists doublestar globs matched against project-relative paths.
	Exclude []string

	Logger *slog.Logger
}

// Discover walks every root and returns the matching files as sorted,
// deduplicated, slash-separated paths relative to the project root.
func Discover(ctx context.Context, opts Options) ([]string, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	for _, pattern := range opts.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude glob %q", pattern)
		}
	}

	fsys := os.DirFS(opts.ProjectRoot)
	seen := make(map[string]bool)
	var files []string

	for _, root := range opts.Roots {
		root = path.Clean(strings.TrimPrefix(root, "./"))
		if _, err := fs.Stat(fsys, root); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				logger.Debug("Skipping missing discovery root", "root", root)
				continue
			}
			return nil, fmt.Errorf("stat root %s: %w", root, err)
		}

		pattern := root + "/**"
		err := doublestar.GlobWalk(fsys, pattern, func(p string, d fs.DirEntry) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if d.IsDir() {
				if p != root && excluded(opts.Exclude, p) {
					return doublestar.SkipDir
				}
				return nil
			}
			if seen[p] || !hasExtension(opts.Extensions, p) || excluded(opts.Exclude, p) {
				return nil
			}
			seen[p] = true
			files = append(files, p)
			return nil
		}, doublestar.WithNoFollow(), doublestar.WithNoHidden())
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", root, err)
		}
	}

	sort.Strings(files)
	logger.Debug("Discovered files", "roots", len(opts.Roots), "files", len(files))
	return files, nil
}

// Matches reports whether a single project-relative path would be discovered
// with opts. The watcher uses it to filter change events.
func Matches(opts Options, p string) bool {
	p = path.Clean(p)
	if !hasExtension(opts.Extensions, p) || excluded(opts.Exclude, p) {
		return false
	}
	for _, root := range opts.Roots {
		root = path.Clean(strings.TrimPrefix(root, "./"))
		if strings.HasPrefix(p, root+"/") {
			return true
		}
	}
	return false
}

func hasExtension(exts []string, p string) bool {
	if len(exts) == 0 {
		return true
	}
	ext := path.Ext(p)
	for _, e := range exts {
		if e == ext {
			return true
		}
	}
	return false
}

// excluded matches p against the globs. A trailing "/**" also matches the
// directory itself, so "**/node_modules/**" prunes the whole subtree.
func excluded(globs []string, p string) bool {
	for _, g := range globs {
		if match, _ := doublestar.Match(g, p); match {
			return true
		}
	}
	return false
}
