// Package ts parses TypeScript and JavaScript sources with tree-sitter and
// lowers them into the typed ast.File tree.
package ts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/c360studio/archcheck/processor/ast"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

func init() {
	ast.DefaultRegistry.Register("typescript",
		[]string{".ts", ".mts", ".cts"},
		func(projectRoot string) ast.FileParser {
			return NewParser(projectRoot)
		})
	ast.DefaultRegistry.Register("tsx",
		[]string{".tsx"},
		func(projectRoot string) ast.FileParser {
			return NewParser(projectRoot)
		})
	ast.DefaultRegistry.Register("javascript",
		[]string{".js", ".jsx", ".mjs", ".cjs"},
		func(projectRoot string) ast.FileParser {
			return NewParser(projectRoot)
		})
}

// Parser lowers TypeScript/JavaScript source files into ast.File trees
type Parser struct {
	projectRoot string
}

// NewParser creates a new TypeScript/JavaScript parser
func NewParser(projectRoot string) *Parser {
	return &Parser{projectRoot: projectRoot}
}

// ParseFile parses a single TypeScript/JavaScript file.
// filePath may be absolute or relative to the project root.
func (p *Parser) ParseFile(ctx context.Context, filePath string) (*ast.ParseResult, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	absPath := filePath
	if !filepath.IsAbs(absPath) {
		absPath = filepath.Join(p.projectRoot, filePath)
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	relPath, err := filepath.Rel(p.projectRoot, absPath)
	if err != nil {
		relPath = filePath
	}
	relPath = filepath.ToSlash(relPath)

	file, err := ParseSource(ctx, relPath, content)
	if err != nil {
		return nil, err
	}

	return &ast.ParseResult{
		Path:     relPath,
		Language: detectLanguage(relPath),
		Hash:     ast.ComputeHash(content),
		File:     file,
	}, nil
}

// ParseSource lowers in-memory source. The grammar is picked from path's extension.
func ParseSource(ctx context.Context, path string, content []byte) (*ast.File, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(treeSitterLanguage(path))

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	defer tree.Close()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	c := &converter{source: content}
	return c.convertProgram(path, tree.RootNode()), nil
}

// detectLanguage returns the language identifier for the file
func detectLanguage(filePath string) string {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".ts", ".mts", ".cts":
		return "typescript"
	case ".tsx":
		return "tsx"
	}
	return "javascript"
}

// treeSitterLanguage returns the tree-sitter grammar for the file type
func treeSitterLanguage(filePath string) *sitter.Language {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".tsx":
		return tsx.GetLanguage()
	case ".ts", ".mts", ".cts":
		return typescript.GetLanguage()
	default:
		return javascript.GetLanguage()
	}
}

// IsTargetFile returns true if the file is a TypeScript/JavaScript file
func IsTargetFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts", ".tsx", ".js", ".jsx", ".mts", ".cts", ".mjs", ".cjs":
		return true
	}
	return false
}
