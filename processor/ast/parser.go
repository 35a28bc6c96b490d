package ast

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
)

// FileParser turns one source file into the typed tree.
type FileParser interface {
	// ParseFile reads and parses filePath. A file with syntax errors still
	// yields a result; callers check File.HasErrors.
	ParseFile(ctx context.Context, filePath string) (*ParseResult, error)
}

// ParseResult holds the results of parsing a source file
type ParseResult struct {
	// Path is the file path relative to the project root
	Path string

	// Language is the front-end language name ("typescript", "tsx", "javascript")
	Language string

	// Hash is the content hash used for change detection
	Hash string

	// File is the typed syntax tree
	File *File
}

// ComputeHash returns the hex sha256 of content.
func ComputeHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
