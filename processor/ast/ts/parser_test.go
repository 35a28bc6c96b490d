package ts

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/c360studio/archcheck/processor/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const actionSource = `"use server";

import { z } from "zod";
import type { Order } from "../types/orders.type";
import * as orderService from "../services/orders.service";
export { formatOrder } from "../utils/format.utils";

/**
 * Creates an order.
 */
export async function handleCreate(input: unknown) {
  const parsed = z.object({}).parse(input);
  return orderService.create(parsed);
}

// plain comment
export const handleList = async () => orderService?.list();

export const handleBroken = async () => {
  if (ready) {
    try {
      await orderService.remove();
    } catch (e) {
      console.error(e);
    }
  }
  const lazy = await import("../services/lazy.service");
  const legacy = require("../repositories/legacy.repo");
};

function internalHelper() {}
`

func parse(t *testing.T, path, src string) *ast.File {
	t.Helper()
	file, err := ParseSource(context.Background(), path, []byte(src))
	require.NoError(t, err)
	return file
}

func TestParseSource_Directives(t *testing.T) {
	file := parse(t, "src/features/orders/actions/orders.action.ts", actionSource)

	require.Len(t, file.Directives, 1)
	assert.Equal(t, "use server", file.Directives[0].Value)
	assert.Equal(t, 1, file.Directives[0].At.Line)
	assert.False(t, file.HasErrors())
}

func TestParseSource_DirectiveAfterStatementIgnored(t *testing.T) {
	file := parse(t, "a.ts", "import x from \"y\";\n\"use client\";\n")
	assert.Empty(t, file.Directives)
}

func TestParseSource_Imports(t *testing.T) {
	file := parse(t, "src/features/orders/actions/orders.action.ts", actionSource)

	var specs []string
	for _, imp := range file.Imports {
		specs = append(specs, imp.Specifier)
	}
	assert.Equal(t, []string{
		"zod",
		"../types/orders.type",
		"../services/orders.service",
		"../utils/format.utils",
		"../services/lazy.service",
		"../repositories/legacy.repo",
	}, specs)

	assert.True(t, file.Imports[1].TypeOnly)
	assert.True(t, file.Imports[3].ReExport)
	assert.True(t, file.Imports[4].Dynamic)
	assert.True(t, file.Imports[5].Dynamic)
	assert.Equal(t, 3, file.Imports[0].At.Line)
}

func TestParseSource_ExportedFuncs(t *testing.T) {
	file := parse(t, "src/features/orders/actions/orders.action.ts", actionSource)

	funcs := file.ExportedFuncs()
	require.Len(t, funcs, 3)

	assert.Equal(t, "handleCreate", funcs[0].Name)
	assert.True(t, funcs[0].Declared)
	assert.Contains(t, funcs[0].Doc, "Creates an order.")

	assert.Equal(t, "handleList", funcs[1].Name)
	assert.False(t, funcs[1].Declared)
	assert.Empty(t, funcs[1].Doc, "line comments are not docs")

	assert.Equal(t, "handleBroken", funcs[2].Name)
}

func TestParseSource_MemberCalls(t *testing.T) {
	file := parse(t, "src/features/orders/actions/orders.action.ts", actionSource)

	var props []string
	ast.Inspect(file, func(n ast.Node) bool {
		if call, ok := n.(*ast.CallExpr); ok {
			if m, ok := call.Fun.(*ast.MemberExpr); ok {
				props = append(props, m.Property)
			}
		}
		return true
	})
	assert.Equal(t, []string{"parse", "object", "create", "list", "remove", "error"}, props)
}

func TestParseSource_ControlFlow(t *testing.T) {
	file := parse(t, "src/features/orders/repositories/orders.repo.ts", actionSource)

	var ifs, tries int
	var tryLine int
	ast.Inspect(file, func(n ast.Node) bool {
		switch s := n.(type) {
		case *ast.IfStmt:
			ifs++
		case *ast.TryStmt:
			tries++
			tryLine = s.At.Line
			assert.NotNil(t, s.Catch)
		}
		return true
	})
	assert.Equal(t, 1, ifs)
	assert.Equal(t, 1, tries)
	assert.Equal(t, 21, tryLine)
}

func TestParseSource_SyntaxError(t *testing.T) {
	file := parse(t, "bad.ts", "export function broken( {\n  return 1;\n")
	assert.True(t, file.HasErrors())
	assert.GreaterOrEqual(t, file.ErrorAt.Line, 1)
}

func TestParseSource_TSX(t *testing.T) {
	src := `"use client";
export function OrderCard() {
  return <div className="card">{useOrders().name}</div>;
}
`
	file := parse(t, "src/components/OrderCard.tsx", src)
	assert.False(t, file.HasErrors())
	require.Len(t, file.Directives, 1)
	assert.Equal(t, "use client", file.Directives[0].Value)
	require.Len(t, file.ExportedFuncs(), 1)
}

func TestParseFile_RelativePath(t *testing.T) {
	dir := t.TempDir()
	featureDir := filepath.Join(dir, "src", "features", "orders", "services")
	require.NoError(t, os.MkdirAll(featureDir, 0755))

	content := []byte("export function create() { return repo.insert(); }\n")
	require.NoError(t, os.WriteFile(filepath.Join(featureDir, "orders.service.ts"), content, 0644))

	parser := NewParser(dir)
	result, err := parser.ParseFile(context.Background(), filepath.Join(featureDir, "orders.service.ts"))
	require.NoError(t, err)

	assert.Equal(t, "src/features/orders/services/orders.service.ts", result.Path)
	assert.Equal(t, "src/features/orders/services/orders.service.ts", result.File.Path)
	assert.Equal(t, "typescript", result.Language)
	assert.Equal(t, ast.ComputeHash(content), result.Hash)

	// Relative input resolves against the project root
	again, err := parser.ParseFile(context.Background(), "src/features/orders/services/orders.service.ts")
	require.NoError(t, err)
	assert.Equal(t, result.Path, again.Path)
}

func TestParseFile_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewParser(t.TempDir()).ParseFile(ctx, "missing.ts")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRegistration(t *testing.T) {
	for ext, want := range map[string]string{
		".ts":  "typescript",
		".tsx": "tsx",
		".js":  "javascript",
		".mjs": "javascript",
	} {
		name, ok := ast.DefaultRegistry.GetParserName(ext)
		assert.True(t, ok, ext)
		assert.Equal(t, want, name, ext)
	}
}

func TestIsTargetFile(t *testing.T) {
	assert.True(t, IsTargetFile("a/b.ts"))
	assert.True(t, IsTargetFile("a/B.TSX"))
	assert.False(t, IsTargetFile("a/b.go"))
	assert.False(t, IsTargetFile("a/b.json"))
}
