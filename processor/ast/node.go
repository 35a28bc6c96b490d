// Package ast defines the typed syntax tree the conformance rules inspect, the
// FileParser contract language front-ends implement, and a watcher that
// re-parses files as they change.
//
// The tree is a closed set of node variants. Nodes hold no parent pointers;
// every edge points from a node to its children, so a walk always terminates.
package ast

// Pos is a 1-based source position.
type Pos struct {
	Line   int
	Column int
}

// Node is implemented by every tree variant.
type Node interface {
	Pos() Pos
	node()
}

// Span records where a node starts. All variants embed it.
type Span struct {
	At Pos
}

// Pos returns the node's start position.
func (s Span) Pos() Pos { return s.At }

func (Span) node() {}

// File is the root of a parsed source file.
type File struct {
	Span

	// Path is the slash-separated path relative to the project root.
	Path string

	// Directives are the leading string-literal statements ("use server").
	Directives []*Directive

	// Imports lists every import edge in source order, including re-exports
	// and dynamic imports.
	Imports []*ImportDecl

	// Body holds the top-level statements.
	Body []Node

	// ErrorAt is the first syntax error position, zero when the file parsed cleanly.
	ErrorAt Pos
}

// HasErrors reports whether the front-end hit a syntax error.
func (f *File) HasErrors() bool {
	return f.ErrorAt.Line > 0
}

// Directive is a prologue string statement such as "use client".
type Directive struct {
	Span
	Value string
}

// ImportDecl is one import specifier as written in the source.
type ImportDecl struct {
	Span
	Specifier string
	TypeOnly  bool
	ReExport  bool // export ... from "x"
	Dynamic   bool // import("x") or require("x")
}

// FuncKind distinguishes how a function was declared.
type FuncKind int

const (
	FuncDeclaration FuncKind = iota
	FuncMethod
)

// FuncDecl is a named function declaration or class method.
type FuncDecl struct {
	Span
	Name     string
	Kind     FuncKind
	Exported bool
	Default  bool
	Async    bool
	// Doc is the raw text of the /** */ comment directly above the declaration.
	Doc  string
	Body *BlockStmt
}

// VarDecl is a const/let/var declaration.
type VarDecl struct {
	Span
	Kind     string
	Exported bool
	Doc      string
	Specs    []*VarSpec
}

// VarSpec binds one name.
type VarSpec struct {
	Span
	Name  string
	Value Node
}

// ClassDecl is a class declaration; methods appear as FuncDecl members.
type ClassDecl struct {
	Span
	Name     string
	Exported bool
	Doc      string
	Members  []Node
}

// BlockStmt is a braced statement list.
type BlockStmt struct {
	Span
	List []Node
}

// ExprStmt is an expression used as a statement.
type ExprStmt struct {
	Span
	X Node
}

// IfStmt is an if statement; Else is nil or another statement.
type IfStmt struct {
	Span
	Cond Node
	Then Node
	Else Node
}

// TryStmt is a try/catch/finally statement.
type TryStmt struct {
	Span
	Body    *BlockStmt
	Catch   *BlockStmt
	Finally *BlockStmt
}

// ReturnStmt is a return statement; Result may be nil.
type ReturnStmt struct {
	Span
	Result Node
}

// CallExpr is a call: Fun(Args...).
type CallExpr struct {
	Span
	Fun      Node
	Args     []Node
	Optional bool
}

// MemberExpr is a non-computed property access: X.Property.
type MemberExpr struct {
	Span
	X        Node
	Property string
	Optional bool
}

// Ident is an identifier reference.
type Ident struct {
	Span
	Name string
}

// StringLit is a string literal with its quotes removed.
type StringLit struct {
	Span
	Value string
}

// FuncLit is an arrow function or function expression.
type FuncLit struct {
	Span
	Arrow bool
	Async bool
	// Body is a *BlockStmt or, for concise arrows, an expression.
	Body Node
}

// Other is any construct the rules do not model individually (loops, switch,
// object literals, binary expressions, ...). Its children are still walked.
type Other struct {
	Span
	Kind     string
	Children []Node
}

// ExportedFunc is a function visible at module top level, either declared with
// `export function` or bound to an exported const.
type ExportedFunc struct {
	Name string
	At   Pos
	Doc  string
	Body Node
	// Declared is true for function declarations, false for const-bound functions.
	Declared bool
}

// ExportedFuncs lists the file's exported top-level functions in source order.
func (f *File) ExportedFuncs() []ExportedFunc {
	var out []ExportedFunc
	for _, stmt := range f.Body {
		switch d := stmt.(type) {
		case *FuncDecl:
			if !d.Exported || d.Name == "" {
				continue
			}
			var body Node
			if d.Body != nil {
				body = d.Body
			}
			out = append(out, ExportedFunc{Name: d.Name, At: d.At, Doc: d.Doc, Body: body, Declared: true})
		case *VarDecl:
			if !d.Exported {
				continue
			}
			for _, spec := range d.Specs {
				lit, ok := spec.Value.(*FuncLit)
				if !ok {
					continue
				}
				out = append(out, ExportedFunc{Name: spec.Name, At: spec.At, Doc: d.Doc, Body: lit.Body})
			}
		}
	}
	return out
}
