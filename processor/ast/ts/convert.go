package ts

import (
	"strings"

	"github.com/c360studio/archcheck/processor/ast"
	sitter "github.com/smacker/go-tree-sitter"
)

// converter lowers a tree-sitter concrete syntax tree into ast nodes.
// A converter is single-use; it accumulates imports into file as it goes.
type converter struct {
	source []byte
	file   *ast.File
}

func (c *converter) convertProgram(path string, root *sitter.Node) *ast.File {
	c.file = &ast.File{
		Span: ast.Span{At: pos(root)},
		Path: path,
	}

	if root.HasError() {
		c.file.ErrorAt = firstError(root)
	}

	prologue := true
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		switch child.Type() {
		case "comment", "hash_bang_line":
			continue
		}

		if prologue {
			if d := c.directive(child); d != nil {
				c.file.Directives = append(c.file.Directives, d)
				continue
			}
			prologue = false
		}

		if stmt := c.convertTopLevel(child); stmt != nil {
			c.file.Body = append(c.file.Body, stmt)
		}
	}

	return c.file
}

// directive returns the prologue directive held by n, or nil.
func (c *converter) directive(n *sitter.Node) *ast.Directive {
	if n.Type() != "expression_statement" || n.NamedChildCount() != 1 {
		return nil
	}
	str := n.NamedChild(0)
	if str.Type() != "string" {
		return nil
	}
	return &ast.Directive{Span: ast.Span{At: pos(n)}, Value: unquote(str.Content(c.source))}
}

func (c *converter) convertTopLevel(n *sitter.Node) ast.Node {
	switch n.Type() {
	case "import_statement":
		if src := n.ChildByFieldName("source"); src != nil {
			c.addImport(n, src, hasChild(n, "type"), false, false)
		}
		return nil

	case "export_statement":
		return c.convertExport(n)
	}

	stmt := c.convert(n)
	setDoc(stmt, c.docFor(n))
	return stmt
}

func (c *converter) convertExport(n *sitter.Node) ast.Node {
	if src := n.ChildByFieldName("source"); src != nil {
		c.addImport(n, src, hasChild(n, "type"), true, false)
	}

	isDefault := hasChild(n, "default")
	doc := c.docFor(n)

	if decl := n.ChildByFieldName("declaration"); decl != nil {
		stmt := c.convert(decl)
		switch d := stmt.(type) {
		case *ast.FuncDecl:
			d.Exported = true
			d.Default = isDefault
		case *ast.VarDecl:
			d.Exported = true
		case *ast.ClassDecl:
			d.Exported = true
		}
		setDoc(stmt, doc)
		return stmt
	}

	if value := n.ChildByFieldName("value"); value != nil {
		return &ast.Other{
			Span:     ast.Span{At: pos(n)},
			Kind:     "export_default",
			Children: nonNil(c.convert(value)),
		}
	}

	// export { a, b } or export * from "x"
	return nil
}

// convert lowers any statement or expression node. It returns a nil
// interface (never a typed nil) for nodes with no tree representation.
func (c *converter) convert(n *sitter.Node) ast.Node {
	if n == nil {
		return nil
	}
	at := ast.Span{At: pos(n)}

	switch n.Type() {
	case "comment":
		return nil

	case "function_declaration", "generator_function_declaration":
		fn := &ast.FuncDecl{
			Span:  at,
			Kind:  ast.FuncDeclaration,
			Async: hasChild(n, "async"),
			Body:  c.convertBlock(n.ChildByFieldName("body")),
		}
		if name := n.ChildByFieldName("name"); name != nil {
			fn.Name = name.Content(c.source)
		}
		return fn

	case "lexical_declaration", "variable_declaration":
		decl := &ast.VarDecl{Span: at}
		if n.ChildCount() > 0 {
			decl.Kind = n.Child(0).Type()
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			if child.Type() != "variable_declarator" {
				continue
			}
			spec := &ast.VarSpec{Span: ast.Span{At: pos(child)}}
			if name := child.ChildByFieldName("name"); name != nil {
				spec.Name = name.Content(c.source)
			}
			spec.Value = c.convert(child.ChildByFieldName("value"))
			decl.Specs = append(decl.Specs, spec)
		}
		return decl

	case "class_declaration", "abstract_class_declaration", "class":
		class := &ast.ClassDecl{Span: at}
		if name := n.ChildByFieldName("name"); name != nil {
			class.Name = name.Content(c.source)
		}
		if body := n.ChildByFieldName("body"); body != nil {
			for i := 0; i < int(body.NamedChildCount()); i++ {
				member := body.NamedChild(i)
				if member.Type() == "method_definition" {
					method := &ast.FuncDecl{
						Span:  ast.Span{At: pos(member)},
						Kind:  ast.FuncMethod,
						Async: hasChild(member, "async"),
						Body:  c.convertBlock(member.ChildByFieldName("body")),
					}
					if name := member.ChildByFieldName("name"); name != nil {
						method.Name = name.Content(c.source)
					}
					class.Members = append(class.Members, method)
					continue
				}
				if m := c.convert(member); m != nil {
					class.Members = append(class.Members, m)
				}
			}
		}
		return class

	case "statement_block":
		return c.convertBlock(n)

	case "expression_statement":
		stmt := &ast.ExprStmt{Span: at}
		if n.NamedChildCount() > 0 {
			stmt.X = c.convert(n.NamedChild(0))
		}
		return stmt

	case "if_statement":
		stmt := &ast.IfStmt{
			Span: at,
			Cond: c.convert(n.ChildByFieldName("condition")),
			Then: c.convert(n.ChildByFieldName("consequence")),
		}
		if alt := n.ChildByFieldName("alternative"); alt != nil && alt.NamedChildCount() > 0 {
			stmt.Else = c.convert(alt.NamedChild(0))
		}
		return stmt

	case "try_statement":
		stmt := &ast.TryStmt{
			Span: at,
			Body: c.convertBlock(n.ChildByFieldName("body")),
		}
		if handler := n.ChildByFieldName("handler"); handler != nil {
			stmt.Catch = c.convertBlock(handler.ChildByFieldName("body"))
		}
		if finalizer := n.ChildByFieldName("finalizer"); finalizer != nil {
			stmt.Finally = c.convertBlock(finalizer.ChildByFieldName("body"))
		}
		return stmt

	case "return_statement":
		stmt := &ast.ReturnStmt{Span: at}
		if n.NamedChildCount() > 0 {
			stmt.Result = c.convert(n.NamedChild(0))
		}
		return stmt

	case "call_expression":
		return c.convertCall(n)

	case "member_expression":
		member := &ast.MemberExpr{
			Span:     at,
			X:        c.convert(n.ChildByFieldName("object")),
			Optional: hasChild(n, "optional_chain"),
		}
		if prop := n.ChildByFieldName("property"); prop != nil {
			member.Property = prop.Content(c.source)
		}
		return member

	case "identifier", "this", "super":
		return &ast.Ident{Span: at, Name: n.Content(c.source)}

	case "string":
		return &ast.StringLit{Span: at, Value: unquote(n.Content(c.source))}

	case "arrow_function":
		lit := &ast.FuncLit{Span: at, Arrow: true, Async: hasChild(n, "async")}
		if body := n.ChildByFieldName("body"); body != nil {
			lit.Body = c.convert(body)
		}
		return lit

	case "function_expression", "function", "generator_function":
		lit := &ast.FuncLit{Span: at, Async: hasChild(n, "async")}
		if body := n.ChildByFieldName("body"); body != nil {
			lit.Body = c.convertBlock(body)
		}
		return lit

	case "parenthesized_expression":
		if n.NamedChildCount() == 1 {
			return c.convert(n.NamedChild(0))
		}
	}

	return c.convertOther(n)
}

func (c *converter) convertOther(n *sitter.Node) ast.Node {
	other := &ast.Other{Span: ast.Span{At: pos(n)}, Kind: n.Type()}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if child := c.convert(n.NamedChild(i)); child != nil {
			other.Children = append(other.Children, child)
		}
	}
	return other
}

// convertBlock lowers a statement_block. A non-block statement is wrapped.
func (c *converter) convertBlock(n *sitter.Node) *ast.BlockStmt {
	if n == nil {
		return nil
	}
	block := &ast.BlockStmt{Span: ast.Span{At: pos(n)}}
	if n.Type() != "statement_block" {
		block.List = nonNil(c.convert(n))
		return block
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if stmt := c.convert(n.NamedChild(i)); stmt != nil {
			block.List = append(block.List, stmt)
		}
	}
	return block
}

func (c *converter) convertCall(n *sitter.Node) ast.Node {
	fn := n.ChildByFieldName("function")
	args := n.ChildByFieldName("arguments")

	call := &ast.CallExpr{
		Span:     ast.Span{At: pos(n)},
		Fun:      c.convert(fn),
		Optional: hasChild(n, "optional_chain"),
	}

	if args != nil {
		if args.Type() == "arguments" {
			for i := 0; i < int(args.NamedChildCount()); i++ {
				if arg := c.convert(args.NamedChild(i)); arg != nil {
					call.Args = append(call.Args, arg)
				}
			}
		} else {
			// tagged template
			call.Args = nonNil(c.convert(args))
		}
	}

	// import("x") and require("x") are import edges too
	if fn != nil && (fn.Type() == "import" || (fn.Type() == "identifier" && fn.Content(c.source) == "require")) {
		if args != nil && args.NamedChildCount() > 0 && args.NamedChild(0).Type() == "string" {
			c.addImport(n, args.NamedChild(0), false, false, true)
		}
	}

	return call
}

func (c *converter) addImport(n, src *sitter.Node, typeOnly, reExport, dynamic bool) {
	c.file.Imports = append(c.file.Imports, &ast.ImportDecl{
		Span:      ast.Span{At: pos(n)},
		Specifier: unquote(src.Content(c.source)),
		TypeOnly:  typeOnly,
		ReExport:  reExport,
		Dynamic:   dynamic,
	})
}

// docFor returns the /** */ comment immediately preceding n.
func (c *converter) docFor(n *sitter.Node) string {
	prev := n.PrevSibling()
	if prev == nil || prev.Type() != "comment" {
		return ""
	}
	if prev.EndPoint().Row+1 < n.StartPoint().Row {
		return ""
	}
	text := prev.Content(c.source)
	if !strings.HasPrefix(text, "/**") {
		return ""
	}
	return text
}

func setDoc(n ast.Node, doc string) {
	if doc == "" {
		return
	}
	switch d := n.(type) {
	case *ast.FuncDecl:
		d.Doc = doc
	case *ast.VarDecl:
		d.Doc = doc
	case *ast.ClassDecl:
		d.Doc = doc
	}
}

// firstError returns the position of the first ERROR or MISSING node.
func firstError(n *sitter.Node) ast.Pos {
	if n.Type() == "ERROR" || n.IsMissing() {
		return pos(n)
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil || !child.HasError() && !child.IsMissing() {
			continue
		}
		if at := firstError(child); at.Line > 0 {
			return at
		}
	}
	at := pos(n)
	if at.Line == 0 {
		at.Line = 1
	}
	return at
}

func pos(n *sitter.Node) ast.Pos {
	p := n.StartPoint()
	return ast.Pos{Line: int(p.Row) + 1, Column: int(p.Column) + 1}
}

func hasChild(n *sitter.Node, typ string) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		if child := n.Child(i); child != nil && child.Type() == typ {
			return true
		}
	}
	return false
}

func nonNil(n ast.Node) []ast.Node {
	if n == nil {
		return nil
	}
	return []ast.Node{n}
}

func unquote(s string) string {
	if len(s) >= 2 {
		switch s[0] {
		case '"', '\'', '`':
			if s[len(s)-1] == s[0] {
				return s[1 : len(s)-1]
			}
		}
	}
	return s
}
