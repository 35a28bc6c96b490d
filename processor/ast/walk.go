package ast

import "fmt"

// A Visitor's Visit method is invoked for each node encountered by Walk.
// If the result visitor w is not nil, Walk visits each of the children
// of node with the visitor w, followed by a call of w.Visit(nil).
type Visitor interface {
	Visit(node Node) (w Visitor)
}

func walkList[N Node](v Visitor, list []N) {
	for _, n := range list {
		Walk(v, n)
	}
}

// Walk traverses the tree in depth-first order. It dispatches on the closed set
// of node variants and panics on a type it does not know, so a new variant
// cannot be added without teaching the walker about it.
func Walk(v Visitor, node Node) {
	if v = v.Visit(node); v == nil {
		return
	}

	switch n := node.(type) {
	case *File:
		walkList(v, n.Directives)
		walkList(v, n.Body)

	case *Directive, *ImportDecl, *Ident, *StringLit:
		// leaves

	case *FuncDecl:
		if n.Body != nil {
			Walk(v, n.Body)
		}

	case *VarDecl:
		walkList(v, n.Specs)

	case *VarSpec:
		if n.Value != nil {
			Walk(v, n.Value)
		}

	case *ClassDecl:
		walkList(v, n.Members)

	case *BlockStmt:
		walkList(v, n.List)

	case *ExprStmt:
		if n.X != nil {
			Walk(v, n.X)
		}

	case *IfStmt:
		if n.Cond != nil {
			Walk(v, n.Cond)
		}
		if n.Then != nil {
			Walk(v, n.Then)
		}
		if n.Else != nil {
			Walk(v, n.Else)
		}

	case *TryStmt:
		if n.Body != nil {
			Walk(v, n.Body)
		}
		if n.Catch != nil {
			Walk(v, n.Catch)
		}
		if n.Finally != nil {
			Walk(v, n.Finally)
		}

	case *ReturnStmt:
		if n.Result != nil {
			Walk(v, n.Result)
		}

	case *CallExpr:
		if n.Fun != nil {
			Walk(v, n.Fun)
		}
		walkList(v, n.Args)

	case *MemberExpr:
		if n.X != nil {
			Walk(v, n.X)
		}

	case *FuncLit:
		if n.Body != nil {
			Walk(v, n.Body)
		}

	case *Other:
		walkList(v, n.Children)

	default:
		panic(fmt.Sprintf("ast.Walk: unexpected node type %T", n))
	}

	v.Visit(nil)
}

type inspector func(Node) bool

func (f inspector) Visit(node Node) Visitor {
	if f(node) {
		return f
	}
	return nil
}

// Inspect traverses the tree in depth-first order, calling f(node) for each
// node. If f returns true, Inspect descends into the node's children, followed
// by a call of f(nil).
func Inspect(node Node, f func(Node) bool) {
	Walk(inspector(f), node)
}
