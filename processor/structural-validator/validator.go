// Package structuralvalidator checks naming-derived call obligations: an
// exported entry-point function named handleXxx must call a method named xxx
// somewhere in its body.
package structuralvalidator

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/c360studio/archcheck/processor/ast"
)

// Contract configures which functions carry an obligation.
type Contract struct {
	// HandlerPrefix marks functions subject to the contract.
	HandlerPrefix string
}

// DefaultContract is the handleXxx → *.xxx() contract.
func DefaultContract() Contract {
	return Contract{HandlerPrefix: "handle"}
}

// Finding is a handler whose body lacks the expected call.
type Finding struct {
	Function string
	Expected string
	At       ast.Pos
}

// Validator evaluates a Contract against parsed files. It holds no mutable
// state and is safe for concurrent use.
type Validator struct {
	contract Contract
}

// NewValidator creates a Validator for the given contract.
func NewValidator(contract Contract) *Validator {
	if contract.HandlerPrefix == "" {
		contract = DefaultContract()
	}
	return &Validator{contract: contract}
}

// ExpectedCall derives the method a handler must call: the name without the
// handler prefix, first letter lowercased. ok is false when the name is not
// the prefix followed by an uppercase letter.
func (v *Validator) ExpectedCall(name string) (expected string, ok bool) {
	suffix, found := strings.CutPrefix(name, v.contract.HandlerPrefix)
	if !found || suffix == "" {
		return "", false
	}
	first, size := utf8.DecodeRuneInString(suffix)
	if !unicode.IsUpper(first) {
		return "", false
	}
	return string(unicode.ToLower(first)) + suffix[size:], true
}

// Validate returns one Finding per exported handler missing its call.
func (v *Validator) Validate(file *ast.File) []Finding {
	var findings []Finding
	for _, fn := range file.ExportedFuncs() {
		expected, ok := v.ExpectedCall(fn.Name)
		if !ok {
			continue
		}
		if fn.Body != nil && HasMemberCall(fn.Body, expected) {
			continue
		}
		findings = append(findings, Finding{Function: fn.Name, Expected: expected, At: fn.At})
	}
	return findings
}

// HasMemberCall reports whether body contains a call of the form x.name(...),
// at any depth including nested blocks, branches and closures.
func HasMemberCall(body ast.Node, name string) bool {
	found := false
	ast.Inspect(body, func(n ast.Node) bool {
		if found {
			return false
		}
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		if member, ok := call.Fun.(*ast.MemberExpr); ok && member.Property == name {
			found = true
			return false
		}
		return true
	})
	return found
}
