package vm

import (
	"github.com/zurustar/wwbasic/pkg/syntax/ast"
	"github.com/zurustar/wwbasic/pkg/value"
)

// FunctionKind distinguishes host closures from procedures defined in BASIC.
type FunctionKind int

const (
	FunctionNative FunctionKind = iota
	FunctionUser
)

func (k FunctionKind) String() string {
	if k == FunctionUser {
		return "user"
	}
	return "native"
}

// NativeFunc is a host function callable from BASIC. It receives the raw
// argument list and validates it itself.
type NativeFunc func(c *Context, args []value.Value) (value.Value, error)

// Function is an entry of a module's function table.
type Function struct {
	Name   string
	Kind   FunctionKind
	Params []string

	// Body is set for user functions. It points into a syntax tree owned by
	// one of the Context's source units.
	Body *ast.Block
	File string
	Line int

	Native NativeFunc

	// Module is the module whose table holds the function.
	Module *Module
}

// Arity returns the number of declared parameters.
func (f *Function) Arity() int {
	return len(f.Params)
}
