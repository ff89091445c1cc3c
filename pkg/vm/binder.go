package vm

import (
	"github.com/zurustar/wwbasic/pkg/syntax/ast"
)

// Binder is the def-pass. It walks a whole program once before evaluation
// and registers every procedure definition into the function table of the
// module that textually encloses it, so calls may precede definitions.
type Binder struct {
	ctx    *Context
	target *Module
	file   string
}

// NewBinder creates a Binder registering into ctx's root module.
func NewBinder(ctx *Context) *Binder {
	return &Binder{ctx: ctx, target: ctx.root}
}

// Bind registers the definitions of program.
func (b *Binder) Bind(program *ast.Program) {
	if program == nil {
		return
	}
	b.file = program.File
	ast.Walk(b, program)
}

// Visit implements ast.Visitor. A MODULE block is walked by a child binder
// targeting that module, so the outer target is restored when the block
// ends.
func (b *Binder) Visit(node ast.Node) ast.Visitor {
	switch n := node.(type) {
	case *ast.ModuleDefinition:
		m := b.ctx.NewModule(n.Name.Value)
		child := &Binder{ctx: b.ctx, target: m, file: b.file}
		ast.Walk(child, n.Body)
		return nil

	case *ast.ProcedureDefinition:
		params := make([]string, len(n.Parameters))
		for i, p := range n.Parameters {
			params[i] = p.Value
		}
		fn := &Function{
			Name:   n.Name.Value,
			Kind:   FunctionUser,
			Params: params,
			Body:   n.Body,
			File:   b.file,
			Line:   n.Token.Line,
		}
		if prev := b.target.Define(fn); prev != nil {
			b.ctx.log.Debug("function redefined", "function", fn.Name, "module", b.target.name)
		}
		b.ctx.log.Debug("function defined", "function", fn.Name, "module", b.target.name, "params", params)
		return b

	case ast.Expression:
		return nil
	}
	return b
}
