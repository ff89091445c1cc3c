package vm

import (
	"errors"
	"fmt"
	"math"

	"github.com/zurustar/wwbasic/pkg/syntax/ast"
	"github.com/zurustar/wwbasic/pkg/syntax/token"
	"github.com/zurustar/wwbasic/pkg/value"
)

// Signal tells a statement sequence whether to keep going.
type Signal int

const (
	Continue Signal = iota
	Return
)

func (s Signal) String() string {
	if s == Return {
		return "Return"
	}
	return "Continue"
}

// Result is the outcome of evaluating one statement.
type Result struct {
	Signal Signal
	Value  value.Value
}

func proceed(v value.Value) Result { return Result{Signal: Continue, Value: v} }

var operators = map[token.TokenType]value.Operator{
	token.PLUS:     value.OpAdd,
	token.MINUS:    value.OpSub,
	token.ASTERISK: value.OpMul,
	token.SLASH:    value.OpDiv,
	token.PERCENT:  value.OpMod,
	token.OR:       value.OpOr,
	token.AND:      value.OpAnd,
	token.LT:       value.OpLess,
	token.GT:       value.OpGreater,
	token.EQ:       value.OpEqual,
	token.NOT_EQ:   value.OpNotEqual,
	token.LTE:      value.OpLessEqual,
	token.GTE:      value.OpGreaterEqual,
}

// Evaluator walks a syntax tree against a Context.
type Evaluator struct {
	ctx  *Context
	file string
}

// NewEvaluator creates an Evaluator for ctx.
func NewEvaluator(ctx *Context) *Evaluator {
	return &Evaluator{ctx: ctx}
}

// Run evaluates a program. The current module is reset to the root first.
// A top-level RETURN stops the program and its value is returned.
func (e *Evaluator) Run(program *ast.Program) Result {
	e.ctx.current = e.ctx.root
	if program == nil {
		return proceed(value.Default())
	}
	e.file = program.File
	return e.execStatements(program.Statements)
}

// Eval evaluates a single statement or expression in the current module.
func (e *Evaluator) Eval(node ast.Node) Result {
	switch n := node.(type) {
	case ast.Statement:
		return e.execStatement(n)
	case ast.Expression:
		return proceed(e.evalExpression(n))
	}
	e.report(NewUnexpectedNodeError(node), 0)
	return proceed(value.Default())
}

// execStatements runs statements in order and stops at the first Return.
func (e *Evaluator) execStatements(stmts []ast.Statement) Result {
	result := proceed(value.Default())
	for _, stmt := range stmts {
		result = e.execStatement(stmt)
		if result.Signal == Return {
			return result
		}
	}
	return result
}

func (e *Evaluator) execStatement(stmt ast.Statement) Result {
	switch n := stmt.(type) {
	case *ast.AssignStatement:
		return e.execAssign(n)
	case *ast.ExpressionStatement:
		return proceed(e.evalExpression(n.Expression))
	case *ast.IfStatement:
		return e.execIf(n)
	case *ast.ForStatement:
		return e.execFor(n)
	case *ast.ReturnStatement:
		v := value.Default()
		if n.ReturnValue != nil {
			v = e.evalExpression(n.ReturnValue)
		}
		e.ctx.log.Debug("return", "value", v)
		return Result{Signal: Return, Value: v}
	case *ast.Block:
		return e.execStatements(n.Statements)
	case *ast.ProcedureDefinition:
		// registered by the def-pass
		return proceed(value.Default())
	case *ast.ModuleDefinition:
		return e.execModule(n)
	case *ast.ImportStatement:
		e.ctx.current.Import(n.Name)
		e.ctx.log.Debug("import", "name", n.Name, "module", e.ctx.current.name)
		return proceed(value.Default())
	case nil:
		e.report(NewUnexpectedNodeError(stmt), 0)
	default:
		e.report(NewUnexpectedNodeError(stmt), lineOf(stmt))
	}
	return proceed(value.Default())
}

func (e *Evaluator) execAssign(n *ast.AssignStatement) Result {
	if n.Name == nil || n.Value == nil {
		e.report(NewUnexpectedNodeError(n), lineOf(n))
		return proceed(value.Default())
	}
	v := e.evalExpression(n.Value)
	if err := e.ctx.upsert(n.Name.Value, v); err != nil {
		e.report(err, n.Token.Line)
		return proceed(value.Default())
	}
	e.ctx.log.Debug("assign", "name", n.Name.Value, "value", v)
	return proceed(v)
}

func (e *Evaluator) execIf(n *ast.IfStatement) Result {
	for _, br := range n.Branches {
		if e.evalExpression(br.Condition).ToBool() {
			return e.execStatements(br.Consequence.Statements)
		}
	}
	if n.Alternative != nil {
		return e.execStatements(n.Alternative.Statements)
	}
	return proceed(value.Default())
}

// execFor runs FOR v = start TO end [STEP n]. Both bounds are inclusive.
// The loop variable lives in a fresh scope and is re-read after every body
// run, so the body may change it. A zero step, a start already past end, or
// a step that would overshoot end (or overflow int64) ends the loop.
func (e *Evaluator) execFor(n *ast.ForStatement) Result {
	start := e.evalExpression(n.Start).ToInt()
	end := e.evalExpression(n.End).ToInt()
	step := int64(1)
	if n.Step != nil {
		step = e.evalExpression(n.Step).ToInt()
	}

	if step == 0 || (step > 0 && start > end) || (step < 0 && start < end) {
		e.ctx.log.Debug("for loop skipped", "var", n.Variable.Value, "start", start, "end", end, "step", step)
		return proceed(value.Default())
	}

	m := e.ctx.current
	scope := m.PushScope("FOR " + n.Variable.Value)
	defer m.PopScope()
	loopVar := scope.Set(n.Variable.Value, value.Int(start))

	for {
		if r := e.execStatements(n.Body.Statements); r.Signal == Return {
			return r
		}
		cur := loopVar.Value.ToInt()
		if cur == end {
			break
		}
		// cur+step must not wrap around at the int64 limits
		if (step > 0 && cur > math.MaxInt64-step) || (step < 0 && cur < math.MinInt64-step) {
			break
		}
		next := cur + step
		if (step > 0 && next > end) || (step < 0 && next < end) {
			break
		}
		loopVar.Value = value.Int(next)
	}
	return proceed(value.Default())
}

func (e *Evaluator) execModule(n *ast.ModuleDefinition) Result {
	prev := e.ctx.current
	e.ctx.current = e.ctx.NewModule(n.Name.Value)
	defer func() { e.ctx.current = prev }()

	return e.execStatements(n.Body.Statements)
}

func (e *Evaluator) evalExpression(expr ast.Expression) value.Value {
	switch n := expr.(type) {
	case *ast.IntegerLiteral:
		return value.Int(n.Value)
	case *ast.StringLiteral:
		return value.Str(n.Unquote())
	case *ast.BooleanLiteral:
		return value.Bool(n.Value)
	case *ast.Identifier:
		v, err := e.ctx.lookupVar(n.Value)
		if err != nil {
			e.report(err, n.Token.Line)
			return value.Default()
		}
		return v.Value
	case *ast.GroupedExpression:
		return e.evalExpression(n.Expression)
	case *ast.InfixExpression:
		return e.evalInfix(n)
	case *ast.CallExpression:
		args := make([]value.Value, len(n.Arguments))
		for i, a := range n.Arguments {
			args[i] = e.evalExpression(a)
		}
		return e.call(n.Function.Value, args, n.Token.Line)
	case nil:
		e.report(NewUnexpectedNodeError(expr), 0)
	default:
		e.report(NewUnexpectedNodeError(expr), lineOf(expr))
	}
	return value.Default()
}

func (e *Evaluator) evalInfix(n *ast.InfixExpression) value.Value {
	if n.Left == nil || n.Right == nil {
		e.report(NewUnexpectedNodeError(n), n.Token.Line)
		return value.Default()
	}
	left := e.evalExpression(n.Left)
	right := e.evalExpression(n.Right)

	op, ok := operators[n.Operator]
	if !ok {
		e.report(NewMalformedOperatorError(string(n.Operator)), n.Token.Line)
		return value.Default()
	}

	result, err := value.Binary(op, left, right)
	switch {
	case err == nil:
	case errors.Is(err, value.ErrDivisionByZero):
		e.report(NewDivisionByZeroError(), n.Token.Line)
	case errors.Is(err, value.ErrInvalidOperation):
		e.report(NewInvalidOperationError(err), n.Token.Line)
	default:
		e.report(NewRuntimeError(ErrorInvalidOperation, err.Error()), n.Token.Line)
	}
	return result
}

// call resolves and invokes a function. Any Return signal raised by the
// body ends at this boundary: the caller always continues.
func (e *Evaluator) call(name string, args []value.Value, line int) value.Value {
	fn, rerr := e.ctx.lookupFunction(name)
	if rerr != nil {
		e.report(rerr, line)
		return value.Default()
	}

	if fn.Kind == FunctionUser && len(args) != len(fn.Params) {
		e.report(NewArgumentMismatchError(name, len(args), len(fn.Params)), line)
		return value.Default()
	}

	if e.ctx.depth >= e.ctx.maxDepth {
		e.report(NewStackOverflowError(name, e.ctx.depth+1, e.ctx.maxDepth), line)
		return value.Default()
	}
	e.ctx.depth++
	defer func() { e.ctx.depth-- }()

	e.ctx.log.Debug("call", "function", fn.Name, "kind", fn.Kind, "args", len(args))

	if fn.Kind == FunctionNative {
		return e.callNative(fn, args, line)
	}
	return e.callUser(fn, args)
}

func (e *Evaluator) callNative(fn *Function, args []value.Value, line int) (result value.Value) {
	defer func() {
		if r := recover(); r != nil {
			e.report(NewNativeFunctionError(fn.Name, fmt.Errorf("panic: %v", r)), line)
			result = value.Default()
		}
	}()

	v, err := fn.Native(e.ctx, args)
	if err != nil {
		e.report(NewNativeFunctionError(fn.Name, err), line)
	}
	return v
}

// callUser runs a user function in a new scope on its module's stack, with
// its module as the current module. Both are restored on every exit path.
func (e *Evaluator) callUser(fn *Function, args []value.Value) value.Value {
	m := fn.Module

	prevModule, prevFile := e.ctx.current, e.file
	e.ctx.current, e.file = m, fn.File
	defer func() { e.ctx.current, e.file = prevModule, prevFile }()

	scope := m.PushScope(fn.Name)
	defer m.PopScope()

	for i, p := range fn.Params {
		scope.Set(p, args[i])
	}

	if fn.Body == nil {
		return value.Default()
	}
	r := e.execStatements(fn.Body.Statements)
	if r.Signal == Return {
		return r.Value
	}
	return value.Default()
}

func (e *Evaluator) report(err *RuntimeError, line int) {
	if err.File == "" {
		err.File = e.file
	}
	if err.Line == 0 {
		err.Line = line
	}
	e.ctx.report(err)
}

func lineOf(n ast.Node) int {
	switch n := n.(type) {
	case *ast.AssignStatement:
		return n.Token.Line
	case *ast.ExpressionStatement:
		return n.Token.Line
	case *ast.IfStatement:
		return n.Token.Line
	case *ast.ForStatement:
		return n.Token.Line
	case *ast.ReturnStatement:
		return n.Token.Line
	case *ast.ProcedureDefinition:
		return n.Token.Line
	case *ast.ModuleDefinition:
		return n.Token.Line
	case *ast.ImportStatement:
		return n.Token.Line
	case *ast.Identifier:
		return n.Token.Line
	case *ast.InfixExpression:
		return n.Token.Line
	case *ast.CallExpression:
		return n.Token.Line
	}
	return 0
}
