// Package vm is the execution engine of the BASIC interpreter.
//
// A Context owns every module, every loaded source unit and the diagnostics
// of a run. A Binder registers procedure and module definitions (the
// def-pass), then an Evaluator walks the tree against the Context.
//
// Resolution of an unqualified name searches the current module's scope
// stack, then the root module's. A qualified name (module.id, split at the
// last dot) searches only the named module. Identifiers are
// case-insensitive everywhere.
//
// A Context is not safe for concurrent use.
package vm

import (
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/zurustar/wwbasic/pkg/ident"
	"github.com/zurustar/wwbasic/pkg/logger"
	"github.com/zurustar/wwbasic/pkg/syntax/ast"
	"github.com/zurustar/wwbasic/pkg/value"
)

// MaxStackDepth is the default maximum call depth.
const MaxStackDepth = 1000

// SourceUnit is one parsed program. The Context keeps every unit alive for
// as long as functions defined in it may be called.
type SourceUnit struct {
	Name    string
	Source  string
	Program *ast.Program
}

// Context is the execution environment of a run.
type Context struct {
	modules map[string]*Module
	root    *Module
	current *Module

	sources     []*SourceUnit
	diagnostics []*RuntimeError

	depth    int
	maxDepth int

	out io.Writer
	log *slog.Logger
}

// Option is a functional option for configuring the Context.
type Option func(*Context)

// WithLogger sets a custom logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Context) {
		c.log = log
	}
}

// WithOutput sets the writer used by output functions such as PRINT.
func WithOutput(w io.Writer) Option {
	return func(c *Context) {
		c.out = w
	}
}

// WithMaxDepth sets the maximum call depth. Values <= 0 keep the default.
func WithMaxDepth(depth int) Option {
	return func(c *Context) {
		if depth > 0 {
			c.maxDepth = depth
		}
	}
}

// New creates a Context holding only the root module.
func New(opts ...Option) *Context {
	root := newModule("")
	c := &Context{
		modules:  map[string]*Module{"": root},
		root:     root,
		current:  root,
		maxDepth: MaxStackDepth,
		out:      os.Stdout,
		log:      logger.GetLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Root returns the permanent root module.
func (c *Context) Root() *Module {
	return c.root
}

// Current returns the currently active module.
func (c *Context) Current() *Module {
	return c.current
}

// Output returns the writer for script output.
func (c *Context) Output() io.Writer {
	return c.out
}

// Logger returns the Context's logger.
func (c *Context) Logger() *slog.Logger {
	return c.log
}

// MaxDepth returns the maximum call depth.
func (c *Context) MaxDepth() int {
	return c.maxDepth
}

// Module returns the module called name.
func (c *Context) Module(name string) (*Module, bool) {
	m, ok := c.modules[ident.Canonical(name)]
	return m, ok
}

// NewModule returns the module called name, creating it if needed.
func (c *Context) NewModule(name string) *Module {
	key := ident.Canonical(name)
	if m, ok := c.modules[key]; ok {
		return m
	}
	m := newModule(name)
	c.modules[key] = m
	c.log.Debug("module created", "module", name)
	return m
}

// Modules returns all modules sorted by name, root first.
func (c *Context) Modules() []*Module {
	out := make([]*Module, 0, len(c.modules))
	for _, m := range c.modules {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		return ident.Canonical(out[i].name) < ident.Canonical(out[j].name)
	})
	return out
}

// RegisterNative registers fn under a possibly qualified name:
// "LEN" goes into the root module, "wwiv.io.PRINT" into module wwiv.io,
// which is created if needed. params is documentation only.
func (c *Context) RegisterNative(name string, fn NativeFunc, params ...string) {
	pkg, id := ident.Split(name)
	m := c.root
	if pkg != "" {
		m = c.NewModule(pkg)
	}
	m.RegisterNative(id, fn, params...)
}

// resolveModule picks the module a possibly qualified name refers to.
func (c *Context) resolveModule(name string) (m *Module, id string, qualified bool, err *RuntimeError) {
	pkg, id := ident.Split(name)
	if pkg == "" {
		return c.current, name, false, nil
	}
	m, ok := c.Module(pkg)
	if !ok {
		return nil, id, true, NewUndefinedModuleError(name, pkg)
	}
	return m, id, true, nil
}

// lookupVar resolves a variable for reading.
func (c *Context) lookupVar(name string) (*Var, *RuntimeError) {
	m, id, qualified, err := c.resolveModule(name)
	if err != nil {
		return nil, err
	}
	if v, ok := m.Lookup(id); ok {
		return v, nil
	}
	if !qualified && m != c.root {
		if v, ok := c.root.Lookup(id); ok {
			return v, nil
		}
	}
	return nil, NewUndefinedVariableError(name, m.name)
}

// Var returns the value of a possibly qualified variable, or
// value.Default() and false if it is not bound. It records no diagnostic.
func (c *Context) Var(name string) (value.Value, bool) {
	v, err := c.lookupVar(name)
	if err != nil {
		return value.Default(), false
	}
	return v.Value, true
}

// Upsert assigns v to a possibly qualified name. An unqualified name
// updates the current module's binding, else an existing root binding,
// else creates a binding in the current module's innermost scope.
func (c *Context) Upsert(name string, v value.Value) error {
	if err := c.upsert(name, v); err != nil {
		return err
	}
	return nil
}

func (c *Context) upsert(name string, v value.Value) *RuntimeError {
	m, id, qualified, err := c.resolveModule(name)
	if err != nil {
		return err
	}
	if !qualified && m != c.root && !m.Has(id) && c.root.Has(id) {
		m = c.root
	}
	m.Upsert(id, v)
	return nil
}

// lookupFunction resolves a possibly qualified function name. Unqualified
// names fall back to the root module.
func (c *Context) lookupFunction(name string) (*Function, *RuntimeError) {
	m, id, qualified, err := c.resolveModule(name)
	if err != nil {
		return nil, err
	}
	if fn, ok := m.Function(id); ok {
		return fn, nil
	}
	if !qualified && m != c.root {
		if fn, ok := c.root.Function(id); ok {
			return fn, nil
		}
	}
	return nil, NewUndefinedFunctionError(name, m.name)
}

// Function returns the function a possibly qualified name resolves to from
// the current module.
func (c *Context) Function(name string) (*Function, bool) {
	fn, err := c.lookupFunction(name)
	return fn, err == nil
}

// AddSource takes ownership of a parsed program.
func (c *Context) AddSource(name, source string, program *ast.Program) *SourceUnit {
	unit := &SourceUnit{Name: name, Source: source, Program: program}
	c.sources = append(c.sources, unit)
	return unit
}

// Sources returns the source units loaded so far.
func (c *Context) Sources() []*SourceUnit {
	out := make([]*SourceUnit, len(c.sources))
	copy(out, c.sources)
	return out
}

// Bind runs the def-pass over program.
func (c *Context) Bind(program *ast.Program) {
	NewBinder(c).Bind(program)
}

// Run evaluates program from the root module. Definitions must already be
// bound.
func (c *Context) Run(program *ast.Program) Result {
	return NewEvaluator(c).Run(program)
}

// Exec binds and runs a source unit.
func (c *Context) Exec(unit *SourceUnit) Result {
	c.Bind(unit.Program)
	return c.Run(unit.Program)
}

// Call invokes a possibly qualified function from the host. Failures are
// reported as diagnostics and yield value.Default().
func (c *Context) Call(name string, args ...value.Value) value.Value {
	return NewEvaluator(c).call(name, args, 0)
}

// Diagnostics returns the runtime errors reported so far.
func (c *Context) Diagnostics() []*RuntimeError {
	out := make([]*RuntimeError, len(c.diagnostics))
	copy(out, c.diagnostics)
	return out
}

// ClearDiagnostics discards the recorded runtime errors.
func (c *Context) ClearDiagnostics() {
	c.diagnostics = nil
}

func (c *Context) report(err *RuntimeError) {
	c.diagnostics = append(c.diagnostics, err)

	attrs := []any{"type", err.Type}
	if err.Name != "" {
		attrs = append(attrs, "name", err.Name)
	}
	if err.Module != "" {
		attrs = append(attrs, "module", err.Module)
	}
	if err.File != "" {
		attrs = append(attrs, "file", err.File)
	}
	if err.Line > 0 {
		attrs = append(attrs, "line", err.Line)
	}
	c.log.Warn(err.Message, attrs...)
}
