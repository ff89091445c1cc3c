package vm

import (
	"sort"

	"github.com/zurustar/wwbasic/pkg/ident"
	"github.com/zurustar/wwbasic/pkg/value"
)

// GlobalScopeName labels the permanent bottom scope of every module.
const GlobalScopeName = "<GLOBAL>"

// Module is a namespace: one scope stack, one function table and the set of
// imported module names. The stack always holds the global scope.
type Module struct {
	name      string
	scopes    []*Scope
	functions map[string]*Function
	imports   map[string]string
}

func newModule(name string) *Module {
	return &Module{
		name:      name,
		scopes:    []*Scope{NewScope(GlobalScopeName)},
		functions: make(map[string]*Function),
		imports:   make(map[string]string),
	}
}

// Name returns the module name; the root module's name is empty.
func (m *Module) Name() string {
	return m.name
}

// Lookup searches the scope stack innermost to outermost.
func (m *Module) Lookup(name string) (*Var, bool) {
	for i := len(m.scopes) - 1; i >= 0; i-- {
		if v, ok := m.scopes[i].Get(name); ok {
			return v, true
		}
	}
	return nil, false
}

// Has reports whether name is bound in any scope of the module.
func (m *Module) Has(name string) bool {
	_, ok := m.Lookup(name)
	return ok
}

// Upsert updates the innermost existing binding of name, or creates one in
// the innermost scope.
func (m *Module) Upsert(name string, v value.Value) *Var {
	if existing, ok := m.Lookup(name); ok {
		existing.Value = v
		return existing
	}
	return m.Innermost().Set(name, v)
}

// Global returns the module's permanent global scope.
func (m *Module) Global() *Scope {
	return m.scopes[0]
}

// Innermost returns the top of the scope stack.
func (m *Module) Innermost() *Scope {
	return m.scopes[len(m.scopes)-1]
}

// Globals returns the global variables in insertion order.
func (m *Module) Globals() []*Var {
	return m.Global().Vars()
}

// Depth returns the number of scopes on the stack.
func (m *Module) Depth() int {
	return len(m.scopes)
}

// PushScope pushes a new scope labelled origin and returns it.
func (m *Module) PushScope(origin string) *Scope {
	s := NewScope(origin)
	m.scopes = append(m.scopes, s)
	return s
}

// PopScope removes the innermost scope. The global scope is never removed.
func (m *Module) PopScope() {
	if len(m.scopes) > 1 {
		m.scopes[len(m.scopes)-1] = nil
		m.scopes = m.scopes[:len(m.scopes)-1]
	}
}

// Function looks up name in the module's function table.
func (m *Module) Function(name string) (*Function, bool) {
	fn, ok := m.functions[ident.Canonical(name)]
	return fn, ok
}

// HasFunction reports whether name is in the function table.
func (m *Module) HasFunction(name string) bool {
	_, ok := m.Function(name)
	return ok
}

// Define adds fn to the function table, replacing any function of the same
// name. It returns the replaced function, if any.
func (m *Module) Define(fn *Function) *Function {
	key := ident.Canonical(fn.Name)
	prev := m.functions[key]
	fn.Module = m
	m.functions[key] = fn
	return prev
}

// RegisterNative adds a native function. params is documentation only.
func (m *Module) RegisterNative(name string, fn NativeFunc, params ...string) {
	m.Define(&Function{
		Name:   name,
		Kind:   FunctionNative,
		Params: params,
		Native: fn,
	})
}

// Functions returns the function table sorted by name.
func (m *Module) Functions() []*Function {
	out := make([]*Function, 0, len(m.functions))
	for _, fn := range m.functions {
		out = append(out, fn)
	}
	sort.Slice(out, func(i, j int) bool {
		return ident.Canonical(out[i].Name) < ident.Canonical(out[j].Name)
	})
	return out
}

// Import records name in the module's import set. Nothing is loaded.
func (m *Module) Import(name string) {
	key := ident.Canonical(name)
	if _, ok := m.imports[key]; !ok {
		m.imports[key] = name
	}
}

// Imported reports whether name was imported.
func (m *Module) Imported(name string) bool {
	_, ok := m.imports[ident.Canonical(name)]
	return ok
}

// Imports returns the imported names, sorted.
func (m *Module) Imports() []string {
	out := make([]string, 0, len(m.imports))
	for _, name := range m.imports {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
