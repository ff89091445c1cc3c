package vm

import (
	"github.com/zurustar/wwbasic/pkg/ident"
	"github.com/zurustar/wwbasic/pkg/value"
)

// Var is a named binding owned by exactly one Scope. Reassignment mutates
// the Var in place.
type Var struct {
	Name  string
	Value value.Value
}

// Scope is an ordered, case-insensitive table of variables. One Scope is
// pushed per call activation or FOR block.
type Scope struct {
	origin string
	vars   []*Var
	index  map[string]int
}

// NewScope creates an empty scope labelled with origin ("<GLOBAL>", a
// function name, "FOR i", ...).
func NewScope(origin string) *Scope {
	return &Scope{
		origin: origin,
		index:  make(map[string]int),
	}
}

// Origin returns the diagnostic label of the scope.
func (s *Scope) Origin() string {
	return s.origin
}

// Get retrieves a variable by name.
func (s *Scope) Get(name string) (*Var, bool) {
	i, ok := s.index[ident.Canonical(name)]
	if !ok {
		return nil, false
	}
	return s.vars[i], true
}

// Has reports whether name is bound in this scope.
func (s *Scope) Has(name string) bool {
	_, ok := s.index[ident.Canonical(name)]
	return ok
}

// Set binds name to v in this scope, updating the existing Var if there is
// one. The first spelling of a name is kept.
func (s *Scope) Set(name string, v value.Value) *Var {
	key := ident.Canonical(name)
	if i, ok := s.index[key]; ok {
		s.vars[i].Value = v
		return s.vars[i]
	}
	nv := &Var{Name: name, Value: v}
	s.index[key] = len(s.vars)
	s.vars = append(s.vars, nv)
	return nv
}

// Vars returns the variables in insertion order.
func (s *Scope) Vars() []*Var {
	out := make([]*Var, len(s.vars))
	copy(out, s.vars)
	return out
}

// Keys returns the variable names in insertion order.
func (s *Scope) Keys() []string {
	keys := make([]string, len(s.vars))
	for i, v := range s.vars {
		keys[i] = v.Name
	}
	return keys
}

// Size returns the number of variables in the scope.
func (s *Scope) Size() int {
	return len(s.vars)
}
