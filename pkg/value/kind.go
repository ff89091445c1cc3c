package value

import (
	"fmt"
	"sync"

	"github.com/zurustar/wwbasic/pkg/ident"
)

// Kind identifies the kind of a Value. Built-in kinds have fixed values;
// host kinds are assigned by RegisterKind.
type Kind int

const (
	Boolean Kind = iota
	Integer
	String
)

// BinaryFunc implements an arithmetic or logical operator for one kind.
type BinaryFunc func(l, r Value) (Value, error)

// CompareFunc implements an ordering or equality test for one kind.
type CompareFunc func(l, r Value) bool

// Ops is the operator table of a kind. The left operand of every function is
// always of the owning kind.
type Ops struct {
	Name string

	ToBool   func(Value) bool
	ToInt    func(Value) int64
	ToString func(Value) string

	Add BinaryFunc
	Sub BinaryFunc
	Mul BinaryFunc
	Div BinaryFunc
	Mod BinaryFunc
	Or  BinaryFunc
	And BinaryFunc

	Less    CompareFunc
	Greater CompareFunc
	Equal   CompareFunc
}

var (
	registryMu sync.RWMutex
	registry   []*Ops
	kindNames  = map[string]Kind{}
)

func init() {
	mustRegister(booleanOps())
	mustRegister(integerOps())
	mustRegister(stringOps())
}

func mustRegister(ops *Ops) {
	if _, err := RegisterKind(ops); err != nil {
		panic(err)
	}
}

// RegisterKind adds a new kind with the given operator table and returns its
// tag. Missing conversions and operators are filled with defaults: operators
// fail with ErrInvalidOperation, comparisons are false.
func RegisterKind(ops *Ops) (Kind, error) {
	if ops == nil || ops.Name == "" {
		return 0, fmt.Errorf("value: kind must have a name")
	}
	key := ident.Canonical(ops.Name)

	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := kindNames[key]; exists {
		return 0, fmt.Errorf("value: kind %s already registered", ops.Name)
	}
	filled := *ops
	fillDefaults(&filled)
	kind := Kind(len(registry))
	registry = append(registry, &filled)
	kindNames[key] = kind
	return kind, nil
}

// LookupKind returns the kind registered under name (case-insensitive).
func LookupKind(name string) (Kind, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	k, ok := kindNames[ident.Canonical(name)]
	return k, ok
}

// String returns the registered name of the kind.
func (k Kind) String() string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	if int(k) < 0 || int(k) >= len(registry) {
		return fmt.Sprintf("KIND(%d)", int(k))
	}
	return registry[k].Name
}

func lookup(k Kind) *Ops {
	registryMu.RLock()
	defer registryMu.RUnlock()
	if int(k) < 0 || int(k) >= len(registry) {
		return registry[String]
	}
	return registry[k]
}

func fillDefaults(ops *Ops) {
	name := ops.Name
	if ops.ToBool == nil {
		ops.ToBool = func(Value) bool { return false }
	}
	if ops.ToInt == nil {
		ops.ToInt = func(Value) int64 { return 0 }
	}
	if ops.ToString == nil {
		ops.ToString = func(v Value) string { return fmt.Sprintf("<%s %v>", name, v.x) }
	}
	for _, fn := range []*BinaryFunc{&ops.Add, &ops.Sub, &ops.Mul, &ops.Div, &ops.Mod, &ops.Or, &ops.And} {
		if *fn == nil {
			*fn = invalid
		}
	}
	for _, fn := range []*CompareFunc{&ops.Less, &ops.Greater, &ops.Equal} {
		if *fn == nil {
			*fn = func(l, r Value) bool { return false }
		}
	}
}

func invalid(l, r Value) (Value, error) {
	return Bool(false), fmt.Errorf("%w: %s operand", ErrInvalidOperation, l.KindName())
}
