package value

import (
	"errors"
	"fmt"
)

var (
	// ErrDivisionByZero is returned by INTEGER "/" and "%" with a zero divisor.
	ErrDivisionByZero = errors.New("division by zero")
	// ErrInvalidOperation is returned when a kind does not support an operator.
	ErrInvalidOperation = errors.New("invalid operation")
)

// Operator names a binary operator of the language.
type Operator int

const (
	OpAdd Operator = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpOr
	OpAnd
	OpLess
	OpGreater
	OpEqual
	OpNotEqual
	OpLessEqual
	OpGreaterEqual
)

var operatorNames = [...]string{
	OpAdd:          "+",
	OpSub:          "-",
	OpMul:          "*",
	OpDiv:          "/",
	OpMod:          "%",
	OpOr:           "||",
	OpAnd:          "&&",
	OpLess:         "<",
	OpGreater:      ">",
	OpEqual:        "==",
	OpNotEqual:     "<>",
	OpLessEqual:    "<=",
	OpGreaterEqual: ">=",
}

func (op Operator) String() string {
	if op < 0 || int(op) >= len(operatorNames) {
		return fmt.Sprintf("Operator(%d)", int(op))
	}
	return operatorNames[op]
}

// Binary applies op to l and r using the operator table of l's kind.
// On error the returned Value is still usable (false or 0) so callers can
// report and carry on.
func Binary(op Operator, l, r Value) (Value, error) {
	ops := lookup(l.kind)
	switch op {
	case OpAdd:
		return ops.Add(l, r)
	case OpSub:
		return ops.Sub(l, r)
	case OpMul:
		return ops.Mul(l, r)
	case OpDiv:
		return ops.Div(l, r)
	case OpMod:
		return ops.Mod(l, r)
	case OpOr:
		return ops.Or(l, r)
	case OpAnd:
		return ops.And(l, r)
	case OpLess:
		return Bool(ops.Less(l, r)), nil
	case OpGreater:
		return Bool(ops.Greater(l, r)), nil
	case OpEqual:
		return Bool(ops.Equal(l, r)), nil
	case OpNotEqual:
		return Bool(!ops.Equal(l, r)), nil
	case OpLessEqual:
		return Bool(!ops.Greater(l, r)), nil
	case OpGreaterEqual:
		return Bool(!ops.Less(l, r)), nil
	}
	return Default(), fmt.Errorf("%w: unknown operator %d", ErrInvalidOperation, int(op))
}

// Add returns v + that.
func (v Value) Add(that Value) (Value, error) { return Binary(OpAdd, v, that) }

// Sub returns v - that.
func (v Value) Sub(that Value) (Value, error) { return Binary(OpSub, v, that) }

// Mul returns v * that.
func (v Value) Mul(that Value) (Value, error) { return Binary(OpMul, v, that) }

// Div returns v / that.
func (v Value) Div(that Value) (Value, error) { return Binary(OpDiv, v, that) }

// Mod returns v % that.
func (v Value) Mod(that Value) (Value, error) { return Binary(OpMod, v, that) }

// Or returns v || that.
func (v Value) Or(that Value) (Value, error) { return Binary(OpOr, v, that) }

// And returns v && that.
func (v Value) And(that Value) (Value, error) { return Binary(OpAnd, v, that) }

// Less reports v < that in v's kind.
func (v Value) Less(that Value) bool { return lookup(v.kind).Less(v, that) }

// Greater reports v > that in v's kind.
func (v Value) Greater(that Value) bool { return lookup(v.kind).Greater(v, that) }

// Equal reports v == that in v's kind.
func (v Value) Equal(that Value) bool { return lookup(v.kind).Equal(v, that) }

func booleanOps() *Ops {
	return &Ops{
		Name:     "BOOLEAN",
		ToBool:   Value.ToBool,
		ToInt:    Value.ToInt,
		ToString: Value.ToString,
		Add: func(l, r Value) (Value, error) {
			return Bool(l.ToBool() || r.ToBool()), nil
		},
		Sub: func(l, r Value) (Value, error) {
			return Bool(!(l.ToBool() && r.ToBool())), nil
		},
		Mul: func(l, r Value) (Value, error) {
			return Bool(l.ToBool() && r.ToBool()), nil
		},
		Div: invalid,
		Mod: invalid,
		Or: func(l, r Value) (Value, error) {
			return Bool(l.ToBool() || r.ToBool()), nil
		},
		And: func(l, r Value) (Value, error) {
			return Bool(l.ToBool() && r.ToBool()), nil
		},
		Less: func(l, r Value) bool {
			return !l.ToBool() && r.ToBool()
		},
		Greater: func(l, r Value) bool {
			return l.ToBool() && !r.ToBool()
		},
		Equal: func(l, r Value) bool {
			return l.ToBool() == r.ToBool()
		},
	}
}

func integerOps() *Ops {
	return &Ops{
		Name:     "INTEGER",
		ToBool:   Value.ToBool,
		ToInt:    Value.ToInt,
		ToString: Value.ToString,
		Add: func(l, r Value) (Value, error) {
			return Int(l.ToInt() + r.ToInt()), nil
		},
		Sub: func(l, r Value) (Value, error) {
			return Int(l.ToInt() - r.ToInt()), nil
		},
		Mul: func(l, r Value) (Value, error) {
			return Int(l.ToInt() * r.ToInt()), nil
		},
		Div: func(l, r Value) (Value, error) {
			d := r.ToInt()
			if d == 0 {
				return Int(0), ErrDivisionByZero
			}
			return Int(l.ToInt() / d), nil
		},
		Mod: func(l, r Value) (Value, error) {
			d := r.ToInt()
			if d == 0 {
				return Int(0), ErrDivisionByZero
			}
			return Int(l.ToInt() % d), nil
		},
		Or: func(l, r Value) (Value, error) {
			return Bool(l.ToInt() != 0 || r.ToInt() != 0), nil
		},
		And: func(l, r Value) (Value, error) {
			return Bool(l.ToInt() != 0 && r.ToInt() != 0), nil
		},
		Less: func(l, r Value) bool {
			return l.ToInt() < r.ToInt()
		},
		Greater: func(l, r Value) bool {
			return l.ToInt() > r.ToInt()
		},
		Equal: func(l, r Value) bool {
			return l.ToInt() == r.ToInt()
		},
	}
}

// stringOps degrades every arithmetic and logical operator to concatenation.
// This is the dialect's defined behaviour for STRING left operands.
func stringOps() *Ops {
	concat := func(l, r Value) (Value, error) {
		return Str(l.ToString() + r.ToString()), nil
	}
	return &Ops{
		Name:     "STRING",
		ToBool:   Value.ToBool,
		ToInt:    Value.ToInt,
		ToString: Value.ToString,
		Add:      concat,
		Sub:      concat,
		Mul:      concat,
		Div:      concat,
		Mod:      concat,
		Or:       concat,
		And:      concat,
		Less: func(l, r Value) bool {
			return l.ToString() < r.ToString()
		},
		Greater: func(l, r Value) bool {
			return l.ToString() > r.ToString()
		},
		Equal: func(l, r Value) bool {
			return l.ToString() == r.ToString()
		},
	}
}
