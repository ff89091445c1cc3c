// Package value provides the dynamic value model of the BASIC interpreter.
//
// A Value holds exactly one kind at a time. The three built-in kinds are
// BOOLEAN, INTEGER and STRING; hosts may register further kinds with
// RegisterKind. Conversions between kinds are always explicit (ToBool, ToInt,
// ToString) and never happen implicitly when a Value is stored.
//
// Binary operators dispatch on the kind of the LEFT operand. The right
// operand is coerced into whatever the left kind's operator table needs.
package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Value is a tagged runtime datum. The zero Value is BOOLEAN false.
type Value struct {
	kind Kind
	b    bool
	i    int64
	s    string
	x    any // payload of host-registered kinds
}

// Bool creates a BOOLEAN value.
func Bool(b bool) Value {
	return Value{kind: Boolean, b: b}
}

// Int creates an INTEGER value.
func Int(i int64) Value {
	return Value{kind: Integer, i: i}
}

// Str creates a STRING value.
func Str(s string) Value {
	return Value{kind: String, s: s}
}

// New creates a value of a host-registered kind carrying payload.
func New(kind Kind, payload any) Value {
	switch kind {
	case Boolean:
		b, _ := payload.(bool)
		return Bool(b)
	case Integer:
		return FromAny(payload).coerceInt()
	case String:
		return Str(fmt.Sprint(payload))
	}
	return Value{kind: kind, x: payload}
}

// Default returns the value used in place of a failed resolution or a
// function that produced nothing.
func Default() Value {
	return Bool(false)
}

// FromAny converts a host Go value into a Value. Unknown types become their
// fmt representation as a STRING, as do unsigned integers above MaxInt64.
func FromAny(a any) Value {
	switch v := a.(type) {
	case nil:
		return Default()
	case Value:
		return v
	case bool:
		return Bool(v)
	case int:
		return Int(int64(v))
	case int8:
		return Int(int64(v))
	case int16:
		return Int(int64(v))
	case int32:
		return Int(int64(v))
	case int64:
		return Int(v)
	case uint8:
		return Int(int64(v))
	case uint16:
		return Int(int64(v))
	case uint32:
		return Int(int64(v))
	case uint:
		return fromUint64(uint64(v))
	case uint64:
		return fromUint64(v)
	case string:
		return Str(v)
	default:
		return Str(fmt.Sprint(v))
	}
}

func fromUint64(u uint64) Value {
	if u > math.MaxInt64 {
		return Str(strconv.FormatUint(u, 10))
	}
	return Int(int64(u))
}

// Kind returns the kind tag.
func (v Value) Kind() Kind {
	return v.kind
}

// KindName returns the registered name of the value's kind.
func (v Value) KindName() string {
	return v.kind.String()
}

// Payload returns the payload of a host-registered kind, or the natural Go
// representation of a built-in kind.
func (v Value) Payload() any {
	switch v.kind {
	case Boolean:
		return v.b
	case Integer:
		return v.i
	case String:
		return v.s
	}
	return v.x
}

// ToBool converts the value to a Go bool.
//
//	INTEGER: nonzero is true
//	STRING:  true only for the exact, case-sensitive text "TRUE"
func (v Value) ToBool() bool {
	switch v.kind {
	case Boolean:
		return v.b
	case Integer:
		return v.i != 0
	case String:
		return v.s == "TRUE"
	}
	return lookup(v.kind).ToBool(v)
}

// ToInt converts the value to an integer. Unparsable strings yield 0.
func (v Value) ToInt() int64 {
	switch v.kind {
	case Boolean:
		if v.b {
			return 1
		}
		return 0
	case Integer:
		return v.i
	case String:
		return ParseInt(v.s)
	}
	return lookup(v.kind).ToInt(v)
}

// ToString converts the value to its textual form.
func (v Value) ToString() string {
	switch v.kind {
	case Boolean:
		if v.b {
			return "TRUE"
		}
		return "FALSE"
	case Integer:
		return strconv.FormatInt(v.i, 10)
	case String:
		return v.s
	}
	return lookup(v.kind).ToString(v)
}

// String implements fmt.Stringer.
func (v Value) String() string {
	return v.ToString()
}

// GoString renders the value with its kind, for diagnostics.
func (v Value) GoString() string {
	if v.kind == String {
		return fmt.Sprintf("%q (%s)", v.s, v.KindName())
	}
	return fmt.Sprintf("%s (%s)", v.ToString(), v.KindName())
}

func (v Value) coerceInt() Value {
	return Int(v.ToInt())
}

// ParseInt parses the leading integer literal of s: optional surrounding
// whitespace, an optional sign and at least one decimal digit. Anything after
// the digits is ignored. Text without a leading integer, or one that does not
// fit in 64 bits, yields 0.
func ParseInt(s string) int64 {
	s = strings.TrimLeft(s, " \t\r\n\v\f")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0
	}
	return n
}
