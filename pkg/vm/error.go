package vm

import (
	"fmt"
	"strings"
)

// ErrorType represents the type of runtime error.
type ErrorType string

// Every runtime error is non-fatal: it is reported, the failing expression
// or statement yields value.Default() and evaluation continues.
const (
	ErrorUndefinedVar      ErrorType = "UNDEFINED_VARIABLE"
	ErrorUndefinedFunc     ErrorType = "UNDEFINED_FUNCTION"
	ErrorUndefinedModule   ErrorType = "UNDEFINED_MODULE"
	ErrorArgumentMismatch  ErrorType = "ARGUMENT_MISMATCH"
	ErrorMalformedOperator ErrorType = "MALFORMED_OPERATOR"
	ErrorUnexpectedNode    ErrorType = "UNEXPECTED_NODE"
	ErrorDivisionByZero    ErrorType = "DIVISION_BY_ZERO"
	ErrorInvalidOperation  ErrorType = "INVALID_OPERATION"
	ErrorStackOverflow     ErrorType = "STACK_OVERFLOW"
	ErrorNativeFunction    ErrorType = "NATIVE_ERROR"
)

// RuntimeError is a diagnostic produced while evaluating a program.
type RuntimeError struct {
	Type    ErrorType
	Message string
	Name    string // identifier involved, if any
	Module  string // module the name was resolved against
	File    string
	Line    int // 0 when unknown
}

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Type, e.Message)
	switch {
	case e.File != "" && e.Line > 0:
		fmt.Fprintf(&b, " at %s:%d", e.File, e.Line)
	case e.Line > 0:
		fmt.Fprintf(&b, " at line %d", e.Line)
	}
	return b.String()
}

// NewRuntimeError creates a new RuntimeError.
func NewRuntimeError(errType ErrorType, message string) *RuntimeError {
	return &RuntimeError{Type: errType, Message: message}
}

func NewUndefinedVariableError(name, module string) *RuntimeError {
	return &RuntimeError{
		Type:    ErrorUndefinedVar,
		Message: fmt.Sprintf("undefined variable: %s", name),
		Name:    name,
		Module:  module,
	}
}

func NewUndefinedFunctionError(name, module string) *RuntimeError {
	return &RuntimeError{
		Type:    ErrorUndefinedFunc,
		Message: fmt.Sprintf("undefined function: %s", name),
		Name:    name,
		Module:  module,
	}
}

func NewUndefinedModuleError(name, module string) *RuntimeError {
	return &RuntimeError{
		Type:    ErrorUndefinedModule,
		Message: fmt.Sprintf("undefined module %q in %s", module, name),
		Name:    name,
		Module:  module,
	}
}

// NewArgumentMismatchError reports a user function called with the wrong
// number of arguments.
func NewArgumentMismatchError(name string, have, want int) *RuntimeError {
	return &RuntimeError{
		Type:    ErrorArgumentMismatch,
		Message: fmt.Sprintf("wrong number of arguments to %s: have %d, want %d", name, have, want),
		Name:    name,
	}
}

func NewMalformedOperatorError(op string) *RuntimeError {
	return NewRuntimeError(ErrorMalformedOperator, fmt.Sprintf("unknown operator %q", op))
}

func NewUnexpectedNodeError(node any) *RuntimeError {
	return NewRuntimeError(ErrorUnexpectedNode, fmt.Sprintf("unexpected node %T", node))
}

// NewDivisionByZeroError creates a division by zero error.
func NewDivisionByZeroError() *RuntimeError {
	return NewRuntimeError(ErrorDivisionByZero, "division by zero")
}

func NewInvalidOperationError(err error) *RuntimeError {
	return NewRuntimeError(ErrorInvalidOperation, err.Error())
}

// NewStackOverflowError creates a stack overflow error.
func NewStackOverflowError(name string, depth, limit int) *RuntimeError {
	return &RuntimeError{
		Type:    ErrorStackOverflow,
		Message: fmt.Sprintf("stack overflow calling %s: depth %d exceeds maximum %d", name, depth, limit),
		Name:    name,
	}
}

func NewNativeFunctionError(name string, err error) *RuntimeError {
	return &RuntimeError{
		Type:    ErrorNativeFunction,
		Message: fmt.Sprintf("%s: %v", name, err),
		Name:    name,
	}
}
