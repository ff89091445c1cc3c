package vm

import (
	"errors"
	"strings"
	"testing"
)

func TestRuntimeError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *RuntimeError
		contains []string
		excludes []string
	}{
		{
			name:     "basic error",
			err:      NewRuntimeError(ErrorDivisionByZero, "division by zero"),
			contains: []string{"DIVISION_BY_ZERO", "division by zero"},
			excludes: []string{" at "},
		},
		{
			name:     "error with line",
			err:      &RuntimeError{Type: ErrorUndefinedVar, Message: "undefined variable: x", Line: 42},
			contains: []string{"UNDEFINED_VARIABLE", "undefined variable: x", "at line 42"},
		},
		{
			name:     "error with file and line",
			err:      &RuntimeError{Type: ErrorUndefinedFunc, Message: "undefined function: f", File: "main.bas", Line: 10},
			contains: []string{"UNDEFINED_FUNCTION", "at main.bas:10"},
		},
		{
			name:     "file without line is omitted",
			err:      &RuntimeError{Type: ErrorStackOverflow, Message: "deep", File: "main.bas"},
			excludes: []string{"main.bas"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errStr := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(errStr, s) {
					t.Errorf("error string %q should contain %q", errStr, s)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(errStr, s) {
					t.Errorf("error string %q should not contain %q", errStr, s)
				}
			}
		})
	}
}

func TestErrorHelperFunctions(t *testing.T) {
	tests := []struct {
		name     string
		err      *RuntimeError
		wantType ErrorType
		wantName string
		contains string
	}{
		{"undefined variable", NewUndefinedVariableError("x", "util"), ErrorUndefinedVar, "x", "x"},
		{"undefined function", NewUndefinedFunctionError("f", ""), ErrorUndefinedFunc, "f", "f"},
		{"undefined module", NewUndefinedModuleError("nope.x", "nope"), ErrorUndefinedModule, "nope.x", `"nope"`},
		{"argument mismatch", NewArgumentMismatchError("add", 1, 2), ErrorArgumentMismatch, "add", "have 1, want 2"},
		{"malformed operator", NewMalformedOperatorError("^"), ErrorMalformedOperator, "", `"^"`},
		{"unexpected node", NewUnexpectedNodeError(42), ErrorUnexpectedNode, "", "int"},
		{"division by zero", NewDivisionByZeroError(), ErrorDivisionByZero, "", "division by zero"},
		{"stack overflow", NewStackOverflowError("f", 1001, 1000), ErrorStackOverflow, "f", "1000"},
		{"native", NewNativeFunctionError("LEN", errors.New("boom")), ErrorNativeFunction, "LEN", "LEN: boom"},
		{"invalid operation", NewInvalidOperationError(errors.New("bad op")), ErrorInvalidOperation, "", "bad op"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Type != tt.wantType {
				t.Errorf("Type = %v, want %v", tt.err.Type, tt.wantType)
			}
			if tt.err.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", tt.err.Name, tt.wantName)
			}
			if !strings.Contains(tt.err.Message, tt.contains) {
				t.Errorf("Message %q should contain %q", tt.err.Message, tt.contains)
			}
		})
	}
}
