package parser

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/zurustar/wwbasic/pkg/syntax/ast"
	"github.com/zurustar/wwbasic/pkg/syntax/lexer"
	"github.com/zurustar/wwbasic/pkg/syntax/token"
)

func parse(t *testing.T, input string) *ast.Program {
	t.Helper()
	program, errs := New(lexer.New(input)).ParseProgram()
	checkParserErrors(t, errs)
	return program
}

func checkParserErrors(t *testing.T, errs []error) {
	t.Helper()
	if len(errs) == 0 {
		return
	}
	t.Errorf("parser has %d errors", len(errs))
	for _, err := range errs {
		t.Errorf("parser error: %v", err)
	}
	t.FailNow()
}

func TestOperatorPrecedence(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"x = 1 + 2 * 3", "x = (1 + (2 * 3))"},
		{"x = (1 + 2) * 3", "x = ((1 + 2) * 3)"},
		{"x = 10 - 4 - 3", "x = ((10 - 4) - 3)"},
		{"x = 7 % 3 / 2", "x = ((7 % 3) / 2)"},
		{"x = a < b == c > d", "x = (((a < b) == c) > d)"},
		{"x = a || b && c", "x = (a || (b && c))"},
		{"x = a + 1 <= b * 2 && c", "x = (((a + 1) <= (b * 2)) && c)"},
		{"x = -a * 2", "x = ((0 - a) * 2)"},
		{"x = a = 1", "x = (a == 1)"},
		{"x = a <> b", "x = (a <> b)"},
		{"x = f(1, 2 + 3) + util.g()", "x = (f(1, (2 + 3)) + util.g())"},
		{`s = "a" && "b"`, `s = ("a" && "b")`},
		{"b = TRUE || false", "b = (TRUE || FALSE)"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			program := parse(t, tt.input)
			if len(program.Statements) != 1 {
				t.Fatalf("expected 1 statement, got %d", len(program.Statements))
			}
			if got := program.Statements[0].String(); got != tt.expected {
				t.Errorf("expected=%q, got=%q", tt.expected, got)
			}
		})
	}
}

func TestAssignStatement(t *testing.T) {
	program := parse(t, "modA.x = 5")

	stmt, ok := program.Statements[0].(*ast.AssignStatement)
	if !ok {
		t.Fatalf("statement is not *ast.AssignStatement. got=%T", program.Statements[0])
	}
	if stmt.Name.Value != "modA.x" {
		t.Errorf("name = %q, want modA.x", stmt.Name.Value)
	}
	lit, ok := stmt.Value.(*ast.IntegerLiteral)
	if !ok || lit.Value != 5 {
		t.Errorf("value = %v, want 5", stmt.Value)
	}
}

func TestIfStatement(t *testing.T) {
	input := `
IF result > 4 THEN
  PRINT("big")
ELSEIF result == 4 THEN
  PRINT("four")
  n = 4
ELSE
  PRINT("small")
ENDIF
`
	program := parse(t, input)
	if len(program.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(program.Statements))
	}

	stmt, ok := program.Statements[0].(*ast.IfStatement)
	if !ok {
		t.Fatalf("statement is not *ast.IfStatement. got=%T", program.Statements[0])
	}
	if len(stmt.Branches) != 2 {
		t.Fatalf("branches = %d, want 2", len(stmt.Branches))
	}
	if got := stmt.Branches[1].Condition.String(); got != "(result == 4)" {
		t.Errorf("elseif condition = %q", got)
	}
	if n := len(stmt.Branches[1].Consequence.Statements); n != 2 {
		t.Errorf("elseif body has %d statements, want 2", n)
	}
	if stmt.Alternative == nil || len(stmt.Alternative.Statements) != 1 {
		t.Errorf("else block = %v", stmt.Alternative)
	}
}

func TestIfWithoutElse(t *testing.T) {
	program := parse(t, "IF x THEN\nENDIF")
	stmt := program.Statements[0].(*ast.IfStatement)
	if stmt.Alternative != nil {
		t.Error("expected no ELSE block")
	}
	if len(stmt.Branches[0].Consequence.Statements) != 0 {
		t.Error("expected empty consequence")
	}
}

func TestForStatement(t *testing.T) {
	tests := []struct {
		input    string
		step     string
		bodyLen  int
		variable string
	}{
		{"FOR i = 1 TO 3\n  total = total + i\nNEXT", "", 1, "i"},
		{"FOR j = 10 TO 1 STEP -2\nNEXT j", "(0 - 2)", 0, "j"},
		{"for k = a + 1 to b * 2 step n\nx = k\ny = k\nnext", "n", 2, "k"},
	}

	for _, tt := range tests {
		program := parse(t, tt.input)
		stmt, ok := program.Statements[0].(*ast.ForStatement)
		if !ok {
			t.Fatalf("statement is not *ast.ForStatement. got=%T", program.Statements[0])
		}
		if stmt.Variable.Value != tt.variable {
			t.Errorf("variable = %q, want %q", stmt.Variable.Value, tt.variable)
		}
		step := ""
		if stmt.Step != nil {
			step = stmt.Step.String()
		}
		if step != tt.step {
			t.Errorf("step = %q, want %q", step, tt.step)
		}
		if len(stmt.Body.Statements) != tt.bodyLen {
			t.Errorf("body has %d statements, want %d", len(stmt.Body.Statements), tt.bodyLen)
		}
	}
}

func TestProcedureAndModuleDefinitions(t *testing.T) {
	input := `
MODULE util
  DEF twice(n)
    RETURN n * 2
  ENDDEF
  DEF noop
  ENDDEF
ENDMODULE
DEF add(a, b)
  RETURN a + b
ENDDEF
DEF bare()
  RETURN
ENDDEF
IMPORT @wwiv.io
IMPORT "other.bas"
`
	program := parse(t, input)

	var kinds []string
	for _, s := range program.Statements {
		kinds = append(kinds, strings.TrimPrefix(fmt.Sprintf("%T", s), "*ast."))
	}
	want := []string{"ModuleDefinition", "ProcedureDefinition", "ProcedureDefinition", "ImportStatement", "ImportStatement"}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Fatalf("statement kinds mismatch (-want +got):\n%s", diff)
	}

	mod := program.Statements[0].(*ast.ModuleDefinition)
	if mod.Name.Value != "util" || len(mod.Body.Statements) != 2 {
		t.Errorf("module = %s with %d statements", mod.Name, len(mod.Body.Statements))
	}
	noop := mod.Body.Statements[1].(*ast.ProcedureDefinition)
	if len(noop.Parameters) != 0 {
		t.Errorf("noop params = %v", noop.Parameters)
	}

	add := program.Statements[1].(*ast.ProcedureDefinition)
	var params []string
	for _, p := range add.Parameters {
		params = append(params, p.Value)
	}
	if diff := cmp.Diff([]string{"a", "b"}, params); diff != "" {
		t.Errorf("params mismatch (-want +got):\n%s", diff)
	}

	bare := program.Statements[2].(*ast.ProcedureDefinition)
	ret := bare.Body.Statements[0].(*ast.ReturnStatement)
	if ret.ReturnValue != nil {
		t.Errorf("bare RETURN has value %v", ret.ReturnValue)
	}

	if name := program.Statements[3].(*ast.ImportStatement).Name; name != "wwiv.io" {
		t.Errorf("import name = %q", name)
	}
	if name := program.Statements[4].(*ast.ImportStatement).Name; name != "other.bas" {
		t.Errorf("import name = %q", name)
	}
}

func TestCallStatement(t *testing.T) {
	program := parse(t, `wwiv.io.PRINT("hello", 1 + 2)`)

	stmt, ok := program.Statements[0].(*ast.ExpressionStatement)
	if !ok {
		t.Fatalf("statement is not *ast.ExpressionStatement. got=%T", program.Statements[0])
	}
	call, ok := stmt.Expression.(*ast.CallExpression)
	if !ok {
		t.Fatalf("expression is not *ast.CallExpression. got=%T", stmt.Expression)
	}
	if call.Function.Value != "wwiv.io.PRINT" {
		t.Errorf("function = %q", call.Function.Value)
	}
	if len(call.Arguments) != 2 {
		t.Errorf("arguments = %d, want 2", len(call.Arguments))
	}
	str := call.Arguments[0].(*ast.StringLiteral)
	if str.Raw != `"hello"` || str.Unquote() != "hello" {
		t.Errorf("string literal raw=%q unquoted=%q", str.Raw, str.Unquote())
	}
}

func TestParserErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  int
	}{
		{"missing THEN", "IF x\nENDIF", 1},
		{"unterminated FOR", "FOR i = 1 TO 3\nx = i", 2},
		{"stray ENDIF", "x = 1\nENDIF", 2},
		{"missing operand", "x = 1 +", 1},
		{"trailing garbage", "x = 1 2", 1},
		{"illegal character", "x = 1 # 2", 1},
		{"missing paren", "x = f(1, 2", 1},
		{"block terminator mismatch", "DEF f\nNEXT", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errs := New(lexer.New(tt.input)).ParseProgram()
			if len(errs) == 0 {
				t.Fatalf("expected an error for %q", tt.input)
			}
			pe, ok := errs[0].(*ParserError)
			if !ok {
				t.Fatalf("error is %T, want *ParserError", errs[0])
			}
			if pe.Line != tt.line {
				t.Errorf("line = %d, want %d (%v)", pe.Line, tt.line, pe)
			}
		})
	}
}

func TestParsingContinuesAfterError(t *testing.T) {
	program, errs := New(lexer.New("x = )\ny = 2\n")).ParseProgram()
	if len(errs) == 0 {
		t.Fatal("expected errors")
	}
	if len(program.Statements) != 1 || program.Statements[0].String() != "y = 2" {
		t.Errorf("statements = %v", program.Statements)
	}
}

func TestNegationToken(t *testing.T) {
	program := parse(t, "x = -5")
	infix := program.Statements[0].(*ast.AssignStatement).Value.(*ast.InfixExpression)
	if infix.Operator != token.MINUS {
		t.Errorf("operator = %s", infix.Operator)
	}
	if zero, ok := infix.Left.(*ast.IntegerLiteral); !ok || zero.Value != 0 {
		t.Errorf("left = %v, want 0", infix.Left)
	}
}
