package lexer

import (
	"testing"

	"github.com/zurustar/wwbasic/pkg/syntax/token"
)

func TestNextToken(t *testing.T) {
	input := `IMPORT @wwiv.io
def add(a, b) ' trailing comment
  RETURN a + b
EndDef
REM whole line comment
x = add(2, -3) <> 4 && s <= "hi there"
IF x >= 1 || y != 2 THEN : z = 10 % 3 / 1 * 2 : ENDIF
FOR i = 1 TO 10 STEP 2
NEXT i
`

	tests := []struct {
		expectedType    token.TokenType
		expectedLiteral string
	}{
		{token.IMPORT, "IMPORT"},
		{token.AT, "@"},
		{token.IDENT, "wwiv.io"},
		{token.NEWLINE, "\n"},

		{token.DEF, "def"},
		{token.IDENT, "add"},
		{token.LPAREN, "("},
		{token.IDENT, "a"},
		{token.COMMA, ","},
		{token.IDENT, "b"},
		{token.RPAREN, ")"},
		{token.NEWLINE, "\n"},

		{token.RETURN, "RETURN"},
		{token.IDENT, "a"},
		{token.PLUS, "+"},
		{token.IDENT, "b"},
		{token.NEWLINE, "\n"},

		{token.ENDDEF, "EndDef"},
		{token.NEWLINE, "\n"},
		{token.NEWLINE, "\n"},

		{token.IDENT, "x"},
		{token.ASSIGN, "="},
		{token.IDENT, "add"},
		{token.LPAREN, "("},
		{token.INT, "2"},
		{token.COMMA, ","},
		{token.MINUS, "-"},
		{token.INT, "3"},
		{token.RPAREN, ")"},
		{token.NOT_EQ, "<>"},
		{token.INT, "4"},
		{token.AND, "&&"},
		{token.IDENT, "s"},
		{token.LTE, "<="},
		{token.STRING, `"hi there"`},
		{token.NEWLINE, "\n"},

		{token.IF, "IF"},
		{token.IDENT, "x"},
		{token.GTE, ">="},
		{token.INT, "1"},
		{token.OR, "||"},
		{token.IDENT, "y"},
		{token.NOT_EQ, "!="},
		{token.INT, "2"},
		{token.THEN, "THEN"},
		{token.COLON, ":"},
		{token.IDENT, "z"},
		{token.ASSIGN, "="},
		{token.INT, "10"},
		{token.PERCENT, "%"},
		{token.INT, "3"},
		{token.SLASH, "/"},
		{token.INT, "1"},
		{token.ASTERISK, "*"},
		{token.INT, "2"},
		{token.COLON, ":"},
		{token.ENDIF, "ENDIF"},
		{token.NEWLINE, "\n"},

		{token.FOR, "FOR"},
		{token.IDENT, "i"},
		{token.ASSIGN, "="},
		{token.INT, "1"},
		{token.TO, "TO"},
		{token.INT, "10"},
		{token.STEP, "STEP"},
		{token.INT, "2"},
		{token.NEWLINE, "\n"},
		{token.NEXT, "NEXT"},
		{token.IDENT, "i"},
		{token.NEWLINE, "\n"},
		{token.EOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q (literal %q)",
				i, tt.expectedType, tok.Type, tok.Literal)
		}

		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestPositions(t *testing.T) {
	l := New("x = 1\n  y <= 22")

	want := []struct {
		typ          token.TokenType
		line, column int
	}{
		{token.IDENT, 1, 1},
		{token.ASSIGN, 1, 3},
		{token.INT, 1, 5},
		{token.NEWLINE, 2, 6},
		{token.IDENT, 2, 3},
		{token.LTE, 2, 5},
		{token.INT, 2, 8},
	}

	for i, w := range want {
		tok := l.NextToken()
		if tok.Type != w.typ {
			t.Fatalf("[%d] type = %s, want %s", i, tok.Type, w.typ)
		}
		if w.typ == token.NEWLINE {
			continue
		}
		if tok.Line != w.line || tok.Column != w.column {
			t.Errorf("[%d] %s at %d:%d, want %d:%d", i, tok.Literal, tok.Line, tok.Column, w.line, w.column)
		}
	}
}

func TestIllegalTokens(t *testing.T) {
	tests := []struct {
		input   string
		literal string
	}{
		{`"unterminated`, `"unterminated`},
		{"&", "&"},
		{"|", "|"},
		{"!", "!"},
		{"#", "#"},
	}

	for _, tt := range tests {
		tok := New(tt.input).NextToken()
		if tok.Type != token.ILLEGAL {
			t.Errorf("%q: type = %s, want ILLEGAL", tt.input, tok.Type)
		}
		if tok.Literal != tt.literal {
			t.Errorf("%q: literal = %q, want %q", tt.input, tok.Literal, tt.literal)
		}
	}
}

func TestRemInsideIdentifier(t *testing.T) {
	l := New("remainder = 1")
	if tok := l.NextToken(); tok.Type != token.IDENT || tok.Literal != "remainder" {
		t.Fatalf("got %s %q, want IDENT remainder", tok.Type, tok.Literal)
	}
}
