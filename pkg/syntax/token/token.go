// Package token defines the lexical tokens of the BASIC dialect.
package token

import "strings"

type TokenType string

type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
}

const (
	ILLEGAL = "ILLEGAL"
	EOF     = "EOF"
	NEWLINE = "NEWLINE"

	// Identifiers + Literals
	IDENT  = "IDENT"  // total, util.twice, wwiv.io.PRINT
	INT    = "INT"    // 123
	STRING = "STRING" // "abc" (quotes kept)

	// Operators
	ASSIGN   = "="
	PLUS     = "+"
	MINUS    = "-"
	ASTERISK = "*"
	SLASH    = "/"
	PERCENT  = "%"

	EQ     = "=="
	NOT_EQ = "<>"
	LT     = "<"
	GT     = ">"
	LTE    = "<="
	GTE    = ">="
	AND    = "&&"
	OR     = "||"

	// Delimiters
	COMMA  = ","
	COLON  = ":"
	LPAREN = "("
	RPAREN = ")"
	AT     = "@"

	// Keywords
	TRUE      = "TRUE"
	FALSE     = "FALSE"
	IF        = "IF"
	THEN      = "THEN"
	ELSEIF    = "ELSEIF"
	ELSE      = "ELSE"
	ENDIF     = "ENDIF"
	FOR       = "FOR"
	TO        = "TO"
	STEP      = "STEP"
	NEXT      = "NEXT"
	DEF       = "DEF"
	ENDDEF    = "ENDDEF"
	RETURN    = "RETURN"
	MODULE    = "MODULE"
	ENDMODULE = "ENDMODULE"
	IMPORT    = "IMPORT"
)

var keywords = map[string]TokenType{
	"true":      TRUE,
	"false":     FALSE,
	"if":        IF,
	"then":      THEN,
	"elseif":    ELSEIF,
	"else":      ELSE,
	"endif":     ENDIF,
	"for":       FOR,
	"to":        TO,
	"step":      STEP,
	"next":      NEXT,
	"def":       DEF,
	"enddef":    ENDDEF,
	"return":    RETURN,
	"module":    MODULE,
	"endmodule": ENDMODULE,
	"import":    IMPORT,
}

// LookupIdent returns the keyword type for ident, or IDENT. Keywords are
// case-insensitive.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[strings.ToLower(ident)]; ok {
		return tok
	}
	return IDENT
}

// IsBlockEnd reports whether t terminates a statement block.
func IsBlockEnd(t TokenType) bool {
	switch t {
	case ELSEIF, ELSE, ENDIF, NEXT, ENDDEF, ENDMODULE, EOF:
		return true
	}
	return false
}
