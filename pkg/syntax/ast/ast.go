// Package ast declares the syntax tree consumed by the interpreter.
//
// The tree is the only contract between a front end and the vm: the vm never
// sees source text, only the node kinds declared here.
package ast

import (
	"bytes"
	"strings"

	"github.com/zurustar/wwbasic/pkg/syntax/token"
)

type Node interface {
	TokenLiteral() string
	String() string
}

type Statement interface {
	Node
	statementNode()
}

type Expression interface {
	Node
	expressionNode()
}

// Program is the root node of one source unit.
type Program struct {
	File       string
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) String() string {
	var out bytes.Buffer
	for _, s := range p.Statements {
		out.WriteString(s.String())
		out.WriteString("\n")
	}
	return out.String()
}

// Block is a sequence of statements ended by a terminator keyword.
type Block struct {
	Token      token.Token // first token of the block
	Statements []Statement
}

func (b *Block) statementNode()       {}
func (b *Block) TokenLiteral() string { return b.Token.Literal }
func (b *Block) String() string {
	var out bytes.Buffer
	for _, s := range b.Statements {
		out.WriteString("  ")
		out.WriteString(strings.ReplaceAll(s.String(), "\n", "\n  "))
		out.WriteString("\n")
	}
	return out.String()
}

// AssignStatement: name = value. Name may be module-qualified.
type AssignStatement struct {
	Token token.Token // the identifier token
	Name  *Identifier
	Value Expression
}

func (as *AssignStatement) statementNode()       {}
func (as *AssignStatement) TokenLiteral() string { return as.Token.Literal }
func (as *AssignStatement) String() string {
	var out bytes.Buffer
	out.WriteString(as.Name.String())
	out.WriteString(" = ")
	if as.Value != nil {
		out.WriteString(as.Value.String())
	}
	return out.String()
}

// ConditionalBranch is one IF or ELSEIF arm.
type ConditionalBranch struct {
	Token       token.Token // IF or ELSEIF
	Condition   Expression
	Consequence *Block
}

// IfStatement: IF c THEN ... [ELSEIF c THEN ...]* [ELSE ...] ENDIF
type IfStatement struct {
	Token       token.Token // token.IF
	Branches    []*ConditionalBranch
	Alternative *Block // nil without ELSE
}

func (is *IfStatement) statementNode()       {}
func (is *IfStatement) TokenLiteral() string { return is.Token.Literal }
func (is *IfStatement) String() string {
	var out bytes.Buffer
	for i, br := range is.Branches {
		if i == 0 {
			out.WriteString("IF ")
		} else {
			out.WriteString("ELSEIF ")
		}
		out.WriteString(br.Condition.String())
		out.WriteString(" THEN\n")
		out.WriteString(br.Consequence.String())
	}
	if is.Alternative != nil {
		out.WriteString("ELSE\n")
		out.WriteString(is.Alternative.String())
	}
	out.WriteString("ENDIF")
	return out.String()
}

// ForStatement: FOR v = start TO end [STEP n] ... NEXT
type ForStatement struct {
	Token    token.Token // token.FOR
	Variable *Identifier
	Start    Expression
	End      Expression
	Step     Expression // nil means 1
	Body     *Block
}

func (fs *ForStatement) statementNode()       {}
func (fs *ForStatement) TokenLiteral() string { return fs.Token.Literal }
func (fs *ForStatement) String() string {
	var out bytes.Buffer
	out.WriteString("FOR ")
	out.WriteString(fs.Variable.String())
	out.WriteString(" = ")
	out.WriteString(fs.Start.String())
	out.WriteString(" TO ")
	out.WriteString(fs.End.String())
	if fs.Step != nil {
		out.WriteString(" STEP ")
		out.WriteString(fs.Step.String())
	}
	out.WriteString("\n")
	out.WriteString(fs.Body.String())
	out.WriteString("NEXT")
	return out.String()
}

// ReturnStatement: RETURN [value]
type ReturnStatement struct {
	Token       token.Token // token.RETURN
	ReturnValue Expression  // nil for a bare RETURN
}

func (rs *ReturnStatement) statementNode()       {}
func (rs *ReturnStatement) TokenLiteral() string { return rs.Token.Literal }
func (rs *ReturnStatement) String() string {
	if rs.ReturnValue == nil {
		return "RETURN"
	}
	return "RETURN " + rs.ReturnValue.String()
}

// ExpressionStatement is an expression evaluated for its side effects,
// normally a procedure call.
type ExpressionStatement struct {
	Token      token.Token // first token of the expression
	Expression Expression
}

func (es *ExpressionStatement) statementNode()       {}
func (es *ExpressionStatement) TokenLiteral() string { return es.Token.Literal }
func (es *ExpressionStatement) String() string {
	if es.Expression != nil {
		return es.Expression.String()
	}
	return ""
}

// ProcedureDefinition: DEF name(params) ... ENDDEF
type ProcedureDefinition struct {
	Token      token.Token // token.DEF
	Name       *Identifier
	Parameters []*Identifier
	Body       *Block
}

func (pd *ProcedureDefinition) statementNode()       {}
func (pd *ProcedureDefinition) TokenLiteral() string { return pd.Token.Literal }
func (pd *ProcedureDefinition) String() string {
	params := make([]string, len(pd.Parameters))
	for i, p := range pd.Parameters {
		params[i] = p.String()
	}
	var out bytes.Buffer
	out.WriteString("DEF ")
	out.WriteString(pd.Name.String())
	out.WriteString("(")
	out.WriteString(strings.Join(params, ", "))
	out.WriteString(")\n")
	out.WriteString(pd.Body.String())
	out.WriteString("ENDDEF")
	return out.String()
}

// ModuleDefinition: MODULE name ... ENDMODULE
type ModuleDefinition struct {
	Token token.Token // token.MODULE
	Name  *Identifier
	Body  *Block
}

func (md *ModuleDefinition) statementNode()       {}
func (md *ModuleDefinition) TokenLiteral() string { return md.Token.Literal }
func (md *ModuleDefinition) String() string {
	return "MODULE " + md.Name.String() + "\n" + md.Body.String() + "ENDMODULE"
}

// ImportStatement: IMPORT @name
type ImportStatement struct {
	Token token.Token // token.IMPORT
	Name  string
}

func (is *ImportStatement) statementNode()       {}
func (is *ImportStatement) TokenLiteral() string { return is.Token.Literal }
func (is *ImportStatement) String() string       { return "IMPORT @" + is.Name }

// Identifier may be dotted (module.name).
type Identifier struct {
	Token token.Token // token.IDENT
	Value string
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Token.Literal }
func (i *Identifier) String() string       { return i.Value }

type IntegerLiteral struct {
	Token token.Token
	Value int64
}

func (il *IntegerLiteral) expressionNode()      {}
func (il *IntegerLiteral) TokenLiteral() string { return il.Token.Literal }
func (il *IntegerLiteral) String() string       { return il.Token.Literal }

// StringLiteral keeps the source text including its delimiting quotes.
type StringLiteral struct {
	Token token.Token
	Raw   string
}

func (sl *StringLiteral) expressionNode()      {}
func (sl *StringLiteral) TokenLiteral() string { return sl.Token.Literal }
func (sl *StringLiteral) String() string       { return sl.Raw }

// Unquote returns the literal text without its delimiting quotes.
func (sl *StringLiteral) Unquote() string {
	s := sl.Raw
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return strings.TrimPrefix(s, `"`)
}

type BooleanLiteral struct {
	Token token.Token
	Value bool
}

func (bl *BooleanLiteral) expressionNode()      {}
func (bl *BooleanLiteral) TokenLiteral() string { return bl.Token.Literal }
func (bl *BooleanLiteral) String() string {
	if bl.Value {
		return "TRUE"
	}
	return "FALSE"
}

// InfixExpression: left op right
type InfixExpression struct {
	Token    token.Token // the operator token
	Operator token.TokenType
	Left     Expression
	Right    Expression
}

func (ie *InfixExpression) expressionNode()      {}
func (ie *InfixExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *InfixExpression) String() string {
	return "(" + ie.Left.String() + " " + string(ie.Operator) + " " + ie.Right.String() + ")"
}

// GroupedExpression: ( expr )
type GroupedExpression struct {
	Token      token.Token // token.LPAREN
	Expression Expression
}

func (ge *GroupedExpression) expressionNode()      {}
func (ge *GroupedExpression) TokenLiteral() string { return ge.Token.Literal }
func (ge *GroupedExpression) String() string       { return "(" + ge.Expression.String() + ")" }

// CallExpression: name(args). Function may be module-qualified.
type CallExpression struct {
	Token     token.Token // the identifier token
	Function  *Identifier
	Arguments []Expression
}

func (ce *CallExpression) expressionNode()      {}
func (ce *CallExpression) TokenLiteral() string { return ce.Token.Literal }
func (ce *CallExpression) String() string {
	args := make([]string, len(ce.Arguments))
	for i, a := range ce.Arguments {
		args[i] = a.String()
	}
	return ce.Function.String() + "(" + strings.Join(args, ", ") + ")"
}
