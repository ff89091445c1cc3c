// Package parser builds an ast.Program from BASIC tokens.
package parser

import (
	"fmt"
	"strconv"

	"github.com/zurustar/wwbasic/pkg/syntax/ast"
	"github.com/zurustar/wwbasic/pkg/syntax/lexer"
	"github.com/zurustar/wwbasic/pkg/syntax/token"
)

// Precedence levels for operators.
const (
	_ int = iota
	LOWEST
	OR      // ||
	AND     // &&
	EQUALS  // == <> < > <= >=
	SUM     // + -
	PRODUCT // * / %
	PREFIX  // -X
	CALL    // myFunction(X)
)

var precedences = map[token.TokenType]int{
	token.OR:       OR,
	token.AND:      AND,
	token.EQ:       EQUALS,
	token.ASSIGN:   EQUALS,
	token.NOT_EQ:   EQUALS,
	token.LT:       EQUALS,
	token.LTE:      EQUALS,
	token.GT:       EQUALS,
	token.GTE:      EQUALS,
	token.PLUS:     SUM,
	token.MINUS:    SUM,
	token.ASTERISK: PRODUCT,
	token.SLASH:    PRODUCT,
	token.PERCENT:  PRODUCT,
	token.LPAREN:   CALL,
}

// ParserError is a syntax error at a source position.
type ParserError struct {
	Message string
	Line    int
	Column  int
}

func (e *ParserError) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, e.Message)
}

// Parser parses BASIC source code into an AST.
type Parser struct {
	l      *lexer.Lexer
	errors []error

	curToken  token.Token
	peekToken token.Token

	prefixParseFns map[token.TokenType]prefixParseFn
	infixParseFns  map[token.TokenType]infixParseFn
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// New creates a new Parser.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}

	p.prefixParseFns = make(map[token.TokenType]prefixParseFn)
	p.registerPrefix(token.IDENT, p.parseIdentifier)
	p.registerPrefix(token.INT, p.parseIntegerLiteral)
	p.registerPrefix(token.STRING, p.parseStringLiteral)
	p.registerPrefix(token.TRUE, p.parseBooleanLiteral)
	p.registerPrefix(token.FALSE, p.parseBooleanLiteral)
	p.registerPrefix(token.MINUS, p.parseNegation)
	p.registerPrefix(token.LPAREN, p.parseGroupedExpression)

	p.infixParseFns = make(map[token.TokenType]infixParseFn)
	for _, t := range []token.TokenType{
		token.PLUS, token.MINUS, token.ASTERISK, token.SLASH, token.PERCENT,
		token.EQ, token.ASSIGN, token.NOT_EQ, token.LT, token.LTE, token.GT, token.GTE,
		token.AND, token.OR,
	} {
		p.registerInfix(t, p.parseInfixExpression)
	}
	p.registerInfix(token.LPAREN, p.parseCallExpression)

	// Read two tokens to initialize curToken and peekToken
	p.nextToken()
	p.nextToken()

	return p
}

// ParseProgram parses the entire program. Parsing continues after an error
// so that every syntax error in the source is reported.
func (p *Parser) ParseProgram() (*ast.Program, []error) {
	program := &ast.Program{}

	for !p.curTokenIs(token.EOF) {
		if p.isSeparator(p.curToken.Type) {
			p.nextToken()
			continue
		}
		if token.IsBlockEnd(p.curToken.Type) {
			p.addError(p.curToken, fmt.Sprintf("unexpected %s outside of a block", p.curToken.Literal))
			p.skipLine()
			continue
		}
		stmt := p.parseStatement()
		if stmt == nil {
			p.skipLine()
			continue
		}
		program.Statements = append(program.Statements, stmt)
		p.endStatement()
	}

	return program, p.errors
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.IF:
		return p.parseIfStatement()
	case token.FOR:
		return p.parseForStatement()
	case token.DEF:
		return p.parseProcedureDefinition()
	case token.MODULE:
		return p.parseModuleDefinition()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.IMPORT:
		return p.parseImportStatement()
	case token.IDENT:
		if p.peekTokenIs(token.ASSIGN) {
			return p.parseAssignStatement()
		}
		return p.parseExpressionStatement()
	default:
		return p.parseExpressionStatement()
	}
}

// endStatement advances past the statement just parsed and requires a
// separator. On error the rest of the line is discarded.
func (p *Parser) endStatement() {
	p.nextToken()
	switch {
	case p.isSeparator(p.curToken.Type), p.curTokenIs(token.EOF):
		p.nextToken()
	case token.IsBlockEnd(p.curToken.Type):
		// a block terminator on the same line is handled by the caller
	default:
		p.addError(p.curToken, fmt.Sprintf("expected end of statement, got %s", p.curToken.Type))
		p.skipLine()
	}
}

func (p *Parser) parseAssignStatement() ast.Statement {
	stmt := &ast.AssignStatement{Token: p.curToken}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
	p.nextToken() // =
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	stmt := &ast.ExpressionStatement{Token: p.curToken}
	stmt.Expression = p.parseExpression(LOWEST)
	if stmt.Expression == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseIfStatement() ast.Statement {
	stmt := &ast.IfStatement{Token: p.curToken}

	for p.curTokenIs(token.IF) || p.curTokenIs(token.ELSEIF) {
		branch := &ast.ConditionalBranch{Token: p.curToken}
		p.nextToken()
		branch.Condition = p.parseExpression(LOWEST)
		if branch.Condition == nil || !p.expectPeek(token.THEN) {
			return nil
		}
		branch.Consequence = p.parseBlock(token.ELSEIF, token.ELSE, token.ENDIF)
		if branch.Consequence == nil {
			return nil
		}
		stmt.Branches = append(stmt.Branches, branch)
	}

	if p.curTokenIs(token.ELSE) {
		stmt.Alternative = p.parseBlock(token.ENDIF)
		if stmt.Alternative == nil {
			return nil
		}
	}
	return stmt
}

func (p *Parser) parseForStatement() ast.Statement {
	stmt := &ast.ForStatement{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Variable = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
	if !p.expectPeek(token.ASSIGN) {
		return nil
	}
	p.nextToken()
	if stmt.Start = p.parseExpression(LOWEST); stmt.Start == nil {
		return nil
	}
	if !p.expectPeek(token.TO) {
		return nil
	}
	p.nextToken()
	if stmt.End = p.parseExpression(LOWEST); stmt.End == nil {
		return nil
	}
	if p.peekTokenIs(token.STEP) {
		p.nextToken()
		p.nextToken()
		if stmt.Step = p.parseExpression(LOWEST); stmt.Step == nil {
			return nil
		}
	}

	if stmt.Body = p.parseBlock(token.NEXT); stmt.Body == nil {
		return nil
	}
	// NEXT may repeat the loop variable.
	if p.peekTokenIs(token.IDENT) {
		p.nextToken()
	}
	return stmt
}

func (p *Parser) parseProcedureDefinition() ast.Statement {
	stmt := &ast.ProcedureDefinition{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	if p.peekTokenIs(token.LPAREN) {
		p.nextToken()
		params, ok := p.parseParameters()
		if !ok {
			return nil
		}
		stmt.Parameters = params
	}

	if stmt.Body = p.parseBlock(token.ENDDEF); stmt.Body == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseParameters() ([]*ast.Identifier, bool) {
	var params []*ast.Identifier

	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return params, true
	}

	for {
		if !p.expectPeek(token.IDENT) {
			return nil, false
		}
		params = append(params, &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal})
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}

	if !p.expectPeek(token.RPAREN) {
		return nil, false
	}
	return params, true
}

func (p *Parser) parseModuleDefinition() ast.Statement {
	stmt := &ast.ModuleDefinition{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	if stmt.Body = p.parseBlock(token.ENDMODULE); stmt.Body == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseReturnStatement() ast.Statement {
	stmt := &ast.ReturnStatement{Token: p.curToken}

	if p.isSeparator(p.peekToken.Type) || token.IsBlockEnd(p.peekToken.Type) {
		return stmt
	}
	p.nextToken()
	if stmt.ReturnValue = p.parseExpression(LOWEST); stmt.ReturnValue == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseImportStatement() ast.Statement {
	stmt := &ast.ImportStatement{Token: p.curToken}

	if p.peekTokenIs(token.AT) {
		p.nextToken()
	}
	switch {
	case p.peekTokenIs(token.IDENT):
		p.nextToken()
		stmt.Name = p.curToken.Literal
	case p.peekTokenIs(token.STRING):
		p.nextToken()
		stmt.Name = (&ast.StringLiteral{Raw: p.curToken.Literal}).Unquote()
	default:
		p.peekError(token.IDENT)
		return nil
	}
	return stmt
}

// parseBlock parses statements until one of the terminators. It is entered
// on the last token of the block header and leaves curToken on the
// terminator.
func (p *Parser) parseBlock(terminators ...token.TokenType) *ast.Block {
	block := &ast.Block{Token: p.peekToken}
	p.nextToken()

	for {
		for p.isSeparator(p.curToken.Type) {
			p.nextToken()
		}
		for _, t := range terminators {
			if p.curTokenIs(t) {
				return block
			}
		}
		if token.IsBlockEnd(p.curToken.Type) {
			p.addError(p.curToken, fmt.Sprintf("expected %s, got %s", terminators[len(terminators)-1], p.curToken.Type))
			return nil
		}

		stmt := p.parseStatement()
		if stmt == nil {
			p.skipLine()
			continue
		}
		block.Statements = append(block.Statements, stmt)
		p.endStatement()
	}
}

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken)
		return nil
	}
	leftExp := prefix()

	for leftExp != nil && !p.isSeparator(p.peekToken.Type) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}
		p.nextToken()
		leftExp = infix(leftExp)
	}

	return leftExp
}

func (p *Parser) parseIdentifier() ast.Expression {
	return &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseIntegerLiteral() ast.Expression {
	lit := &ast.IntegerLiteral{Token: p.curToken}

	value, err := strconv.ParseInt(p.curToken.Literal, 10, 64)
	if err != nil {
		p.addError(p.curToken, fmt.Sprintf("could not parse %q as integer", p.curToken.Literal))
		return nil
	}

	lit.Value = value
	return lit
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.StringLiteral{Token: p.curToken, Raw: p.curToken.Literal}
}

func (p *Parser) parseBooleanLiteral() ast.Expression {
	return &ast.BooleanLiteral{Token: p.curToken, Value: p.curTokenIs(token.TRUE)}
}

// parseNegation desugars -x into 0 - x.
func (p *Parser) parseNegation() ast.Expression {
	tok := p.curToken
	p.nextToken()
	right := p.parseExpression(PREFIX)
	if right == nil {
		return nil
	}
	zero := &ast.IntegerLiteral{Token: token.Token{Type: token.INT, Literal: "0", Line: tok.Line, Column: tok.Column}}
	return &ast.InfixExpression{Token: tok, Operator: token.MINUS, Left: zero, Right: right}
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	expression := &ast.InfixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Type,
		Left:     left,
	}
	// A bare "=" inside an expression is equality.
	if expression.Operator == token.ASSIGN {
		expression.Operator = token.EQ
	}

	precedence := p.curPrecedence()
	p.nextToken()
	if expression.Right = p.parseExpression(precedence); expression.Right == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	tok := p.curToken
	p.nextToken()

	exp := p.parseExpression(LOWEST)
	if exp == nil || !p.expectPeek(token.RPAREN) {
		return nil
	}
	return &ast.GroupedExpression{Token: tok, Expression: exp}
}

func (p *Parser) parseCallExpression(function ast.Expression) ast.Expression {
	ident, ok := function.(*ast.Identifier)
	if !ok {
		p.addError(p.curToken, fmt.Sprintf("cannot call %s", function.String()))
		return nil
	}
	call := &ast.CallExpression{Token: ident.Token, Function: ident}
	args, ok := p.parseExpressionList(token.RPAREN)
	if !ok {
		return nil
	}
	call.Arguments = args
	return call
}

func (p *Parser) parseExpressionList(end token.TokenType) ([]ast.Expression, bool) {
	var list []ast.Expression

	if p.peekTokenIs(end) {
		p.nextToken()
		return list, true
	}

	p.nextToken()
	exp := p.parseExpression(LOWEST)
	if exp == nil {
		return nil, false
	}
	list = append(list, exp)

	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		if exp = p.parseExpression(LOWEST); exp == nil {
			return nil, false
		}
		list = append(list, exp)
	}

	if !p.expectPeek(end) {
		return nil, false
	}
	return list, true
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.TokenType) bool {
	return p.peekToken.Type == t
}

func (p *Parser) expectPeek(t token.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
	for p.peekToken.Type == token.ILLEGAL {
		p.addError(p.peekToken, fmt.Sprintf("illegal token %q", p.peekToken.Literal))
		p.peekToken = p.l.NextToken()
	}
}

func (p *Parser) isSeparator(t token.TokenType) bool {
	return t == token.NEWLINE || t == token.COLON
}

// skipLine discards tokens up to and including the next line end.
func (p *Parser) skipLine() {
	for !p.curTokenIs(token.NEWLINE) && !p.curTokenIs(token.EOF) {
		p.nextToken()
	}
	if p.curTokenIs(token.NEWLINE) {
		p.nextToken()
	}
}

func (p *Parser) peekPrecedence() int {
	if p, ok := precedences[p.peekToken.Type]; ok {
		return p
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if p, ok := precedences[p.curToken.Type]; ok {
		return p
	}
	return LOWEST
}

func (p *Parser) peekError(t token.TokenType) {
	p.addError(p.peekToken, fmt.Sprintf("expected next token to be %s, got %s instead", t, p.peekToken.Type))
}

func (p *Parser) noPrefixParseFnError(tok token.Token) {
	p.addError(tok, fmt.Sprintf("no prefix parse function for %s found", tok.Type))
}

func (p *Parser) addError(tok token.Token, msg string) {
	p.errors = append(p.errors, &ParserError{Message: msg, Line: tok.Line, Column: tok.Column})
}

func (p *Parser) registerPrefix(tokenType token.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType token.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}
