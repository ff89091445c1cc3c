package ast

import (
	"fmt"
	"io"
	"strings"
)

// A Visitor's Visit method is invoked for each node encountered by Walk.
// If the result visitor w is not nil, Walk visits each of the children of
// node with w, followed by a call of w.Visit(nil).
type Visitor interface {
	Visit(node Node) (w Visitor)
}

// Walk traverses a syntax tree in depth-first order.
func Walk(v Visitor, node Node) {
	if v = v.Visit(node); v == nil {
		return
	}

	switch n := node.(type) {
	case *Program:
		for _, s := range n.Statements {
			Walk(v, s)
		}
	case *Block:
		for _, s := range n.Statements {
			Walk(v, s)
		}
	case *AssignStatement:
		Walk(v, n.Name)
		if n.Value != nil {
			Walk(v, n.Value)
		}
	case *IfStatement:
		for _, br := range n.Branches {
			Walk(v, br.Condition)
			Walk(v, br.Consequence)
		}
		if n.Alternative != nil {
			Walk(v, n.Alternative)
		}
	case *ForStatement:
		Walk(v, n.Variable)
		Walk(v, n.Start)
		Walk(v, n.End)
		if n.Step != nil {
			Walk(v, n.Step)
		}
		Walk(v, n.Body)
	case *ReturnStatement:
		if n.ReturnValue != nil {
			Walk(v, n.ReturnValue)
		}
	case *ExpressionStatement:
		if n.Expression != nil {
			Walk(v, n.Expression)
		}
	case *ProcedureDefinition:
		Walk(v, n.Name)
		for _, p := range n.Parameters {
			Walk(v, p)
		}
		Walk(v, n.Body)
	case *ModuleDefinition:
		Walk(v, n.Name)
		Walk(v, n.Body)
	case *InfixExpression:
		Walk(v, n.Left)
		Walk(v, n.Right)
	case *GroupedExpression:
		Walk(v, n.Expression)
	case *CallExpression:
		Walk(v, n.Function)
		for _, a := range n.Arguments {
			Walk(v, a)
		}
	case *ImportStatement, *Identifier, *IntegerLiteral, *StringLiteral, *BooleanLiteral:
		// leaves
	default:
		panic(fmt.Sprintf("ast.Walk: unexpected node type %T", n))
	}

	v.Visit(nil)
}

type inspector func(Node) bool

func (f inspector) Visit(node Node) Visitor {
	if f(node) {
		return f
	}
	return nil
}

// Inspect traverses the tree calling f(node) for each node; if f returns
// true, Inspect descends into the node's children, followed by f(nil).
func Inspect(node Node, f func(Node) bool) {
	Walk(inspector(f), node)
}

// Fprint writes an indented outline of the tree to w, one node per line.
func Fprint(w io.Writer, node Node) error {
	var err error
	depth := 0
	Inspect(node, func(n Node) bool {
		if err != nil {
			return false
		}
		if n == nil {
			depth--
			return false
		}
		_, err = fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), describe(n))
		depth++
		return true
	})
	return err
}

func describe(n Node) string {
	switch n := n.(type) {
	case *Program:
		if n.File != "" {
			return "Program " + n.File
		}
		return "Program"
	case *Identifier:
		return "Identifier " + n.Value
	case *IntegerLiteral:
		return "IntegerLiteral " + n.Token.Literal
	case *StringLiteral:
		return "StringLiteral " + n.Raw
	case *BooleanLiteral:
		return "BooleanLiteral " + n.String()
	case *InfixExpression:
		return "InfixExpression " + string(n.Operator)
	case *ImportStatement:
		return "ImportStatement " + n.Name
	default:
		name := fmt.Sprintf("%T", n)
		return strings.TrimPrefix(name, "*ast.")
	}
}
