// Package eval compiles bytebeat expressions into Go closures.
package eval

import (
	"errors"
	"fmt"

	"bytebeat/pkg/ast"
	"bytebeat/pkg/diag"
	"bytebeat/pkg/lexer"
	"bytebeat/pkg/numeric"
	"bytebeat/pkg/parser"
	"bytebeat/pkg/token"
)

// ErrNotNumber is reported by Generator.Sample when the expression yields
// a string or boolean for the given counters.
var ErrNotNumber = errors.New("expression did not return a number")

type evalFn func(t, tt float64) Value

// node is a compiled subtree. A constant node reads neither the counters
// nor random.
type node struct {
	fn       evalFn
	constant bool
}

// Program is a compiled expression. It is immutable and safe for
// concurrent use.
type Program struct {
	Source string
	tree   *ast.Program
	root   node
}

// Compile parses src and lowers it into closures. Every identifier is
// resolved here, so evaluation never fails.
func Compile(src string) (*Program, error) {
	p := parser.New(lexer.New(src))
	tree := p.ParseProgram()
	if err := p.Err(); err != nil {
		return nil, err
	}

	root, err := compileNode(tree.Expression)
	if err != nil {
		return nil, err
	}

	if v := root.fn(0, 0); v.Kind != KindNumber {
		return nil, diag.Errorf(diag.Type, "expression must return a number, got %s", v.Kind)
	}

	return &Program{Source: src, tree: tree, root: root}, nil
}

// Validate reports whether src compiles.
func Validate(src string) bool {
	_, err := Compile(src)
	return err == nil
}

func (p *Program) Eval(t, tt float64) Value { return p.root.fn(t, tt) }

// Constant reports whether the whole expression folded to a single value.
func (p *Program) Constant() bool { return p.root.constant }

// Tree returns the parsed syntax tree.
func (p *Program) Tree() *ast.Program { return p.tree }

func (p *Program) Generator() *Generator { return &Generator{fn: p.root.fn} }

// Generator adapts a Program to the sample interface of the processor.
type Generator struct {
	fn evalFn
}

func (g *Generator) Sample(t, tt float64) (float64, error) {
	v := g.fn(t, tt)
	if v.Kind != KindNumber {
		return v.ToNumber(), ErrNotNumber
	}
	return v.Num, nil
}

func syntaxError(tok token.Token, msg string) *diag.Error {
	return &diag.Error{Kind: diag.Syntax, Token: tok.Literal, Pos: tok.Pos, Msg: msg}
}

func compileNode(n ast.Expression) (node, error) {
	switch n := n.(type) {
	case *ast.NumberLiteral:
		return constNode(Number(n.Value)), nil
	case *ast.StringLiteral:
		return constNode(String(n.Value)), nil
	case *ast.Boolean:
		return constNode(Boolean(n.Value)), nil
	case *ast.Identifier:
		return compileIdentifier(n.Token, n.Value, false)
	case *ast.MemberExpression:
		if obj, ok := n.Object.(*ast.Identifier); !ok || obj.Value != "Math" {
			return node{}, syntaxError(n.Token, "only Math members may be accessed")
		}
		return compileIdentifier(n.Property.Token, n.Property.Value, true)
	case *ast.PrefixExpression:
		return compilePrefixExpression(n)
	case *ast.InfixExpression:
		return compileInfixExpression(n)
	case *ast.ConditionalExpression:
		return compileConditionalExpression(n)
	case *ast.SequenceExpression:
		return compileSequenceExpression(n)
	case *ast.CallExpression:
		return compileCallExpression(n)
	case nil:
		return node{}, diag.Errorf(diag.Syntax, "empty expression")
	default:
		return node{}, diag.Errorf(diag.Syntax, "unsupported expression %T", n)
	}
}

func compileIdentifier(tok token.Token, name string, prefixed bool) (node, error) {
	if !prefixed {
		switch name {
		case "t":
			return node{fn: func(t, _ float64) Value { return Number(t) }}, nil
		case "tt":
			return node{fn: func(_, tt float64) Value { return Number(tt) }}, nil
		}
	}
	if c, ok := constants[name]; ok {
		return constNode(Number(c)), nil
	}
	if isFunction(name, prefixed) {
		return node{}, syntaxError(tok, "function used as a value")
	}
	return node{}, syntaxError(tok, "unknown identifier")
}

func compilePrefixExpression(pe *ast.PrefixExpression) (node, error) {
	right, err := compileNode(pe.Right)
	if err != nil {
		return node{}, err
	}
	r := right.fn

	var fn evalFn
	switch pe.Operator {
	case "-":
		fn = func(t, tt float64) Value { return Number(-r(t, tt).ToNumber()) }
	case "+":
		fn = func(t, tt float64) Value { return Number(r(t, tt).ToNumber()) }
	case "!":
		fn = func(t, tt float64) Value { return Boolean(!r(t, tt).Truthy()) }
	case "~":
		fn = func(t, tt float64) Value { return Number(numeric.Not(r(t, tt).ToNumber())) }
	default:
		return node{}, syntaxError(pe.Token, "unknown prefix operator")
	}

	return fold(node{fn: fn, constant: right.constant}), nil
}

func compileInfixExpression(ie *ast.InfixExpression) (node, error) {
	left, err := compileNode(ie.Left)
	if err != nil {
		return node{}, err
	}
	right, err := compileNode(ie.Right)
	if err != nil {
		return node{}, err
	}
	l, r := left.fn, right.fn
	constant := left.constant && right.constant

	switch ie.Operator {
	case "&&":
		return fold(node{constant: constant, fn: func(t, tt float64) Value {
			if v := l(t, tt); !v.Truthy() {
				return v
			}
			return r(t, tt)
		}}), nil
	case "||":
		return fold(node{constant: constant, fn: func(t, tt float64) Value {
			if v := l(t, tt); v.Truthy() {
				return v
			}
			return r(t, tt)
		}}), nil
	}

	op, ok := infixOps[ie.Operator]
	if !ok {
		return node{}, syntaxError(ie.Token, "unknown operator")
	}
	return fold(node{constant: constant, fn: func(t, tt float64) Value {
		return op(l(t, tt), r(t, tt))
	}}), nil
}

func compileConditionalExpression(ce *ast.ConditionalExpression) (node, error) {
	cond, err := compileNode(ce.Condition)
	if err != nil {
		return node{}, err
	}
	cons, err := compileNode(ce.Consequence)
	if err != nil {
		return node{}, err
	}
	alt, err := compileNode(ce.Alternative)
	if err != nil {
		return node{}, err
	}

	// A constant condition selects its branch now.
	if cond.constant {
		if cond.fn(0, 0).Truthy() {
			return cons, nil
		}
		return alt, nil
	}

	c, a, b := cond.fn, cons.fn, alt.fn
	return node{fn: func(t, tt float64) Value {
		if c(t, tt).Truthy() {
			return a(t, tt)
		}
		return b(t, tt)
	}}, nil
}

func compileSequenceExpression(se *ast.SequenceExpression) (node, error) {
	fns := make([]evalFn, len(se.Expressions))
	constant := true
	for i, e := range se.Expressions {
		n, err := compileNode(e)
		if err != nil {
			return node{}, err
		}
		fns[i] = n.fn
		constant = constant && n.constant
	}

	last := len(fns) - 1
	return fold(node{constant: constant, fn: func(t, tt float64) Value {
		for _, f := range fns[:last] {
			f(t, tt)
		}
		return fns[last](t, tt)
	}}), nil
}

func calleeName(fn ast.Expression) (token.Token, string, bool, bool) {
	switch fn := fn.(type) {
	case *ast.Identifier:
		return fn.Token, fn.Value, false, true
	case *ast.MemberExpression:
		if obj, ok := fn.Object.(*ast.Identifier); ok && obj.Value == "Math" {
			return fn.Property.Token, fn.Property.Value, true, true
		}
	}
	return token.Token{}, "", false, false
}

func compileCallExpression(ce *ast.CallExpression) (node, error) {
	tok, name, prefixed, ok := calleeName(ce.Function)
	if !ok {
		return node{}, syntaxError(ce.Token, fmt.Sprintf("%s is not a function", ce.Function.String()))
	}
	if !isFunction(name, prefixed) {
		return node{}, syntaxError(tok, "is not a function")
	}

	args := make([]evalFn, len(ce.Arguments))
	argConstant := make([]bool, len(ce.Arguments))
	constant := name != "random"
	for i, a := range ce.Arguments {
		n, err := compileNode(a)
		if err != nil {
			return node{}, err
		}
		args[i] = n.fn
		argConstant[i] = n.constant
		constant = constant && n.constant
	}
	arg := func(i int, missing Value) evalFn {
		if i < len(args) {
			return args[i]
		}
		return func(float64, float64) Value { return missing }
	}
	undefined := Number(numericNaN)

	var fn evalFn
	switch {
	case name == intName:
		x, i := arg(0, undefined), arg(1, Number(0))
		if len(args) > 0 && argConstant[0] {
			if v := x(0, 0); v.Kind == KindString {
				units := codeUnits(v.Str)
				fn = func(t, tt float64) Value { return unitOf(units, i(t, tt)) }
				break
			}
		}
		fn = func(t, tt float64) Value { return intOf(x(t, tt), i(t, tt)) }
	case name == "random":
		fn = func(float64, float64) Value { return Number(random()) }
	case unaryFns[name] != nil:
		f, x := unaryFns[name], arg(0, undefined)
		fn = func(t, tt float64) Value { return Number(f(x(t, tt).ToNumber())) }
	case binaryFns[name] != nil:
		f, x, y := binaryFns[name], arg(0, undefined), arg(1, undefined)
		fn = func(t, tt float64) Value { return Number(f(x(t, tt).ToNumber(), y(t, tt).ToNumber())) }
	default:
		v := variadicFns[name]
		fn = func(t, tt float64) Value {
			acc := v.identity
			for _, a := range args {
				acc = v.fold(acc, a(t, tt).ToNumber())
			}
			return Number(acc)
		}
	}

	return fold(node{fn: fn, constant: constant}), nil
}
