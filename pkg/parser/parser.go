package parser

import (
	"fmt"
	"math"

	"bytebeat/pkg/ast"
	"bytebeat/pkg/diag"
	"bytebeat/pkg/lexer"
	"bytebeat/pkg/numeric"
	"bytebeat/pkg/token"
)

const (
	_ int = iota
	LOWEST
	SEQUENCE    // a, b
	CONDITIONAL // a ? b : c
	LOGICAL_OR  // ||
	LOGICAL_AND // &&
	BIT_OR      // |
	BIT_XOR     // ^
	BIT_AND     // &
	EQUALS      // == != === !==
	LESSGREATER // < > <= >=
	SHIFT       // << >> >>>
	SUM         // + -
	PRODUCT     // * / %
	EXPONENT    // **
	PREFIX      // -X !X ~X +X
	CALL        // myFunction(X)
	MEMBER      // object.property
)

var precedences = map[token.TokenType]int{
	token.COMMA:         SEQUENCE,
	token.QUESTION:      CONDITIONAL,
	token.OR:            LOGICAL_OR,
	token.AND:           LOGICAL_AND,
	token.PIPE:          BIT_OR,
	token.CARET:         BIT_XOR,
	token.AMP:           BIT_AND,
	token.EQ:            EQUALS,
	token.NOT_EQ:        EQUALS,
	token.STRICT_EQ:     EQUALS,
	token.STRICT_NOT_EQ: EQUALS,
	token.LT:            LESSGREATER,
	token.GT:            LESSGREATER,
	token.LTE:           LESSGREATER,
	token.GTE:           LESSGREATER,
	token.SHL:           SHIFT,
	token.SHR:           SHIFT,
	token.USHR:          SHIFT,
	token.PLUS:          SUM,
	token.MINUS:         SUM,
	token.SLASH:         PRODUCT,
	token.ASTERISK:      PRODUCT,
	token.PERCENT:       PRODUCT,
	token.POWER:         EXPONENT,
	token.LPAREN:        CALL,
	token.DOT:           MEMBER,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

type Parser struct {
	l      *lexer.Lexer
	errors []*diag.Error

	curToken  token.Token
	peekToken token.Token

	prefixParseFns map[token.TokenType]prefixParseFn
	infixParseFns  map[token.TokenType]infixParseFn

	// parenthesized prefix expressions may be the base of **
	parenthesized map[*ast.PrefixExpression]bool
}

func New(l *lexer.Lexer) *Parser {
	p := &Parser{
		l:             l,
		parenthesized: map[*ast.PrefixExpression]bool{},
	}

	p.prefixParseFns = make(map[token.TokenType]prefixParseFn)
	p.registerPrefix(token.IDENT, p.parseIdentifier)
	p.registerPrefix(token.NUMBER, p.parseNumberLiteral)
	p.registerPrefix(token.STRING, p.parseStringLiteral)
	p.registerPrefix(token.TRUE, p.parseBoolean)
	p.registerPrefix(token.FALSE, p.parseBoolean)
	p.registerPrefix(token.BANG, p.parsePrefixExpression)
	p.registerPrefix(token.MINUS, p.parsePrefixExpression)
	p.registerPrefix(token.PLUS, p.parsePrefixExpression)
	p.registerPrefix(token.TILDE, p.parsePrefixExpression)
	p.registerPrefix(token.LPAREN, p.parseGroupedExpression)

	p.infixParseFns = make(map[token.TokenType]infixParseFn)
	for tt := range precedences {
		p.registerInfix(tt, p.parseInfixExpression)
	}
	p.registerInfix(token.POWER, p.parsePowerExpression)
	p.registerInfix(token.QUESTION, p.parseConditionalExpression)
	p.registerInfix(token.COMMA, p.parseSequenceExpression)
	p.registerInfix(token.LPAREN, p.parseCallExpression)
	p.registerInfix(token.DOT, p.parseMemberExpression)

	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()

	return p
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

// ParseProgram parses a single expression spanning the whole input.
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}

	if p.curTokenIs(token.EOF) {
		p.errorAt(p.curToken, "empty expression")
		return program
	}

	program.Expression = p.parseExpression(LOWEST)

	if len(p.errors) == 0 && !p.peekTokenIs(token.EOF) {
		p.errorAt(p.peekToken, "unexpected token")
	}

	return program
}

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken)
		return nil
	}
	leftExp := prefix()

	for leftExp != nil && precedence < p.peekPrecedence() {
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

func (p *Parser) parseNumberLiteral() ast.Expression {
	lit := &ast.NumberLiteral{Token: p.curToken}

	value := numeric.Parse(p.curToken.Literal)
	if math.IsNaN(value) {
		p.errorAt(p.curToken, "could not parse number")
		return nil
	}

	lit.Value = value
	return lit
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseBoolean() ast.Expression {
	return &ast.Boolean{Token: p.curToken, Value: p.curTokenIs(token.TRUE)}
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	expression := &ast.PrefixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
	}

	p.nextToken()

	expression.Right = p.parseExpression(PREFIX)
	if expression.Right == nil {
		return nil
	}

	return expression
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	expression := &ast.InfixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
		Left:     left,
	}

	precedence := p.curPrecedence()
	p.nextToken()
	expression.Right = p.parseExpression(precedence)
	if expression.Right == nil {
		return nil
	}

	return expression
}

// parsePowerExpression is right associative: 2 ** 3 ** 2 is 2 ** (3 ** 2).
func (p *Parser) parsePowerExpression(left ast.Expression) ast.Expression {
	if pe, ok := left.(*ast.PrefixExpression); ok && !p.parenthesized[pe] {
		p.errorAt(p.curToken, "unary operator before ** must be parenthesized")
		return nil
	}

	expression := &ast.InfixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
		Left:     left,
	}

	p.nextToken()
	expression.Right = p.parseExpression(EXPONENT - 1)
	if expression.Right == nil {
		return nil
	}

	return expression
}

func (p *Parser) parseConditionalExpression(condition ast.Expression) ast.Expression {
	expression := &ast.ConditionalExpression{
		Token:     p.curToken,
		Condition: condition,
	}

	p.nextToken()
	expression.Consequence = p.parseExpression(SEQUENCE)
	if expression.Consequence == nil {
		return nil
	}

	if !p.expectPeek(token.COLON) {
		return nil
	}

	p.nextToken()
	expression.Alternative = p.parseExpression(CONDITIONAL - 1)
	if expression.Alternative == nil {
		return nil
	}

	return expression
}

func (p *Parser) parseSequenceExpression(first ast.Expression) ast.Expression {
	expression := &ast.SequenceExpression{
		Token:       p.curToken,
		Expressions: []ast.Expression{first},
	}

	for {
		p.nextToken()
		next := p.parseExpression(SEQUENCE)
		if next == nil {
			return nil
		}
		expression.Expressions = append(expression.Expressions, next)

		if !p.peekTokenIs(token.COMMA) {
			return expression
		}
		p.nextToken()
	}
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken()

	exp := p.parseExpression(LOWEST)
	if exp == nil {
		return nil
	}

	if !p.expectPeek(token.RPAREN) {
		return nil
	}

	if pe, ok := exp.(*ast.PrefixExpression); ok {
		p.parenthesized[pe] = true
	}

	return exp
}

func (p *Parser) parseCallExpression(function ast.Expression) ast.Expression {
	exp := &ast.CallExpression{Token: p.curToken, Function: function}
	exp.Arguments = p.parseCallArguments()
	if exp.Arguments == nil {
		return nil
	}
	return exp
}

func (p *Parser) parseCallArguments() []ast.Expression {
	args := []ast.Expression{}

	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return args
	}

	p.nextToken()
	arg := p.parseExpression(SEQUENCE)
	if arg == nil {
		return nil
	}
	args = append(args, arg)

	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		arg := p.parseExpression(SEQUENCE)
		if arg == nil {
			return nil
		}
		args = append(args, arg)
	}

	if !p.expectPeek(token.RPAREN) {
		return nil
	}

	return args
}

func (p *Parser) parseMemberExpression(object ast.Expression) ast.Expression {
	exp := &ast.MemberExpression{Token: p.curToken, Object: object}

	if !p.expectPeek(token.IDENT) {
		return nil
	}

	exp.Property = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
	return exp
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

// Errors returns the messages of every error met while parsing.
func (p *Parser) Errors() []string {
	msgs := make([]string, len(p.errors))
	for i, e := range p.errors {
		msgs[i] = e.Msg
	}
	return msgs
}

// Err returns the first parse error as a *diag.Error, or nil.
func (p *Parser) Err() error {
	if len(p.errors) == 0 {
		return nil
	}
	return p.errors[0]
}

func (p *Parser) errorAt(tok token.Token, msg string) {
	p.errors = append(p.errors, &diag.Error{
		Kind:  diag.Syntax,
		Token: tok.Literal,
		Pos:   tok.Pos,
		Msg:   msg,
	})
}

func (p *Parser) peekError(t token.TokenType) {
	msg := fmt.Sprintf("expected next token to be %s, got %s instead",
		t, p.peekToken.Type)
	p.errorAt(p.peekToken, msg)
}

func (p *Parser) noPrefixParseFnError(tok token.Token) {
	if tok.Type == token.ILLEGAL {
		p.errorAt(tok, "invalid or unexpected token")
		return
	}
	if tok.Type == token.EOF {
		p.errorAt(tok, "unexpected end of input")
		return
	}
	p.errorAt(tok, fmt.Sprintf("no prefix parse function for %s found", tok.Type))
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

func (p *Parser) registerPrefix(tokenType token.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType token.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}
