// Package lang implements the lexer, parser and AST for the source
// language: declarations, assignment, compound assignment,
// increment/decrement, if/while/do/for/repeat, cout chains and the full
// arithmetic/relational/logical expression grammar.
package lang

import "fmt"

// Kind identifies a lexical token class.
type Kind int

const (
	EOF Kind = iota
	IDENT
	INT

	// keywords
	KwVoid
	KwMain
	KwInt
	KwCout
	KwEndl
	KwIf
	KwElse
	KwWhile
	KwDo
	KwFor
	KwRepeat
	KwAnd
	KwOr

	// punctuation
	LParen
	RParen
	LBrace
	RBrace
	Semi
	Comma

	// operators
	Plus
	Minus
	Star
	Slash
	Percent
	StarStar
	Equals
	PlusEq
	MinusEq
	PlusPlus
	MinusMinus
	Less
	LessEq
	Greater
	GreaterEq
	EqEq
	NotEq
	Shl // << , cout's stream operator
)

// keywords are spelled out as words, not symbols: the language writes
// logical conjunction/disjunction as `and`/`or` rather than &&/||.
var keywords = map[string]Kind{
	"void":   KwVoid,
	"main":   KwMain,
	"int":    KwInt,
	"cout":   KwCout,
	"endl":   KwEndl,
	"if":     KwIf,
	"else":   KwElse,
	"while":  KwWhile,
	"do":     KwDo,
	"for":    KwFor,
	"repeat": KwRepeat,
	"and":    KwAnd,
	"or":     KwOr,
}

// Position is a 1-based line/column location in the source text.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string { return fmt.Sprintf("%d:%d", p.Line, p.Column) }

// Token is one lexeme produced by the Scanner.
type Token struct {
	Kind   Kind
	Lexeme string
	IntVal int32 // valid when Kind == INT
	Pos    Position
}

func (t Token) String() string {
	if t.Lexeme != "" {
		return fmt.Sprintf("%s(%q)", kindNames[t.Kind], t.Lexeme)
	}
	return kindNames[t.Kind]
}

var kindNames = map[Kind]string{
	EOF: "EOF", IDENT: "IDENT", INT: "INT",
	KwVoid: "void", KwMain: "main", KwInt: "int", KwCout: "cout", KwEndl: "endl",
	KwIf: "if", KwElse: "else", KwWhile: "while", KwDo: "do", KwFor: "for", KwRepeat: "repeat",
	KwAnd: "and", KwOr: "or",
	LParen: "(", RParen: ")", LBrace: "{", RBrace: "}", Semi: ";", Comma: ",",
	Plus: "+", Minus: "-", Star: "*", Slash: "/", Percent: "%", StarStar: "**",
	Equals: "=", PlusEq: "+=", MinusEq: "-=", PlusPlus: "++", MinusMinus: "--",
	Less: "<", LessEq: "<=", Greater: ">", GreaterEq: ">=", EqEq: "==", NotEq: "!=",
	Shl: "<<",
}
