// Package parser implements component O: the parser/grammar adapter that
// builds this package's internal/ast tree from privacy-annotated source
// text, the external interface spec §6 calls "To the parser (in)". Spec §1
// treats the host-language parser as an out-of-scope external collaborator;
// this package exists only because SPEC_FULL.md's ambient-stack expansion
// needs a buildable, testable front door into the rest of the pipeline.
//
// Tokenization reuses the teacher's participle-based stateful lexer
// construction (grammar/lexer.go's lexer.MustStateful(lexer.Rules{...})
// convention) rather than the teacher's struct-tag participle.Build[T]
// grammar: that approach ties token-to-field binding to struct tags whose
// exact matching semantics cannot be checked without running the Go
// toolchain, which this module's build process forbids. The teacher itself
// keeps a second, hand-rolled scanner+Pratt-parser pair
// (internal/parser/scanner.go, internal/parser/parser_pratt.go) for
// exactly this more control-heavy style of parsing; Parse below follows
// that second style, fed by the participle lexer's token stream instead of
// a bespoke character scanner.
package parser

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// tokenLexer is the stateful token grammar for the privacy-annotated
// surface syntax: keywords, identifiers, integer literals, the privacy-
// label sigil `@`, operators (longest-match first), and punctuation.
var tokenLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"Comment", `//[^\n]*`, nil},
		{"Whitespace", `[ \t\r\n]+`, nil},
		{"Ident", `[a-zA-Z_][a-zA-Z0-9_]*`, nil},
		{"Integer", `[0-9]+`, nil},
		{"Operator", `(==|!=|<=|>=|&&|\|\||[-+*/%!<>=])`, nil},
		{"Punctuation", `[(){}\[\];,@]`, nil},
	},
})

// keywords maps reserved identifiers to their TokenKind; every other Ident
// token is a plain name.
var keywords = map[string]TokenKind{
	"contract":     KwContract,
	"fn":           KwFn,
	"constructor":  KwConstructor,
	"external":     KwExternal,
	"bool":         KwBool,
	"uint":         KwUint,
	"address":      KwAddress,
	"mapping":      KwMapping,
	"require":      KwRequire,
	"return":       KwReturn,
	"reveal":       KwReveal,
	"me":           KwMe,
	"all":          KwAll,
	"if":           KwIf,
	"else":         KwElse,
	"while":        KwWhile,
	"for":          KwFor,
	"break":        KwBreak,
	"continue":     KwContinue,
	"true":         KwTrue,
	"false":        KwFalse,
}

// TokenKind enumerates every distinct lexical category the parser switches
// on, collapsing participle's generic Operator/Punctuation/Ident token
// types into specific kinds the recursive-descent parser can match
// directly, the same normalization kanso's own scanner performs (raw
// characters in, a closed TokenType enum out).
type TokenKind int

const (
	TokEOF TokenKind = iota
	TokIdent
	TokInteger

	KwContract
	KwFn
	KwConstructor
	KwExternal
	KwBool
	KwUint
	KwAddress
	KwMapping
	KwRequire
	KwReturn
	KwReveal
	KwMe
	KwAll
	KwIf
	KwElse
	KwWhile
	KwFor
	KwBreak
	KwContinue
	KwTrue
	KwFalse

	OpPlus
	OpMinus
	OpStar
	OpSlash
	OpPercent
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd
	OpOr
	OpBang
	OpAssign

	PLParen
	PRParen
	PLBrace
	PRBrace
	PLBracket
	PRBracket
	PSemi
	PComma
	PAt
)

var operatorKinds = map[string]TokenKind{
	"+": OpPlus, "-": OpMinus, "*": OpStar, "/": OpSlash, "%": OpPercent,
	"==": OpEq, "!=": OpNe, "<": OpLt, "<=": OpLe, ">": OpGt, ">=": OpGe,
	"&&": OpAnd, "||": OpOr, "!": OpBang, "=": OpAssign,
}

var punctKinds = map[string]TokenKind{
	"(": PLParen, ")": PRParen, "{": PLBrace, "}": PRBrace,
	"[": PLBracket, "]": PRBracket, ";": PSemi, ",": PComma, "@": PAt,
}

// Token is one lexed unit: its normalized kind, the raw source text
// (needed for identifiers and integer literals), and its source position.
type Token struct {
	Kind  TokenKind
	Text  string
	Pos   lexer.Position
}

// tokenize runs the participle stateful lexer over source and normalizes
// its output into the closed TokenKind set above, collapsing
// whitespace/comments (participle's Elide step, done by hand here since
// this package talks to lexer.Lexer directly instead of participle.Parser).
func tokenize(filename, source string) ([]Token, error) {
	lx, err := tokenLexer.Lex(filename, strings.NewReader(source))
	if err != nil {
		return nil, fmt.Errorf("parser: failed to start lexer: %w", err)
	}

	symbols := tokenLexer.Symbols()
	commentType := symbols["Comment"]
	wsType := symbols["Whitespace"]
	identType := symbols["Ident"]
	intType := symbols["Integer"]

	var out []Token
	for {
		tok, err := lx.Next()
		if err != nil {
			return nil, fmt.Errorf("parser: syntax error at %s: %w", tok.Pos, err)
		}
		if tok.EOF() {
			out = append(out, Token{Kind: TokEOF, Pos: tok.Pos})
			break
		}
		switch tok.Type {
		case commentType, wsType:
			continue
		case identType:
			if kw, ok := keywords[tok.Value]; ok {
				out = append(out, Token{Kind: kw, Text: tok.Value, Pos: tok.Pos})
			} else {
				out = append(out, Token{Kind: TokIdent, Text: tok.Value, Pos: tok.Pos})
			}
		case intType:
			out = append(out, Token{Kind: TokInteger, Text: tok.Value, Pos: tok.Pos})
		default:
			if k, ok := operatorKinds[tok.Value]; ok {
				out = append(out, Token{Kind: k, Text: tok.Value, Pos: tok.Pos})
				continue
			}
			if k, ok := punctKinds[tok.Value]; ok {
				out = append(out, Token{Kind: k, Text: tok.Value, Pos: tok.Pos})
				continue
			}
			return nil, fmt.Errorf("parser: unrecognized token %q at %s", tok.Value, tok.Pos)
		}
	}
	return out, nil
}
