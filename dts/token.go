package dts

import "fmt"

// TokenType represents the type of a token.
type TokenType int

const (
	// Special tokens
	TokenEOF TokenType = iota
	TokenError

	// Literals
	TokenIdent    // foo, string, declare (keywords are contextual in declarations)
	TokenString   // 'a', "b"
	TokenNumber   // 42, 0xff, 1.5e3
	TokenBigInt   // 10n
	TokenTemplate // `prefix-${string}`

	// Delimiters and operators
	TokenLParen    // (
	TokenRParen    // )
	TokenLBracket  // [
	TokenRBracket  // ]
	TokenLBrace    // {
	TokenRBrace    // }
	TokenLAngle    // <
	TokenRAngle    // >
	TokenComma     // ,
	TokenSemicolon // ;
	TokenColon     // :
	TokenQuestion  // ?
	TokenDot       // .
	TokenEllipsis  // ...
	TokenPipe      // |
	TokenAmp       // &
	TokenEquals    // =
	TokenArrow     // =>
	TokenMinus     // -
	TokenPlus      // +
	TokenStar      // *
	TokenAt        // @
	TokenBang      // !
	TokenHash      // #
)

var tokenNames = map[TokenType]string{
	TokenEOF:       "EOF",
	TokenError:     "ERROR",
	TokenIdent:     "IDENT",
	TokenString:    "STRING",
	TokenNumber:    "NUMBER",
	TokenBigInt:    "BIGINT",
	TokenTemplate:  "TEMPLATE",
	TokenLParen:    "(",
	TokenRParen:    ")",
	TokenLBracket:  "[",
	TokenRBracket:  "]",
	TokenLBrace:    "{",
	TokenRBrace:    "}",
	TokenLAngle:    "<",
	TokenRAngle:    ">",
	TokenComma:     ",",
	TokenSemicolon: ";",
	TokenColon:     ":",
	TokenQuestion:  "?",
	TokenDot:       ".",
	TokenEllipsis:  "...",
	TokenPipe:      "|",
	TokenAmp:       "&",
	TokenEquals:    "=",
	TokenArrow:     "=>",
	TokenMinus:     "-",
	TokenPlus:      "+",
	TokenStar:      "*",
	TokenAt:        "@",
	TokenBang:      "!",
	TokenHash:      "#",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Token(%d)", t)
}

// Position represents a source location.
type Position struct {
	Offset int // byte offset
	Line   int // 1-based line number
	Column int // 1-based column number
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token represents a lexical token.
type Token struct {
	Type    TokenType
	Literal string   // raw text; unquoted value for strings
	Pos     Position // start position

	// Doc is the last /** ... */ block between the previous token and this one.
	Doc string
	// NewlineBefore reports a line break between the previous token and this one.
	NewlineBefore bool
}

func (t Token) String() string {
	if t.Type == TokenEOF {
		return "EOF"
	}
	if t.Type == TokenError {
		return fmt.Sprintf("ERROR(%s)", t.Literal)
	}
	if len(t.Literal) > 20 {
		return fmt.Sprintf("%s(%q...)", t.Type, t.Literal[:20])
	}
	return fmt.Sprintf("%s(%q)", t.Type, t.Literal)
}

// Is reports whether the token is the identifier word.
func (t Token) Is(word string) bool {
	return t.Type == TokenIdent && t.Literal == word
}
