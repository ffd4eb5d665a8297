package dts

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Lexer tokenizes TypeScript declaration source.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      rune // current character
	line    int  // current line (1-based)
	col     int  // current column (1-based)

	doc     string // pending JSDoc block for the next token
	newline bool   // line break seen since the last token
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input: strings.TrimPrefix(input, "\uFEFF"),
		line:  1,
		col:   0,
	}
	l.readChar()
	return l
}

// readChar reads the next character.
func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0
		l.pos = l.readPos
		l.col++
		return
	}
	if l.ch == '\n' {
		l.line++
		l.col = 0
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPos:])
	l.ch = r
	l.pos = l.readPos
	l.readPos += size
	l.col++
}

// peekChar returns the next character without consuming it.
func (l *Lexer) peekChar() rune {
	if l.readPos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPos:])
	return r
}

func (l *Lexer) peekCharAt(n int) rune {
	off := l.readPos
	var r rune
	for i := 0; i <= n; i++ {
		if off >= len(l.input) {
			return 0
		}
		var size int
		r, size = utf8.DecodeRuneInString(l.input[off:])
		off += size
	}
	return r
}

func (l *Lexer) position() Position {
	return Position{Offset: l.pos, Line: l.line, Column: l.col}
}

// NextToken returns the next token.
func (l *Lexer) NextToken() Token {
	l.skipWhitespaceAndComments()

	tok := l.scan()
	tok.Doc = l.doc
	tok.NewlineBefore = l.newline
	l.doc = ""
	l.newline = false
	return tok
}

func (l *Lexer) single(t TokenType, pos Position) Token {
	lit := string(l.ch)
	l.readChar()
	return Token{Type: t, Literal: lit, Pos: pos}
}

func (l *Lexer) scan() Token {
	pos := l.position()

	switch {
	case l.ch == 0:
		return Token{Type: TokenEOF, Pos: pos}
	case l.ch == '(':
		return l.single(TokenLParen, pos)
	case l.ch == ')':
		return l.single(TokenRParen, pos)
	case l.ch == '[':
		return l.single(TokenLBracket, pos)
	case l.ch == ']':
		return l.single(TokenRBracket, pos)
	case l.ch == '{':
		return l.single(TokenLBrace, pos)
	case l.ch == '}':
		return l.single(TokenRBrace, pos)
	case l.ch == '<':
		return l.single(TokenLAngle, pos)
	case l.ch == '>':
		// Never merged into >> so nested type arguments close one at a time
		return l.single(TokenRAngle, pos)
	case l.ch == ',':
		return l.single(TokenComma, pos)
	case l.ch == ';':
		return l.single(TokenSemicolon, pos)
	case l.ch == ':':
		return l.single(TokenColon, pos)
	case l.ch == '?':
		return l.single(TokenQuestion, pos)
	case l.ch == '|':
		return l.single(TokenPipe, pos)
	case l.ch == '&':
		return l.single(TokenAmp, pos)
	case l.ch == '+':
		return l.single(TokenPlus, pos)
	case l.ch == '-':
		return l.single(TokenMinus, pos)
	case l.ch == '*':
		return l.single(TokenStar, pos)
	case l.ch == '@':
		return l.single(TokenAt, pos)
	case l.ch == '!':
		return l.single(TokenBang, pos)
	case l.ch == '#':
		return l.single(TokenHash, pos)
	case l.ch == '=':
		l.readChar()
		if l.ch == '>' {
			l.readChar()
			return Token{Type: TokenArrow, Literal: "=>", Pos: pos}
		}
		return Token{Type: TokenEquals, Literal: "=", Pos: pos}
	case l.ch == '.':
		if l.peekChar() == '.' && l.peekCharAt(1) == '.' {
			l.readChar()
			l.readChar()
			l.readChar()
			return Token{Type: TokenEllipsis, Literal: "...", Pos: pos}
		}
		if isDigit(l.peekChar()) {
			return l.readNumber(pos)
		}
		return l.single(TokenDot, pos)
	case l.ch == '\'' || l.ch == '"':
		return l.readString(pos)
	case l.ch == '`':
		return l.readTemplate(pos)
	case isDigit(l.ch):
		return l.readNumber(pos)
	case isIdentStart(l.ch):
		return l.readIdentifier(pos)
	default:
		ch := l.ch
		l.readChar()
		return Token{Type: TokenError, Literal: fmt.Sprintf("unexpected character: %c", ch), Pos: pos}
	}
}

// skipWhitespaceAndComments skips whitespace and comments, remembering the
// last JSDoc block and whether a line break was crossed.
func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' || l.ch == '\uFEFF' || l.ch == '\u00A0' {
			if l.ch == '\n' {
				l.newline = true
			}
			l.readChar()
		}

		if l.ch == '/' && l.peekChar() == '/' {
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
			continue
		}

		if l.ch == '/' && l.peekChar() == '*' {
			start := l.pos
			isDoc := l.peekCharAt(1) == '*' && l.peekCharAt(2) != '/'
			l.readChar()
			l.readChar()
			for l.ch != 0 && !(l.ch == '*' && l.peekChar() == '/') {
				if l.ch == '\n' {
					l.newline = true
				}
				l.readChar()
			}
			if l.ch != 0 {
				l.readChar()
				l.readChar()
			}
			if isDoc {
				l.doc = l.input[start:l.pos]
			}
			continue
		}

		break
	}
}

// readString reads a single- or double-quoted string literal.
func (l *Lexer) readString(pos Position) Token {
	quote := l.ch
	l.readChar()

	var sb strings.Builder
	for l.ch != quote {
		if l.ch == 0 || l.ch == '\n' {
			return Token{Type: TokenError, Literal: "unterminated string", Pos: pos}
		}
		if l.ch == '\\' {
			l.readChar()
			sb.WriteRune(unescape(l.ch))
			l.readChar()
			continue
		}
		sb.WriteRune(l.ch)
		l.readChar()
	}
	l.readChar()

	return Token{Type: TokenString, Literal: sb.String(), Pos: pos}
}

func unescape(ch rune) rune {
	switch ch {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case '0':
		return 0
	default:
		return ch
	}
}

// readTemplate reads a template literal type, keeping its raw text.
// Substitutions may nest braces and further templates.
func (l *Lexer) readTemplate(pos Position) Token {
	start := l.pos
	l.readChar()

	for l.ch != '`' {
		switch {
		case l.ch == 0:
			return Token{Type: TokenError, Literal: "unterminated template literal", Pos: pos}
		case l.ch == '\\':
			l.readChar()
		case l.ch == '$' && l.peekChar() == '{':
			l.readChar()
			depth := 0
			for {
				if l.ch == 0 {
					return Token{Type: TokenError, Literal: "unterminated template literal", Pos: pos}
				}
				if l.ch == '{' {
					depth++
				} else if l.ch == '}' {
					depth--
					if depth == 0 {
						break
					}
				} else if l.ch == '`' {
					inner := l.readTemplate(l.position())
					if inner.Type == TokenError {
						return inner
					}
					continue
				}
				l.readChar()
			}
		}
		l.readChar()
	}
	l.readChar()

	return Token{Type: TokenTemplate, Literal: l.input[start:l.pos], Pos: pos}
}

// readNumber reads a numeric literal, including hex/octal/binary forms,
// separators, fractions, exponents and the bigint suffix.
func (l *Lexer) readNumber(pos Position) Token {
	start := l.pos

	if l.ch == '0' && strings.ContainsRune("xXoObB", l.peekChar()) {
		l.readChar()
		l.readChar()
		for isHexDigit(l.ch) || l.ch == '_' {
			l.readChar()
		}
	} else {
		for isDigit(l.ch) || l.ch == '_' {
			l.readChar()
		}
		if l.ch == '.' && l.peekChar() != '.' {
			l.readChar()
			for isDigit(l.ch) || l.ch == '_' {
				l.readChar()
			}
		}
		if l.ch == 'e' || l.ch == 'E' {
			l.readChar()
			if l.ch == '+' || l.ch == '-' {
				l.readChar()
			}
			for isDigit(l.ch) {
				l.readChar()
			}
		}
	}

	if l.ch == 'n' {
		l.readChar()
		return Token{Type: TokenBigInt, Literal: l.input[start:l.pos], Pos: pos}
	}
	return Token{Type: TokenNumber, Literal: l.input[start:l.pos], Pos: pos}
}

// readIdentifier reads an identifier. Keywords are contextual and stay identifiers.
func (l *Lexer) readIdentifier(pos Position) Token {
	start := l.pos
	for isIdentPart(l.ch) {
		l.readChar()
	}
	return Token{Type: TokenIdent, Literal: l.input[start:l.pos], Pos: pos}
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r) || r == '\u200C' || r == '\u200D'
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

// Tokenize returns all tokens of input, ending with EOF.
func Tokenize(input string) []Token {
	l := NewLexer(input)
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			break
		}
	}
	return tokens
}
