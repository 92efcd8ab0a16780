package compiler

import (
	"fmt"
	"strconv"
	"unicode"
)

// keywords maps source text to its keyword TokenType.
var keywords = map[string]TokenType{
	"int":    INT,
	"bool":   BOOL,
	"void":   VOID,
	"struct": STRUCT,
	"cin":    CIN,
	"cout":   COUT,
	"if":     IF,
	"else":   ELSE,
	"while":  WHILE,
	"repeat": REPEAT,
	"return": RETURN,
	"true":   TRUE,
	"false":  FALSE,
}

// Lexer holds all mutable state for a single scanning pass over src.
type Lexer struct {
	src  []rune
	pos  int // index of the next rune to consume
	line int // current 1-based source line
	col  int // current 1-based source column
	rep  *Reporter
}

func newLexer(src string, rep *Reporter) *Lexer {
	return &Lexer{src: []rune(src), pos: 0, line: 1, col: 1, rep: rep}
}

// peek returns the rune at the current position without advancing.
func (l *Lexer) peek() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

// peek2 returns the rune one position ahead of the current position.
func (l *Lexer) peek2() rune {
	if l.pos+1 >= len(l.src) {
		return 0
	}
	return l.src[l.pos+1]
}

// advance consumes one rune and returns it.
func (l *Lexer) advance() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.src) && unicode.IsSpace(l.peek()) {
		l.advance()
	}
}

// skipLineComment discards everything from the current position to
// end-of-line. The opening marker must already have been consumed.
func (l *Lexer) skipLineComment() {
	for l.pos < len(l.src) && l.peek() != '\n' {
		l.advance()
	}
}

// scanIdent collects a full identifier or keyword token.
// The first character (letter or '_') must still be at l.peek().
func (l *Lexer) scanIdent() Token {
	line, col := l.line, l.col
	start := l.pos
	for l.pos < len(l.src) {
		r := l.peek()
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			break
		}
		l.advance()
	}
	lexeme := string(l.src[start:l.pos])
	tt := IDENTIFIER
	if kw, ok := keywords[lexeme]; ok {
		tt = kw
	}
	return Token{Type: tt, Lexeme: lexeme, Line: line, Col: col}
}

// scanInt collects a decimal integer literal.
// The first digit must still be at l.peek().
func (l *Lexer) scanInt() Token {
	line, col := l.line, l.col
	start := l.pos
	for l.pos < len(l.src) && unicode.IsDigit(l.peek()) {
		l.advance()
	}
	lexeme := string(l.src[start:l.pos])
	val, err := strconv.Atoi(lexeme)
	if err != nil {
		// Out of range for the target's word size.
		l.rep.Warn(line, col, "integer literal too large; using max value")
		val = 1<<31 - 1
	}
	return Token{Type: INTLIT, Lexeme: lexeme, IntVal: val, Line: line, Col: col}
}

// scanString collects a string literal "...". The lexeme keeps the
// surrounding quotes and the raw escapes, which is exactly the form the
// code generator writes into .asciiz directives.
func (l *Lexer) scanString() (Token, bool) {
	line, col := l.line, l.col
	l.advance() // consume opening "
	lexeme := []rune{'"'}

	for l.pos < len(l.src) {
		r := l.peek()
		if r == '"' {
			l.advance()
			lexeme = append(lexeme, '"')
			return Token{Type: STRINGLIT, Lexeme: string(lexeme), Line: line, Col: col}, true
		}
		if r == '\n' {
			l.rep.Fatal(line, col, "unterminated string literal")
			return Token{}, false
		}
		if r == '\\' {
			l.advance()
			next := l.peek()
			switch next {
			case 'n', 't', '"', '\\', '\'', '?':
				lexeme = append(lexeme, '\\', next)
			default:
				l.rep.Fatal(line, col, fmt.Sprintf("string literal with bad escape \\%c", next))
				// Keep scanning so the rest of the literal is consumed.
				lexeme = append(lexeme, next)
			}
			l.advance()
			continue
		}
		lexeme = append(lexeme, r)
		l.advance()
	}

	l.rep.Fatal(line, col, "unterminated string literal")
	return Token{}, false
}

// nextToken skips whitespace and comments and returns the next Token.
// A malformed token is reported through the Reporter and skipped; ok is
// false in that case and the caller should simply ask again.
func (l *Lexer) nextToken() (Token, bool) {
	// Skip whitespace and both comment styles in a loop so that a
	// comment followed immediately by more whitespace is handled.
	for {
		l.skipWhitespace()
		if l.pos >= len(l.src) {
			return Token{Type: EOF, Line: l.line, Col: l.col}, true
		}
		if l.peek() == '/' && l.peek2() == '/' {
			l.advance()
			l.advance()
			l.skipLineComment()
			continue
		}
		if l.peek() == '#' {
			l.advance()
			l.skipLineComment()
			continue
		}
		break
	}

	ch := l.peek()
	line, col := l.line, l.col

	if unicode.IsLetter(ch) || ch == '_' {
		return l.scanIdent(), true
	}
	if unicode.IsDigit(ch) {
		return l.scanInt(), true
	}
	if ch == '"' {
		return l.scanString()
	}

	l.advance() // consume the character before the switch
	switch ch {
	case '{':
		return Token{LBRACE, "{", 0, line, col}, true
	case '}':
		return Token{RBRACE, "}", 0, line, col}, true
	case '(':
		return Token{LPAREN, "(", 0, line, col}, true
	case ')':
		return Token{RPAREN, ")", 0, line, col}, true
	case ';':
		return Token{SEMICOLON, ";", 0, line, col}, true
	case ',':
		return Token{COMMA, ",", 0, line, col}, true
	case '.':
		return Token{DOT, ".", 0, line, col}, true
	case '+':
		if l.peek() == '+' {
			l.advance()
			return Token{PLUS_PLUS, "++", 0, line, col}, true
		}
		return Token{PLUS, "+", 0, line, col}, true
	case '-':
		if l.peek() == '-' {
			l.advance()
			return Token{MINUS_MINUS, "--", 0, line, col}, true
		}
		return Token{MINUS, "-", 0, line, col}, true
	case '*':
		return Token{STAR, "*", 0, line, col}, true
	case '/':
		return Token{SLASH, "/", 0, line, col}, true
	case '!':
		if l.peek() == '=' {
			l.advance()
			return Token{NOT_EQ, "!=", 0, line, col}, true
		}
		return Token{NOT, "!", 0, line, col}, true
	case '&':
		if l.peek() == '&' {
			l.advance()
			return Token{AND_LOGICAL, "&&", 0, line, col}, true
		}
		l.rep.Fatal(line, col, "illegal character &")
		return Token{}, false
	case '|':
		if l.peek() == '|' {
			l.advance()
			return Token{OR_LOGICAL, "||", 0, line, col}, true
		}
		l.rep.Fatal(line, col, "illegal character |")
		return Token{}, false
	case '<':
		if l.peek() == '=' {
			l.advance()
			return Token{LESS_EQ, "<=", 0, line, col}, true
		}
		if l.peek() == '<' {
			l.advance()
			return Token{WRITE_OP, "<<", 0, line, col}, true
		}
		return Token{LESS, "<", 0, line, col}, true
	case '>':
		if l.peek() == '=' {
			l.advance()
			return Token{GREATER_EQ, ">=", 0, line, col}, true
		}
		if l.peek() == '>' {
			l.advance()
			return Token{READ_OP, ">>", 0, line, col}, true
		}
		return Token{GREATER, ">", 0, line, col}, true
	case '=':
		if l.peek() == '=' { // lookahead: distinguish = vs ==
			l.advance()
			return Token{EQUALS, "==", 0, line, col}, true
		}
		return Token{ASSIGN, "=", 0, line, col}, true
	default:
		l.rep.Fatal(line, col, fmt.Sprintf("illegal character %q", ch))
		return Token{}, false
	}
}

// Lex tokenises src and returns all tokens including the final EOF token.
// Malformed tokens are reported through rep and dropped from the stream.
func Lex(src string, rep *Reporter) []Token {
	l := newLexer(src, rep)
	var tokens []Token
	for {
		tok, ok := l.nextToken()
		if !ok {
			continue
		}
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens
		}
	}
}
