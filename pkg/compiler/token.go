package compiler

import "fmt"

// TokenType identifies the lexical class of a Token.
type TokenType int

const (
	EOF TokenType = iota
	IDENTIFIER
	INTLIT
	STRINGLIT

	// Keywords
	INT
	BOOL
	VOID
	STRUCT
	CIN
	COUT
	IF
	ELSE
	WHILE
	REPEAT
	RETURN
	TRUE
	FALSE

	// Delimiters
	LBRACE
	RBRACE
	LPAREN
	RPAREN
	SEMICOLON
	COMMA
	DOT

	// Operators
	READ_OP  // >>
	WRITE_OP // <<
	PLUS_PLUS
	MINUS_MINUS
	PLUS
	MINUS
	STAR
	SLASH
	NOT
	AND_LOGICAL
	OR_LOGICAL
	EQUALS
	NOT_EQ
	LESS
	GREATER
	LESS_EQ
	GREATER_EQ
	ASSIGN
)

var tokenNames = map[TokenType]string{
	EOF:         "EOF",
	IDENTIFIER:  "IDENTIFIER",
	INTLIT:      "INTLIT",
	STRINGLIT:   "STRINGLIT",
	INT:         "int",
	BOOL:        "bool",
	VOID:        "void",
	STRUCT:      "struct",
	CIN:         "cin",
	COUT:        "cout",
	IF:          "if",
	ELSE:        "else",
	WHILE:       "while",
	REPEAT:      "repeat",
	RETURN:      "return",
	TRUE:        "true",
	FALSE:       "false",
	LBRACE:      "{",
	RBRACE:      "}",
	LPAREN:      "(",
	RPAREN:      ")",
	SEMICOLON:   ";",
	COMMA:       ",",
	DOT:         ".",
	READ_OP:     ">>",
	WRITE_OP:    "<<",
	PLUS_PLUS:   "++",
	MINUS_MINUS: "--",
	PLUS:        "+",
	MINUS:       "-",
	STAR:        "*",
	SLASH:       "/",
	NOT:         "!",
	AND_LOGICAL: "&&",
	OR_LOGICAL:  "||",
	EQUALS:      "==",
	NOT_EQ:      "!=",
	LESS:        "<",
	GREATER:     ">",
	LESS_EQ:     "<=",
	GREATER_EQ:  ">=",
	ASSIGN:      "=",
}

func (t TokenType) String() string {
	if s, ok := tokenNames[t]; ok {
		return s
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Token is a single lexeme with its 1-based source position.
type Token struct {
	Type   TokenType
	Lexeme string
	IntVal int // value of an INTLIT
	Line   int
	Col    int
}

func (t Token) String() string {
	switch t.Type {
	case IDENTIFIER, INTLIT, STRINGLIT:
		return fmt.Sprintf("%s(%s)", t.Type, t.Lexeme)
	default:
		return t.Type.String()
	}
}
