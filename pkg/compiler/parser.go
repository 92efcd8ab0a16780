package compiler

import "fmt"

// Parser is a recursive-descent parser over the token stream. Syntax
// errors are reported through the Reporter and the parser resynchronises
// at the next statement boundary, so one bad line does not hide the rest
// of the file's diagnostics.
type Parser struct {
	toks []Token
	pos  int
	rep  *Reporter
}

// Parse builds the AST for a whole translation unit. The returned Program
// may be partial when syntax errors were reported.
func Parse(tokens []Token, rep *Reporter) *Program {
	p := &Parser{toks: tokens, rep: rep}
	prog := &Program{}
	for p.cur().Type != EOF {
		d := p.parseDecl()
		if d == nil {
			p.sync()
			continue
		}
		prog.Decls = append(prog.Decls, d)
	}
	return prog
}

func (p *Parser) cur() Token {
	if p.pos >= len(p.toks) {
		return Token{Type: EOF}
	}
	return p.toks[p.pos]
}

func (p *Parser) peek(n int) Token {
	if p.pos+n >= len(p.toks) {
		return Token{Type: EOF}
	}
	return p.toks[p.pos+n]
}

func (p *Parser) next() Token {
	t := p.cur()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

// expect consumes a token of type tt or reports a syntax error.
func (p *Parser) expect(tt TokenType) (Token, bool) {
	t := p.cur()
	if t.Type != tt {
		p.rep.Fatal(t.Line, t.Col, fmt.Sprintf("syntax error: expected %s, found %s", tt, t))
		return t, false
	}
	return p.next(), true
}

// sync skips ahead to the next plausible declaration or statement start.
func (p *Parser) sync() {
	for {
		switch p.cur().Type {
		case EOF, RBRACE:
			return
		case SEMICOLON:
			p.next()
			return
		}
		p.next()
	}
}

func (p *Parser) parseIdent() (*Ident, bool) {
	t, ok := p.expect(IDENTIFIER)
	if !ok {
		return nil, false
	}
	return &Ident{P: Pos{t.Line, t.Col}, Name: t.Lexeme}, true
}

// parseTypeSpec parses "int", "bool", "void" or "struct name".
func (p *Parser) parseTypeSpec() (TypeSpec, bool) {
	switch p.cur().Type {
	case INT:
		p.next()
		return TypeSpec{Kind: SpecInt}, true
	case BOOL:
		p.next()
		return TypeSpec{Kind: SpecBool}, true
	case VOID:
		p.next()
		return TypeSpec{Kind: SpecVoid}, true
	case STRUCT:
		p.next()
		id, ok := p.parseIdent()
		if !ok {
			return TypeSpec{}, false
		}
		return TypeSpec{Kind: SpecStruct, StructID: id}, true
	}
	t := p.cur()
	p.rep.Fatal(t.Line, t.Col, fmt.Sprintf("syntax error: expected a type, found %s", t))
	return TypeSpec{}, false
}

func isTypeStart(tt TokenType) bool {
	return tt == INT || tt == BOOL || tt == VOID || tt == STRUCT
}

func (p *Parser) parseDecl() Decl {
	// "struct id {" opens a struct definition; "struct id id" is a
	// variable of struct type.
	if p.cur().Type == STRUCT && p.peek(2).Type == LBRACE {
		return p.parseStructDecl()
	}

	spec, ok := p.parseTypeSpec()
	if !ok {
		return nil
	}
	id, ok := p.parseIdent()
	if !ok {
		return nil
	}
	if p.cur().Type == LPAREN {
		return p.parseFnRest(spec, id)
	}
	if _, ok := p.expect(SEMICOLON); !ok {
		return nil
	}
	return &VarDecl{Spec: spec, ID: id}
}

func (p *Parser) parseStructDecl() Decl {
	p.next() // struct
	id, ok := p.parseIdent()
	if !ok {
		return nil
	}
	if _, ok := p.expect(LBRACE); !ok {
		return nil
	}
	var fields []*VarDecl
	for p.cur().Type != RBRACE && p.cur().Type != EOF {
		spec, ok := p.parseTypeSpec()
		if !ok {
			p.sync()
			continue
		}
		fid, ok := p.parseIdent()
		if !ok {
			p.sync()
			continue
		}
		if _, ok := p.expect(SEMICOLON); !ok {
			p.sync()
			continue
		}
		fields = append(fields, &VarDecl{Spec: spec, ID: fid})
	}
	if _, ok := p.expect(RBRACE); !ok {
		return nil
	}
	if _, ok := p.expect(SEMICOLON); !ok {
		return nil
	}
	return &StructDecl{ID: id, Fields: fields}
}

func (p *Parser) parseFnRest(ret TypeSpec, id *Ident) Decl {
	p.next() // (
	var formals []*FormalDecl
	if p.cur().Type != RPAREN {
		for {
			spec, ok := p.parseTypeSpec()
			if !ok {
				return nil
			}
			fid, ok := p.parseIdent()
			if !ok {
				return nil
			}
			formals = append(formals, &FormalDecl{Spec: spec, ID: fid})
			if p.cur().Type != COMMA {
				break
			}
			p.next()
		}
	}
	if _, ok := p.expect(RPAREN); !ok {
		return nil
	}
	if _, ok := p.expect(LBRACE); !ok {
		return nil
	}
	decls, stmts := p.parseBody()
	if _, ok := p.expect(RBRACE); !ok {
		return nil
	}
	return &FnDecl{Ret: ret, ID: id, Formals: formals, Decls: decls, Stmts: stmts}
}

// parseBody parses the contents of a braced block: local declarations
// first, then statements, per the grammar.
func (p *Parser) parseBody() ([]Decl, []Stmt) {
	var decls []Decl
	for isTypeStart(p.cur().Type) {
		spec, ok := p.parseTypeSpec()
		if !ok {
			p.sync()
			continue
		}
		id, ok := p.parseIdent()
		if !ok {
			p.sync()
			continue
		}
		if _, ok := p.expect(SEMICOLON); !ok {
			p.sync()
			continue
		}
		decls = append(decls, &VarDecl{Spec: spec, ID: id})
	}

	var stmts []Stmt
	for p.cur().Type != RBRACE && p.cur().Type != EOF {
		s := p.parseStmt()
		if s == nil {
			p.sync()
			continue
		}
		stmts = append(stmts, s)
	}
	return decls, stmts
}

func (p *Parser) parseStmt() Stmt {
	switch p.cur().Type {
	case CIN:
		p.next()
		if _, ok := p.expect(READ_OP); !ok {
			return nil
		}
		loc := p.parseLoc()
		if loc == nil {
			return nil
		}
		if _, ok := p.expect(SEMICOLON); !ok {
			return nil
		}
		return &ReadStmt{Target: loc}

	case COUT:
		p.next()
		if _, ok := p.expect(WRITE_OP); !ok {
			return nil
		}
		e := p.parseExpr()
		if e == nil {
			return nil
		}
		if _, ok := p.expect(SEMICOLON); !ok {
			return nil
		}
		return &WriteStmt{Value: e}

	case IF:
		p.next()
		cond, ok := p.parseParenExpr()
		if !ok {
			return nil
		}
		if _, ok := p.expect(LBRACE); !ok {
			return nil
		}
		thenDecls, thenStmts := p.parseBody()
		if _, ok := p.expect(RBRACE); !ok {
			return nil
		}
		if p.cur().Type != ELSE {
			return &IfStmt{Cond: cond, Decls: thenDecls, Stmts: thenStmts}
		}
		p.next()
		if _, ok := p.expect(LBRACE); !ok {
			return nil
		}
		elseDecls, elseStmts := p.parseBody()
		if _, ok := p.expect(RBRACE); !ok {
			return nil
		}
		return &IfElseStmt{
			Cond:      cond,
			ThenDecls: thenDecls, ThenStmts: thenStmts,
			ElseDecls: elseDecls, ElseStmts: elseStmts,
		}

	case WHILE:
		p.next()
		cond, ok := p.parseParenExpr()
		if !ok {
			return nil
		}
		if _, ok := p.expect(LBRACE); !ok {
			return nil
		}
		decls, stmts := p.parseBody()
		if _, ok := p.expect(RBRACE); !ok {
			return nil
		}
		return &WhileStmt{Cond: cond, Decls: decls, Stmts: stmts}

	case REPEAT:
		p.next()
		count, ok := p.parseParenExpr()
		if !ok {
			return nil
		}
		if _, ok := p.expect(LBRACE); !ok {
			return nil
		}
		decls, stmts := p.parseBody()
		if _, ok := p.expect(RBRACE); !ok {
			return nil
		}
		return &RepeatStmt{Count: count, Decls: decls, Stmts: stmts}

	case RETURN:
		p.next()
		if p.cur().Type == SEMICOLON {
			p.next()
			return &ReturnStmt{}
		}
		e := p.parseExpr()
		if e == nil {
			return nil
		}
		if _, ok := p.expect(SEMICOLON); !ok {
			return nil
		}
		return &ReturnStmt{Value: e}

	case IDENTIFIER:
		// Call, assignment, increment or decrement.
		if p.peek(1).Type == LPAREN {
			call := p.parseCall()
			if call == nil {
				return nil
			}
			if _, ok := p.expect(SEMICOLON); !ok {
				return nil
			}
			return &CallStmt{Call: call}
		}
		loc := p.parseLoc()
		if loc == nil {
			return nil
		}
		switch p.cur().Type {
		case ASSIGN:
			p.next()
			rhs := p.parseAssignExpr()
			if rhs == nil {
				return nil
			}
			if _, ok := p.expect(SEMICOLON); !ok {
				return nil
			}
			return &AssignStmt{Assign: &AssignExpr{Lhs: loc, Rhs: rhs}}
		case PLUS_PLUS:
			p.next()
			if _, ok := p.expect(SEMICOLON); !ok {
				return nil
			}
			return &PostIncStmt{Target: loc}
		case MINUS_MINUS:
			p.next()
			if _, ok := p.expect(SEMICOLON); !ok {
				return nil
			}
			return &PostDecStmt{Target: loc}
		}
		t := p.cur()
		p.rep.Fatal(t.Line, t.Col, fmt.Sprintf("syntax error: expected =, ++ or --, found %s", t))
		return nil
	}

	t := p.cur()
	p.rep.Fatal(t.Line, t.Col, fmt.Sprintf("syntax error: expected a statement, found %s", t))
	return nil
}

func (p *Parser) parseParenExpr() (Expr, bool) {
	if _, ok := p.expect(LPAREN); !ok {
		return nil, false
	}
	e := p.parseExpr()
	if e == nil {
		return nil, false
	}
	if _, ok := p.expect(RPAREN); !ok {
		return nil, false
	}
	return e, true
}

// parseLoc parses an lvalue: an identifier followed by any number of
// ".field" accesses.
func (p *Parser) parseLoc() Expr {
	id, ok := p.parseIdent()
	if !ok {
		return nil
	}
	var loc Expr = id
	for p.cur().Type == DOT {
		p.next()
		field, ok := p.parseIdent()
		if !ok {
			return nil
		}
		loc = &DotAccess{Loc: loc, ID: field}
	}
	return loc
}

func (p *Parser) parseCall() *CallExpr {
	id, ok := p.parseIdent()
	if !ok {
		return nil
	}
	p.next() // (
	var args []Expr
	if p.cur().Type != RPAREN {
		for {
			a := p.parseExpr()
			if a == nil {
				return nil
			}
			args = append(args, a)
			if p.cur().Type != COMMA {
				break
			}
			p.next()
		}
	}
	if _, ok := p.expect(RPAREN); !ok {
		return nil
	}
	return &CallExpr{ID: id, Args: args}
}

// Expression grammar, loosest binding first:
//
//	assign  :=  loc = assign | or
//	or      :=  and ( || and )*
//	and     :=  eq ( && eq )*
//	eq      :=  rel ( ==|!= rel )*
//	rel     :=  add ( <|>|<=|>= add )*
//	add     :=  mul ( +|- mul )*
//	mul     :=  unary ( *|/ unary )*
//	unary   :=  -unary | !unary | primary

func (p *Parser) parseExpr() Expr {
	return p.parseAssignExpr()
}

func (p *Parser) parseAssignExpr() Expr {
	left := p.parseOr()
	if left == nil {
		return nil
	}
	if p.cur().Type != ASSIGN {
		return left
	}
	t := p.next()
	switch left.(type) {
	case *Ident, *DotAccess:
	default:
		p.rep.Fatal(t.Line, t.Col, "syntax error: assignment target is not a variable")
		return nil
	}
	rhs := p.parseAssignExpr()
	if rhs == nil {
		return nil
	}
	return &AssignExpr{Lhs: left, Rhs: rhs}
}

func (p *Parser) parseBinary(sub func() Expr, ops ...TokenType) Expr {
	left := sub()
	if left == nil {
		return nil
	}
	for {
		matched := false
		for _, op := range ops {
			if p.cur().Type == op {
				p.next()
				right := sub()
				if right == nil {
					return nil
				}
				left = &BinaryExpr{Op: op, Left: left, Right: right}
				matched = true
				break
			}
		}
		if !matched {
			return left
		}
	}
}

func (p *Parser) parseOr() Expr {
	return p.parseBinary(p.parseAnd, OR_LOGICAL)
}

func (p *Parser) parseAnd() Expr {
	return p.parseBinary(p.parseEquality, AND_LOGICAL)
}

func (p *Parser) parseEquality() Expr {
	return p.parseBinary(p.parseRelational, EQUALS, NOT_EQ)
}

func (p *Parser) parseRelational() Expr {
	return p.parseBinary(p.parseAdditive, LESS, GREATER, LESS_EQ, GREATER_EQ)
}

func (p *Parser) parseAdditive() Expr {
	return p.parseBinary(p.parseTerm, PLUS, MINUS)
}

func (p *Parser) parseTerm() Expr {
	return p.parseBinary(p.parseUnary, STAR, SLASH)
}

func (p *Parser) parseUnary() Expr {
	t := p.cur()
	switch t.Type {
	case MINUS, NOT:
		p.next()
		operand := p.parseUnary()
		if operand == nil {
			return nil
		}
		return &UnaryExpr{P: Pos{t.Line, t.Col}, Op: t.Type, Operand: operand}
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() Expr {
	t := p.cur()
	switch t.Type {
	case INTLIT:
		p.next()
		return &IntLit{P: Pos{t.Line, t.Col}, Value: t.IntVal}
	case STRINGLIT:
		p.next()
		return &StrLit{P: Pos{t.Line, t.Col}, Raw: t.Lexeme}
	case TRUE:
		p.next()
		return &BoolLit{P: Pos{t.Line, t.Col}, Value: true}
	case FALSE:
		p.next()
		return &BoolLit{P: Pos{t.Line, t.Col}, Value: false}
	case LPAREN:
		p.next()
		e := p.parseExpr()
		if e == nil {
			return nil
		}
		if _, ok := p.expect(RPAREN); !ok {
			return nil
		}
		return e
	case IDENTIFIER:
		if p.peek(1).Type == LPAREN {
			call := p.parseCall()
			if call == nil {
				return nil
			}
			return call
		}
		return p.parseLoc()
	}
	p.rep.Fatal(t.Line, t.Col, fmt.Sprintf("syntax error: expected an expression, found %s", t))
	return nil
}
