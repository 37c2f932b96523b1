package main

// Local variable
type Obj struct {
	next   *Obj
	name   string // Variable name
	offset int    // Distance below the frame pointer
}

// Function
type Function struct {
	body      *Node
	locals    *Obj
	stackSize int
}

// AST node
type NodeKind int

const (
	ND_ADD       NodeKind = iota // +
	ND_SUB                       // -
	ND_MUL                       // *
	ND_DIV                       // /
	ND_NEG                       // unary -
	ND_EQ                        // ==
	ND_NE                        // !=
	ND_LT                        // <
	ND_LE                        // <=
	ND_ASSIGN                    // =
	ND_RETURN                    // "return"
	ND_IF                        // "if"
	ND_FOR                       // "for" or "while"
	ND_BLOCK                     // { ... }
	ND_EXPR_STMT                 // Expression statement
	ND_VAR                       // Variable
	ND_NUM                       // Integer
)

// AST node type
type Node struct {
	kind NodeKind // Node kind
	next *Node    // Next node
	tok  *Token   // Representative token

	lhs *Node // Left-hand side
	rhs *Node // Right-hand side

	// "if" or "for" statement
	cond *Node
	then *Node
	els  *Node
	init *Node
	inc  *Node

	// Block
	body *Node

	// Variable
	vara *Obj

	// Numeric literal
	val int64
}

// Create a new AST node.
func NewNode(kind NodeKind, tok *Token) *Node {
	return &Node{
		kind: kind,
		tok:  tok,
	}
}

func NewBinary(kind NodeKind, lhs, rhs *Node, tok *Token) *Node {
	return &Node{
		kind: kind,
		tok:  tok,
		lhs:  lhs,
		rhs:  rhs,
	}
}

func NewUnary(kind NodeKind, expr *Node, tok *Token) *Node {
	node := NewNode(kind, tok)
	node.lhs = expr
	return node
}

func NewNum(val int64, tok *Token) *Node {
	return &Node{
		kind: ND_NUM,
		tok:  tok,
		val:  val,
	}
}

func NewVarNode(vara *Obj, tok *Token) *Node {
	node := NewNode(ND_VAR, tok)
	node.vara = vara
	return node
}

type parser struct {
	ctx *Ctx

	// All local variable instances created during parsing are
	// accumulated to this list in first-occurrence order.
	locals *Obj
	last   *Obj
}

// Find a local variable by name.
func (p *parser) findVar(tok *Token) *Obj {
	for vara := p.locals; vara != nil; vara = vara.next {
		if tok.equal(vara.name) {
			return vara
		}
	}
	return nil
}

func (p *parser) NewLVar(name string) *Obj {
	vara := &Obj{name: name}
	if p.last == nil {
		p.locals = vara
	} else {
		p.last.next = vara
	}
	p.last = vara
	return vara
}

// stmt = "return" expr ";"
// | "if" "(" expr ")" stmt ("else" stmt)?
// | "for" "(" expr-stmt expr? ";" expr? ")" stmt
// | "while" "(" expr ")" stmt
// | "{" compound-stmt
// | expr-stmt
func (p *parser) stmt(rest **Token, tok *Token) *Node {
	if tok.equal("return") {
		node := NewNode(ND_RETURN, tok)
		node.lhs = p.expr(&tok, tok.next)
		*rest = tok.skip(p.ctx, ";")
		return node
	}

	if tok.equal("if") {
		node := NewNode(ND_IF, tok)
		tok = tok.next.skip(p.ctx, "(")
		node.cond = p.expr(&tok, tok)
		tok = tok.skip(p.ctx, ")")
		node.then = p.stmt(&tok, tok)
		if consume(&tok, tok, "else") {
			node.els = p.stmt(&tok, tok)
		}
		*rest = tok
		return node
	}

	if tok.equal("for") {
		node := NewNode(ND_FOR, tok)
		tok = tok.next.skip(p.ctx, "(")

		node.init = p.exprStmt(&tok, tok)

		if !tok.equal(";") {
			node.cond = p.expr(&tok, tok)
		}
		tok = tok.skip(p.ctx, ";")

		if !tok.equal(")") {
			node.inc = p.expr(&tok, tok)
		}
		tok = tok.skip(p.ctx, ")")

		node.then = p.stmt(rest, tok)
		return node
	}

	if tok.equal("while") {
		node := NewNode(ND_FOR, tok)
		tok = tok.next.skip(p.ctx, "(")
		node.cond = p.expr(&tok, tok)
		tok = tok.skip(p.ctx, ")")
		node.then = p.stmt(rest, tok)
		return node
	}

	if tok.equal("{") {
		return p.compoundStmt(rest, tok.next)
	}

	return p.exprStmt(rest, tok)
}

// compound-stmt = stmt* "}"
func (p *parser) compoundStmt(rest **Token, tok *Token) *Node {
	node := NewNode(ND_BLOCK, tok)

	head := Node{}
	cur := &head

	for !tok.equal("}") {
		if tok.kind == TK_EOF {
			p.ctx.failTok(ParseError, tok, "expected '}'")
		}
		cur.next = p.stmt(&tok, tok)
		cur = cur.next
	}

	node.body = head.next
	*rest = tok.next
	return node
}

// expr-stmt = expr? ";"
func (p *parser) exprStmt(rest **Token, tok *Token) *Node {
	if tok.equal(";") {
		*rest = tok.next
		return NewNode(ND_BLOCK, tok)
	}

	node := NewNode(ND_EXPR_STMT, tok)
	node.lhs = p.expr(&tok, tok)
	*rest = tok.skip(p.ctx, ";")
	return node
}

// expr = assign
func (p *parser) expr(rest **Token, tok *Token) *Node {
	return p.assign(rest, tok)
}

// assign = equality ("=" assign)?
func (p *parser) assign(rest **Token, tok *Token) *Node {
	node := p.equality(&tok, tok)

	if tok.equal("=") {
		if node.kind != ND_VAR {
			p.ctx.failTok(ParseError, tok, "not an lvalue")
		}
		return NewBinary(ND_ASSIGN, node, p.assign(rest, tok.next), tok)
	}

	*rest = tok
	return node
}

// equality = relational ("==" relational | "!=" relational)*
func (p *parser) equality(rest **Token, tok *Token) *Node {
	node := p.relational(&tok, tok)

	for {
		start := tok

		if tok.equal("==") {
			node = NewBinary(ND_EQ, node, p.relational(&tok, tok.next), start)
			continue
		}

		if tok.equal("!=") {
			node = NewBinary(ND_NE, node, p.relational(&tok, tok.next), start)
			continue
		}

		*rest = tok
		return node
	}
}

// relational = add ("<" add | "<=" add | ">" add | ">=" add)*
func (p *parser) relational(rest **Token, tok *Token) *Node {
	node := p.add(&tok, tok)

	for {
		start := tok

		if tok.equal("<") {
			node = NewBinary(ND_LT, node, p.add(&tok, tok.next), start)
			continue
		}

		if tok.equal("<=") {
			node = NewBinary(ND_LE, node, p.add(&tok, tok.next), start)
			continue
		}

		if tok.equal(">") {
			node = NewBinary(ND_LT, p.add(&tok, tok.next), node, start)
			continue
		}

		if tok.equal(">=") {
			node = NewBinary(ND_LE, p.add(&tok, tok.next), node, start)
			continue
		}

		*rest = tok
		return node
	}
}

// add = mul ("+" mul | "-" mul)*
func (p *parser) add(rest **Token, tok *Token) *Node {
	node := p.mul(&tok, tok)

	for {
		start := tok

		if tok.equal("+") {
			node = NewBinary(ND_ADD, node, p.mul(&tok, tok.next), start)
			continue
		}

		if tok.equal("-") {
			node = NewBinary(ND_SUB, node, p.mul(&tok, tok.next), start)
			continue
		}

		*rest = tok
		return node
	}
}

// mul = unary ("*" unary | "/" unary)*
func (p *parser) mul(rest **Token, tok *Token) *Node {
	node := p.unary(&tok, tok)

	for {
		start := tok

		if tok.equal("*") {
			node = NewBinary(ND_MUL, node, p.unary(&tok, tok.next), start)
			continue
		}

		if tok.equal("/") {
			node = NewBinary(ND_DIV, node, p.unary(&tok, tok.next), start)
			continue
		}

		*rest = tok
		return node
	}
}

// unary = ("+" | "-") unary
// | primary
func (p *parser) unary(rest **Token, tok *Token) *Node {
	if tok.equal("+") {
		return p.unary(rest, tok.next)
	}

	if tok.equal("-") {
		return NewUnary(ND_NEG, p.unary(rest, tok.next), tok)
	}

	return p.primary(rest, tok)
}

// primary = "(" expr ")" | ident | num
func (p *parser) primary(rest **Token, tok *Token) *Node {
	if tok.equal("(") {
		node := p.expr(&tok, tok.next)
		*rest = tok.skip(p.ctx, ")")
		return node
	}

	if tok.kind == TK_IDENT {
		vara := p.findVar(tok)
		if vara == nil {
			vara = p.NewLVar(tok.lexeme)
		}
		*rest = tok.next
		return NewVarNode(vara, tok)
	}

	if tok.kind == TK_NUM {
		node := NewNum(tok.val, tok)
		*rest = tok.next
		return node
	}

	p.ctx.failTok(ParseError, tok, "expected an expression")
	return nil
}

// program = "{" compound-stmt
func parse(ctx *Ctx, tok *Token) *Function {
	p := &parser{ctx: ctx}

	tok = tok.skip(ctx, "{")
	body := p.compoundStmt(&tok, tok)

	if tok.kind != TK_EOF {
		ctx.failTok(ParseError, tok, "extra token")
	}

	return &Function{
		body:   body,
		locals: p.locals,
	}
}
