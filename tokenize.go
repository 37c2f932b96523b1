package main

import (
	"slices"
	"strconv"
	"strings"
	"unicode"
)

var kws = []string{"return", "if", "else", "for", "while"}

// Token
type TokenKind int

const (
	TK_IDENT   TokenKind = iota // Identifiers
	TK_PUNCT                    // Punctuators
	TK_KEYWORD                  // Keywords
	TK_NUM                      // Numeric literals
	TK_EOF                      // End-of-file markers
)

func (k TokenKind) String() string {
	switch k {
	case TK_IDENT:
		return "ident"
	case TK_PUNCT:
		return "punct"
	case TK_KEYWORD:
		return "keyword"
	case TK_NUM:
		return "num"
	case TK_EOF:
		return "eof"
	}
	return "TokenKind(" + strconv.Itoa(int(k)) + ")"
}

// Token type
type Token struct {
	kind   TokenKind // Token kind
	next   *Token    // Next token
	val    int64     // If kind is TK_NUM, its value
	loc    int       // Token location
	len    int       // Token length
	lexeme string    // Token lexeme value in string
}

// Create a new token.
func NewToken(kind TokenKind, pos int, len int, lexeme string) *Token {
	return &Token{
		kind:   kind,
		loc:    pos,
		len:    len,
		lexeme: lexeme,
	}
}

// Reports whether the current token is `op`.
func (tok *Token) equal(op string) bool {
	return tok.kind != TK_EOF && tok.lexeme == op
}

// Ensure that the current token is `op`.
func (tok *Token) skip(ctx *Ctx, op string) *Token {
	if !tok.equal(op) {
		ctx.failTok(ParseError, tok, "expected '%s'", op)
	}
	return tok.next
}

func consume(rest **Token, tok *Token, str string) bool {
	if tok.equal(str) {
		*rest = tok.next
		return true
	}
	*rest = tok
	return false
}

// Returns true if c is valid as the first character of an identifier.
func isIdent1(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || c == '_'
}

// Returns true if c is valid as a non-first character of an identifier.
func isIdent2(c byte) bool {
	return isIdent1(c) || ('0' <= c && c <= '9')
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

// Read a punctuator token from p and returns its length.
func readPunct(input string, p int) int {
	if strings.HasPrefix(input[p:], "==") || strings.HasPrefix(input[p:], "!=") ||
		strings.HasPrefix(input[p:], "<=") || strings.HasPrefix(input[p:], ">=") {
		return 2
	}

	c := input[p]
	if c < 0x80 && (unicode.IsPunct(rune(c)) || unicode.IsSymbol(rune(c))) {
		return 1
	}
	return 0
}

func isKeyword(tok *Token) bool {
	return slices.ContainsFunc(kws, tok.equal)
}

func convertKeywords(tok *Token) {
	for t := tok; t.kind != TK_EOF; t = t.next {
		if t.kind == TK_IDENT && isKeyword(t) {
			t.kind = TK_KEYWORD
		}
	}
}

// Tokenize the source held by ctx and returns new tokens.
func tokenize(ctx *Ctx) *Token {
	input := ctx.source
	head := Token{}
	cur := &head
	p := 0

	for p < len(input) {
		// Skip whitespace characters.
		if input[p] < 0x80 && unicode.IsSpace(rune(input[p])) {
			p++
			continue
		}

		// Numeric literal
		if isDigit(input[p]) {
			n, np := parseNumber(ctx, p)
			cur.next = NewToken(TK_NUM, p, np-p, input[p:np])
			cur = cur.next
			cur.val = n
			p = np
			continue
		}

		// Identifier or keyword
		if isIdent1(input[p]) {
			start := p
			p++
			for p < len(input) && isIdent2(input[p]) {
				p++
			}
			cur.next = NewToken(TK_IDENT, start, p-start, input[start:p])
			cur = cur.next
			continue
		}

		// Punctuator
		if punctLen := readPunct(input, p); punctLen != 0 {
			cur.next = NewToken(TK_PUNCT, p, punctLen, input[p:p+punctLen])
			cur = cur.next
			p += cur.len
			continue
		}

		ctx.failAt(LexError, p, "invalid token")
	}

	cur.next = NewToken(TK_EOF, p, 0, "")
	convertKeywords(head.next)
	return head.next
}

func parseNumber(ctx *Ctx, pos int) (int64, int) {
	s := ctx.source
	start := pos
	for pos < len(s) && isDigit(s[pos]) {
		pos++
	}
	num, err := strconv.ParseInt(s[start:pos], 10, 64)
	if err != nil {
		ctx.failAt(LexError, start, "number out of range")
	}
	return num, pos
}
