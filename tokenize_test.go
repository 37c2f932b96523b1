package main

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type tokenView struct {
	Kind   TokenKind
	Lexeme string
	Loc    int
	Val    int64
}

func lex(t *testing.T, src string) (toks []tokenView, err error) {
	t.Helper()
	defer catch(&err)

	for tok := tokenize(newCtx(src)); tok != nil; tok = tok.next {
		toks = append(toks, tokenView{Kind: tok.kind, Lexeme: tok.lexeme, Loc: tok.loc, Val: tok.val})
	}
	return toks, nil
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []tokenView
	}{
		{
			name:  "Empty",
			input: "",
			want:  []tokenView{{Kind: TK_EOF, Loc: 0}},
		},
		{
			name:  "Whitespace only",
			input: "\t\n 7\n",
			want: []tokenView{
				{Kind: TK_NUM, Lexeme: "7", Loc: 3, Val: 7},
				{Kind: TK_EOF, Loc: 5},
			},
		},
		{
			name:  "Numbers",
			input: "12 345",
			want: []tokenView{
				{Kind: TK_NUM, Lexeme: "12", Loc: 0, Val: 12},
				{Kind: TK_NUM, Lexeme: "345", Loc: 3, Val: 345},
				{Kind: TK_EOF, Loc: 6},
			},
		},
		{
			name:  "Two-character operators win",
			input: "a==b!=c<=d>=e<f>g",
			want: []tokenView{
				{Kind: TK_IDENT, Lexeme: "a", Loc: 0},
				{Kind: TK_PUNCT, Lexeme: "==", Loc: 1},
				{Kind: TK_IDENT, Lexeme: "b", Loc: 3},
				{Kind: TK_PUNCT, Lexeme: "!=", Loc: 4},
				{Kind: TK_IDENT, Lexeme: "c", Loc: 6},
				{Kind: TK_PUNCT, Lexeme: "<=", Loc: 7},
				{Kind: TK_IDENT, Lexeme: "d", Loc: 9},
				{Kind: TK_PUNCT, Lexeme: ">=", Loc: 10},
				{Kind: TK_IDENT, Lexeme: "e", Loc: 12},
				{Kind: TK_PUNCT, Lexeme: "<", Loc: 13},
				{Kind: TK_IDENT, Lexeme: "f", Loc: 14},
				{Kind: TK_PUNCT, Lexeme: ">", Loc: 15},
				{Kind: TK_IDENT, Lexeme: "g", Loc: 16},
				{Kind: TK_EOF, Loc: 17},
			},
		},
		{
			name:  "Keywords and identifiers",
			input: "return if else for while returnx _if",
			want: []tokenView{
				{Kind: TK_KEYWORD, Lexeme: "return", Loc: 0},
				{Kind: TK_KEYWORD, Lexeme: "if", Loc: 7},
				{Kind: TK_KEYWORD, Lexeme: "else", Loc: 10},
				{Kind: TK_KEYWORD, Lexeme: "for", Loc: 15},
				{Kind: TK_KEYWORD, Lexeme: "while", Loc: 19},
				{Kind: TK_IDENT, Lexeme: "returnx", Loc: 25},
				{Kind: TK_IDENT, Lexeme: "_if", Loc: 33},
				{Kind: TK_EOF, Loc: 36},
			},
		},
		{
			name:  "Statement",
			input: "{ foo1=10; }",
			want: []tokenView{
				{Kind: TK_PUNCT, Lexeme: "{", Loc: 0},
				{Kind: TK_IDENT, Lexeme: "foo1", Loc: 2},
				{Kind: TK_PUNCT, Lexeme: "=", Loc: 6},
				{Kind: TK_NUM, Lexeme: "10", Loc: 7, Val: 10},
				{Kind: TK_PUNCT, Lexeme: ";", Loc: 9},
				{Kind: TK_PUNCT, Lexeme: "}", Loc: 11},
				{Kind: TK_EOF, Loc: 12},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := lex(t, tt.input)
			if err != nil {
				t.Fatalf("tokenize(%q) failed: %v", tt.input, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("tokenize(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestTokenizeErrors(t *testing.T) {
	tests := []struct {
		input string
		loc   int
		msg   string
	}{
		{"{ return 1 é; }", 11, "invalid token"},
		{"1 \x01", 2, "invalid token"},
		{"{ return 99999999999999999999; }", 9, "number out of range"},
	}

	for _, tt := range tests {
		_, err := lex(t, tt.input)

		var e *Error
		if !errors.As(err, &e) {
			t.Fatalf("tokenize(%q): expected *Error, got %v", tt.input, err)
		}
		if e.Kind != LexError || e.Loc != tt.loc || e.Msg != tt.msg {
			t.Errorf("tokenize(%q) = {%v %d %q}, want {%v %d %q}",
				tt.input, e.Kind, e.Loc, e.Msg, LexError, tt.loc, tt.msg)
		}
	}
}

func TestEOFNeverMatches(t *testing.T) {
	ctx := newCtx("{ 1")
	eof := tokenize(ctx).next.next
	if eof.kind != TK_EOF {
		t.Fatalf("expected EOF, got %v", eof.kind)
	}

	for _, op := range []string{"", ";", "}"} {
		if eof.equal(op) {
			t.Errorf("EOF equals %q", op)
		}

		var rest *Token
		if consume(&rest, eof, op) || rest != eof {
			t.Errorf("consume(EOF, %q) advanced past the end", op)
		}

		err := func() (err error) {
			defer catch(&err)
			eof.skip(ctx, op)
			return nil
		}()
		var e *Error
		if !errors.As(err, &e) || e.Kind != ParseError || e.Loc != 3 {
			t.Errorf("skip(EOF, %q) = %v, want a parse error at 3", op, err)
		}
	}

	// Only the kind decides; a stray lexeme on EOF does not match.
	if tok := NewToken(TK_EOF, 0, 1, "}"); tok.equal("}") {
		t.Error("EOF token with lexeme \"}\" equals \"}\"")
	}
}
