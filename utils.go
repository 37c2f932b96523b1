package main

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

// ErrorKind classifies a compile error.
type ErrorKind int

const (
	LexError      ErrorKind = iota // Unrecognized character
	ParseError                     // Token sequence does not match the grammar
	InternalError                  // AST shape the parser never produces
)

func (k ErrorKind) String() string {
	switch k {
	case LexError:
		return "lex error"
	case ParseError:
		return "parse error"
	case InternalError:
		return "internal error"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is a fatal compile error anchored at a byte offset of the source.
// Loc is -1 when the error has no source position.
type Error struct {
	Kind ErrorKind
	Loc  int
	Msg  string

	source string
}

// An error at end of input is shown after the last line of text rather
// than on the empty line following the trailing newlines.
func (e *Error) anchor() int {
	loc := e.Loc
	if loc == len(e.source) {
		for 0 < loc && e.source[loc-1] == '\n' {
			loc--
		}
	}
	return loc
}

// Line returns the 1-based line number of Loc.
func (e *Error) Line() int {
	loc := e.anchor()
	lineno := 1
	for p := 0; p < loc && p < len(e.source); p++ {
		if e.source[p] == '\n' {
			lineno++
		}
	}
	return lineno
}

// Reports an error message in the following format.
//
//	line 10: x = y + 1;
//	           ^ <error message here>
//
// The "line N: " prefix is only printed for multi-line input.
func (e *Error) Error() string {
	if e.Loc < 0 {
		return e.Msg
	}

	input := e.source
	loc := e.anchor()

	// Find a line containing `loc`.
	line := loc
	for 0 < line && input[line-1] != '\n' {
		line--
	}

	end := loc
	for end < len(input) && input[end] != '\n' {
		end++
	}

	var b strings.Builder
	indent := 0
	if strings.Contains(strings.TrimRight(input, "\n"), "\n") {
		indent, _ = fmt.Fprintf(&b, "line %d: ", e.Line())
	}
	b.WriteString(input[line:end])
	b.WriteByte('\n')

	// Show the error message.
	pos := loc - line + indent
	fmt.Fprintf(&b, "%*s^ %s", pos, "", e.Msg)
	return b.String()
}

// Ctx holds the state of one compilation: the source buffer used to
// render diagnostics, the label counter and the operand stack depth.
type Ctx struct {
	source string
	label  int
	depth  int
}

func newCtx(source string) *Ctx {
	return &Ctx{source: source}
}

// Reports an error location and aborts the compilation.
func (ctx *Ctx) failAt(kind ErrorKind, loc int, format string, args ...any) {
	panic(&Error{
		Kind:   kind,
		Loc:    loc,
		Msg:    fmt.Sprintf(format, args...),
		source: ctx.source,
	})
}

func (ctx *Ctx) failTok(kind ErrorKind, tok *Token, format string, args ...any) {
	ctx.failAt(kind, tok.loc, format, args...)
}

func unreachable() {
	_, file, line, ok := runtime.Caller(1)
	if !ok {
		panic("failed to get caller info")
	}

	panic(&Error{
		Kind: InternalError,
		Loc:  -1,
		Msg:  fmt.Sprintf("internal error at %s:%d", filepath.Base(file), line),
	})
}

func assert(condition bool) {
	if condition {
		return
	}

	pc, file, line, ok := runtime.Caller(1)
	if !ok {
		panic("failed to get caller info")
	}

	frames := runtime.CallersFrames([]uintptr{pc})
	frame, _ := frames.Next()

	panic(&Error{
		Kind: InternalError,
		Loc:  -1,
		Msg:  fmt.Sprintf("%s:%d: %s: Assertion failed", filepath.Base(file), line, frame.Function),
	})
}

// catch turns a compile error raised by failAt, failTok, assert or
// unreachable back into an ordinary error. Other panics are re-raised.
func catch(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if e, ok := r.(*Error); ok {
		*err = e
		return
	}
	panic(r)
}
