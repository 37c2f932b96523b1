package main

import (
	"fmt"
	"io"
)

// Name of the emitted routine.
const entryName = "main"

// Size of one local variable slot.
const slotSize = 8

// RiscV emits RV64 assembly for a Function. a0 is the accumulator and a1
// the scratch register; everything else lives on the operand stack.
type RiscV struct {
	ctx *Ctx
	w   io.Writer
}

func (a *RiscV) println(format string, args ...any) {
	fmt.Fprintf(a.w, format+"\n", args...)
}

// Add imm to src and store the result in dst. Immediates outside the
// 12-bit range of addi go through t0.
func (a *RiscV) addImm(dst, src string, imm int) {
	if -2048 <= imm && imm <= 2047 {
		a.println("  addi %s, %s, %d", dst, src, imm)
		return
	}
	a.println("  li t0, %d", imm)
	a.println("  add %s, %s, t0", dst, src)
}

func (a *RiscV) prologue(fname string, stackSize int) {
	a.println("  .globl %s", fname)
	a.println("  .text")
	a.println("%s:", fname)

	a.println("  addi sp, sp, -16")
	a.println("  sd ra, 8(sp)")
	a.println("  sd fp, 0(sp)")
	a.println("  mv fp, sp")

	if stackSize > 0 {
		a.addImm("sp", "sp", -stackSize)
	}
}

func (a *RiscV) epilogue(fname string) {
	a.println(".L.return.%s:", fname)
	a.println("  mv sp, fp")
	a.println("  ld fp, 0(sp)")
	a.println("  ld ra, 8(sp)")
	a.println("  addi sp, sp, 16")
	a.println("  ret")
}

func (a *RiscV) push() {
	a.println("  addi sp, sp, -8")
	a.println("  sd a0, 0(sp)")
	a.ctx.depth++
}

func (a *RiscV) pop(arg string) {
	a.println("  ld %s, 0(sp)", arg)
	a.println("  addi sp, sp, 8")
	a.ctx.depth--
}

// Load a value from where a0 is pointing to.
func (a *RiscV) load() {
	a.println("  ld a0, 0(a0)")
}

// Store a0 to an address that the stack top is pointing to.
func (a *RiscV) store() {
	a.pop("a1")
	a.println("  sd a0, 0(a1)")
}

// Compute the absolute address of a given node.
// It's an error if a given node does not reside in memory.
func (a *RiscV) genAddr(node *Node) {
	if node.kind == ND_VAR {
		a.addImm("a0", "fp", -node.vara.offset)
		return
	}

	a.ctx.failTok(InternalError, node.tok, "not an lvalue")
}

// Generate code for a given node.
func (a *RiscV) genExpr(node *Node) {
	switch node.kind {
	case ND_NUM:
		a.println("  li a0, %d", node.val)
		return
	case ND_NEG:
		a.genExpr(node.lhs)
		a.println("  neg a0, a0")
		return
	case ND_VAR:
		a.genAddr(node)
		a.load()
		return
	case ND_ASSIGN:
		a.genAddr(node.lhs)
		a.push()
		a.genExpr(node.rhs)
		a.store()
		return
	case ND_ADD, ND_SUB, ND_MUL, ND_DIV, ND_EQ, ND_NE, ND_LT, ND_LE:
	default:
		a.ctx.failTok(InternalError, node.tok, "invalid expression")
	}

	a.genExpr(node.rhs)
	a.push()
	a.genExpr(node.lhs)
	a.pop("a1")

	switch node.kind {
	case ND_ADD:
		a.println("  add a0, a0, a1")
	case ND_SUB:
		a.println("  sub a0, a0, a1")
	case ND_MUL:
		a.println("  mul a0, a0, a1")
	case ND_DIV:
		a.println("  div a0, a0, a1")
	case ND_EQ, ND_NE:
		a.println("  xor a0, a0, a1")

		if node.kind == ND_EQ {
			a.println("  seqz a0, a0")
		} else {
			a.println("  snez a0, a0")
		}
	case ND_LT:
		a.println("  slt a0, a0, a1")
	case ND_LE:
		a.println("  slt a0, a1, a0")
		a.println("  xori a0, a0, 1")
	default:
		unreachable()
	}
}

// The operand stack is empty between statements.
func (a *RiscV) genStmt(node *Node) {
	assert(a.ctx.depth == 0)
	a.genStmt2(node)
	assert(a.ctx.depth == 0)
}

func (a *RiscV) genStmt2(node *Node) {
	switch node.kind {
	case ND_IF:
		c := a.ctx.count()
		a.genExpr(node.cond)
		a.println("  beqz a0, .L.else.%d", c)
		a.genStmt(node.then)
		a.println("  j .L.end.%d", c)
		a.println(".L.else.%d:", c)
		if node.els != nil {
			a.genStmt(node.els)
		}
		a.println(".L.end.%d:", c)
		return
	case ND_FOR:
		c := a.ctx.count()
		if node.init != nil {
			a.genStmt(node.init)
		}
		a.println(".L.begin.%d:", c)
		if node.cond != nil {
			a.genExpr(node.cond)
			a.println("  beqz a0, .L.end.%d", c)
		}
		a.genStmt(node.then)
		if node.inc != nil {
			a.genExpr(node.inc)
		}
		a.println("  j .L.begin.%d", c)
		a.println(".L.end.%d:", c)
		return
	case ND_BLOCK:
		for n := node.body; n != nil; n = n.next {
			a.genStmt(n)
		}
		return
	case ND_RETURN:
		a.genExpr(node.lhs)
		a.println("  j .L.return.%s", entryName)
		return
	case ND_EXPR_STMT:
		a.genExpr(node.lhs)
		return
	}

	a.ctx.failTok(InternalError, node.tok, "invalid statement")
}

func (a *RiscV) emitText(fn *Function) {
	// Prologue
	a.prologue(entryName, fn.stackSize)

	// Emit code
	a.genStmt(fn.body)
	assert(a.ctx.depth == 0)

	// Epilogue
	a.epilogue(entryName)
}

// Traverse the AST of fn to emit assembly to w.
func codegen(ctx *Ctx, w io.Writer, fn *Function) {
	assignLVarOffsets(fn)

	a := &RiscV{ctx: ctx, w: w}
	a.emitText(fn)
}

// Round up `n` to the nearest multiple of `align`. For instance,
// alignTo(5, 8) returns 8 and alignTo(11, 8) returns 16.
func alignTo(n, align int) int {
	return (n + align - 1) / align * align
}

// Assign offsets to local variables.
func assignLVarOffsets(fn *Function) {
	offset := 0
	for vara := fn.locals; vara != nil; vara = vara.next {
		offset += slotSize
		vara.offset = offset
	}
	fn.stackSize = alignTo(offset, 16)
}

// Returns a fresh label suffix.
func (ctx *Ctx) count() int {
	ctx.label++
	return ctx.label
}
