// Package rvsim interprets the subset of RV64 assembly emitted by the
// compiler, so generated code can be executed without a cross toolchain.
package rvsim

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

const (
	DefaultMemorySize = 1 << 20
	DefaultStepLimit  = 10_000_000
)

// ErrStepLimit is returned when a program runs longer than the step limit.
var ErrStepLimit = errors.New("step limit exceeded")

// haltPC is the return address main is entered with; returning to it
// stops the machine.
const haltPC = -1

// Machine is an RV64 hart with a flat little-endian memory. The stack
// starts at the top of memory and grows down.
type Machine struct {
	Regs [32]int64
	Mem  []byte

	prog      *Program
	pc        int
	steps     int
	stepLimit int
}

type Option func(*Machine)

// WithStepLimit bounds the number of executed instructions.
func WithStepLimit(n int) Option {
	return func(m *Machine) { m.stepLimit = n }
}

// WithMemorySize sets the size of memory in bytes.
func WithMemorySize(n int) Option {
	return func(m *Machine) { m.Mem = make([]byte, n) }
}

// NewMachine returns a machine ready to run prog from entry.
func NewMachine(prog *Program, entry string, opts ...Option) (*Machine, error) {
	m := &Machine{prog: prog, stepLimit: DefaultStepLimit}
	for _, opt := range opts {
		opt(m)
	}
	if m.Mem == nil {
		m.Mem = make([]byte, DefaultMemorySize)
	}

	pc, ok := prog.labels[entry]
	if !ok {
		return nil, fmt.Errorf("entry point %q not found", entry)
	}
	m.pc = pc
	m.Regs[1] = haltPC
	m.Regs[2] = int64(len(m.Mem))
	return m, nil
}

// Run assembles src and executes it from main. It returns the value left
// in a0 when main returns.
func Run(src string, opts ...Option) (int64, error) {
	prog, err := Assemble(src)
	if err != nil {
		return 0, err
	}
	m, err := NewMachine(prog, "main", opts...)
	if err != nil {
		return 0, err
	}
	if err := m.Run(); err != nil {
		return 0, err
	}
	return m.Regs[10], nil
}

// Steps returns the number of instructions executed so far.
func (m *Machine) Steps() int {
	return m.steps
}

// Run executes until main returns.
func (m *Machine) Run() error {
	for m.pc != haltPC {
		if m.steps >= m.stepLimit {
			return ErrStepLimit
		}
		if err := m.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Step executes a single instruction.
func (m *Machine) Step() error {
	if m.pc < 0 || m.pc >= len(m.prog.insts) {
		return fmt.Errorf("pc out of program: %d", m.pc)
	}
	in := m.prog.insts[m.pc]
	m.steps++
	next := m.pc + 1
	r := &m.Regs

	switch in.op {
	case "li":
		m.set(in.rd, in.imm)
	case "mv":
		m.set(in.rd, r[in.rs1])
	case "neg":
		m.set(in.rd, -r[in.rs1])
	case "seqz":
		m.set(in.rd, b2i(r[in.rs1] == 0))
	case "snez":
		m.set(in.rd, b2i(r[in.rs1] != 0))
	case "addi":
		m.set(in.rd, r[in.rs1]+in.imm)
	case "xori":
		m.set(in.rd, r[in.rs1]^in.imm)
	case "add":
		m.set(in.rd, r[in.rs1]+r[in.rs2])
	case "sub":
		m.set(in.rd, r[in.rs1]-r[in.rs2])
	case "mul":
		m.set(in.rd, r[in.rs1]*r[in.rs2])
	case "div":
		m.set(in.rd, div(r[in.rs1], r[in.rs2]))
	case "xor":
		m.set(in.rd, r[in.rs1]^r[in.rs2])
	case "slt":
		m.set(in.rd, b2i(r[in.rs1] < r[in.rs2]))
	case "ld":
		addr, err := m.addr(in)
		if err != nil {
			return err
		}
		m.set(in.rd, int64(binary.LittleEndian.Uint64(m.Mem[addr:])))
	case "sd":
		addr, err := m.addr(in)
		if err != nil {
			return err
		}
		binary.LittleEndian.PutUint64(m.Mem[addr:], uint64(r[in.rs2]))
	case "beqz":
		if r[in.rs1] == 0 {
			next = in.target
		}
	case "j":
		next = in.target
	case "ret":
		next = int(r[1])
	default:
		return fmt.Errorf("unknown instruction on line %d: %s", in.lineNo, in.op)
	}

	m.pc = next
	return nil
}

// Writes to x0 are discarded.
func (m *Machine) set(rd int, v int64) {
	if rd != 0 {
		m.Regs[rd] = v
	}
}

func (m *Machine) addr(in inst) (int, error) {
	a := m.Regs[in.rs1] + in.imm
	if a < 0 || a > int64(len(m.Mem)-8) {
		return 0, fmt.Errorf("memory access out of bounds on line %d: %#x", in.lineNo, a)
	}
	return int(a), nil
}

// RISC-V division never traps.
func div(a, b int64) int64 {
	switch {
	case b == 0:
		return -1
	case a == math.MinInt64 && b == -1:
		return a
	}
	return a / b
}

func b2i(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
