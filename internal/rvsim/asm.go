package rvsim

import (
	"fmt"
	"strconv"
	"strings"
)

// Register numbers by ABI name.
var regNames = map[string]int{
	"zero": 0, "ra": 1, "sp": 2, "gp": 3, "tp": 4,
	"t0": 5, "t1": 6, "t2": 7,
	"s0": 8, "fp": 8, "s1": 9,
	"a0": 10, "a1": 11, "a2": 12, "a3": 13, "a4": 14, "a5": 15, "a6": 16, "a7": 17,
	"s2": 18, "s3": 19, "s4": 20, "s5": 21, "s6": 22, "s7": 23, "s8": 24, "s9": 25,
	"s10": 26, "s11": 27,
	"t3": 28, "t4": 29, "t5": 30, "t6": 31,
}

// Operand shapes.
type format int

const (
	fmtNone   format = iota // ret
	fmtRI                   // li rd, imm
	fmtRR                   // mv rd, rs1
	fmtRRI                  // addi rd, rs1, imm
	fmtRRR                  // add rd, rs1, rs2
	fmtMem                  // ld rd, imm(rs1) / sd rs2, imm(rs1)
	fmtRLabel               // beqz rs1, label
	fmtLabel                // j label
)

var formats = map[string]format{
	"ret":  fmtNone,
	"li":   fmtRI,
	"mv":   fmtRR,
	"neg":  fmtRR,
	"seqz": fmtRR,
	"snez": fmtRR,
	"addi": fmtRRI,
	"xori": fmtRRI,
	"add":  fmtRRR,
	"sub":  fmtRRR,
	"mul":  fmtRRR,
	"div":  fmtRRR,
	"xor":  fmtRRR,
	"slt":  fmtRRR,
	"ld":   fmtMem,
	"sd":   fmtMem,
	"beqz": fmtRLabel,
	"j":    fmtLabel,
}

type inst struct {
	lineNo int
	op     string
	rd     int
	rs1    int
	rs2    int
	imm    int64
	target int // resolved label index into the program
}

// Program is an assembled list of instructions.
type Program struct {
	insts  []inst
	labels map[string]int
}

type parsedLine struct {
	lineNo   int
	mnemonic string
	operands []string
}

// Assemble parses assembly text into a Program. Directives other than
// labels are ignored.
func Assemble(src string) (*Program, error) {
	prog := &Program{labels: make(map[string]int)}
	var lines []parsedLine

	for i, line := range strings.Split(src, "\n") {
		lineNo := i + 1
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasSuffix(line, ":") {
			lbl := strings.TrimSuffix(line, ":")
			if _, dup := prog.labels[lbl]; dup {
				return nil, fmt.Errorf("duplicate label '%s' on line %d", lbl, lineNo)
			}
			prog.labels[lbl] = len(lines)
			continue
		}

		if strings.HasPrefix(line, ".") {
			continue
		}

		mnemonic, rest := line, ""
		if idx := strings.IndexAny(line, " \t"); idx >= 0 {
			mnemonic, rest = line[:idx], strings.TrimSpace(line[idx:])
		}
		var operands []string
		if rest != "" {
			for _, op := range strings.Split(rest, ",") {
				operands = append(operands, strings.TrimSpace(op))
			}
		}
		lines = append(lines, parsedLine{lineNo: lineNo, mnemonic: mnemonic, operands: operands})
	}

	for _, p := range lines {
		in, err := prog.decode(p)
		if err != nil {
			return nil, err
		}
		prog.insts = append(prog.insts, in)
	}
	return prog, nil
}

func (prog *Program) decode(p parsedLine) (inst, error) {
	in := inst{lineNo: p.lineNo, op: p.mnemonic}

	f, ok := formats[p.mnemonic]
	if !ok {
		return in, fmt.Errorf("unknown instruction on line %d: %s", p.lineNo, p.mnemonic)
	}

	want := map[format]int{
		fmtNone: 0, fmtRI: 2, fmtRR: 2, fmtRRI: 3, fmtRRR: 3,
		fmtMem: 2, fmtRLabel: 2, fmtLabel: 1,
	}[f]
	if len(p.operands) != want {
		return in, fmt.Errorf("%s expects %d operands on line %d, got %d", p.mnemonic, want, p.lineNo, len(p.operands))
	}

	var err error
	reg := func(s string) int {
		r, e := parseReg(s)
		if e != nil && err == nil {
			err = fmt.Errorf("line %d: %w", p.lineNo, e)
		}
		return r
	}
	imm := func(s string) int64 {
		v, e := strconv.ParseInt(s, 0, 64)
		if e != nil && err == nil {
			err = fmt.Errorf("invalid immediate on line %d: %s", p.lineNo, s)
		}
		return v
	}
	label := func(s string) int {
		idx, ok := prog.labels[s]
		if !ok && err == nil {
			err = fmt.Errorf("unknown label on line %d: %s", p.lineNo, s)
		}
		return idx
	}

	ops := p.operands
	switch f {
	case fmtRI:
		in.rd, in.imm = reg(ops[0]), imm(ops[1])
	case fmtRR:
		in.rd, in.rs1 = reg(ops[0]), reg(ops[1])
	case fmtRRI:
		in.rd, in.rs1, in.imm = reg(ops[0]), reg(ops[1]), imm(ops[2])
	case fmtRRR:
		in.rd, in.rs1, in.rs2 = reg(ops[0]), reg(ops[1]), reg(ops[2])
	case fmtMem:
		off, base, ok := parseMem(ops[1])
		if !ok {
			return in, fmt.Errorf("invalid memory operand on line %d: %s", p.lineNo, ops[1])
		}
		in.rd = reg(ops[0])
		in.rs2 = in.rd
		in.imm, in.rs1 = imm(off), reg(base)
	case fmtRLabel:
		in.rs1, in.target = reg(ops[0]), label(ops[1])
	case fmtLabel:
		in.target = label(ops[0])
	}
	return in, err
}

func parseReg(s string) (int, error) {
	if r, ok := regNames[s]; ok {
		return r, nil
	}
	if n, ok := strings.CutPrefix(s, "x"); ok {
		if r, err := strconv.Atoi(n); err == nil && 0 <= r && r < 32 {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown register %q", s)
}

// Splits "imm(reg)" into its parts.
func parseMem(s string) (off, base string, ok bool) {
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return "", "", false
	}
	off = strings.TrimSpace(s[:open])
	if off == "" {
		off = "0"
	}
	return off, strings.TrimSpace(s[open+1 : len(s)-1]), true
}
