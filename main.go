package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"rvccgo/internal/rvsim"
)

// Compile src to RISC-V assembly. The returned error is an *Error for
// anything wrong with the input or the compiler itself.
func compile(src string) (asm string, err error) {
	defer catch(&err)

	ctx := newCtx(src)

	// Tokenize and parse.
	tok := tokenize(ctx)
	fn := parse(ctx, tok)

	// Traverse the AST to emit assembly.
	var b strings.Builder
	codegen(ctx, &b, fn)
	return b.String(), nil
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s [-o output] [-run] <program | ->\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	outPath := flag.String("o", "", "write assembly to `file` instead of stdout")
	runProgram := flag.Bool("run", false, "run the generated assembly on the built-in RV64 interpreter and exit with its result")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "%s: invalid number of arguments\n", os.Args[0])
		os.Exit(1)
	}

	err := run(flag.Arg(0), *outPath, *runProgram)

	var exit exitCode
	switch {
	case err == nil:
	case errors.As(err, &exit):
		os.Exit(int(exit))
	default:
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// exitCode carries the result of a -run execution out of run.
type exitCode int

func (c exitCode) Error() string { return fmt.Sprintf("exit status %d", int(c)) }

func run(arg, outPath string, runProgram bool) error {
	src, err := readSource(arg)
	if err != nil {
		return err
	}

	asm, err := compile(src)
	if err != nil {
		return err
	}

	if runProgram {
		ret, err := rvsim.Run(asm)
		if err != nil {
			return fmt.Errorf("run: %w", err)
		}
		if code := uint8(ret); code != 0 {
			return exitCode(code)
		}
		return nil
	}

	if outPath == "" {
		_, err := io.WriteString(os.Stdout, asm)
		return err
	}
	if err := os.WriteFile(outPath, []byte(asm), 0o644); err != nil {
		return fmt.Errorf("cannot open output file: %w", err)
	}
	return nil
}

// The program is the argument itself, or stdin when the argument is "-".
func readSource(arg string) (string, error) {
	if arg != "-" {
		return arg, nil
	}
	b, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("cannot read stdin: %w", err)
	}
	return string(b), nil
}
