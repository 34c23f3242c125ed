// Command adeptc is a minimal driver exercising the compilation pipeline
// core: it reads one Adept source file, lexes/parses/flattens/resolves/
// lowers every top-level function through internal/exec, and emits the
// lowered module as LLVM IR text (spec.md §6 "No CLI... an implementation
// exposing a CLI must do so outside the core"). It is deliberately thin:
// parse args, read source, run the pipeline, write the result, report any
// error to stderr.
package main

import (
	"fmt"
	"os"

	"adeptc/internal/llvmgen"
)

func run(opt Options) error {
	src, err := os.ReadFile(opt.Src)
	if err != nil {
		return fmt.Errorf("could not read source code: %w", err)
	}

	td, err := targetFor(opt)
	if err != nil {
		return fmt.Errorf("target: %w", err)
	}

	m, err := compileAdept(string(src), opt)
	if err != nil {
		return err
	}

	if opt.Verbose {
		fmt.Fprint(os.Stderr, m.String())
	}

	ctx, mod, err := llvmgen.Generate(m, td, llvmgen.Options{Threads: opt.Threads})
	if err != nil {
		return fmt.Errorf("llvm emission: %w", err)
	}
	defer ctx.Dispose()
	defer mod.Dispose()

	out := os.Stdout
	if opt.Out != "" {
		f, err := os.OpenFile(opt.Out, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("could not open output file: %w", err)
		}
		defer f.Close()
		out = f
	}
	_, err = fmt.Fprint(out, mod.String())
	return err
}

func main() {
	opt, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "command line argument error: %s\n", err)
		os.Exit(1)
	}
	if opt.Src == "" {
		fmt.Fprintln(os.Stderr, "no source file given")
		os.Exit(1)
	}
	if err := run(opt); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}
