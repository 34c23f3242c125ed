package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"adeptc/internal/target"
)

// Options holds the parsed command line, trimmed down to what this demo
// driver actually exercises: a single source file in, optional LLVM IR
// text out.
type Options struct {
	Src     string
	Out     string
	Threads int
	Verbose bool
	Arch    string
}

const maxThreads = 64
const appVersion = "adeptc demo driver 0.1"

// parseArgs parses os.Args[1:] with a hand-rolled flag-then-value loop
// instead of reaching for the flag package.
func parseArgs(args []string) (Options, error) {
	opt := Options{Arch: "x86_64"}
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-h", "-help", "--help":
			printHelp()
			os.Exit(0)
		case "-v", "-version", "--version":
			fmt.Println(appVersion)
			os.Exit(0)
		case "-vb":
			opt.Verbose = true
		case "-o":
			if i+1 >= len(args) {
				return opt, fmt.Errorf("got flag %s but no argument", args[i])
			}
			i++
			opt.Out = args[i]
		case "-t":
			if i+1 >= len(args) {
				return opt, fmt.Errorf("got flag %s but no argument", args[i])
			}
			i++
			n, err := strconv.Atoi(args[i])
			if err != nil || n <= 0 || n > maxThreads {
				return opt, fmt.Errorf("thread count must be an integer in range [1, %d]", maxThreads)
			}
			opt.Threads = n
		case "-arch":
			if i+1 >= len(args) {
				return opt, fmt.Errorf("got flag %s but no argument", args[i])
			}
			i++
			opt.Arch = args[i]
		default:
			if strings.HasPrefix(args[i], "-") {
				return opt, fmt.Errorf("unexpected flag: %s", args[i])
			}
			opt.Src = args[i]
		}
	}
	return opt, nil
}

// targetFor resolves the -arch flag to a Description, either one of the
// three built-in ABIs or a path to a YAML fixture (target.LoadYAML).
func targetFor(opt Options) (*target.Description, error) {
	switch opt.Arch {
	case "x86_64", "":
		return target.X86_64SysV(), nil
	case "aarch64":
		return target.AArch64(), nil
	case "win64":
		return target.Win64Target(), nil
	default:
		return target.LoadYAML(opt.Arch)
	}
}

func printHelp() {
	w := tabwriter.NewWriter(os.Stdout, 6, 1, 1, 0, 0)
	_, _ = fmt.Fprintln(w, "-h, -help\tPrints this help message and exits.")
	_, _ = fmt.Fprintln(w, "-o\tPath to write the generated LLVM IR text to. Defaults to stdout.")
	_, _ = fmt.Fprintf(w, "-t\tNumber of functions to resolve and lower in parallel. Must be in range [1, %d].\n", maxThreads)
	_, _ = fmt.Fprintln(w, "-arch\tTarget ABI: x86_64, aarch64, win64, or a path to a target YAML fixture.")
	_, _ = fmt.Fprintln(w, "-v, -version\tPrints the driver version and exits.")
	_, _ = fmt.Fprintln(w, "-vb\tVerbose mode: print the lowered module in the core's own IR text (not LLVM IR) to stderr before LLVM emission.")
	_ = w.Flush()
}
