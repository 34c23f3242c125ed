package cpre

import "strings"

// spliceLines removes backslash-newline pairs from src (ISO C line
// splicing, spec.md §4.1 "(a) line splicing"), returning the spliced text
// plus a physLine slice that maps each byte offset in the spliced text back
// to the 1-indexed *physical* source line it came from, so diagnostics can
// still report the original line even though splicing shifted everything
// onto one logical line.
//
// This mirrors the original Rust implementation's LineColumn iterator
// (original_source/src/line_column.rs) adapted to a batch pass over a
// byte slice instead of a streaming rune iterator, since the Go core
// consumes whole files rather than an interactive REPL stream.
func spliceLines(src string) (spliced string, physLine []int) {
	var b strings.Builder
	b.Grow(len(src))
	physLine = make([]int, 0, len(src))

	line := 1
	i := 0
	for i < len(src) {
		if src[i] == '\\' && i+1 < len(src) && (src[i+1] == '\n' || (src[i+1] == '\r' && i+2 < len(src) && src[i+2] == '\n')) {
			// Backslash-newline: drop both, advance physical line counter,
			// emit nothing into the spliced stream.
			line++
			if src[i+1] == '\r' {
				i += 3
			} else {
				i += 2
			}
			continue
		}
		c := src[i]
		b.WriteByte(c)
		physLine = append(physLine, line)
		if c == '\n' {
			line++
		}
		i++
	}
	return b.String(), physLine
}
