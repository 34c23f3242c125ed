// Package sourcemap provides the process-wide SourceFiles registry and the
// cheap, copyable Source value used to tag every token, AST node, and
// diagnostic with where it came from.
package sourcemap

import "fmt"

// Key identifies a registered source file. The zero Key is never handed out
// by Register; it is reserved so that Key behaves well as a map key default.
type Key uint32

// Location is a 1-indexed line/column pair within a single source file.
type Location struct {
	Line   int
	Column int
}

// Source is (file, line, column). Source values are cheap, copyable, and
// must never be compared for structural equality in business logic — only
// Key equality (via IsInternal or direct field comparison against a known
// constant) is meaningful.
type Source struct {
	Key      Key
	Location Location
}

// Sourced pairs an arbitrary value with the Source it was produced from.
type Sourced[T any] struct {
	Inner  T
	Source Source
}

// NewSourced builds a Sourced value.
func NewSourced[T any](inner T, src Source) Sourced[T] {
	return Sourced[T]{Inner: inner, Source: src}
}

// InternalKey is the one synthetic key reserved for compiler-generated
// constructs (e.g. implicit va_list typedefs, synthesized overflow panic
// calls) that have no file of their own.
const InternalKey Key = 0

// Internal returns a Source pointing at the internal synthetic file.
func Internal() Source {
	return Source{Key: InternalKey, Location: Location{Line: 1, Column: 1}}
}

// IsInternal reports whether s was produced by Internal().
func (s Source) IsInternal() bool {
	return s.Key == InternalKey
}

// ShiftColumn returns a copy of s with its column advanced by n.
func (s Source) ShiftColumn(n int) Source {
	s.Location.Column += n
	return s
}

func (s Source) String() string {
	if s.IsInternal() {
		return "<internal>"
	}
	return fmt.Sprintf("%d:%d:%d", s.Key, s.Location.Line, s.Location.Column)
}

// file is the registry's record for one source file.
type file struct {
	Path     string
	Contents []byte
}

// Files is the process-wide registry mapping a Key to {path, contents}. The
// core never reads files directly; a Files instance is handed in by the
// driver (out of scope) and is read-only after population, per spec.md §5
// "Shared resources".
type Files struct {
	entries []file // index 0 reserved for InternalKey.
}

// New returns a Files registry with the internal synthetic entry pre-seeded.
func New() *Files {
	return &Files{entries: []file{{Path: "<internal>", Contents: nil}}}
}

// Register adds a source file and returns its Key. Registration is
// single-writer: callers must not call Register concurrently with Lookup.
func (f *Files) Register(path string, contents []byte) Key {
	f.entries = append(f.entries, file{Path: path, Contents: contents})
	return Key(len(f.entries) - 1)
}

// Lookup returns the path and contents registered under key. ok is false for
// a key Register never returned; InternalKey (the zero Key) always resolves,
// to the "<internal>" entry with nil contents.
func (f *Files) Lookup(key Key) (path string, contents []byte, ok bool) {
	i := int(key)
	if i < 0 || i >= len(f.entries) {
		return "", nil, false
	}
	e := f.entries[i]
	return e.Path, e.Contents, true
}

// Len returns the number of registered files, including the internal entry.
func (f *Files) Len() int { return len(f.entries) }
