// Package types implements the resolved type system shared by both front
// ends after CFG resolution (spec.md §4.6 "Resolved Types"): a Type sum
// type, an Unaliased newtype that caps alias-expansion depth, and the
// Cast/conform machinery used by the resolver and IR lowering.
package types

import "fmt"

// Kind enumerates the resolved type union (spec.md §4.6 "Type").
type Kind int

const (
	KBool Kind = iota
	KInt
	KFloat
	KPointer
	KArray
	KStruct
	KFunc
	KVoid
	KAlias
)

// IntWidth is the bit width of an integer type.
type IntWidth int

const (
	Int8 IntWidth = 8
	Int16 IntWidth = 16
	Int32 IntWidth = 32
	Int64 IntWidth = 64
)

// FloatWidth is the bit width of a float type.
type FloatWidth int

const (
	Float32 FloatWidth = 32
	Float64 FloatWidth = 64
)

// Type is the resolved type sum (spec.md §4.6). Exactly the fields for
// Kind are meaningful; it is one flat tagged struct rather than an
// interface hierarchy, so that Equal can do a flat structural comparison
// without type-switching.
type Type struct {
	Kind Kind

	IntWidth    IntWidth
	IntUnsigned bool

	FloatWidth FloatWidth

	Pointee *Type

	ArrayLen  int64
	ArrayElem *Type

	StructName   string
	StructFields []Field

	FuncParams   []Type
	FuncVariadic bool
	FuncReturn   *Type

	AliasName   string
	AliasTarget *Type
}

// Field is one member of a resolved struct type.
type Field struct {
	Name string
	Type Type
}

// Unaliased wraps a Type with alias expansion already performed, so later
// code never has to re-walk an alias chain (spec.md §4.6 "UnaliasedType
// newtype"). maxAliasDepth guards against an alias cycle turning resolution
// into an infinite loop.
type Unaliased struct {
	t Type
}

const maxAliasDepth = 64

// Unalias expands t through at most maxAliasDepth alias indirections and
// returns the result, or an error if the chain is still an alias past that
// depth (treated as a cycle).
func Unalias(t Type) (Unaliased, error) {
	cur := t
	for i := 0; i < maxAliasDepth; i++ {
		if cur.Kind != KAlias {
			return Unaliased{t: cur}, nil
		}
		if cur.AliasTarget == nil {
			return Unaliased{}, fmt.Errorf("alias %q has no target", cur.AliasName)
		}
		cur = *cur.AliasTarget
	}
	return Unaliased{}, fmt.Errorf("alias chain exceeds %d levels (cycle?) starting at %q", maxAliasDepth, t.AliasName)
}

// MustUnalias panics on cycle/depth failure; used where the caller has
// already validated the alias table has no cycles.
func MustUnalias(t Type) Unaliased {
	u, err := Unalias(t)
	if err != nil {
		panic(err)
	}
	return u
}

// Type returns the underlying (never-KAlias) Type.
func (u Unaliased) Type() Type { return u.t }

// Equal does a structural comparison of two unaliased types. Idempotence
// of Unalias (spec.md §8 universal law 1) means Equal never needs to
// expand aliases itself.
func (u Unaliased) Equal(other Unaliased) bool {
	return equalType(u.t, other.t)
}

func equalType(a, b Type) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KBool, KVoid:
		return true
	case KInt:
		return a.IntWidth == b.IntWidth && a.IntUnsigned == b.IntUnsigned
	case KFloat:
		return a.FloatWidth == b.FloatWidth
	case KPointer:
		return equalPtr(a.Pointee, b.Pointee)
	case KArray:
		return a.ArrayLen == b.ArrayLen && equalPtr(a.ArrayElem, b.ArrayElem)
	case KStruct:
		return a.StructName == b.StructName
	case KFunc:
		if a.FuncVariadic != b.FuncVariadic || len(a.FuncParams) != len(b.FuncParams) {
			return false
		}
		for i := range a.FuncParams {
			if !equalType(a.FuncParams[i], b.FuncParams[i]) {
				return false
			}
		}
		return equalPtr(a.FuncReturn, b.FuncReturn)
	default:
		return false
	}
}

func equalPtr(a, b *Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	return equalType(*a, *b)
}

func (t Type) String() string {
	switch t.Kind {
	case KBool:
		return "bool"
	case KVoid:
		return "void"
	case KInt:
		sign := "i"
		if t.IntUnsigned {
			sign = "u"
		}
		return fmt.Sprintf("%s%d", sign, t.IntWidth)
	case KFloat:
		return fmt.Sprintf("f%d", t.FloatWidth)
	case KPointer:
		return "*" + t.Pointee.String()
	case KArray:
		return fmt.Sprintf("[%d]%s", t.ArrayLen, t.ArrayElem.String())
	case KStruct:
		return t.StructName
	case KFunc:
		return "func(...)"
	case KAlias:
		return t.AliasName
	default:
		return "?"
	}
}

// FuncHead is the resolved signature of a callable, bound onto an ICall
// instruction during resolution (spec.md §4.6 "call resolution").
type FuncHead struct {
	Name     string
	Params   []Field
	Variadic bool
	Return   Type
}

// CastKind enumerates how a value is converted when conforming it to a
// target type (spec.md §4.6 "conform_to").
type CastKind int

const (
	CastNone CastKind = iota
	CastIntWiden
	CastIntNarrow
	CastIntSignChange
	CastIntToFloat
	CastFloatToInt
	CastFloatWiden
	CastFloatNarrow
	CastPointerBitcast
	CastBoolToInt
)

// Cast records one implicit or explicit conversion step (spec.md §4.6
// "conform_to produces a cast chain").
type Cast struct {
	From, To Type
	Op       CastKind
}
