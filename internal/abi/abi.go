// Package abi classifies function parameters and return values into the C
// ABI's argument-passing modes (spec.md §4.8 "ABI classifier per parameter
// and return"). The classifier is pure and target-parameterized: it never
// touches LLVM itself — internal/llvmgen consumes its output to build the
// actual call/return instructions.
package abi

import "adeptc/internal/types"

// Mode enumerates how one value crosses a call boundary.
type Mode int

const (
	Direct Mode = iota
	Extend
	Indirect
	IndirectAliased
	Ignore
	Expand
	CoerceAndExpand
	InAlloca
)

func (m Mode) String() string {
	switch m {
	case Direct:
		return "direct"
	case Extend:
		return "extend"
	case Indirect:
		return "indirect"
	case IndirectAliased:
		return "indirect-aliased"
	case Ignore:
		return "ignore"
	case Expand:
		return "expand"
	case CoerceAndExpand:
		return "coerce-and-expand"
	case InAlloca:
		return "in-alloca"
	default:
		return "?"
	}
}

// Param is one parameter's (or the return's) ABI classification.
type Param struct {
	Mode Mode
	Type types.Type

	// SignExtend/ZeroExtend apply to Extend: whether the value must be
	// sign- or zero-extended to fill the ABI's minimum register width.
	SignExtend bool
	ZeroExtend bool

	// ExpandLeaves lists, in order, the scalar leaf types Expand or
	// CoerceAndExpand walks an aggregate into (spec.md §4.8 "Expand").
	ExpandLeaves []types.Type
}

// ParamsMapping maps one logical parameter to the contiguous range of
// LLVM parameter indices it occupies, and records whether an sret slot
// precedes every real parameter (spec.md §4.8 "ParamsMapping"). Classify
// never inserts padding slots between parameters.
type ParamsMapping struct {
	HasSRet    bool
	ParamRanges [][2]int // [start, end) LLVM index range per logical parameter.
	total      int
}

// LLVMArity returns the total number of LLVM-level parameters this
// mapping occupies, the quantity spec.md §8 universal law 6 checks at
// every ABI-complying call site.
func (p ParamsMapping) LLVMArity() int { return p.total }

// Signature is the classified result for one function: each parameter's
// Param plus the return's Param and the resulting ParamsMapping.
type Signature struct {
	Params  []Param
	Return  Param
	Mapping ParamsMapping
}

// Classifier classifies one resolved signature for a specific ABI family
// (SysV x86-64, AArch64 AAPCS, Win64 — spec.md §4.8 "the classifier
// depends on the target").
type Classifier interface {
	ClassifyParam(t types.Type) Param
	ClassifyReturn(t types.Type) Param
}

// Classify runs c over every parameter and the return type, producing the
// full Signature including its ParamsMapping.
func Classify(c Classifier, params []types.Type, ret types.Type) Signature {
	sig := Signature{Return: c.ClassifyReturn(ret)}
	idx := 0
	if sig.Return.Mode == Indirect || sig.Return.Mode == IndirectAliased {
		sig.Mapping.HasSRet = true
		idx++ // the sret pointer occupies LLVM parameter 0.
	}
	for _, pt := range params {
		p := c.ClassifyParam(pt)
		sig.Params = append(sig.Params, p)
		start := idx
		switch p.Mode {
		case Ignore:
			// occupies no LLVM parameter slot.
		case Expand, CoerceAndExpand:
			idx += max(1, len(p.ExpandLeaves))
		case Indirect, IndirectAliased:
			idx++ // one pointer argument.
		default: // Direct, Extend.
			idx++
		}
		sig.Mapping.ParamRanges = append(sig.Mapping.ParamRanges, [2]int{start, idx})
	}
	sig.Mapping.total = idx
	return sig
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
