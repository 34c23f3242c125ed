package abi

import "adeptc/internal/types"

// sizeOf estimates a resolved type's byte size well enough to drive ABI
// classification. It does not need struct-layout padding/alignment
// precision (internal/resolve doesn't build one), only the size class the
// classifier rules below branch on.
func sizeOf(t types.Type) int {
	switch t.Kind {
	case types.KBool:
		return 1
	case types.KInt:
		return int(t.IntWidth) / 8
	case types.KFloat:
		return int(t.FloatWidth) / 8
	case types.KPointer:
		return 8
	case types.KVoid:
		return 0
	case types.KArray:
		if t.ArrayElem == nil {
			return 0
		}
		return int(t.ArrayLen) * sizeOf(*t.ArrayElem)
	case types.KStruct:
		total := 0
		for _, f := range t.StructFields {
			total += sizeOf(f.Type)
		}
		return total
	default:
		return 8
	}
}

func isAggregate(t types.Type) bool { return t.Kind == types.KStruct || t.Kind == types.KArray }

func leavesOf(t types.Type) []types.Type {
	switch t.Kind {
	case types.KStruct:
		var leaves []types.Type
		for _, f := range t.StructFields {
			leaves = append(leaves, leavesOf(f.Type)...)
		}
		return leaves
	case types.KArray:
		if t.ArrayElem == nil {
			return nil
		}
		var leaves []types.Type
		for i := int64(0); i < t.ArrayLen; i++ {
			leaves = append(leaves, leavesOf(*t.ArrayElem)...)
		}
		return leaves
	default:
		return []types.Type{t}
	}
}

func scalarNeedsExtend(t types.Type) (sign, zero bool) {
	if t.Kind == types.KBool {
		return false, true
	}
	if t.Kind == types.KInt && t.IntWidth < types.Int32 {
		if t.IntUnsigned {
			return false, true
		}
		return true, false
	}
	return false, false
}

// SysV classifies parameters and returns per x86-64 System V: aggregates
// up to 16 bytes are passed Direct (coerced into registers), larger ones
// Indirect by a hidden pointer (spec.md §4.8 "Indirect: copy the value
// into an aligned temporary and pass the pointer").
type SysV struct{}

func (SysV) ClassifyParam(t types.Type) Param {
	if t.Kind == types.KVoid {
		return Param{Mode: Ignore, Type: t}
	}
	if isAggregate(t) {
		if sizeOf(t) <= 16 {
			return Param{Mode: Direct, Type: t}
		}
		return Param{Mode: Indirect, Type: t}
	}
	sign, zero := scalarNeedsExtend(t)
	if sign || zero {
		return Param{Mode: Extend, Type: t, SignExtend: sign, ZeroExtend: zero}
	}
	return Param{Mode: Direct, Type: t}
}

func (s SysV) ClassifyReturn(t types.Type) Param {
	if t.Kind == types.KVoid {
		return Param{Mode: Ignore, Type: t}
	}
	if isAggregate(t) {
		if sizeOf(t) <= 16 {
			return Param{Mode: Direct, Type: t}
		}
		return Param{Mode: Indirect, Type: t}
	}
	return s.ClassifyParam(t)
}

// AArch64 classifies per the AAPCS64: the aggregate size threshold is the
// same 16 bytes as SysV, but this core does not attempt AAPCS's
// homogeneous-float-aggregate register-packing rule — every aggregate
// that fits is coerced the same way SysV's is, a documented simplification.
type AArch64 struct{}

func (AArch64) ClassifyParam(t types.Type) Param {
	if t.Kind == types.KVoid {
		return Param{Mode: Ignore, Type: t}
	}
	if isAggregate(t) {
		if sizeOf(t) <= 16 {
			return Param{Mode: Direct, Type: t}
		}
		return Param{Mode: Indirect, Type: t}
	}
	sign, zero := scalarNeedsExtend(t)
	if sign || zero {
		return Param{Mode: Extend, Type: t, SignExtend: sign, ZeroExtend: zero}
	}
	return Param{Mode: Direct, Type: t}
}

func (a AArch64) ClassifyReturn(t types.Type) Param { return a.ClassifyParam(t) }

// Win64 classifies per the Windows x64 calling convention: any aggregate
// or scalar wider than a pointer is always passed Indirect, a markedly
// stricter rule than SysV/AAPCS's 16-byte window (spec.md §4.8 "the choice
// influences LLVM parameter count and attributes").
type Win64 struct{}

func (Win64) ClassifyParam(t types.Type) Param {
	if t.Kind == types.KVoid {
		return Param{Mode: Ignore, Type: t}
	}
	if sizeOf(t) > 8 {
		return Param{Mode: Indirect, Type: t}
	}
	if isAggregate(t) {
		return Param{Mode: Direct, Type: t}
	}
	sign, zero := scalarNeedsExtend(t)
	if sign || zero {
		return Param{Mode: Extend, Type: t, SignExtend: sign, ZeroExtend: zero}
	}
	return Param{Mode: Direct, Type: t}
}

func (w Win64) ClassifyReturn(t types.Type) Param {
	if t.Kind == types.KVoid {
		return Param{Mode: Ignore, Type: t}
	}
	if sizeOf(t) > 8 {
		return Param{Mode: Indirect, Type: t}
	}
	return w.ClassifyParam(t)
}

// ExpandAggregate builds the Expand leaves for a parameter the caller has
// decided to pass via Expand rather than Direct/Indirect (spec.md §4.8
// "Expand: recursively walk the aggregate and pass one LLVM argument per
// primitive leaf"). None of the three built-in Classifiers choose Expand
// by default — SysV/AAPCS prefer Direct-by-coercion up to 16 bytes and
// Indirect beyond it — but llvmgen can call this directly for a target
// extension that does.
func ExpandAggregate(t types.Type) Param {
	return Param{Mode: Expand, Type: t, ExpandLeaves: leavesOf(t)}
}
