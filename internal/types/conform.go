package types

import "fmt"

// ConformTo computes the cast chain needed to use a value of type from
// where a value of type to is expected, generalizing an
// expandable-implicit-conversion idea to the full resolved type lattice
// described by spec.md §4.6 "conform_to: implicit conversion chain".
//
// It returns CastNone (zero-value Cast with Op==CastNone) when from and to
// are already equal.
func ConformTo(from, to Unaliased) (Cast, error) {
	f, t := from.Type(), to.Type()
	if equalType(f, t) {
		return Cast{From: f, To: t, Op: CastNone}, nil
	}

	switch {
	case f.Kind == KBool && t.Kind == KInt:
		return Cast{From: f, To: t, Op: CastBoolToInt}, nil

	case f.Kind == KInt && t.Kind == KInt:
		switch {
		case f.IntWidth < t.IntWidth:
			return Cast{From: f, To: t, Op: CastIntWiden}, nil
		case f.IntWidth > t.IntWidth:
			return Cast{From: f, To: t, Op: CastIntNarrow}, nil
		default: // same width, different signedness.
			return Cast{From: f, To: t, Op: CastIntSignChange}, nil
		}

	case f.Kind == KInt && t.Kind == KFloat:
		return Cast{From: f, To: t, Op: CastIntToFloat}, nil

	case f.Kind == KFloat && t.Kind == KInt:
		return Cast{From: f, To: t, Op: CastFloatToInt}, nil

	case f.Kind == KFloat && t.Kind == KFloat:
		if f.FloatWidth < t.FloatWidth {
			return Cast{From: f, To: t, Op: CastFloatWiden}, nil
		}
		return Cast{From: f, To: t, Op: CastFloatNarrow}, nil

	case f.Kind == KPointer && t.Kind == KPointer:
		return Cast{From: f, To: t, Op: CastPointerBitcast}, nil

	default:
		return Cast{}, fmt.Errorf("no implicit conversion from %s to %s", f, t)
	}
}

// ConformToBool computes whether a value of type t can be used where a
// boolean condition is expected, and under which language's truthiness
// rule (spec.md §4.5 "Conform-to-bool"): Adept requires an actual bool (no
// implicit truthiness), C accepts any scalar compared against zero.
func ConformToBool(t Unaliased, isC bool) (Cast, error) {
	ty := t.Type()
	if ty.Kind == KBool {
		return Cast{From: ty, To: Type{Kind: KBool}, Op: CastNone}, nil
	}
	if !isC {
		return Cast{}, fmt.Errorf("Adept requires a bool condition, got %s", ty)
	}
	switch ty.Kind {
	case KInt, KFloat, KPointer:
		return Cast{From: ty, To: Type{Kind: KBool}, Op: CastIntSignChange}, nil
	default:
		return Cast{}, fmt.Errorf("C truthiness requires a scalar, got %s", ty)
	}
}

// DefaultArgumentPromote computes the cast chain and resulting type for
// passing a value of type t as a variadic-overflow call argument (spec.md
// §4.6 step 8 "conform to the argument's default concrete type
// (integer-promote, float-promote from f32->f64)"): bool and any integer
// narrower than a 32-bit int widen to Int32, preserving t's own
// signedness; Float32 widens to Float64. Anything else, including a type
// already at or above that width, passes through unchanged (CastNone).
func DefaultArgumentPromote(t Unaliased) (Cast, Type) {
	ty := t.Type()
	switch {
	case ty.Kind == KBool:
		to := Type{Kind: KInt, IntWidth: Int32}
		return Cast{From: ty, To: to, Op: CastBoolToInt}, to
	case ty.Kind == KInt && ty.IntWidth < Int32:
		to := Type{Kind: KInt, IntWidth: Int32, IntUnsigned: ty.IntUnsigned}
		return Cast{From: ty, To: to, Op: CastIntWiden}, to
	case ty.Kind == KFloat && ty.FloatWidth == Float32:
		to := Type{Kind: KFloat, FloatWidth: Float64}
		return Cast{From: ty, To: to, Op: CastFloatWiden}, to
	default:
		return Cast{From: ty, To: ty, Op: CastNone}, ty
	}
}

// Unify computes the common type two incoming PHI edges must conform to,
// by widening the narrower of the two along the same rules ConformTo uses
// (spec.md §4.6 "PHI unification"). It tries a -> b first, then b -> a.
func Unify(a, b Unaliased) (Type, error) {
	if a.Equal(b) {
		return a.Type(), nil
	}
	narrows := func(op CastKind) bool {
		return op == CastIntNarrow || op == CastFloatNarrow || op == CastFloatToInt
	}
	if c, err := ConformTo(a, b); err == nil && !narrows(c.Op) {
		return b.Type(), nil
	}
	if c, err := ConformTo(b, a); err == nil && !narrows(c.Op) {
		return a.Type(), nil
	}
	return Type{}, fmt.Errorf("cannot unify %s and %s", a.Type(), b.Type())
}
