package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func i32() Type  { return Type{Kind: KInt, IntWidth: Int32} }
func u32() Type  { return Type{Kind: KInt, IntWidth: Int32, IntUnsigned: true} }
func i64() Type  { return Type{Kind: KInt, IntWidth: Int64} }
func f64() Type  { return Type{Kind: KFloat, FloatWidth: Float64} }

func TestUnaliasIdempotent(t *testing.T) {
	alias := Type{Kind: KAlias, AliasName: "MyInt", AliasTarget: ptr(i32())}
	u1, err := Unalias(alias)
	require.NoError(t, err)
	u2, err := Unalias(u1.Type())
	require.NoError(t, err)
	require.True(t, u1.Equal(u2))
	require.Equal(t, KInt, u1.Type().Kind)
}

func TestUnaliasDetectsCycle(t *testing.T) {
	a := &Type{Kind: KAlias, AliasName: "A"}
	b := &Type{Kind: KAlias, AliasName: "B", AliasTarget: a}
	a.AliasTarget = b
	_, err := Unalias(*a)
	require.Error(t, err)
}

func TestConformIntWiden(t *testing.T) {
	c, err := ConformTo(MustUnalias(i32()), MustUnalias(i64()))
	require.NoError(t, err)
	require.Equal(t, CastIntWiden, c.Op)
}

func TestConformIntSignChange(t *testing.T) {
	c, err := ConformTo(MustUnalias(i32()), MustUnalias(u32()))
	require.NoError(t, err)
	require.Equal(t, CastIntSignChange, c.Op)
}

func TestConformIntToFloat(t *testing.T) {
	c, err := ConformTo(MustUnalias(i32()), MustUnalias(f64()))
	require.NoError(t, err)
	require.Equal(t, CastIntToFloat, c.Op)
}

func TestConformToBoolRejectsNonBoolInAdept(t *testing.T) {
	_, err := ConformToBool(MustUnalias(i32()), false)
	require.Error(t, err)
}

func TestConformToBoolAcceptsScalarInC(t *testing.T) {
	c, err := ConformToBool(MustUnalias(i32()), true)
	require.NoError(t, err)
	require.Equal(t, CastIntSignChange, c.Op)
}

func ptr(t Type) *Type { return &t }
