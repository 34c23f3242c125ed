package abi

import (
	"testing"

	"github.com/stretchr/testify/require"

	"adeptc/internal/types"
)

func i32() types.Type  { return types.Type{Kind: types.KInt, IntWidth: types.Int32} }
func i8() types.Type   { return types.Type{Kind: types.KInt, IntWidth: types.Int8} }
func u8() types.Type   { return types.Type{Kind: types.KInt, IntWidth: types.Int8, IntUnsigned: true} }
func f64() types.Type  { return types.Type{Kind: types.KFloat, FloatWidth: types.Float64} }
func ptr() types.Type  { p := i32(); return types.Type{Kind: types.KPointer, Pointee: &p} }
func void() types.Type { return types.Type{Kind: types.KVoid} }

// smallStructN builds a struct with n int32 fields (4*n bytes).
func smallStructN(n int) types.Type {
	fields := make([]types.Field, n)
	for i := range fields {
		fields[i] = types.Field{Name: "f", Type: i32()}
	}
	return types.Type{Kind: types.KStruct, StructName: "S", StructFields: fields}
}

func TestArityMatchesParamCountForScalars(t *testing.T) {
	sig := Classify(SysV{}, []types.Type{i32(), f64(), ptr()}, i32())
	require.False(t, sig.Mapping.HasSRet)
	require.Equal(t, 3, sig.Mapping.LLVMArity())
	require.Len(t, sig.Mapping.ParamRanges, 3)
	require.Equal(t, [2]int{0, 1}, sig.Mapping.ParamRanges[0])
	require.Equal(t, [2]int{1, 2}, sig.Mapping.ParamRanges[1])
	require.Equal(t, [2]int{2, 3}, sig.Mapping.ParamRanges[2])
}

func TestSysVSmallAggregateIsDirect(t *testing.T) {
	small := smallStructN(2) // 8 bytes
	p := SysV{}.ClassifyParam(small)
	require.Equal(t, Direct, p.Mode)
}

func TestSysVLargeAggregateIsIndirectAndShiftsArity(t *testing.T) {
	large := smallStructN(8) // 32 bytes
	sig := Classify(SysV{}, []types.Type{i32(), large}, i32())
	require.Equal(t, Indirect, sig.Params[1].Mode)
	require.Equal(t, 2, sig.Mapping.LLVMArity())
}

func TestIndirectReturnInsertsSRetAndShiftsParamIndices(t *testing.T) {
	large := smallStructN(8)
	sig := Classify(SysV{}, []types.Type{i32()}, large)
	require.True(t, sig.Mapping.HasSRet)
	require.Equal(t, [2]int{1, 2}, sig.Mapping.ParamRanges[0])
	require.Equal(t, 2, sig.Mapping.LLVMArity())
}

func TestWin64AlwaysIndirectsWideValues(t *testing.T) {
	wide := smallStructN(4) // 16 bytes, fits SysV Direct but not Win64
	require.Equal(t, Direct, SysV{}.ClassifyParam(wide).Mode)
	require.Equal(t, Indirect, Win64{}.ClassifyParam(wide).Mode)
}

func TestSubWordIntegersRequireExtend(t *testing.T) {
	signed := SysV{}.ClassifyParam(i8())
	require.Equal(t, Extend, signed.Mode)
	require.True(t, signed.SignExtend)

	unsigned := SysV{}.ClassifyParam(u8())
	require.Equal(t, Extend, unsigned.Mode)
	require.True(t, unsigned.ZeroExtend)
}

func TestVoidIsIgnored(t *testing.T) {
	require.Equal(t, Ignore, SysV{}.ClassifyReturn(void()).Mode)
	require.Equal(t, 0, Classify(SysV{}, nil, void()).Mapping.LLVMArity())
}

func TestAArch64MatchesSysVAggregateThreshold(t *testing.T) {
	at16 := smallStructN(4)
	require.Equal(t, Direct, AArch64{}.ClassifyParam(at16).Mode)
	over16 := smallStructN(5)
	require.Equal(t, Indirect, AArch64{}.ClassifyParam(over16).Mode)
}

func TestExpandAggregateListsPrimitiveLeaves(t *testing.T) {
	s := smallStructN(3)
	p := ExpandAggregate(s)
	require.Equal(t, Expand, p.Mode)
	require.Len(t, p.ExpandLeaves, 3)
}

func TestVariadicCallArityAccountsForEveryFixedAndExtraArgument(t *testing.T) {
	// Simulates a call-site signature for a variadic function classified
	// against concrete argument types (spec.md §8 scenario S6): the fixed
	// parameter plus two variadic extras each occupy one LLVM argument slot
	// under SysV since none of them are large aggregates.
	sig := Classify(SysV{}, []types.Type{ptr(), i32(), f64()}, i32())
	require.Equal(t, 3, sig.Mapping.LLVMArity())
}
