package target

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuiltinsHaveDistinctABIs(t *testing.T) {
	require.Equal(t, X86_64, X86_64SysV().ABI)
	require.Equal(t, AArch64AAPCS, AArch64().ABI)
	require.Equal(t, Win64, Win64Target().ABI)
}

func TestWin64UsesLLP64LongWidth(t *testing.T) {
	require.Equal(t, 64, X86_64SysV().CInt.LongBits)
	require.Equal(t, 32, Win64Target().CInt.LongBits)
}

func TestLoadYAMLRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	const doc = `
name: custom32
abi: aarch64-aapcs
c_int:
  char_bits: 8
  short_bits: 16
  int_bits: 32
  long_bits: 64
  long_long_bits: 64
pointer_bits: 64
pointer_align: 8
promote_variadic_float: true
overflow_panic_symbol: my_panic
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	d, err := LoadYAML(path)
	require.NoError(t, err)
	require.Equal(t, "custom32", d.Name)
	require.Equal(t, AArch64AAPCS, d.ABI)
	require.Equal(t, 32, d.CInt.IntBits)
	require.Equal(t, "my_panic", d.OverflowPanicSymbol)
}

func TestLoadYAMLDefaultsOverflowSymbol(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "minimal.yaml")
	const doc = `
name: minimal
c_int:
  int_bits: 32
pointer_bits: 64
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	d, err := LoadYAML(path)
	require.NoError(t, err)
	require.Equal(t, X86_64, d.ABI)
	require.Equal(t, defaultOverflowPanicSymbol, d.OverflowPanicSymbol)
}

func TestLoadYAMLRejectsUnknownABI(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	const doc = `
name: bad
abi: nonsense
c_int:
  int_bits: 32
pointer_bits: 64
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	_, err := LoadYAML(path)
	require.Error(t, err)
}

func TestLoadYAMLRejectsMissingRequiredFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "incomplete.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: incomplete\n"), 0o644))

	_, err := LoadYAML(path)
	require.Error(t, err)
}
