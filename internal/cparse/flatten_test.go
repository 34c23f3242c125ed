package cparse

import (
	"testing"

	"github.com/stretchr/testify/require"

	"adeptc/internal/cfg"
)

func flattenSrc(t *testing.T, src string) *cfg.Builder {
	t.Helper()
	unit := parseSrc(t, src)
	fn := unit.Children[0]
	b, err := Flatten(fn)
	require.NoError(t, err)
	return b
}

func TestForDesugarsToWhileWithBreakContinueRole(t *testing.T) {
	b := flattenSrc(t, `int f(void) {
  int i;
  for (i = 0; i < 10; i = i + 1) {
    continue;
  }
  return i;
}
`)
	found := false
	for _, bb := range b.Blocks {
		if bb.End.Kind == cfg.EndBranch && bb.End.Role.IsLoop {
			found = true
		}
	}
	require.True(t, found)
	require.Empty(t, b.AllUnterminated())
}

func TestTernaryProducesPhi(t *testing.T) {
	b := flattenSrc(t, `int f(void) {
  int x;
  x = 1 ? 2 : 3;
  return x;
}
`)
	phiCount := 0
	for _, bb := range b.Blocks {
		for _, instr := range bb.Instrs {
			if instr.Kind == cfg.IPhi {
				phiCount++
			}
		}
	}
	require.Equal(t, 1, phiCount)
}

func TestIfElseConformToBool(t *testing.T) {
	b := flattenSrc(t, `int f(void) {
  int x;
  if (x) {
    return 1;
  } else {
    return 0;
  }
}
`)
	found := false
	for _, bb := range b.Blocks {
		for _, instr := range bb.Instrs {
			if instr.Kind == cfg.IConformToBool && instr.ConformLang == cfg.LangC {
				found = true
			}
		}
	}
	require.True(t, found)
}

func TestGotoForwardLabelResolves(t *testing.T) {
	b := flattenSrc(t, `int f(void) {
  goto skip;
  skip:
  return 0;
}
`)
	for _, bb := range b.Blocks {
		require.NotEqual(t, cfg.EndIncompleteGoto, bb.End.Kind)
	}
}
