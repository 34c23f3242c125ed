package aparse

import (
	"testing"

	"github.com/stretchr/testify/require"

	"adeptc/internal/cfg"
)

func flattenSrc(t *testing.T, src string) *cfg.Builder {
	t.Helper()
	toks := lexOrFail(t, src)
	prog, err := Parse(0, toks)
	require.NoError(t, err)
	fn := prog.Children[0]
	b, err := Flatten(fn)
	require.NoError(t, err)
	return b
}

// TestShortCircuitProducesPhiDiamond exercises scenario S3 from spec.md §8.
func TestShortCircuitProducesPhiDiamond(t *testing.T) {
	b := flattenSrc(t, "func f() {\n  let x = a && b\n}\n")
	var phiCount int
	for _, bb := range b.Blocks {
		for _, instr := range bb.Instrs {
			if instr.Kind == cfg.IPhi {
				phiCount++
				require.Len(t, instr.PhiBlocks, 2)
			}
		}
	}
	require.Equal(t, 1, phiCount)
}

// TestForwardGotoResolves exercises scenario S4 from spec.md §8.
func TestForwardGotoResolves(t *testing.T) {
	b := flattenSrc(t, "func f() {\n  goto skip\n  let x = 1\n  skip::\n  return\n}\n")
	foundJump := false
	for _, bb := range b.Blocks {
		if bb.End.Kind == cfg.EndJump {
			foundJump = true
		}
		require.NotEqual(t, cfg.EndIncompleteGoto, bb.End.Kind)
	}
	require.True(t, foundJump)
}

func TestWhileLoopHasBreakContinueRole(t *testing.T) {
	b := flattenSrc(t, "func f() {\n  while a < b {\n    break\n  }\n}\n")
	found := false
	for _, bb := range b.Blocks {
		if bb.End.Kind == cfg.EndBranch && bb.End.Role.IsLoop {
			found = true
		}
	}
	require.True(t, found)
}

func TestEveryBlockTerminated(t *testing.T) {
	b := flattenSrc(t, "func f() {\n  if a < b {\n    return\n  }\n  return\n}\n")
	require.Empty(t, b.AllUnterminated())
}
