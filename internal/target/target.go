// Package target describes the externally-supplied per-platform facts the
// core consumes but never decides for itself (spec.md §6 "Target
// description: byte widths for char|short|int|long|long long, default
// signs, pointer size, alignment rules, ABI kind, variadic promotion
// rules"). A Description is produced by the driver, not by this core, so
// the three built-in constructors below and LoadYAML exist only to give
// cmd/adeptc and the test suite something concrete to pass in.
package target

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ABIKind selects which internal/abi.Classifier a Description maps to.
// The zero value is X86_64 so a bare Description{} defaults sensibly.
type ABIKind int

const (
	X86_64 ABIKind = iota
	AArch64AAPCS
	Win64
)

func (k ABIKind) String() string {
	switch k {
	case AArch64AAPCS:
		return "aarch64-aapcs"
	case Win64:
		return "win64"
	default:
		return "x86_64-sysv"
	}
}

// CIntWidths holds the bit width of every standard C integer rank, char
// through long long, plus whether plain char is unsigned on this target
// (spec.md §4.7 "CInteger consults the target's C
// integer byte-width and default sign").
type CIntWidths struct {
	CharBits     int  `yaml:"char_bits"`
	ShortBits    int  `yaml:"short_bits"`
	IntBits      int  `yaml:"int_bits"`
	LongBits     int  `yaml:"long_bits"`
	LongLongBits int  `yaml:"long_long_bits"`
	CharUnsigned bool `yaml:"char_unsigned"`
}

// Description is everything spec.md §6's "Target description" interface
// promises: it never changes after the driver builds or loads one. Within
// the core only internal/llvmgen reads it (cmd/adeptc only builds or loads
// one); internal/resolve, internal/lower and internal/abi never see it.
type Description struct {
	Name string `yaml:"name"`

	ABI ABIKind `yaml:"-"`
	// ABIName mirrors ABI as a string for YAML round-tripping; LoadYAML
	// parses it into ABI after Unmarshal.
	ABIName string `yaml:"abi"`

	CInt CIntWidths `yaml:"c_int"`

	PointerBits  int `yaml:"pointer_bits"`
	PointerAlign int `yaml:"pointer_align"`

	// PromoteVariadicFloat mirrors spec.md §4.8 "Variadic promotion...
	// if it is f32 promote to f64" — true on every target this core
	// knows about, but kept as a field rather than hardcoded since it is
	// part of the externally-supplied ABI contract.
	PromoteVariadicFloat bool `yaml:"promote_variadic_float"`

	// OverflowPanicSymbol names the `fn() -> !` thunk
	// internal/llvmgen's checked-arithmetic lowering branches to on
	// overflow (spec.md §9 "Overflow panic symbol... its ABI is
	// fn() -> !").
	OverflowPanicSymbol string `yaml:"overflow_panic_symbol"`
}

const defaultOverflowPanicSymbol = "__adeptc_overflow_panic"

// X86_64SysV is the reference target: LP64, 8-byte pointers, 32-bit int.
func X86_64SysV() *Description {
	return &Description{
		Name: "x86_64-sysv",
		ABI:  X86_64,
		CInt: CIntWidths{
			CharBits: 8, ShortBits: 16, IntBits: 32, LongBits: 64, LongLongBits: 64,
		},
		PointerBits:          64,
		PointerAlign:         8,
		PromoteVariadicFloat: true,
		OverflowPanicSymbol:  defaultOverflowPanicSymbol,
	}
}

// AArch64 is the reference AAPCS64 target: same LP64 integer widths as
// SysV, different ABI classifier (internal/abi.AArch64).
func AArch64() *Description {
	d := X86_64SysV()
	d.Name = "aarch64-aapcs"
	d.ABI = AArch64AAPCS
	return d
}

// Win64Target is the reference Windows x64 target: LLP64, so `long` is
// 32 bits unlike the two Unix-family targets above.
func Win64Target() *Description {
	return &Description{
		Name: "win64",
		ABI:  Win64,
		CInt: CIntWidths{
			CharBits: 8, ShortBits: 16, IntBits: 32, LongBits: 32, LongLongBits: 64,
		},
		PointerBits:          64,
		PointerAlign:         8,
		PromoteVariadicFloat: true,
		OverflowPanicSymbol:  defaultOverflowPanicSymbol,
	}
}

// LoadYAML reads a Description from a YAML fixture, for targets other
// than the three built-ins above (spec.md §6 lets the driver supply an
// arbitrary target description; this core only needs to consume one).
func LoadYAML(path string) (*Description, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("target: failed to read %q: %w", path, err)
	}

	d := &Description{}
	if err := yaml.Unmarshal(data, d); err != nil {
		return nil, fmt.Errorf("target: failed to parse YAML %q: %w", path, err)
	}

	switch d.ABIName {
	case "", "x86_64-sysv", "x86_64", "sysv":
		d.ABI = X86_64
	case "aarch64-aapcs", "aarch64", "aapcs":
		d.ABI = AArch64AAPCS
	case "win64":
		d.ABI = Win64
	default:
		return nil, fmt.Errorf("target: %q: unrecognized abi %q", path, d.ABIName)
	}

	if d.Name == "" {
		return nil, fmt.Errorf("target: %q: missing required field: name", path)
	}
	if d.CInt.IntBits == 0 {
		return nil, fmt.Errorf("target: %q: missing required field: c_int.int_bits", path)
	}
	if d.PointerBits == 0 {
		return nil, fmt.Errorf("target: %q: missing required field: pointer_bits", path)
	}
	if d.OverflowPanicSymbol == "" {
		d.OverflowPanicSymbol = defaultOverflowPanicSymbol
	}

	return d, nil
}
