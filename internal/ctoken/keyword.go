package ctoken

// Keyword enumerates the full C23 keyword set, including the
// underscore-spelled legacy forms (`_Bool`, `_Alignas`, `_Static_assert`,
// ...) that C23 also gives non-underscore spellings to (spec.md §4.1
// "classifies identifiers against the C23 keyword table").
type Keyword int

const (
	KwAuto Keyword = iota
	KwBreak
	KwCase
	KwChar
	KwConst
	KwContinue
	KwDefault
	KwDo
	KwDouble
	KwElse
	KwEnum
	KwExtern
	KwFloat
	KwFor
	KwGoto
	KwIf
	KwInline
	KwInt
	KwLong
	KwRegister
	KwRestrict
	KwReturn
	KwShort
	KwSigned
	KwSizeof
	KwStatic
	KwStruct
	KwSwitch
	KwTypedef
	KwUnion
	KwUnsigned
	KwVoid
	KwVolatile
	KwWhile

	// C99/C11/C17 additions.
	KwBool
	KwComplex
	KwImaginary
	KwAlignas
	KwAlignof
	KwAtomic
	KwGeneric
	KwNoreturn
	KwStaticAssert
	KwThreadLocal

	// C23 additions.
	KwTrue
	KwFalse
	KwNullptr
	KwTypeof
	KwTypeofUnqual
	KwConstexpr
	KwBitInt
	KwDecimal32
	KwDecimal64
	KwDecimal128
)

// keywords maps every accepted spelling (including the underscore forms) to
// its Keyword constant. C23 gives `bool`/`static_assert`/`alignas`/
// `alignof`/`thread_local` as non-underscore spellings alongside the
// original `_Bool`/`_Static_assert`/`_Alignas`/`_Alignof`/`_Thread_local`;
// both resolve to the same Keyword so downstream code never needs to care
// which spelling was used.
var keywords = map[string]Keyword{
	"auto": KwAuto, "break": KwBreak, "case": KwCase, "char": KwChar,
	"const": KwConst, "continue": KwContinue, "default": KwDefault, "do": KwDo,
	"double": KwDouble, "else": KwElse, "enum": KwEnum, "extern": KwExtern,
	"float": KwFloat, "for": KwFor, "goto": KwGoto, "if": KwIf,
	"inline": KwInline, "int": KwInt, "long": KwLong, "register": KwRegister,
	"restrict": KwRestrict, "return": KwReturn, "short": KwShort,
	"signed": KwSigned, "sizeof": KwSizeof, "static": KwStatic,
	"struct": KwStruct, "switch": KwSwitch, "typedef": KwTypedef,
	"union": KwUnion, "unsigned": KwUnsigned, "void": KwVoid,
	"volatile": KwVolatile, "while": KwWhile,

	"_Bool": KwBool, "bool": KwBool,
	"_Complex": KwComplex, "_Imaginary": KwImaginary,
	"_Alignas": KwAlignas, "alignas": KwAlignas,
	"_Alignof": KwAlignof, "alignof": KwAlignof,
	"_Atomic": KwAtomic, "_Generic": KwGeneric, "_Noreturn": KwNoreturn,
	"_Static_assert": KwStaticAssert, "static_assert": KwStaticAssert,
	"_Thread_local": KwThreadLocal, "thread_local": KwThreadLocal,

	"true": KwTrue, "false": KwFalse, "nullptr": KwNullptr,
	"typeof": KwTypeof, "typeof_unqual": KwTypeofUnqual,
	"constexpr": KwConstexpr, "_BitInt": KwBitInt,
	"_Decimal32": KwDecimal32, "_Decimal64": KwDecimal64, "_Decimal128": KwDecimal128,
}

// LookupKeyword reports whether ident names a C23 keyword, and if so which.
func LookupKeyword(ident string) (Keyword, bool) {
	kw, ok := keywords[ident]
	return kw, ok
}
