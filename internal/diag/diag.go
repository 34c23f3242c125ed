// Package diag provides the compiler's diagnostic taxonomy and sinks.
// Errors are surfaced, not recovered, at task boundaries (spec.md §7): a
// task either returns Ok(output) or a *Diagnostic. Warnings are pushed into
// a separate sink and never halt compilation.
package diag

import (
	"fmt"

	"adeptc/internal/sourcemap"
)

// Code is a short, stable identifier for a diagnostic kind, grouped by
// compiler phase the way sunholo-data-ailang's internal/errors package
// groups PAR###/MOD###/LDR### codes.
type Code string

// Lex/preprocessor phase (spec.md §4.1).
const (
	CodeUnterminatedComment        Code = "LEX001"
	CodeUnterminatedCharConst      Code = "LEX002"
	CodeUnterminatedStringLiteral  Code = "LEX003"
	CodeUnterminatedHeaderName     Code = "LEX004"
	CodeBadEscapeSequence          Code = "LEX005"
	CodeBadEscapedCodepoint        Code = "LEX006"
	CodeUnsupportedPragma          Code = "LEX007"
	CodeCannotConcatTokens         Code = "LEX008"
	CodeExpectedEOF                Code = "LEX009"
	CodeBadInclude                 Code = "LEX010"
	CodeErrorDirective             Code = "LEX011"
	CodeUniversalCharNameUnsupport Code = "LEX012"
	CodeUnrecognizedSymbol         Code = "LEX013"
)

// C parser phase (spec.md §4.2).
const (
	CodeExpectedDeclaration    Code = "CPAR001"
	CodeExpectedSemicolon      Code = "CPAR002"
	CodeExpectedTypeOrMemberDL Code = "CPAR003"
	CodeExpectedMemberDecl     Code = "CPAR004"
	CodeNamespaceNotAllowed    Code = "CPAR005"
	CodeParseMisc              Code = "CPAR006"
	CodeParseMiscGot            Code = "CPAR007"
)

// Adept parser phase.
const (
	CodeAdeptUnexpectedToken Code = "APAR001"
	CodeAdeptExpected        Code = "APAR002"
)

// Semantic resolver phase (spec.md §4.6).
const (
	CodeUndeclaredVariable          Code = "RES001"
	CodeUndeclaredType              Code = "RES002"
	CodeAmbiguousType                Code = "RES003"
	CodeAmbiguousGlobal              Code = "RES004"
	CodeAmbiguousHelperExpr          Code = "RES005"
	CodeAmbiguousSymbol              Code = "RES006"
	CodeFailedToFindFunction         Code = "RES007"
	CodeNotEnoughArguments           Code = "RES008"
	CodeTooManyArguments             Code = "RES009"
	CodeBadArgumentType              Code = "RES010"
	CodeIncompatibleBinaryOperator   Code = "RES011"
	CodeCannotAssignValueOfType      Code = "RES012"
	CodeCannotMutate                 Code = "RES013"
	CodeCannotReturnValueOfType      Code = "RES014"
	CodeMustInitializeVariable       Code = "RES015"
	CodeDivideByZero                 Code = "RES016"
	CodeShiftByNegative              Code = "RES017"
	CodeShiftTooLarge                Code = "RES018"
	CodeRecursiveTypeAlias           Code = "RES019"
	CodeDuplicateTypeName            Code = "RES020"
	CodeDuplicateImplementationName Code = "RES021"
	CodeConstraintsNotSatisfied     Code = "RES022"
	CodeStringTypeNotDefined        Code = "RES023"
	CodeUndeterminedCharLiteral     Code = "RES024"
	CodePolymorphError              Code = "RES025"
	CodeCannotFit                   Code = "RES026"
	CodeUnknownLabel                Code = "RES027"
	CodeBreakOutsideLoop            Code = "RES028"
	CodeContinueOutsideLoop         Code = "RES029"
	CodeCannotConformToBool         Code = "RES030"
	CodeDerefNonPointer             Code = "RES031"
	CodePhiUnifyFailed              Code = "RES032"
)

// IR lowering phase (spec.md §4.7).
const (
	CodeUnsupportedCast Code = "LOW001"
	CodeIsPatternOnNonTaggedUnion Code = "LOW002"
	CodeInterpreterSyscallInNative Code = "LOW003"
)

// ABI / backend phase (spec.md §4.8).
const (
	CodeUnsupportedInAlloca Code = "ABI001"
	CodeArityMismatch       Code = "ABI002"
)

// Internal compiler errors (spec.md §7 "Panics/ICEs").
const CodeICE Code = "ICE000"

// Diagnostic is a single error or warning with a code, message, and Source.
type Diagnostic struct {
	Code    Code
	Message string
	Source  sourcemap.Source
	Warning bool
}

func (d *Diagnostic) Error() string {
	kind := "error"
	if d.Warning {
		kind = "warning"
	}
	return fmt.Sprintf("%s[%s]: %s (%s)", kind, d.Code, d.Message, d.Source)
}

// New builds an error-severity diagnostic.
func New(code Code, src sourcemap.Source, format string, args ...any) *Diagnostic {
	return &Diagnostic{Code: code, Message: fmt.Sprintf(format, args...), Source: src}
}

// Warn builds a warning-severity diagnostic.
func Warn(code Code, src sourcemap.Source, format string, args ...any) *Diagnostic {
	return &Diagnostic{Code: code, Message: fmt.Sprintf(format, args...), Source: src, Warning: true}
}

// ICE builds an internal-compiler-error diagnostic for an invariant
// violation (e.g. a non-UnaliasedType reaching IR lowering, a PHI with zero
// incoming edges). ICEs must never be silently masked.
func ICE(src sourcemap.Source, format string, args ...any) *Diagnostic {
	return &Diagnostic{Code: CodeICE, Message: fmt.Sprintf(format, args...), Source: src}
}

// Sink collects diagnostics. The zero Sink is ready to use; it is not safe
// for concurrent use — use ParallelSink for that (see sink_parallel.go).
type Sink struct {
	errors   []*Diagnostic
	warnings []*Diagnostic
}

// Report appends d to the sink, routing by its Warning flag.
func (s *Sink) Report(d *Diagnostic) {
	if d == nil {
		return
	}
	if d.Warning {
		s.warnings = append(s.warnings, d)
	} else {
		s.errors = append(s.errors, d)
	}
}

// Errors returns the accumulated error-severity diagnostics.
func (s *Sink) Errors() []*Diagnostic { return s.errors }

// Warnings returns the accumulated warning-severity diagnostics.
func (s *Sink) Warnings() []*Diagnostic { return s.warnings }

// HasErrors reports whether any error-severity diagnostic was reported.
func (s *Sink) HasErrors() bool { return len(s.errors) > 0 }

// Reset empties both buffers, keeping their capacity.
func (s *Sink) Reset() {
	s.errors = s.errors[:0]
	s.warnings = s.warnings[:0]
}
