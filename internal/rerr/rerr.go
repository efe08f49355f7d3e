// Package rerr defines the translator's error taxonomy (spec.md §7).
//
// The core never returns a partial program: every fallible entry point
// returns (value, error), and every error it can produce is one of the
// three classes below, wrapped with github.com/cockroachdb/errors so a
// caller gets a stack trace and a Class to match against with Is. The
// only panics are programmer-error checks in namer.Name (unknown Role)
// and incremental.RetargetAtomAt/RetargetNegationAt (wrong literal kind
// at the given body index).
package rerr

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Class identifies which of the three §7 error categories an error belongs
// to: schema violations detected only by the translator, configuration
// contradictions from an upstream transformer, and inconsistencies in the
// consumed analysis results.
type Class int

const (
	// SchemaViolation is a contract breach by the caller: an ungrounded
	// variable, a non-record argument where a record is expected, an
	// aggregator body with more than one atom, a mismatched annotation
	// column count.
	SchemaViolation Class = iota
	// ConfigContradiction is an inconsistency between the active config
	// and what a prior transformer was supposed to guarantee (e.g. an
	// incremental head missing its three trailing columns).
	ConfigContradiction
	// AnalysisInconsistency is a mismatch between the AST and the
	// consumed analysis results (e.g. the SCC graph names a relation
	// absent from the program).
	AnalysisInconsistency
)

func (c Class) String() string {
	switch c {
	case SchemaViolation:
		return "schema violation"
	case ConfigContradiction:
		return "configuration contradiction"
	case AnalysisInconsistency:
		return "analysis inconsistency"
	default:
		return "unknown error class"
	}
}

// SourceLoc is a minimal source-location carrier, mirroring the
// src_loc field AstNode exposes in spec.md §3. The zero value means "no
// location available" and is rendered as an empty suffix.
type SourceLoc struct {
	File string
	Line int
	Col  int
}

func (l SourceLoc) String() string {
	if l.File == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Col)
}

// Diagnostic is the concrete error type every translator failure surfaces
// as. Message is the descriptive diagnostic spec.md §7 requires; Loc is
// attached whenever the triggering AST node carries one.
type Diagnostic struct {
	Class   Class
	Message string
	Loc     SourceLoc
	cause   error
}

func (d *Diagnostic) Error() string {
	if loc := d.Loc.String(); loc != "" {
		return fmt.Sprintf("%s: %s (%s)", d.Class, d.Message, loc)
	}
	return fmt.Sprintf("%s: %s", d.Class, d.Message)
}

func (d *Diagnostic) Unwrap() error { return d.cause }

// New builds a Diagnostic without a source location.
func New(class Class, format string, args ...any) error {
	return errors.WithStack(&Diagnostic{Class: class, Message: fmt.Sprintf(format, args...)})
}

// NewAt builds a Diagnostic carrying a source location.
func NewAt(class Class, loc SourceLoc, format string, args ...any) error {
	return errors.WithStack(&Diagnostic{Class: class, Message: fmt.Sprintf(format, args...), Loc: loc})
}

// Wrap attaches class and message context to an existing error, preserving
// it as the Unwrap() cause.
func Wrap(class Class, cause error, format string, args ...any) error {
	return errors.WithStack(&Diagnostic{Class: class, Message: fmt.Sprintf(format, args...), cause: cause})
}

// UngroundedVariable reports a variable referenced before any scan/unpack/
// aggregate introduced it — the C2/C3 contract violation named in §7.
func UngroundedVariable(name string, loc SourceLoc) error {
	return NewAt(SchemaViolation, loc, "ungrounded variable %q", name)
}

// MissingAnnotationColumns reports an incremental head missing its three
// trailing (@iteration, @prev_count, @current_count) columns (§3 invariant
// 5, §7 configuration contradictions).
func MissingAnnotationColumns(relation string) error {
	return New(ConfigContradiction,
		"relation %q is missing incremental annotation columns (@iteration, @prev_count, @current_count)", relation)
}

// UnknownRelation reports an analysis result naming a relation absent from
// the program (§7 analysis result inconsistencies).
func UnknownRelation(relation string) error {
	return New(AnalysisInconsistency, "analysis result references unknown relation %q", relation)
}

// Is reports whether err is (or wraps) a Diagnostic of the given class.
func Is(err error, class Class) bool {
	var d *Diagnostic
	if errors.As(err, &d) {
		return d.Class == class
	}
	return false
}
