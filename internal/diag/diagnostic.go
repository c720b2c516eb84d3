package diag

import "fmt"

// Stage identifies which compiler phase produced the diagnostic.
type Stage string

const (
	StageParser    Stage = "parser"
	StageTypeCheck Stage = "typecheck"
	StageCompile   Stage = "compile"
)

// Severity captures how impactful the diagnostic is.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Span is a half-open byte range [Start, End) into the source buffer.
type Span struct {
	Start int
	End   int
}

// Diagnostic is a compiler diagnostic surfaced to end-users. Its
// rendered form is part of the compiler's contract: parse errors are
// reported by byte position, type errors by byte span, and lowering
// errors (invariant violations after a successful check) by message
// alone.
type Diagnostic struct {
	Stage    Stage
	Severity Severity
	Message  string
	Span     Span
}

// Error renders the diagnostic in the stage's canonical format.
func (d Diagnostic) Error() string {
	switch d.Stage {
	case StageParser:
		return fmt.Sprintf("Parse error at position %d: %s", d.Span.Start, d.Message)
	case StageTypeCheck:
		return fmt.Sprintf("Type error at %d:%d: %s", d.Span.Start, d.Span.End, d.Message)
	default:
		return d.Message
	}
}

// New constructs an error-severity diagnostic.
func New(stage Stage, msg string, start, end int) Diagnostic {
	return Diagnostic{
		Stage:    stage,
		Severity: SeverityError,
		Message:  msg,
		Span:     Span{Start: start, End: end},
	}
}
