// Package diag holds the diagnostic record produced when checking scripts
// and consumed by the formatter and the command line.
package diag

import (
	"errors"
	"os"
	"strings"

	"github.com/gnolang/sklang/errs"
)

// Severity is how serious a diagnostic is.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "ERROR"
	case SeverityWarning:
		return "WARNING"
	case SeverityInfo:
		return "INFO"
	}
	return "UNKNOWN"
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(s.String())), nil
}

// Position is a 1-based line and column in a file.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Diagnostic is a problem found in a script.
type Diagnostic struct {
	Rule     string   `json:"rule"`
	Severity Severity `json:"severity"`
	Filename string   `json:"filename"`
	Message  string   `json:"message"`
	Note     string   `json:"note,omitempty"`
	Start    Position `json:"start"`
	End      Position `json:"end"`
}

// Rule names used for diagnostics. They are derived from the error kind.
const (
	RuleMalformed = "malformed-input"
	RuleNoMatch   = "no-match"
	RuleSemantic  = "semantic-error"
	RuleInternal  = "internal-error"
	RulePattern   = "pattern-warning"
)

// RuleFor returns the rule name for an error kind.
func RuleFor(k errs.Kind) string {
	switch k {
	case errs.MalformedInput:
		return RuleMalformed
	case errs.NoMatch:
		return RuleNoMatch
	case errs.SemanticError:
		return RuleSemantic
	}
	return RuleInternal
}

// FromError converts a resolver error raised on one line into a
// diagnostic. column is the 1-based column where the resolved text starts
// in that line; the error position is added to it. The underline spans the
// offending text.
func FromError(filename string, line, column int, err error) Diagnostic {
	d := Diagnostic{
		Rule:     RuleFor(errs.KindOf(err)),
		Severity: SeverityError,
		Filename: filename,
		Message:  err.Error(),
		Start:    Position{Line: line, Column: column},
		End:      Position{Line: line, Column: column},
	}
	var e *errs.Error
	if errors.As(err, &e) {
		d.Message = e.Message
		if d.Message == "" {
			d.Message = e.Kind.String()
		}
		if e.Err != nil {
			d.Note = e.Err.Error()
		}
		d.Start.Column = column + e.Pos
		d.End.Column = d.Start.Column + max(len(e.Text)-1, 0)
	}
	return d
}

// SourceCode is the content of a script split into lines.
type SourceCode struct {
	Lines []string
}

// NewSourceCode splits src into lines.
func NewSourceCode(src []byte) *SourceCode {
	return &SourceCode{Lines: strings.Split(string(src), "\n")}
}

// ReadSourceCode reads a file and splits it into lines.
func ReadSourceCode(filename string) (*SourceCode, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return NewSourceCode(content), nil
}
