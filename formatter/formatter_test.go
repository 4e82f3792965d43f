package formatter

import (
	"errors"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/gnolang/sklang/errs"
	"github.com/gnolang/sklang/internal/diag"
)

func init() {
	color.NoColor = true
}

func TestGenerateFormattedIssue(t *testing.T) {
	code := &diag.SourceCode{
		Lines: []string{
			"# prices",
			"if {total} > 10:",
			"    \"a\" > 1",
			"    nonsense here",
		},
	}

	diagnostics := []diag.Diagnostic{
		{
			Rule:     diag.RuleSemantic,
			Filename: "test.sk",
			Start:    diag.Position{Line: 3, Column: 5},
			End:      diag.Position{Line: 3, Column: 11},
			Message:  "strings and numbers can't be compared",
		},
		{
			Rule:     diag.RuleNoMatch,
			Filename: "test.sk",
			Start:    diag.Position{Line: 4, Column: 5},
			End:      diag.Position{Line: 4, Column: 17},
			Message:  "can't understand this expression as objects",
		},
	}

	expected := `error: semantic-error
 --> test.sk:3:5
  |
3 | "a" > 1
  | ~~~~~~~
  = strings and numbers can't be compared

error: no-match
 --> test.sk:4:5
  |
4 | nonsense here
  | ~~~~~~~~~~~~~
  = can't understand this expression as objects

`
	assert.Equal(t, expected, GenerateFormattedIssue(diagnostics, code))
}

func TestFormatWithTabsAndWideLineNumbers(t *testing.T) {
	lines := make([]string, 12)
	lines[11] = "\tx +"
	code := &diag.SourceCode{Lines: lines}

	d := diag.Diagnostic{
		Rule:     diag.RuleNoMatch,
		Severity: diag.SeverityWarning,
		Filename: "wide.sk",
		Start:    diag.Position{Line: 12, Column: 2},
		End:      diag.Position{Line: 12, Column: 4},
		Message:  "incomplete",
		Note:     "an operand is missing",
	}

	expected := `warning: no-match
  --> wide.sk:12:2
   |
12 | x +
   | ~~~
   = incomplete
   = note: an operand is missing

`
	assert.Equal(t, expected, GenerateFormattedIssue([]diag.Diagnostic{d}, code))
}

func TestFormatInternalError(t *testing.T) {
	code := diag.NewSourceCode([]byte("explode 1\n"))
	d := diag.FromError("boom.sk", 1, 1, errs.Internalf(errors.New("boom"), "explode 1", 0, "syntax explode failed to initialize"))

	expected := `error: internal-error
 --> boom.sk:1:1
  |
1 | explode 1
  | ~~~~~~~~~
  = syntax explode failed to initialize
  = note: boom
  = note: this is a bug in a registered syntax, not in the script

`
	assert.Equal(t, expected, GenerateFormattedIssue([]diag.Diagnostic{d}, code))
}

func TestFormatOutOfRange(t *testing.T) {
	d := diag.Diagnostic{
		Rule:     diag.RuleMalformed,
		Filename: "gone.sk",
		Start:    diag.Position{Line: 5, Column: 1},
		End:      diag.Position{Line: 5, Column: 1},
		Message:  "file changed",
	}
	expected := `error: malformed-input
 --> gone.sk:5:1
  |
  | file changed

`
	assert.Equal(t, expected, GenerateFormattedIssue([]diag.Diagnostic{d}, nil))
}

func TestCalculateVisualColumn(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		column int
		want   int
	}{
		{"plain", "abc", 3, 2},
		{"leading tab", "\tabc", 2, 8},
		{"tab after text", "ab\tc", 4, 8},
		{"negative", "abc", -1, 0},
		{"past end", "ab", 10, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, calculateVisualColumn(tt.line, tt.column))
		})
	}
}

func TestFindCommonIndent(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  string
	}{
		{"shared spaces", []string{"    a", "      b"}, "    "},
		{"blank lines ignored", []string{"  a", "", "  b"}, "  "},
		{"no indent", []string{"a", "  b"}, ""},
		{"tabs", []string{"\t\ta", "\tb"}, "\t"},
		{"empty", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, findCommonIndent(tt.lines))
		})
	}
}
