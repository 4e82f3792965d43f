package diag

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gnolang/sklang/errs"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Diagnostic
	}{
		{
			name: "located semantic error",
			err:  errs.Semantic(`"a"`, 4, "strings can't be added"),
			want: Diagnostic{
				Rule: RuleSemantic, Filename: "f.sk", Message: "strings can't be added",
				Start: Position{Line: 2, Column: 7}, End: Position{Line: 2, Column: 9},
			},
		},
		{
			name: "wrapped no match",
			err:  fmt.Errorf("line: %w", errs.NoMatchf("x", 0, "")),
			want: Diagnostic{
				Rule: RuleNoMatch, Filename: "f.sk", Message: "no match",
				Start: Position{Line: 2, Column: 3}, End: Position{Line: 2, Column: 3},
			},
		},
		{
			name: "internal with cause",
			err:  errs.Internalf(errors.New("nil map"), "", 0, "syntax failed"),
			want: Diagnostic{
				Rule: RuleInternal, Filename: "f.sk", Message: "syntax failed", Note: "nil map",
				Start: Position{Line: 2, Column: 3}, End: Position{Line: 2, Column: 3},
			},
		},
		{
			name: "plain error",
			err:  errors.New("disk on fire"),
			want: Diagnostic{
				Rule: RuleInternal, Filename: "f.sk", Message: "disk on fire",
				Start: Position{Line: 2, Column: 3}, End: Position{Line: 2, Column: 3},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromError("f.sk", 2, 3, tt.err))
		})
	}
}

func TestSeverity(t *testing.T) {
	assert.Equal(t, "ERROR", SeverityError.String())
	assert.Equal(t, "WARNING", SeverityWarning.String())
	assert.Equal(t, "INFO", SeverityInfo.String())

	text, err := SeverityWarning.MarshalText()
	assert.NoError(t, err)
	assert.Equal(t, "warning", string(text))
}

func TestNewSourceCode(t *testing.T) {
	src := NewSourceCode([]byte("a\nb\n"))
	assert.Equal(t, []string{"a", "b", ""}, src.Lines)
}
