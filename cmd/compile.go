package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/sklang/formatter"
	"github.com/gnolang/sklang/internal/diag"
	"github.com/gnolang/sklang/pattern"
	"github.com/gnolang/sklang/types"
)

var compileDump bool

var compileCmd = &cobra.Command{
	Use:   "compile [patterns...]",
	Short: "Compile patterns and print their canonical form",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return compilePatterns(cmd.OutOrStdout(), logger, args, compileDump)
	},
}

func init() {
	compileCmd.Flags().BoolVar(&compileDump, "dump", false, "Also print the pattern tree")
}

// compilePatterns prints the canonical form of every pattern, followed by
// its warnings. Patterns that fail to compile are reported the same way as
// script diagnostics, with the pattern as the source line.
func compilePatterns(w io.Writer, logger *zap.Logger, patterns []string, dump bool) error {
	tr, _ := types.NewDefaultRegistry()
	failed := 0
	for i, src := range patterns {
		name := fmt.Sprintf("pattern #%d", i+1)
		source := diag.NewSourceCode([]byte(src))

		c := pattern.NewCompiler(tr, logger)
		node, err := c.Compile(src)
		if err != nil {
			failed++
			d := diag.FromError(name, 1, 1, err)
			d.End = d.Start
			fmt.Fprint(w, formatter.GenerateFormattedIssue([]diag.Diagnostic{d}, source))
			continue
		}

		fmt.Fprintln(w, node.String())
		if dump {
			fmt.Fprintln(w, pattern.Dump(node))
		}
		if warnings := c.Warnings(); len(warnings) > 0 {
			fmt.Fprint(w, formatter.GenerateFormattedIssue(warningDiagnostics(name, warnings), source))
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d patterns failed to compile", failed, len(patterns))
	}
	return nil
}

func warningDiagnostics(name string, warnings []pattern.Warning) []diag.Diagnostic {
	out := make([]diag.Diagnostic, 0, len(warnings))
	for _, warning := range warnings {
		pos := diag.Position{Line: 1, Column: warning.Pos + 1}
		out = append(out, diag.Diagnostic{
			Rule:     diag.RulePattern,
			Severity: diag.SeverityWarning,
			Filename: name,
			Message:  warning.Message,
			Start:    pos,
			End:      pos,
		})
	}
	return out
}
