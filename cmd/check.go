package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/sklang/formatter"
	"github.com/gnolang/sklang/internal/diag"
	"github.com/gnolang/sklang/loader"
)

var (
	checkJSONOutput bool
	outPath         string
	noProgress      bool
)

var checkCmd = &cobra.Command{
	Use:   "check [paths...]",
	Short: "Resolve every statement of the given scripts",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		engine, err := newEngine()
		if err != nil {
			return fmt.Errorf("initializing engine: %w", err)
		}

		var progress io.Writer = cmd.ErrOrStderr()
		if noProgress {
			progress = nil
		}
		count, err := runCheck(ctx, cmd.OutOrStdout(), progress, engine, args, checkJSONOutput, outPath)
		if err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("found %d problem(s)", count)
		}
		return nil
	},
}

func init() {
	checkCmd.Flags().BoolVar(&checkJSONOutput, "json", false, "Output diagnostics in JSON format")
	checkCmd.Flags().StringVarP(&outPath, "output", "o", "", "Output path (when using JSON)")
	checkCmd.Flags().BoolVar(&noProgress, "no-progress", false, "Don't draw a progress bar for directories")
}

// runCheck checks paths, prints the diagnostics and returns their count.
func runCheck(
	ctx context.Context,
	w io.Writer,
	progress io.Writer,
	checker loader.Checker,
	paths []string,
	isJSON bool,
	jsonOutput string,
) (int, error) {
	diagnostics, err := loader.ProcessFiles(ctx, logger, checker, paths, progress)
	if err != nil {
		return 0, fmt.Errorf("error processing files: %w", err)
	}
	if err := printDiagnostics(w, diagnostics, isJSON, jsonOutput); err != nil {
		return 0, err
	}
	return len(diagnostics), nil
}

func printDiagnostics(w io.Writer, diagnostics []diag.Diagnostic, isJSON bool, jsonOutput string) error {
	byFile := make(map[string][]diag.Diagnostic)
	for _, d := range diagnostics {
		byFile[d.Filename] = append(byFile[d.Filename], d)
	}

	if isJSON {
		d, err := json.Marshal(byFile)
		if err != nil {
			return fmt.Errorf("marshalling diagnostics to JSON: %w", err)
		}
		if jsonOutput == "" {
			fmt.Fprintln(w, string(d))
			return nil
		}
		if err := os.WriteFile(jsonOutput, d, 0o644); err != nil {
			return fmt.Errorf("writing JSON output file: %w", err)
		}
		return nil
	}

	files := make([]string, 0, len(byFile))
	for filename := range byFile {
		files = append(files, filename)
	}
	sort.Strings(files)

	for _, filename := range files {
		source, err := diag.ReadSourceCode(filename)
		if err != nil {
			// still print the messages, without snippets
			logger.Warn("Error reading source file", zap.String("file", filename), zap.Error(err))
		}
		fmt.Fprint(w, formatter.GenerateFormattedIssue(byFile[filename], source))
	}
	return nil
}
