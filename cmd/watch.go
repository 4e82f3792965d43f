package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/gnolang/sklang/formatter"
	"github.com/gnolang/sklang/internal/diag"
	"github.com/gnolang/sklang/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dirs...]",
	Short: "Check scripts again whenever they are written",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newEngine()
		if err != nil {
			return fmt.Errorf("initializing engine: %w", err)
		}

		out := cmd.OutOrStdout()
		w, err := watch.New(engine, func(filename string, diagnostics []diag.Diagnostic, err error) {
			if err != nil {
				fmt.Fprintln(out, color.RedString("%s: %v", filename, err))
				return
			}
			if len(diagnostics) == 0 {
				fmt.Fprintln(out, color.GreenString("%s: ok", filename))
				return
			}
			source, _ := diag.ReadSourceCode(filename)
			fmt.Fprint(out, formatter.GenerateFormattedIssue(diagnostics, source))
		}, logger, watch.DefaultDelay)
		if err != nil {
			return err
		}
		if err := w.Start(args...); err != nil {
			return err
		}
		fmt.Fprintf(out, "Watching %d path(s), press Ctrl+C to stop\n", len(args))

		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigc)
		<-sigc
		return w.Stop()
	},
}
