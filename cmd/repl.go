package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/gnolang/sklang/lang"
	"github.com/gnolang/sklang/loader"
)

const (
	historyFile = ".sklang_history"
	promptMain  = "sk> "
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Resolve statements interactively",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newEngine()
		if err != nil {
			return fmt.Errorf("initializing engine: %w", err)
		}
		return runRepl(cmd.OutOrStdout(), engine)
	},
}

func runRepl(out io.Writer, engine *loader.Engine) error {
	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	fmt.Fprintf(out, "resolving statements as %s, type :help for commands\n", engine.Expected())
	for {
		line, err := ln.Prompt(promptMain)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			fmt.Fprintln(out)
			return nil
		}
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ln.AppendHistory(line)

		if strings.HasPrefix(line, ":") {
			if quit := replCommand(out, engine, line); quit {
				return nil
			}
			continue
		}

		result, err := evalLine(engine, line)
		if err != nil {
			fmt.Fprintln(out, color.RedString("%v", err))
			continue
		}
		fmt.Fprintln(out, result)
	}
}

// replCommand runs a ":" command and reports whether the session ends.
func replCommand(out io.Writer, engine *loader.Engine, line string) bool {
	switch strings.ToLower(line) {
	case ":quit", ":q":
		return true
	case ":syntaxes":
		for _, info := range engine.Syntaxes().Candidates() {
			fmt.Fprintf(out, "%-12s %-10s priority %d\n", info.Name, info.PatternType(), info.Priority)
		}
	case ":recent":
		for _, info := range engine.Syntaxes().Recent() {
			fmt.Fprintln(out, info.Name)
		}
	case ":help":
		fmt.Fprintln(out, ":syntaxes  list the enabled syntaxes in resolution order")
		fmt.Fprintln(out, ":recent    list the recently successful syntaxes")
		fmt.Fprintln(out, ":quit      leave")
	default:
		fmt.Fprintln(out, "unknown command. Type :help for the list.")
	}
	return false
}

// evalLine resolves one statement and describes the result.
func evalLine(engine *loader.Engine, line string) (string, error) {
	stmt, ok := loader.ParseStatement(line)
	if !ok {
		return "", errors.New("nothing to resolve")
	}
	expr, err := engine.Resolve(stmt)
	if err != nil {
		return "", err
	}
	return describe(expr), nil
}

func describe(expr lang.Expression) string {
	typeName := expr.ReturnType().Name()
	if !expr.IsSingle() {
		typeName = expr.ReturnType().Plural()
	}
	kind := "expression"
	if _, ok := expr.(lang.Literal); ok {
		kind = "literal"
	}
	return fmt.Sprintf("%s %s", color.CyanString(expr.String()), color.HiBlackString("(%s %s)", typeName, kind))
}
