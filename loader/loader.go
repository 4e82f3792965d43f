// Package loader checks script files: every statement line is resolved
// against the registered syntaxes and failures become diagnostics.
package loader

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/gnolang/sklang/internal/config"
	"github.com/gnolang/sklang/internal/diag"
	"github.com/gnolang/sklang/lang"
	"github.com/gnolang/sklang/parser"
	"github.com/gnolang/sklang/syntax"
	"github.com/gnolang/sklang/syntaxes"
	"github.com/gnolang/sklang/types"
)

// Checker checks scripts.
type Checker interface {
	Run(filename string) ([]diag.Diagnostic, error)
	RunSource(filename string, source []byte) ([]diag.Diagnostic, error)
	HasExtension(path string) bool
}

// Engine resolves the statements of scripts with the built-in syntaxes.
type Engine struct {
	config   config.Config
	logger   *zap.Logger
	types    *types.Registry
	syntaxes *syntax.Registry
	parser   *parser.Parser
	expected types.PatternType
}

var _ Checker = (*Engine)(nil)

// New creates an engine from a configuration. Syntaxes named in the
// configuration must exist.
func New(cfg config.Config, logger *zap.Logger) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	tr, _ := types.NewDefaultRegistry()
	sr := syntax.NewRegistry(tr, logger)
	if err := syntaxes.Register(sr); err != nil {
		return nil, fmt.Errorf("registering built-in syntaxes: %w", err)
	}
	for _, name := range cfg.Disabled {
		if !sr.Disable(name) {
			return nil, fmt.Errorf("can't disable unknown syntax %q", name)
		}
	}
	for name, priority := range cfg.Priorities {
		if !sr.SetPriority(name, priority) {
			return nil, fmt.Errorf("can't set the priority of unknown syntax %q", name)
		}
	}
	expected, ok := tr.ResolveTypeName(cfg.ExpectedType)
	if !ok {
		return nil, fmt.Errorf("unknown expected type %q", cfg.ExpectedType)
	}

	return &Engine{
		config:   cfg,
		logger:   logger,
		types:    tr,
		syntaxes: sr,
		parser:   parser.New(tr, sr, parser.WithLogger(logger), parser.WithMaxDepth(cfg.MaxDepth)),
		expected: expected,
	}, nil
}

// Parser returns the resolver used by the engine.
func (e *Engine) Parser() *parser.Parser { return e.parser }

// Syntaxes returns the syntax registry used by the engine.
func (e *Engine) Syntaxes() *syntax.Registry { return e.syntaxes }

// Expected returns the type statement lines are resolved against.
func (e *Engine) Expected() types.PatternType { return e.expected }

// HasExtension reports whether path is a script file.
func (e *Engine) HasExtension(path string) bool { return e.config.HasExtension(path) }

// Run checks a script file.
func (e *Engine) Run(filename string) ([]diag.Diagnostic, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading file %s: %w", filename, err)
	}
	return e.RunSource(filename, src)
}

// RunSource checks script source. filename is only used in diagnostics.
func (e *Engine) RunSource(filename string, source []byte) ([]diag.Diagnostic, error) {
	var diagnostics []diag.Diagnostic
	for i, line := range strings.Split(string(source), "\n") {
		stmt, ok := ParseStatement(line)
		if !ok {
			continue
		}
		if _, err := e.Resolve(stmt); err != nil {
			diagnostics = append(diagnostics, diag.FromError(filename, i+1, stmt.Column, err))
		}
	}
	return diagnostics, nil
}

// Resolve resolves one statement. Conditions must be conditional booleans,
// other statements resolve against the configured expected type.
func (e *Engine) Resolve(stmt Statement) (lang.Expression, error) {
	if stmt.Condition {
		return e.parser.ParseBooleanExpression(stmt.Text, parser.MustBeConditional)
	}
	return e.parser.ParseExpression(stmt.Text, e.expected)
}

// ProcessFiles checks every path and returns the sorted diagnostics.
func ProcessFiles(
	ctx context.Context,
	logger *zap.Logger,
	checker Checker,
	paths []string,
	progress io.Writer,
) ([]diag.Diagnostic, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var all []diag.Diagnostic
	for _, path := range paths {
		diagnostics, err := ProcessPath(ctx, logger, checker, path, progress)
		if err != nil {
			logger.Error("Error processing path", zap.String("path", path), zap.Error(err))
			return nil, err
		}
		all = append(all, diagnostics...)
	}
	Sort(all)
	return all, nil
}

type fileResult struct {
	diagnostics []diag.Diagnostic
	err         error
}

// ProcessPath checks a file, or every script below a directory using one
// worker per CPU. Directory progress is drawn on progress when it is not
// nil. Files that fail to load are logged and skipped.
func ProcessPath(
	ctx context.Context,
	logger *zap.Logger,
	checker Checker,
	path string,
	progress io.Writer,
) ([]diag.Diagnostic, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing %s: %w", path, err)
	}
	if !info.IsDir() {
		if !checker.HasExtension(path) {
			return nil, nil
		}
		return checker.Run(path)
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && checker.HasExtension(p) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking %s: %w", path, err)
	}

	if progress == nil {
		progress = io.Discard
	}
	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetWriter(progress),
		progressbar.OptionSetDescription(path),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))

	results := make(chan fileResult, len(files))
	sem := make(chan struct{}, runtime.NumCPU())
	var wg sync.WaitGroup

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return nil, err
		}
		select {
		case <-ctx.Done():
			wg.Wait()
			return nil, ctx.Err()
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go func(fp string) {
			defer func() {
				<-sem
				wg.Done()
			}()
			diagnostics, err := checker.Run(fp)
			if err != nil {
				logger.Error("Error processing file", zap.String("file", fp), zap.Error(err))
			}
			results <- fileResult{diagnostics: diagnostics, err: err}
			_ = bar.Add(1)
		}(file)
	}
	wg.Wait()
	close(results)
	_ = bar.Finish()

	var all []diag.Diagnostic
	for r := range results {
		if r.err != nil {
			continue
		}
		all = append(all, r.diagnostics...)
	}
	Sort(all)
	return all, nil
}

// Sort orders diagnostics by file, line and column.
func Sort(diagnostics []diag.Diagnostic) {
	sort.SliceStable(diagnostics, func(i, j int) bool {
		a, b := diagnostics[i], diagnostics[j]
		if a.Filename != b.Filename {
			return a.Filename < b.Filename
		}
		if a.Start.Line != b.Start.Line {
			return a.Start.Line < b.Start.Line
		}
		return a.Start.Column < b.Start.Column
	})
}
