// Package formatter renders diagnostics for terminals, with the offending
// source line and an underline below the offending text.
package formatter

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"unicode"

	"github.com/fatih/color"

	"github.com/gnolang/sklang/internal/diag"
)

const tabWidth = 8

var (
	errorStyle   = color.New(color.FgRed, color.Bold)
	warningStyle = color.New(color.FgHiYellow, color.Bold)
	infoStyle    = color.New(color.FgHiCyan, color.Bold)
	ruleStyle    = color.New(color.FgYellow, color.Bold)
	fileStyle    = color.New(color.FgCyan, color.Bold)
	lineStyle    = color.New(color.FgHiBlue, color.Bold)
	messageStyle = color.New(color.FgRed, color.Bold)
	noteStyle    = color.New(color.FgGreen, color.Bold)
)

// issueFormatter provides the template used to render one diagnostic.
type issueFormatter interface {
	IssueTemplate() string
}

func getIssueFormatter(rule string) issueFormatter {
	switch rule {
	case diag.RuleInternal:
		return &InternalErrorFormatter{}
	default:
		return &GeneralIssueFormatter{}
	}
}

// GenerateFormattedIssue renders diagnostics found in source.
func GenerateFormattedIssue(diagnostics []diag.Diagnostic, source *diag.SourceCode) string {
	var builder strings.Builder
	for _, d := range diagnostics {
		builder.WriteString(buildIssue(d, source, getIssueFormatter(d.Rule)))
	}
	return builder.String()
}

// IssueData is the data available to diagnostic templates.
type IssueData struct {
	Severity        string
	Rule            string
	Filename        string
	Padding         string
	StartLine       int
	StartColumn     int
	EndLine         int
	EndColumn       int
	MaxLineNumWidth int
	Message         string
	Note            string
	SnippetLines    []string
	CommonIndent    string
}

var funcMap = template.FuncMap{
	"header":              header,
	"snippet":             codeSnippet,
	"underlineAndMessage": underlineAndMessage,
	"note":                note,
}

func buildIssue(d diag.Diagnostic, source *diag.SourceCode, formatter issueFormatter) string {
	startLine, endLine := d.Start.Line, d.End.Line
	if endLine < startLine {
		endLine = startLine
	}
	maxLineNumWidth := calculateMaxLineNumWidth(endLine)

	var lines []string
	if source != nil {
		lines = source.Lines
	}
	var commonIndent string
	if isValidLineRange(startLine, endLine, lines) {
		commonIndent = findCommonIndent(lines[startLine-1 : endLine])
	}

	data := IssueData{
		Severity:        d.Severity.String(),
		Rule:            d.Rule,
		Filename:        d.Filename,
		StartLine:       startLine,
		StartColumn:     d.Start.Column,
		EndLine:         endLine,
		EndColumn:       d.End.Column,
		Message:         d.Message,
		Note:            d.Note,
		MaxLineNumWidth: maxLineNumWidth,
		Padding:         strings.Repeat(" ", maxLineNumWidth+1),
		CommonIndent:    commonIndent,
		SnippetLines:    lines,
	}

	tmpl := template.Must(template.New("issue").Funcs(funcMap).Parse(formatter.IssueTemplate()))
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Sprintf("Error formatting issue: %v", err)
	}
	return buf.String()
}

func header(rule, severity string, maxLineNumWidth int, filename string, startLine, startColumn int) string {
	var s string
	switch severity {
	case "ERROR":
		s = errorStyle.Sprint("error: ")
	case "WARNING":
		s = warningStyle.Sprint("warning: ")
	default:
		s = infoStyle.Sprint("info: ")
	}
	s += ruleStyle.Sprintf("%s\n", rule)
	s += lineStyle.Sprintf("%s--> ", strings.Repeat(" ", maxLineNumWidth))
	s += fileStyle.Sprintf("%s:%d:%d", filename, startLine, startColumn)
	return s + "\n"
}

func codeSnippet(lines []string, startLine, endLine, maxLineNumWidth int, commonIndent, padding string) string {
	s := lineStyle.Sprintf("%s|\n", padding)
	for i := startLine; i <= endLine; i++ {
		if i-1 < 0 || i-1 >= len(lines) {
			continue
		}
		line := strings.TrimPrefix(lines[i-1], commonIndent)
		s += lineStyle.Sprintf("%*d | ", maxLineNumWidth, i) + line + "\n"
	}
	return s
}

func underlineAndMessage(message, padding string, startLine, endLine, startColumn, endColumn int, lines []string, commonIndent string) string {
	s := lineStyle.Sprintf("%s| ", padding)
	if !isValidLineRange(startLine, endLine, lines) {
		return s + messageStyle.Sprintf("%s\n", message)
	}

	indentWidth := calculateVisualColumn(commonIndent, len(commonIndent)+1)
	start := max(calculateVisualColumn(lines[startLine-1], startColumn)-indentWidth, 0)
	end := calculateVisualColumn(lines[endLine-1], endColumn) - indentWidth
	length := max(end-start+1, 1)

	s += strings.Repeat(" ", start)
	s += messageStyle.Sprintf("%s\n", strings.Repeat("~", length))
	s += lineStyle.Sprintf("%s= ", padding)
	s += messageStyle.Sprintf("%s\n", message)
	return s
}

func note(text, padding string) string {
	if text == "" {
		return ""
	}
	return lineStyle.Sprintf("%s= ", padding) + noteStyle.Sprint("note: ") + text + "\n"
}

func isValidLineRange(startLine, endLine int, lines []string) bool {
	return startLine > 0 &&
		endLine > 0 &&
		startLine <= endLine &&
		startLine <= len(lines) &&
		endLine <= len(lines)
}

func calculateMaxLineNumWidth(endLine int) int {
	return len(fmt.Sprintf("%d", endLine))
}

// calculateVisualColumn returns the visual position of the 1-based byte
// column in line, expanding tabs.
func calculateVisualColumn(line string, column int) int {
	if column < 0 {
		return 0
	}
	visual := 0
	for i, ch := range line {
		if i+1 == column {
			break
		}
		if ch == '\t' {
			visual += tabWidth - (visual % tabWidth)
		} else {
			visual++
		}
	}
	return visual
}

// findCommonIndent returns the leading whitespace shared by all non-blank
// lines.
func findCommonIndent(lines []string) string {
	var indent []rune
	found := false
	for _, line := range lines {
		trimmed := strings.TrimLeftFunc(line, unicode.IsSpace)
		if trimmed == "" {
			continue
		}
		current := []rune(line[:len(line)-len(trimmed)])
		if !found {
			indent, found = current, true
			continue
		}
		indent = commonPrefix(indent, current)
		if len(indent) == 0 {
			break
		}
	}
	return string(indent)
}

func commonPrefix(a, b []rune) []rune {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[:i]
		}
	}
	return a[:n]
}
