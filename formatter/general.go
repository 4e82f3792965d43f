package formatter

// GeneralIssueFormatter renders a diagnostic with its source line.
type GeneralIssueFormatter struct{}

func (f *GeneralIssueFormatter) IssueTemplate() string {
	return `{{header .Rule .Severity .MaxLineNumWidth .Filename .StartLine .StartColumn -}}
{{snippet .SnippetLines .StartLine .EndLine .MaxLineNumWidth .CommonIndent .Padding -}}
{{underlineAndMessage .Message .Padding .StartLine .EndLine .StartColumn .EndColumn .SnippetLines .CommonIndent -}}
{{note .Note .Padding}}
`
}

// InternalErrorFormatter renders an internal error. These come from a
// syntax that failed unexpectedly rather than from the script.
type InternalErrorFormatter struct{}

func (f *InternalErrorFormatter) IssueTemplate() string {
	return `{{header .Rule .Severity .MaxLineNumWidth .Filename .StartLine .StartColumn -}}
{{snippet .SnippetLines .StartLine .EndLine .MaxLineNumWidth .CommonIndent .Padding -}}
{{underlineAndMessage .Message .Padding .StartLine .EndLine .StartColumn .EndColumn .SnippetLines .CommonIndent -}}
{{note .Note .Padding -}}
{{note "this is a bug in a registered syntax, not in the script" .Padding}}
`
}
