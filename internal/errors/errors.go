// Package errors provides the diagnostic type shared by every compiler
// stage. A diagnostic carries a kind drawn from the process exit-code table,
// a message, and optional marker tokens whose source ranges are highlighted
// when the diagnostic is formatted.
package errors

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/tskoda/go-swiftc/pkg/token"
)

// Kind classifies a diagnostic. The numeric value of a kind is the process
// exit code reported when the diagnostic aborts the compilation.
type Kind int

const (
	KindSuccess Kind = 0

	// KindLexical covers errors raised while tokenizing the source.
	KindLexical Kind = 1

	// KindSyntax covers errors raised by the statement or expression parser.
	KindSyntax Kind = 2

	// KindUndefinedFunction covers calls to undefined functions and
	// variable/function redefinition conflicts at global scope.
	KindUndefinedFunction Kind = 3

	// KindInvalidCall covers arity, label and argument type mismatches in
	// function calls, and return type mismatches.
	KindInvalidCall Kind = 4

	// KindUndefinedVariable covers uses of undefined or uninitialised
	// variables.
	KindUndefinedVariable Kind = 5

	// KindInvalidReturn covers missing or extraneous expressions in return
	// statements.
	KindInvalidReturn Kind = 6

	// KindTypeIncompatibility covers type errors in arithmetic, string and
	// relational expressions.
	KindTypeIncompatibility Kind = 7

	// KindInference covers failures to infer a type from context.
	KindInference Kind = 8

	// KindSemanticOther covers the remaining semantic errors: ambiguous
	// overloads, assignment to constants, duplicate parameters, bad labels.
	KindSemanticOther Kind = 9

	// KindInternal marks a defect in the compiler itself.
	KindInternal Kind = 99
)

var kindNames = map[Kind]string{
	KindSuccess:             "success",
	KindLexical:             "lexical error",
	KindSyntax:              "syntax error",
	KindUndefinedFunction:   "semantic error",
	KindInvalidCall:         "semantic error",
	KindUndefinedVariable:   "semantic error",
	KindInvalidReturn:       "semantic error",
	KindTypeIncompatibility: "semantic error",
	KindInference:           "semantic error",
	KindSemanticOther:       "semantic error",
	KindInternal:            "internal compiler error",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "error"
}

// ExitCode returns the process exit code for the kind.
func (k Kind) ExitCode() int { return int(k) }

// CompilerError is a single fatal diagnostic. Every stage of the pipeline
// returns *CompilerError through the error interface; the first one aborts
// the compilation and its Kind becomes the exit code.
type CompilerError struct {
	Kind    Kind
	Message string
	Markers []token.Token // tokens whose ranges should be highlighted
	Source  string        // full source text, set at the process boundary
	File    string
}

// New creates a diagnostic of the given kind. Any marker tokens passed are
// retained for formatting.
func New(kind Kind, message string, markers ...token.Token) *CompilerError {
	return &CompilerError{Kind: kind, Message: message, Markers: markers}
}

// Newf creates a diagnostic with a formatted message.
func Newf(kind Kind, format string, args ...any) *CompilerError {
	return &CompilerError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithMarkers returns the error with the marker tokens attached.
func (e *CompilerError) WithMarkers(markers ...token.Token) *CompilerError {
	e.Markers = append(e.Markers, markers...)
	return e
}

// SetSource attaches the source text so Format can show context lines.
func (e *CompilerError) SetSource(source, file string) {
	e.Source = source
	e.File = file
}

// Error implements the error interface.
func (e *CompilerError) Error() string {
	if len(e.Markers) > 0 {
		m := e.Markers[0]
		return fmt.Sprintf("%s at %s: %s", e.Kind, m.Range, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

var (
	headlineColor = color.New(color.FgRed, color.Bold)
	caretColor    = color.New(color.FgRed, color.Bold)
	lineNumColor  = color.New(color.Faint)
)

// Format renders the diagnostic with source context and caret indicators
// under each marker. Colour output is controlled globally via
// color.NoColor, matching the rest of the CLI.
func (e *CompilerError) Format() string {
	var sb strings.Builder

	pos := ""
	if len(e.Markers) > 0 {
		pos = e.Markers[0].Range.String()
	}
	headlineColor.Fprintf(&sb, "%s:", e.Kind)
	switch {
	case e.File != "" && pos != "":
		fmt.Fprintf(&sb, " %s (%s:%s)\n", e.Message, e.File, pos)
	case pos != "":
		fmt.Fprintf(&sb, " %s (at %s)\n", e.Message, pos)
	default:
		fmt.Fprintf(&sb, " %s\n", e.Message)
	}

	for _, m := range e.Markers {
		line := e.sourceLine(m.Range.Line)
		if line == "" {
			continue
		}
		prefix := fmt.Sprintf("%4d | ", m.Range.Line)
		lineNumColor.Fprint(&sb, prefix)
		sb.WriteString(line)
		sb.WriteString("\n")

		sb.WriteString(strings.Repeat(" ", len(prefix)+m.Range.Column-1))
		caretColor.Fprint(&sb, strings.Repeat("^", caretWidth(line, m)))
		sb.WriteString("\n")
	}

	return sb.String()
}

// sourceLine extracts a 1-indexed line from the attached source.
func (e *CompilerError) sourceLine(lineNum int) string {
	if e.Source == "" || lineNum < 1 {
		return ""
	}
	lines := strings.Split(e.Source, "\n")
	if lineNum > len(lines) {
		return ""
	}
	return lines[lineNum-1]
}

// caretWidth clips the marker's lexeme length to the displayed line so the
// caret run never spills past the text. Multi-line lexemes get carets for
// their first line only.
func caretWidth(line string, m token.Token) int {
	runes := []rune(line)
	start := m.Range.Column - 1
	if start < 0 || start >= len(runes) {
		return 1
	}
	width := m.Range.Length()
	if width < 1 {
		return 1
	}
	if start+width > len(runes) {
		width = len(runes) - start
	}
	if width < 1 {
		return 1
	}
	return width
}

// AsCompilerError unwraps err into a *CompilerError, converting foreign
// errors into internal diagnostics so that the process boundary always has
// a kind to report.
func AsCompilerError(err error) *CompilerError {
	if err == nil {
		return nil
	}
	if ce, ok := err.(*CompilerError); ok {
		return ce
	}
	return New(KindInternal, err.Error())
}
