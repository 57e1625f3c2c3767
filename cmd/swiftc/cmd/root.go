package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/tskoda/go-swiftc/internal/errors"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	verbose bool
	noColor bool
)

var rootCmd = &cobra.Command{
	Use:   "swiftc",
	Short: "IFJ23 compiler targeting the IFJcode23 interpreter",
	Long: `swiftc is a single-pass batch compiler for IFJ23, a statically-typed
subset of the Swift language. It reads one source program, reports the
first fatal diagnostic, and either writes IFJcode23 assembly to standard
output or exits with a code identifying the error class.`,
	Version: Version,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if noColor {
			color.NoColor = true
		}
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(int(errors.KindInternal))
	}
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "trace the compilation stages to stderr")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored diagnostics")
}

// newLogger builds the stage-tracing logger; it stays silent unless
// --verbose was given.
func newLogger() hclog.Logger {
	level := hclog.Off
	if verbose {
		level = hclog.Debug
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "swiftc",
		Level:  level,
		Output: os.Stderr,
	})
}

// readSource loads the program: from the named file, or from standard
// input when no argument was given.
func readSource(args []string) (source, file string, err error) {
	if len(args) == 0 {
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", fmt.Errorf("failed to read standard input: %w", err)
		}
		return string(content), "", nil
	}

	content, err := os.ReadFile(args[0])
	if err != nil {
		return "", "", fmt.Errorf("failed to read file %s: %w", args[0], err)
	}
	return string(content), args[0], nil
}

// exitWithDiagnostic formats the first fatal diagnostic on stderr and
// terminates with its exit code.
func exitWithDiagnostic(err error, source, file string) {
	diag := errors.AsCompilerError(err)
	diag.SetSource(source, file)
	fmt.Fprint(os.Stderr, diag.Format())
	os.Exit(diag.Kind.ExitCode())
}
