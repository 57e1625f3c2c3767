package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tskoda/go-swiftc/internal/codegen"
	"github.com/tskoda/go-swiftc/internal/lexer"
	"github.com/tskoda/go-swiftc/internal/parser"
	"github.com/tskoda/go-swiftc/internal/semantic"
)

var outputFile string

var compileCmd = &cobra.Command{
	Use:   "compile [file]",
	Short: "Compile a program to IFJcode23",
	Long: `Compile an IFJ23 program and write the generated IFJcode23 assembly to
standard output (or a file with -o). Reads standard input when no file is
given, which is the batch mode the target interpreter harness uses:

  swiftc compile < program.swift > program.ifjcode

On failure the first diagnostic is printed to standard error and the
process exits with the code of its error class (1 lexical, 2 syntax,
3-9 semantic, 99 internal).`,
	Args: cobra.MaximumNArgs(1),
	Run:  runCompile,
}

func init() {
	rootCmd.AddCommand(compileCmd)

	compileCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (default: standard output)")
}

func runCompile(_ *cobra.Command, args []string) {
	logger := newLogger()

	source, file, err := readSource(args)
	if err != nil {
		exitWithDiagnostic(err, "", "")
	}

	logger.Debug("tokenizing", "bytes", len(source))
	lex := lexer.New(source)

	logger.Debug("parsing")
	program, err := parser.New(lex).ParseProgram()
	if err != nil {
		exitWithDiagnostic(err, source, file)
	}

	logger.Debug("analysing")
	analyzer := semantic.NewAnalyzer()
	if err := analyzer.Analyze(program); err != nil {
		exitWithDiagnostic(err, source, file)
	}

	logger.Debug("generating code")
	assembly, err := codegen.New(analyzer).Generate(program)
	if err != nil {
		exitWithDiagnostic(err, source, file)
	}

	if outputFile == "" {
		fmt.Print(assembly)
		return
	}
	if err := os.WriteFile(outputFile, []byte(assembly), 0o644); err != nil {
		exitWithDiagnostic(err, source, file)
	}
	logger.Debug("wrote output", "file", outputFile)
}
