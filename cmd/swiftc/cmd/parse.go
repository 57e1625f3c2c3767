package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tskoda/go-swiftc/internal/lexer"
	"github.com/tskoda/go-swiftc/internal/parser"
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a program and dump the AST",
	Long: `Parse an IFJ23 program and print a source-like rendering of the AST.
Reads standard input when no file is given.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func runParse(_ *cobra.Command, args []string) {
	source, file, err := readSource(args)
	if err != nil {
		exitWithDiagnostic(err, "", "")
	}

	program, err := parser.New(lexer.New(source)).ParseProgram()
	if err != nil {
		exitWithDiagnostic(err, source, file)
	}

	for _, stmt := range program.Block.Statements {
		fmt.Println(stmt.String())
	}
}
