package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tskoda/go-swiftc/internal/lexer"
)

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize a program and dump the token stream",
	Long: `Tokenize an IFJ23 program and print one token per line with its type,
source range and whitespace profile. Reads standard input when no file is
given.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLex,
}

func init() {
	rootCmd.AddCommand(lexCmd)
}

func runLex(_ *cobra.Command, args []string) {
	source, file, err := readSource(args)
	if err != nil {
		exitWithDiagnostic(err, "", "")
	}

	tokens, err := lexer.New(source).Tokenize()
	if err != nil {
		exitWithDiagnostic(err, source, file)
	}

	for _, tok := range tokens {
		ws := ""
		if tok.Whitespace.HasLeftNewline() {
			ws += "<nl "
		} else if tok.Whitespace.HasLeft() {
			ws += "<sp "
		}
		if tok.Whitespace.HasRightNewline() {
			ws += ">nl"
		} else if tok.Whitespace.HasRight() {
			ws += ">sp"
		}
		fmt.Printf("%-8s %-24s %s\n", tok.Range, tok, ws)
	}
}
