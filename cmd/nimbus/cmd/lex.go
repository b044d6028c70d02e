package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nimbus-lang/nimbus/internal/lexer"
	"github.com/nimbus-lang/nimbus/internal/token"
	"github.com/nimbus-lang/nimbus/pkg/engine"
)

var lexCmd = &cobra.Command{
	Use:   "lex <file>",
	Short: "Tokenize a script and print the resulting token stream",
	Long:  `Run only the lexer stage and print each token with its source position, one per line. Useful for debugging the earlier pipeline stage without invoking the parser.`,
	Args:  cobra.ExactArgs(1),
	RunE:  lexFile,
}

func init() {
	rootCmd.AddCommand(lexCmd)
}

func lexFile(_ *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", args[0], err)
	}
	source, err := engine.DecodeSource(raw)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", args[0], err)
	}

	l := lexer.New(source)
	for {
		tok := l.Next()
		fmt.Println(tok)
		if tok.Type == token.EOF {
			break
		}
	}

	if errs := l.Errors(); len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintln(os.Stderr, e)
		}
		return fmt.Errorf("%d lexical error(s) in %s", len(errs), args[0])
	}
	return nil
}
