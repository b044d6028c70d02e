package cmd

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nimbus-lang/nimbus/internal/ast"
	nimerrors "github.com/nimbus-lang/nimbus/internal/errors"
	"github.com/nimbus-lang/nimbus/internal/parser"
	"github.com/nimbus-lang/nimbus/pkg/engine"
)

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Parse a script and print its AST",
	Long:  `Run the lexer and parser and print a tree of the resulting AST nodes, or the collected syntax errors. Useful for debugging the parser stage without evaluating anything.`,
	Args:  cobra.ExactArgs(1),
	RunE:  parseFile,
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func parseFile(_ *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", args[0], err)
	}
	source, err := engine.DecodeSource(raw)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", args[0], err)
	}

	p := parser.NewFromSource(source)
	prog := p.ParseProgram()
	if perrs := p.Errors(); len(perrs) > 0 {
		cerrs := make([]*nimerrors.CompilerError, len(perrs))
		for i, pe := range perrs {
			cerrs[i] = nimerrors.NewCompilerError(pe.Pos, pe.Message, source, args[0])
		}
		fmt.Fprintln(os.Stderr, nimerrors.FormatErrors(cerrs, true))
		return fmt.Errorf("%d syntax error(s) in %s", len(perrs), args[0])
	}

	for _, stmt := range prog.Body {
		dumpNode(stmt, 0)
	}
	return nil
}

// dumpNode prints a node and its children via reflection rather than a
// dedicated printer package: this command exists purely to eyeball the
// parser's output during development, not to round-trip source.
func dumpNode(n ast.Node, depth int) {
	if n == nil || reflect.ValueOf(n).IsNil() {
		return
	}
	indent := strings.Repeat("  ", depth)
	fmt.Printf("%s%s @ %s\n", indent, nodeTypeName(n), n.Pos())

	v := reflect.ValueOf(n).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		val := v.Field(i)
		dumpField(field.Name, val, depth+1)
	}
}

func dumpField(name string, v reflect.Value, depth int) {
	indent := strings.Repeat("  ", depth)
	switch v.Kind() {
	case reflect.Slice:
		if v.Len() == 0 {
			return
		}
		fmt.Printf("%s%s:\n", indent, name)
		for i := 0; i < v.Len(); i++ {
			elem := v.Index(i)
			if node, ok := elem.Interface().(ast.Node); ok {
				dumpNode(node, depth+1)
			} else {
				fmt.Printf("%s  %v\n", indent, elem.Interface())
			}
		}
	case reflect.Interface, reflect.Ptr:
		if v.IsNil() {
			return
		}
		if node, ok := v.Interface().(ast.Node); ok {
			fmt.Printf("%s%s:\n", indent, name)
			dumpNode(node, depth+1)
			return
		}
		fmt.Printf("%s%s: %v\n", indent, name, v.Interface())
	case reflect.Struct:
		// Exported plain-struct fields print inline (the embedded position
		// base is unexported and already skipped by dumpNode).
		fmt.Printf("%s%s: %v\n", indent, name, v.Interface())
	default:
		fmt.Printf("%s%s: %v\n", indent, name, v.Interface())
	}
}

func nodeTypeName(n ast.Node) string {
	t := reflect.TypeOf(n)
	if t.Kind() == reflect.Ptr {
		return t.Elem().Name()
	}
	return t.Name()
}
