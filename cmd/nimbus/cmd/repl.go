package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nimbus-lang/nimbus/pkg/engine"
)

var (
	blueColor   = color.New(color.FgBlue)
	yellowColor = color.New(color.FgYellow)
	redColor    = color.New(color.FgRed)
	greenColor  = color.New(color.FgGreen)
	cyanColor   = color.New(color.FgCyan)
)

const replLine = "--------------------------------------------------------------"

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive read-eval-print loop",
	Long:  `Enter statements one line at a time and see their results immediately. Declarations made on one line persist for the rest of the session.`,
	RunE:  runRepl,
}

func init() {
	rootCmd.AddCommand(replCmd)
}

func runRepl(_ *cobra.Command, _ []string) error {
	opts, _, err := loadEngineOptions()
	if err != nil {
		return err
	}
	e := engine.New(opts...)

	rl, err := readline.New("nimbus> ")
	if err != nil {
		return fmt.Errorf("starting readline: %w", err)
	}
	defer rl.Close()

	printReplBanner(os.Stdout)
	startRepl(rl, os.Stdout, e)
	return nil
}

func printReplBanner(w io.Writer) {
	blueColor.Fprintf(w, "%s\n", replLine)
	greenColor.Fprintf(w, "nimbus — tree-walking ECMAScript interpreter\n")
	blueColor.Fprintf(w, "%s\n", replLine)
	cyanColor.Fprintf(w, "Type an expression or statement and press enter.\n")
	cyanColor.Fprintf(w, "Type .exit or press Ctrl-D to quit.\n")
	blueColor.Fprintf(w, "%s\n", replLine)
}

func startRepl(rl *readline.Instance, w io.Writer, e *engine.Engine) {
	line := 0
	for {
		input, err := rl.Readline()
		if err != nil { // io.EOF on Ctrl-D, readline.ErrInterrupt on Ctrl-C
			fmt.Fprintln(w, "")
			return
		}
		if input == "" {
			continue
		}
		if input == ".exit" {
			return
		}
		rl.SaveHistory(input)
		line++

		v, err := e.Evaluate(input, fmt.Sprintf("<repl:%d>", line))
		if err != nil {
			redColor.Fprintf(w, "%s\n", err)
			continue
		}
		e.RunMicrotasks()
		yellowColor.Fprintf(w, "%s\n", v.String())
	}
}
