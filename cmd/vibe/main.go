// Command vibe runs a vibelang script: <vibe> <script-path>.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mrunix00/vibelang"
	"github.com/mrunix00/vibelang/bytecode"
	"github.com/mrunix00/vibelang/errors"
	"github.com/mrunix00/vibelang/object"
	"github.com/mrunix00/vibelang/vm"
)

var verbose bool

func main() {
	root := &cobra.Command{
		Use:           "vibe <script-path>",
		Short:         "Run a vibelang script",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}
	root.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable VM and GC diagnostic logging")

	if err := root.Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	source, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	logger := zerolog.Nop()
	if verbose {
		logger = zerolog.New(os.Stderr).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	}
	machine := vm.New(vm.Options{Logger: logger})

	fn, compileErr := vibelang.Compile(string(source), machine)
	if compileErr != nil {
		return compileErr
	}
	result, runErr := vibelang.Run(fn, machine)
	if runErr != nil {
		printRuntimeError(runErr)
		os.Exit(1)
	}
	fmt.Println(formatResult(result))
	return nil
}

// formatResult renders a value the way a successful run prints its single
// result line: null/bool/number/string get their natural text, functions
// print "<function NAME>" (or "<fn>" if unnamed), everything else is
// "<object>".
func formatResult(v object.Value) string {
	switch {
	case v.IsNull():
		return "null"
	case v.IsBool():
		if v.Bool {
			return "true"
		}
		return "false"
	case v.IsNumber():
		return fmt.Sprintf("%g", v.Number)
	case v.IsObjType(object.ObjString):
		return v.Obj.(*object.String).Value
	case v.IsObjType(object.ObjFunction):
		return v.Obj.(*bytecode.Function).DisplayName()
	default:
		return "<object>"
	}
}

func printRuntimeError(rerr *errors.RuntimeError) {
	msg := rerr.FormatTrace()
	if color.NoColor {
		fmt.Fprint(os.Stderr, msg)
		return
	}
	fmt.Fprint(os.Stderr, color.RedString("%s", msg))
}

func printError(err error) {
	if color.NoColor {
		fmt.Fprintln(os.Stderr, err.Error())
		return
	}
	fmt.Fprintln(os.Stderr, color.RedString("%s", err.Error()))
}
