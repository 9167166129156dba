// Package vibelang composes the lexer, parser, compiler, and VM into a
// single source-to-result pipeline behind Compile, Run, and Eval.
package vibelang

import (
	"github.com/mrunix00/vibelang/bytecode"
	"github.com/mrunix00/vibelang/compiler"
	"github.com/mrunix00/vibelang/errors"
	"github.com/mrunix00/vibelang/object"
	"github.com/mrunix00/vibelang/parser"
	"github.com/mrunix00/vibelang/vm"
)

// Option configures a compilation or run.
type Option func(*options)

type options struct {
	vmOpts vm.Options
}

func collectOptions(opts ...Option) *options {
	o := &options{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// WithVMOptions sets the VM's options, including its diagnostic logger.
func WithVMOptions(vo vm.Options) Option {
	return func(o *options) { o.vmOpts = vo }
}

// Compile parses and compiles source into an executable top-level
// function. machine supplies the string intern table and heap the
// returned function's constants are allocated against; it must be the
// same VM instance later passed to Run.
func Compile(source string, machine *vm.VM) (*bytecode.Function, error) {
	program, err := parser.Parse(source)
	if err != nil {
		return nil, err
	}
	return compiler.Compile(program, machine)
}

// Run executes a compiled top-level function and returns its result, or
// the structured runtime error if execution failed.
func Run(fn *bytecode.Function, machine *vm.VM) (object.Value, *errors.RuntimeError) {
	return machine.Run(fn)
}

// Eval compiles and runs source against a fresh VM built from opts,
// returning the result value and whichever of the pipeline's error types
// fired first: a *errors.SyntaxError, *errors.CompileError, or
// *errors.RuntimeError.
func Eval(source string, opts ...Option) (object.Value, error) {
	o := collectOptions(opts...)
	machine := vm.New(o.vmOpts)
	fn, err := Compile(source, machine)
	if err != nil {
		return object.Value{}, err
	}
	result, rerr := Run(fn, machine)
	if rerr != nil {
		return object.Value{}, rerr
	}
	return result, nil
}
