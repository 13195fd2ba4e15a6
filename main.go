// forge is the command-line interface to the generator: a deterministic RISC-V instruction-stream
// generator for CPU verification.
package main

import (
	"context"
	"os"

	"github.com/tebeka/atexit"

	"github.com/smoynes/forge/internal/cli"
	"github.com/smoynes/forge/internal/cli/cmd"
	"github.com/smoynes/forge/internal/genstate"
)

var (
	commands = []cli.Command{
		cmd.Generate(),
		cmd.Run(),
		cmd.Monitor(),
	}
)

// Entry point.
func main() {
	genstate.Initialize()

	result :=
		cli.New(context.Background()).
			WithLogger(os.Stderr).
			WithCommands(commands).
			WithHelp(cmd.Help(commands)).
			Execute(os.Args[1:])

	// atexit.Exit, not os.Exit: it runs every genstate.RegisterDestroy hook (each Generator's
	// data station among them) before the process actually exits.
	atexit.Exit(result)
}
