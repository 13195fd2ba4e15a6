package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/smoynes/forge/internal/cli"
	"github.com/smoynes/forge/internal/dump"
	"github.com/smoynes/forge/internal/gen"
	"github.com/smoynes/forge/internal/log"
	"github.com/smoynes/forge/internal/memory"
	"github.com/smoynes/forge/internal/register"
	"github.com/smoynes/forge/internal/tty"
	"github.com/smoynes/forge/internal/vmem"
)

// monitor is an interactive front end over internal/gen.Generator, backed by internal/tty's raw
// console: each keystroke steps, dumps, or quits, rather than running a fixed instruction count
// the way "run" does. It exists for manual exploration during development, mirroring the
// teacher's own interactive CLI demo.
type monitor struct {
	fs *cli.FlagSet

	bank    string
	memSize uint64
}

var _ cli.Command = (*monitor)(nil)

// Monitor constructs the "monitor" sub-command.
func Monitor() *monitor { //nolint:revive // unexported return matches sibling commands' style.
	m := &monitor{
		fs: flag.NewFlagSet("monitor", flag.ExitOnError),
	}

	m.fs.StringVar(&m.bank, "bank", "main", "name of the memory bank instructions commit to")
	m.fs.Uint64Var(&m.memSize, "mem-size", 1<<20, "memory bank size in bytes")

	return m
}

func (m *monitor) FlagSet() *cli.FlagSet { return m.fs }

func (*monitor) Description() string {
	return "interactively step the generator core from the controlling terminal"
}

func (*monitor) Usage(out io.Writer) error {
	_, err := fmt.Fprintln(out, `monitor [-bank NAME] [-mem-size BYTES]

Puts the terminal in raw mode and reads single keystrokes: 's' steps one demo instruction,
'd' dumps the register file, 'q' quits. Requires a real controlling terminal on stdin.`)

	return err
}

func (m *monitor) Run(ctx context.Context, _ []string, out io.Writer, logger *log.Logger) int {
	regs := register.NewArena()
	regs.Define("pc", register.KindPC, 64, register.ReadWrite)

	for i := 0; i < 32; i++ {
		regs.Define(fmt.Sprintf("x%d", i), register.KindGPR, 64, register.ReadWrite)
	}

	bank := memory.NewBank(m.bank, m.memSize, memory.WithLogger(logger))
	banks := map[string]*memory.Bank{m.bank: bank}

	regime := vmem.NewRegime(m.bank, bank, nil)
	regime.ActivateDirect()

	g, err := gen.NewGenerator(gen.Config{
		Regs:        regs,
		Banks:       banks,
		DefaultBank: m.bank,
		Regime:      regime,
		Encoder:     demoEncoder{},
		Sequencer:   demoSequencer{},
		Logger:      logger,
	})
	if err != nil {
		logger.Error("new generator", "err", err)
		return 1
	}

	count := 0

	err = tty.WithConsole(ctx, func(ctx context.Context, console *tty.Console) {
		w := console.Writer()
		fmt.Fprintln(w, "monitor ready: s=step, d=dump, q=quit\r")

		for {
			select {
			case <-ctx.Done():
				return
			case key, ok := <-console.Keys():
				if !ok {
					return
				}

				switch key {
				case 's':
					id := "addi"
					if count%4 == 3 {
						id = "beq"
					}

					if err := g.GenerateInstruction(id, map[string]uint64{"imm": uint64(count)}); err != nil {
						fmt.Fprintf(w, "step error: %s\r\n", err)
						continue
					}

					count++
					fmt.Fprintf(w, "stepped to pc=%#x (%d committed)\r\n", g.PC.Value(), len(g.Stream))
				case 'd':
					if err := dump.WriteRegisters(w, regs); err != nil {
						fmt.Fprintf(w, "dump error: %s\r\n", err)
					}
				case 'q':
					return
				}
			}
		}
	})
	if err != nil {
		fmt.Fprintf(out, "monitor: %s\n", err)
		return 1
	}

	fmt.Fprintf(out, "committed %d instructions, final pc=%#x\n", len(g.Stream), g.PC.Value())

	return 0
}
