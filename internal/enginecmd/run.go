package enginecmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/mna/nenuphar-vm/asm"
	"github.com/mna/nenuphar-vm/machine"
)

// Run assembles the program at args[0] and executes it to completion.
func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	b, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return err
	}

	prog, err := asm.Asm(b)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s: %s\n", args[0], err)
		return err
	}

	var opts []machine.Option
	opts = append(opts, machine.WithOutput(stdio.Stdout))
	if c.MaxSteps > 0 {
		opts = append(opts, machine.WithMaxSteps(uint64(c.MaxSteps)))
	}
	if c.MaxCallDepth > 0 {
		opts = append(opts, machine.WithMaxCallDepth(c.MaxCallDepth))
	}

	e := machine.New(prog, c.Globals, opts...)
	if err := e.Run(ctx); err != nil {
		fmt.Fprintf(stdio.Stderr, "%s: %s\n", args[0], err)
		return err
	}
	return nil
}
