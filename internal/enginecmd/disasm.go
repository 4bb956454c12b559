package enginecmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/mna/nenuphar-vm/asm"
)

// Disasm assembles the program at args[0] and prints it back out in
// normalized assembler form: useful to validate a hand-written .asm file or
// to see how labels and sections were canonicalized.
func (c *Cmd) Disasm(_ context.Context, stdio mainer.Stdio, args []string) error {
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

	out, err := asm.Dasm(prog)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s: %s\n", args[0], err)
		return err
	}
	_, err = stdio.Stdout.Write(out)
	return err
}
