package asm

import (
	"bytes"
	"fmt"
	"strconv"

	"golang.org/x/exp/slices"

	"github.com/mna/nenuphar-vm/machine"
)

// Dasm writes a program to its assembler textual format. Function constants
// reachable from p's constant pool are hoisted to top-level "function:"
// sections addressed by a generated @label, sorted for deterministic output
// (programs in Go have no natural ordering, and constant-pool order alone
// would vary with how the caller built them).
func Dasm(p *machine.Program) ([]byte, error) {
	d := &dasm{buf: new(bytes.Buffer), labels: map[*machine.Program]string{}}
	d.discover(p)

	d.write("program:\n")
	if err := d.body(p); err != nil {
		return nil, err
	}

	var names []string
	for _, name := range d.labels {
		names = append(names, name)
	}
	slices.Sort(names)

	byName := make(map[string]*machine.Program, len(d.labels))
	for prog, name := range d.labels {
		byName[name] = prog
	}
	for _, name := range names {
		prog := byName[name]
		fn := d.funcsByProgram[prog]
		d.write("\n")
		d.writef("function: %s %d\n", name, fn.Arity)
		if err := d.body(prog); err != nil {
			return nil, err
		}
	}

	return d.buf.Bytes(), d.err
}

type dasm struct {
	buf            *bytes.Buffer
	err            error
	labels         map[*machine.Program]string
	funcsByProgram map[*machine.Program]*machine.Function
}

// discover walks p's constant pool (and transitively, every nested
// function's) assigning a stable label to every distinct *Program reached
// through a Function constant.
func (d *dasm) discover(p *machine.Program) {
	if d.funcsByProgram == nil {
		d.funcsByProgram = map[*machine.Program]*machine.Function{}
	}
	for _, c := range p.Constants {
		fn, ok := c.(*machine.Function)
		if !ok {
			continue
		}
		if _, seen := d.labels[fn.Program]; seen {
			continue
		}
		d.labels[fn.Program] = fmt.Sprintf("@f%d", len(d.labels))
		d.funcsByProgram[fn.Program] = fn
		d.discover(fn.Program)
	}
}

func (d *dasm) body(p *machine.Program) error {
	if len(p.Constants) > 0 {
		d.write("\tconstants:\n")
		for i, c := range p.Constants {
			switch c := c.(type) {
			case machine.Number:
				d.writef("\t\tnumber\t%s\t# %03d\n", c.String(), i)
			case machine.String:
				d.writef("\t\tstring\t%s\t# %03d\n", strconv.Quote(string(c)), i)
			case machine.Boolean:
				d.writef("\t\tbool\t%t\t# %03d\n", bool(c), i)
			case machine.NullType:
				d.writef("\t\tnull\t# %03d\n", i)
			case *machine.Function:
				label := d.labels[c.Program]
				d.writef("\t\tfunction\t%d %s\t# %03d\n", c.Arity, label, i)
			default:
				return fmt.Errorf("unsupported constant type: %T", c)
			}
		}
	}
	if len(p.Instructions) > 0 {
		d.write("\tcode:\n")
		for i, insn := range p.Instructions {
			if machine.HasOperand(insn.Op) {
				d.writef("\t\t%s %d\t# %03d\n", insn.Op, insn.Operand, i)
			} else {
				d.writef("\t\t%s\t# %03d\n", insn.Op, i)
			}
		}
	}
	return d.err
}

func (d *dasm) writef(s string, args ...any) {
	d.write(fmt.Sprintf(s, args...))
}

func (d *dasm) write(s string) {
	if d.err != nil {
		return
	}
	_, d.err = d.buf.WriteString(s)
}
