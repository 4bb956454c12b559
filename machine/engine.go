package machine

import (
	"context"
	"fmt"
	"io"
	"os"
)

// Engine is the state machine described by the execution model: it owns the
// operand stack, the call-frame stack and the globals table, and drives the
// fetch-decode-execute loop in Run. An Engine is meant to be driven by a
// single goroutine for its entire lifetime; nothing in it is synchronized.
type Engine struct {
	frames []CallFrame
	stack  []Value

	globals    []Value
	globalsSet []bool

	output       io.Writer
	maxSteps     uint64
	maxCallDepth int
	steps        uint64
}

// Option configures an Engine at construction time. These are all ambient,
// host-side knobs: none of them is observable by the guest program, matching
// §5's "no instruction blocks except Print" and "no cancellation/timeouts are
// defined by the engine" — they give the host a clean way to bound an
// otherwise-unbounded Run instead of abandoning the engine outright.
type Option func(*Engine)

// WithOutput sets the sink that PRINT writes to. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(e *Engine) { e.output = w }
}

// WithMaxSteps bounds the number of instructions Run will execute before
// returning a cancellation error. Zero (the default) means no limit.
func WithMaxSteps(n uint64) Option {
	return func(e *Engine) { e.maxSteps = n }
}

// WithMaxCallDepth bounds the number of nested CallFrames. Zero (the
// default) means no limit.
func WithMaxCallDepth(n int) Option {
	return func(e *Engine) { e.maxCallDepth = n }
}

// New constructs an Engine ready to execute program, with global_count empty
// global slots. The bottom frame is a synthetic zero-arity Function wrapping
// program, per §4.3.
func New(program *Program, globalCount int, opts ...Option) *Engine {
	e := &Engine{
		frames:     []CallFrame{{function: &Function{Program: program, Arity: 0}}},
		globals:    make([]Value, globalCount),
		globalsSet: make([]bool, globalCount),
		output:     os.Stdout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// StackTop returns the value on top of the operand stack after Run has
// halted, for test and embedding inspection. ok is false if the stack is
// empty.
func (e *Engine) StackTop() (Value, bool) {
	if len(e.stack) == 0 {
		return nil, false
	}
	return e.stack[len(e.stack)-1], true
}

// Global returns the value bound to the global at index, and whether it has
// been defined (via DEFGLOBAL) at all.
func (e *Engine) Global(index int) (Value, bool) {
	if index < 0 || index >= len(e.globals) || !e.globalsSet[index] {
		return nil, false
	}
	return e.globals[index], true
}

// Run executes program to completion: while there is an active frame whose
// ip has not reached the end of its Program, it fetches the instruction at
// ip, advances ip, and applies the opcode's handler. Run returns when the
// frame stack empties, when the bottom frame's ip runs off the end of its
// Program, or when a fatal RuntimeError occurs.
func (e *Engine) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	for len(e.frames) > 0 {
		fr := &e.frames[len(e.frames)-1]
		prog := fr.program()
		if fr.ip >= len(prog.Instructions) {
			if len(e.frames) > 1 {
				// A nested callee ran off the end of its code without executing
				// RETURN: per §4.5 this leaves the call stack inconsistent. The
				// reference engine silently exits its loop either way; this
				// reports it instead of returning ambiguous residual state.
				return newRuntimeError(ErrFrameFellThrough, RETURN, fr.ip,
					"function fell through without executing return")
			}
			break
		}

		e.steps++
		if e.maxSteps > 0 && e.steps > e.maxSteps {
			return newRuntimeError(ErrCancelled, prog.Instructions[fr.ip].Op, fr.ip, "step budget of %d exceeded", e.maxSteps)
		}
		select {
		case <-ctx.Done():
			return newRuntimeError(ErrCancelled, prog.Instructions[fr.ip].Op, fr.ip, "context cancelled: %v", ctx.Err())
		default:
		}

		instr := prog.Instructions[fr.ip]
		addr := fr.ip
		fr.ip++
		op := instr.Op
		arg := int(instr.Operand)

		// A jump may target the end of its Program (which halts that frame) but
		// not any address past it.
		if (op == JUMP || op == JUMPIFFALSE) && arg > len(prog.Instructions) {
			return newRuntimeError(ErrIndexOutOfRange, op, addr, "jump address %d out of range", arg)
		}

		var err error
		switch op {
		case ADD, SUB, MUL, DIV, MOD:
			err = e.execBinaryArith(op, addr)
		case GT, LT, GE, LE:
			err = e.execBinaryCompare(op, addr)
		case EQ, NEQ:
			err = e.execBinaryEqual(op, addr)
		case NOT:
			err = e.execNot(op, addr)
		case NEGATE:
			err = e.execNegate(op, addr)
		case POP:
			_, err = e.pop(op, addr)
		case PRINT:
			err = e.execPrint(op, addr)
		case GETLOCAL:
			err = e.execGetLocal(fr, op, addr, arg)
		case SETLOCAL:
			err = e.execSetLocal(fr, op, addr, arg)
		case DEFGLOBAL:
			err = e.execDefGlobal(op, addr, arg)
		case SETGLOBAL:
			err = e.execSetGlobal(op, addr, arg)
		case GETGLOBAL:
			err = e.execGetGlobal(op, addr, arg)
		case JUMP:
			fr.ip = arg
		case JUMPIFFALSE:
			err = e.execJumpIfFalse(fr, op, addr, arg)
		case CONST:
			err = e.execConst(fr, op, addr, arg)
		case CALL:
			err = e.execCall(op, addr)
		case RETURN:
			err = e.execReturn(op, addr)
		default:
			panic(fmt.Sprintf("unimplemented opcode: %s", op))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) push(v Value) { e.stack = append(e.stack, v) }

func (e *Engine) pop(op Opcode, addr int) (Value, error) {
	if len(e.stack) == 0 {
		return nil, newRuntimeError(ErrStackUnderflow, op, addr, "pop on empty operand stack")
	}
	n := len(e.stack) - 1
	v := e.stack[n]
	e.stack = e.stack[:n]
	return v, nil
}

func (e *Engine) popNumber(op Opcode, addr int) (Number, error) {
	v, err := e.pop(op, addr)
	if err != nil {
		return 0, err
	}
	n, ok := v.(Number)
	if !ok {
		return 0, newRuntimeError(ErrType, op, addr, "expected number operand, got %s", v.Type())
	}
	return n, nil
}
