package machine

// CallFrame records a single invocation: the callee being executed, the
// next instruction index into its Program, and the absolute operand-stack
// index of its local slot 0.
type CallFrame struct {
	function *Function
	ip       int
	base     int
}

// Function returns the callee this frame is executing.
func (fr *CallFrame) Function() *Function { return fr.function }

// IP returns the frame's current instruction pointer.
func (fr *CallFrame) IP() int { return fr.ip }

// Base returns the frame's stack base (the index of local slot 0).
func (fr *CallFrame) Base() int { return fr.base }

func (fr *CallFrame) program() *Program { return fr.function.Program }
