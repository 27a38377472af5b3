package hir

import "fmt"

// ErrModuleStackEmpty is returned by any operation requiring a current
// module when none is open (spec §7 ModuleStackEmpty, fatal).
var ErrModuleStackEmpty = fmt.Errorf("hir: no open module")

// Builder is the explicit replacement for the original's process-global
// module stack: every operation that used to reach for the global current
// module now takes a *Builder and reads its own stack field instead.
type Builder struct {
	modules []*Module
	stack   []ModuleID

	nameCounter map[string]int // per-kind default-name counter, reset per NewModule
}

// NewBuilder creates an empty builder with no open module.
func NewBuilder() *Builder {
	return &Builder{nameCounter: make(map[string]int)}
}

// NewModule opens a new module named name and pushes it onto the stack,
// mirroring Module.__init__'s push-on-construct discipline. Per Design
// Notes' "deterministic naming via counter reset", the default-name
// counters used for auto-named signals/blocks reset at each new module so
// output is independent of how many modules were built earlier in the
// same process.
func (b *Builder) NewModule(name string) ModuleID {
	id := ModuleID(len(b.modules))
	m := newModule(id, name)
	b.modules = append(b.modules, m)
	b.stack = append(b.stack, id)
	b.nameCounter = make(map[string]int)
	return id
}

// PopModule closes the current module and returns it for emission. Errors
// with ErrModuleStackEmpty if no module is open.
func (b *Builder) PopModule() (*Module, error) {
	if len(b.stack) == 0 {
		return nil, ErrModuleStackEmpty
	}
	top := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
	return b.modules[top], nil
}

// Top returns the current (innermost) open module, or an error if the
// stack is empty.
func (b *Builder) Top() (*Module, error) {
	if len(b.stack) == 0 {
		return nil, ErrModuleStackEmpty
	}
	return b.modules[b.stack[len(b.stack)-1]], nil
}

// Module looks up a module by ID regardless of whether it is still open.
func (b *Builder) Module(id ModuleID) *Module {
	if int(id) < 0 || int(id) >= len(b.modules) {
		return nil
	}
	return b.modules[id]
}

// autoName returns the next deterministic default name for the given
// kind tag within the current module, e.g. "sig", "add2", "sub2".
func (b *Builder) autoName(kind string) string {
	n := b.nameCounter[kind]
	b.nameCounter[kind] = n + 1
	return fmt.Sprintf("%s_%d", kind, n)
}

// NewSignal allocates a fresh signal in the current module. A nil width
// leaves the signal's width to be inferred later (spec §4.5 width
// inference over the Deps dependency graph).
func (b *Builder) NewSignal(name string, width *int) (Ref, error) {
	m, err := b.Top()
	if err != nil {
		return Ref{}, err
	}
	if name == "" {
		name = b.autoName("sig")
	}
	id := SignalID(len(m.Signals))
	sig := &Signal{ID: id, Name: name, Module: m.ID, Width: width}
	m.Signals = append(m.Signals, sig)
	return Ref{B: b, Mod: m.ID, ID: id}, nil
}

// newBlock allocates a fresh block of kind in the current module and
// returns its ID for the caller to finish populating.
func (b *Builder) newBlock(kind BlockKind, inputs, outputs []SignalID) (*Block, error) {
	m, err := b.Top()
	if err != nil {
		return nil, err
	}
	id := BlockID(len(m.Blocks))
	blk := &Block{
		ID:      id,
		Kind:    kind,
		Name:    b.autoName(kind.String()),
		Inputs:  inputs,
		Outputs: outputs,
	}
	m.Blocks = append(m.Blocks, blk)
	return blk, nil
}

// signal resolves r to its underlying *Signal.
func (b *Builder) signal(r Ref) *Signal {
	return b.modules[r.Mod].Signal(r.ID)
}

// markAccess/markAssign bump the access/assignment counters spec §4.5's
// port inference reads (accessed==0 → output; assigned==0 → input).
func (b *Builder) markAccess(r Ref) { b.signal(r).Accessed++ }
func (b *Builder) markAssign(r Ref) { b.signal(r).Assigned++ }

// RegisterOutput marks r's signal to be staged through one clocked
// register in the emitted netlist (spec §4.6's synchronous buffer stage),
// the Go equivalent of the original's per-pipeline-output buffer=1 tuples.
func (b *Builder) RegisterOutput(r Ref) { b.signal(r).Buffer = 1 }
