// Package hir implements the Hardware Intermediate Representation: a
// data-flow graph of typed fixed-width integer signals connected by
// primitive blocks, composable into named modules with inferred widths,
// auto-discovered ports, and deterministic netlist emission.
//
// Per the redesign direction this module's semantics are based on: the
// original's process-global module stack becomes an explicit *Builder
// handle, and the original's cyclic signal/module/block object graph
// becomes an arena of values addressed by stable integer IDs.
package hir

import "fmt"

// SignalID addresses a Signal within its owning Module's arena.
type SignalID int

// ModuleID addresses a Module within a Builder's arena.
type ModuleID int

// BlockID addresses a Block within its owning Module's arena.
type BlockID int

// WidthDep is one edge of the width-dependency graph: width(self) =
// width(other) + Delta.
type WidthDep struct {
	Other SignalID
	Delta int
}

// InitKind tags how a Signal's own initializer statement (spec §4.6's
// "constant and connection statements generated by each signal's own
// initializer") is produced.
type InitKind int

const (
	InitNone InitKind = iota
	InitConstant
	InitCopyAssign
)

// Signal is one node of the HIR: a stable name, a back-reference to its
// owning module, an optional (possibly still-inferred) width, a register
// depth, access/assignment counters used for port discovery, and its
// width-dependency edges.
type Signal struct {
	ID       SignalID
	Name     string
	Module   ModuleID
	Width    *int
	Buffer   int
	Accessed int
	Assigned int
	Deps     []WidthDep

	Init     InitKind
	InitBits string   // two's-complement bit string, for InitConstant
	InitSrc  SignalID // source signal to copy-assign from, for InitCopyAssign

	// InternalPort records the in/out direction of the child-instance port
	// this signal was auto-wired to (spec §4.5 "Child module instantiation
	// auto-wires by port name"). DiscoverPorts does not read it; port
	// inference for the parent still uses the accessed/assigned counters
	// and the forced/omitted sets.
	InternalPort PortDirection
}

// PortDirection classifies a signal's role at a module boundary.
type PortDirection int

const (
	PortUndecided PortDirection = iota
	PortIn
	PortOut
)

func (s *Signal) String() string { return s.Name }

// ResolvedWidth returns the signal's width, erroring if inference has not
// run or failed for this signal.
func (s *Signal) ResolvedWidth() (int, error) {
	if s.Width == nil {
		return 0, fmt.Errorf("hir: width has not been determined for signal %q", s.Name)
	}
	return *s.Width, nil
}
