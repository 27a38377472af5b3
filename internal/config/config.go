// Package config holds the flag-driven configuration surface shared by
// the decompose/emit/verify CLI subcommands, shaped the way the
// teacher's pkg/search.Config and pkg/stoke.Config hold one struct per
// subsystem rather than a global singleton.
package config

// FixedPoint describes the signal format every decomposition and
// codegen stage operates in.
type FixedPoint struct {
	TotalBits int // W
	FracBits  int // D
}

// P2D holds the sliced power-of-two decomposition's tunables.
type P2D struct {
	FixedPoint
	OperandCap int     // E, 2 or 3
	SliceWidth int     // S, uniform slice width when no explicit slicing is given
	SQNRTarget float64 // dB, default 48
	MaxIters   int     // P_max, default 200
	Workers    int     // slicing-search parallelism, 0 = runtime.NumCPU()
}

// DefaultP2D returns the documented baseline tunables for the sliced
// power-of-two engine.
func DefaultP2D() P2D {
	return P2D{
		FixedPoint: FixedPoint{TotalBits: 8, FracBits: 4},
		OperandCap: 2,
		SQNRTarget: 48,
		MaxIters:   200,
	}
}

// LZD holds the dictionary-coded decomposition's tunables.
type LZD struct {
	FixedPoint
	SQNRTarget  float64
	MaxAdd      int
	FixShiftBug bool
}

// DefaultLZD returns the documented baseline tunables for the
// dictionary-coded decomposition engine.
func DefaultLZD() LZD {
	return LZD{
		FixedPoint: FixedPoint{TotalBits: 8, FracBits: 4},
		SQNRTarget: 48,
		MaxAdd:     280,
	}
}

// Emit holds the netlist-emission surface: output directory and the
// external HDL include search path.
type Emit struct {
	OutDir       string
	IncludeDirs  []string
	GraphOutFile string // DOT dump path, empty disables it
}

// Global is the top-level CLI configuration assembled from flags.
type Global struct {
	MatrixPath string
	Verbose    bool
	Checkpoint string // checkpoint file path, empty disables checkpointing
	P2D        P2D
	LZD        LZD
	Emit       Emit
}
