package hir

import "fmt"

// ErrWidthIndeterminate is returned when a signal's width cannot be
// pinned down by propagating its dependency edges to a fixed point (spec
// §7 WidthIndeterminate), naming the offending signal as the original's
// determine() exception message does.
type ErrWidthIndeterminate struct {
	Signal string
}

func (e *ErrWidthIndeterminate) Error() string {
	return fmt.Sprintf("hir: width cannot be determined for signal %q", e.Signal)
}

// DetermineWidths propagates width constraints to a fixed point across
// every signal of m: a signal with Width == nil resolves once every entry
// of its Deps has a resolved width, taking its own width as the sum of
// (dependency width + delta) over all deps — the single-dependency
// pass-through case (Add2/Shift/...) and the multi-dependency summed case
// (Mult2's width-of-product) are both instances of this one rule.
//
// This plays the role the original's recursive Integer.determine() plays,
// restated as the graph-edge fixed point the redesign direction calls for
// instead of mutual recursive calls across a cyclic object graph.
func DetermineWidths(m *Module) error {
	for {
		changed := false
		for _, s := range m.Signals {
			if s.Width != nil {
				continue
			}
			if len(s.Deps) == 0 {
				continue
			}
			sum := 0
			allKnown := true
			for _, dep := range s.Deps {
				other := m.Signal(dep.Other)
				if other == nil || other.Width == nil {
					allKnown = false
					break
				}
				sum += *other.Width + dep.Delta
			}
			if allKnown {
				w := sum
				s.Width = &w
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	for _, s := range m.Signals {
		if s.Width == nil {
			return &ErrWidthIndeterminate{Signal: s.Name}
		}
	}
	m.determined = true
	return nil
}
