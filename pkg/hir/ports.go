package hir

import "fmt"

// Port is one discovered or forced entry of a module's external
// interface.
type Port struct {
	Name string
	Dir  PortDirection
}

// DiscoverPorts computes m's port list: a signal never internally read
// (Accessed == 0) is promoted to an output, one never internally driven
// (Assigned == 0) is promoted to an input, forced overrides take
// precedence over either inference, and omitted signals never surface
// regardless of their access/assignment counts (spec §4.5 port
// discovery).
func DiscoverPorts(m *Module) []Port {
	forced := make(map[SignalID]PortDirection, len(m.ForcedPorts))
	for _, p := range m.ForcedPorts {
		forced[p.Signal] = p.Dir
	}

	var ports []Port
	for _, s := range m.Signals {
		if m.OmittedPorts[s.ID] {
			continue
		}
		if dir, ok := forced[s.ID]; ok {
			if (s.Accessed == 0 && s.Assigned > 0) || (s.Assigned == 0 && s.Accessed > 0) {
				ports = append(ports, Port{Name: s.Name, Dir: dir})
			}
			continue
		}
		switch {
		case s.Accessed == 0 && s.Assigned > 0:
			ports = append(ports, Port{Name: s.Name, Dir: PortOut})
		case s.Assigned == 0 && s.Accessed > 0:
			ports = append(ports, Port{Name: s.Name, Dir: PortIn})
		}
	}

	// Forced entries for signals the loop above already skipped as
	// neither-accessed-nor-assigned (e.g. pure pass-through ports) are
	// appended last, matching the original's "forced ports appended
	// after" ordering.
	seen := make(map[SignalID]bool, len(ports))
	for _, s := range m.Signals {
		if _, ok := forced[s.ID]; !ok {
			continue
		}
		if s.Accessed == 0 && s.Assigned > 0 {
			seen[s.ID] = true
		} else if s.Assigned == 0 && s.Accessed > 0 {
			seen[s.ID] = true
		}
	}
	for _, p := range m.ForcedPorts {
		s := m.Signal(p.Signal)
		if s == nil || seen[p.Signal] {
			continue
		}
		ports = append(ports, Port{Name: s.Name, Dir: p.Dir})
	}
	return ports
}

// AddInstance instantiates child inside the current module of b, binding
// explicit connections from bindings (port name -> parent Ref) and
// auto-wiring every unconnected port of child to a freshly created,
// same-width signal in the parent (spec §4.5 "Child module instantiation
// auto-wires by port name").
func AddInstance(b *Builder, entName string, child *Module, behavior string, bindings map[string]Ref) (*Instance, error) {
	parent, err := b.Top()
	if err != nil {
		return nil, err
	}
	ports := DiscoverPorts(child)

	inst := &Instance{EntName: entName, Module: child.ID, Behavior: behavior}
	for _, p := range ports {
		if bound, ok := bindings[p.Name]; ok {
			inst.Ports = append(inst.Ports, PortBinding{PortName: p.Name, Signal: bound.ID, Dir: p.Dir})
			if p.Dir == PortIn {
				b.markAccess(bound)
			} else {
				b.markAssign(bound)
			}
			continue
		}
		childSig := child.Signal(findSignalByName(child, p.Name))
		if childSig == nil {
			return nil, fmt.Errorf("hir: instance %s: no such port %q on child module %s", entName, p.Name, child.Name)
		}
		var width *int
		if childSig.Width != nil {
			w := *childSig.Width
			width = &w
		}
		fresh, err := b.NewSignal(fmt.Sprintf("%s_%s", entName, p.Name), width)
		if err != nil {
			return nil, err
		}
		fresh.sig().InternalPort = p.Dir
		inst.Ports = append(inst.Ports, PortBinding{PortName: p.Name, Signal: fresh.ID, Dir: p.Dir})
		if p.Dir == PortIn {
			b.markAccess(fresh)
		} else {
			b.markAssign(fresh)
		}
	}

	parent.Blocks = append(parent.Blocks, &Block{
		ID:       BlockID(len(parent.Blocks)),
		Kind:     ExternalHDL,
		Name:     entName,
		Instance: inst,
	})
	return inst, nil
}

func findSignalByName(m *Module, name string) SignalID {
	for _, s := range m.Signals {
		if s.Name == name {
			return s.ID
		}
	}
	return -1
}
