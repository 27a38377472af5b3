package hir

// PortOverride records an explicitly forced or omitted port (spec §3
// Module "two auxiliary port sets: forced ... and omitted").
type PortOverride struct {
	Signal SignalID
	Dir    PortDirection
}

// Module is a named container owning signals and blocks by index (the
// arena this package's redesign replaces cyclic object references with),
// plus the forced/omitted port overrides. Child instances are not a
// separate list: each is an ExternalHDL block in Blocks carrying an Instance.
type Module struct {
	ID      ModuleID
	Name    string
	Signals []*Signal
	Blocks  []*Block

	ForcedPorts  []PortOverride
	OmittedPorts map[SignalID]bool

	determined bool
}

func newModule(id ModuleID, name string) *Module {
	return &Module{
		ID:           id,
		Name:         name,
		OmittedPorts: make(map[SignalID]bool),
	}
}

// Signal looks up a signal by ID within this module.
func (m *Module) Signal(id SignalID) *Signal {
	if int(id) < 0 || int(id) >= len(m.Signals) {
		return nil
	}
	return m.Signals[id]
}

// AddForcedPort registers val as an explicitly forced port (spec §4.5
// "Forced-port declarations ... take precedence").
func (m *Module) AddForcedPort(val SignalID, dir PortDirection) {
	for _, p := range m.ForcedPorts {
		if p.Signal == val {
			return
		}
	}
	m.ForcedPorts = append(m.ForcedPorts, PortOverride{Signal: val, Dir: dir})
}

// OmitPort suppresses val from auto-promotion to a port.
func (m *Module) OmitPort(val SignalID) {
	m.OmittedPorts[val] = true
}
