package device

import "fmt"

// Manager owns the composite devices registered for a test session.
//
// It keeps registration order for iteration and name-keyed lookup for
// accessors. The manager is deliberately unlocked: composition calls
// against one manager must be serialized by the caller, and tests read it
// from the same goroutine that built it.
type Manager struct {
	order  []*entry
	byName map[string]*entry
}

// entry pairs a registered composite with its registration flags.
type entry struct {
	dev    *Composite
	plugin bool
}

// NewManager creates an empty device manager.
func NewManager() *Manager {
	return &Manager{byName: make(map[string]*entry)}
}

// Register records a composed device under its name.
//
// A second registration under an existing name fails with ErrDeviceExists
// unless override is set, in which case the new device replaces the old one
// in place. The plugin flag marks the device as plugin-managed; the manager
// stores it verbatim.
func (m *Manager) Register(dev *Composite, override, plugin bool) error {
	name := dev.Name()
	if existing, ok := m.byName[name]; ok {
		if !override {
			return fmt.Errorf("%w: %q", ErrDeviceExists, name)
		}
		existing.dev = dev
		existing.plugin = plugin
		return nil
	}

	e := &entry{dev: dev, plugin: plugin}
	m.order = append(m.order, e)
	m.byName[name] = e
	return nil
}

// Devices returns the registered devices in registration order.
func (m *Manager) Devices() []*Composite {
	out := make([]*Composite, len(m.order))
	for i, e := range m.order {
		out[i] = e.dev
	}
	return out
}

// ByName returns the device registered under name.
func (m *Manager) ByName(name string) (*Composite, bool) {
	e, ok := m.byName[name]
	if !ok {
		return nil, false
	}
	return e.dev, true
}

// ByModel returns every registered device resolved for the model, in
// registration order.
func (m *Manager) ByModel(model string) []*Composite {
	var out []*Composite
	for _, e := range m.order {
		if e.dev.Model() == model {
			out = append(out, e.dev)
		}
	}
	return out
}

// IsPlugin reports whether the named device was registered as
// plugin-managed.
func (m *Manager) IsPlugin(name string) bool {
	e, ok := m.byName[name]
	return ok && e.plugin
}

// Len returns the number of registered devices.
func (m *Manager) Len() int {
	return len(m.order)
}

// Prompts returns the deduplicated union of prompt patterns across every
// registered device, in registration order. Session transports use this
// list when expecting console output from an unknown device.
func (m *Manager) Prompts() []string {
	var out []string
	seen := make(map[string]struct{})
	for _, e := range m.order {
		for _, p := range e.dev.Prompt() {
			if _, dup := seen[p]; dup {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}
