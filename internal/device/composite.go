package device

import (
	"sort"

	"github.com/google/uuid"
)

// Composite is a device instance assembled from one or more descriptors
// for a single model request. It exposes the union of the descriptors'
// members and carries the merged configuration it was built with.
//
// A composite is owned by its caller (typically the manager it was
// registered with) and lives until the test session tears down.
type Composite struct {
	id    string
	model string
	mgr   *Manager

	seq     []Descriptor
	caps    []Capability
	members map[string]int // member name -> index into seq/caps

	target Config
	state  Config
	plugin bool
}

// newComposite assembles the composite shell the capability initializers
// run against. Capabilities are attached one by one as the composer invokes
// their Setup.
func newComposite(model string, mgr *Manager, seq []Descriptor, target Config) *Composite {
	members := make(map[string]int)
	for i, d := range seq {
		for _, m := range d.Members {
			if reservedMember(m) {
				continue
			}
			members[m] = i
		}
	}
	return &Composite{
		id:      uuid.NewString(),
		model:   model,
		mgr:     mgr,
		seq:     seq,
		caps:    make([]Capability, 0, len(seq)),
		members: members,
		target:  target,
		state:   make(Config),
	}
}

// attach records an initialized capability in resolution order.
func (c *Composite) attach(cap Capability) {
	c.caps = append(c.caps, cap)
}

// ID returns the unique instance identifier assigned at composition time.
func (c *Composite) ID() string {
	return c.id
}

// Model returns the model name the composite was resolved for.
func (c *Composite) Model() string {
	return c.model
}

// Name returns the device name used for manager registration: the "name"
// configuration key when present, the model name otherwise.
func (c *Composite) Name() string {
	if n, ok := c.target["name"].(string); ok && n != "" {
		return n
	}
	return c.model
}

// Manager returns the device manager the composite was built against.
// It is nil when the caller composed without registration.
func (c *Composite) Manager() *Manager {
	return c.mgr
}

// Target returns the merged configuration the composite was built with.
func (c *Composite) Target() Config {
	return c.target
}

// State is a scratch configuration shared by the composite's capabilities.
// Capability initializers run sequentially, so a later Setup observes the
// state recorded by earlier ones. After composition it is read-only.
func (c *Composite) State() Config {
	return c.state
}

// Descriptors returns the names of the descriptors the composite was
// assembled from, in resolution order.
func (c *Composite) Descriptors() []string {
	names := make([]string, len(c.seq))
	for i, d := range c.seq {
		names[i] = d.Name
	}
	return names
}

// Members returns the sorted union of non-reserved member names exposed by
// the composite.
func (c *Composite) Members() []string {
	out := make([]string, 0, len(c.members))
	for m := range c.members {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// Member returns the capability exporting the named member. Callers assert
// the returned capability to the operation interface they need.
func (c *Composite) Member(name string) (Capability, bool) {
	i, ok := c.members[name]
	if !ok || i >= len(c.caps) {
		return nil, false
	}
	return c.caps[i], true
}

// Capabilities returns the composite's capabilities in resolution order.
func (c *Composite) Capabilities() []Capability {
	out := make([]Capability, len(c.caps))
	copy(out, c.caps)
	return out
}

// Prompt returns the deduplicated prompt patterns contributed by the
// composite's capabilities, in resolution order.
func (c *Composite) Prompt() []string {
	var out []string
	seen := make(map[string]struct{})
	for _, cap := range c.caps {
		p, ok := cap.(Prompter)
		if !ok {
			continue
		}
		for _, pattern := range p.Prompt() {
			if _, dup := seen[pattern]; dup {
				continue
			}
			seen[pattern] = struct{}{}
			out = append(out, pattern)
		}
	}
	return out
}
