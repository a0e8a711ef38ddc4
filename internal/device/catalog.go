package device

// Source is an extension package contributing device descriptors. A source
// returns every descriptor declared in it; descriptors it merely re-exports
// carry a different Origin and are skipped by discovery.
type Source interface {
	Name() string
	Devices() []Descriptor
}

// Catalog is the capability catalog: the mapping from extension source to
// the descriptors it declares.
//
// A Catalog is built once by Discover, early, before any composition
// request is issued, and is read-only afterward. Concurrent reads are safe
// once built; concurrent Discover calls are not.
type Catalog struct {
	order   []string
	sources map[string][]Descriptor
}

// NewCatalog creates an empty capability catalog.
func NewCatalog() *Catalog {
	return &Catalog{sources: make(map[string][]Descriptor)}
}

// Discover scans every source and records the descriptors it declares.
// A descriptor whose Origin names a different source is treated as a
// re-export and skipped; an empty Origin is stamped with the scanned
// source's name. Repeat calls overwrite the catalog rather than merge.
//
// Malformed sources are a collaborator concern: no validation happens here
// beyond the declaring-source check.
func (c *Catalog) Discover(sources []Source) {
	c.order = c.order[:0]
	c.sources = make(map[string][]Descriptor, len(sources))

	for _, src := range sources {
		name := src.Name()
		c.order = append(c.order, name)

		var declared []Descriptor
		for _, d := range src.Devices() {
			if d.Origin != "" && d.Origin != name {
				continue
			}
			d.Origin = name
			declared = append(declared, d)
		}
		c.sources[name] = declared
	}
}

// Sources returns the scanned source names in discovery order.
func (c *Catalog) Sources() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// BySource returns the descriptors declared by one source.
func (c *Catalog) BySource(name string) []Descriptor {
	return c.sources[name]
}

// Descriptors returns every recorded descriptor, sources in discovery
// order, descriptors in declaration order within a source. Composition
// resolution preserves this order.
func (c *Catalog) Descriptors() []Descriptor {
	var out []Descriptor
	for _, name := range c.order {
		out = append(out, c.sources[name]...)
	}
	return out
}

// Models returns the deduplicated model aliases claimed by the catalog, in
// first-seen order.
func (c *Catalog) Models() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, d := range c.Descriptors() {
		for _, alias := range d.Models {
			if _, dup := seen[alias]; dup {
				continue
			}
			seen[alias] = struct{}{}
			out = append(out, alias)
		}
	}
	return out
}

// Len returns the total number of recorded descriptors.
func (c *Catalog) Len() int {
	n := 0
	for _, descs := range c.sources {
		n += len(descs)
	}
	return n
}

// defaultSources collects sources registered by extension packages at init
// time. It is consumed explicitly via DefaultSources; the catalog itself is
// never ambient state.
var defaultSources []Source

// RegisterSource records an extension source for discovery. It is intended
// to be called from the init function of an extension package, before main
// builds the catalog.
func RegisterSource(s Source) {
	defaultSources = append(defaultSources, s)
}

// DefaultSources returns every source registered via RegisterSource, in
// registration order.
func DefaultSources() []Source {
	out := make([]Source, len(defaultSources))
	copy(out, defaultSources)
	return out
}
