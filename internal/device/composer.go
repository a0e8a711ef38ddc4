package device

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// Logger defines the logging interface used by the composer.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Composer resolves a model name plus configuration into a single composite
// device assembled from catalog descriptors.
//
// Resolution and conflict checking are pure computation; instantiation runs
// each capability's Setup, which may block on real connection establishment
// for seconds and may fail. There is no timeout or cancellation at this
// layer beyond the ctx handed to Setup — that belongs to the transport the
// capability uses. Callers must serialize Build calls targeting the same
// manager.
type Composer struct {
	catalog *Catalog
	logger  Logger
}

// NewComposer creates a composer over a built catalog.
func NewComposer(catalog *Catalog) *Composer {
	return &Composer{catalog: catalog, logger: noopLogger{}}
}

// SetLogger sets the logger for the composer.
func (c *Composer) SetLogger(logger Logger) {
	c.logger = logger
}

// Build resolves the model against the catalog, merges profile overrides,
// verifies member conflicts, instantiates the composite, and registers it
// with mgr.
//
// Recognised configuration keys: "profile" (alias → override map),
// "override" and "plugin_device" (booleans forwarded verbatim to
// registration). Everything else passes through to the capability
// initializers and is recorded as the composite's target. The caller's
// configuration map is never mutated.
//
// A nil mgr composes without registering.
//
// Failure modes: ErrNotSupportedModel when nothing claims the model;
// *ConflictError when selected descriptors export overlapping members;
// ErrConnectionRefused propagated unchanged from a capability Setup; any
// other Setup failure wrapped as ErrSetupFailed with the model name.
func (c *Composer) Build(ctx context.Context, model string, mgr *Manager, cfg Config) (*Composite, error) {
	work := cfg.DeepCopy()
	if work == nil {
		work = make(Config)
	}

	profile := profileMap(work)
	override := popBool(work, "override")
	plugin := popBool(work, "plugin_device")

	var primaries, extensions []Descriptor
	for _, d := range c.catalog.Descriptors() {
		primary := d.Matches(model)
		if primary {
			primaries = append(primaries, d)
		}

		alias, ok := d.profileAlias(profile)
		if !ok {
			continue
		}
		if primary {
			// Already selected as a primary; applying it a second time as
			// its own profile extension would duplicate its members.
			c.logger.Warn("skipping duplicate device type", "alias", alias, "descriptor", d.Name)
		} else {
			extensions = append(extensions, d)
		}
		c.mergeOverrides(work, d.overridesFor(alias, profile))
	}

	if len(primaries) == 0 {
		return nil, fmt.Errorf("%w: unable to spawn instance of model %q", ErrNotSupportedModel, model)
	}

	// Profile capability layers always initialize after base behaviour.
	seq := append(primaries, extensions...)
	if err := checkMemberConflicts(seq); err != nil {
		return nil, err
	}

	comp := newComposite(model, mgr, seq, work)
	for _, d := range seq {
		cap := d.New()
		if err := cap.Setup(ctx, comp, work); err != nil {
			if errors.Is(err, ErrConnectionRefused) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: model %q: %w", ErrSetupFailed, model, err)
		}
		comp.attach(cap)
	}

	if mgr != nil {
		if err := mgr.Register(comp, override, plugin); err != nil {
			return nil, err
		}
	}

	c.logger.Info("device composed",
		"model", model,
		"name", comp.Name(),
		"descriptors", comp.Descriptors(),
	)
	return comp, nil
}

// mergeOverrides merges profile override keys into the working
// configuration. A key already explicitly present wins over the profile's
// value: the colliding key is dropped from the profile side with a warning.
func (c *Composer) mergeOverrides(work Config, overrides Config) {
	for _, k := range sortedKeys(overrides) {
		if _, exists := work[k]; exists {
			c.logger.Warn("dropping profile key shadowed by explicit configuration", "key", k)
			continue
		}
		work[k] = overrides[k]
	}
}

// overridesFor resolves the override configuration applied when alias is
// selected through a profile: the descriptor's declared defaults for the
// alias, overlaid by the caller's per-alias override map.
func (d Descriptor) overridesFor(alias string, profile map[string]Config) Config {
	out := d.Profiles[alias].DeepCopy()
	if out == nil {
		out = make(Config)
	}
	for k, v := range profile[alias] {
		out[k] = deepCopyValue(v)
	}
	return out
}

// checkMemberConflicts accumulates the exported non-reserved member names
// of each descriptor in sequence and fails as soon as one would overlap the
// running union.
func checkMemberConflicts(seq []Descriptor) error {
	union := make(map[string]struct{})
	for i, d := range seq {
		var overlap []string
		for _, m := range d.Members {
			if reservedMember(m) {
				continue
			}
			if _, dup := union[m]; dup {
				overlap = append(overlap, m)
			}
		}
		if len(overlap) > 0 {
			sort.Strings(overlap)
			names := make([]string, 0, i+1)
			for _, prev := range seq[:i+1] {
				names = append(names, prev.Name)
			}
			return &ConflictError{Members: overlap, Descriptors: names}
		}
		for _, m := range d.Members {
			if !reservedMember(m) {
				union[m] = struct{}{}
			}
		}
	}
	return nil
}

// profileMap extracts the profile key from the configuration, accepting the
// shapes a YAML or JSON decode produces. The key itself stays in the
// configuration and is recorded on the composite's target.
func profileMap(cfg Config) map[string]Config {
	raw, ok := cfg["profile"]
	if !ok {
		return nil
	}
	switch p := raw.(type) {
	case map[string]Config:
		return p
	case Config:
		return narrowProfile(p)
	case map[string]any:
		return narrowProfile(p)
	default:
		return nil
	}
}

func narrowProfile(raw map[string]any) map[string]Config {
	out := make(map[string]Config, len(raw))
	for alias, v := range raw {
		switch kv := v.(type) {
		case Config:
			out[alias] = kv
		case map[string]any:
			out[alias] = Config(kv)
		}
	}
	return out
}

// popBool removes a recognised boolean flag from the working configuration
// and returns it; absent or non-boolean values read as false.
func popBool(cfg Config, key string) bool {
	v, ok := cfg[key]
	if !ok {
		return false
	}
	delete(cfg, key)
	b, _ := v.(bool)
	return b
}
