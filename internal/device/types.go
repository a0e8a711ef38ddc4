package device

import (
	"context"
	"sort"
)

// Config carries keyword configuration for a composition. Three keys are
// recognised by the composer — "profile", "override", "plugin_device" —
// and everything else passes through untouched to every selected
// capability's Setup.
type Config map[string]any

// DeepCopy creates a complete independent copy of the configuration.
// Nested maps and slices are cloned so modifications to the copy do not
// affect the original. The composer copies the caller's configuration
// before merging profile overrides into it.
func (c Config) DeepCopy() Config {
	if c == nil {
		return nil
	}
	cpy := make(Config, len(c))
	for k, v := range c {
		cpy[k] = deepCopyValue(v)
	}
	return cpy
}

// deepCopyValue recursively copies a value, handling nested maps and slices.
func deepCopyValue(v any) any {
	switch val := v.(type) {
	case Config:
		return val.DeepCopy()
	case map[string]any:
		return Config(val).DeepCopy()
	case []any:
		cpy := make([]any, len(val))
		for i, elem := range val {
			cpy[i] = deepCopyValue(elem)
		}
		return cpy
	default:
		// Primitives (string, bool, int, float64, etc.) are safe to copy
		// by value.
		return v
	}
}

// sortedKeys returns configuration keys in sorted order so merge warnings
// and conflict reports are deterministic.
func sortedKeys(c Config) []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Capability is the runtime half of a Descriptor: the behaviour it
// contributes to a composite device.
//
// Setup is the capability's initializer. The composer invokes it exactly
// once, in resolution order, against the shared composite under
// construction; later capabilities observe state recorded on the composite
// by earlier ones. Setup may block on real connection establishment and
// should honour ctx. A Setup that fails to establish its transport must
// return an error matching ErrConnectionRefused so callers can branch on
// refusal; any other failure aborts the composition wrapped as
// ErrSetupFailed.
type Capability interface {
	Setup(ctx context.Context, dev *Composite, cfg Config) error
}

// Prompter is implemented by capabilities that contribute console prompt
// patterns. The manager aggregates prompts across all registered devices.
type Prompter interface {
	Prompt() []string
}

// Reserved member names are carried by every descriptor and excluded from
// conflict checks.
const (
	memberModel   = "model"
	memberPrompt  = "prompt"
	memberProfile = "profile"
	memberSetup   = "setup" // the lifecycle initializer
)

func reservedMember(name string) bool {
	switch name {
	case memberModel, memberPrompt, memberProfile, memberSetup:
		return true
	default:
		return false
	}
}

// Descriptor is a capability unit contributed by an extension source.
//
// A descriptor claims one or more model aliases, declares the member names
// it exports to a composite device, and optionally maps aliases to default
// configuration applied when that alias is selected through a profile.
// Descriptors are discovered once and immutable afterward.
type Descriptor struct {
	// Name identifies the descriptor in conflict reports and telemetry.
	Name string

	// Models is the alias set: a single name or a fixed set of equivalent
	// names that all resolve to this descriptor.
	Models []string

	// Profiles maps an alias to the default configuration merged into a
	// composition when that alias appears in the caller's profile map.
	Profiles map[string]Config

	// Members are the exported member names this descriptor contributes.
	// Reserved names (model, prompt, profile, setup) are ignored by
	// conflict checks.
	Members []string

	// Origin is the name of the declaring source. Discovery records a
	// descriptor only under its declaring source, so re-exports are not
	// recorded twice.
	Origin string

	// New constructs the runtime capability whose Setup the composer
	// invokes during instantiation.
	New func() Capability
}

// Matches reports whether the descriptor claims the model name: equality
// for a single alias, membership for an alias set.
func (d Descriptor) Matches(model string) bool {
	for _, alias := range d.Models {
		if alias == model {
			return true
		}
	}
	return false
}

// profileAlias returns the first of the descriptor's aliases present in the
// caller's profile map.
func (d Descriptor) profileAlias(profile map[string]Config) (string, bool) {
	for _, alias := range d.Models {
		if _, ok := profile[alias]; ok {
			return alias, true
		}
	}
	return "", false
}
