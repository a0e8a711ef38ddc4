// Package device implements device resolution and composition for
// Benchline Core.
//
// Extension packages contribute Descriptors: capability units that claim
// one or more model aliases and export a set of member names. The Catalog
// records every descriptor under its declaring source. The Composer
// resolves a requested model against the catalog, merges profile overrides
// into the configuration, verifies that the selected descriptors export
// disjoint members, runs each capability initializer in order against one
// Composite instance, and registers the result with a Manager.
//
// # Key Types
//
//   - Descriptor: a capability unit with model aliases, exported members,
//     and per-alias profile defaults
//   - Catalog: source → descriptor mapping, built once by Discover
//   - Composer: Build resolves, validates, instantiates, registers
//   - Composite: the assembled device instance, carrying the merged
//     configuration as its target
//   - Manager: name-keyed collection of registered composites
//
// # Usage
//
//	catalog := device.NewCatalog()
//	catalog.Discover(device.DefaultSources())
//
//	composer := device.NewComposer(catalog)
//	composer.SetLogger(log)
//
//	mgr := device.NewManager()
//	dev, err := composer.Build(ctx, "F5685LGB", mgr, device.Config{
//	    "profile": map[string]any{"F5685LGB": map[string]any{"mode": "bridge"}},
//	})
//
// # Lifecycle and Concurrency
//
// The catalog is built once, before composition begins, and is read-only
// afterward. Build is synchronous and may block on connection establishment
// inside capability initializers. The manager is not internally locked:
// serialize compositions targeting the same manager.
package device
