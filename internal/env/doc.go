// Package env implements environment requirement matching for Benchline Core.
//
// A lab station declares what it provides (board model, software images,
// attached LAN/WAN devices, provisioning mode) as a JSON environment
// document. A test declares what it needs in the same shape. This package
// decides whether the declaration satisfies the requirement.
//
// # Key Types
//
//   - Tree: a tagged variant (wildcard | scalar | sequence | map) lifted
//     from a JSON-like document
//   - Helper: wraps an available tree, validates its schema version, and
//     exposes fixed-path accessors (image, upgrade/downgrade images,
//     software maps, flash strategy)
//   - Contained: the recursive containment relation between a required and
//     an available tree
//
// # Usage
//
//	doc, err := env.FromJSON(raw)
//	if err != nil { ... }
//	helper, err := env.NewHelper(doc, mirror)
//	if err != nil { ... }
//
//	required := env.FromValue(map[string]any{
//	    "environment_def": map[string]any{
//	        "board": map[string]any{"model": "F5685LGB"},
//	    },
//	})
//	if err := helper.Check(required); err != nil {
//	    // errors.Is(err, env.ErrMismatch); err carries both trees
//	}
//
// A nil (JSON null) value in a required tree is a wildcard: it matches any
// declared value. A required list whose first element is the wildcard
// matches any non-empty declared list.
//
// Matching is pure computation over immutable trees and is safe to call
// concurrently and repeatedly without synchronisation.
package env
