// Package caps contributes the built-in capability descriptors shipped with
// Benchline Core: a base Debian host plus LAN, WAN, and wifi roles that can
// be stacked onto it via composition profiles.
//
// The package registers itself with the device catalog at init time, so a
// blank import is enough to make the descriptors discoverable:
//
//	import _ "github.com/benchline/benchline-core/internal/caps"
//
//	catalog := device.NewCatalog()
//	catalog.Discover(device.DefaultSources())
//
// Capabilities here only validate configuration and record member state on
// the composite. They never open connections to the hosts they describe;
// test harnesses do that with the recorded targets.
package caps
