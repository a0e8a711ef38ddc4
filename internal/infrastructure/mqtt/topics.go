package mqtt

import "fmt"

// Topic prefixes for the Benchline event bus.
//
// All topics use the flat scheme: benchline/{category}/{id}[/{event}]
// so that station dashboards and CI listeners can subscribe with simple
// single-level wildcards.
const (
	// TopicPrefix is the base for all Benchline topics.
	TopicPrefix = "benchline"

	// TopicPrefixStation is the base for station lifecycle topics.
	TopicPrefixStation = "benchline/station"

	// TopicPrefixDevice is the base for composed device events.
	TopicPrefixDevice = "benchline/device"

	// TopicPrefixEnv is the base for environment matching events.
	TopicPrefixEnv = "benchline/env"
)

// Topics provides builders for Benchline MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	registered := topics.DeviceRegistered("lan-client-1")
//	// Returns: "benchline/device/lan-client-1/registered"
type Topics struct{}

// =============================================================================
// Station Topics
// =============================================================================

// StationStatus returns the station status topic.
//
// Example: benchline/station/status
func (Topics) StationStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixStation)
}

// StationReady returns the topic announcing that all configured devices
// composed successfully and the station is ready for test traffic.
//
// Example: benchline/station/ready
func (Topics) StationReady() string {
	return fmt.Sprintf("%s/ready", TopicPrefixStation)
}

// =============================================================================
// Device Topics
// =============================================================================

// DeviceRegistered returns the topic for device registration events.
//
// Example: benchline/device/lan-client-1/registered
func (Topics) DeviceRegistered(name string) string {
	return fmt.Sprintf("%s/%s/registered", TopicPrefixDevice, name)
}

// DeviceSetupFailed returns the topic for capability setup failures.
//
// Example: benchline/device/lan-client-1/setup_failed
func (Topics) DeviceSetupFailed(name string) string {
	return fmt.Sprintf("%s/%s/setup_failed", TopicPrefixDevice, name)
}

// =============================================================================
// Environment Topics
// =============================================================================

// EnvCheck returns the topic for environment containment check results.
//
// Example: benchline/env/check
func (Topics) EnvCheck() string {
	return fmt.Sprintf("%s/check", TopicPrefixEnv)
}

// =============================================================================
// Wildcard Patterns for Subscriptions
// =============================================================================

// AllDeviceEvents returns a pattern matching every device event.
//
// Pattern: benchline/device/+/+
func (Topics) AllDeviceEvents() string {
	return fmt.Sprintf("%s/+/+", TopicPrefixDevice)
}

// AllStationTopics returns a pattern matching all station topics.
//
// Pattern: benchline/station/+
func (Topics) AllStationTopics() string {
	return fmt.Sprintf("%s/+", TopicPrefixStation)
}

// AllTopics returns a pattern matching all Benchline topics.
// Use with caution - this receives ALL traffic.
//
// Pattern: benchline/#
func (Topics) AllTopics() string {
	return "benchline/#"
}
