package mqtt

import "time"

// DeviceRegisteredEvent is published when a composed device is registered
// with the device manager.
type DeviceRegisteredEvent struct {
	Name         string   `json:"name"`
	Model        string   `json:"model"`
	Capabilities []string `json:"capabilities"`
	Plugin       bool     `json:"plugin,omitempty"`
	Timestamp    string   `json:"timestamp"`
}

// EnvCheckEvent is published after a containment check of a test request
// against the station environment.
type EnvCheckEvent struct {
	OK        bool   `json:"ok"`
	Detail    string `json:"detail,omitempty"`
	Timestamp string `json:"timestamp"`
}

// PublishDeviceRegistered announces a freshly composed device on the bus.
//
// The message is not retained: registration is a one-shot event, dashboards
// that need current membership query the HTTP API instead.
func (c *Client) PublishDeviceRegistered(evt DeviceRegisteredEvent) error {
	if evt.Timestamp == "" {
		evt.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	return c.PublishJSON(Topics{}.DeviceRegistered(evt.Name), evt, false)
}

// PublishEnvCheck publishes the outcome of an environment containment check.
//
// The message is retained so late subscribers see the most recent verdict.
func (c *Client) PublishEnvCheck(evt EnvCheckEvent) error {
	if evt.Timestamp == "" {
		evt.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	return c.PublishJSON(Topics{}.EnvCheck(), evt, true)
}
