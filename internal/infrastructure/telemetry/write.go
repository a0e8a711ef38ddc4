package telemetry

import (
	"strconv"
	"strings"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteComposition records the outcome of a device composition.
//
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - model: The model string the composition was requested for
//   - descriptors: Names of the capability descriptors stacked into the device
//   - duration: Wall-clock time spent composing and running setups
//   - err: The composition error, or nil on success
//
// Example:
//
//	start := time.Now()
//	dev, err := composer.Build(ctx, "debian", mgr, cfg)
//	telem.WriteComposition("debian", dev.Descriptors(), time.Since(start), err)
func (c *Client) WriteComposition(model string, descriptors []string, duration time.Duration, err error) {
	if !c.IsConnected() {
		return
	}

	fields := map[string]interface{}{
		"duration_ms":      float64(duration.Milliseconds()),
		"descriptor_count": len(descriptors),
		"descriptors":      strings.Join(descriptors, ","),
	}
	if err != nil {
		fields["error"] = err.Error()
	}

	point := write.NewPoint(
		"composition",
		map[string]string{
			"model": model,
			"ok":    strconv.FormatBool(err == nil),
		},
		fields,
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteEnvCheck records the outcome of an environment containment check.
//
// Parameters:
//   - ok: Whether the requested environment was contained in the station's
//   - duration: Time spent evaluating the check
func (c *Client) WriteEnvCheck(ok bool, duration time.Duration) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"env_check",
		map[string]string{
			"ok": strconv.FormatBool(ok),
		},
		map[string]interface{}{
			"duration_ms": float64(duration.Milliseconds()),
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteDeviceCount records the current number of registered devices.
//
// Called after registrations and overrides so dashboards can plot station
// population over time.
func (c *Client) WriteDeviceCount(count int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"devices",
		nil,
		map[string]interface{}{
			"registered": count,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for custom measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
//
// Example:
//
//	client.WritePoint("station_stats",
//	    map[string]string{"station": "bench-01"},
//	    map[string]interface{}{"uptime_s": 3600.0})
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}
