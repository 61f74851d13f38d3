package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteDeviceHealth writes a device health report to InfluxDB.
//
// This is the primary method for recording fleet telemetry. The write is
// non-blocking; data is batched and sent asynchronously. Nil fields are
// omitted from the point so sparse reports don't record zeros.
//
// Parameters:
//   - mac: Normalised device MAC address (e.g., "AA:BB:CC:DD:EE:FF")
//   - wifiStrength: WiFi signal strength in dBm (nil if not reported)
//   - uptimeSeconds: Device uptime in seconds (nil if not reported)
//
// Example:
//
//	wifi := -67.5
//	client.WriteDeviceHealth("AA:BB:CC:DD:EE:FF", &wifi, nil)
func (c *Client) WriteDeviceHealth(mac string, wifiStrength *float64, uptimeSeconds *int64) {
	if !c.IsConnected() {
		return
	}

	fields := map[string]interface{}{}
	if wifiStrength != nil {
		fields["wifi_strength"] = *wifiStrength
	}
	if uptimeSeconds != nil {
		fields["uptime_s"] = *uptimeSeconds
	}
	if len(fields) == 0 {
		return
	}

	point := write.NewPoint(
		"device_health",
		map[string]string{
			"mac": mac,
		},
		fields,
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteMotionEvent records a motion detection for time-series analysis.
//
// Parameters:
//   - mac: Normalised device MAC address
//   - detected: Whether motion was detected (stored as 0/1 for aggregation)
//   - occurredAt: Server-assigned event timestamp
func (c *Client) WriteMotionEvent(mac string, detected bool, occurredAt time.Time) {
	if !c.IsConnected() {
		return
	}

	value := 0
	if detected {
		value = 1
	}

	point := write.NewPoint(
		"motion",
		map[string]string{
			"mac": mac,
		},
		map[string]interface{}{
			"detected": value,
		},
		occurredAt,
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
//	client.WritePoint("system_stats",
//	    map[string]string{"host": "core-01"},
//	    map[string]interface{}{"cpu_percent": 45.2, "memory_mb": 512})
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}

// WritePointWithTime writes a custom point with a specific timestamp.
//
// Use this when the timestamp is not "now" (e.g., delayed data).
//
// Parameters:
//   - measurement: The measurement name
//   - tags: Key-value pairs for indexing
//   - fields: Key-value pairs for the data
//   - timestamp: The exact time for this data point
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}
