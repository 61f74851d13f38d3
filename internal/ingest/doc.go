// Package ingest consumes device reports from the MQTT broker and persists
// them through the device repository.
//
// Mailbox sensors publish two kinds of messages:
//   - motion detections on postwatch/motion/<MAC>
//   - periodic health reports on postwatch/sysinfo/<MAC>
//
// The bridge subscribes to both wildcard topics, normalises the MAC from
// the topic, decodes the JSON payload, and writes the result to SQLite.
// Timestamps are always assigned server-side on receipt; device-supplied
// clocks are not trusted.
//
// When an InfluxDB telemetry writer is configured, each accepted report is
// also forwarded as a time-series point for trend analysis. Telemetry is
// best-effort and never blocks persistence.
package ingest
