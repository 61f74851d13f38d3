// Package api implements the HTTP REST API for Postwatch Core.
//
// This package provides:
//   - Report endpoints for device registration, motion events, and health
//   - Query endpoints for fleet status, device detail, and motion history
//   - Provisioning endpoints for locations and mailboxes
//   - Middleware stack (request ID, logging, recovery, CORS, body limit)
//   - Shared-secret gating of all write endpoints via X-API-Key
//   - TLS support for production deployments
//
// # Architecture
//
// The API server sits between mailbox sensor devices (and fleet dashboards)
// and the SQLite-backed registry. Devices POST reports directly or deliver
// the same payloads over MQTT; dashboards read fleet state through the
// query endpoints.
//
// # Response Envelope
//
// Every JSON response carries a success flag and an optional message:
//
//	{"success": true, "message": "registered successfully"}
//	{"success": false, "message": "Mailbox not found"}
//
// Failed authentication is the one exception: 401 with an empty body, so
// the shared secret's presence leaks nothing about the API shape.
package api
