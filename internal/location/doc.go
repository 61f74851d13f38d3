// Package location provides the address and mailbox hierarchy.
//
// It defines the spatial model used by Postwatch: Locations are street
// addresses, each containing one or more Mailboxes. Devices registered
// with the system are mounted on a mailbox, so the chain
// Device → Mailbox → Location resolves every sensor to an address.
//
// The package provides a Repository interface with a SQLite implementation.
// Mailbox numbers are unique across the deployment and are what devices
// present during registration.
//
// # Thread Safety
//
// SQLiteRepository is safe for concurrent use from multiple goroutines
// (SQLite WAL mode + connection pooling).
package location
