// Package device provides the device registry for Postwatch Core.
//
// The registry is the catalogue of all mailbox sensors known to the
// system, keyed by canonical MAC address. It covers the full device
// lifecycle as seen by the ingestion API:
//
//   - Registration: a device row is created on first contact, linked to
//     the mailbox it is mounted on. Re-registration is an idempotent
//     no-op.
//   - Health reports: system_info rows are upserted per MAC; last_seen
//     is always server time.
//   - Motion events: append-only inserts, rejected for unregistered MACs.
//
// Presence ("online"/"offline") is derived from the recency of the last
// health report via StatusFor, never stored.
//
// # Key Types
//
//   - Device: a registered sensor (MAC, mailbox link, firmware)
//   - SystemInfo: the latest health report for a device
//   - MotionEvent: a single immutable motion detection
//   - FleetEntry / Details: query projections for the dashboard API
//
// # Usage
//
//	repo := device.NewSQLiteRepository(db)
//
//	mac, err := device.NormalizeMAC("aa:bb:cc:dd:ee:ff")
//	if err != nil {
//	    return err
//	}
//	created, err := repo.Register(ctx, &device.Device{MAC: mac, MailboxID: mb.ID})
//
// # Thread Safety
//
// SQLiteRepository is safe for concurrent use. Registration relies on
// the MAC primary key for atomicity, so concurrent registrations of the
// same MAC cannot create duplicate rows.
package device
