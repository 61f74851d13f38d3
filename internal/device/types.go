package device

import "time"

// Device represents a mailbox sensor registered with the system.
// Devices are keyed by their physical MAC address, stored in canonical
// form (uppercase, colon-separated).
type Device struct {
	MAC             string    `json:"mac"`
	MailboxID       string    `json:"mailbox_id"`
	FirmwareVersion *string   `json:"firmware_version,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// SystemInfo holds the latest health report for a device.
// There is at most one row per MAC; every report replaces the previous
// one wholesale. LastSeen is always server-generated, never taken from
// the device.
type SystemInfo struct {
	MAC             string    `json:"mac"`
	PublicIP        *string   `json:"public_ip,omitempty"`
	WifiStrength    *float64  `json:"wifi_strength,omitempty"`
	SerialNumber    *string   `json:"serial_number,omitempty"`
	UptimeSeconds   *int64    `json:"uptime_s,omitempty"`
	FirmwareVersion *string   `json:"firmware_version,omitempty"`
	LastSeen        time.Time `json:"last_seen"`
}

// MotionEvent represents a single motion detection report.
// Events are append-only and immutable once written.
type MotionEvent struct {
	ID         string    `json:"id"`
	DeviceMAC  string    `json:"mac"`
	Detected   bool      `json:"detected"`
	OccurredAt time.Time `json:"occurred_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// Status represents the derived presence of a device.
// It is computed from the recency of the last health report, never stored.
type Status string

// Status constants.
const (
	StatusOnline  Status = "online"
	StatusOffline Status = "offline"
)

// DefaultPresenceWindow is the online window used when none is configured.
const DefaultPresenceWindow = 2 * time.Minute

// StatusFor derives the presence status of a device from its last seen
// timestamp. A device is online iff now - lastSeen is strictly less than
// the window: a report exactly window old counts as offline. Devices that
// have never reported (nil lastSeen) are offline.
func StatusFor(lastSeen *time.Time, now time.Time, window time.Duration) Status {
	if lastSeen == nil {
		return StatusOffline
	}
	if now.Sub(*lastSeen) < window {
		return StatusOnline
	}
	return StatusOffline
}

// FleetEntry is one row of the fleet listing: a device joined with the
// last seen timestamp from its health report, if any.
type FleetEntry struct {
	MAC      string     `json:"mac"`
	LastSeen *time.Time `json:"last_seen"`
	Status   Status     `json:"status"`
}

// Details is the flattened per-device record joining the device with its
// mailbox, location, and latest health report. Optional fields are nil
// when the corresponding data is absent; presentation layers decide how
// to render them.
type Details struct {
	MAC             string
	MailboxNumber   *string
	Street          *string
	HouseNumber     *string
	PostalCode      *string
	City            *string
	FirmwareVersion *string
	PublicIP        *string
	WifiStrength    *float64
	SerialNumber    *string
	UptimeSeconds   *int64
	LastSeen        *time.Time
}
