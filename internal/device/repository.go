package device

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Repository defines the interface for device persistence operations.
// This abstraction allows for different implementations (SQLite, mock, etc.)
// and enables unit testing without database dependencies.
type Repository interface {
	// Register inserts a device row for the given MAC if none exists.
	// Returns created=false without error when the MAC is already
	// registered (idempotent no-op). Concurrent registrations for the
	// same MAC never create duplicate rows: the insert relies on the
	// primary key constraint, not read-then-write.
	Register(ctx context.Context, dev *Device) (created bool, err error)

	// GetByMAC retrieves a device by its canonical MAC address.
	// Returns ErrDeviceNotFound if the device does not exist.
	GetByMAC(ctx context.Context, mac string) (*Device, error)

	// ListFleet retrieves all devices joined with their last seen
	// timestamps, with presence status derived against the given
	// reference time and window.
	ListFleet(ctx context.Context, now time.Time, window time.Duration) ([]FleetEntry, error)

	// GetDetails retrieves the flattened detail record for a device:
	// mailbox, location, and latest health report joined in.
	// Returns ErrDeviceNotFound if no device row matches the MAC.
	GetDetails(ctx context.Context, mac string) (*Details, error)

	// UpsertSystemInfo inserts or replaces the health report for a MAC.
	// All optional fields are overwritten, including to NULL when absent
	// from the report.
	UpsertSystemInfo(ctx context.Context, info *SystemInfo) error

	// InsertMotionEvent appends a motion event for a registered device.
	// Returns ErrDeviceNotFound if the MAC is not registered.
	InsertMotionEvent(ctx context.Context, event *MotionEvent) error

	// ListMotionEvents retrieves all motion events for a MAC ordered
	// newest first. Returns an empty slice when the device has no
	// events; returns ErrDeviceNotFound if the MAC is not registered.
	ListMotionEvents(ctx context.Context, mac string) ([]MotionEvent, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
// The db parameter should be an open SQLite connection.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Register inserts a device row for the given MAC if none exists.
func (r *SQLiteRepository) Register(ctx context.Context, dev *Device) (bool, error) {
	now := time.Now().UTC()
	if dev.CreatedAt.IsZero() {
		dev.CreatedAt = now
	}
	dev.UpdatedAt = now

	const query = `
		INSERT INTO devices (mac, mailbox_id, firmware_version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(mac) DO NOTHING`

	result, err := r.db.ExecContext(ctx, query,
		dev.MAC,
		dev.MailboxID,
		nullableString(dev.FirmwareVersion),
		dev.CreatedAt.Format(time.RFC3339),
		dev.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return false, fmt.Errorf("inserting device: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking insert result: %w", err)
	}
	return n > 0, nil
}

// GetByMAC retrieves a device by its canonical MAC address.
func (r *SQLiteRepository) GetByMAC(ctx context.Context, mac string) (*Device, error) {
	const query = `
		SELECT mac, mailbox_id, firmware_version, created_at, updated_at
		FROM devices
		WHERE mac = ?`

	row := r.db.QueryRowContext(ctx, query, mac)

	var d Device
	var firmware sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(&d.MAC, &d.MailboxID, &firmware, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDeviceNotFound
		}
		return nil, fmt.Errorf("querying device by mac: %w", err)
	}

	if firmware.Valid {
		d.FirmwareVersion = &firmware.String
	}
	if d.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("device %s created_at: %w", d.MAC, err)
	}
	if d.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("device %s updated_at: %w", d.MAC, err)
	}
	return &d, nil
}

// ListFleet retrieves all devices with their derived presence status.
// Devices that have never sent a health report appear with a nil
// LastSeen and status offline.
func (r *SQLiteRepository) ListFleet(ctx context.Context, now time.Time, window time.Duration) ([]FleetEntry, error) {
	const query = `
		SELECT d.mac, s.last_seen
		FROM devices d
		LEFT JOIN system_info s ON s.mac = d.mac
		ORDER BY d.mac`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying fleet: %w", err)
	}
	defer rows.Close()

	entries := []FleetEntry{}
	for rows.Next() {
		var e FleetEntry
		var lastSeen sql.NullString

		if err := rows.Scan(&e.MAC, &lastSeen); err != nil {
			return nil, fmt.Errorf("scanning fleet row: %w", err)
		}

		if lastSeen.Valid {
			t, parseErr := parseTime(lastSeen.String)
			if parseErr != nil {
				return nil, fmt.Errorf("device %s last_seen: %w", e.MAC, parseErr)
			}
			e.LastSeen = &t
		}
		e.Status = StatusFor(e.LastSeen, now, window)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating fleet rows: %w", err)
	}
	return entries, nil
}

// GetDetails retrieves the flattened detail record for a device.
func (r *SQLiteRepository) GetDetails(ctx context.Context, mac string) (*Details, error) {
	const query = `
		SELECT d.mac, m.number, l.street, l.house_number, l.postal_code, l.city,
			d.firmware_version,
			s.public_ip, s.wifi_strength, s.serial_number, s.uptime_s,
			s.firmware_version, s.last_seen
		FROM devices d
		LEFT JOIN mailboxes m ON m.id = d.mailbox_id
		LEFT JOIN locations l ON l.id = m.location_id
		LEFT JOIN system_info s ON s.mac = d.mac
		WHERE d.mac = ?`

	row := r.db.QueryRowContext(ctx, query, mac)

	var det Details
	var number, street, houseNumber, postalCode, city sql.NullString
	var deviceFirmware, publicIP, serialNumber, infoFirmware sql.NullString
	var wifiStrength sql.NullFloat64
	var uptime sql.NullInt64
	var lastSeen sql.NullString

	err := row.Scan(&det.MAC, &number, &street, &houseNumber, &postalCode, &city,
		&deviceFirmware,
		&publicIP, &wifiStrength, &serialNumber, &uptime,
		&infoFirmware, &lastSeen)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDeviceNotFound
		}
		return nil, fmt.Errorf("querying device details: %w", err)
	}

	det.MailboxNumber = nullStrPtr(number)
	det.Street = nullStrPtr(street)
	det.HouseNumber = nullStrPtr(houseNumber)
	det.PostalCode = nullStrPtr(postalCode)
	det.City = nullStrPtr(city)
	det.PublicIP = nullStrPtr(publicIP)
	det.SerialNumber = nullStrPtr(serialNumber)

	// The health report's firmware version is fresher than the one
	// captured at registration, so it wins when both are present.
	det.FirmwareVersion = nullStrPtr(deviceFirmware)
	if infoFirmware.Valid {
		det.FirmwareVersion = &infoFirmware.String
	}

	if wifiStrength.Valid {
		det.WifiStrength = &wifiStrength.Float64
	}
	if uptime.Valid {
		det.UptimeSeconds = &uptime.Int64
	}
	if lastSeen.Valid {
		t, parseErr := parseTime(lastSeen.String)
		if parseErr != nil {
			return nil, fmt.Errorf("device %s last_seen: %w", det.MAC, parseErr)
		}
		det.LastSeen = &t
	}
	return &det, nil
}

// UpsertSystemInfo inserts or replaces the health report for a MAC.
func (r *SQLiteRepository) UpsertSystemInfo(ctx context.Context, info *SystemInfo) error {
	const query = `
		INSERT INTO system_info (mac, public_ip, wifi_strength, serial_number,
			uptime_s, firmware_version, last_seen)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(mac) DO UPDATE SET
			public_ip = excluded.public_ip,
			wifi_strength = excluded.wifi_strength,
			serial_number = excluded.serial_number,
			uptime_s = excluded.uptime_s,
			firmware_version = excluded.firmware_version,
			last_seen = excluded.last_seen`

	_, err := r.db.ExecContext(ctx, query,
		info.MAC,
		nullableString(info.PublicIP),
		nullableFloat(info.WifiStrength),
		nullableString(info.SerialNumber),
		nullableInt(info.UptimeSeconds),
		nullableString(info.FirmwareVersion),
		info.LastSeen.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isForeignKeyError(err) {
			return ErrDeviceNotFound
		}
		return fmt.Errorf("upserting system info: %w", err)
	}
	return nil
}

// InsertMotionEvent appends a motion event for a registered device.
func (r *SQLiteRepository) InsertMotionEvent(ctx context.Context, event *MotionEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	const query = `
		INSERT INTO motion_events (id, device_mac, detected, occurred_at, created_at)
		VALUES (?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		event.ID,
		event.DeviceMAC,
		boolToInt(event.Detected),
		event.OccurredAt.UTC().Format(time.RFC3339),
		event.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if isForeignKeyError(err) {
			return ErrDeviceNotFound
		}
		return fmt.Errorf("inserting motion event: %w", err)
	}
	return nil
}

// ListMotionEvents retrieves all motion events for a MAC, newest first.
func (r *SQLiteRepository) ListMotionEvents(ctx context.Context, mac string) ([]MotionEvent, error) {
	// Existence check first so an unknown MAC is distinguishable from a
	// registered device that simply has no history yet.
	if _, err := r.GetByMAC(ctx, mac); err != nil {
		return nil, err
	}

	// Timestamps are stored at second resolution, so two events in the
	// same wall-clock second share a sort key. rowid reflects insertion
	// order and breaks the tie in favour of the latest insert.
	const query = `
		SELECT id, device_mac, detected, occurred_at, created_at
		FROM motion_events
		WHERE device_mac = ?
		ORDER BY occurred_at DESC, created_at DESC, rowid DESC`

	rows, err := r.db.QueryContext(ctx, query, mac)
	if err != nil {
		return nil, fmt.Errorf("querying motion events: %w", err)
	}
	defer rows.Close()

	events := []MotionEvent{}
	for rows.Next() {
		var e MotionEvent
		var detected int
		var occurredAt, createdAt string

		if err := rows.Scan(&e.ID, &e.DeviceMAC, &detected, &occurredAt, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning motion event row: %w", err)
		}

		e.Detected = detected != 0
		if e.OccurredAt, err = parseTime(occurredAt); err != nil {
			return nil, fmt.Errorf("event %s occurred_at: %w", e.ID, err)
		}
		if e.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("event %s created_at: %w", e.ID, err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating motion event rows: %w", err)
	}
	return events, nil
}

// nullableString converts a *string to sql.NullString for nullable columns.
func nullableString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// nullableFloat converts a *float64 to sql.NullFloat64 for nullable columns.
func nullableFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

// nullableInt converts a *int64 to sql.NullInt64 for nullable columns.
func nullableInt(i *int64) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *i, Valid: true}
}

// nullStrPtr converts a scanned sql.NullString back to a *string.
func nullStrPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

// boolToInt converts a boolean to 0/1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// parseTime parses an ISO 8601 timestamp from SQLite.
func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		// Try the SQLite default format without timezone.
		t, err = time.Parse("2006-01-02T15:04:05Z", s)
		if err != nil {
			return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
		}
	}
	return t, nil
}

// isForeignKeyError checks if an error is a SQLite foreign key violation.
func isForeignKeyError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
