package location

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for location and mailbox persistence.
type Repository interface {
	CreateLocation(ctx context.Context, loc *Location) error
	ListLocations(ctx context.Context) ([]Location, error)
	GetLocation(ctx context.Context, id string) (*Location, error)
	UpdateLocation(ctx context.Context, loc *Location) error
	DeleteLocation(ctx context.Context, id string) error

	CreateMailbox(ctx context.Context, mb *Mailbox) error
	ListMailboxes(ctx context.Context) ([]Mailbox, error)
	ListMailboxesByLocation(ctx context.Context, locationID string) ([]Mailbox, error)
	GetMailbox(ctx context.Context, id string) (*Mailbox, error)
	GetMailboxByNumber(ctx context.Context, number string) (*Mailbox, error)
	DeleteMailbox(ctx context.Context, id string) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed location repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// CreateLocation inserts a new location into the database.
// Generates an ID if not provided.
func (r *SQLiteRepository) CreateLocation(ctx context.Context, loc *Location) error {
	if loc.ID == "" {
		loc.ID = "loc-" + uuid.NewString()[:16]
	}

	const query = `INSERT INTO locations (id, street, house_number, postal_code, city)
		VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		loc.ID, loc.Street, loc.HouseNumber, loc.PostalCode, loc.City)
	if err != nil {
		return fmt.Errorf("inserting location %s: %w", loc.ID, err)
	}
	return nil
}

// ListLocations returns all locations ordered by city then street.
func (r *SQLiteRepository) ListLocations(ctx context.Context) ([]Location, error) {
	const query = `SELECT id, street, house_number, postal_code, city, created_at, updated_at
		FROM locations ORDER BY city, street, house_number`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying locations: %w", err)
	}
	defer rows.Close()

	var locations []Location
	for rows.Next() {
		l, err := scanLocationRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning location row: %w", err)
		}
		locations = append(locations, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating location rows: %w", err)
	}
	return locations, nil
}

// GetLocation returns a single location by ID.
func (r *SQLiteRepository) GetLocation(ctx context.Context, id string) (*Location, error) {
	const query = `SELECT id, street, house_number, postal_code, city, created_at, updated_at
		FROM locations WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)
	return scanLocation(row)
}

// UpdateLocation updates an existing location record.
func (r *SQLiteRepository) UpdateLocation(ctx context.Context, loc *Location) error {
	const query = `UPDATE locations SET street = ?, house_number = ?, postal_code = ?, city = ?,
		updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
		WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query,
		loc.Street, loc.HouseNumber, loc.PostalCode, loc.City, loc.ID)
	if err != nil {
		return fmt.Errorf("updating location %s: %w", loc.ID, err)
	}
	n, _ := result.RowsAffected() //nolint:errcheck // SQLite always supports RowsAffected
	if n == 0 {
		return ErrLocationNotFound
	}
	return nil
}

// DeleteLocation removes a single location by ID.
// Returns ErrLocationNotFound if the location does not exist.
// Returns ErrLocationHasMailboxes if mailboxes still reference this location.
func (r *SQLiteRepository) DeleteLocation(ctx context.Context, id string) error {
	// Check for child mailboxes.
	var mailboxCount int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM mailboxes WHERE location_id = ?", id).Scan(&mailboxCount); err != nil {
		return fmt.Errorf("counting mailboxes for location %s: %w", id, err)
	}
	if mailboxCount > 0 {
		return ErrLocationHasMailboxes
	}

	result, err := r.db.ExecContext(ctx, "DELETE FROM locations WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting location %s: %w", id, err)
	}
	n, _ := result.RowsAffected() //nolint:errcheck // SQLite always supports RowsAffected
	if n == 0 {
		return ErrLocationNotFound
	}
	return nil
}

// CreateMailbox inserts a new mailbox into the database.
// Returns ErrDuplicateMailboxNumber if the number is already taken.
func (r *SQLiteRepository) CreateMailbox(ctx context.Context, mb *Mailbox) error {
	if mb.ID == "" {
		mb.ID = "mb-" + uuid.NewString()[:16]
	}

	const query = `INSERT INTO mailboxes (id, location_id, number)
		VALUES (?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, mb.ID, mb.LocationID, mb.Number)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrDuplicateMailboxNumber
		}
		return fmt.Errorf("inserting mailbox %s: %w", mb.ID, err)
	}
	return nil
}

// ListMailboxes returns all mailboxes ordered by number.
func (r *SQLiteRepository) ListMailboxes(ctx context.Context) ([]Mailbox, error) {
	const query = `SELECT id, location_id, number, created_at, updated_at
		FROM mailboxes ORDER BY number`
	return r.queryMailboxes(ctx, query)
}

// ListMailboxesByLocation returns mailboxes for a specific location.
func (r *SQLiteRepository) ListMailboxesByLocation(ctx context.Context, locationID string) ([]Mailbox, error) {
	const query = `SELECT id, location_id, number, created_at, updated_at
		FROM mailboxes WHERE location_id = ? ORDER BY number`
	return r.queryMailboxes(ctx, query, locationID)
}

// GetMailbox returns a single mailbox by ID.
func (r *SQLiteRepository) GetMailbox(ctx context.Context, id string) (*Mailbox, error) {
	const query = `SELECT id, location_id, number, created_at, updated_at
		FROM mailboxes WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)
	return scanMailbox(row)
}

// GetMailboxByNumber returns a single mailbox by its printed number.
func (r *SQLiteRepository) GetMailboxByNumber(ctx context.Context, number string) (*Mailbox, error) {
	const query = `SELECT id, location_id, number, created_at, updated_at
		FROM mailboxes WHERE number = ?`
	row := r.db.QueryRowContext(ctx, query, number)
	return scanMailbox(row)
}

// DeleteMailbox removes a single mailbox by ID.
// Returns ErrMailboxNotFound if the mailbox does not exist.
// Returns ErrMailboxHasDevices if devices are still registered to it.
func (r *SQLiteRepository) DeleteMailbox(ctx context.Context, id string) error {
	var deviceCount int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM devices WHERE mailbox_id = ?", id).Scan(&deviceCount); err != nil {
		return fmt.Errorf("counting devices for mailbox %s: %w", id, err)
	}
	if deviceCount > 0 {
		return ErrMailboxHasDevices
	}

	result, err := r.db.ExecContext(ctx, "DELETE FROM mailboxes WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting mailbox %s: %w", id, err)
	}
	n, _ := result.RowsAffected() //nolint:errcheck // SQLite always supports RowsAffected
	if n == 0 {
		return ErrMailboxNotFound
	}
	return nil
}

// queryMailboxes executes a query and returns a slice of Mailbox.
func (r *SQLiteRepository) queryMailboxes(ctx context.Context, query string, args ...any) ([]Mailbox, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying mailboxes: %w", err)
	}
	defer rows.Close()

	var mailboxes []Mailbox
	for rows.Next() {
		mb, err := scanMailboxRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning mailbox row: %w", err)
		}
		mailboxes = append(mailboxes, *mb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating mailbox rows: %w", err)
	}
	return mailboxes, nil
}

// scanLocation scans a single row into a Location (for QueryRow).
func scanLocation(row *sql.Row) (*Location, error) {
	var l Location
	var createdAt, updatedAt string

	err := row.Scan(&l.ID, &l.Street, &l.HouseNumber, &l.PostalCode, &l.City, &createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrLocationNotFound
		}
		return nil, fmt.Errorf("scanning location: %w", err)
	}
	if l.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("location %s created_at: %w", l.ID, err)
	}
	if l.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("location %s updated_at: %w", l.ID, err)
	}
	return &l, nil
}

// scanLocationRow scans a location from a Rows cursor.
func scanLocationRow(rows *sql.Rows) (*Location, error) {
	var l Location
	var createdAt, updatedAt string

	err := rows.Scan(&l.ID, &l.Street, &l.HouseNumber, &l.PostalCode, &l.City, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("scanning location row: %w", err)
	}
	if l.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("location %s created_at: %w", l.ID, err)
	}
	if l.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("location %s updated_at: %w", l.ID, err)
	}
	return &l, nil
}

// scanMailbox scans a single row into a Mailbox (for QueryRow).
func scanMailbox(row *sql.Row) (*Mailbox, error) {
	var mb Mailbox
	var createdAt, updatedAt string

	err := row.Scan(&mb.ID, &mb.LocationID, &mb.Number, &createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrMailboxNotFound
		}
		return nil, fmt.Errorf("scanning mailbox: %w", err)
	}
	if mb.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("mailbox %s created_at: %w", mb.ID, err)
	}
	if mb.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("mailbox %s updated_at: %w", mb.ID, err)
	}
	return &mb, nil
}

// scanMailboxRow scans a mailbox from a Rows cursor.
func scanMailboxRow(rows *sql.Rows) (*Mailbox, error) {
	var mb Mailbox
	var createdAt, updatedAt string

	err := rows.Scan(&mb.ID, &mb.LocationID, &mb.Number, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("scanning mailbox row: %w", err)
	}
	if mb.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("mailbox %s created_at: %w", mb.ID, err)
	}
	if mb.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("mailbox %s updated_at: %w", mb.ID, err)
	}
	return &mb, nil
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

// isUniqueConstraintError checks if an error is a SQLite unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "unique constraint")
}
