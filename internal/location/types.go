package location

import "time"

// Location represents a physical address where mailboxes are installed.
type Location struct {
	ID          string    `json:"id"`
	Street      string    `json:"street"`
	HouseNumber string    `json:"house_number"`
	PostalCode  string    `json:"postal_code"`
	City        string    `json:"city"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Address returns the location as a single display string.
func (l *Location) Address() string {
	return l.Street + " " + l.HouseNumber + ", " + l.PostalCode + " " + l.City
}

// Mailbox represents a physical mailbox installed at a location.
// Number is the human-facing identifier printed on the box and is
// unique across the whole deployment.
type Mailbox struct {
	ID         string    `json:"id"`
	LocationID string    `json:"location_id"`
	Number     string    `json:"number"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
