package location

import (
	"fmt"
	"regexp"
	"strings"
)

// Validation limits for address and mailbox fields.
const (
	maxStreetLength      = 100
	maxHouseNumberLength = 10
	maxCityLength        = 100
	maxPostalCodeLength  = 10
	maxNumberLength      = 20
	numberPattern        = `^[A-Za-z0-9]+(?:[-/][A-Za-z0-9]+)*$`
)

var numberRegex = regexp.MustCompile(numberPattern)

// ValidateLocation validates a Location before persistence.
func ValidateLocation(l *Location) error {
	if strings.TrimSpace(l.Street) == "" {
		return fmt.Errorf("%w: street cannot be empty", ErrInvalidAddress)
	}
	if len(l.Street) > maxStreetLength {
		return fmt.Errorf("%w: street exceeds %d characters", ErrInvalidAddress, maxStreetLength)
	}
	if strings.TrimSpace(l.HouseNumber) == "" {
		return fmt.Errorf("%w: house number cannot be empty", ErrInvalidAddress)
	}
	if len(l.HouseNumber) > maxHouseNumberLength {
		return fmt.Errorf("%w: house number exceeds %d characters", ErrInvalidAddress, maxHouseNumberLength)
	}
	if strings.TrimSpace(l.PostalCode) == "" {
		return fmt.Errorf("%w: postal code cannot be empty", ErrInvalidAddress)
	}
	if len(l.PostalCode) > maxPostalCodeLength {
		return fmt.Errorf("%w: postal code exceeds %d characters", ErrInvalidAddress, maxPostalCodeLength)
	}
	if strings.TrimSpace(l.City) == "" {
		return fmt.Errorf("%w: city cannot be empty", ErrInvalidAddress)
	}
	if len(l.City) > maxCityLength {
		return fmt.Errorf("%w: city exceeds %d characters", ErrInvalidAddress, maxCityLength)
	}
	return nil
}

// ValidateMailboxNumber checks if a mailbox number is valid.
func ValidateMailboxNumber(number string) error {
	if number == "" {
		return fmt.Errorf("%w: number cannot be empty", ErrInvalidMailboxNumber)
	}
	if len(number) > maxNumberLength {
		return fmt.Errorf("%w: number exceeds %d characters", ErrInvalidMailboxNumber, maxNumberLength)
	}
	if !numberRegex.MatchString(number) {
		return fmt.Errorf("%w: number must be alphanumeric with optional - or / separators", ErrInvalidMailboxNumber)
	}
	return nil
}

// ValidateMailbox validates a Mailbox before persistence.
func ValidateMailbox(m *Mailbox) error {
	if m.LocationID == "" {
		return fmt.Errorf("%w: location_id cannot be empty", ErrInvalidAddress)
	}
	return ValidateMailboxNumber(m.Number)
}
