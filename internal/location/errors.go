package location

import "errors"

var (
	// ErrLocationNotFound is returned when a location ID does not exist.
	ErrLocationNotFound = errors.New("location not found")

	// ErrLocationHasMailboxes is returned when trying to delete a location
	// that still has mailboxes.
	ErrLocationHasMailboxes = errors.New("location has mailboxes: delete mailboxes first")

	// ErrMailboxNotFound is returned when a mailbox ID or number does not exist.
	ErrMailboxNotFound = errors.New("mailbox not found")

	// ErrMailboxHasDevices is returned when trying to delete a mailbox
	// that still has registered devices.
	ErrMailboxHasDevices = errors.New("mailbox has registered devices")

	// ErrDuplicateMailboxNumber is returned when creating a mailbox with a
	// number that is already taken.
	ErrDuplicateMailboxNumber = errors.New("mailbox number already exists")

	// ErrInvalidAddress is returned when location address fields fail validation.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrInvalidMailboxNumber is returned when a mailbox number fails validation.
	ErrInvalidMailboxNumber = errors.New("invalid mailbox number")
)
