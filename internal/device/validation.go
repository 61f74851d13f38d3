package device

import (
	"fmt"
	"net"
	"strings"
)

// NormalizeMAC parses a MAC address in any of the common textual forms
// (colon, hyphen, or dot separated) and returns the canonical form:
// uppercase hexadecimal, colon-separated. Devices are free to report
// their MAC however their firmware formats it; everything stored and
// compared inside the system uses the canonical form.
//
// Returns ErrInvalidMAC if the input is empty or not a parseable
// hardware address.
func NormalizeMAC(mac string) (string, error) {
	mac = strings.TrimSpace(mac)
	if mac == "" {
		return "", fmt.Errorf("%w: mac cannot be empty", ErrInvalidMAC)
	}

	hw, err := net.ParseMAC(mac)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidMAC, mac)
	}

	return strings.ToUpper(hw.String()), nil
}

// ValidateMAC checks that a MAC address is parseable without returning
// the canonical form.
func ValidateMAC(mac string) error {
	_, err := NormalizeMAC(mac)
	return err
}
