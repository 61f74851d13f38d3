package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/postwatch/postwatch-core/internal/device"
)

// unknownValue is the sentinel rendered for absent detail fields.
// Numeric fields widen to this string too, so every detail field is a
// string at the presentation boundary.
const unknownValue = "unknown"

// handleListDevices returns the fleet list: every registered device with
// its last seen timestamp and derived online/offline status.
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	entries, err := s.deviceRepo.ListFleet(r.Context(), time.Now().UTC(), s.presenceWindow)
	if err != nil {
		s.logger.Error("fleet list failed", "error", err)
		writeInternalError(w, "failed to list devices")
		return
	}

	writeSuccess(w, http.StatusOK, "", envelope{
		"devices": entries,
		"count":   len(entries),
	})
}

// handleDeviceDetails returns the flattened detail record for one device.
// Absent fields render as the literal "unknown" sentinel.
func (s *Server) handleDeviceDetails(w http.ResponseWriter, r *http.Request) {
	rawMAC := r.URL.Query().Get("mac")
	if rawMAC == "" {
		writeBadRequest(w, "mac query parameter is required")
		return
	}

	mac, err := device.NormalizeMAC(rawMAC)
	if err != nil {
		writeBadRequest(w, "invalid mac address")
		return
	}

	details, err := s.deviceRepo.GetDetails(r.Context(), mac)
	if err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			writeNotFound(w, "Device not found")
			return
		}
		s.logger.Error("device details lookup failed", "mac", mac, "error", err)
		writeInternalError(w, "failed to get device details")
		return
	}

	writeSuccess(w, http.StatusOK, "", envelope{
		"device": renderDetails(details),
	})
}

// handleMotionHistory returns the motion events for one device, newest
// first. A registered device with no events yet returns an empty list,
// not an error.
func (s *Server) handleMotionHistory(w http.ResponseWriter, r *http.Request) {
	rawMAC := r.URL.Query().Get("mac")
	if rawMAC == "" {
		writeBadRequest(w, "mac query parameter is required")
		return
	}

	mac, err := device.NormalizeMAC(rawMAC)
	if err != nil {
		writeBadRequest(w, "invalid mac address")
		return
	}

	events, err := s.deviceRepo.ListMotionEvents(r.Context(), mac)
	if err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			writeNotFound(w, "Device not found")
			return
		}
		s.logger.Error("motion history lookup failed", "mac", mac, "error", err)
		writeInternalError(w, "failed to list motion events")
		return
	}

	writeSuccess(w, http.StatusOK, "", envelope{
		"motions": events,
		"count":   len(events),
	})
}

// renderDetails flattens a detail record for presentation, replacing
// every absent field with the "unknown" sentinel.
func renderDetails(d *device.Details) map[string]string {
	return map[string]string{
		"mac":              d.MAC,
		"mailbox_number":   strOrUnknown(d.MailboxNumber),
		"street":           strOrUnknown(d.Street),
		"house_number":     strOrUnknown(d.HouseNumber),
		"postal_code":      strOrUnknown(d.PostalCode),
		"city":             strOrUnknown(d.City),
		"firmware_version": strOrUnknown(d.FirmwareVersion),
		"public_ip":        strOrUnknown(d.PublicIP),
		"serial_number":    strOrUnknown(d.SerialNumber),
		"wifi_strength":    floatOrUnknown(d.WifiStrength),
		"uptime":           intOrUnknown(d.UptimeSeconds),
		"last_seen":        timeOrUnknown(d.LastSeen),
	}
}

func strOrUnknown(v *string) string {
	if v == nil {
		return unknownValue
	}
	return *v
}

func floatOrUnknown(v *float64) string {
	if v == nil {
		return unknownValue
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func intOrUnknown(v *int64) string {
	if v == nil {
		return unknownValue
	}
	return strconv.FormatInt(*v, 10)
}

func timeOrUnknown(v *time.Time) string {
	if v == nil {
		return unknownValue
	}
	return v.UTC().Format(time.RFC3339)
}
