package ingest

// motionMessage is the JSON payload published on postwatch/motion/<MAC>.
// It matches the POST /api/motion body minus the mac, which rides in the
// topic instead.
//
// The status flag is optional here: a bare `{}` (or empty payload) counts
// as a detection, since sensors only publish when the beam trips.
type motionMessage struct {
	Status *bool `json:"status"`
}

// systemInfoMessage is the JSON payload published on postwatch/sysinfo/<MAC>.
// It matches the POST /api/system-info body minus the mac.
//
// All fields are optional. Absent fields clear the stored value so the
// registry always reflects the most recent report verbatim.
type systemInfoMessage struct {
	PublicIP        *string  `json:"public_ip"`
	WifiStrength    *float64 `json:"wifi_strength"`
	SerialNumber    *string  `json:"serial_number"`
	UptimeSeconds   *int64   `json:"uptime"`
	FirmwareVersion *string  `json:"firmware_version"`
}
