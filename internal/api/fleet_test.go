package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/postwatch/postwatch-core/internal/device"
)

func TestListDevicesEmpty(t *testing.T) {
	srv, _ := testServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/devices", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	body := decodeEnvelope(t, rec)
	if body["success"] != true {
		t.Error("success = false, want true")
	}
	devices, ok := body["devices"].([]any)
	if !ok {
		t.Fatalf("devices = %T, want list", body["devices"])
	}
	if len(devices) != 0 {
		t.Errorf("len(devices) = %d, want 0", len(devices))
	}
}

func TestListDevicesStatus(t *testing.T) {
	srv, repo := testServer(t)
	ctx := context.Background()

	// One device reporting now, one long silent, one never reported.
	registerTestDevice(t, repo, "AA:BB:CC:DD:EE:01")
	registerTestDevice(t, repo, "AA:BB:CC:DD:EE:02")
	registerTestDevice(t, repo, "AA:BB:CC:DD:EE:03")

	if err := repo.UpsertSystemInfo(ctx, &device.SystemInfo{
		MAC:      "AA:BB:CC:DD:EE:01",
		LastSeen: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("UpsertSystemInfo() error = %v", err)
	}
	if err := repo.UpsertSystemInfo(ctx, &device.SystemInfo{
		MAC:      "AA:BB:CC:DD:EE:02",
		LastSeen: time.Now().UTC().Add(-10 * time.Minute),
	}); err != nil {
		t.Fatalf("UpsertSystemInfo() error = %v", err)
	}

	rec := doRequest(t, srv, http.MethodGet, "/api/devices", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	body := decodeEnvelope(t, rec)
	devices, ok := body["devices"].([]any)
	if !ok || len(devices) != 3 {
		t.Fatalf("devices = %v, want 3 entries", body["devices"])
	}

	statuses := make(map[string]string)
	lastSeens := make(map[string]any)
	for _, entry := range devices {
		m, mOK := entry.(map[string]any)
		if !mOK {
			t.Fatalf("entry = %T, want object", entry)
		}
		mac := m["mac"].(string)
		statuses[mac] = m["status"].(string)
		lastSeens[mac] = m["last_seen"]
	}

	if statuses["AA:BB:CC:DD:EE:01"] != "online" {
		t.Errorf("fresh reporter status = %s, want online", statuses["AA:BB:CC:DD:EE:01"])
	}
	if statuses["AA:BB:CC:DD:EE:02"] != "offline" {
		t.Errorf("stale reporter status = %s, want offline", statuses["AA:BB:CC:DD:EE:02"])
	}
	if statuses["AA:BB:CC:DD:EE:03"] != "offline" {
		t.Errorf("silent device status = %s, want offline", statuses["AA:BB:CC:DD:EE:03"])
	}
	if lastSeens["AA:BB:CC:DD:EE:03"] != nil {
		t.Errorf("silent device last_seen = %v, want null", lastSeens["AA:BB:CC:DD:EE:03"])
	}
}

func TestDeviceDetails(t *testing.T) {
	srv, repo := testServer(t)
	registerTestDevice(t, repo, testMAC)

	wifi := -67.5
	uptime := int64(86400)
	ip := "203.0.113.7"
	if err := repo.UpsertSystemInfo(context.Background(), &device.SystemInfo{
		MAC:           testMAC,
		PublicIP:      &ip,
		WifiStrength:  &wifi,
		UptimeSeconds: &uptime,
		LastSeen:      time.Now().UTC(),
	}); err != nil {
		t.Fatalf("UpsertSystemInfo() error = %v", err)
	}

	rec := doRequest(t, srv, http.MethodGet, "/api/device-details?mac="+testMAC, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}

	body := decodeEnvelope(t, rec)
	detail, ok := body["device"].(map[string]any)
	if !ok {
		t.Fatalf("device = %T, want object", body["device"])
	}

	want := map[string]string{
		"mac":            testMAC,
		"mailbox_number": "B12",
		"street":         "Hauptstrasse",
		"house_number":   "12",
		"postal_code":    "10115",
		"city":           "Berlin",
		"public_ip":      "203.0.113.7",
		"wifi_strength":  "-67.5",
		"uptime":         "86400",
	}
	for field, expected := range want {
		if detail[field] != expected {
			t.Errorf("%s = %v, want %q", field, detail[field], expected)
		}
	}

	// No serial was reported and registration carried no firmware
	if detail["serial_number"] != "unknown" {
		t.Errorf("serial_number = %v, want unknown", detail["serial_number"])
	}
	if detail["firmware_version"] != "unknown" {
		t.Errorf("firmware_version = %v, want unknown", detail["firmware_version"])
	}
}

func TestDeviceDetailsNoHealthReport(t *testing.T) {
	srv, repo := testServer(t)
	registerTestDevice(t, repo, testMAC)

	rec := doRequest(t, srv, http.MethodGet, "/api/device-details?mac="+testMAC, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	body := decodeEnvelope(t, rec)
	detail := body["device"].(map[string]any)

	// Every health field widens to the sentinel string, numerics included
	for _, field := range []string{"public_ip", "wifi_strength", "serial_number", "uptime", "last_seen", "firmware_version"} {
		if detail[field] != "unknown" {
			t.Errorf("%s = %v, want unknown", field, detail[field])
		}
	}
	if detail["mailbox_number"] != "B12" {
		t.Errorf("mailbox_number = %v, want B12", detail["mailbox_number"])
	}
}

func TestDeviceDetailsNotFound(t *testing.T) {
	srv, _ := testServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/device-details?mac=11:22:33:44:55:66", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}

	body := decodeEnvelope(t, rec)
	if body["message"] != "Device not found" {
		t.Errorf("message = %v, want %q", body["message"], "Device not found")
	}
}

func TestDeviceDetailsMissingMAC(t *testing.T) {
	srv, _ := testServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/device-details", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestMotionHistoryOrdering(t *testing.T) {
	srv, repo := testServer(t)
	registerTestDevice(t, repo, testMAC)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i, id := range []string{"evt-1", "evt-2", "evt-3"} {
		if err := repo.InsertMotionEvent(ctx, &device.MotionEvent{
			ID:         id,
			DeviceMAC:  testMAC,
			Detected:   true,
			OccurredAt: base.Add(time.Duration(i) * time.Minute),
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}); err != nil {
			t.Fatalf("InsertMotionEvent(%s) error = %v", id, err)
		}
	}

	rec := doRequest(t, srv, http.MethodGet, "/api/motions?mac="+testMAC, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	body := decodeEnvelope(t, rec)
	motions, ok := body["motions"].([]any)
	if !ok || len(motions) != 3 {
		t.Fatalf("motions = %v, want 3 entries", body["motions"])
	}

	// Newest first
	first := motions[0].(map[string]any)
	if first["id"] != "evt-3" {
		t.Errorf("first event = %v, want evt-3", first["id"])
	}
	last := motions[2].(map[string]any)
	if last["id"] != "evt-1" {
		t.Errorf("last event = %v, want evt-1", last["id"])
	}
}

func TestMotionHistoryEmpty(t *testing.T) {
	srv, repo := testServer(t)
	registerTestDevice(t, repo, testMAC)

	// Registered device with no events: empty list, not an error
	rec := doRequest(t, srv, http.MethodGet, "/api/motions?mac="+testMAC, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	body := decodeEnvelope(t, rec)
	if body["success"] != true {
		t.Error("success = false, want true")
	}
	motions, ok := body["motions"].([]any)
	if !ok {
		t.Fatalf("motions = %T, want list", body["motions"])
	}
	if len(motions) != 0 {
		t.Errorf("len(motions) = %d, want 0", len(motions))
	}
}

func TestMotionHistoryUnknownDevice(t *testing.T) {
	srv, _ := testServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/motions?mac=11:22:33:44:55:66", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestMotionHistoryMissingMAC(t *testing.T) {
	srv, _ := testServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/motions", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
