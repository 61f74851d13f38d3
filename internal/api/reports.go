package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/postwatch/postwatch-core/internal/device"
)

// motionRequest is the POST /api/motion body. The timestamp is always
// server-assigned; devices cannot supply one.
type motionRequest struct {
	MAC    string `json:"mac"`
	Status *bool  `json:"status"`
}

// systemInfoRequest is the POST /api/system-info body. All fields except
// mac are optional; absent fields clear the stored value.
type systemInfoRequest struct {
	MAC             string   `json:"mac"`
	PublicIP        *string  `json:"public_ip"`
	WifiStrength    *float64 `json:"wifi_strength"`
	SerialNumber    *string  `json:"serial_number"`
	UptimeSeconds   *int64   `json:"uptime"`
	FirmwareVersion *string  `json:"firmware_version"`
}

// handleMotion appends a motion event for a registered device.
func (s *Server) handleMotion(w http.ResponseWriter, r *http.Request) {
	var req motionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	mac, err := device.NormalizeMAC(req.MAC)
	if err != nil {
		writeBadRequest(w, "invalid mac address")
		return
	}
	if req.Status == nil {
		writeBadRequest(w, "status is required")
		return
	}

	now := time.Now().UTC()
	event := &device.MotionEvent{
		ID:         "evt-" + uuid.NewString()[:16],
		DeviceMAC:  mac,
		Detected:   *req.Status,
		OccurredAt: now,
		CreatedAt:  now,
	}

	if err := s.deviceRepo.InsertMotionEvent(r.Context(), event); err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			writeBadRequest(w, "Device not registered")
			return
		}
		s.logger.Error("motion insert failed", "mac", mac, "error", err)
		writeInternalError(w, "failed to record motion")
		return
	}

	if s.telemetry != nil {
		s.telemetry.WriteMotionEvent(mac, event.Detected, now)
	}

	writeSuccess(w, http.StatusCreated, "motion recorded", envelope{"id": event.ID})
}

// handleSystemInfo upserts the health report for a registered device.
// last_seen is always server time, regardless of what the device thinks
// its clock says.
func (s *Server) handleSystemInfo(w http.ResponseWriter, r *http.Request) {
	var req systemInfoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	mac, err := device.NormalizeMAC(req.MAC)
	if err != nil {
		writeBadRequest(w, "invalid mac address")
		return
	}

	info := &device.SystemInfo{
		MAC:             mac,
		PublicIP:        req.PublicIP,
		WifiStrength:    req.WifiStrength,
		SerialNumber:    req.SerialNumber,
		UptimeSeconds:   req.UptimeSeconds,
		FirmwareVersion: req.FirmwareVersion,
		LastSeen:        time.Now().UTC(),
	}

	if err := s.deviceRepo.UpsertSystemInfo(r.Context(), info); err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			writeBadRequest(w, "Device not registered")
			return
		}
		s.logger.Error("system info upsert failed", "mac", mac, "error", err)
		writeInternalError(w, "failed to update system info")
		return
	}

	if s.telemetry != nil {
		s.telemetry.WriteDeviceHealth(mac, req.WifiStrength, req.UptimeSeconds)
	}

	writeSuccess(w, http.StatusOK, "system info updated", nil)
}
