package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/postwatch/postwatch-core/internal/device"
	"github.com/postwatch/postwatch-core/internal/location"
)

// registerRequest is the POST /api/register body.
type registerRequest struct {
	MAC             string  `json:"mac"`
	MailboxNumber   string  `json:"mailbox_number"`
	FirmwareVersion *string `json:"firmware_version"`
}

// handleRegister creates a device record bound to an existing mailbox.
//
// Registration is idempotent: a MAC that is already registered returns
// success without touching the stored row. The mailbox must exist before
// any device can claim it.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	mac, err := device.NormalizeMAC(req.MAC)
	if err != nil {
		writeBadRequest(w, "invalid mac address")
		return
	}
	if req.MailboxNumber == "" {
		writeBadRequest(w, "mailbox_number is required")
		return
	}

	ctx := r.Context()

	mailbox, err := s.locationRepo.GetMailboxByNumber(ctx, req.MailboxNumber)
	if err != nil {
		if errors.Is(err, location.ErrMailboxNotFound) {
			writeBadRequest(w, "Mailbox not found")
			return
		}
		s.logger.Error("mailbox lookup failed", "number", req.MailboxNumber, "error", err)
		writeInternalError(w, "failed to look up mailbox")
		return
	}

	created, err := s.deviceRepo.Register(ctx, &device.Device{
		MAC:             mac,
		MailboxID:       mailbox.ID,
		FirmwareVersion: req.FirmwareVersion,
	})
	if err != nil {
		s.logger.Error("device registration failed", "mac", mac, "error", err)
		writeInternalError(w, "failed to register device")
		return
	}

	if !created {
		writeSuccess(w, http.StatusOK, "already registered", envelope{"mac": mac})
		return
	}
	writeSuccess(w, http.StatusCreated, "registered successfully", envelope{"mac": mac})
}
