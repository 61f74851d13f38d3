package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/postwatch/postwatch-core/internal/location"
)

// Provisioning endpoints for locations and mailboxes. Devices register
// against mailbox numbers, so the fleet operator seeds these records
// before installation. Writes sit behind the shared-secret middleware.

// handleListLocations returns all provisioned locations.
func (s *Server) handleListLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := s.locationRepo.ListLocations(r.Context())
	if err != nil {
		s.logger.Error("failed to list locations", "error", err)
		writeInternalError(w, "failed to list locations")
		return
	}
	if locations == nil {
		locations = []location.Location{}
	}
	writeSuccess(w, http.StatusOK, "", envelope{"locations": locations, "count": len(locations)})
}

// handleGetLocation returns a single location by ID.
func (s *Server) handleGetLocation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	loc, err := s.locationRepo.GetLocation(r.Context(), id)
	if err != nil {
		if errors.Is(err, location.ErrLocationNotFound) {
			writeNotFound(w, "Location not found")
			return
		}
		s.logger.Error("failed to get location", "error", err, "id", id)
		writeInternalError(w, "failed to get location")
		return
	}
	writeSuccess(w, http.StatusOK, "", envelope{"location": loc})
}

// handleCreateLocation creates a new location.
func (s *Server) handleCreateLocation(w http.ResponseWriter, r *http.Request) {
	var loc location.Location
	if err := json.NewDecoder(r.Body).Decode(&loc); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	if err := location.ValidateLocation(&loc); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if err := s.locationRepo.CreateLocation(r.Context(), &loc); err != nil {
		s.logger.Error("failed to create location", "error", err)
		writeInternalError(w, "failed to create location")
		return
	}
	writeSuccess(w, http.StatusCreated, "location created", envelope{"location": loc})
}

// handleUpdateLocation replaces the address fields of a location.
func (s *Server) handleUpdateLocation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var loc location.Location
	if err := json.NewDecoder(r.Body).Decode(&loc); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	loc.ID = id

	if err := location.ValidateLocation(&loc); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if err := s.locationRepo.UpdateLocation(r.Context(), &loc); err != nil {
		if errors.Is(err, location.ErrLocationNotFound) {
			writeNotFound(w, "Location not found")
			return
		}
		s.logger.Error("failed to update location", "error", err, "id", id)
		writeInternalError(w, "failed to update location")
		return
	}
	writeSuccess(w, http.StatusOK, "location updated", nil)
}

// handleDeleteLocation removes a location that has no mailboxes left.
func (s *Server) handleDeleteLocation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.locationRepo.DeleteLocation(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, location.ErrLocationNotFound):
			writeNotFound(w, "Location not found")
		case errors.Is(err, location.ErrLocationHasMailboxes):
			writeConflict(w, "location still has mailboxes")
		default:
			s.logger.Error("failed to delete location", "error", err, "id", id)
			writeInternalError(w, "failed to delete location")
		}
		return
	}
	writeSuccess(w, http.StatusOK, "location deleted", nil)
}

// handleListLocationMailboxes returns the mailboxes at one location.
func (s *Server) handleListLocationMailboxes(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := s.locationRepo.GetLocation(r.Context(), id); err != nil {
		if errors.Is(err, location.ErrLocationNotFound) {
			writeNotFound(w, "Location not found")
			return
		}
		s.logger.Error("failed to get location", "error", err, "id", id)
		writeInternalError(w, "failed to list mailboxes")
		return
	}

	mailboxes, err := s.locationRepo.ListMailboxesByLocation(r.Context(), id)
	if err != nil {
		s.logger.Error("failed to list mailboxes", "error", err, "location_id", id)
		writeInternalError(w, "failed to list mailboxes")
		return
	}
	if mailboxes == nil {
		mailboxes = []location.Mailbox{}
	}
	writeSuccess(w, http.StatusOK, "", envelope{"mailboxes": mailboxes, "count": len(mailboxes)})
}

// handleListMailboxes returns all provisioned mailboxes.
func (s *Server) handleListMailboxes(w http.ResponseWriter, r *http.Request) {
	mailboxes, err := s.locationRepo.ListMailboxes(r.Context())
	if err != nil {
		s.logger.Error("failed to list mailboxes", "error", err)
		writeInternalError(w, "failed to list mailboxes")
		return
	}
	if mailboxes == nil {
		mailboxes = []location.Mailbox{}
	}
	writeSuccess(w, http.StatusOK, "", envelope{"mailboxes": mailboxes, "count": len(mailboxes)})
}

// handleGetMailbox returns a single mailbox by ID.
func (s *Server) handleGetMailbox(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	mb, err := s.locationRepo.GetMailbox(r.Context(), id)
	if err != nil {
		if errors.Is(err, location.ErrMailboxNotFound) {
			writeNotFound(w, "Mailbox not found")
			return
		}
		s.logger.Error("failed to get mailbox", "error", err, "id", id)
		writeInternalError(w, "failed to get mailbox")
		return
	}
	writeSuccess(w, http.StatusOK, "", envelope{"mailbox": mb})
}

// handleCreateMailbox creates a new mailbox at an existing location.
func (s *Server) handleCreateMailbox(w http.ResponseWriter, r *http.Request) {
	var mb location.Mailbox
	if err := json.NewDecoder(r.Body).Decode(&mb); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	if err := location.ValidateMailbox(&mb); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if _, err := s.locationRepo.GetLocation(r.Context(), mb.LocationID); err != nil {
		if errors.Is(err, location.ErrLocationNotFound) {
			writeBadRequest(w, "Location not found")
			return
		}
		s.logger.Error("failed to get location", "error", err, "id", mb.LocationID)
		writeInternalError(w, "failed to create mailbox")
		return
	}

	if err := s.locationRepo.CreateMailbox(r.Context(), &mb); err != nil {
		if errors.Is(err, location.ErrDuplicateMailboxNumber) {
			writeConflict(w, "mailbox number already exists")
			return
		}
		s.logger.Error("failed to create mailbox", "error", err)
		writeInternalError(w, "failed to create mailbox")
		return
	}
	writeSuccess(w, http.StatusCreated, "mailbox created", envelope{"mailbox": mb})
}

// handleDeleteMailbox removes a mailbox with no registered devices.
func (s *Server) handleDeleteMailbox(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.locationRepo.DeleteMailbox(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, location.ErrMailboxNotFound):
			writeNotFound(w, "Mailbox not found")
		case errors.Is(err, location.ErrMailboxHasDevices):
			writeConflict(w, "mailbox still has registered devices")
		default:
			s.logger.Error("failed to delete mailbox", "error", err, "id", id)
			writeInternalError(w, "failed to delete mailbox")
		}
		return
	}
	writeSuccess(w, http.StatusOK, "mailbox deleted", nil)
}
