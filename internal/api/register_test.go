package api

import (
	"context"
	"net/http"
	"testing"
)

func TestRegister(t *testing.T) {
	srv, repo := testServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/register",
		`{"mac":"aa:bb:cc:dd:ee:ff","mailbox_number":"B12","firmware_version":"1.0.0"}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body %s", rec.Code, rec.Body.String())
	}

	body := decodeEnvelope(t, rec)
	if body["success"] != true {
		t.Error("success = false, want true")
	}
	if body["message"] != "registered successfully" {
		t.Errorf("message = %v, want %q", body["message"], "registered successfully")
	}
	if body["mac"] != testMAC {
		t.Errorf("mac = %v, want canonical %s", body["mac"], testMAC)
	}

	dev, err := repo.GetByMAC(context.Background(), testMAC)
	if err != nil {
		t.Fatalf("GetByMAC() error = %v", err)
	}
	if dev.MailboxID != "mb-001" {
		t.Errorf("MailboxID = %s, want mb-001", dev.MailboxID)
	}
	if dev.FirmwareVersion == nil || *dev.FirmwareVersion != "1.0.0" {
		t.Errorf("FirmwareVersion = %v, want 1.0.0", dev.FirmwareVersion)
	}
}

func TestRegisterUnknownMailbox(t *testing.T) {
	srv, _ := testServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/register",
		`{"mac":"AA:BB:CC:DD:EE:FF","mailbox_number":"Z99"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	body := decodeEnvelope(t, rec)
	if body["success"] != false {
		t.Error("success = true, want false")
	}
	if body["message"] != "Mailbox not found" {
		t.Errorf("message = %v, want %q", body["message"], "Mailbox not found")
	}
}

func TestRegisterIdempotent(t *testing.T) {
	srv, _ := testServer(t)

	payload := `{"mac":"AA:BB:CC:DD:EE:FF","mailbox_number":"B12"}`

	rec := doRequest(t, srv, http.MethodPost, "/api/register", payload, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("first register status = %d, want 201", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodPost, "/api/register", payload, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("duplicate register status = %d, want 200", rec.Code)
	}

	body := decodeEnvelope(t, rec)
	if body["success"] != true {
		t.Error("duplicate registration should still be success")
	}
	if body["message"] != "already registered" {
		t.Errorf("message = %v, want %q", body["message"], "already registered")
	}
}

func TestRegisterInvalidMAC(t *testing.T) {
	srv, _ := testServer(t)

	tests := []struct {
		name    string
		payload string
	}{
		{"missing mac", `{"mailbox_number":"B12"}`},
		{"empty mac", `{"mac":"","mailbox_number":"B12"}`},
		{"garbage mac", `{"mac":"hello-world","mailbox_number":"B12"}`},
		{"truncated mac", `{"mac":"AA:BB:CC","mailbox_number":"B12"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, srv, http.MethodPost, "/api/register", tt.payload, nil)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestRegisterMissingMailboxNumber(t *testing.T) {
	srv, _ := testServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/register",
		`{"mac":"AA:BB:CC:DD:EE:FF"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestRegisterInvalidBody(t *testing.T) {
	srv, _ := testServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/register", `{not json`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
