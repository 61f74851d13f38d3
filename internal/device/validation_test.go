package device

import (
	"errors"
	"testing"
)

func TestNormalizeMAC(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{
			name:  "already canonical",
			input: "AA:BB:CC:DD:EE:FF",
			want:  "AA:BB:CC:DD:EE:FF",
		},
		{
			name:  "lowercase",
			input: "aa:bb:cc:dd:ee:ff",
			want:  "AA:BB:CC:DD:EE:FF",
		},
		{
			name:  "hyphen separated",
			input: "aa-bb-cc-dd-ee-ff",
			want:  "AA:BB:CC:DD:EE:FF",
		},
		{
			name:  "dot separated",
			input: "aabb.ccdd.eeff",
			want:  "AA:BB:CC:DD:EE:FF",
		},
		{
			name:  "surrounding whitespace",
			input: "  aa:bb:cc:dd:ee:ff  ",
			want:  "AA:BB:CC:DD:EE:FF",
		},
		{
			name:    "empty",
			input:   "",
			wantErr: ErrInvalidMAC,
		},
		{
			name:    "whitespace only",
			input:   "   ",
			wantErr: ErrInvalidMAC,
		},
		{
			name:    "not a mac",
			input:   "hello-world",
			wantErr: ErrInvalidMAC,
		},
		{
			name:    "too short",
			input:   "aa:bb:cc",
			wantErr: ErrInvalidMAC,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeMAC(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("NormalizeMAC(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizeMAC(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("NormalizeMAC(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidateMAC(t *testing.T) {
	if err := ValidateMAC("aa:bb:cc:dd:ee:ff"); err != nil {
		t.Errorf("ValidateMAC valid: %v", err)
	}
	if err := ValidateMAC("nope"); !errors.Is(err, ErrInvalidMAC) {
		t.Errorf("ValidateMAC invalid: got %v, want ErrInvalidMAC", err)
	}
}
