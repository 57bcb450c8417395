package opus

import (
	"errors"
	"testing"
)

func TestStatusText(t *testing.T) {
	tests := []struct {
		status Status
		text   string
	}{
		{StatusOK, "ok"},
		{StatusBadArg, "bad argument"},
		{StatusBufferTooSmall, "buffer too small"},
		{StatusInternalError, "internal error"},
		{StatusInvalidPacket, "invalid packet"},
		{StatusUnimplemented, "unimplemented"},
		{StatusInvalidState, "invalid state"},
		{StatusAllocFail, "memory allocation failed"},
	}

	for _, tt := range tests {
		if got := tt.status.String(); got != tt.text {
			t.Errorf("Status(%d).String() = %q, want %q", int32(tt.status), got, tt.text)
		}
	}
}

func TestStatusUnknownCode(t *testing.T) {
	// Codes outside the table must render the raw value, not panic.
	s := Status(-42)
	if got, want := s.Error(), "opus: status -42"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestStatusErr(t *testing.T) {
	if err := statusErr(0); err != nil {
		t.Errorf("statusErr(0) = %v, want nil", err)
	}
	if err := statusErr(960); err != nil {
		t.Errorf("statusErr(960) = %v, want nil", err)
	}

	err := statusErr(int32(StatusInvalidPacket))
	if !errors.Is(err, StatusInvalidPacket) {
		t.Errorf("statusErr(-4) = %v, want StatusInvalidPacket", err)
	}
}
