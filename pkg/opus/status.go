package opus

import "fmt"

// Status is a raw libopus status code. Zero and positive values indicate
// success; negative values are errors. Status implements error so negative
// codes can be returned (and wrapped) directly.
type Status int32

// Status codes returned by libopus entry points.
const (
	StatusOK             Status = 0
	StatusBadArg         Status = -1
	StatusBufferTooSmall Status = -2
	StatusInternalError  Status = -3
	StatusInvalidPacket  Status = -4
	StatusUnimplemented  Status = -5
	StatusInvalidState   Status = -6
	StatusAllocFail      Status = -7
)

var statusText = map[Status]string{
	StatusOK:             "ok",
	StatusBadArg:         "bad argument",
	StatusBufferTooSmall: "buffer too small",
	StatusInternalError:  "internal error",
	StatusInvalidPacket:  "invalid packet",
	StatusUnimplemented:  "unimplemented",
	StatusInvalidState:   "invalid state",
	StatusAllocFail:      "memory allocation failed",
}

// String returns the category label for this status. Codes outside the
// known set render as their raw numeric value.
func (s Status) String() string {
	if text, ok := statusText[s]; ok {
		return text
	}
	return fmt.Sprintf("status %d", int32(s))
}

// Error implements the error interface.
func (s Status) Error() string {
	return "opus: " + s.String()
}

// statusErr maps a libopus return code to an error. Non-negative codes
// (success, or a sample count) map to nil.
func statusErr(code int32) error {
	if code >= 0 {
		return nil
	}
	return Status(code)
}
