package platform

import (
	"errors"
	"strings"
)

var (
	// ErrNotSupported reports that an element or document lacks a capability.
	ErrNotSupported = errors.New("capability not supported")

	// ErrHostInternal marks a fault raised inside the host SDK itself.
	ErrHostInternal = errors.New("host internal fault")

	// ErrNonTextSelection is returned by SelectedRange when the selection is
	// on a drawing or another non-text element.
	ErrNonTextSelection = errors.New("selection is not on text")
)

// InternalFaultSignatures are message fragments emitted by the host SDK's
// known-unstable chart internals. Matching is case-sensitive.
var InternalFaultSignatures = []string{
	"reading 'ra'",
	"ra is not a function",
	"ra is undefined",
}

// IsInternalFault reports whether err is the recognized host-internal fault.
func IsInternalFault(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrHostInternal) {
		return true
	}
	msg := err.Error()
	for _, sig := range InternalFaultSignatures {
		if strings.Contains(msg, sig) {
			return true
		}
	}
	return false
}

// IsNotSupported reports whether err signals capability absence.
func IsNotSupported(err error) bool {
	return errors.Is(err, ErrNotSupported)
}
