package device

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors for the device package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, device.ErrNotSupportedModel) {
//	    // no descriptor claims this model
//	}
var (
	// ErrNotSupportedModel is returned when no registered descriptor
	// claims the requested model name.
	ErrNotSupportedModel = errors.New("device: model not supported")

	// ErrCompositionConflict is the match target for *ConflictError.
	ErrCompositionConflict = errors.New("device: conflicting descriptor members")

	// ErrConnectionRefused is returned (wrapped or bare) by a capability
	// Setup that failed to establish its connection. The composer
	// propagates it unchanged so callers can branch on transport refusal.
	ErrConnectionRefused = errors.New("device: connection refused")

	// ErrSetupFailed wraps every other capability Setup failure together
	// with the model being composed. Setup is never retried.
	ErrSetupFailed = errors.New("device: setup failed")

	// ErrDeviceExists is returned when registering a device whose name is
	// already taken and override was not requested.
	ErrDeviceExists = errors.New("device: already registered")
)

// ConflictError is returned when two or more descriptors selected into one
// composition export the same non-reserved member name. It lists the
// overlapping members and every descriptor considered up to and including
// the offending one.
type ConflictError struct {
	Members     []string
	Descriptors []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("device: conflicting descriptor members %v between %s",
		e.Members, strings.Join(e.Descriptors, ", "))
}

// Is makes errors.Is(err, ErrCompositionConflict) succeed for *ConflictError values.
func (e *ConflictError) Is(target error) bool {
	return target == ErrCompositionConflict
}
