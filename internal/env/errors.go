package env

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Domain errors for the env package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, env.ErrKeyAbsent) {
//	    // path not declared by this environment
//	}
var (
	// ErrVersion is returned when an environment document is missing its
	// version tag or carries one outside the supported set.
	ErrVersion = errors.New("env: unsupported environment version")

	// ErrKeyAbsent is returned by accessors when the requested path does
	// not exist in the environment document.
	ErrKeyAbsent = errors.New("env: key not found")

	// ErrMismatch is the match target for *MismatchError.
	ErrMismatch = errors.New("env: requirement not satisfied")
)

// MismatchError is returned by Helper.Check when a required environment
// tree is not contained in the available one. It carries both trees so
// callers can log exactly what was asked for and what the station declares.
type MismatchError struct {
	Required  *Tree
	Available *Tree
}

func (e *MismatchError) Error() string {
	req, _ := json.Marshal(e.Required)
	avail, _ := json.Marshal(e.Available)
	return fmt.Sprintf("env: requirement not satisfied\n required: %s\n available: %s", req, avail)
}

// Is makes errors.Is(err, ErrMismatch) succeed for *MismatchError values.
func (e *MismatchError) Is(target error) bool {
	return target == ErrMismatch
}
