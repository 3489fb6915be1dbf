package models

import "errors"

// Sentinel errors shared by repositories, services and handlers.
// Callers wrap them with fmt.Errorf("%w: ...") to add detail.
var (
	// ErrIncompleteData marks a request with a missing required field
	ErrIncompleteData = errors.New("incomplete data")
	// ErrInvalidInput marks a request with a malformed or out-of-range field
	ErrInvalidInput = errors.New("invalid input")
	// ErrAlreadyExists marks a uniqueness conflict
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotFound marks a missing record
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials is returned for both unknown usernames and wrong passwords
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrForbidden marks an authenticated caller that may not perform the operation
	ErrForbidden = errors.New("forbidden")
	// ErrPartialSync marks a relation sync where some counterparts could not be updated
	ErrPartialSync = errors.New("partial sync failure")
)
