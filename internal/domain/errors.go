package domain

import "errors"

// Sentinel errors for settings operations
var (
	// ErrServerOffline indicates the request server is unreachable
	ErrServerOffline = errors.New("server is unreachable")

	// ErrAuthFailed indicates the API key was rejected
	ErrAuthFailed = errors.New("api key is invalid")

	// ErrNotFound indicates the requested settings resource does not exist
	ErrNotFound = errors.New("settings resource not found")

	// ErrRequestFailed indicates the server answered with a non-2xx status
	ErrRequestFailed = errors.New("request failed")

	// ErrUnreachable indicates a discovered connection cannot be selected
	ErrUnreachable = errors.New("connection is unreachable")

	// ErrBusy indicates a submission is already in flight
	ErrBusy = errors.New("a request is already in progress")

	// ErrInvalid indicates the pending values failed validation
	ErrInvalid = errors.New("settings failed validation")

	// ErrLibraryNotFound indicates the library ID is unknown
	ErrLibraryNotFound = errors.New("library not found")
)
