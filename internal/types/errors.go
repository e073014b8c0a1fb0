package types

import (
	"errors"
	"fmt"
)

// Domain specific errors for the itinerary core.
var (
	ErrNotFound               = errors.New("requested item not found")
	ErrNotACity               = errors.New("coordinate does not resolve to a city")
	ErrUnsupportedGeolocation = errors.New("geolocation is not supported on this device")
	ErrAcquisitionInProgress  = errors.New("a geolocation request is already in flight")
)

// StoreError wraps a transport or protocol failure while talking to the
// remote cities store. Lookup misses are ErrNotFound, never a StoreError.
type StoreError struct {
	Op    string
	Cause error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("cities store %s: %v", e.Op, e.Cause)
}

func (e *StoreError) Unwrap() error { return e.Cause }

// TransportError wraps a network or protocol failure against the
// reverse-geocoding service, keeping it distinguishable from the
// domain-classified ErrNotACity.
type TransportError struct {
	Op    string
	Cause error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

func (e *TransportError) Unwrap() error { return e.Cause }

// ValidationError marks a creation rejected before any store call was made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
