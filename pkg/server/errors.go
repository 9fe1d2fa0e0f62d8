package server

import (
	"errors"
	"fmt"
)

// Sentinel errors for the host.
var (
	// ErrInstanceNotFound is returned when an instance ID does not exist.
	ErrInstanceNotFound = errors.New("server: instance not found")

	// ErrWidgetNotFound is returned when no widget is configured under a name.
	ErrWidgetNotFound = errors.New("server: widget not found")

	// ErrHandlerNotFound is returned when no handler is registered for an HID.
	ErrHandlerNotFound = errors.New("server: handler not found")

	// ErrMaxInstances is returned when the instance limit is reached.
	ErrMaxInstances = errors.New("server: max instances reached")

	// ErrNoConnection is returned when sending to an instance with no client attached.
	ErrNoConnection = errors.New("server: no connection")
)

// EventError wraps a failure while dispatching one client event.
type EventError struct {
	Instance string
	HID      string
	Event    string
	Err      error
}

func (e *EventError) Error() string {
	return fmt.Sprintf("server: instance %s: %s on %s: %v", e.Instance, e.Event, e.HID, e.Err)
}

func (e *EventError) Unwrap() error {
	return e.Err
}
