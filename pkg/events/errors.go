package events

import "errors"

var (
	// ErrStorageNil is returned when a nil storage is provided.
	ErrStorageNil = errors.New("storage cannot be nil")

	// ErrPayloadNil is returned when recording a nil payload.
	ErrPayloadNil = errors.New("payload cannot be nil")

	// ErrNoEventToClaim signals an empty queue; not an error condition.
	ErrNoEventToClaim = errors.New("no event to claim")

	// ErrHandlerNotFound is returned when no handler is registered for an
	// event name.
	ErrHandlerNotFound = errors.New("no handler registered for event")

	// ErrNoHandlers is returned when a worker starts with nothing registered.
	ErrNoHandlers = errors.New("no event handlers registered")

	// ErrAlreadyDispatched is returned when a recorder is reused after its
	// events have been handed to storage.
	ErrAlreadyDispatched = errors.New("recorder already dispatched")
)
