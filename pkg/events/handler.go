package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

type (
	// Handler consumes one event envelope's payload.
	Handler interface {
		Name() string
		Handle(ctx context.Context, payload json.RawMessage) error
	}

	// HandlerFunc is the typed form business code implements.
	HandlerFunc[T any] func(ctx context.Context, payload T) error
)

// NewHandler builds a Handler for payload type T. The event name is derived
// from the payload's qualified struct name, so the recorder and the worker
// agree on it without a registry.
func NewHandler[T any](fn HandlerFunc[T]) Handler {
	var payload T
	return &typedHandler[T]{
		name: qualifiedStructName(payload),
		fn:   fn,
	}
}

// NewNamedHandler builds a Handler with an explicit event name, for events
// recorded with Recorder.RecordNamed.
func NewNamedHandler[T any](name string, fn HandlerFunc[T]) Handler {
	return &typedHandler[T]{name: name, fn: fn}
}

type typedHandler[T any] struct {
	name string
	fn   HandlerFunc[T]
}

func (h *typedHandler[T]) Name() string {
	return h.name
}

func (h *typedHandler[T]) Handle(ctx context.Context, payload json.RawMessage) error {
	var t T
	if err := json.Unmarshal(payload, &t); err != nil {
		return fmt.Errorf("unmarshal %s payload: %w", h.name, err)
	}
	return h.fn(ctx, t)
}

func qualifiedStructName(v any) string {
	return strings.TrimLeft(fmt.Sprintf("%T", v), "*")
}
