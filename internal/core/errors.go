// Package core holds the ports and primitives the application layer is
// built on: typed failures, store interfaces, the event bus and the live
// subscription. It never touches a concrete transport or database.
package core

import "errors"

var (
	// ErrUnauthorized means no valid identity was attached to the call.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound covers a missing resource. Admin-gated mutations also
	// return it when the caller is not the admin, so outsiders cannot
	// probe whether a room exists.
	ErrNotFound = errors.New("not found")

	// ErrBadInput is a validation failure, raised before any store access.
	ErrBadInput = errors.New("bad input")

	// ErrConflict is a uniqueness violation, e.g. two racing creations of
	// the same room name.
	ErrConflict = errors.New("conflict")

	// ErrTimeout is a domain-level expiry, e.g. a stale login code.
	ErrTimeout = errors.New("timeout")
)
