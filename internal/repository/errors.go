// Package repository defines the document store used by the sync
// engine and the error values shared by its implementations.  These
// sentinel values allow higher layers such as handlers to distinguish
// between failure scenarios.  For example, ErrNotFound indicates that
// a referenced document does not exist, while ErrConflict signals a
// write that cannot be applied to the current state of the store.
package repository

import "errors"

// ErrNotFound is returned when a document lookup or an update targets
// an id that is not present in the collection.  Handlers should
// translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation it is
// not allowed to perform.  Handlers should translate this into an HTTP
// 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a batch cannot be applied because of
// conflicting state, such as a write with an empty id.  Handlers should
// translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrInvalidField is returned for filter or order fields that are not
// plain identifiers.
var ErrInvalidField = errors.New("invalid field name")
