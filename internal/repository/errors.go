// Package repository implements data access over the relational store.
// This file defines sentinel errors reused across repositories so handlers
// can map failures to HTTP statuses without inspecting driver errors.
package repository

import "errors"

// ErrNotFound is returned when a referenced entity does not exist.
// Handlers translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when an insert would violate the unique email
// constraint.  Handlers translate this into an HTTP 409 response.
var ErrEmailExists = errors.New("email already exists")

// ErrConflict is returned when an update cannot proceed because of
// conflicting state.  Handlers translate this into an HTTP 409.
var ErrConflict = errors.New("conflict")
