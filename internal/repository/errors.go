// Package repository implements MySQL persistence for users, cities,
// journeys and bookings.  This file defines sentinel errors shared
// across repositories so higher layers can distinguish failure
// scenarios with errors.Is instead of inspecting driver errors.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.  Handlers translate this into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrCityNotFound indicates that a city id did not match any row.
var ErrCityNotFound = errors.New("city not found")

// ErrJourneyNotFound indicates that a journey id did not match any row.
var ErrJourneyNotFound = errors.New("journey not found")

// ErrBookingNotFound indicates that a booking id did not match any row.
var ErrBookingNotFound = errors.New("booking not found")

// ErrUserNotFound indicates that a user id did not match any row.
var ErrUserNotFound = errors.New("user not found")
