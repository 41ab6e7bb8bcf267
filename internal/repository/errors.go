// Package repository holds the MySQL data access layer. The sentinel
// errors below let higher layers tell failure scenarios apart without
// inspecting driver errors.
package repository

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when a lookup by key matches no row.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a write violates a unique key, such as a
// second registration for the same account.
var ErrConflict = errors.New("conflict")

// ErrEmailExists is returned when an identity with the same email exists.
var ErrEmailExists = errors.New("email already exists")

// ErrUnknownColumn is returned when a filter, order or patch names a column
// the collection does not expose.
var ErrUnknownColumn = errors.New("unknown column")

// ErrInvalidValue is returned when a filter value cannot be converted to
// the column type.
var ErrInvalidValue = errors.New("invalid value")

// isDuplicate reports a MySQL 1062 duplicate-key error.
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
