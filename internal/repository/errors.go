package repository

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when the addressed entity (or a unit inside it)
// does not exist. Mutations that return it have written nothing.
var ErrNotFound = errors.New("not found")

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
