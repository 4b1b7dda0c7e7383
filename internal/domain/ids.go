package domain

import "github.com/oklog/ulid/v2"

// NewID returns a lexicographically sortable unique identifier.
func NewID() string {
	return ulid.Make().String()
}
