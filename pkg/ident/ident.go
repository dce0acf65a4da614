// Package ident provides the identifier key used by every table in langkit.
package ident

import "strings"

// Identifier names a program entity. It is comparable and usable as a map key.
type Identifier struct {
	name string
}

// New returns the identifier for name.
func New(name string) Identifier {
	return Identifier{name: name}
}

// Name returns the underlying name.
func (id Identifier) Name() string {
	return id.name
}

func (id Identifier) String() string {
	return id.name
}

// IsZero reports whether id is the empty identifier.
func (id Identifier) IsZero() bool {
	return id.name == ""
}

// Compare orders identifiers by name. It returns -1, 0 or +1.
func (id Identifier) Compare(other Identifier) int {
	return strings.Compare(id.name, other.name)
}

// Less reports whether id sorts before other.
func (id Identifier) Less(other Identifier) bool {
	return id.name < other.name
}
