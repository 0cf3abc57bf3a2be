package database

import "fmt"

// LinkError is returned when a block does not correctly follow its parent.
type LinkError struct {
	Index  uint64
	Reason string
	Got    string
	Exp    string
}

// Error implements the error interface.
func (le *LinkError) Error() string {
	return fmt.Sprintf("block %d: %s, got %s, exp %s", le.Index, le.Reason, le.Got, le.Exp)
}
