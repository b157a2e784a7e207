package domain

import "github.com/google/uuid"

// NewProjectID generates an id for a project saved without one. IDs are generated
// client-side so records created offline keep the same id once pushed.
func NewProjectID() string {
	return uuid.NewString()
}
