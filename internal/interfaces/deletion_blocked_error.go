package interfaces

import "fmt"

// DeletionBlockedError is returned when a record cannot be deleted because
// other records still reference it.
type DeletionBlockedError struct {
	Resource   Entity
	ID         string
	Constraint string
}

func (e *DeletionBlockedError) Error() string {
	return fmt.Sprintf("deletion of %s %s blocked by %s", e.Resource, e.ID, e.Constraint)
}
