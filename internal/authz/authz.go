// Package authz holds the single ownership rule every resource shares:
// a row is visible and mutable only by the user stamped on it.
package authz

import (
	"errors"
	"fmt"
)

// Owned is implemented by any entity that carries an owning user id,
// directly (products, currencies) or transitively (prices via product).
type Owned interface {
	OwnerID() string
}

// ForbiddenError names the action and resource type but never reveals
// anything else about the row.
type ForbiddenError struct {
	Action   string
	Resource string
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("You are not authorized to %s this %s.", e.Action, e.Resource)
}

// Require gates an action on an owned entity. It runs before any field
// validation side effects so a non-owner always sees the same refusal.
func Require(requesterID string, entity Owned, action, resource string) error {
	if entity.OwnerID() != requesterID {
		return &ForbiddenError{Action: action, Resource: resource}
	}

	return nil
}

func AsForbidden(err error) (*ForbiddenError, bool) {
	var fe *ForbiddenError

	if errors.As(err, &fe) {
		return fe, true
	}

	return nil, false
}
