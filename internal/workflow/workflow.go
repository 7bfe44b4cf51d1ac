// Package workflow is the single authority on listing moderation: which
// status transitions are legal, who may edit a listing and what each actor
// gets to see of it. Every write path goes through these functions.
package workflow

import (
	"errors"
	"fmt"

	"rentease-service/internal/model"
)

var (
	ErrNotAdmin          = errors.New("only an admin can change a listing's status")
	ErrInvalidTransition = errors.New("status transition not allowed")
	ErrUnknownStatus     = errors.New("unknown status")
)

// ValidateTransition checks that actor may move p to the target status.
// The only edges are pending -> approved and pending -> rejected, and only
// admins may take them.
func ValidateTransition(actor model.Actor, p model.Property, to model.Status) error {
	if !to.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, to)
	}
	if !actor.IsAdmin() {
		return ErrNotAdmin
	}
	if p.Status != model.StatusPending || to == model.StatusPending {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, p.Status, to)
	}
	return nil
}

// CanTransition is the predicate form of ValidateTransition.
func CanTransition(actor model.Actor, p model.Property, to model.Status) bool {
	return ValidateTransition(actor, p, to) == nil
}

// Transition returns p moved to the target status.
func Transition(actor model.Actor, p model.Property, to model.Status) (model.Property, error) {
	if err := ValidateTransition(actor, p, to); err != nil {
		return p, err
	}
	p.Status = to
	return p, nil
}

func Approve(actor model.Actor, p model.Property) (model.Property, error) {
	return Transition(actor, p, model.StatusApproved)
}

func Reject(actor model.Actor, p model.Property) (model.Property, error) {
	return Transition(actor, p, model.StatusRejected)
}

// CanEdit is true for admins and for the owning user, whatever the status.
func CanEdit(actor model.Actor, p model.Property) bool {
	if actor.IsAdmin() {
		return true
	}
	return !actor.Anonymous() && actor.UserID == p.OwnerID
}

// CanViewContactNumber is true only for admins.
func CanViewContactNumber(actor model.Actor, _ model.Property) bool {
	return actor.IsAdmin()
}

// IsPubliclyVisible is true iff the listing has been approved.
func IsPubliclyVisible(p model.Property) bool {
	return p.Status == model.StatusApproved
}

// CanView lets anyone see approved listings; owners and admins also see
// pending and rejected ones.
func CanView(actor model.Actor, p model.Property) bool {
	return IsPubliclyVisible(p) || CanEdit(actor, p)
}

// StatusAfterEdit is the status a listing takes once actor has edited it.
// An owner's edit sends the listing back to review; an admin's edit leaves
// the status alone.
func StatusAfterEdit(actor model.Actor, p model.Property) model.Status {
	if actor.IsAdmin() {
		return p.Status
	}
	return model.StatusPending
}

// Project returns the view of p that actor is allowed to read.
func Project(actor model.Actor, p model.Property) model.PropertyView {
	if !CanViewContactNumber(actor, p) {
		p.ContactNumber = ""
	}
	return model.PropertyView{Property: p, CanEdit: CanEdit(actor, p)}
}
