// internal/models/moderation.go
package models

import (
	"errors"
	"strings"
)

var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrReasonRequired    = errors.New("rejection reason is required")
)

// StatusChange is the single logical update a moderation decision writes:
// the new status plus the reason, which is nil on every path except rejection.
type StatusChange struct {
	From   ProductStatus
	To     ProductStatus
	Reason *string
}

// CanTransition reports whether moderation may move a listing from one status to another.
// Only pending listings can be decided; published and rejected are terminal.
func CanTransition(from, to ProductStatus) bool {
	if from != ProductStatusPending {
		return false
	}
	return to == ProductStatusPublished || to == ProductStatusRejected
}

// PlanTransition validates a moderation decision and returns the update to apply.
func PlanTransition(current, target ProductStatus, reason string) (StatusChange, error) {
	if !CanTransition(current, target) {
		return StatusChange{}, ErrInvalidTransition
	}

	change := StatusChange{From: current, To: target}
	if target == ProductStatusRejected {
		if strings.TrimSpace(reason) == "" {
			return StatusChange{}, ErrReasonRequired
		}
		r := reason
		change.Reason = &r
	}

	return change, nil
}

// ApplyTo writes the change onto an in-memory copy of the product.
func (c StatusChange) ApplyTo(p *Product) {
	p.Status = c.To
	if c.Reason != nil {
		r := *c.Reason
		p.RejectionReason = &r
	} else {
		p.RejectionReason = nil
	}
}
