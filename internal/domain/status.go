package domain

import (
	"fmt"
	"strings"
)

// CardStatus is the closed set of card lifecycle states.
type CardStatus string

const (
	StatusActive  CardStatus = "ACTIVE"
	StatusBlocked CardStatus = "BLOCKED"
	StatusExpired CardStatus = "EXPIRED"
)

var statusTransitions = map[CardStatus]map[CardStatus]struct{}{
	StatusActive: {
		StatusBlocked: {},
		StatusExpired: {},
	},
	StatusBlocked: {
		StatusActive:  {},
		StatusExpired: {},
	},
	// EXPIRED is terminal.
	StatusExpired: {},
}

// ParseCardStatus converts a wire string into a CardStatus.
func ParseCardStatus(s string) (CardStatus, error) {
	switch CardStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case StatusActive:
		return StatusActive, nil
	case StatusBlocked:
		return StatusBlocked, nil
	case StatusExpired:
		return StatusExpired, nil
	default:
		return "", fmt.Errorf("unknown card status %q", s)
	}
}

// Valid reports whether the status is one of the known states.
func (s CardStatus) Valid() bool {
	switch s {
	case StatusActive, StatusBlocked, StatusExpired:
		return true
	}
	return false
}

// Usable reports whether a card in this status may originate funds or
// expose its balance. Only ACTIVE cards are usable.
func (s CardStatus) Usable() bool {
	return s == StatusActive
}

// CanTransitionTo reports whether the lifecycle machine permits moving
// from s to next.
func (s CardStatus) CanTransitionTo(next CardStatus) bool {
	allowed, ok := statusTransitions[s]
	if !ok {
		return false
	}
	_, ok = allowed[next]
	return ok
}

func (s CardStatus) String() string {
	return string(s)
}
