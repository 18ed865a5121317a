// Package calculator computes exact per-participant shares of an
// expense amount. All arithmetic is on int64 minor currency units, so
// the shares of an amount always sum back to it exactly.
package calculator

import (
	"errors"
	"math"
)

var (
	// ErrNoParticipants is returned when the participant list is empty.
	ErrNoParticipants = errors.New("at least one participant required")

	// ErrInvalidAmount is returned when the amount is zero or negative.
	ErrInvalidAmount = errors.New("amount must be positive")
)

// Split divides amount (minor currency units) equally among the given
// participants and returns one share per participant, in input order.
//
// base = amount / n rounds down; the remaining amount % n cents go to
// the first participants in input order, one cent each. Callers rely on
// this ordering contract, so participants must be passed in a stable
// order and never re-sorted here.
func Split(amount int64, participantIDs []string) ([]int64, error) {
	if len(participantIDs) == 0 {
		return nil, ErrNoParticipants
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	n := int64(len(participantIDs))
	base := amount / n
	remainder := amount % n

	shares := make([]int64, len(participantIDs))
	for i := range shares {
		shares[i] = base
		if int64(i) < remainder {
			shares[i]++
		}
	}
	return shares, nil
}

// MinorUnits converts a fractional major-unit amount (e.g. 12.345
// dollars) to minor units, rounding half up. Fixed rounding rule so the
// same input always produces the same cents.
func MinorUnits(major float64) int64 {
	return int64(math.Floor(major*100 + 0.5))
}
