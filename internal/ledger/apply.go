// Package ledger maintains the minimal pairwise debt graph of a group
// and projects it into per-member balances.
//
// The edge set is netted: for any two members at most one directed edge
// exists, its amount is strictly positive, and no member owes
// themselves. Apply is a pure function over an edge set, so the engine
// is unit-testable without storage; the service layer loads a group's
// edges, applies, and persists the result inside one transaction.
package ledger

import (
	"errors"
	"sort"
)

// ErrInconsistent is returned when a stored edge set violates the
// ledger invariants. It indicates corrupted state, not a user error.
var ErrInconsistent = errors.New("settlement ledger inconsistent")

// Share is one participant's portion of an expense. A negative amount
// reverses a previously applied share of the same magnitude.
type Share struct {
	ParticipantID string
	Amount        int64
}

// Edge is a directed debt: Debtor owes Creditor Amount minor units.
type Edge struct {
	Debtor   string
	Creditor string
	Amount   int64
}

// pairKey identifies the unordered member pair of an edge.
type pairKey struct {
	lo, hi string
}

func keyOf(a, b string) pairKey {
	if a < b {
		return pairKey{a, b}
	}
	return pairKey{b, a}
}

// Apply incorporates one expense's shares into an edge set and returns
// the resulting set, sorted by (debtor, creditor) so equal ledgers
// compare equal. The input slice is not modified.
//
// For each participant p with share s (p != payer, the payer's own
// share is not a debt):
//   - s > 0: p owes the payer s more. If the payer already owed p, the
//     amounts net against each other, shrinking, deleting, or flipping
//     the existing edge; otherwise edge(p, payer) grows by s.
//   - s < 0: the mirror-image adjustment, used to reverse a previously
//     applied expense before an update or delete.
func Apply(edges []Edge, payerID string, shares []Share) ([]Edge, error) {
	set := make(map[pairKey]Edge, len(edges))
	for _, e := range edges {
		if e.Debtor == e.Creditor || e.Amount <= 0 {
			return nil, ErrInconsistent
		}
		k := keyOf(e.Debtor, e.Creditor)
		if _, dup := set[k]; dup {
			return nil, ErrInconsistent
		}
		set[k] = e
	}

	for _, sh := range shares {
		if sh.ParticipantID == payerID || sh.Amount == 0 {
			continue
		}
		debtor, creditor, amount := sh.ParticipantID, payerID, sh.Amount
		if amount < 0 {
			debtor, creditor, amount = payerID, sh.ParticipantID, -amount
		}
		addDebt(set, debtor, creditor, amount)
	}

	out := make([]Edge, 0, len(set))
	for _, e := range set {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Debtor != out[j].Debtor {
			return out[i].Debtor < out[j].Debtor
		}
		return out[i].Creditor < out[j].Creditor
	})
	return out, nil
}

// addDebt records that debtor owes creditor amount more, netting
// against an opposing edge if one exists.
func addDebt(set map[pairKey]Edge, debtor, creditor string, amount int64) {
	k := keyOf(debtor, creditor)
	e, ok := set[k]
	if !ok {
		set[k] = Edge{Debtor: debtor, Creditor: creditor, Amount: amount}
		return
	}
	if e.Debtor == debtor {
		e.Amount += amount
		set[k] = e
		return
	}

	// Opposing edge: the creditor currently owes the debtor e.Amount.
	switch {
	case amount == e.Amount:
		delete(set, k)
	case amount < e.Amount:
		e.Amount -= amount
		set[k] = e
	default:
		set[k] = Edge{Debtor: debtor, Creditor: creditor, Amount: amount - e.Amount}
	}
}

// Negate returns the mirror image of shares, for reversing an expense's
// ledger effect.
func Negate(shares []Share) []Share {
	out := make([]Share, len(shares))
	for i, s := range shares {
		out[i] = Share{ParticipantID: s.ParticipantID, Amount: -s.Amount}
	}
	return out
}
