package models

// SettlementEdge is a directed, netted debt between two group members:
// the debtor owes the creditor the given amount.
//
// Invariants, maintained by the settlement engine:
//   - DebtorID != CreditorID
//   - Amount > 0 (an edge reaching zero is deleted, never stored)
//   - for any pair of members, at most one direction exists at a time
type SettlementEdge struct {
	GroupID    string
	DebtorID   string
	CreditorID string

	// Amount is the outstanding debt in minor currency units.
	Amount int64
}
