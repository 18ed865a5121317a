// Package models defines the core domain records for Splitpot.
//
// Monetary amounts are stored as int64 minor currency units (cents)
// everywhere. Splitting and settlement arithmetic never touches floating
// point, so share sums and ledger balances are exact by construction.
//
// Record ownership:
//   - User, Group: account and membership records, plain CRUD.
//   - Expense, ExpenseShare: created together; for one expense the share
//     amounts always sum to the expense amount exactly.
//   - SettlementEdge: written only by the settlement engine
//     (internal/ledger via the expense service), never directly by
//     handlers or other services.
package models
