package models

// SplitStrategyEqual is the only split strategy currently supported:
// the amount is divided evenly, with the remainder cents going to the
// first participants in input order.
const SplitStrategyEqual = "equal"

// Expense represents one cost paid by a group member on behalf of a set
// of participants.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group this expense belongs to.
	GroupID string

	// PayerID is the user who paid the full amount up front.
	PayerID string

	// Amount is the total cost in minor currency units (cents).
	Amount int64

	// Description is a short human-readable label (e.g., "Groceries").
	Description string

	// Category is an optional free-form category tag.
	Category string

	// SplitStrategy records how the amount was divided among
	// participants. Always SplitStrategyEqual for now.
	SplitStrategy string

	// CreatedBy is the user ID that recorded the expense. Only this
	// user may delete it.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64
}

// ExpenseShare is one participant's portion of an expense. The shares of
// an expense sum to the expense amount exactly.
type ExpenseShare struct {
	ExpenseID     string
	ParticipantID string

	// Amount is this participant's portion in minor currency units.
	Amount int64
}
