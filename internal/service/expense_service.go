package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/splitpot/splitpot/internal/calculator"
	"github.com/splitpot/splitpot/internal/ledger"
	"github.com/splitpot/splitpot/internal/models"
	"github.com/splitpot/splitpot/internal/storage"
)

// ExpenseService orchestrates the expense lifecycle: it validates
// membership and input, computes shares, and keeps the group's
// settlement ledger in step with every add, update, and delete.
//
// Every ledger-mutating operation runs under the group's lock and
// persists expense + shares + edges through a single store transaction,
// so the unit of work is all-or-nothing.
type ExpenseService struct {
	store storage.Store
	locks *groupLocks
}

// NewExpenseService creates a new ExpenseService with the given storage
// backend.
func NewExpenseService(store storage.Store) *ExpenseService {
	return &ExpenseService{store: store, locks: newGroupLocks()}
}

// Member is a user reference with display data resolved.
type Member struct {
	ID          string
	DisplayName string
}

// ShareDetail is one participant's share with display data resolved.
type ShareDetail struct {
	Participant Member
	Amount      int64
}

// ExpenseDetail is an expense with payer, creator, and participant
// display data resolved for read APIs.
type ExpenseDetail struct {
	Expense *models.Expense
	Payer   Member
	Creator Member
	Shares  []ShareDetail
}

// BalanceEntry is one counterparty line of a member's balance.
type BalanceEntry struct {
	Member Member
	Amount int64
}

// BalanceDetail is a member's net position with counterparty lists.
type BalanceDetail struct {
	Member     Member
	NetBalance int64
	Owes       []BalanceEntry
	OwedBy     []BalanceEntry
}

// AddExpenseInput carries the fields of a new expense. Amount is in
// minor currency units. ParticipantIDs order matters: remainder cents
// go to the first participants.
type AddExpenseInput struct {
	GroupID        string
	PayerID        string
	Amount         int64
	Description    string
	Category       string
	ParticipantIDs []string
}

// UpdateExpenseInput carries the mutable fields of an expense. Nil
// pointers and a nil participant list leave the current value in place.
type UpdateExpenseInput struct {
	Amount         *int64
	Description    *string
	Category       *string
	ParticipantIDs []string
}

// AddExpense validates the expense, splits the amount, and persists the
// expense together with the updated settlement ledger. The acting user
// must be a group member, as must the payer and every participant.
func (s *ExpenseService) AddExpense(ctx context.Context, actorID string, in AddExpenseInput) (*models.Expense, []models.ExpenseShare, error) {
	if in.Amount <= 0 {
		return nil, nil, calculator.ErrInvalidAmount
	}
	if len(in.ParticipantIDs) == 0 {
		return nil, nil, calculator.ErrNoParticipants
	}

	group, err := s.store.GetGroup(ctx, in.GroupID)
	if err != nil {
		return nil, nil, groupErr(err)
	}
	if err := requireMembers(group, append([]string{actorID, in.PayerID}, in.ParticipantIDs...)); err != nil {
		return nil, nil, err
	}

	amounts, err := calculator.Split(in.Amount, in.ParticipantIDs)
	if err != nil {
		return nil, nil, err
	}

	expense := &models.Expense{
		GroupID:       in.GroupID,
		PayerID:       in.PayerID,
		Amount:        in.Amount,
		Description:   in.Description,
		Category:      in.Category,
		SplitStrategy: models.SplitStrategyEqual,
		CreatedBy:     actorID,
	}

	unlock := s.locks.lock(in.GroupID)
	defer unlock()

	edges, err := s.loadEdges(ctx, in.GroupID)
	if err != nil {
		return nil, nil, err
	}
	newEdges, err := ledger.Apply(edges, in.PayerID, toShares(in.ParticipantIDs, amounts))
	if err != nil {
		return nil, nil, fmt.Errorf("apply expense to ledger: %w", err)
	}

	shares := make([]models.ExpenseShare, len(in.ParticipantIDs))
	for i, pid := range in.ParticipantIDs {
		shares[i] = models.ExpenseShare{ParticipantID: pid, Amount: amounts[i]}
	}

	if err := s.store.CreateExpense(ctx, expense, shares, toEdgeModels(in.GroupID, newEdges)); err != nil {
		return nil, nil, fmt.Errorf("persist expense: %w", err)
	}
	for i := range shares {
		shares[i].ExpenseID = expense.ID
	}

	slog.Info("Expense added",
		"expense_id", expense.ID,
		"group_id", in.GroupID,
		"payer_id", in.PayerID,
		"amount", in.Amount,
		"participants", len(in.ParticipantIDs),
	)
	return expense, shares, nil
}

// UpdateExpense changes an expense's amount, description, category, or
// participant list. The prior ledger effect is fully reversed before
// the recomputed shares are applied, so the edge set ends up exactly as
// if the expense had been recorded with the new values from the start.
func (s *ExpenseService) UpdateExpense(ctx context.Context, actorID, expenseID string, in UpdateExpenseInput) (*models.Expense, []models.ExpenseShare, error) {
	expense, oldShares, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, nil, expenseErr(err)
	}

	group, err := s.store.GetGroup(ctx, expense.GroupID)
	if err != nil {
		return nil, nil, groupErr(err)
	}
	if !group.HasMember(actorID) {
		return nil, nil, ErrNotGroupMember
	}

	if in.Amount != nil {
		expense.Amount = *in.Amount
	}
	if in.Description != nil {
		expense.Description = *in.Description
	}
	if in.Category != nil {
		expense.Category = *in.Category
	}
	participantIDs := in.ParticipantIDs
	if participantIDs == nil {
		participantIDs = make([]string, len(oldShares))
		for i, sh := range oldShares {
			participantIDs[i] = sh.ParticipantID
		}
	}

	if expense.Amount <= 0 {
		return nil, nil, calculator.ErrInvalidAmount
	}
	if len(participantIDs) == 0 {
		return nil, nil, calculator.ErrNoParticipants
	}
	if err := requireMembers(group, participantIDs); err != nil {
		return nil, nil, err
	}

	amounts, err := calculator.Split(expense.Amount, participantIDs)
	if err != nil {
		return nil, nil, err
	}

	unlock := s.locks.lock(expense.GroupID)
	defer unlock()

	edges, err := s.loadEdges(ctx, expense.GroupID)
	if err != nil {
		return nil, nil, err
	}
	// Reverse the old effect first, then apply the new shares.
	reversed, err := ledger.Apply(edges, expense.PayerID, ledger.Negate(toLedgerShares(oldShares)))
	if err != nil {
		return nil, nil, fmt.Errorf("reverse prior ledger effect: %w", err)
	}
	newEdges, err := ledger.Apply(reversed, expense.PayerID, toShares(participantIDs, amounts))
	if err != nil {
		return nil, nil, fmt.Errorf("apply updated expense to ledger: %w", err)
	}

	shares := make([]models.ExpenseShare, len(participantIDs))
	for i, pid := range participantIDs {
		shares[i] = models.ExpenseShare{ExpenseID: expense.ID, ParticipantID: pid, Amount: amounts[i]}
	}

	if err := s.store.UpdateExpense(ctx, expense, shares, toEdgeModels(expense.GroupID, newEdges)); err != nil {
		return nil, nil, expenseErr(err)
	}

	slog.Info("Expense updated",
		"expense_id", expense.ID,
		"group_id", expense.GroupID,
		"amount", expense.Amount,
		"participants", len(participantIDs),
	)
	return expense, shares, nil
}

// DeleteExpense removes an expense after reversing its ledger effect.
// Only the user who recorded the expense may delete it.
func (s *ExpenseService) DeleteExpense(ctx context.Context, actorID, expenseID string) error {
	expense, shares, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return expenseErr(err)
	}
	if expense.CreatedBy != actorID {
		return ErrNotExpenseCreator
	}

	unlock := s.locks.lock(expense.GroupID)
	defer unlock()

	edges, err := s.loadEdges(ctx, expense.GroupID)
	if err != nil {
		return err
	}
	reversed, err := ledger.Apply(edges, expense.PayerID, ledger.Negate(toLedgerShares(shares)))
	if err != nil {
		return fmt.Errorf("reverse ledger effect: %w", err)
	}

	if err := s.store.DeleteExpense(ctx, expenseID, expense.GroupID, toEdgeModels(expense.GroupID, reversed)); err != nil {
		return expenseErr(err)
	}

	slog.Info("Expense deleted", "expense_id", expenseID, "group_id", expense.GroupID)
	return nil
}

// GetExpense retrieves one expense with display data resolved. The
// acting user must be a member of the expense's group.
func (s *ExpenseService) GetExpense(ctx context.Context, actorID, expenseID string) (*ExpenseDetail, error) {
	expense, shares, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, expenseErr(err)
	}
	group, err := s.store.GetGroup(ctx, expense.GroupID)
	if err != nil {
		return nil, groupErr(err)
	}
	if !group.HasMember(actorID) {
		return nil, ErrNotGroupMember
	}

	details, err := s.resolveExpenses(ctx, []*models.Expense{expense}, map[string][]models.ExpenseShare{expense.ID: shares})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

// ListExpenses retrieves the group's expenses newest first, with payer,
// creator, and participant display data resolved.
func (s *ExpenseService) ListExpenses(ctx context.Context, actorID, groupID string, limit, offset int) ([]ExpenseDetail, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, groupErr(err)
	}
	if !group.HasMember(actorID) {
		return nil, ErrNotGroupMember
	}

	expenses, err := s.store.ListExpensesByGroup(ctx, groupID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}

	ids := make([]string, len(expenses))
	for i, e := range expenses {
		ids[i] = e.ID
	}
	sharesByExpense, err := s.store.ListSharesByExpenseIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list expense shares: %w", err)
	}

	return s.resolveExpenses(ctx, expenses, sharesByExpense)
}

// GetBalances projects the group's settlement ledger into per-member
// balances with display names resolved. The projection is pure and
// deterministic; calling it twice on an unchanged ledger returns
// identical results.
func (s *ExpenseService) GetBalances(ctx context.Context, actorID, groupID string) ([]BalanceDetail, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, groupErr(err)
	}
	if !group.HasMember(actorID) {
		return nil, ErrNotGroupMember
	}

	edgeModels, err := s.store.ListEdges(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("list settlement edges: %w", err)
	}
	edges := make([]ledger.Edge, len(edgeModels))
	for i, e := range edgeModels {
		edges[i] = ledger.Edge{Debtor: e.DebtorID, Creditor: e.CreditorID, Amount: e.Amount}
	}

	balances := ledger.Balances(group.Members, edges)

	ids := make([]string, 0, len(balances))
	for _, b := range balances {
		ids = append(ids, b.UserID)
	}
	users, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve balance members: %w", err)
	}
	member := func(id string) Member {
		m := Member{ID: id}
		if u, ok := users[id]; ok {
			m.DisplayName = u.DisplayName
		}
		return m
	}

	out := make([]BalanceDetail, len(balances))
	for i, b := range balances {
		detail := BalanceDetail{Member: member(b.UserID), NetBalance: b.NetBalance}
		for _, e := range b.Owes {
			detail.Owes = append(detail.Owes, BalanceEntry{Member: member(e.UserID), Amount: e.Amount})
		}
		for _, e := range b.OwedBy {
			detail.OwedBy = append(detail.OwedBy, BalanceEntry{Member: member(e.UserID), Amount: e.Amount})
		}
		out[i] = detail
	}
	return out, nil
}

func (s *ExpenseService) loadEdges(ctx context.Context, groupID string) ([]ledger.Edge, error) {
	edgeModels, err := s.store.ListEdges(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("list settlement edges: %w", err)
	}
	edges := make([]ledger.Edge, len(edgeModels))
	for i, e := range edgeModels {
		edges[i] = ledger.Edge{Debtor: e.DebtorID, Creditor: e.CreditorID, Amount: e.Amount}
	}
	return edges, nil
}

func (s *ExpenseService) resolveExpenses(ctx context.Context, expenses []*models.Expense, sharesByExpense map[string][]models.ExpenseShare) ([]ExpenseDetail, error) {
	idSet := make(map[string]struct{})
	for _, e := range expenses {
		idSet[e.PayerID] = struct{}{}
		idSet[e.CreatedBy] = struct{}{}
		for _, sh := range sharesByExpense[e.ID] {
			idSet[sh.ParticipantID] = struct{}{}
		}
	}
	ids := make([]string, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}
	users, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve expense users: %w", err)
	}
	member := func(id string) Member {
		m := Member{ID: id}
		if u, ok := users[id]; ok {
			m.DisplayName = u.DisplayName
		}
		return m
	}

	details := make([]ExpenseDetail, len(expenses))
	for i, e := range expenses {
		detail := ExpenseDetail{
			Expense: e,
			Payer:   member(e.PayerID),
			Creator: member(e.CreatedBy),
		}
		for _, sh := range sharesByExpense[e.ID] {
			detail.Shares = append(detail.Shares, ShareDetail{
				Participant: member(sh.ParticipantID),
				Amount:      sh.Amount,
			})
		}
		details[i] = detail
	}
	return details, nil
}

// requireMembers checks that every listed user is a current group
// member. Fails fast before any write.
func requireMembers(group *models.Group, userIDs []string) error {
	for _, id := range userIDs {
		if !group.HasMember(id) {
			return fmt.Errorf("user %s: %w", id, ErrNotGroupMember)
		}
	}
	return nil
}

func toShares(participantIDs []string, amounts []int64) []ledger.Share {
	shares := make([]ledger.Share, len(participantIDs))
	for i, pid := range participantIDs {
		shares[i] = ledger.Share{ParticipantID: pid, Amount: amounts[i]}
	}
	return shares
}

func toLedgerShares(shares []models.ExpenseShare) []ledger.Share {
	out := make([]ledger.Share, len(shares))
	for i, sh := range shares {
		out[i] = ledger.Share{ParticipantID: sh.ParticipantID, Amount: sh.Amount}
	}
	return out
}

func toEdgeModels(groupID string, edges []ledger.Edge) []models.SettlementEdge {
	out := make([]models.SettlementEdge, len(edges))
	for i, e := range edges {
		out[i] = models.SettlementEdge{
			GroupID:    groupID,
			DebtorID:   e.Debtor,
			CreditorID: e.Creditor,
			Amount:     e.Amount,
		}
	}
	return out
}

func groupErr(err error) error {
	if isNotFound(err) {
		return ErrGroupNotFound
	}
	return err
}

func expenseErr(err error) error {
	if isNotFound(err) {
		return ErrExpenseNotFound
	}
	return err
}

func isNotFound(err error) bool {
	return errors.Is(err, storage.ErrNotFound)
}
