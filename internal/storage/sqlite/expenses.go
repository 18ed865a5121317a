package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/splitpot/splitpot/internal/models"
	"github.com/splitpot/splitpot/internal/storage"
)

// CreateExpense persists an expense, its shares, and the group's
// post-apply settlement edge set in one transaction.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense, shares []models.ExpenseShare, edges []models.SettlementEdge) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}
	if expense.SplitStrategy == "" {
		expense.SplitStrategy = models.SplitStrategyEqual
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO expenses (id, group_id, payer_id, amount, description, category, split_strategy, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.GroupID, expense.PayerID, expense.Amount,
		expense.Description, expense.Category, expense.SplitStrategy,
		expense.CreatedBy, expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	if err := insertShares(ctx, tx, expense.ID, shares); err != nil {
		return err
	}
	if err := replaceEdges(ctx, tx, expense.GroupID, edges); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// UpdateExpense rewrites an expense, replaces its shares, and replaces
// the group's settlement edge set in one transaction.
func (s *SQLiteStore) UpdateExpense(ctx context.Context, expense *models.Expense, shares []models.ExpenseShare, edges []models.SettlementEdge) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE expenses SET amount = ?, description = ?, category = ?, split_strategy = ?
		 WHERE id = ?`,
		expense.Amount, expense.Description, expense.Category, expense.SplitStrategy, expense.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("expense %s: %w", expense.ID, storage.ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM expense_shares WHERE expense_id = ?", expense.ID,
	); err != nil {
		return fmt.Errorf("failed to clear expense shares: %w", err)
	}
	if err := insertShares(ctx, tx, expense.ID, shares); err != nil {
		return err
	}
	if err := replaceEdges(ctx, tx, expense.GroupID, edges); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteExpense removes an expense (shares cascade) and replaces the
// group's settlement edge set in one transaction.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID, groupID string, edges []models.SettlementEdge) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}

	if err := replaceEdges(ctx, tx, groupID, edges); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetExpense retrieves an expense and its shares in original input
// order.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, []models.ExpenseShare, error) {
	expense := &models.Expense{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, group_id, payer_id, amount, description, category, split_strategy, created_by, created_at
		 FROM expenses WHERE id = ?`,
		expenseID,
	).Scan(&expense.ID, &expense.GroupID, &expense.PayerID, &expense.Amount,
		&expense.Description, &expense.Category, &expense.SplitStrategy,
		&expense.CreatedBy, &expense.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get expense: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT expense_id, participant_id, amount
		 FROM expense_shares WHERE expense_id = ? ORDER BY position`,
		expenseID,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get expense shares: %w", err)
	}
	defer rows.Close()

	var shares []models.ExpenseShare
	for rows.Next() {
		var share models.ExpenseShare
		if err := rows.Scan(&share.ExpenseID, &share.ParticipantID, &share.Amount); err != nil {
			return nil, nil, fmt.Errorf("failed to scan expense share: %w", err)
		}
		shares = append(shares, share)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to iterate expense shares: %w", err)
	}

	return expense, shares, nil
}

// ListExpensesByGroup retrieves the group's expenses newest first.
// limit <= 0 means no limit.
func (s *SQLiteStore) ListExpensesByGroup(ctx context.Context, groupID string, limit, offset int) ([]*models.Expense, error) {
	if limit <= 0 {
		limit = -1 // SQLite: negative LIMIT means unlimited
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, payer_id, amount, description, category, split_strategy, created_by, created_at
		 FROM expenses WHERE group_id = ?
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT ? OFFSET ?`,
		groupID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		expense := &models.Expense{}
		if err := rows.Scan(&expense.ID, &expense.GroupID, &expense.PayerID, &expense.Amount,
			&expense.Description, &expense.Category, &expense.SplitStrategy,
			&expense.CreatedBy, &expense.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	return expenses, nil
}

// ListSharesByExpenseIDs retrieves shares for multiple expenses, keyed
// by expense ID, each list in original input order.
func (s *SQLiteStore) ListSharesByExpenseIDs(ctx context.Context, expenseIDs []string) (map[string][]models.ExpenseShare, error) {
	shares := make(map[string][]models.ExpenseShare, len(expenseIDs))
	if len(expenseIDs) == 0 {
		return shares, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(expenseIDs)), ", ")
	args := make([]interface{}, len(expenseIDs))
	for i, id := range expenseIDs {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT expense_id, participant_id, amount
		 FROM expense_shares WHERE expense_id IN (`+placeholders+`)
		 ORDER BY expense_id, position`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expense shares: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var share models.ExpenseShare
		if err := rows.Scan(&share.ExpenseID, &share.ParticipantID, &share.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan expense share: %w", err)
		}
		shares[share.ExpenseID] = append(shares[share.ExpenseID], share)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expense shares: %w", err)
	}
	return shares, nil
}

func insertShares(ctx context.Context, tx *sql.Tx, expenseID string, shares []models.ExpenseShare) error {
	for i, share := range shares {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO expense_shares (expense_id, participant_id, position, amount) VALUES (?, ?, ?, ?)",
			expenseID, share.ParticipantID, i, share.Amount,
		); err != nil {
			return fmt.Errorf("failed to insert expense share: %w", err)
		}
	}
	return nil
}
