// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/splitpot/splitpot/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Store defines the persistence operations used by the service layer.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL,
// etc.) without changing the services.
//
// The expense mutations (CreateExpense, UpdateExpense, DeleteExpense)
// write the expense, its shares, and the group's full settlement edge
// set in one transaction: either everything for an expense persists or
// nothing does. A half-applied expense would break the ledger's
// zero-sum invariant.
type Store interface {
	// Users.
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)

	// Groups.
	CreateGroup(ctx context.Context, group *models.Group) error
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)
	ListGroupsByMember(ctx context.Context, userID string) ([]*models.Group, error)
	UpdateGroup(ctx context.Context, group *models.Group) error
	DeleteGroup(ctx context.Context, groupID string) error

	// Expenses and the settlement ledger. The edges argument is the
	// group's complete post-apply edge set; the store replaces the
	// stored set with it atomically alongside the expense change.
	CreateExpense(ctx context.Context, expense *models.Expense, shares []models.ExpenseShare, edges []models.SettlementEdge) error
	UpdateExpense(ctx context.Context, expense *models.Expense, shares []models.ExpenseShare, edges []models.SettlementEdge) error
	DeleteExpense(ctx context.Context, expenseID, groupID string, edges []models.SettlementEdge) error
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, []models.ExpenseShare, error)
	ListExpensesByGroup(ctx context.Context, groupID string, limit, offset int) ([]*models.Expense, error)
	ListSharesByExpenseIDs(ctx context.Context, expenseIDs []string) (map[string][]models.ExpenseShare, error)
	ListEdges(ctx context.Context, groupID string) ([]models.SettlementEdge, error)

	// Close releases any resources held by the store.
	Close() error
}
