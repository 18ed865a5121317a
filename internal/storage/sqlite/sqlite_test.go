package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitpot/splitpot/internal/models"
	"github.com/splitpot/splitpot/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func seedUser(t *testing.T, store *SQLiteStore, email, name string) *models.User {
	t.Helper()
	user := models.NewUser(email, name, "hash")
	require.NoError(t, store.CreateUser(context.Background(), user))
	return user
}

func seedGroup(t *testing.T, store *SQLiteStore, creator string, members ...string) *models.Group {
	t.Helper()
	group := &models.Group{Name: "test group", CreatedBy: creator, Members: members}
	require.NoError(t, store.CreateGroup(context.Background(), group))
	return group
}

func TestUsers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, store, "alice@example.com", "Alice")

	byEmail, err := store.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, alice.ID, byEmail.ID)
	assert.Equal(t, "Alice", byEmail.DisplayName)

	byID, err := store.GetUserByID(ctx, alice.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, alice.Email, byID.Email)

	missing, err := store.GetUserByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	// Duplicate email rejected by the unique constraint.
	dup := models.NewUser("alice@example.com", "Other Alice", "hash")
	assert.Error(t, store.CreateUser(ctx, dup))

	bob := seedUser(t, store, "bob@example.com", "Bob")
	users, err := store.GetUsersByIDs(ctx, []string{alice.ID, bob.ID, "nope"})
	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, "Bob", users[bob.ID].DisplayName)
}

func TestGroups(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, store, "alice@example.com", "Alice")
	bob := seedUser(t, store, "bob@example.com", "Bob")
	group := seedGroup(t, store, alice.ID, alice.ID, bob.ID)

	got, err := store.GetGroup(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, "test group", got.Name)
	assert.ElementsMatch(t, []string{alice.ID, bob.ID}, got.Members)

	_, err = store.GetGroup(ctx, "nope")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	groups, err := store.ListGroupsByMember(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, group.ID, groups[0].ID)

	got.Name = "renamed"
	got.Members = []string{alice.ID}
	require.NoError(t, store.UpdateGroup(ctx, got))

	updated, err := store.GetGroup(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Name)
	assert.Equal(t, []string{alice.ID}, updated.Members)

	groups, err = store.ListGroupsByMember(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, groups)

	require.NoError(t, store.DeleteGroup(ctx, group.ID))
	_, err = store.GetGroup(ctx, group.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, store.DeleteGroup(ctx, group.ID), storage.ErrNotFound)
}

func TestExpenseLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, store, "alice@example.com", "Alice")
	bob := seedUser(t, store, "bob@example.com", "Bob")
	group := seedGroup(t, store, alice.ID, alice.ID, bob.ID)

	expense := &models.Expense{
		GroupID:     group.ID,
		PayerID:     alice.ID,
		Amount:      1000,
		Description: "dinner",
		CreatedBy:   alice.ID,
	}
	shares := []models.ExpenseShare{
		{ParticipantID: alice.ID, Amount: 500},
		{ParticipantID: bob.ID, Amount: 500},
	}
	edges := []models.SettlementEdge{
		{GroupID: group.ID, DebtorID: bob.ID, CreditorID: alice.ID, Amount: 500},
	}
	require.NoError(t, store.CreateExpense(ctx, expense, shares, edges))
	assert.NotEmpty(t, expense.ID)
	assert.Equal(t, models.SplitStrategyEqual, expense.SplitStrategy)

	gotExpense, gotShares, err := store.GetExpense(ctx, expense.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), gotExpense.Amount)
	require.Len(t, gotShares, 2)
	// Shares come back in input order.
	assert.Equal(t, alice.ID, gotShares[0].ParticipantID)
	assert.Equal(t, bob.ID, gotShares[1].ParticipantID)

	gotEdges, err := store.ListEdges(ctx, group.ID)
	require.NoError(t, err)
	require.Len(t, gotEdges, 1)
	assert.Equal(t, int64(500), gotEdges[0].Amount)

	// Update rewrites shares and replaces the edge set.
	gotExpense.Amount = 600
	newShares := []models.ExpenseShare{
		{ExpenseID: expense.ID, ParticipantID: bob.ID, Amount: 600},
	}
	newEdges := []models.SettlementEdge{
		{GroupID: group.ID, DebtorID: bob.ID, CreditorID: alice.ID, Amount: 600},
	}
	require.NoError(t, store.UpdateExpense(ctx, gotExpense, newShares, newEdges))

	_, gotShares, err = store.GetExpense(ctx, expense.ID)
	require.NoError(t, err)
	require.Len(t, gotShares, 1)
	assert.Equal(t, int64(600), gotShares[0].Amount)

	gotEdges, err = store.ListEdges(ctx, group.ID)
	require.NoError(t, err)
	require.Len(t, gotEdges, 1)
	assert.Equal(t, int64(600), gotEdges[0].Amount)

	// Delete removes the expense and writes the post-reversal edge set.
	require.NoError(t, store.DeleteExpense(ctx, expense.ID, group.ID, nil))
	_, _, err = store.GetExpense(ctx, expense.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	gotEdges, err = store.ListEdges(ctx, group.ID)
	require.NoError(t, err)
	assert.Empty(t, gotEdges)

	assert.ErrorIs(t, store.DeleteExpense(ctx, expense.ID, group.ID, nil), storage.ErrNotFound)
}

func TestListExpensesByGroup(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, store, "alice@example.com", "Alice")
	group := seedGroup(t, store, alice.ID, alice.ID)

	for i := 0; i < 5; i++ {
		expense := &models.Expense{
			GroupID:     group.ID,
			PayerID:     alice.ID,
			Amount:      100,
			Description: fmt.Sprintf("expense %d", i),
			CreatedBy:   alice.ID,
			CreatedAt:   int64(1000 + i),
		}
		shares := []models.ExpenseShare{{ParticipantID: alice.ID, Amount: 100}}
		require.NoError(t, store.CreateExpense(ctx, expense, shares, nil))
	}

	all, err := store.ListExpensesByGroup(ctx, group.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 5)
	// Newest first.
	assert.Equal(t, "expense 4", all[0].Description)
	assert.Equal(t, "expense 0", all[4].Description)

	page, err := store.ListExpensesByGroup(ctx, group.ID, 2, 1)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "expense 3", page[0].Description)
	assert.Equal(t, "expense 2", page[1].Description)

	shares, err := store.ListSharesByExpenseIDs(ctx, []string{all[0].ID, all[1].ID})
	require.NoError(t, err)
	assert.Len(t, shares, 2)
}
