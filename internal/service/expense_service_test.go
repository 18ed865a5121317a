package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitpot/splitpot/internal/calculator"
	"github.com/splitpot/splitpot/internal/models"
	"github.com/splitpot/splitpot/internal/storage/sqlite"
)

type fixture struct {
	store    *sqlite.SQLiteStore
	expenses *ExpenseService
	groups   *GroupService
	alice    *models.User
	bob      *models.User
	carol    *models.User
	group    *models.Group
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	f := &fixture{
		store:    store,
		expenses: NewExpenseService(store),
		groups:   NewGroupService(store),
	}
	f.alice = models.NewUser("alice@example.com", "Alice", "hash")
	f.bob = models.NewUser("bob@example.com", "Bob", "hash")
	f.carol = models.NewUser("carol@example.com", "Carol", "hash")
	for _, u := range []*models.User{f.alice, f.bob, f.carol} {
		require.NoError(t, store.CreateUser(ctx, u))
	}

	group, err := f.groups.CreateGroup(ctx, f.alice.ID, "trip", []string{f.bob.ID, f.carol.ID})
	require.NoError(t, err)
	f.group = group
	return f
}

func (f *fixture) balanceOf(t *testing.T, userID string) BalanceDetail {
	t.Helper()
	balances, err := f.expenses.GetBalances(context.Background(), f.alice.ID, f.group.ID)
	require.NoError(t, err)
	for _, b := range balances {
		if b.Member.ID == userID {
			return b
		}
	}
	t.Fatalf("no balance for %s", userID)
	return BalanceDetail{}
}

// Two expenses, three members: the walkthrough that pins down the
// netting and projection semantics end to end.
func TestExpenseFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Alice pays 90, split equally among all three.
	_, shares, err := f.expenses.AddExpense(ctx, f.alice.ID, AddExpenseInput{
		GroupID:        f.group.ID,
		PayerID:        f.alice.ID,
		Amount:         90,
		Description:    "groceries",
		ParticipantIDs: []string{f.alice.ID, f.bob.ID, f.carol.ID},
	})
	require.NoError(t, err)
	require.Len(t, shares, 3)
	for _, sh := range shares {
		assert.Equal(t, int64(30), sh.Amount)
	}

	// Bob pays 60, split equally between Bob and Carol.
	_, _, err = f.expenses.AddExpense(ctx, f.bob.ID, AddExpenseInput{
		GroupID:        f.group.ID,
		PayerID:        f.bob.ID,
		Amount:         60,
		Description:    "gas",
		ParticipantIDs: []string{f.bob.ID, f.carol.ID},
	})
	require.NoError(t, err)

	edges, err := f.store.ListEdges(ctx, f.group.ID)
	require.NoError(t, err)
	require.Len(t, edges, 3)

	alice := f.balanceOf(t, f.alice.ID)
	bob := f.balanceOf(t, f.bob.ID)
	carol := f.balanceOf(t, f.carol.ID)

	assert.Equal(t, int64(60), alice.NetBalance)
	assert.Equal(t, int64(0), bob.NetBalance)
	assert.Equal(t, int64(-60), carol.NetBalance)
	assert.Equal(t, "Alice", alice.Member.DisplayName)

	require.Len(t, carol.Owes, 2)
	assert.Empty(t, carol.OwedBy)
	require.Len(t, bob.Owes, 1)
	require.Len(t, bob.OwedBy, 1)

	var sum int64
	for _, b := range []BalanceDetail{alice, bob, carol} {
		sum += b.NetBalance
	}
	assert.Equal(t, int64(0), sum)
}

func TestAddExpense_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	outsider := models.NewUser("dave@example.com", "Dave", "hash")
	require.NoError(t, f.store.CreateUser(ctx, outsider))

	base := AddExpenseInput{
		GroupID:        f.group.ID,
		PayerID:        f.alice.ID,
		Amount:         100,
		Description:    "x",
		ParticipantIDs: []string{f.alice.ID, f.bob.ID},
	}

	t.Run("zero amount", func(t *testing.T) {
		in := base
		in.Amount = 0
		_, _, err := f.expenses.AddExpense(ctx, f.alice.ID, in)
		assert.ErrorIs(t, err, calculator.ErrInvalidAmount)
	})

	t.Run("no participants", func(t *testing.T) {
		in := base
		in.ParticipantIDs = nil
		_, _, err := f.expenses.AddExpense(ctx, f.alice.ID, in)
		assert.ErrorIs(t, err, calculator.ErrNoParticipants)
	})

	t.Run("unknown group", func(t *testing.T) {
		in := base
		in.GroupID = "nope"
		_, _, err := f.expenses.AddExpense(ctx, f.alice.ID, in)
		assert.ErrorIs(t, err, ErrGroupNotFound)
	})

	t.Run("payer not a member", func(t *testing.T) {
		in := base
		in.PayerID = outsider.ID
		_, _, err := f.expenses.AddExpense(ctx, f.alice.ID, in)
		assert.ErrorIs(t, err, ErrNotGroupMember)
	})

	t.Run("participant not a member", func(t *testing.T) {
		in := base
		in.ParticipantIDs = []string{f.alice.ID, outsider.ID}
		_, _, err := f.expenses.AddExpense(ctx, f.alice.ID, in)
		assert.ErrorIs(t, err, ErrNotGroupMember)
	})

	t.Run("actor not a member", func(t *testing.T) {
		_, _, err := f.expenses.AddExpense(ctx, outsider.ID, base)
		assert.ErrorIs(t, err, ErrNotGroupMember)
	})

	// Nothing persisted by any of the rejected calls.
	expenses, err := f.store.ListExpensesByGroup(ctx, f.group.ID, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, expenses)
	edges, err := f.store.ListEdges(ctx, f.group.ID)
	require.NoError(t, err)
	assert.Empty(t, edges)
}

// Updating an expense reverses its old ledger effect before the new
// shares land: the edge set ends up as if the expense had always had
// the new values.
func TestUpdateExpense_ReverseThenReapply(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	expense, _, err := f.expenses.AddExpense(ctx, f.alice.ID, AddExpenseInput{
		GroupID:        f.group.ID,
		PayerID:        f.alice.ID,
		Amount:         90,
		Description:    "dinner",
		ParticipantIDs: []string{f.alice.ID, f.bob.ID, f.carol.ID},
	})
	require.NoError(t, err)

	// Shrink the amount and drop Carol from the split.
	newAmount := int64(60)
	updated, shares, err := f.expenses.UpdateExpense(ctx, f.bob.ID, expense.ID, UpdateExpenseInput{
		Amount:         &newAmount,
		ParticipantIDs: []string{f.alice.ID, f.bob.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(60), updated.Amount)
	require.Len(t, shares, 2)
	assert.Equal(t, int64(30), shares[0].Amount)

	edges, err := f.store.ListEdges(ctx, f.group.ID)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, f.bob.ID, edges[0].DebtorID)
	assert.Equal(t, f.alice.ID, edges[0].CreditorID)
	assert.Equal(t, int64(30), edges[0].Amount)

	// Carol no longer owes anything.
	assert.Equal(t, int64(0), f.balanceOf(t, f.carol.ID).NetBalance)
}

// An amount-only update keeps the old participant list and still
// recomputes the ledger.
func TestUpdateExpense_AmountOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	expense, _, err := f.expenses.AddExpense(ctx, f.alice.ID, AddExpenseInput{
		GroupID:        f.group.ID,
		PayerID:        f.alice.ID,
		Amount:         100,
		Description:    "tickets",
		ParticipantIDs: []string{f.alice.ID, f.bob.ID},
	})
	require.NoError(t, err)

	newAmount := int64(200)
	_, shares, err := f.expenses.UpdateExpense(ctx, f.alice.ID, expense.ID, UpdateExpenseInput{
		Amount: &newAmount,
	})
	require.NoError(t, err)
	require.Len(t, shares, 2)
	assert.Equal(t, f.alice.ID, shares[0].ParticipantID)

	edges, err := f.store.ListEdges(ctx, f.group.ID)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, int64(100), edges[0].Amount)
}

func TestDeleteExpense(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	expense, _, err := f.expenses.AddExpense(ctx, f.alice.ID, AddExpenseInput{
		GroupID:        f.group.ID,
		PayerID:        f.alice.ID,
		Amount:         90,
		Description:    "dinner",
		ParticipantIDs: []string{f.alice.ID, f.bob.ID, f.carol.ID},
	})
	require.NoError(t, err)

	// Only the creator may delete.
	err = f.expenses.DeleteExpense(ctx, f.bob.ID, expense.ID)
	assert.ErrorIs(t, err, ErrNotExpenseCreator)

	require.NoError(t, f.expenses.DeleteExpense(ctx, f.alice.ID, expense.ID))

	// The ledger effect is fully reversed.
	edges, err := f.store.ListEdges(ctx, f.group.ID)
	require.NoError(t, err)
	assert.Empty(t, edges)

	err = f.expenses.DeleteExpense(ctx, f.alice.ID, expense.ID)
	assert.ErrorIs(t, err, ErrExpenseNotFound)
}

func TestListExpenses(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	descriptions := []string{"first", "second", "third"}
	for _, d := range descriptions {
		_, _, err := f.expenses.AddExpense(ctx, f.alice.ID, AddExpenseInput{
			GroupID:        f.group.ID,
			PayerID:        f.alice.ID,
			Amount:         100,
			Description:    d,
			ParticipantIDs: []string{f.alice.ID, f.bob.ID},
		})
		require.NoError(t, err)
	}

	details, err := f.expenses.ListExpenses(ctx, f.bob.ID, f.group.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, details, 3)

	// Newest first, with display data resolved.
	assert.Equal(t, "third", details[0].Expense.Description)
	assert.Equal(t, "first", details[2].Expense.Description)
	assert.Equal(t, "Alice", details[0].Payer.DisplayName)
	require.Len(t, details[0].Shares, 2)
	assert.Equal(t, "Alice", details[0].Shares[0].Participant.DisplayName)
	assert.Equal(t, "Bob", details[0].Shares[1].Participant.DisplayName)

	// Non-members cannot list.
	outsider := models.NewUser("dave@example.com", "Dave", "hash")
	require.NoError(t, f.store.CreateUser(ctx, outsider))
	_, err = f.expenses.ListExpenses(ctx, outsider.ID, f.group.ID, 0, 0)
	assert.ErrorIs(t, err, ErrNotGroupMember)
}

// Reading balances twice on an unchanged ledger returns identical
// results.
func TestGetBalances_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _, err := f.expenses.AddExpense(ctx, f.alice.ID, AddExpenseInput{
		GroupID:        f.group.ID,
		PayerID:        f.alice.ID,
		Amount:         1000,
		Description:    "rent",
		ParticipantIDs: []string{f.alice.ID, f.bob.ID, f.carol.ID},
	})
	require.NoError(t, err)

	first, err := f.expenses.GetBalances(ctx, f.alice.ID, f.group.ID)
	require.NoError(t, err)
	second, err := f.expenses.GetBalances(ctx, f.alice.ID, f.group.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

// Concurrent adds to the same group must not lose updates: every
// expense's ledger effect lands, and the result is the same as if they
// had run one after another.
func TestAddExpense_ConcurrentSameGroup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := f.expenses.AddExpense(ctx, f.alice.ID, AddExpenseInput{
				GroupID:        f.group.ID,
				PayerID:        f.alice.ID,
				Amount:         10,
				Description:    "coffee",
				ParticipantIDs: []string{f.alice.ID, f.bob.ID},
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	edges, err := f.store.ListEdges(ctx, f.group.ID)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, int64(5*workers), edges[0].Amount)

	var sum int64
	balances, err := f.expenses.GetBalances(ctx, f.alice.ID, f.group.ID)
	require.NoError(t, err)
	for _, b := range balances {
		sum += b.NetBalance
	}
	assert.Equal(t, int64(0), sum)
}
