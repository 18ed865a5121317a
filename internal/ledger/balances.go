package ledger

import "sort"

// Entry is one counterparty line in a member's balance: who, and how
// much.
type Entry struct {
	UserID string
	Amount int64
}

// MemberBalance is a member's aggregate position across all edges.
// NetBalance > 0 means the member is owed money, < 0 means they owe.
type MemberBalance struct {
	UserID     string
	NetBalance int64
	Owes       []Entry
	OwedBy     []Entry
}

// Balances projects an edge set into per-member balances. The result
// covers every listed member plus anyone referenced by an edge (a
// member removed from the group keeps their outstanding position), and
// is sorted by user ID so repeated reads of an unchanged ledger are
// identical. Net balances always sum to zero.
func Balances(memberIDs []string, edges []Edge) []MemberBalance {
	byID := make(map[string]*MemberBalance, len(memberIDs))
	for _, id := range memberIDs {
		byID[id] = &MemberBalance{UserID: id}
	}
	get := func(id string) *MemberBalance {
		if b, ok := byID[id]; ok {
			return b
		}
		b := &MemberBalance{UserID: id}
		byID[id] = b
		return b
	}

	for _, e := range edges {
		debtor := get(e.Debtor)
		creditor := get(e.Creditor)
		debtor.NetBalance -= e.Amount
		creditor.NetBalance += e.Amount
		debtor.Owes = append(debtor.Owes, Entry{UserID: e.Creditor, Amount: e.Amount})
		creditor.OwedBy = append(creditor.OwedBy, Entry{UserID: e.Debtor, Amount: e.Amount})
	}

	out := make([]MemberBalance, 0, len(byID))
	for _, b := range byID {
		sortEntries(b.Owes)
		sortEntries(b.OwedBy)
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].UserID < entries[j].UserID })
}
