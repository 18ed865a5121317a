package server

import (
	"github.com/splitpot/splitpot/internal/models"
	"github.com/splitpot/splitpot/internal/service"
)

// Request DTOs. Amounts are int64 minor currency units throughout.

type registerRequest struct {
	Email       string `json:"email" binding:"required,email"`
	DisplayName string `json:"display_name" binding:"required"`
	Password    string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type createGroupRequest struct {
	Name      string   `json:"name" binding:"required"`
	MemberIDs []string `json:"member_ids"`
}

type updateGroupRequest struct {
	Name      *string  `json:"name"`
	MemberIDs []string `json:"member_ids"`
}

type addExpenseRequest struct {
	PayerID        string   `json:"payer_id" binding:"required"`
	Amount         int64    `json:"amount" binding:"required,gt=0"`
	Description    string   `json:"description" binding:"required"`
	Category       string   `json:"category"`
	ParticipantIDs []string `json:"participant_ids" binding:"required,min=1"`
}

type updateExpenseRequest struct {
	Amount         *int64   `json:"amount" binding:"omitempty,gt=0"`
	Description    *string  `json:"description"`
	Category       *string  `json:"category"`
	ParticipantIDs []string `json:"participant_ids"`
}

// Response DTOs.

type userResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	CreatedAt   int64  `json:"created_at"`
}

type authResponse struct {
	User  userResponse `json:"user"`
	Token string       `json:"token"`
}

type groupResponse struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	MemberIDs []string `json:"member_ids"`
	CreatedBy string   `json:"created_by"`
	CreatedAt int64    `json:"created_at"`
}

type memberResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type shareResponse struct {
	Participant memberResponse `json:"participant"`
	Amount      int64          `json:"amount"`
}

type expenseResponse struct {
	ID            string          `json:"id"`
	GroupID       string          `json:"group_id"`
	Payer         memberResponse  `json:"payer"`
	Amount        int64           `json:"amount"`
	Description   string          `json:"description"`
	Category      string          `json:"category,omitempty"`
	SplitStrategy string          `json:"split_strategy"`
	Creator       memberResponse  `json:"creator"`
	CreatedAt     int64           `json:"created_at"`
	Shares        []shareResponse `json:"shares"`
}

type balanceEntryResponse struct {
	Member memberResponse `json:"member"`
	Amount int64          `json:"amount"`
}

type balanceResponse struct {
	Member     memberResponse         `json:"member"`
	NetBalance int64                  `json:"net_balance"`
	Owes       []balanceEntryResponse `json:"owes"`
	OwedBy     []balanceEntryResponse `json:"owed_by"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}

func toGroupResponse(g *models.Group) groupResponse {
	return groupResponse{
		ID:        g.ID,
		Name:      g.Name,
		MemberIDs: g.Members,
		CreatedBy: g.CreatedBy,
		CreatedAt: g.CreatedAt,
	}
}

func toMemberResponse(m service.Member) memberResponse {
	return memberResponse{ID: m.ID, DisplayName: m.DisplayName}
}

func toExpenseResponse(d service.ExpenseDetail) expenseResponse {
	resp := expenseResponse{
		ID:            d.Expense.ID,
		GroupID:       d.Expense.GroupID,
		Payer:         toMemberResponse(d.Payer),
		Amount:        d.Expense.Amount,
		Description:   d.Expense.Description,
		Category:      d.Expense.Category,
		SplitStrategy: d.Expense.SplitStrategy,
		Creator:       toMemberResponse(d.Creator),
		CreatedAt:     d.Expense.CreatedAt,
	}
	for _, sh := range d.Shares {
		resp.Shares = append(resp.Shares, shareResponse{
			Participant: toMemberResponse(sh.Participant),
			Amount:      sh.Amount,
		})
	}
	return resp
}

func toBalanceResponse(b service.BalanceDetail) balanceResponse {
	resp := balanceResponse{
		Member:     toMemberResponse(b.Member),
		NetBalance: b.NetBalance,
		Owes:       []balanceEntryResponse{},
		OwedBy:     []balanceEntryResponse{},
	}
	for _, e := range b.Owes {
		resp.Owes = append(resp.Owes, balanceEntryResponse{Member: toMemberResponse(e.Member), Amount: e.Amount})
	}
	for _, e := range b.OwedBy {
		resp.OwedBy = append(resp.OwedBy, balanceEntryResponse{Member: toMemberResponse(e.Member), Amount: e.Amount})
	}
	return resp
}
