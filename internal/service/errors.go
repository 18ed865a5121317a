package service

import "errors"

// Service-level sentinel errors. Handlers map these to HTTP statuses.
var (
	ErrGroupNotFound     = errors.New("group not found")
	ErrExpenseNotFound   = errors.New("expense not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrNotGroupMember    = errors.New("not a member of this group")
	ErrNotGroupCreator   = errors.New("only the group creator may do this")
	ErrNotExpenseCreator = errors.New("only the expense creator may delete it")
)
