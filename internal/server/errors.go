package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/splitpot/splitpot/internal/auth"
	"github.com/splitpot/splitpot/internal/calculator"
	"github.com/splitpot/splitpot/internal/ledger"
	"github.com/splitpot/splitpot/internal/service"
)

// errorResponse is the JSON error envelope returned by every endpoint.
type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"`
}

// respondError maps service and validation errors to HTTP statuses and
// stable error codes.
func respondError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, len(verrs))
		for i, fe := range verrs {
			fields[i] = fe.Field()
		}
		c.JSON(http.StatusBadRequest, errorResponse{Error: errorBody{
			Code:    "invalid_request",
			Message: "request validation failed",
			Fields:  fields,
		}})
		return
	}

	status, code := http.StatusInternalServerError, "internal"
	switch {
	case errors.Is(err, calculator.ErrInvalidAmount):
		status, code = http.StatusBadRequest, "invalid_amount"
	case errors.Is(err, calculator.ErrNoParticipants):
		status, code = http.StatusBadRequest, "no_participants"
	case errors.Is(err, auth.ErrWeakPassword):
		status, code = http.StatusBadRequest, "weak_password"
	case errors.Is(err, auth.ErrEmailExists):
		status, code = http.StatusConflict, "email_exists"
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingToken):
		status, code = http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, service.ErrNotGroupMember):
		status, code = http.StatusForbidden, "not_group_member"
	case errors.Is(err, service.ErrNotGroupCreator),
		errors.Is(err, service.ErrNotExpenseCreator):
		status, code = http.StatusForbidden, "not_creator"
	case errors.Is(err, service.ErrGroupNotFound),
		errors.Is(err, service.ErrExpenseNotFound),
		errors.Is(err, service.ErrUserNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, ledger.ErrInconsistent):
		// A bug, not a user error; surface nothing beyond the code.
		status, code = http.StatusInternalServerError, "ledger_inconsistent"
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal error"
	}
	c.JSON(status, errorResponse{Error: errorBody{Code: code, Message: message}})
}

// abortError is respondError for middleware: it also stops the handler
// chain.
func abortError(c *gin.Context, err error) {
	respondError(c, err)
	c.Abort()
}
