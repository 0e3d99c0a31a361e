package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"raffle/internal/raffle"
)

type apiResponse struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    any            `json:"data,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
}

func Ok(c *gin.Context, data any, meta map[string]any) {
	c.JSON(http.StatusOK, apiResponse{
		Code:    0,
		Message: "ok",
		Data:    data,
		Meta:    meta,
	})
}

func Error(c *gin.Context, status int, message string, meta map[string]any) {
	c.JSON(status, apiResponse{
		Code:    status,
		Message: message,
		Meta:    meta,
	})
}

// LedgerError maps a ledger error to its HTTP status. Validation failures
// are 400, authorization 403, missing pools 404, state conflicts 409.
func LedgerError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, raffle.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, raffle.ErrUnknownPool):
		status = http.StatusNotFound
	case errors.Is(err, raffle.ErrFactoryPaused),
		errors.Is(err, raffle.ErrRaffleEnded),
		errors.Is(err, raffle.ErrRaffleNotEnded),
		errors.Is(err, raffle.ErrAlreadyResolved):
		status = http.StatusConflict
	case errors.Is(err, raffle.ErrInvalidTicketPrice),
		errors.Is(err, raffle.ErrInvalidMaxTickets),
		errors.Is(err, raffle.ErrInvalidDuration),
		errors.Is(err, raffle.ErrInvalidMinimumTickets),
		errors.Is(err, raffle.ErrInvalidPrizeAmount),
		errors.Is(err, raffle.ErrInvalidTicketAmount),
		errors.Is(err, raffle.ErrInvalidPayment),
		errors.Is(err, raffle.ErrExceedsMaxTickets),
		errors.Is(err, raffle.ErrInvalidPlatformFee),
		errors.Is(err, raffle.ErrInvalidPlatformWallet),
		errors.Is(err, raffle.ErrInvalidWinner):
		status = http.StatusBadRequest
	}
	Error(c, status, err.Error(), nil)
}
