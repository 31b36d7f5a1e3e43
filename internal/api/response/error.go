package response

import (
	"ctchen222/Hex/internal/hex"
	"ctchen222/Hex/internal/repository"
	"errors"
	"net/http"
)

type Error struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Extras  string `json:"extras"`
}

func (e Error) Error() string {
	return e.Extras
}

func NewError(success bool, code int, message string) Error {
	return Error{
		Success: success,
		Code:    code,
		Extras:  message,
	}
}

// FromError maps engine and storage errors to an HTTP status.
func FromError(err error) Error {
	var apiErr Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return NewError(false, StatusOf(err), err.Error())
}

// StatusOf returns the HTTP status for err. The order matters: a move made
// outside the playing state is both an illegal move and an invalid
// transition.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, hex.ErrParse),
		errors.Is(err, hex.ErrInvalidSize),
		errors.Is(err, hex.ErrInvalidPlayer),
		errors.Is(err, hex.ErrInvalidReason):
		return http.StatusBadRequest
	case errors.Is(err, hex.ErrNotYourTurn),
		errors.Is(err, hex.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, hex.ErrIllegalMove),
		errors.Is(err, hex.ErrOutOfBounds),
		errors.Is(err, hex.ErrCellOccupied):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
