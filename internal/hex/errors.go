package hex

import (
	"errors"
	"fmt"
)

// Errors returned by engine operations. A rejected call never changes state.
var (
	ErrOutOfBounds       = errors.New("coordinate out of bounds")
	ErrCellOccupied      = errors.New("cell already occupied")
	ErrIllegalMove       = errors.New("illegal move")
	ErrNotYourTurn       = errors.New("not your turn")
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrParse             = errors.New("notation parse error")
	ErrInvalidPlayer     = errors.New("invalid player index")
	ErrInvalidSize       = errors.New("invalid board size")
	ErrInvalidReason     = errors.New("invalid end reason")
)

// illegal wraps cause so that both ErrIllegalMove and cause match errors.Is.
func illegal(cause error, format string, args ...any) error {
	return &moveError{cause: cause, msg: fmt.Sprintf(format, args...)}
}

type moveError struct {
	cause error
	msg   string
}

func (e *moveError) Error() string {
	if e.msg == "" {
		return ErrIllegalMove.Error() + ": " + e.cause.Error()
	}
	return ErrIllegalMove.Error() + ": " + e.msg
}

func (e *moveError) Unwrap() []error {
	if e.cause == nil {
		return []error{ErrIllegalMove}
	}
	return []error{ErrIllegalMove, e.cause}
}
