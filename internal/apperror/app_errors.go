package apperror

import "errors"

var (
	ErrInvalidMoveData  = errors.New("invalid move data")
	ErrOpponentNotFound = errors.New("opponent not found")
)
