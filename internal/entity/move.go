package entity

import (
	"fmt"

	"github.com/opengambit/chessrelay-backend/internal/apperror"
)

// Square is a board coordinate. Row and Col are pointers so that a
// missing coordinate in the wire payload is distinguishable from 0.
type Square struct {
	Row *int `json:"row"`
	Col *int `json:"col"`
}

type Piece struct {
	Type  string `json:"type"`
	Color string `json:"color"`
}

// Move is the client-supplied move payload. OpponentID addresses the
// peer the move is relayed to; it is never echoed back to that peer.
type Move struct {
	OpponentID string  `json:"opponentId,omitempty"`
	From       *Square `json:"from"`
	To         *Square `json:"to"`
	Piece      *Piece  `json:"piece"`
}

// Validate checks the move structurally. Semantic legality of the move
// is the clients' responsibility.
func (that *Move) Validate() error {
	if that == nil {
		return apperror.ErrInvalidMoveData
	}

	if that.OpponentID == "" {
		return fmt.Errorf("%w: missing opponent id", apperror.ErrInvalidMoveData)
	}

	if !that.From.isComplete() || !that.To.isComplete() {
		return fmt.Errorf("%w: missing coordinates", apperror.ErrInvalidMoveData)
	}

	if that.Piece == nil || that.Piece.Type == "" || that.Piece.Color == "" {
		return fmt.Errorf("%w: missing piece", apperror.ErrInvalidMoveData)
	}

	return nil
}

// Notation renders the move in a plain coordinate form for the history.
func (that *Move) Notation() string {
	return fmt.Sprintf("%s %d,%d-%d,%d", that.Piece.Type, *that.From.Row, *that.From.Col, *that.To.Row, *that.To.Col)
}

func (that *Square) isComplete() bool {
	return that != nil && that.Row != nil && that.Col != nil
}
