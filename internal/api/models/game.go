package models

// PlayerRequest identifies one side of a new game.
type PlayerRequest struct {
	ID   string `json:"id" binding:"required,max=64"`
	Name string `json:"name" binding:"max=64"`
}

// CreateGameRequest defines the body of POST /api/games. A zero size selects
// the server default.
type CreateGameRequest struct {
	Size  int           `json:"size" binding:"omitempty,min=1,max=26"`
	Black PlayerRequest `json:"black"`
	White PlayerRequest `json:"white"`
}

// MoveRequest defines the body of POST /api/games/:id/moves. The move is
// given either as row and col, as SGF notation such as "c3" or
// "swap-pieces", or with swap set.
type MoveRequest struct {
	Player *int   `json:"player" binding:"required,min=0,max=1"`
	Row    *int   `json:"row" binding:"required_without_all=Swap Move,omitempty,min=0"`
	Col    *int   `json:"col" binding:"required_without_all=Swap Move,omitempty,min=0"`
	Move   string `json:"move" binding:"omitempty,max=16"`
	Swap   bool   `json:"swap"`
}

// SeatRequest defines the body of POST /api/games/:id/resign.
type SeatRequest struct {
	Player *int `json:"player" binding:"required,min=0,max=1"`
}

// ImportQuery carries the optional player ids of an imported record.
type ImportQuery struct {
	BlackID string `form:"black_id" binding:"max=64"`
	WhiteID string `form:"white_id" binding:"max=64"`
}

// HistoryQuery pages GET /api/players/:id/games.
type HistoryQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}
