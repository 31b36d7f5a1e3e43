package controller

import (
	"ctchen222/Hex/internal/api/models"
	"ctchen222/Hex/internal/api/response"
	"ctchen222/Hex/internal/api/service"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

const maxRecordSize = 1 << 20

// GameController handles game-related HTTP requests.
type GameController struct {
	gameService service.GameService
}

// NewGameController creates a new GameController.
func NewGameController(gameService service.GameService) *GameController {
	return &GameController{
		gameService: gameService,
	}
}

// Register mounts the game routes on rg.
func (gc *GameController) Register(rg *gin.RouterGroup) {
	games := rg.Group("/games")
	games.POST("", gc.Create)
	games.POST("/import", gc.Import)
	games.GET("/:id", gc.Get)
	games.GET("/:id/sgf", gc.SGF)
	games.GET("/:id/events", gc.Events)
	games.POST("/:id/start", gc.Start)
	games.POST("/:id/moves", gc.Play)
	games.POST("/:id/resign", gc.Resign)
	games.POST("/:id/cancel", gc.Cancel)

	rg.GET("/archive/:id", gc.Archived)
	rg.GET("/players/:id/games", gc.History)
}

func badRequest(c *gin.Context, err error) {
	response.HandleError(c, response.NewError(false, http.StatusBadRequest, err.Error()))
}

// Create handles the game creation endpoint.
func (gc *GameController) Create(c *gin.Context) {
	var req models.CreateGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	view, err := gc.gameService.Create(c.Request.Context(), &req)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.CreatedResponse(c, view)
}

// Get returns the current state of a game.
func (gc *GameController) Get(c *gin.Context) {
	view, err := gc.gameService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.SuccessResponse(c, view)
}

// Start moves a created game to playing.
func (gc *GameController) Start(c *gin.Context) {
	view, err := gc.gameService.Start(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.SuccessResponse(c, view)
}

// Play submits a move or the swap.
func (gc *GameController) Play(c *gin.Context) {
	var req models.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	view, err := gc.gameService.Play(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.SuccessResponse(c, view)
}

// Resign ends the game in favour of the opponent of the given seat.
func (gc *GameController) Resign(c *gin.Context) {
	var req models.SeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	view, err := gc.gameService.Resign(c.Request.Context(), c.Param("id"), *req.Player)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.SuccessResponse(c, view)
}

// Cancel voids a game that has not ended.
func (gc *GameController) Cancel(c *gin.Context) {
	view, err := gc.gameService.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.SuccessResponse(c, view)
}

// SGF returns the game record as plain SGF.
func (gc *GameController) SGF(c *gin.Context) {
	record, err := gc.gameService.SGF(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+c.Param("id")+`.sgf"`)
	c.Data(http.StatusOK, "application/x-go-sgf; charset=utf-8", []byte(record))
}

// Import hosts a game from the SGF record in the request body.
func (gc *GameController) Import(c *gin.Context) {
	var query models.ImportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		badRequest(c, err)
		return
	}
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxRecordSize))
	if err != nil {
		badRequest(c, err)
		return
	}

	view, err := gc.gameService.Import(c.Request.Context(), string(body), [2]string{query.BlackID, query.WhiteID})
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.CreatedResponse(c, view)
}

// Events streams the game's events as server-sent events until the client
// goes away.
func (gc *GameController) Events(c *gin.Context) {
	stream, stop, err := gc.gameService.Watch(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	defer stop()

	for {
		select {
		case env, ok := <-stream:
			if !ok {
				return
			}
			c.SSEvent(env.Type, env)
			c.Writer.Flush()
		case <-c.Request.Context().Done():
			return
		}
	}
}

// Archived returns a finished game from the archive.
func (gc *GameController) Archived(c *gin.Context) {
	game, err := gc.gameService.Archived(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.SuccessResponse(c, game)
}

// History lists the finished games of a player, most recent first.
func (gc *GameController) History(c *gin.Context) {
	var query models.HistoryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		badRequest(c, err)
		return
	}

	games, err := gc.gameService.History(c.Request.Context(), c.Param("id"), query.Limit)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.SuccessResponseList(c, games)
}
