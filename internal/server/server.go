package server

import (
	"ctchen222/Hex/internal/api/controller"
	"ctchen222/Hex/internal/api/response"
	"ctchen222/Hex/internal/hub"
	"ctchen222/Hex/internal/player"
	"ctchen222/Hex/internal/room"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("server")

type Server struct {
	hub      *hub.Hub
	engine   *gin.Engine
	upgrader websocket.Upgrader
}

func NewServer(h *hub.Hub, gameController *controller.GameController) *Server {
	s := &Server{
		hub:    h,
		engine: gin.New(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	s.engine.Use(gin.Recovery(), requestLogger())

	s.engine.GET("/healthz", func(c *gin.Context) {
		response.SuccessResponse(c, gin.H{"rooms": s.hub.Len()})
	})
	gameController.Register(s.engine.Group("/api"))
	s.engine.GET("/ws/games/:id", s.handleGameWebSocket)
	s.engine.GET("/ws/reconnect", s.handleReconnect)
	return s
}

// Engine returns the bare router.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Handler returns the router wrapped with HTTP tracing and metrics.
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(s.engine, "hex.http")
}

// handleGameWebSocket attaches a client to a game. Clients that pass the id
// of a seated player may play; everyone else watches.
func (s *Server) handleGameWebSocket(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "server.handleGameWebSocket", trace.WithAttributes(
		attribute.String("room.id", c.Param("id")),
	))
	defer span.End()

	r, err := s.hub.Get(ctx, c.Param("id"))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Unknown game")
		response.HandleError(c, err)
		return
	}
	s.serve(c, r)
}

// handleReconnect attaches a player to the game it was last seated in.
func (s *Server) handleReconnect(c *gin.Context) {
	playerID := c.Query("player_id")
	ctx, span := tracer.Start(c.Request.Context(), "server.handleReconnect", trace.WithAttributes(
		attribute.String("player.id", playerID),
	))
	defer span.End()

	if playerID == "" {
		response.ErrorResponse(c, http.StatusBadRequest, "player_id is required")
		return
	}
	r, err := s.hub.Reconnect(ctx, playerID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Could not reconnect player")
		response.HandleError(c, err)
		return
	}
	s.serve(c, r)
}

// serve upgrades the connection and pumps its messages into r until the
// client goes away.
func (s *Server) serve(c *gin.Context, r *room.Room) {
	ctx := c.Request.Context()

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.ErrorContext(ctx, "failed to upgrade connection", "room.id", r.ID, "error", err)
		return
	}

	// Get playerID from URL, or generate a spectator id.
	playerID := c.Query("player_id")
	if playerID == "" {
		playerID = "spectator-" + uuid.New().String()
	}
	p := player.New(playerID, c.Query("name"), conn)

	r.Join(ctx, p)
	r.ReadPump(ctx, p)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.InfoContext(c.Request.Context(), "http request",
			"http.method", c.Request.Method,
			"http.route", c.FullPath(),
			"http.status", c.Writer.Status(),
			"http.duration", time.Since(start),
		)
	}
}
