package server

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tzekovic/OX-Project/internal/api/controller"
	"github.com/tzekovic/OX-Project/internal/api/response"
	"github.com/tzekovic/OX-Project/internal/api/service"
	"github.com/tzekovic/OX-Project/internal/player"
)

var tracer = otel.Tracer("server")

const (
	// maxMessageSize bounds a single client websocket message.
	maxMessageSize = 1024
	// writeWait bounds a single write to a websocket client.
	writeWait = 5 * time.Second
)

type Server struct {
	engine   *gin.Engine
	rooms    controller.RoomStore
	tokens    service.TokenService
	upgrader  websocket.Upgrader
	writeWait time.Duration
}

// NewServer wires the HTTP API, the websocket endpoint and, when webDir is
// set, the static web client.
func NewServer(rooms controller.RoomStore, tokens service.TokenService, webDir string) *Server {
	s := &Server{
		engine:    gin.New(),
		rooms:     rooms,
		tokens:    tokens,
		writeWait: writeWait,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	s.registerHandlers(controller.NewRoomController(rooms, tokens), webDir)
	return s
}

func (s *Server) registerHandlers(rc *controller.RoomController, webDir string) {
	s.engine.Use(gin.Recovery(), requestLogger())

	s.engine.GET("/healthz", func(c *gin.Context) {
		response.SuccessResponse(c, gin.H{"status": "ok"})
	})

	api := s.engine.Group("/api/rooms")
	api.POST("", rc.Create)
	api.GET("/:id", rc.Get)

	authed := api.Group("/:id", s.requireRoomToken())
	authed.DELETE("", rc.Delete)
	authed.POST("/moves", rc.Move)
	authed.POST("/restart", rc.Restart)
	authed.PUT("/settings", rc.UpdateSettings)

	s.engine.GET("/ws", s.handleWebSocket)

	if webDir != "" {
		s.engine.NoRoute(gin.WrapH(http.FileServer(http.Dir(webDir))))
	}
}

// Engine returns the bare gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Handler returns the engine wrapped in OpenTelemetry HTTP instrumentation.
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(s.engine, "ox-server")
}

// requireRoomToken rejects requests without a valid token for the :id room.
func (s *Server) requireRoomToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.tokens.Verify(tokenFromRequest(c), c.Param("id")); err != nil {
			slog.WarnContext(c.Request.Context(), "rejected room token", "room.id", c.Param("id"), "error", err)
			response.AbortWithError(c, response.NewError(false, http.StatusUnauthorized, service.ErrInvalidToken.Error()))
			return
		}
		c.Next()
	}
}

// tokenFromRequest reads a bearer token from the Authorization header or
// the token query parameter.
func tokenFromRequest(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	return c.Query("token")
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

// handleWebSocket attaches a client to a room. The token is checked before
// the upgrade; afterwards every client message is handed to the room.
func (s *Server) handleWebSocket(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "server.handleWebSocket", trace.WithAttributes(
		attribute.String("http.url", c.Request.URL.String()),
	))
	defer span.End()

	roomID := c.Query("room")
	span.SetAttributes(attribute.String("room.id", roomID))

	if err := s.tokens.Verify(c.Query("token"), roomID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid token")
		response.AbortWithError(c, response.NewError(false, http.StatusUnauthorized, service.ErrInvalidToken.Error()))
		return
	}

	r, err := s.rooms.Room(ctx, roomID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "room unavailable")
		code := controller.StatusCode(err)
		response.AbortWithError(c, response.NewError(false, code, http.StatusText(code)))
		return
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.WarnContext(ctx, "Failed to upgrade connection", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to upgrade connection")
		return
	}
	conn.SetReadLimit(maxMessageSize)

	p := player.NewPlayer(uuid.NewString(), &wsConn{Conn: conn, writeWait: s.writeWait})
	span.SetAttributes(attribute.String("player.id", p.ID))

	if err := r.Subscribe(p); err != nil {
		slog.WarnContext(ctx, "Failed to subscribe player", "room.id", roomID, "player.id", p.ID, "error", err)
		_ = conn.Close()
		return
	}
	slog.InfoContext(ctx, "Player connected", "room.id", roomID, "player.id", p.ID)

	defer func() {
		r.Unsubscribe(p.ID)
		_ = conn.Close()
		slog.InfoContext(ctx, "Player disconnected", "room.id", roomID, "player.id", p.ID)
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.WarnContext(ctx, "Player connection error", "player.id", p.ID, "room.id", roomID, "error", err)
			}
			return
		}
		// Rejections are already reported to the player.
		_ = r.HandleMessage(ctx, p, msg)
	}
}

// wsConn puts a deadline on every write so a stalled client cannot hold up
// the room it listens to.
type wsConn struct {
	*websocket.Conn
	writeWait time.Duration
}

func (c *wsConn) WriteMessage(messageType int, data []byte) error {
	if err := c.Conn.SetWriteDeadline(time.Now().Add(c.writeWait)); err != nil {
		return err
	}
	return c.Conn.WriteMessage(messageType, data)
}
