package controller

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tzekovic/OX-Project/internal/api/models"
	"github.com/tzekovic/OX-Project/internal/api/response"
	"github.com/tzekovic/OX-Project/internal/api/service"
	"github.com/tzekovic/OX-Project/internal/bot"
	"github.com/tzekovic/OX-Project/internal/game"
	"github.com/tzekovic/OX-Project/internal/hub"
	"github.com/tzekovic/OX-Project/internal/room"
)

// RoomStore is the part of the hub the controller needs.
type RoomStore interface {
	CreateRoom(ctx context.Context, mode room.Mode, difficulty bot.Difficulty) (*room.Room, error)
	Room(ctx context.Context, id string) (*room.Room, error)
	RemoveRoom(ctx context.Context, id string) error
}

// RoomController handles room-related HTTP requests.
type RoomController struct {
	rooms  RoomStore
	tokens service.TokenService
}

// NewRoomController creates a new RoomController.
func NewRoomController(rooms RoomStore, tokens service.TokenService) *RoomController {
	return &RoomController{
		rooms:  rooms,
		tokens: tokens,
	}
}

// Create handles the room creation endpoint.
func (rc *RoomController) Create(c *gin.Context) {
	// An empty body creates a room with the defaults.
	var req models.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	mode := room.PvP
	if req.Mode != "" {
		mode = room.Mode(req.Mode)
	}
	difficulty := bot.Easy
	if req.Difficulty != "" {
		difficulty = bot.Difficulty(req.Difficulty)
	}

	r, err := rc.rooms.CreateRoom(c.Request.Context(), mode, difficulty)
	if err != nil {
		renderError(c, err)
		return
	}

	token, err := rc.tokens.Issue(r.ID)
	if err != nil {
		renderError(c, err)
		return
	}

	response.CreatedResponse(c, models.CreateRoomResponse{
		RoomID: r.ID,
		Token:  token,
		State:  r.State(),
	})
}

// Get returns the current state of a room.
func (rc *RoomController) Get(c *gin.Context) {
	r, err := rc.rooms.Room(c.Request.Context(), c.Param("id"))
	if err != nil {
		renderError(c, err)
		return
	}
	response.SuccessResponse(c, r.State())
}

// Move plays the requested cell for the side to move.
func (rc *RoomController) Move(c *gin.Context) {
	var req models.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	r, err := rc.rooms.Room(c.Request.Context(), c.Param("id"))
	if err != nil {
		renderError(c, err)
		return
	}
	if _, err := r.Move(c.Request.Context(), *req.Cell); err != nil {
		renderError(c, err)
		return
	}
	response.SuccessResponse(c, r.State())
}

// Restart starts a fresh game in the room.
func (rc *RoomController) Restart(c *gin.Context) {
	r, err := rc.rooms.Room(c.Request.Context(), c.Param("id"))
	if err != nil {
		renderError(c, err)
		return
	}
	if err := r.Restart(c.Request.Context()); err != nil {
		renderError(c, err)
		return
	}
	response.SuccessResponse(c, r.State())
}

// UpdateSettings changes mode and difficulty.
func (rc *RoomController) UpdateSettings(c *gin.Context) {
	var req models.SettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.Mode == "" && req.Difficulty == "" {
		response.ErrorResponse(c, http.StatusBadRequest, "mode or difficulty is required")
		return
	}

	ctx := c.Request.Context()
	r, err := rc.rooms.Room(ctx, c.Param("id"))
	if err != nil {
		renderError(c, err)
		return
	}

	if req.Mode != "" {
		if err := r.SetMode(ctx, room.Mode(req.Mode)); err != nil {
			renderError(c, err)
			return
		}
	}
	if req.Difficulty != "" {
		if err := r.SetDifficulty(ctx, bot.Difficulty(req.Difficulty)); err != nil {
			renderError(c, err)
			return
		}
	}
	response.SuccessResponse(c, r.State())
}

// Delete closes a room, disconnects its listeners and forgets its game.
func (rc *RoomController) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := rc.rooms.RemoveRoom(c.Request.Context(), id); err != nil {
		renderError(c, err)
		return
	}
	response.SuccessResponse(c, gin.H{"room_id": id})
}

// StatusCode maps domain errors onto HTTP status codes.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, hub.ErrRoomNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, game.ErrInvalidMove),
		errors.Is(err, game.ErrGameOver),
		errors.Is(err, room.ErrNotYourTurn),
		errors.Is(err, room.ErrClosed):
		return http.StatusConflict
	case errors.Is(err, game.ErrOutOfRange),
		errors.Is(err, room.ErrUnknownMode),
		errors.Is(err, room.ErrMissingCell),
		errors.Is(err, bot.ErrUnknownDifficulty):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func renderError(c *gin.Context, err error) {
	code := StatusCode(err)
	if code == http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed", "http.path", c.FullPath(), "error", err)
		response.ErrorResponse(c, code, "internal error")
		return
	}
	response.ErrorResponse(c, code, err.Error())
}
