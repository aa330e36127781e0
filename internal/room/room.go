package room

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/tzekovic/OX-Project/internal/bot"
	"github.com/tzekovic/OX-Project/internal/game"
	"github.com/tzekovic/OX-Project/internal/player"
	"github.com/tzekovic/OX-Project/internal/repository"
)

// Mode selects who plays O.
type Mode string

const (
	PvP  Mode = "pvp"
	PvAI Mode = "pvai"
)

// aiMark is the side the AI plays in PvAI; the human is X and moves first.
const aiMark = game.PlayerO

var (
	ErrNotYourTurn = errors.New("not your turn")
	ErrUnknownMode = errors.New("unknown mode")
	ErrMissingCell = errors.New("move without cell")
	ErrClosed      = errors.New("room closed")
)

var (
	tracer = otel.Tracer("room")
	meter  = otel.Meter("room")

	moveCounter, _ = meter.Int64Counter("ox.moves", metric.WithDescription("Moves applied"))
	winCounter, _  = meter.Int64Counter("ox.wins", metric.WithDescription("Games won"))
	aiCounter, _   = meter.Int64Counter("ox.ai.moves", metric.WithDescription("Moves chosen by the AI"))
)

// ParseMode maps a user supplied string onto a Mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case PvP, PvAI:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// MoveSelector defines an interface for an agent that can calculate a game move.
type MoveSelector interface {
	SelectMove(state game.GameState, difficulty bot.Difficulty) (int, error)
}

// Room owns the single live GameState of one table. All mutation happens
// under mu, one move at a time.
type Room struct {
	ID string

	mu          sync.Mutex
	state       game.GameState
	lastOutcome *game.Outcome
	mode        Mode
	difficulty  bot.Difficulty
	aiPending   bool
	generation  uint64
	aiTimer     *time.Timer
	closed      bool
	lastActive  time.Time
	listeners   map[string]*player.Player

	selector   MoveSelector
	thinkDelay time.Duration
	gameRepo   repository.GameRepository
	publisher  repository.EventPublisher
	now        func() time.Time
}

// Option configures a Room.
type Option func(*Room)

// WithMode sets the initial mode.
func WithMode(m Mode) Option { return func(r *Room) { r.mode = m } }

// WithDifficulty sets the initial AI tier.
func WithDifficulty(d bot.Difficulty) Option { return func(r *Room) { r.difficulty = d } }

// WithSelector replaces the default move selector.
func WithSelector(s MoveSelector) Option { return func(r *Room) { r.selector = s } }

// WithThinkDelay sets the cosmetic pause before the AI moves. Zero makes
// the AI answer inline.
func WithThinkDelay(d time.Duration) Option { return func(r *Room) { r.thinkDelay = d } }

// WithRepository mirrors every state change into repo.
func WithRepository(repo repository.GameRepository) Option {
	return func(r *Room) { r.gameRepo = repo }
}

// WithPublisher publishes room events through p.
func WithPublisher(p repository.EventPublisher) Option { return func(r *Room) { r.publisher = p } }

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option { return func(r *Room) { r.now = now } }

// NewRoom creates a new game room with a fresh game.
func NewRoom(id string, opts ...Option) *Room {
	r := &Room{
		ID:         id,
		state:      game.NewGame(),
		mode:       PvP,
		difficulty: bot.Easy,
		listeners:  make(map[string]*player.Player),
		selector:   bot.NewSelector(nil),
		gameRepo:   repository.NewMemoryGameRepository(0),
		publisher:  repository.NopPublisher{},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.lastActive = r.now()
	return r
}

// Restore rebuilds a room from a stored snapshot. Call Resume afterwards to
// let the AI answer a snapshot saved on its turn.
func Restore(snap *repository.RoomSnapshot, opts ...Option) (*Room, error) {
	mode, err := ParseMode(snap.Mode)
	if err != nil {
		return nil, err
	}
	difficulty, err := bot.ParseDifficulty(snap.Difficulty)
	if err != nil {
		return nil, err
	}
	if err := snap.State.Validate(); err != nil {
		return nil, fmt.Errorf("cannot restore room %s: %w", snap.RoomID, err)
	}

	r := NewRoom(snap.RoomID, append(opts, WithMode(mode), WithDifficulty(difficulty))...)
	r.state = snap.State.Clone()
	return r, nil
}
