// Command cli plays vanishing tic-tac-toe in the terminal, against a friend
// on the same keyboard or against the AI.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tzekovic/OX-Project/internal/bot"
	"github.com/tzekovic/OX-Project/internal/logger"
	"github.com/tzekovic/OX-Project/internal/player"
	"github.com/tzekovic/OX-Project/internal/room"
	"github.com/tzekovic/OX-Project/pkg/proto"
)

const help = `commands:
  1-9          place your mark (cells numbered left to right, top to bottom)
  r            restart
  m [pvp|pvai] switch mode, toggles without an argument
  d <tier>     set AI difficulty: easy, medium or hard
  t            suggest a move at the current difficulty
  h            show this help
  q            quit`

var (
	errQuit = errors.New("quit")
	errHelp = errors.New("help")
	errHint = errors.New("hint")
)

func main() {
	mode := flag.String("mode", "pvai", "game mode: pvp or pvai")
	difficulty := flag.String("difficulty", "medium", "AI difficulty: easy, medium or hard")
	delay := flag.Duration("delay", 400*time.Millisecond, "pause before the AI moves")
	seed := flag.Uint64("seed", 0, "seed for the AI, 0 picks a random one")
	logLevel := flag.String("log-level", "warn", "log level: debug, info, warn or error")
	flag.Parse()

	level, err := logger.ParseLevel(*logLevel)
	if err != nil {
		log.Fatal(err)
	}
	logger.Init(os.Stderr, level)

	m, err := room.ParseMode(*mode)
	if err != nil {
		log.Fatal(err)
	}
	d, err := bot.ParseDifficulty(*difficulty)
	if err != nil {
		log.Fatal(err)
	}

	selector := bot.NewSelector(nil)
	if *seed != 0 {
		selector = bot.NewSeededSelector(*seed)
	}

	r := room.NewRoom("local",
		room.WithMode(m),
		room.WithDifficulty(d),
		room.WithSelector(selector),
		room.WithThinkDelay(*delay),
	)
	defer r.Close()

	term := newTerminal(os.Stdout)
	if err := run(context.Background(), r, term, os.Stdin); err != nil {
		log.Fatal(err)
	}
}

// run subscribes term to r and feeds it commands read from in until quit or EOF.
func run(ctx context.Context, r *room.Room, term *terminal, in io.Reader) error {
	p := player.NewPlayer("terminal", term)
	if err := r.Subscribe(p); err != nil {
		return err
	}
	defer r.Unsubscribe(p.ID)
	term.println(help)

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		msg, err := parseCommand(scanner.Text(), term.mode())
		switch {
		case errors.Is(err, errQuit):
			return nil
		case errors.Is(err, errHelp):
			term.println(help)
			continue
		case errors.Is(err, errHint):
			term.println(hint(r, term.difficulty()))
			continue
		case err != nil:
			term.println(err)
			continue
		case msg == nil:
			continue
		}

		raw, err := json.Marshal(msg)
		if err != nil {
			return err
		}
		// Rejections are printed by the terminal.
		_ = r.HandleMessage(ctx, p, raw)
	}
	return scanner.Err()
}

// parseCommand turns one input line into a client message. It returns a
// nil message for blank lines, and errQuit, errHelp or errHint for the
// commands handled locally.
func parseCommand(line, currentMode string) (*proto.ClientToServerMessage, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return nil, nil
	}

	switch cmd, args := fields[0], fields[1:]; cmd {
	case "q", "quit", "exit":
		return nil, errQuit
	case "h", "help", "?":
		return nil, errHelp
	case "t", "hint":
		return nil, errHint
	case "r", "restart":
		return &proto.ClientToServerMessage{Type: proto.TypeRestart}, nil
	case "m", "mode":
		next := "pvai"
		if len(args) > 0 {
			next = args[0]
		} else if currentMode == "pvai" {
			next = "pvp"
		}
		return &proto.ClientToServerMessage{Type: proto.TypeMode, Mode: next}, nil
	case "d", "difficulty":
		if len(args) == 0 {
			return nil, errors.New("usage: d easy|medium|hard")
		}
		return &proto.ClientToServerMessage{Type: proto.TypeDifficulty, Difficulty: args[0]}, nil
	default:
		n, err := strconv.Atoi(cmd)
		if err != nil {
			return nil, fmt.Errorf("unknown command %q, h for help", cmd)
		}
		cell := n - 1
		return &proto.ClientToServerMessage{Type: proto.TypeMove, Cell: &cell}, nil
	}
}

// hint asks the AI which cell it would play for the side to move.
func hint(r *room.Room, difficulty string) string {
	state := r.GameState()
	if !state.Active {
		return "The game is over, r to play again."
	}
	cell, err := bot.CalculateNextMove(state, difficulty)
	if err != nil {
		return fmt.Sprintf("no hint: %v", err)
	}
	return fmt.Sprintf("hint: %s could play %d", state.CurrentPlayer, cell+1)
}
