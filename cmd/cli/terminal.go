package main

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/muesli/termenv"

	"github.com/tzekovic/OX-Project/internal/game"
	"github.com/tzekovic/OX-Project/pkg/proto"
)

// terminal is a room listener that draws every update on a terminal.
type terminal struct {
	mu   sync.Mutex
	w    io.Writer
	out  *termenv.Output
	last *proto.ServerToClientMessage
}

func newTerminal(w io.Writer, opts ...termenv.OutputOption) *terminal {
	return &terminal{w: w, out: termenv.NewOutput(w, opts...)}
}

// WriteMessage implements player.Connection.
func (t *terminal) WriteMessage(_ int, data []byte) error {
	var msg proto.ServerToClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("failed to decode server message: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	switch msg.Type {
	case proto.TypeUpdate:
		t.last = &msg
		_, err := io.WriteString(t.w, t.render(&msg))
		return err
	case proto.TypeError:
		_, err := fmt.Fprintln(t.w, t.out.String("! "+msg.Reason).Foreground(termenv.ANSIYellow))
		return err
	}
	return nil
}

func (t *terminal) println(a ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.w, a...)
}

// Close implements player.Connection.
func (t *terminal) Close() error { return nil }

// mode returns the mode of the last update, or "" before the first one.
func (t *terminal) mode() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.last == nil {
		return ""
	}
	return t.last.Mode
}

// difficulty returns the difficulty of the last update, or "" before the
// first one.
func (t *terminal) difficulty() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.last == nil {
		return ""
	}
	return t.last.Difficulty
}

func (t *terminal) render(msg *proto.ServerToClientMessage) string {
	var b strings.Builder

	header := fmt.Sprintf("mode %s", msg.Mode)
	if msg.Mode == "pvai" {
		header += fmt.Sprintf(", difficulty %s", msg.Difficulty)
	}
	fmt.Fprintf(&b, "\n%s\n\n", t.out.String(header).Faint())

	if msg.Board != nil {
		for row := range 3 {
			cells := make([]string, 3)
			for col := range 3 {
				cells[col] = t.cell(msg, row*3+col)
			}
			fmt.Fprintf(&b, "  %s\n", strings.Join(cells, " | "))
			if row < 2 {
				b.WriteString("  --+---+--\n")
			}
		}
	}
	b.WriteString("\n")
	b.WriteString(t.status(msg))
	b.WriteString("\n")
	return b.String()
}

func (t *terminal) cell(msg *proto.ServerToClientMessage, i int) string {
	mark := msg.Board[i]
	if mark == game.None {
		return t.out.String(fmt.Sprint(i + 1)).Faint().String()
	}

	style := t.out.String(string(mark))
	if mark == game.PlayerX {
		style = style.Foreground(termenv.ANSIBrightRed)
	} else {
		style = style.Foreground(termenv.ANSIBrightBlue)
	}
	switch {
	case slices.Contains(msg.WinningLine, i):
		style = style.Bold().Underline()
	case msg.NextToVanish != nil && *msg.NextToVanish == i:
		style = style.Faint()
	}
	return style.String()
}

func (t *terminal) status(msg *proto.ServerToClientMessage) string {
	switch {
	case msg.Winner != game.None:
		text := fmt.Sprintf("%s wins!", msg.Winner)
		if msg.Celebrate {
			text = "*** " + text + " ***"
		}
		return t.out.String(text).Bold().Foreground(termenv.ANSIBrightGreen).String() +
			"  (r to play again)"
	case !msg.Active:
		return "Draw.  (r to play again)"
	case msg.AIThinking:
		return t.out.String("AI is thinking...").Italic().String()
	}

	text := fmt.Sprintf("%s to move", msg.Next)
	if msg.NextToVanish != nil {
		text += fmt.Sprintf(", your mark on %d vanishes next", *msg.NextToVanish+1)
	}
	return text
}
