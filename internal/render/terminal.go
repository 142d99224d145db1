// internal/render/terminal.go
package render

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/jason-s-yu/uno/internal/game"
	"github.com/jason-s-yu/uno/internal/models"
)

// DefaultAnimationDelay is how long a card stays "in flight" on the terminal.
const DefaultAnimationDelay = 600 * time.Millisecond

var painters = map[models.Color]func(a ...interface{}) string{
	models.ColorRed:    color.New(color.FgHiRed, color.Bold).SprintFunc(),
	models.ColorBlue:   color.New(color.FgHiCyan, color.Bold).SprintFunc(),
	models.ColorGreen:  color.New(color.FgHiGreen, color.Bold).SprintFunc(),
	models.ColorYellow: color.New(color.FgHiYellow, color.Bold).SprintFunc(),
	models.ColorWild:   color.New(color.FgHiMagenta, color.Bold).SprintFunc(),
}

var (
	faint  = color.New(color.Faint).SprintFunc()
	alert  = color.New(color.FgHiRed).SprintFunc()
	notice = color.New(color.FgHiWhite, color.BgBlue).SprintFunc()
	banner = color.New(color.FgHiYellow, color.Bold).SprintFunc()
)

// Paint renders a card face in its color. Face-down cards print as [??].
func Paint(card models.Card) string {
	if card == (models.Card{}) {
		return faint("[??]")
	}
	return PaintColor(card.Color, "["+card.String()+"]")
}

// PaintColor writes text in the terminal color of c.
func PaintColor(c models.Color, text string) string {
	if p, ok := painters[c]; ok {
		return p(text)
	}
	return text
}

// Terminal draws the table as text and plays the part of the animation layer: every card
// put in flight is reported as landed after the animation delay.
type Terminal struct {
	mu       sync.Mutex
	out      io.Writer
	delay    time.Duration
	complete func()

	state    models.GameState
	hasState bool
	lastTurn string
}

// NewTerminal writes to out. complete is called, off the caller's goroutine, once each
// animation has played.
func NewTerminal(out io.Writer, delay time.Duration, complete func()) *Terminal {
	if out == nil {
		out = color.Output
	}
	if delay <= 0 {
		delay = DefaultAnimationDelay
	}
	return &Terminal{out: out, delay: delay, complete: complete}
}

// SequencerListener returns the funcs to install on a Sequencer.
func (t *Terminal) SequencerListener() game.SequencerListener {
	return game.SequencerListener{
		State:    t.State,
		Animate:  t.Animate,
		GameOver: t.GameOver,
		Idle:     t.Idle,
	}
}

// OrchestratorListener returns the funcs to install on an Orchestrator.
func (t *Terminal) OrchestratorListener() game.OrchestratorListener {
	return game.OrchestratorListener{
		PromptColor: t.PromptColor,
		UnoWindow:   t.UnoWindow,
		Notice:      t.Notice,
	}
}

// State remembers the snapshot and announces turn changes.
func (t *Terminal) State(state models.GameState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = state
	t.hasState = true
	if state.CurrentPlayerID != "" && state.CurrentPlayerID != t.lastTurn {
		t.lastTurn = state.CurrentPlayerID
		if state.IsHuman(state.CurrentPlayerID) {
			fmt.Fprintln(t.out, banner("Your turn."))
		} else {
			fmt.Fprintf(t.out, "%s\n", faint(t.nameLocked(state.CurrentPlayerID)+" is thinking..."))
		}
	}
}

// Animate prints the move and reports it landed after the delay.
func (t *Terminal) Animate(card *models.AnimatingCard) {
	if card == nil {
		return
	}
	t.mu.Lock()
	name := t.nameLocked(card.PlayerID)
	switch card.Kind {
	case models.AnimatePlayCard:
		fmt.Fprintf(t.out, "%-8s %s plays %s\n", "("+string(card.Seat)+")", name, Paint(card.Card))
	case models.AnimateDrawCard:
		if card.Card.Known() {
			fmt.Fprintf(t.out, "%-8s %s draws %s\n", "("+string(card.Seat)+")", name, Paint(card.Card))
		} else {
			fmt.Fprintf(t.out, "%-8s %s draws a card (%d in hand)\n", "("+string(card.Seat)+")", name, card.TotalCards)
		}
	}
	t.mu.Unlock()

	if t.complete != nil {
		time.AfterFunc(t.delay, t.complete)
	}
}

// Idle shows the hand once a replay has drained and it is the human's move.
func (t *Terminal) Idle() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.hasState && t.state.IsHuman(t.state.CurrentPlayerID) {
		t.handLocked()
	}
}

func (t *Terminal) GameOver(winnerID string, humanWon bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if humanWon {
		fmt.Fprintln(t.out, banner("*** You won! ***"))
		return
	}
	fmt.Fprintln(t.out, banner(fmt.Sprintf("*** %s won the game ***", t.nameLocked(winnerID))))
}

func (t *Terminal) PromptColor() {
	t.mu.Lock()
	defer t.mu.Unlock()
	choices := make([]string, 0, 4)
	for c := models.ColorRed; c <= models.ColorYellow; c++ {
		choices = append(choices, PaintColor(c, strings.ToLower(c.String())))
	}
	fmt.Fprintf(t.out, "Pick a color: color <%s>\n", strings.Join(choices, "|"))
}

func (t *Terminal) UnoWindow(open bool) {
	if !open {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, alert("One card left! Type 'uno' now."))
}

func (t *Terminal) Notice(n *game.Notice) {
	if n == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if n.Kind == game.NoticeColor && n.Color != nil {
		fmt.Fprintf(t.out, "%s %s\n", notice(" ! "), PaintColor(*n.Color, n.Message))
		return
	}
	fmt.Fprintf(t.out, "%s %s\n", notice(" ! "), n.Message)
}

// Table prints the whole table: discard, color, turn and every seat.
func (t *Terminal) Table() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.hasState {
		fmt.Fprintln(t.out, "No game. Type 'start'.")
		return
	}
	s := t.state
	fmt.Fprintf(t.out, "Top %s  color %s  deck %d  %s\n",
		Paint(s.TopCard), PaintColor(s.CurrentColor, s.CurrentColor.String()), s.DeckCardCount, s.Direction)

	seats := game.Seats(s)
	for _, p := range s.Players {
		marker := " "
		if p.ID == s.CurrentPlayerID {
			marker = ">"
		}
		fmt.Fprintf(t.out, "%s %-7s %-12s %d cards\n", marker, seats[p.ID], p.Name, p.CardCount)
	}
}

// Hand prints the human's cards with the index used by 'play', marking playable ones.
func (t *Terminal) Hand() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handLocked()
}

func (t *Terminal) handLocked() {
	human, ok := t.state.Human()
	if !t.hasState || !ok {
		fmt.Fprintln(t.out, "No hand.")
		return
	}
	for i, c := range human.Cards {
		mark := " "
		if game.Playable(c, t.state.TopCard, t.state.CurrentColor) {
			mark = "*"
		}
		fmt.Fprintf(t.out, "%s%2d %s\n", mark, i+1, Paint(c))
	}
}

// CardAt returns the ID of the n-th card (1-based) in the human's hand.
func (t *Terminal) CardAt(n int) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	human, ok := t.state.Human()
	if !ok || n < 1 || n > len(human.Cards) {
		return "", false
	}
	return human.Cards[n-1].ID, true
}

// Reset forgets the table.
func (t *Terminal) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = models.GameState{}
	t.hasState = false
	t.lastTurn = ""
}

// Println writes a plain line.
func (t *Terminal) Println(a ...interface{}) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, a...)
}

func (t *Terminal) nameLocked(playerID string) string {
	if i := t.state.PlayerIndex(playerID); i >= 0 && t.state.Players[i].Name != "" {
		return t.state.Players[i].Name
	}
	return playerID
}
