// internal/render/terminal_test.go
package render

import (
	"bytes"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/jason-s-yu/uno/internal/game"
	"github.com/jason-s-yu/uno/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

// syncBuffer lets the animation goroutine and the test share output.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func table() models.GameState {
	return models.GameState{
		Players: []models.Player{
			{ID: "h", Name: "You", IsHuman: true, CardCount: 2, Cards: []models.Card{
				{ID: "a", Color: models.ColorRed, Value: 4},
				{ID: "b", Color: models.ColorBlue, Value: models.ValueSkip},
			}},
			{ID: "p1", Name: "Bot", CardCount: 6},
		},
		TopCard:         models.Card{ID: "t", Color: models.ColorRed, Value: 7},
		CurrentColor:    models.ColorRed,
		CurrentPlayerID: "p1",
		DeckCardCount:   40,
	}
}

func TestPaint(t *testing.T) {
	assert.Equal(t, "[Red 5]", Paint(models.Card{ID: "x", Color: models.ColorRed, Value: 5}))
	assert.Equal(t, "[+4]", Paint(models.Card{ID: "x", Color: models.ColorWild, Value: models.ValueWildDrawFour}))
	assert.Equal(t, "[Yellow Reverse]", Paint(models.Card{ID: "x", Color: models.ColorYellow, Value: models.ValueReverse}))
	assert.Equal(t, "[??]", Paint(models.Card{}))
}

func TestTerminalAnimationCompletes(t *testing.T) {
	out := &syncBuffer{}
	var done int32
	term := NewTerminal(out, 5*time.Millisecond, func() { atomic.AddInt32(&done, 1) })
	term.State(table())

	term.Animate(&models.AnimatingCard{
		PlayerID:   "p1",
		Card:       models.Card{},
		Seat:       models.SeatTop,
		Kind:       models.AnimateDrawCard,
		TotalCards: 7,
	})
	term.Animate(nil)

	require.Eventually(t, func() bool { return atomic.LoadInt32(&done) == 1 }, time.Second, time.Millisecond)
	assert.Contains(t, out.String(), "Bot is thinking...")
	assert.Contains(t, out.String(), "Bot draws a card (7 in hand)")

	term.Animate(&models.AnimatingCard{
		PlayerID: "p1",
		Card:     models.Card{ID: "c", Color: models.ColorGreen, Value: 2},
		Seat:     models.SeatTop,
		Kind:     models.AnimatePlayCard,
	})
	require.Eventually(t, func() bool { return atomic.LoadInt32(&done) == 2 }, time.Second, time.Millisecond)
	assert.Contains(t, out.String(), "Bot plays [Green 2]")
}

func TestTerminalHandAndTable(t *testing.T) {
	out := &syncBuffer{}
	term := NewTerminal(out, time.Millisecond, nil)

	term.Table()
	assert.Contains(t, out.String(), "No game")

	term.State(table())
	term.Hand()
	assert.Contains(t, out.String(), "* 1 [Red 4]")
	assert.Contains(t, out.String(), "  2 [Blue Skip]")

	term.Table()
	assert.Contains(t, out.String(), "Top [Red 7]")
	assert.Contains(t, out.String(), "> left    Bot")

	three := table()
	three.Players = append(three.Players, models.Player{ID: "p2", Name: "Bot 2", CardCount: 4})
	three.CurrentPlayerID = "p2"
	term.State(three)
	term.Table()
	assert.Contains(t, out.String(), "> top     Bot 2")
	assert.Contains(t, out.String(), "  left    Bot ")

	id, ok := term.CardAt(2)
	assert.True(t, ok)
	assert.Equal(t, "b", id)
	_, ok = term.CardAt(3)
	assert.False(t, ok)

	term.Reset()
	_, ok = term.CardAt(1)
	assert.False(t, ok)
}

func TestTerminalIdleShowsHandOnHumanTurn(t *testing.T) {
	out := &syncBuffer{}
	term := NewTerminal(out, time.Millisecond, nil)

	state := table()
	term.State(state)
	term.Idle()
	assert.NotContains(t, out.String(), "[Red 4]")

	state.CurrentPlayerID = "h"
	term.State(state)
	term.Idle()
	assert.Contains(t, out.String(), "Your turn.")
	assert.Contains(t, out.String(), "* 1 [Red 4]")
}

func TestTerminalPromptsAndNotices(t *testing.T) {
	out := &syncBuffer{}
	term := NewTerminal(out, time.Millisecond, nil)
	term.State(table())

	term.PromptColor()
	term.UnoWindow(true)
	term.UnoWindow(false)
	green := models.ColorGreen
	term.Notice(&game.Notice{Kind: game.NoticeColor, Message: "Bot chose Green", Color: &green})
	term.Notice(&game.Notice{Kind: game.NoticeError, Message: "Not your turn"})
	term.Notice(nil)
	term.GameOver("p1", false)
	term.GameOver("h", true)

	s := out.String()
	assert.Contains(t, s, "color <red|blue|green|yellow>")
	assert.Contains(t, s, "Type 'uno' now")
	assert.Contains(t, s, "Bot chose Green")
	assert.Contains(t, s, "Not your turn")
	assert.Contains(t, s, "Bot won the game")
	assert.Contains(t, s, "You won!")
}
