// internal/game/interpreter_test.go
package game

import (
	"testing"

	"github.com/jason-s-yu/uno/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply_OpponentPlay(t *testing.T) {
	state := tableState(mkCard("h1", models.ColorBlue, 1))
	red5 := mkCard("c-red5", models.ColorRed, 5)
	ev := models.GameEvent{EventType: models.EventPlayCard, PlayerID: "p1", CardIdx: 2, Card: &red5}

	next := Apply(ev, state, ResolveCard(ev, state))

	assert.Equal(t, 4, next.Players[1].CardCount)
	assert.Equal(t, red5, next.TopCard)
	assert.Equal(t, models.ColorRed, next.CurrentColor)
	assert.Equal(t, 5, state.Players[1].CardCount, "input state must not change")
}

func TestApply_WildKeepsColorUntilChosen(t *testing.T) {
	state := tableState()
	wild := mkCard("w", models.ColorWild, models.ValueWild)
	play := models.GameEvent{EventType: models.EventPlayCard, PlayerID: "p1", Card: &wild}
	choose := models.GameEvent{EventType: models.EventChooseColor, PlayerID: "p1", Color: colorPtr(models.ColorBlue)}

	afterPlay := Apply(play, state, ResolveCard(play, state))
	assert.Equal(t, models.ColorRed, afterPlay.CurrentColor, "wild play leaves the current color alone")
	assert.Equal(t, wild, afterPlay.TopCard)

	afterChoose := Apply(choose, afterPlay, nil)
	assert.Equal(t, models.ColorBlue, afterChoose.CurrentColor)
}

func TestApply_OpponentDrawIsNotTracked(t *testing.T) {
	state := tableState()
	ev := models.GameEvent{EventType: models.EventDrawCard, PlayerID: "p2"}

	next := Apply(ev, state, nil)

	assert.Equal(t, 6, next.Players[2].CardCount)
	assert.Equal(t, 59, next.DeckCardCount)
	assert.Empty(t, next.Players[2].Cards)
}

func TestApply_HumanPlayAndDraw(t *testing.T) {
	a := mkCard("a", models.ColorRed, 1)
	b := mkCard("b", models.ColorGreen, 2)
	c := mkCard("c", models.ColorRed, 7)
	state := tableState(a, b, c)

	t.Run("play removes the card at its index", func(t *testing.T) {
		ev := models.GameEvent{EventType: models.EventPlayCard, PlayerID: "h", CardIdx: 2}
		next := Apply(ev, state, ResolveCard(ev, state))
		require.Len(t, next.Players[0].Cards, 2)
		assert.Equal(t, []models.Card{a, b}, next.Players[0].Cards)
		assert.Equal(t, 2, next.Players[0].CardCount)
		assert.Equal(t, c, next.TopCard)
	})

	t.Run("stale index falls back to the card id", func(t *testing.T) {
		ev := models.GameEvent{EventType: models.EventPlayCard, PlayerID: "h", CardIdx: 0, Card: &c}
		next := Apply(ev, state, ResolveCard(ev, state))
		assert.Equal(t, []models.Card{a, b}, next.Players[0].Cards)
	})

	t.Run("draw appends a known card", func(t *testing.T) {
		d := mkCard("d", models.ColorYellow, models.ValueSkip)
		ev := models.GameEvent{EventType: models.EventDrawCard, PlayerID: "h", Card: &d}
		next := Apply(ev, state, ResolveCard(ev, state))
		assert.Equal(t, []models.Card{a, b, c, d}, next.Players[0].Cards)
		assert.Equal(t, 4, next.Players[0].CardCount)
	})

	assert.Len(t, state.Players[0].Cards, 3, "input hand must not change")
}

func TestApply_CountersFloorAtZero(t *testing.T) {
	state := tableState()
	state.Players[1].CardCount = 0
	state.DeckCardCount = 0

	played := Apply(models.GameEvent{EventType: models.EventPlayCard, PlayerID: "p1", CardIdx: -1}, state, nil)
	assert.Equal(t, 0, played.Players[1].CardCount)
	assert.Equal(t, state.TopCard, played.TopCard, "unresolved card leaves the discard alone")

	drawn := Apply(models.GameEvent{EventType: models.EventDrawCard, PlayerID: "p1"}, state, nil)
	assert.Equal(t, 0, drawn.DeckCardCount)
	assert.Equal(t, 1, drawn.Players[1].CardCount)
}

func TestApply_ReverseAndNoOps(t *testing.T) {
	state := tableState()

	rev := Apply(models.GameEvent{EventType: models.EventReverse, PlayerID: "p1"}, state, nil)
	assert.Equal(t, models.CounterClockwise, rev.Direction)
	assert.Equal(t, models.Clockwise, Apply(models.GameEvent{EventType: models.EventReverse}, rev, nil).Direction)

	for _, et := range []models.EventType{models.EventSkip, models.EventDrawTwo, models.EventGameOver} {
		assert.Equal(t, state, Apply(models.GameEvent{EventType: et, PlayerID: "p1"}, state, nil), et.String())
	}

	unknown := Apply(models.GameEvent{EventType: models.EventPlayCard, PlayerID: "ghost"}, state, nil)
	assert.Equal(t, state, unknown)

	noColor := Apply(models.GameEvent{EventType: models.EventChooseColor, PlayerID: "p1"}, state, nil)
	assert.Equal(t, models.ColorRed, noColor.CurrentColor)
}

func TestApply_DoesNotShareHands(t *testing.T) {
	state := tableState(mkCard("a", models.ColorRed, 1))
	next := Apply(models.GameEvent{EventType: models.EventSkip}, state, nil)

	next.Players[0].Cards[0].Value = 9
	assert.Equal(t, models.Value(1), state.Players[0].Cards[0].Value)
}

func TestResolveCard(t *testing.T) {
	a := mkCard("a", models.ColorRed, 1)
	state := tableState(a)
	explicit := mkCard("x", models.ColorBlue, 4)

	assert.Equal(t, &explicit, ResolveCard(models.GameEvent{PlayerID: "p1", Card: &explicit}, state))
	assert.Equal(t, &a, ResolveCard(models.GameEvent{PlayerID: "h", CardIdx: 0}, state))
	assert.Nil(t, ResolveCard(models.GameEvent{PlayerID: "h", CardIdx: 3}, state))
	assert.Nil(t, ResolveCard(models.GameEvent{PlayerID: "p1", CardIdx: 0}, state))
	assert.Nil(t, ResolveCard(models.GameEvent{PlayerID: "ghost"}, state))
}
