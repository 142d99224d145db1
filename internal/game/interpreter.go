// internal/game/interpreter.go
package game

import (
	"github.com/jason-s-yu/uno/internal/models"
)

// ResolveCard finds the concrete card an event refers to: the card carried by the event,
// otherwise the acting player's tracked hand at CardIdx. Returns nil when neither is known.
func ResolveCard(ev models.GameEvent, state models.GameState) *models.Card {
	if ev.Card != nil {
		c := *ev.Card
		return &c
	}
	i := state.PlayerIndex(ev.PlayerID)
	if i < 0 {
		return nil
	}
	hand := state.Players[i].Cards
	if ev.CardIdx >= 0 && ev.CardIdx < len(hand) {
		c := hand[ev.CardIdx]
		return &c
	}
	return nil
}

// Apply returns the state that results from ev. It never mutates state and never fails:
// fields that cannot be resolved are left alone while counters still move.
// card is the resolved card for PlayCard/DrawCard, or nil.
func Apply(ev models.GameEvent, state models.GameState, card *models.Card) models.GameState {
	next := state.Clone()

	switch ev.EventType {
	case models.EventPlayCard:
		applyPlay(&next, ev, card)
	case models.EventDrawCard:
		applyDraw(&next, ev, card)
	case models.EventReverse:
		next.Direction = next.Direction.Flip()
	case models.EventChooseColor:
		if ev.Color != nil && ev.Color.Concrete() {
			next.CurrentColor = *ev.Color
		}
	}
	// Skip, DrawTwo and GameOver carry their effects in later events or out of band.

	return next
}

func applyPlay(s *models.GameState, ev models.GameEvent, card *models.Card) {
	i := s.PlayerIndex(ev.PlayerID)
	if i < 0 {
		return
	}
	p := &s.Players[i]

	if p.IsHuman {
		removeFromHand(p, ev.CardIdx, card)
	}
	if p.CardCount > 0 {
		p.CardCount--
	}

	if card == nil {
		return
	}
	s.TopCard = *card
	if card.Color != models.ColorWild {
		s.CurrentColor = card.Color
	}
}

// removeFromHand drops the played card from the tracked hand. The index is trusted when it
// is in range and agrees with the card; otherwise the card is located by ID.
func removeFromHand(p *models.Player, idx int, card *models.Card) {
	inRange := idx >= 0 && idx < len(p.Cards)
	if inRange && (card == nil || !card.Known() || p.Cards[idx].ID == card.ID) {
		p.Cards = append(p.Cards[:idx], p.Cards[idx+1:]...)
		return
	}
	if card != nil {
		if j := p.HandIndex(card.ID); j >= 0 {
			p.Cards = append(p.Cards[:j], p.Cards[j+1:]...)
		}
	}
}

func applyDraw(s *models.GameState, ev models.GameEvent, card *models.Card) {
	if s.DeckCardCount > 0 {
		s.DeckCardCount--
	}

	i := s.PlayerIndex(ev.PlayerID)
	if i < 0 {
		return
	}
	p := &s.Players[i]
	p.CardCount++
	if p.IsHuman && card != nil && card.Known() {
		p.Cards = append(p.Cards, *card)
	}
}
