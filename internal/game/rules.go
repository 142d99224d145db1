// internal/game/rules.go
package game

import "github.com/jason-s-yu/uno/internal/models"

// Playable is the optimistic client-side check used to gate a play before asking the
// server. Wild cards are always playable; otherwise the card must match the current
// color or the face of the top card. The server remains the authority.
func Playable(card models.Card, top models.Card, currentColor models.Color) bool {
	if card.IsWild() {
		return true
	}
	if card.Color == currentColor {
		return true
	}
	return card.Value == top.Value
}
