package models

// Player is one seat at the table. Only the human player's Cards are populated;
// opponents are represented by CardCount alone.
type Player struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsHuman   bool   `json:"isHuman"`
	Cards     []Card `json:"cards"`
	CardCount int    `json:"cardCount"`
}

// Clone copies the player including its own card slice.
func (p Player) Clone() Player {
	out := p
	if p.Cards != nil {
		out.Cards = make([]Card, len(p.Cards))
		copy(out.Cards, p.Cards)
	}
	return out
}

// HandIndex returns the position of cardID in the tracked hand, or -1.
func (p Player) HandIndex(cardID string) int {
	if cardID == "" {
		return -1
	}
	for i, c := range p.Cards {
		if c.ID == cardID {
			return i
		}
	}
	return -1
}
