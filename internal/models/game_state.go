// internal/models/game_state.go
package models

// Direction of play around the table.
type Direction int

const (
	Clockwise Direction = iota
	CounterClockwise
)

// Flip returns the opposite direction.
func (d Direction) Flip() Direction {
	if d == Clockwise {
		return CounterClockwise
	}
	return Clockwise
}

func (d Direction) String() string {
	if d == CounterClockwise {
		return "counter-clockwise"
	}
	return "clockwise"
}

// GameState is a value snapshot of the table as the server last described it, or as
// reached by replaying server events. Seat order in Players is fixed for a game.
type GameState struct {
	Players         []Player  `json:"players"`
	TopCard         Card      `json:"topCard"`
	CurrentColor    Color     `json:"currentColor"`
	CurrentPlayerID string    `json:"currentPlayerId"`
	Direction       Direction `json:"direction"`
	DeckCardCount   int       `json:"deckCardCount"`
}

// Clone returns a snapshot that shares no slices with s.
func (s GameState) Clone() GameState {
	out := s
	if s.Players != nil {
		out.Players = make([]Player, len(s.Players))
		for i, p := range s.Players {
			out.Players[i] = p.Clone()
		}
	}
	return out
}

// PlayerIndex returns the seat index of playerID, or -1.
func (s GameState) PlayerIndex(playerID string) int {
	for i, p := range s.Players {
		if p.ID == playerID {
			return i
		}
	}
	return -1
}

// HumanIndex returns the seat index of the local human player, or -1.
func (s GameState) HumanIndex() int {
	for i, p := range s.Players {
		if p.IsHuman {
			return i
		}
	}
	return -1
}

// Human returns the local human player, if present.
func (s GameState) Human() (Player, bool) {
	i := s.HumanIndex()
	if i < 0 {
		return Player{}, false
	}
	return s.Players[i], true
}

// IsHuman reports whether playerID is the local human player.
func (s GameState) IsHuman(playerID string) bool {
	i := s.PlayerIndex(playerID)
	return i >= 0 && s.Players[i].IsHuman
}
