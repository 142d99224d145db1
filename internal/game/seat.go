package game

import "github.com/jason-s-yu/uno/internal/models"

var seatOrder = []models.Seat{
	models.SeatBottom,
	models.SeatLeft,
	models.SeatTop,
	models.SeatRight,
}

// SeatFor returns where playerID sits on screen relative to the human at humanIndex.
// The human is always at the bottom. Unknown players fall back to the bottom seat.
func SeatFor(playerID string, players []models.Player, humanIndex int) models.Seat {
	n := len(players)
	if n == 0 || n > len(seatOrder) || humanIndex < 0 || humanIndex >= n {
		return models.SeatBottom
	}
	pi := -1
	for i, p := range players {
		if p.ID == playerID {
			pi = i
			break
		}
	}
	if pi < 0 {
		return models.SeatBottom
	}
	return seatOrder[(pi-humanIndex+n)%n]
}

// Seats maps every player in state to its seat, for laying out resting hands.
func Seats(state models.GameState) map[string]models.Seat {
	hi := state.HumanIndex()
	out := make(map[string]models.Seat, len(state.Players))
	for _, p := range state.Players {
		out[p.ID] = SeatFor(p.ID, state.Players, hi)
	}
	return out
}
