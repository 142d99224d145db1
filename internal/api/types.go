// internal/api/types.go
package api

import "github.com/jason-s-yu/uno/internal/models"

// StartGameRequest asks the server to deal a new game.
type StartGameRequest struct {
	PlayerName       string `json:"playerName"`
	PlayerCount      int    `json:"playerCount"`
	InitialCardCount int    `json:"initialCardCount"`
}

// StartGameResponse carries the new game's ID and its first snapshot, with only the
// human player's cards populated.
type StartGameResponse struct {
	GameID    string           `json:"gameId"`
	GameState models.GameState `json:"gameState"`
}

// PlayCardRequest plays a card from the human's hand. ChosenColor is sent as null
// unless the card is wild.
type PlayCardRequest struct {
	PlayerID    string        `json:"playerId"`
	CardID      string        `json:"cardId"`
	ChosenColor *models.Color `json:"chosenColor"`
	CalledUno   bool          `json:"calledUno"`
}

// DrawCardRequest draws for the human player.
type DrawCardRequest struct {
	PlayerID string `json:"playerId"`
}

// ActionResponse is returned by play and draw. Events are ordered as they happened and
// GameState is the snapshot after all of them.
type ActionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	// CardWasPlayed is only set on draws, when the server auto-played the drawn card.
	CardWasPlayed bool               `json:"cardWasPlayed,omitempty"`
	GameState     models.GameState   `json:"gameState"`
	Events        []models.GameEvent `json:"events"`
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Title   string `json:"title"`
}
