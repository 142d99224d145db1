// internal/models/settings.go
package models

import "strings"

const (
	MinPlayers      = 2
	MaxPlayers      = 4
	MinInitialCards = 2
	MaxInitialCards = 15
)

// GameSettings are the table options a player picks before starting a game.
type GameSettings struct {
	PlayerName       string `json:"playerName"`
	PlayerCount      int    `json:"playerCount"`
	InitialCardCount int    `json:"initialCardCount"`
}

// DefaultSettings returns the options used when nothing has been saved.
func DefaultSettings() GameSettings {
	return GameSettings{
		PlayerName:       "You",
		PlayerCount:      4,
		InitialCardCount: 7,
	}
}

// Normalize fills zero values with defaults and clamps counts into the accepted ranges.
func (s GameSettings) Normalize() GameSettings {
	def := DefaultSettings()
	out := s
	out.PlayerName = strings.TrimSpace(out.PlayerName)
	if out.PlayerName == "" {
		out.PlayerName = def.PlayerName
	}
	if out.PlayerCount == 0 {
		out.PlayerCount = def.PlayerCount
	}
	out.PlayerCount = clamp(out.PlayerCount, MinPlayers, MaxPlayers)
	if out.InitialCardCount == 0 {
		out.InitialCardCount = def.InitialCardCount
	}
	out.InitialCardCount = clamp(out.InitialCardCount, MinInitialCards, MaxInitialCards)
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
