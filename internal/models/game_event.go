package models

import "fmt"

// EventType is the server's numeric event kind.
type EventType int

const (
	EventPlayCard EventType = iota
	EventDrawCard
	EventGameOver
	EventSkip
	EventReverse
	EventDrawTwo
	EventChooseColor
)

func (t EventType) String() string {
	switch t {
	case EventPlayCard:
		return "PlayCard"
	case EventDrawCard:
		return "DrawCard"
	case EventGameOver:
		return "GameOver"
	case EventSkip:
		return "Skip"
	case EventReverse:
		return "Reverse"
	case EventDrawTwo:
		return "DrawTwo"
	case EventChooseColor:
		return "ChooseColor"
	default:
		return fmt.Sprintf("EventType(%d)", int(t))
	}
}

// Visual reports whether the event is shown as a card in flight.
func (t EventType) Visual() bool {
	return t == EventPlayCard || t == EventDrawCard
}

// GameEvent is one entry of the ordered event list returned by a server action.
// Card is set when the server reveals the concrete card; otherwise CardIdx points into
// the acting player's locally tracked hand. Color is set for color choices.
type GameEvent struct {
	EventType EventType `json:"eventType"`
	PlayerID  string    `json:"playerId"`
	CardIdx   int       `json:"cardIdx"`
	Card      *Card     `json:"card,omitempty"`
	Color     *Color    `json:"color,omitempty"`
}

func (e GameEvent) String() string {
	return fmt.Sprintf("%s(%s)", e.EventType, e.PlayerID)
}
