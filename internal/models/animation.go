package models

// Seat is a player's screen position relative to the local human, who is always at the bottom.
type Seat string

const (
	SeatBottom Seat = "bottom"
	SeatLeft   Seat = "left"
	SeatTop    Seat = "top"
	SeatRight  Seat = "right"
)

// AnimationKind is the motion of the card in flight.
type AnimationKind string

const (
	// AnimatePlayCard moves a card from a hand to the discard pile.
	AnimatePlayCard AnimationKind = "playCard"
	// AnimateDrawCard moves a card from the deck to a hand.
	AnimateDrawCard AnimationKind = "drawCard"
)

// AnimatingCard is the single card currently in flight. CardIndex and TotalCards let the
// renderer place the card inside a fanned hand.
type AnimatingCard struct {
	PlayerID   string        `json:"playerId"`
	CardIndex  int           `json:"cardIndex"`
	Card       Card          `json:"card"`
	Seat       Seat          `json:"startPosition"`
	Kind       AnimationKind `json:"animationType"`
	TotalCards int           `json:"totalCards"`
}
