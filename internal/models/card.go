// internal/models/card.go
package models

import (
	"fmt"
	"strings"
)

// Color is the card color as the game server encodes it.
type Color int

const (
	ColorRed Color = iota
	ColorBlue
	ColorGreen
	ColorYellow
	// ColorWild marks a colorless card, or a current color that has not been chosen yet.
	ColorWild
)

var colorNames = map[Color]string{
	ColorRed:    "Red",
	ColorBlue:   "Blue",
	ColorGreen:  "Green",
	ColorYellow: "Yellow",
	ColorWild:   "Wild",
}

func (c Color) String() string {
	if name, ok := colorNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Color(%d)", int(c))
}

// Concrete reports whether c is one of the four playable colors.
func (c Color) Concrete() bool {
	return c >= ColorRed && c <= ColorYellow
}

// ParseColor accepts a color name (any case) or its single-letter abbreviation.
func ParseColor(s string) (Color, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "red", "r":
		return ColorRed, nil
	case "blue", "b":
		return ColorBlue, nil
	case "green", "g":
		return ColorGreen, nil
	case "yellow", "y":
		return ColorYellow, nil
	}
	return ColorWild, fmt.Errorf("invalid color '%s'", s)
}

// Value is a card face: 0-9 or one of the action kinds.
type Value int

const (
	ValueSkip Value = 10 + iota
	ValueReverse
	ValueDrawTwo
	ValueWild
	ValueWildDrawFour
)

func (v Value) String() string {
	if v >= 0 && v <= 9 {
		return fmt.Sprintf("%d", int(v))
	}
	switch v {
	case ValueSkip:
		return "Skip"
	case ValueReverse:
		return "Reverse"
	case ValueDrawTwo:
		return "+2"
	case ValueWild:
		return "Wild"
	case ValueWildDrawFour:
		return "+4"
	default:
		return fmt.Sprintf("Value(%d)", int(v))
	}
}

// IsWild reports whether the face needs a color choice when played.
func (v Value) IsWild() bool {
	return v == ValueWild || v == ValueWildDrawFour
}

// Card is immutable once created. An empty ID means the card is face-down or not ours.
type Card struct {
	ID    string `json:"id"`
	Color Color  `json:"color"`
	Value Value  `json:"value"`
}

func (c Card) IsWild() bool {
	return c.Color == ColorWild || c.Value.IsWild()
}

// Known reports whether the card identity is known locally.
func (c Card) Known() bool {
	return c.ID != ""
}

func (c Card) String() string {
	if c.Color == ColorWild {
		return c.Value.String()
	}
	return c.Color.String() + " " + c.Value.String()
}
