// internal/api/client_test.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jason-s-yu/uno/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewClient(srv.URL+"/api/", time.Second, logger)
}

func TestStartGame(t *testing.T) {
	var got map[string]interface{}
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/Game/start", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"gameId": "g-1",
			"gameState": {
				"players": [
					{"id": "h", "name": "Ann", "isHuman": true, "cards": [{"id": "c1", "color": 0, "value": 5}], "cardCount": 1},
					{"id": "b", "name": "Bot", "isHuman": false, "cards": [], "cardCount": 7}
				],
				"topCard": {"id": "t", "color": 3, "value": 12},
				"currentColor": 3,
				"currentPlayerId": "h",
				"direction": 0,
				"deckCardCount": 80
			}
		}`)
	})

	res, err := c.StartGame(context.Background(), StartGameRequest{PlayerName: "Ann", PlayerCount: 2, InitialCardCount: 7})
	require.NoError(t, err)

	assert.Equal(t, map[string]interface{}{"playerName": "Ann", "playerCount": float64(2), "initialCardCount": float64(7)}, got)
	assert.Equal(t, "g-1", res.GameID)
	require.Len(t, res.GameState.Players, 2)
	assert.Equal(t, models.Card{ID: "c1", Color: models.ColorRed, Value: 5}, res.GameState.Players[0].Cards[0])
	assert.Equal(t, models.ValueDrawTwo, res.GameState.TopCard.Value)
	assert.Equal(t, models.ColorYellow, res.GameState.CurrentColor)
	assert.Equal(t, 80, res.GameState.DeckCardCount)
}

func TestPlayCard(t *testing.T) {
	var body map[string]interface{}
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/Game/g%201/play", r.URL.EscapedPath())
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		io.WriteString(w, `{
			"success": true,
			"message": "",
			"gameState": {"players": [], "currentPlayerId": "b", "deckCardCount": 10},
			"events": [
				{"eventType": 0, "playerId": "h", "cardIdx": 0, "card": {"id": "c1", "color": 4, "value": 13}},
				{"eventType": 6, "playerId": "h", "cardIdx": -1, "color": 1}
			]
		}`)
	})

	res, err := c.PlayCard(context.Background(), "g 1", PlayCardRequest{PlayerID: "h", CardID: "c1", CalledUno: true})
	require.NoError(t, err)

	assert.Nil(t, body["chosenColor"], "chosen color is sent as null")
	assert.Contains(t, body, "chosenColor")
	assert.Equal(t, true, body["calledUno"])

	require.Len(t, res.Events, 2)
	assert.Equal(t, models.EventPlayCard, res.Events[0].EventType)
	require.NotNil(t, res.Events[0].Card)
	assert.True(t, res.Events[0].Card.IsWild())
	assert.Equal(t, models.EventChooseColor, res.Events[1].EventType)
	require.NotNil(t, res.Events[1].Color)
	assert.Equal(t, models.ColorBlue, *res.Events[1].Color)
}

func TestPlayCardRejected(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"success": false, "message": "Card cannot be played", "gameState": {}, "events": []}`)
	})

	res, err := c.PlayCard(context.Background(), "g", PlayCardRequest{PlayerID: "h", CardID: "c"})
	require.Error(t, err)
	assert.NotNil(t, res)
	assert.ErrorIs(t, err, ErrRejected)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Card cannot be played", apiErr.Message)
}

func TestHTTPErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"json message", http.StatusBadRequest, `{"message": "Not your turn"}`, "Not your turn"},
		{"problem details", http.StatusNotFound, `{"title": "Game not found"}`, "Game not found"},
		{"plain text", http.StatusInternalServerError, "boom\n", "boom"},
		{"empty", http.StatusBadGateway, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})

			_, err := c.DrawCard(context.Background(), "g", DrawCardRequest{PlayerID: "h"})
			var apiErr *Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.wantMsg, apiErr.Message)
			assert.False(t, errors.Is(err, ErrRejected))
		})
	}
}

func TestDrawCardAutoPlayed(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/Game/g/draw", r.URL.Path)
		io.WriteString(w, `{
			"success": true,
			"cardWasPlayed": true,
			"gameState": {"players": []},
			"events": [
				{"eventType": 1, "playerId": "h", "cardIdx": -1, "card": {"id": "d", "color": 2, "value": 7}},
				{"eventType": 0, "playerId": "h", "cardIdx": 3, "card": {"id": "d", "color": 2, "value": 7}}
			]
		}`)
	})

	res, err := c.DrawCard(context.Background(), "g", DrawCardRequest{PlayerID: "h"})
	require.NoError(t, err)
	assert.True(t, res.CardWasPlayed)
	assert.Len(t, res.Events, 2)
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c := NewClient(srv.URL, 500*time.Millisecond, nil)
	_, err := c.StartGame(context.Background(), StartGameRequest{})
	require.Error(t, err)

	var apiErr *Error
	assert.False(t, errors.As(err, &apiErr))
}
