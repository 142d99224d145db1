// internal/handlers/session_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/jason-s-yu/uno/internal/game"
	"github.com/jason-s-yu/uno/internal/middleware"
	"github.com/jason-s-yu/uno/internal/models"
	"github.com/jason-s-yu/uno/internal/session"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Subprotocol is the websocket subprotocol renderers must request.
const Subprotocol = "uno"

// ClientMessage is an inbound frame from the renderer.
type ClientMessage struct {
	Type string `json:"type"`

	// CardID identifies the card for play_card.
	CardID string `json:"cardId,omitempty"`

	// Color is the choice for choose_color, either the numeric code or a color name.
	Color json.RawMessage `json:"color,omitempty"`

	// Settings optionally overrides the saved table options for start_game.
	Settings *models.GameSettings `json:"settings,omitempty"`
}

// SessionInfo is the payload of the first frame sent on a new connection.
type SessionInfo struct {
	SessionID uuid.UUID           `json:"sessionId"`
	ClientID  string              `json:"clientId"`
	Settings  models.GameSettings `json:"settings"`
}

// SessionWSHandler upgrades to a websocket and runs one renderer session on it: inbound
// frames drive the Orchestrator and Sequencer, and their output is written back in order.
func SessionWSHandler(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientID := strings.TrimSpace(r.URL.Query().Get("client"))
		if clientID == "" {
			clientID = uuid.NewString()
		}
		if len(clientID) > maxClientIDLen {
			http.Error(w, "client id too long", http.StatusBadRequest)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{Subprotocol},
			OriginPatterns: s.AllowedOrigins,
		})
		if err != nil {
			s.Logger.Warnf("WebSocket accept error for client %s: %v", clientID, err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "Internal server error during handler exit.")

		if c.Subprotocol() != Subprotocol {
			s.Logger.Warnf("Client %s connected with invalid subprotocol: %s", clientID, c.Subprotocol())
			c.Close(BadSubprotocolError, "Client must use the 'uno' subprotocol.")
			return
		}
		middleware.LogWebSocketConnect(s.Logger, r.RemoteAddr, r.URL.Path)

		sess := session.New(clientID, s.SessionOptions)
		s.Sessions.Add(sess)
		defer func() {
			s.Sessions.Delete(sess.ID)
			sess.Close()
		}()

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		saved, err := s.Settings.Load(ctx, clientID)
		if err != nil {
			sess.Logger().WithError(err).Warn("Failed to load settings, using defaults")
			saved = models.DefaultSettings()
		}
		sess.Push(session.MsgSession, SessionInfo{SessionID: sess.ID, ClientID: clientID, Settings: saved})

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			defer cancel()
			return writeSessionMessages(gctx, c, sess)
		})
		g.Go(func() error {
			defer cancel()
			return readSessionMessages(gctx, c, s, sess)
		})
		err = g.Wait()

		middleware.LogWebSocketDisconnect(s.Logger, r.RemoteAddr, r.URL.Path, err)
		c.Close(websocket.StatusNormalClosure, "")
	}
}

// writeSessionMessages flushes queued frames until the session or the connection ends.
// A session closed by the server closes the socket with SessionClosed.
func writeSessionMessages(ctx context.Context, c *websocket.Conn, sess *session.Session) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-sess.Done():
			c.Close(SessionClosed, "Session closed by server.")
			return nil
		case <-sess.Notify():
			for _, msg := range sess.Drain() {
				if err := sendWsMessage(ctx, c, msg); err != nil {
					return err
				}
			}
		}
	}
}

// readSessionMessages reads frames from the renderer and routes them. It returns nil on a
// normal close and the read error otherwise.
func readSessionMessages(ctx context.Context, c *websocket.Conn, s *Server, sess *session.Session) error {
	logger := sess.Logger()
	for {
		msgType, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || status == SessionClosed || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		if msgType != websocket.MessageText {
			logger.Warnf("Received non-text message type %d. Ignoring.", msgType)
			continue
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Warnf("Invalid JSON received: %v", err)
			sess.Push(session.MsgError, errorData("Invalid JSON format."))
			continue
		}

		logger.WithField("type", msg.Type).Debug("Received message")
		handleSessionMessage(ctx, s, sess, msg)
	}
}

func handleSessionMessage(ctx context.Context, s *Server, sess *session.Session, msg ClientMessage) {
	logger := sess.Logger()
	var err error

	switch msg.Type {
	case "start_game":
		err = startGame(ctx, s, sess, msg.Settings)
	case "play_card":
		if msg.CardID == "" {
			sess.Push(session.MsgError, errorData("play_card requires cardId"))
			return
		}
		err = sess.Orch.PlayCard(ctx, msg.CardID)
	case "draw_card":
		err = sess.Orch.DrawCard(ctx)
	case "choose_color":
		color, perr := parseColor(msg.Color)
		if perr != nil {
			sess.Push(session.MsgError, errorData(perr.Error()))
			return
		}
		err = sess.Orch.ChooseColor(ctx, color)
	case "cancel_color":
		sess.Orch.CancelColorChoice()
	case "call_uno":
		err = sess.Orch.CallUno(ctx)
	case "animation_complete":
		sess.Seq.OnAnimationComplete()
	case "reset":
		sess.Orch.Reset()
		sess.Push(session.MsgReset, nil)
	case "ping":
		sess.Push(session.MsgPong, nil)
	default:
		logger.Warnf("Unknown message type '%s'.", msg.Type)
		sess.Push(session.MsgError, errorData(fmt.Sprintf("Unknown message type: %s", msg.Type)))
		return
	}

	switch {
	case err == nil:
	case errors.Is(err, game.ErrNoGame):
		sess.Push(session.MsgError, errorData("No game in progress."))
	default:
		// server failures already reached the renderer as a notice
		logger.WithError(err).WithField("type", msg.Type).Debug("Action failed")
	}
}

// startGame uses the settings sent with the request, saving them, or the saved ones.
func startGame(ctx context.Context, s *Server, sess *session.Session, requested *models.GameSettings) error {
	var gs models.GameSettings
	var err error
	if requested != nil {
		gs, err = s.Settings.Save(ctx, sess.ClientID, *requested)
		if err != nil {
			sess.Logger().WithError(err).Warn("Failed to save settings")
			gs = requested.Normalize()
		}
	} else {
		gs, err = s.Settings.Load(ctx, sess.ClientID)
		if err != nil {
			sess.Logger().WithError(err).Warn("Failed to load settings, using defaults")
			gs = models.DefaultSettings()
		}
	}

	sess.Logger().WithFields(logrus.Fields{
		"players": gs.PlayerCount,
		"cards":   gs.InitialCardCount,
	}).Info("Starting game")
	return sess.Orch.StartGame(ctx, gs)
}

// parseColor accepts 0-3 or a color name.
func parseColor(raw json.RawMessage) (models.Color, error) {
	if len(raw) == 0 {
		return models.ColorWild, errors.New("choose_color requires color")
	}
	var code int
	if err := json.Unmarshal(raw, &code); err == nil {
		c := models.Color(code)
		if !c.Concrete() {
			return models.ColorWild, fmt.Errorf("invalid color '%d'", code)
		}
		return c, nil
	}
	var name string
	if err := json.Unmarshal(raw, &name); err != nil {
		return models.ColorWild, errors.New("color must be a number or a name")
	}
	return models.ParseColor(name)
}

func errorData(msg string) map[string]string {
	return map[string]string{"message": msg}
}

// sendWsMessage marshals a message and writes it with a write timeout.
func sendWsMessage(ctx context.Context, c *websocket.Conn, message interface{}) error {
	msgBytes, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal websocket message: %w", err)
	}

	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := c.Write(writeCtx, websocket.MessageText, msgBytes); err != nil {
		return fmt.Errorf("failed to write websocket message: %w", err)
	}
	return nil
}
