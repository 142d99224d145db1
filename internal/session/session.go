// internal/session/session.go
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/uno/internal/game"
	"github.com/jason-s-yu/uno/internal/models"
	"github.com/sirupsen/logrus"
)

// Outbound message types sent to the renderer.
const (
	MsgSession     = "session"
	MsgState       = "state"
	MsgAnimate     = "animate"
	MsgIdle        = "idle"
	MsgGameOver    = "game_over"
	MsgNotice      = "notice"
	MsgColorPrompt = "color_prompt"
	MsgUnoWindow   = "uno_window"
	MsgReset       = "reset"
	MsgError       = "error"
	MsgPong        = "pong"
)

// Message is one outbound frame. Data is always present and is null for an empty slot.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// GameOverData is the payload of a game_over frame.
type GameOverData struct {
	WinnerID string `json:"winnerId"`
	HumanWon bool   `json:"humanWon"`
}

// UnoWindowData is the payload of an uno_window frame.
type UnoWindowData struct {
	Open bool `json:"open"`
}

// Options are shared by every session a server creates.
type Options struct {
	API              game.GameAPI
	Scheduler        game.Scheduler
	SettleDelay      time.Duration
	ColorSettleDelay time.Duration
	UnoGrace         time.Duration
	NoticeDuration   time.Duration
	ColorNotice      time.Duration
	RequestTimeout   time.Duration
	Logger           logrus.FieldLogger
}

// Session is one connected renderer: a Sequencer and Orchestrator pair whose output is
// queued as Messages for the connection's writer.
type Session struct {
	ID       uuid.UUID
	ClientID string
	Seq      *game.Sequencer
	Orch     *game.Orchestrator

	log logrus.FieldLogger

	mu     sync.Mutex
	queue  []Message
	closed bool
	notify chan struct{}
	done   chan struct{}
}

// New builds a session for clientID. Nothing is sent until a game is started.
func New(clientID string, opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	s := &Session{
		ID:       uuid.New(),
		ClientID: clientID,
		notify:   make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	s.log = logger.WithFields(logrus.Fields{
		"session": s.ID,
		"client":  clientID,
	})

	s.Seq = game.NewSequencer(game.SequencerOptions{
		Scheduler:        opts.Scheduler,
		SettleDelay:      opts.SettleDelay,
		ColorSettleDelay: opts.ColorSettleDelay,
		Logger:           s.log,
	})
	s.Orch = game.NewOrchestrator(opts.API, s.Seq, game.OrchestratorOptions{
		Scheduler:           opts.Scheduler,
		UnoGrace:            opts.UnoGrace,
		NoticeDuration:      opts.NoticeDuration,
		ColorNoticeDuration: opts.ColorNotice,
		RequestTimeout:      opts.RequestTimeout,
		Logger:              s.log,
		Listener: game.OrchestratorListener{
			PromptColor: func() { s.Push(MsgColorPrompt, nil) },
			UnoWindow:   func(open bool) { s.Push(MsgUnoWindow, UnoWindowData{Open: open}) },
			Notice: func(n *game.Notice) {
				if n == nil {
					s.Push(MsgNotice, nil)
					return
				}
				s.Push(MsgNotice, n)
			},
		},
	})
	s.Seq.SetListener(s.Orch.WrapListener(game.SequencerListener{
		State: func(state models.GameState) { s.Push(MsgState, state) },
		Animate: func(card *models.AnimatingCard) {
			if card == nil {
				s.Push(MsgAnimate, nil)
				return
			}
			s.Push(MsgAnimate, card)
		},
		GameOver: func(winnerID string, humanWon bool) {
			s.Push(MsgGameOver, GameOverData{WinnerID: winnerID, HumanWon: humanWon})
		},
		Idle: func() { s.Push(MsgIdle, nil) },
	}))

	return s
}

// Push queues a frame. It never blocks, so it is safe from listener funcs that run under
// the engine's locks.
func (s *Session) Push(msgType string, data interface{}) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, Message{Type: msgType, Data: data})
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// Drain takes every queued frame in order.
func (s *Session) Drain() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := s.queue
	s.queue = nil
	return q
}

// Notify fires after frames were queued.
func (s *Session) Notify() <-chan struct{} { return s.notify }

// Done is closed by Close.
func (s *Session) Done() <-chan struct{} { return s.done }

// Close cancels all timers and stops queueing. Safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.queue = nil
	s.mu.Unlock()

	s.Orch.Reset()
	close(s.done)
	s.log.Debug("Session closed")
}

func (s *Session) Logger() logrus.FieldLogger { return s.log }
