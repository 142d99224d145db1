// internal/game/sequencer.go
package game

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/uno/internal/models"
	"github.com/sirupsen/logrus"
)

// Default pacing between replayed events.
const (
	DefaultSettleDelay      = 1000 * time.Millisecond
	DefaultColorSettleDelay = 2000 * time.Millisecond
)

// ErrSequencerBusy is returned when a batch is started while another is still replaying.
var ErrSequencerBusy = errors.New("sequencer is replaying a batch")

// Phase is the replay state of a Sequencer.
type Phase int

const (
	PhaseIdle        Phase = iota // queue empty, nothing in flight
	PhaseDispatching              // about to show the next event
	PhaseAnimating                // waiting for OnAnimationComplete
	PhaseSettling                 // effect applied, waiting out the settle delay
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseDispatching:
		return "dispatching"
	case PhaseAnimating:
		return "animating"
	case PhaseSettling:
		return "settling"
	}
	return "unknown"
}

// SequencerListener receives replay output. Every func is optional and is called while the
// sequencer lock is held, so none of them may call back into the Sequencer synchronously.
type SequencerListener struct {
	// State is called whenever the displayed snapshot changes.
	State func(state models.GameState)
	// Animate is called with the card now in flight, or nil when the slot is cleared.
	Animate func(card *models.AnimatingCard)
	// GameOver is raised when a GameOver event is replayed.
	GameOver func(winnerID string, humanWon bool)
	// ColorChosen is raised when an opponent's color choice is replayed.
	ColorChosen func(player models.Player, color models.Color)
	// Idle is called once a batch has fully drained.
	Idle func()
}

// SequencerOptions configures a Sequencer. Zero values pick the defaults.
type SequencerOptions struct {
	Scheduler        Scheduler
	SettleDelay      time.Duration
	ColorSettleDelay time.Duration
	Logger           logrus.FieldLogger
	Listener         SequencerListener
}

// Sequencer replays the events of one server action one at a time, exposing at most one
// card in flight and converging on the server's final snapshot once the queue drains.
// It exclusively owns the displayed snapshot and the animating-card slot.
type Sequencer struct {
	mu sync.Mutex

	sched       Scheduler
	settle      time.Duration
	colorSettle time.Duration
	log         logrus.FieldLogger
	listener    SequencerListener

	phase     Phase
	state     models.GameState
	hasState  bool
	pending   *models.GameState
	queue     []models.GameEvent
	current   *models.GameEvent
	animating *models.AnimatingCard

	// stepTimer is the single pending "next step"; generation invalidates timers that
	// were already firing when Reset ran.
	stepTimer  Timer
	generation uint64
	batchID    uuid.UUID
}

// NewSequencer builds an idle Sequencer.
func NewSequencer(opts SequencerOptions) *Sequencer {
	s := &Sequencer{
		sched:       opts.Scheduler,
		settle:      opts.SettleDelay,
		colorSettle: opts.ColorSettleDelay,
		log:         opts.Logger,
		listener:    opts.Listener,
	}
	if s.sched == nil {
		s.sched = RealScheduler()
	}
	if s.settle <= 0 {
		s.settle = DefaultSettleDelay
	}
	if s.colorSettle <= 0 {
		s.colorSettle = DefaultColorSettleDelay
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	return s
}

// SetListener replaces the listener funcs.
func (s *Sequencer) SetListener(l SequencerListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listener = l
}

// SetState installs the snapshot of a freshly started game.
func (s *Sequencer) SetState(state models.GameState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseIdle {
		return ErrSequencerBusy
	}
	s.state = state.Clone()
	s.hasState = true
	s.emitState()
	return nil
}

// Start replays events, beginning from currentState (what the user saw before the action)
// and ending on finalState. An empty batch shows finalState at once and stays idle.
func (s *Sequencer) Start(events []models.GameEvent, finalState, currentState models.GameState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseIdle {
		return ErrSequencerBusy
	}

	if len(events) == 0 {
		s.state = finalState.Clone()
		s.hasState = true
		s.emitState()
		return nil
	}

	final := finalState.Clone()
	s.pending = &final
	s.queue = make([]models.GameEvent, len(events))
	for i, ev := range events {
		s.queue[i] = cloneEvent(ev)
	}
	s.state = currentState.Clone()
	s.hasState = true
	s.batchID = uuid.New()
	s.phase = PhaseDispatching

	s.log.WithFields(logrus.Fields{
		"batch":  s.batchID,
		"events": len(events),
	}).Debug("Starting event replay")

	s.emitState()
	s.step()
	return nil
}

// OnAnimationComplete is called by the renderer when the card in flight has landed.
// It applies the event using the card that was shown and schedules the next step.
func (s *Sequencer) OnAnimationComplete() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseAnimating || s.current == nil || s.animating == nil {
		s.log.WithField("phase", s.phase).Debug("Ignoring animation completion with nothing in flight")
		return
	}

	ev := *s.current
	shown := s.animating.Card
	var card *models.Card
	if ev.EventType == models.EventPlayCard || shown.Known() {
		card = &shown
	}

	s.state = Apply(ev, s.state, card)
	s.current = nil
	s.animating = nil
	s.phase = PhaseSettling

	s.emitAnimate()
	s.emitState()
	s.schedule(s.settle)
}

// Reset abandons any replay: the queue, the pending timer, the slot and the displayed
// state are all cleared and the Sequencer returns to idle.
func (s *Sequencer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	stopTimer(s.stepTimer)
	s.stepTimer = nil

	hadCard := s.animating != nil
	s.queue = nil
	s.pending = nil
	s.current = nil
	s.animating = nil
	s.phase = PhaseIdle
	s.state = models.GameState{}
	s.hasState = false

	if hadCard {
		s.emitAnimate()
	}
}

// State returns a copy of the displayed snapshot and whether one has been set.
func (s *Sequencer) State() (models.GameState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone(), s.hasState
}

// AnimatingCard returns a copy of the card in flight, or nil.
func (s *Sequencer) AnimatingCard() *models.AnimatingCard {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.animating == nil {
		return nil
	}
	c := *s.animating
	return &c
}

// IsAnimating reports whether a batch is still replaying.
func (s *Sequencer) IsAnimating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase != PhaseIdle
}

func (s *Sequencer) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// step pops the next event. Caller holds s.mu.
func (s *Sequencer) step() {
	if len(s.queue) == 0 {
		s.finish()
		return
	}

	ev := s.queue[0]
	s.queue = s.queue[1:]
	s.phase = PhaseDispatching

	logger := s.log.WithFields(logrus.Fields{
		"batch":  s.batchID,
		"event":  ev.EventType,
		"player": ev.PlayerID,
	})

	if ev.EventType.Visual() {
		if anim := s.animationFor(ev); anim != nil {
			s.current = &ev
			s.animating = anim
			s.phase = PhaseAnimating
			logger.Debug("Animating event")
			s.emitAnimate()
			return
		}
		logger.Warn("Could not resolve card or player for event, applying without animation")
	}

	s.state = Apply(ev, s.state, ResolveCard(ev, s.state))
	s.phase = PhaseSettling
	s.emitState()

	delay := s.settle
	switch ev.EventType {
	case models.EventGameOver:
		if s.listener.GameOver != nil {
			s.listener.GameOver(ev.PlayerID, s.state.IsHuman(ev.PlayerID))
		}
	case models.EventChooseColor:
		delay = s.colorSettle
		i := s.state.PlayerIndex(ev.PlayerID)
		if ev.Color != nil && i >= 0 && !s.state.Players[i].IsHuman && s.listener.ColorChosen != nil {
			s.listener.ColorChosen(s.state.Players[i].Clone(), *ev.Color)
		}
	}
	s.schedule(delay)
}

// animationFor builds the in-flight card for a visual event, or nil when the event cannot
// be shown (unknown player, unresolvable card).
func (s *Sequencer) animationFor(ev models.GameEvent) *models.AnimatingCard {
	i := s.state.PlayerIndex(ev.PlayerID)
	if i < 0 {
		return nil
	}
	p := s.state.Players[i]
	seat := SeatFor(ev.PlayerID, s.state.Players, s.state.HumanIndex())

	switch ev.EventType {
	case models.EventPlayCard:
		card := ResolveCard(ev, s.state)
		if card == nil {
			return nil
		}
		return &models.AnimatingCard{
			PlayerID:   ev.PlayerID,
			CardIndex:  ev.CardIdx,
			Card:       *card,
			Seat:       seat,
			Kind:       models.AnimatePlayCard,
			TotalCards: p.CardCount,
		}
	case models.EventDrawCard:
		// opponents' draws stay face down
		var card models.Card
		if p.IsHuman && ev.Card != nil {
			card = *ev.Card
		}
		return &models.AnimatingCard{
			PlayerID:   ev.PlayerID,
			CardIndex:  p.CardCount,
			Card:       card,
			Seat:       seat,
			Kind:       models.AnimateDrawCard,
			TotalCards: p.CardCount + 1,
		}
	}
	return nil
}

// finish ends the batch and commits the stashed final snapshot. Caller holds s.mu.
func (s *Sequencer) finish() {
	s.phase = PhaseIdle
	s.current = nil
	s.animating = nil
	if s.pending != nil {
		s.state = *s.pending
		s.hasState = true
		s.pending = nil
	}

	s.log.WithField("batch", s.batchID).Debug("Event replay finished")

	s.emitState()
	if s.listener.Idle != nil {
		s.listener.Idle()
	}
}

// schedule arms the single next-step timer. A request made while one is already pending
// is dropped. Caller holds s.mu.
func (s *Sequencer) schedule(d time.Duration) {
	if s.stepTimer != nil {
		s.log.WithField("batch", s.batchID).Debug("Next step already scheduled")
		return
	}
	gen := s.generation
	s.stepTimer = s.sched.AfterFunc(d, func() {
		s.onStepTimer(gen)
	})
}

func (s *Sequencer) onStepTimer(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return
	}
	s.stepTimer = nil
	if s.phase == PhaseIdle || s.phase == PhaseAnimating {
		return
	}
	s.step()
}

func (s *Sequencer) emitState() {
	if s.listener.State != nil {
		s.listener.State(s.state.Clone())
	}
}

func (s *Sequencer) emitAnimate() {
	if s.listener.Animate == nil {
		return
	}
	if s.animating == nil {
		s.listener.Animate(nil)
		return
	}
	c := *s.animating
	s.listener.Animate(&c)
}

func cloneEvent(ev models.GameEvent) models.GameEvent {
	out := ev
	if ev.Card != nil {
		c := *ev.Card
		out.Card = &c
	}
	if ev.Color != nil {
		c := *ev.Color
		out.Color = &c
	}
	return out
}
