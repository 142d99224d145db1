// internal/game/helpers_test.go
package game

import (
	"io"
	"sort"
	"sync"
	"time"

	"github.com/jason-s-yu/uno/internal/models"
	"github.com/sirupsen/logrus"
)

// manualScheduler is a fake clock; timers only fire from Advance.
type manualScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	seq    int
	timers []*manualTimer
}

type manualTimer struct {
	s       *manualScheduler
	at      time.Duration
	order   int
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func newManualScheduler() *manualScheduler {
	return &manualScheduler{}
}

func (m *manualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTimer{s: m, at: m.now + d, order: m.seq, f: f}
	m.timers = append(m.timers, t)
	return t
}

// Advance moves the clock forward, firing due timers in order. Timers scheduled by a
// callback fire too if they fall inside the window.
func (m *manualScheduler) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()

	for {
		m.mu.Lock()
		next := m.nextDue(target)
		if next == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		m.now = next.at
		next.fired = true
		m.mu.Unlock()
		next.f()
	}
}

// Pending counts live timers.
func (m *manualScheduler) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

func (m *manualScheduler) nextDue(target time.Duration) *manualTimer {
	var due []*manualTimer
	for _, t := range m.timers {
		if !t.stopped && !t.fired && t.at <= target {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].at == due[j].at {
			return due[i].order < due[j].order
		}
		return due[i].at < due[j].at
	})
	return due[0]
}

// recorder collects sequencer output.
type recorder struct {
	mu       sync.Mutex
	states   []models.GameState
	animates []*models.AnimatingCard
	gameOver []string
	humanWon []bool
	colors   []models.Color
	idles    int
}

func (r *recorder) listener() SequencerListener {
	return SequencerListener{
		State: func(s models.GameState) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.states = append(r.states, s)
		},
		Animate: func(c *models.AnimatingCard) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.animates = append(r.animates, c)
		},
		GameOver: func(winnerID string, humanWon bool) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.gameOver = append(r.gameOver, winnerID)
			r.humanWon = append(r.humanWon, humanWon)
		},
		ColorChosen: func(_ models.Player, c models.Color) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.colors = append(r.colors, c)
		},
		Idle: func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.idles++
		},
	}
}

func (r *recorder) lastState() models.GameState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.states[len(r.states)-1]
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestSequencer() (*Sequencer, *manualScheduler, *recorder) {
	sched := newManualScheduler()
	rec := &recorder{}
	seq := NewSequencer(SequencerOptions{
		Scheduler: sched,
		Logger:    quietLogger(),
		Listener:  rec.listener(),
	})
	return seq, sched, rec
}

func mkCard(id string, color models.Color, value models.Value) models.Card {
	return models.Card{ID: id, Color: color, Value: value}
}

// tableState builds a four-player table with the human at seat 0 holding hand.
func tableState(hand ...models.Card) models.GameState {
	return models.GameState{
		Players: []models.Player{
			{ID: "h", Name: "You", IsHuman: true, Cards: hand, CardCount: len(hand)},
			{ID: "p1", Name: "Bot 1", CardCount: 5},
			{ID: "p2", Name: "Bot 2", CardCount: 5},
			{ID: "p3", Name: "Bot 3", CardCount: 5},
		},
		TopCard:         mkCard("top", models.ColorRed, 3),
		CurrentColor:    models.ColorRed,
		CurrentPlayerID: "h",
		Direction:       models.Clockwise,
		DeckCardCount:   60,
	}
}

func colorPtr(c models.Color) *models.Color {
	return &c
}
