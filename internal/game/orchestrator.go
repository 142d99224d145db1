// internal/game/orchestrator.go
package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jason-s-yu/uno/internal/api"
	"github.com/jason-s-yu/uno/internal/models"
	"github.com/sirupsen/logrus"
)

// Default orchestrator timings.
const (
	DefaultUnoGrace            = 2000 * time.Millisecond
	DefaultNoticeDuration      = 3000 * time.Millisecond
	DefaultColorNoticeDuration = 1500 * time.Millisecond
	DefaultRequestTimeout      = 10 * time.Second
)

// ErrNoGame is returned by actions issued before a game was started.
var ErrNoGame = errors.New("no game in progress")

// GameAPI is the remote rules server as seen by the Orchestrator.
type GameAPI interface {
	StartGame(ctx context.Context, req api.StartGameRequest) (*api.StartGameResponse, error)
	PlayCard(ctx context.Context, gameID string, req api.PlayCardRequest) (*api.ActionResponse, error)
	DrawCard(ctx context.Context, gameID string, req api.DrawCardRequest) (*api.ActionResponse, error)
}

// NoticeKind distinguishes the transient messages shown over the table.
type NoticeKind string

const (
	NoticeError NoticeKind = "error"
	NoticeColor NoticeKind = "color"
)

// Notice is a transient, auto-dismissing message.
type Notice struct {
	Kind     NoticeKind    `json:"kind"`
	Message  string        `json:"message"`
	PlayerID string        `json:"playerId,omitempty"`
	Color    *models.Color `json:"color,omitempty"`
}

// OrchestratorListener receives prompts for the renderer. All funcs are optional.
type OrchestratorListener struct {
	// PromptColor asks the user to pick a color for the selected wild card.
	PromptColor func()
	// UnoWindow reports the grace window opening and closing.
	UnoWindow func(open bool)
	// Notice shows a notice, or clears it when n is nil.
	Notice func(n *Notice)
}

// OrchestratorOptions configures an Orchestrator. Zero values pick the defaults.
type OrchestratorOptions struct {
	Scheduler           Scheduler
	UnoGrace            time.Duration
	NoticeDuration      time.Duration
	ColorNoticeDuration time.Duration
	RequestTimeout      time.Duration
	Logger              logrus.FieldLogger
	Listener            OrchestratorListener
}

type pendingPlay struct {
	cardID string
	color  *models.Color
}

// Orchestrator turns user intents into server calls and hands each result to the
// Sequencer. Only one action may be in flight, and none while a replay is running.
type Orchestrator struct {
	mu sync.Mutex

	api      GameAPI
	seq      *Sequencer
	sched    Scheduler
	log      logrus.FieldLogger
	listener OrchestratorListener

	unoGrace       time.Duration
	noticeDur      time.Duration
	colorNoticeDur time.Duration
	requestTimeout time.Duration

	gameID  string
	humanID string

	busy          bool         // a server call is in flight
	awaitingColor *models.Card // wild card waiting for ChooseColor
	deferred      *pendingPlay // play held back by the grace window
	unoTimer      Timer
	earlyUno      bool
	generation    uint64

	// notice state has its own lock so Sequencer callbacks can raise notices
	// without taking mu.
	noticeMu    sync.Mutex
	notice      *Notice
	noticeTimer Timer
	noticeGen   uint64
}

// NewOrchestrator wires an Orchestrator to the server client and the Sequencer.
func NewOrchestrator(gameAPI GameAPI, seq *Sequencer, opts OrchestratorOptions) *Orchestrator {
	o := &Orchestrator{
		api:            gameAPI,
		seq:            seq,
		sched:          opts.Scheduler,
		log:            opts.Logger,
		listener:       opts.Listener,
		unoGrace:       opts.UnoGrace,
		noticeDur:      opts.NoticeDuration,
		colorNoticeDur: opts.ColorNoticeDuration,
		requestTimeout: opts.RequestTimeout,
	}
	if o.sched == nil {
		o.sched = RealScheduler()
	}
	if o.log == nil {
		o.log = logrus.StandardLogger()
	}
	if o.unoGrace <= 0 {
		o.unoGrace = DefaultUnoGrace
	}
	if o.noticeDur <= 0 {
		o.noticeDur = DefaultNoticeDuration
	}
	if o.colorNoticeDur <= 0 {
		o.colorNoticeDur = DefaultColorNoticeDuration
	}
	if o.requestTimeout <= 0 {
		o.requestTimeout = DefaultRequestTimeout
	}
	return o
}

// WrapListener returns l with opponent color choices also raised as notices.
func (o *Orchestrator) WrapListener(l SequencerListener) SequencerListener {
	next := l.ColorChosen
	l.ColorChosen = func(player models.Player, color models.Color) {
		o.AnnounceColor(player, color)
		if next != nil {
			next(player, color)
		}
	}
	return l
}

// StartGame asks the server for a new game and shows its first snapshot.
// Anything left from a previous game is discarded.
func (o *Orchestrator) StartGame(ctx context.Context, settings models.GameSettings) error {
	s := settings.Normalize()

	o.mu.Lock()
	if o.busy {
		o.mu.Unlock()
		return nil
	}
	o.busy = true
	gen := o.generation
	o.mu.Unlock()

	res, err := o.api.StartGame(ctx, api.StartGameRequest{
		PlayerName:       s.PlayerName,
		PlayerCount:      s.PlayerCount,
		InitialCardCount: s.InitialCardCount,
	})

	o.mu.Lock()
	if gen != o.generation {
		o.mu.Unlock()
		o.log.Debug("Dropping start result after reset")
		return nil
	}
	o.busy = false
	if err != nil {
		o.mu.Unlock()
		o.log.WithError(err).Warn("Failed to start game")
		o.showError(messageFor(err, "Failed to start game"))
		return err
	}

	o.resetLocked()
	o.gameID = res.GameID
	if human, ok := res.GameState.Human(); ok {
		o.humanID = human.ID
	}
	err = o.seq.SetState(res.GameState)
	o.mu.Unlock()

	o.clearNotice()
	o.log.WithFields(logrus.Fields{
		"game":    res.GameID,
		"players": len(res.GameState.Players),
	}).Info("Game started")
	return err
}

// PlayCard plays cardID from the human's hand. Guards that fail are silent no-ops.
// A wild card opens the color prompt instead of calling the server.
func (o *Orchestrator) PlayCard(ctx context.Context, cardID string) error {
	o.mu.Lock()
	if o.gameID == "" {
		o.mu.Unlock()
		return ErrNoGame
	}
	if o.blocked() {
		o.mu.Unlock()
		return nil
	}

	state, _ := o.seq.State()
	human, ok := state.Human()
	idx := human.HandIndex(cardID)
	if !ok || idx < 0 {
		o.mu.Unlock()
		return nil
	}
	card := human.Cards[idx]
	if !Playable(card, state.TopCard, state.CurrentColor) {
		o.mu.Unlock()
		o.log.WithField("card", card).Debug("Card not playable")
		return nil
	}

	if card.IsWild() {
		o.awaitingColor = &card
		prompt := o.listener.PromptColor
		o.mu.Unlock()
		if prompt != nil {
			prompt()
		}
		return nil
	}

	return o.commitPlay(ctx, human, pendingPlay{cardID: card.ID})
}

// ChooseColor resolves the wild card waiting for a color. Without one it does nothing.
func (o *Orchestrator) ChooseColor(ctx context.Context, color models.Color) error {
	o.mu.Lock()
	if o.awaitingColor == nil || !color.Concrete() {
		o.mu.Unlock()
		return nil
	}
	if o.busy || o.deferred != nil || o.seq.IsAnimating() {
		o.mu.Unlock()
		return nil
	}

	card := *o.awaitingColor
	o.awaitingColor = nil

	state, _ := o.seq.State()
	human, ok := state.Human()
	if !ok || human.HandIndex(card.ID) < 0 {
		o.mu.Unlock()
		return nil
	}

	c := color
	return o.commitPlay(ctx, human, pendingPlay{cardID: card.ID, color: &c})
}

// CancelColorChoice closes the color prompt without playing the wild card.
func (o *Orchestrator) CancelColorChoice() {
	o.mu.Lock()
	o.awaitingColor = nil
	o.mu.Unlock()
}

// CallUno declares UNO. Inside the grace window it sends the held play right away;
// otherwise it is remembered for the next play.
func (o *Orchestrator) CallUno(ctx context.Context) error {
	o.mu.Lock()
	if o.deferred == nil {
		if o.gameID != "" && !o.blocked() {
			o.earlyUno = true
		}
		o.mu.Unlock()
		return nil
	}

	stopTimer(o.unoTimer)
	o.unoTimer = nil
	play := *o.deferred
	o.deferred = nil
	o.busy = true
	gen := o.generation
	window := o.listener.UnoWindow
	o.mu.Unlock()

	if window != nil {
		window(false)
	}
	return o.sendPlay(ctx, gen, play, true)
}

// DrawCard draws for the human. It only works on the human's turn.
func (o *Orchestrator) DrawCard(ctx context.Context) error {
	o.mu.Lock()
	if o.gameID == "" {
		o.mu.Unlock()
		return ErrNoGame
	}
	if o.blocked() {
		o.mu.Unlock()
		return nil
	}
	before, _ := o.seq.State()
	if before.CurrentPlayerID != o.humanID {
		o.mu.Unlock()
		return nil
	}
	o.busy = true
	gen := o.generation
	gameID, humanID := o.gameID, o.humanID
	o.mu.Unlock()

	res, err := o.api.DrawCard(ctx, gameID, api.DrawCardRequest{PlayerID: humanID})
	if err == nil && res.CardWasPlayed {
		o.log.WithField("game", gameID).Debug("Drawn card was auto-played")
	}
	return o.finishAction(gen, before, res, err, "Failed to draw card")
}

// Reset drops the game and every pending timer, prompt and notice.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	o.resetLocked()
	o.mu.Unlock()
	o.clearNotice()
}

// AnnounceColor shows an opponent's color choice for a short while.
func (o *Orchestrator) AnnounceColor(player models.Player, color models.Color) {
	name := player.Name
	if name == "" {
		name = player.ID
	}
	c := color
	o.showNotice(Notice{
		Kind:     NoticeColor,
		Message:  fmt.Sprintf("%s chose %s", name, color),
		PlayerID: player.ID,
		Color:    &c,
	}, o.colorNoticeDur)
}

func (o *Orchestrator) GameID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.gameID
}

func (o *Orchestrator) HumanID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.humanID
}

// UnoWindowOpen reports whether a play is waiting out the grace window.
func (o *Orchestrator) UnoWindowOpen() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.deferred != nil
}

// AwaitingColor reports whether a wild card is waiting for ChooseColor.
func (o *Orchestrator) AwaitingColor() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.awaitingColor != nil
}

// Notice returns the notice currently shown, or nil.
func (o *Orchestrator) Notice() *Notice {
	o.noticeMu.Lock()
	defer o.noticeMu.Unlock()
	if o.notice == nil {
		return nil
	}
	n := *o.notice
	return &n
}

// blocked reports whether a new action must be refused. Caller holds o.mu.
func (o *Orchestrator) blocked() bool {
	return o.busy || o.deferred != nil || o.awaitingColor != nil || o.seq.IsAnimating()
}

// commitPlay sends a resolved play, or holds it for the grace window when it leaves the
// human with one card. Called with o.mu held; returns with it released.
func (o *Orchestrator) commitPlay(ctx context.Context, human models.Player, play pendingPlay) error {
	lastButOne := len(human.Cards) == 2
	early := o.earlyUno
	o.earlyUno = false
	gen := o.generation

	if lastButOne && !early {
		o.deferred = &play
		o.unoTimer = o.sched.AfterFunc(o.unoGrace, func() {
			o.onUnoTimeout(gen)
		})
		window := o.listener.UnoWindow
		o.mu.Unlock()
		if window != nil {
			window(true)
		}
		return nil
	}

	o.busy = true
	o.mu.Unlock()
	return o.sendPlay(ctx, gen, play, lastButOne && early)
}

func (o *Orchestrator) onUnoTimeout(gen uint64) {
	o.mu.Lock()
	if gen != o.generation || o.deferred == nil {
		o.mu.Unlock()
		return
	}
	play := *o.deferred
	o.deferred = nil
	o.unoTimer = nil
	o.busy = true
	window := o.listener.UnoWindow
	o.mu.Unlock()

	if window != nil {
		window(false)
	}

	ctx, cancel := context.WithTimeout(context.Background(), o.requestTimeout)
	defer cancel()
	if err := o.sendPlay(ctx, gen, play, false); err != nil {
		o.log.WithError(err).Debug("Deferred play failed")
	}
}

// sendPlay calls the server for a play. o.busy must already be set.
func (o *Orchestrator) sendPlay(ctx context.Context, gen uint64, play pendingPlay, calledUno bool) error {
	o.mu.Lock()
	gameID, humanID := o.gameID, o.humanID
	o.mu.Unlock()

	before, _ := o.seq.State()

	o.log.WithFields(logrus.Fields{
		"game":      gameID,
		"card":      play.cardID,
		"calledUno": calledUno,
	}).Debug("Playing card")

	res, err := o.api.PlayCard(ctx, gameID, api.PlayCardRequest{
		PlayerID:    humanID,
		CardID:      play.cardID,
		ChosenColor: play.color,
		CalledUno:   calledUno,
	})
	return o.finishAction(gen, before, res, err, "Failed to play card")
}

// finishAction releases the in-flight guard and hands a successful result to the
// Sequencer, replaying from before. Results that arrive after a Reset are dropped.
func (o *Orchestrator) finishAction(gen uint64, before models.GameState, res *api.ActionResponse, err error, fallback string) error {
	o.mu.Lock()
	if gen != o.generation {
		o.mu.Unlock()
		return nil
	}
	o.busy = false
	if err != nil {
		o.mu.Unlock()
		o.log.WithError(err).Warn(fallback)
		o.showError(messageFor(err, fallback))
		return err
	}
	startErr := o.seq.Start(res.Events, res.GameState, before)
	o.mu.Unlock()

	if startErr != nil {
		o.log.WithError(startErr).Error("Could not replay server events")
	}
	return startErr
}

// resetLocked clears everything tied to the current game. Caller holds o.mu.
func (o *Orchestrator) resetLocked() {
	o.generation++
	stopTimer(o.unoTimer)
	o.unoTimer = nil
	o.deferred = nil
	o.awaitingColor = nil
	o.earlyUno = false
	o.busy = false
	o.gameID = ""
	o.humanID = ""
	o.seq.Reset()
}

func (o *Orchestrator) showError(msg string) {
	o.showNotice(Notice{Kind: NoticeError, Message: msg}, o.noticeDur)
}

func (o *Orchestrator) showNotice(n Notice, d time.Duration) {
	o.noticeMu.Lock()
	defer o.noticeMu.Unlock()

	stopTimer(o.noticeTimer)
	o.noticeGen++
	gen := o.noticeGen
	o.notice = &n
	o.noticeTimer = o.sched.AfterFunc(d, func() {
		o.dismissNotice(gen)
	})
	o.emitNotice()
}

func (o *Orchestrator) dismissNotice(gen uint64) {
	o.noticeMu.Lock()
	defer o.noticeMu.Unlock()
	if gen != o.noticeGen {
		return
	}
	o.notice = nil
	o.noticeTimer = nil
	o.emitNotice()
}

func (o *Orchestrator) clearNotice() {
	o.noticeMu.Lock()
	defer o.noticeMu.Unlock()
	o.noticeGen++
	stopTimer(o.noticeTimer)
	o.noticeTimer = nil
	if o.notice != nil {
		o.notice = nil
		o.emitNotice()
	}
}

// emitNotice is called with noticeMu held.
func (o *Orchestrator) emitNotice() {
	fn := o.listener.Notice
	if fn == nil {
		return
	}
	if o.notice == nil {
		fn(nil)
		return
	}
	n := *o.notice
	fn(&n)
}

// messageFor picks the server's message when it gave one.
func messageFor(err error, fallback string) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
