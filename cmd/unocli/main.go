// cmd/unocli/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	rl "github.com/chzyer/readline"
	"github.com/jason-s-yu/uno/internal/api"
	"github.com/jason-s-yu/uno/internal/config"
	"github.com/jason-s-yu/uno/internal/game"
	"github.com/jason-s-yu/uno/internal/models"
	"github.com/jason-s-yu/uno/internal/render"
	"github.com/jason-s-yu/uno/internal/settings"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

const help = `start [players] [cards]  start a game (2-4 players, 2-15 cards)
name <name>              set your display name
play <n>                 play the n-th card of your hand
draw                     draw a card
color <red|blue|green|yellow>
cancel                   put the wild back
uno                      call UNO
hand                     show your hand
table                    show the table
reset                    leave the game
quit`

type client struct {
	cfg   config.Config
	log   *logrus.Logger
	store settings.Store
	seq   *game.Sequencer
	orch  *game.Orchestrator
	term  *render.Terminal
}

func main() {
	cfg := config.Load()

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	if cfg.LogLevel >= logrus.DebugLevel {
		logger.SetLevel(cfg.LogLevel)
	}

	completer := rl.NewPrefixCompleter(
		rl.PcItem("start"),
		rl.PcItem("name"),
		rl.PcItem("play"),
		rl.PcItem("draw"),
		rl.PcItem("color",
			rl.PcItem("red"),
			rl.PcItem("blue"),
			rl.PcItem("green"),
			rl.PcItem("yellow"),
		),
		rl.PcItem("cancel"),
		rl.PcItem("uno"),
		rl.PcItem("hand"),
		rl.PcItem("table"),
		rl.PcItem("reset"),
		rl.PcItem("help"),
		rl.PcItem("quit"),
	)

	l, err := rl.NewEx(&rl.Config{
		Prompt:            "uno» ",
		HistoryFile:       os.TempDir() + "/uno_history",
		AutoComplete:      completer,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		logger.Fatalf("readline: %v", err)
	}
	defer l.Close()
	logger.SetOutput(l.Stderr())

	ctx := context.Background()
	store, err := settings.Open(ctx, cfg)
	if err != nil {
		logger.Warnf("settings store unavailable, using memory: %v", err)
		store = settings.NewMemoryStore()
	}
	defer store.Close()

	c := &client{cfg: cfg, log: logger, store: store}
	c.seq = game.NewSequencer(game.SequencerOptions{
		SettleDelay:      cfg.SettleDelay,
		ColorSettleDelay: cfg.ColorSettleDelay,
		Logger:           logger,
	})
	c.term = render.NewTerminal(l.Stdout(), cfg.AnimationDelay, c.seq.OnAnimationComplete)
	c.orch = game.NewOrchestrator(api.NewClient(cfg.GameAPIURL, cfg.GameAPITimeout, logger), c.seq, game.OrchestratorOptions{
		UnoGrace:            cfg.UnoGrace,
		NoticeDuration:      cfg.NoticeDuration,
		ColorNoticeDuration: cfg.ColorNotice,
		RequestTimeout:      cfg.GameAPITimeout,
		Logger:              logger,
		Listener:            c.term.OrchestratorListener(),
	})
	c.seq.SetListener(c.orch.WrapListener(c.term.SequencerListener()))

	c.term.Println("Connected to", cfg.GameAPIURL+". Type 'help' for commands.")
	c.repl(ctx, l)
	c.orch.Reset()
}

func (c *client) repl(ctx context.Context, l *rl.Instance) {
	for {
		line, err := l.Readline()
		if err == rl.ErrInterrupt {
			if len(line) == 0 {
				break
			} else {
				continue
			}
		} else if err == io.EOF {
			break
		}

		parts := strings.SplitN(strings.TrimSpace(line), " ", 2)
		cmd := strings.ToLower(parts[0])
		rest := ""
		if len(parts) == 2 {
			rest = strings.TrimSpace(parts[1])
		}

		switch cmd {
		case "":
		case "start":
			c.report(c.start(ctx, rest))
		case "name":
			if rest == "" {
				c.term.Println("name <name>")
				continue
			}
			gs, err := c.store.Load(ctx, c.cfg.ClientID)
			if err != nil {
				gs = models.DefaultSettings()
			}
			gs.PlayerName = rest
			if _, err := c.store.Save(ctx, c.cfg.ClientID, gs); err != nil {
				c.term.Println("Error:", err)
			}
		case "play":
			n, err := strconv.Atoi(rest)
			if err != nil {
				c.term.Println("play <n>")
				continue
			}
			id, ok := c.term.CardAt(n)
			if !ok {
				c.term.Println("No card", n)
				continue
			}
			c.report(c.orch.PlayCard(ctx, id))
		case "draw":
			c.report(c.orch.DrawCard(ctx))
		case "color":
			color, err := models.ParseColor(rest)
			if err != nil {
				c.term.Println(err)
				continue
			}
			c.report(c.orch.ChooseColor(ctx, color))
		case "cancel":
			c.orch.CancelColorChoice()
		case "uno":
			c.report(c.orch.CallUno(ctx))
		case "hand":
			c.term.Hand()
		case "table", "state":
			c.term.Table()
		case "reset":
			c.orch.Reset()
			c.term.Reset()
		case "help":
			c.term.Println(help)
		case "quit", "exit":
			return
		default:
			c.term.Println("unknown command, try 'help'")
		}
	}
}

// start reads the saved settings and applies the optional player and card counts.
func (c *client) start(ctx context.Context, args string) error {
	gs, err := c.store.Load(ctx, c.cfg.ClientID)
	if err != nil {
		c.log.WithError(err).Warn("Failed to load settings, using defaults")
		gs = models.DefaultSettings()
	}

	var players, cards int
	if args != "" {
		if _, err := fmt.Sscan(args, &players, &cards); err != nil && players == 0 {
			c.term.Println("start [players] [cards]")
			return nil
		}
	}
	if players > 0 {
		gs.PlayerCount = players
	}
	if cards > 0 {
		gs.InitialCardCount = cards
	}
	saved, err := c.store.Save(ctx, c.cfg.ClientID, gs)
	if err != nil {
		c.log.WithError(err).Warn("Failed to save settings")
		saved = gs.Normalize()
	}
	gs = saved

	c.term.Reset()
	c.term.Println(fmt.Sprintf("Starting %d players, %d cards each.", gs.PlayerCount, gs.InitialCardCount))
	return c.orch.StartGame(ctx, gs)
}

// report prints local errors. Server failures have already been shown as a notice.
func (c *client) report(err error) {
	switch {
	case err == nil:
	case errors.Is(err, game.ErrNoGame):
		c.term.Println("No game in progress. Type 'start'.")
	default:
		c.log.WithError(err).Debug("action failed")
	}
}
