// Command drawwatch follows a live draw from the terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/gorilla/websocket"

	"github.com/Dosada05/championship-draw/brackets"
	"github.com/Dosada05/championship-draw/draw"
)

func main() {
	server := flag.String("server", "ws://localhost:8080", "base websocket URL of the draw server")
	tournamentID := flag.String("tournament", "", "tournament to follow")
	instant := flag.Bool("instant", false, "skip the reveal animation")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	if *tournamentID == "" {
		fmt.Fprintln(os.Stderr, "usage: drawwatch -tournament <id> [-server ws://host:port]")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := watch(ctx, *server, *tournamentID, *instant, os.Stdout, logger); err != nil {
		logger.Error("drawwatch stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func watch(ctx context.Context, server, tournamentID string, instant bool, out io.Writer, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	endpoint, err := url.JoinPath(server, "ws", "tournaments", tournamentID)
	if err != nil {
		return fmt.Errorf("invalid server URL: %w", err)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", endpoint, err)
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	r := &renderer{out: out}
	cycles := 0
	if instant {
		cycles = -1
	}
	viewer := draw.NewViewer(draw.ViewerConfig{
		RevealCycles: cycles,
		OnChange:     r.render,
		Logger:       logger,
	})
	defer viewer.Teardown()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read failed: %w", err)
		}
		ev, err := draw.Decode(data)
		if err != nil {
			if errors.Is(err, draw.ErrUnknownEvent) {
				logger.Warn("skipping unknown event", slog.Any("error", err))
				continue
			}
			return err
		}
		viewer.Handle(ev)
		if ev.Type == draw.EventDrawEnd {
			fmt.Fprintln(out, "draw ended")
		}
	}
}

// renderer redraws the whole screen on every change.
type renderer struct {
	mu  sync.Mutex
	out io.Writer
}

func (r *renderer) render(s draw.ViewState) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var b strings.Builder
	b.WriteString("\033[H\033[2J")
	fmt.Fprintf(&b, "phase: %s   drawn %d/%d", s.Phase, len(s.Revealed), s.Total)
	if s.Queued > 0 {
		fmt.Fprintf(&b, "   (%d queued)", s.Queued)
	}
	b.WriteString("\n\n")

	switch s.Phase {
	case draw.PhaseSpinning:
		for _, t := range s.Teams {
			fmt.Fprintf(&b, "  %s\n", t.Name)
		}
	case draw.PhaseDrawing, draw.PhaseComplete:
		for i, t := range s.Revealed {
			fmt.Fprintf(&b, "  %2d. %s\n", i+1, t.Name)
		}
		if s.Revealing {
			fmt.Fprintf(&b, "  ... %s\n", s.Flicker)
		}
	}

	if len(s.Bracket) > 0 {
		b.WriteString("\n")
		for ri, round := range s.Bracket {
			fmt.Fprintf(&b, "%s\n", round.Name)
			for mi, m := range round.Matches {
				fmt.Fprintf(&b, "  #%d %s vs %s\n", m.MatchNum,
					draw.SlotLabel(s.Bracket, ri, mi, brackets.SlotA),
					draw.SlotLabel(s.Bracket, ri, mi, brackets.SlotB))
			}
		}
	}
	if len(s.ByeTeams) > 0 {
		names := make([]string, len(s.ByeTeams))
		for i, t := range s.ByeTeams {
			names[i] = t.Name
		}
		fmt.Fprintf(&b, "\nbyes: %s\n", strings.Join(names, ", "))
	}

	_, _ = io.WriteString(r.out, b.String())
}
