package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/omochice/roster-chat/internal/chat"
	"github.com/omochice/roster-chat/internal/config"
	"github.com/omochice/roster-chat/internal/transport/ws"
	"github.com/omochice/roster-chat/internal/ui/line"
	"github.com/omochice/roster-chat/internal/ui/tui"
)

func main() {
	log.SetPrefix("[CHAT] ")

	cfg, err := config.Parse(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logOut, closeLog, err := openLog(cfg)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer closeLog()
	log.SetOutput(logOut)

	dialer, err := ws.NewDialer(cfg.Transport)
	if err != nil {
		log.Fatalf("Failed to select transport: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cfg.UI {
	case config.UILine:
		err = runLine(ctx, cfg, dialer)
	default:
		err = runTerminal(ctx, cfg, dialer)
	}
	if err != nil {
		log.Printf("Client stopped: %v", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openLog keeps log lines off the alternate screen: the full-screen UI logs
// to io.Discard unless a log file is configured.
func openLog(cfg config.Config) (io.Writer, func(), error) {
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, err
		}
		return f, func() { f.Close() }, nil
	}
	if cfg.UI == config.UITerminal {
		return io.Discard, func() {}, nil
	}
	return os.Stderr, func() {}, nil
}

func runTerminal(ctx context.Context, cfg config.Config, dialer chat.Dialer) error {
	bridge := tui.NewBridge()
	session := chat.New(dialer, bridge, chat.Options{
		Endpoint:       cfg.Endpoint,
		HandshakeDelay: cfg.HandshakeDelay,
		OnError:        bridge.Failed,
		OnStateChange:  bridge.StateChanged,
	})

	model := tui.NewModel(session, bridge, cfg.Username)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	bridge.Attach(p)

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		session.Run(runCtx)
	}()
	defer func() {
		cancel()
		<-done
	}()

	if cfg.Username != "" {
		session.Connect(cfg.Username)
	}

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("terminal ui: %w", err)
	}
	return nil
}

func runLine(ctx context.Context, cfg config.Config, dialer chat.Dialer) error {
	view := line.New(os.Stdout, cfg.Username, cfg.HandshakeDelay*2)
	session := chat.New(dialer, view, chat.Options{
		Endpoint:       cfg.Endpoint,
		HandshakeDelay: cfg.HandshakeDelay,
		OnError: func(err error) {
			fmt.Fprintf(os.Stdout, "!!! %v\n", err)
		},
		OnStateChange: func(ev chat.StateEvent) {
			if ev.Err != nil {
				fmt.Fprintf(os.Stdout, "*** %s (%v) ***\n", ev.New, ev.Err)
				return
			}
			fmt.Fprintf(os.Stdout, "*** %s ***\n", ev.New)
		},
	})

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		session.Run(runCtx)
	}()
	defer func() {
		cancel()
		<-done
	}()

	if cfg.Username != "" {
		session.Connect(cfg.Username)
	}

	fmt.Println("Type your messages (/connect, /name NAME, /quit):")
	return view.Run(ctx, os.Stdin, session)
}
