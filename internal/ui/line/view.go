// Package line provides a line-oriented chat view over plain streams.
package line

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/omochice/roster-chat/internal/transcript"
	"github.com/omochice/roster-chat/pkg/protocol"
)

const nameUsage = "usage: /name NAME"

// Sender is the part of a chat session the view drives.
type Sender interface {
	Connect(username string)
	SendMessage()
}

// View writes chat output line by line and reads messages from a stream.
type View struct {
	out    io.Writer
	settle time.Duration

	mu       sync.Mutex
	username string
	message  string
	tr       *transcript.Transcript
	cleared  chan struct{}
}

// New creates a View writing to out. settle bounds how long Run waits for a
// submitted message to leave the message field before reading the next line.
func New(out io.Writer, username string, settle time.Duration) *View {
	return &View{
		out:      out,
		settle:   settle,
		username: username,
		tr:       transcript.New(),
		cleared:  make(chan struct{}, 1),
	}
}

func (v *View) Username() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.username
}

func (v *View) MessageText() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.message
}

func (v *View) ClearMessage() {
	v.mu.Lock()
	v.message = ""
	v.mu.Unlock()

	select {
	case v.cleared <- struct{}{}:
	default:
	}
}

// FocusMessage is a no-op; the message line is always the input.
func (v *View) FocusMessage() {}

func (v *View) Alert(msg string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintf(v.out, "!!! %s\n", msg)
}

func (v *View) ReplaceRoster(users []string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.tr.ReplaceRoster(users)
	fmt.Fprintf(v.out, "*** users: %s ***\n", transcript.StripControl(strings.Join(users, ", ")))
}

func (v *View) AppendLine(ev protocol.ChatEvent) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.tr.Append(ev)
	fmt.Fprintln(v.out, transcript.StripControl(transcript.FormatLine(ev)))
}

// Roster returns the roster as last shown.
func (v *View) Roster() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.tr.Roster()
}

// Lines returns every history line shown so far.
func (v *View) Lines() []protocol.ChatEvent {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.tr.Lines()
}

// Run reads lines from in until EOF, ctx is done, or the user types /quit.
// A plain line becomes the message field and is submitted. /connect opens a
// new connection and /name changes the username field.
func (v *View) Run(ctx context.Context, in io.Reader, s Sender) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	errCh := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errCh <- scanner.Err()
	}()

	for {
		var raw string
		select {
		case <-ctx.Done():
			return nil
		case l, ok := <-lines:
			if !ok {
				select {
				case err := <-errCh:
					if err != nil {
						return fmt.Errorf("failed to read input: %w", err)
					}
				default:
				}
				return nil
			}
			raw = l
		}

		// Commands are matched on the trimmed line; messages are sent as typed.
		text := strings.TrimSpace(raw)
		switch {
		case text == "":
			continue
		case text == "/quit" || text == "/exit":
			return nil
		case text == "/connect":
			s.Connect(v.Username())
		case text == "/name" || strings.HasPrefix(text, "/name "):
			name := strings.TrimSpace(strings.TrimPrefix(text, "/name"))
			if name == "" {
				v.Alert(nameUsage)
				continue
			}
			v.mu.Lock()
			v.username = name
			v.mu.Unlock()
		default:
			v.submit(ctx, raw, s)
		}
	}
}

func (v *View) submit(ctx context.Context, text string, s Sender) {
	select {
	case <-v.cleared:
	default:
	}

	v.mu.Lock()
	v.message = text
	v.mu.Unlock()
	s.SendMessage()

	select {
	case <-v.cleared:
	case <-time.After(v.settle):
	case <-ctx.Done():
	}
}
