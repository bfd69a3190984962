package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
)

// DisplayEvent is an event sent to a Display via the update channel.
// Implemented by BatchUpdateMsg, PrefetchDoneMsg, and PrefetchErrorMsg.
type DisplayEvent interface {
	isDisplayEvent()
}

func (BatchUpdateMsg) isDisplayEvent()   {}
func (PrefetchDoneMsg) isDisplayEvent()  {}
func (PrefetchErrorMsg) isDisplayEvent() {}

// Verify at compile time that message types implement DisplayEvent.
var (
	_ DisplayEvent = BatchUpdateMsg{}
	_ DisplayEvent = PrefetchDoneMsg{}
	_ DisplayEvent = PrefetchErrorMsg{}
)

// Display renders prefetch progress.
type Display interface {
	Run(ctx context.Context, events <-chan DisplayEvent) error
}

// DisplayOptions configures display creation.
type DisplayOptions struct {
	Writer     io.Writer          // Output destination (default: os.Stdout).
	ForcePlain bool               // Force plain text even if TTY.
	Title      string             // Heading for the TUI.
	Requested  int                // Number of detail fetches expected.
	CancelFunc context.CancelFunc // Called by TUI on abort keypress (ignored by PlainDisplay).
}

// NewDisplay returns a TUI display when the writer is a TTY, or a plain
// text display otherwise. ForcePlain overrides TTY detection.
func NewDisplay(opts DisplayOptions) Display {
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}

	if opts.ForcePlain || !IsTTY(opts.Writer) {
		return &PlainDisplay{w: opts.Writer}
	}

	return &TUIDisplay{
		title:      opts.Title,
		requested:  opts.Requested,
		w:          opts.Writer,
		cancelFunc: opts.CancelFunc,
	}
}

// IsTTY reports whether w is connected to a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Bridge manages the channel between the prefetch producer and a Display consumer.
type Bridge struct {
	ch chan DisplayEvent
}

// NewBridge creates a Bridge with a buffered event channel.
func NewBridge() *Bridge {
	return &Bridge{ch: make(chan DisplayEvent, 16)}
}

// Events returns the read-only channel for Display.Run() to consume.
func (b *Bridge) Events() <-chan DisplayEvent {
	return b.ch
}

// Send delivers a BatchUpdateMsg to the display.
// It blocks if the channel buffer (16) is full.
func (b *Bridge) Send(msg BatchUpdateMsg) {
	b.ch <- msg
}

// Done signals completion and closes the channel.
func (b *Bridge) Done(cached int) {
	b.ch <- PrefetchDoneMsg{Cached: cached}
	close(b.ch)
}

// Error signals failure and closes the channel.
func (b *Bridge) Error(err error) {
	b.ch <- PrefetchErrorMsg{Err: err}
	close(b.ch)
}

// PlainDisplay renders batch updates as timestamped text lines.
type PlainDisplay struct {
	w io.Writer
}

// Run loops over events, printing each batch update as a text line.
// Returns the prefetch error if it failed, or the context error if cancelled.
func (d *PlainDisplay) Run(ctx context.Context, events <-chan DisplayEvent) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch msg := ev.(type) {
			case BatchUpdateMsg:
				d.renderUpdate(msg)
			case PrefetchDoneMsg:
				_, _ = fmt.Fprintf(d.w, "[%s] done, %d details cached\n", timestamp(), msg.Cached)
				return nil
			case PrefetchErrorMsg:
				return msg.Err
			}
		}
	}
}

func (d *PlainDisplay) renderUpdate(u BatchUpdateMsg) {
	status := StatusLoaded
	if u.Err != nil {
		status = StatusDropped
	}
	_, _ = fmt.Fprintf(d.w, "[%s] [%d/%d] batch %s, %d names", timestamp(), u.Index+1, u.Total, status, len(u.Names))
	if u.Duration > 0 {
		_, _ = fmt.Fprintf(d.w, " in %.1fs", u.Duration.Seconds())
	}
	_, _ = fmt.Fprintln(d.w)
	if u.Err != nil {
		_, _ = fmt.Fprintf(d.w, "         error: %v\n", u.Err)
	}
}

func timestamp() string {
	return time.Now().Format("15:04:05")
}

// TUIDisplay renders batch updates using a Bubble Tea terminal UI.
// Falls back to PlainDisplay if the TUI program fails to start.
type TUIDisplay struct {
	title      string
	requested  int
	w          io.Writer
	cancelFunc context.CancelFunc
}

// Run starts the Bubble Tea program and feeds events from the channel.
// If the TUI fails to initialize, it falls back to plain text output.
func (d *TUIDisplay) Run(ctx context.Context, events <-chan DisplayEvent) error {
	var opts []ModelOption
	if d.cancelFunc != nil {
		opts = append(opts, WithCancelFunc(d.cancelFunc))
	}
	if d.title != "" {
		opts = append(opts, WithTitle(d.title))
	}
	model := NewModel(d.requested, opts...)
	p := tea.NewProgram(model, tea.WithOutput(d.w), tea.WithContext(ctx))

	// Forward events through an intermediate channel so we can stop
	// the goroutine cleanly on TUI failure before falling back.
	fwd := make(chan DisplayEvent, 16)
	stop := make(chan struct{})

	go func() {
		defer close(fwd)
		for ev := range events {
			select {
			case fwd <- ev:
			case <-stop:
				return
			}
		}
	}()

	go func() {
		for ev := range fwd {
			p.Send(ev)
		}
	}()

	final, err := p.Run()
	if err != nil {
		close(stop)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		// Fall back to plain text for remaining events from the original channel.
		plain := &PlainDisplay{w: d.w}
		return plain.Run(ctx, events)
	}
	if m, ok := final.(Model); ok && m.err != nil {
		return m.err
	}
	return nil
}
