// Package termio is the tcell-backed terminal surface for the
// interactive query core: one event-poll goroutine feeding a buffered
// channel, a debounce ticker driving QueryController.Tick, and a
// render pass over QueryController's Mode/Viewport/EditBuffer state —
// the same event-loop shape as the teacher's internal/app.Application
// (internal/app/loop.go), adapted to a single Mode-driven controller
// instead of a reducer over AppState.
package termio

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/polluks/ugrep/internal/config"
	"github.com/polluks/ugrep/internal/query"
)

// Screen owns the tcell.Screen, the color theme, and the wiring into
// a QueryController. It is the terminal-surface abstraction spec.md
// §6 describes ("put text at (row, col)... getsize, clear").
type Screen struct {
	scr   tcell.Screen
	qc    *query.QueryController
	theme ColorTheme
	mono  bool

	runeWidthCache   [128]int
	runeWidthCacheMu sync.RWMutex
	runeWidthWide    sync.Map

	editorCmd []string
}

// NewScreen initializes a tcell.Screen and binds it to qc. mono mirrors
// cfg.Color == config.ColorOff: it selects the degenerate theme and
// disables SGR interpretation on result lines.
func NewScreen(qc *query.QueryController, cfg config.Config) (*Screen, error) {
	scr, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := scr.Init(); err != nil {
		return nil, err
	}

	mono := cfg.Color == config.ColorOff
	theme := DefaultColorTheme()
	if mono {
		theme = MonoColorTheme()
	}

	editorCmd, _ := detectEditorCommand()

	return &Screen{
		scr:       scr,
		qc:        qc,
		theme:     theme,
		mono:      mono,
		editorCmd: editorCmd,
	}, nil
}

// Fini releases the terminal.
func (s *Screen) Fini() { s.scr.Fini() }

// Run drives the event loop until ctx is cancelled or the user quits:
// poll tcell events into a channel, drive QueryController.Tick on a
// debounce timer, and redraw whenever a dispatched action or tick
// reports a change (spec.md §5 "QueryController: key input wait with
// a short timeout").
func (s *Screen) Run(ctx context.Context) error {
	defer s.scr.Fini()
	ignorePipeSignal()

	s.render()

	eventChan := make(chan tcell.Event, 8)
	go func() {
		for {
			ev := s.scr.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	var sigCh chan os.Signal
	if sigs := terminationSignals(); len(sigs) > 0 {
		sigCh = make(chan os.Signal, 1)
		signal.Notify(sigCh, sigs...)
		defer signal.Stop(sigCh)
	}

	ticker := time.NewTicker(25 * time.Millisecond)
	defer ticker.Stop()

	quit := false
	for !quit {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev := <-eventChan:
			if s.handleEvent(ctx, ev) {
				quit = true
				break
			}
			s.render()

		case <-ticker.C:
			s.qc.Tick(ctx)
			if f := s.qc.Fetcher(); f != nil {
				f.Fetch()
			}
			s.render()

		case sig := <-sigCh:
			s.qc.Shutdown()
			s.scr.Fini()
			reraiseDefault(sig)
			return nil
		}
	}

	s.qc.Shutdown()
	return nil
}

func (s *Screen) handleEvent(ctx context.Context, ev tcell.Event) (quit bool) {
	switch e := ev.(type) {
	case *tcell.EventResize:
		s.scr.Sync()
		return false
	case *tcell.EventKey:
		return s.handleKeyEvent(ctx, e)
	default:
		return false
	}
}

func (s *Screen) render() {
	w, h := s.scr.Size()
	s.scr.Clear()

	if s.qc.Mode() == query.ModeHelp {
		s.drawHelp(w, h)
		s.scr.Show()
		return
	}

	s.drawStatusLine(w)
	s.drawResults(w, h)
	s.scr.Show()
}

// pageSize reports how many rows the results area draws, used to pan
// NavigateAction/PageAction/MarkerAction consistently with the
// window render actually draws (spec.md §4.7).
func (s *Screen) pageSize() int {
	_, h := s.scr.Size()
	rows := h - 1 // one row reserved for the status/prompt line
	if rows < 1 {
		rows = 1
	}
	return rows
}
