package query

import (
	"context"
	"sync"
	"time"

	"github.com/polluks/ugrep/internal/config"
	"github.com/polluks/ugrep/internal/engine"
	"github.com/polluks/ugrep/internal/pipe"
)

// Mode is QueryController's top-level state (spec.md §4.5).
type Mode int

const (
	ModeQuery Mode = iota
	ModeList
	ModeEdit
	ModeHelp
)

// debounceTick mirrors the ~100ms UI polling interval spec.md §4.5 and
// §5 describe the debounce and suspension points in terms of.
const debounceTick = 100 * time.Millisecond

// Action is a unit of work applied synchronously through Dispatch,
// the same typed-action shape the teacher's internal/app dispatches
// through its reducer, minus the async actionCh: the terminal surface
// calls Dispatch directly from its own event loop instead.
type Action interface{}

type (
	// KeyAction carries one decoded character: inserted into the
	// pattern line in QUERY, into the row buffer in EDIT, or toggled as
	// a flag key in HELP.
	KeyAction struct{ Rune rune }
	// FlagToggleAction toggles a single flag-table key directly (the
	// meta-prefix path, bypassing HELP).
	FlagToggleAction struct{ Key byte }
	// CursorAction moves the active text cursor by Delta runes: the
	// pattern line in QUERY, the row buffer in EDIT.
	CursorAction struct{ Delta int }
	// NavigateAction moves the Viewport's highlighted row by Delta,
	// panning to keep it within a PageSize-tall window.
	NavigateAction struct {
		Delta    int
		PageSize int
	}
	// PageAction scrolls the Viewport's window by Delta pages of
	// PageSize rows each.
	PageAction struct {
		Delta    int
		PageSize int
	}
	// MarkerAction jumps to the next (Forward) or previous filename
	// marker, degenerating to a PageSize page scroll per spec.md §4.7.
	MarkerAction struct {
		Forward  bool
		PageSize int
	}
	// ToggleSelectAction flips the highlighted row's selection bit
	// (LIST mode's commit action).
	ToggleSelectAction struct{}
	// ModeAction requests an explicit Mode transition.
	ModeAction struct{ Mode Mode }
	// MarkAction records the bookmark at the viewport top.
	MarkAction struct{}
	// JumpAction restores the bookmark, blocking on the ResultFetcher.
	JumpAction struct{}
	// QuitAction requests a clean shutdown.
	QuitAction struct{}
)

// ErrorState holds the controller's currently displayed RegexError, if
// any (spec.md §7 "RegexError").
type ErrorState struct {
	Message string
	Column  int
}

// QueryController owns the edit buffer, the result pipeline, and the
// Mode state machine described in spec.md §4.5. Engine configuration
// is carried as an explicit Config value, never a package global
// (spec.md §9 "Global mutable state").
type QueryController struct {
	mu sync.Mutex

	mode  Mode
	edit  *EditBuffer
	flags *FlagTable
	cfg   config.Config
	eng   engine.Engine

	pipe    *pipe.ResultPipe
	fetcher *ResultFetcher
	vp      *Viewport

	cancelSearch context.CancelFunc
	updated      bool
	lastDebounce time.Time

	err     *ErrorState
	message string

	editRow int         // Viewport row currently owned by rowEdit
	rowEdit *lineEditor // non-nil only while mode == ModeEdit

	statusWidth int // last-reported status-line width, for EditBuffer.SetPan
}

// NewQueryController creates a controller bound to eng, starting in
// QUERY mode with base as the initial Config (the flags HELP can
// toggle are overlaid onto a clone of it for each restart).
func NewQueryController(eng engine.Engine, base config.Config) *QueryController {
	qc := &QueryController{
		mode:  ModeQuery,
		edit:  NewEditBuffer(),
		flags: NewFlagTable(),
		cfg:   base,
		eng:   eng,
	}
	qc.vp = NewViewport(base.FilesWithMatches, base.Degrades())
	return qc
}

// Mode reports the controller's current mode.
func (qc *QueryController) Mode() Mode {
	qc.mu.Lock()
	defer qc.mu.Unlock()
	return qc.mode
}

// SetMode transitions to m. HELP keystrokes either dismiss (return to
// QUERY) or toggle a flag; that dispatch lives in Dispatch below.
func (qc *QueryController) SetMode(m Mode) {
	qc.mu.Lock()
	qc.mode = m
	qc.mu.Unlock()
}

// Viewport exposes the controller's current result view.
func (qc *QueryController) Viewport() *Viewport {
	qc.mu.Lock()
	defer qc.mu.Unlock()
	return qc.vp
}

// Error reports the currently displayed RegexError banner, if any.
func (qc *QueryController) Error() *ErrorState {
	qc.mu.Lock()
	defer qc.mu.Unlock()
	return qc.err
}

// Pattern reports the pattern line's text, its cursor's display
// column, and its horizontal pan offset, the three values the status
// line needs to draw the QUERY prompt (spec.md §4.5 "Rendering
// policy").
func (qc *QueryController) Pattern() (text string, dispCol, pan int) {
	qc.mu.Lock()
	defer qc.mu.Unlock()
	qc.edit.SetPan(qc.statusWidth)
	return qc.edit.Text(), qc.edit.DisplayColumn(), qc.edit.Pan()
}

// SetStatusWidth records the status line's drawable width so Pattern
// can keep the cursor panned into view; termio calls it once per
// render with the current screen width.
func (qc *QueryController) SetStatusWidth(w int) {
	qc.mu.Lock()
	qc.statusWidth = w
	qc.mu.Unlock()
}

// EditRow reports the Viewport row currently owned by an in-progress
// row edit, its raw bytes, and its byte cursor, or ok=false outside
// ModeEdit.
func (qc *QueryController) EditRow() (row int, text []byte, cursor int, ok bool) {
	qc.mu.Lock()
	defer qc.mu.Unlock()
	if qc.rowEdit == nil {
		return 0, nil, 0, false
	}
	return qc.editRow, qc.rowEdit.Bytes(), qc.rowEdit.Pos(), true
}

// TakeMessage returns and clears the controller's transient message
// (e.g. the bell from spec.md §7 "InputTooLong"), so a render consumes
// it only once.
func (qc *QueryController) TakeMessage() string {
	qc.mu.Lock()
	defer qc.mu.Unlock()
	m := qc.message
	qc.message = ""
	return m
}

// Dispatch applies one Action to the controller, mirroring the
// teacher's handleAction/handleAppAction split (internal/app/loop.go).
// It returns true if a render is warranted.
func (qc *QueryController) Dispatch(a Action) bool {
	switch act := a.(type) {
	case KeyAction:
		return qc.handleKey(act.Rune)
	case FlagToggleAction:
		return qc.handleFlagToggle(act.Key)
	case CursorAction:
		return qc.handleCursor(act.Delta)
	case NavigateAction:
		return qc.handleNavigate(act.Delta, act.PageSize)
	case PageAction:
		return qc.handlePage(act.Delta, act.PageSize)
	case MarkerAction:
		return qc.handleMarker(act.Forward, act.PageSize)
	case ToggleSelectAction:
		return qc.handleToggleSelect()
	case ModeAction:
		return qc.handleModeChange(act.Mode)
	case MarkAction:
		qc.Mark()
		return true
	case JumpAction:
		return qc.Jump()
	case QuitAction:
		qc.Shutdown()
		return false
	}
	return false
}

func (qc *QueryController) handleKey(r rune) bool {
	qc.mu.Lock()
	mode := qc.mode
	qc.mu.Unlock()

	switch mode {
	case ModeHelp:
		if r == 0x1b { // Escape dismisses
			qc.SetMode(ModeQuery)
			return true
		}
		if r < 128 {
			return qc.handleFlagToggle(byte(r))
		}
		return false

	case ModeEdit:
		qc.mu.Lock()
		defer qc.mu.Unlock()
		if qc.rowEdit == nil {
			qc.mode = ModeQuery
			return true
		}
		switch r {
		case 0x1b: // Escape discards the in-progress row edit
			qc.rowEdit = nil
			qc.mode = ModeQuery
		case '\r', '\n':
			qc.commitEditLocked()
		case 0x7f, '\b':
			qc.rowEdit.Backspace()
		default:
			qc.rowEdit.Insert(r)
		}
		return true

	case ModeList:
		// LIST shares QUERY/EDIT's navigation actions but takes no
		// character input of its own; Escape returns to QUERY and
		// selection commits via ToggleSelectAction.
		if r == 0x1b {
			qc.SetMode(ModeQuery)
			return true
		}
		return false

	default: // ModeQuery
		switch r {
		case 0x7f, '\b':
			if qc.edit.Backspace() {
				qc.markUpdated()
			} else {
				qc.bell()
			}
		default:
			if qc.edit.Insert(r) {
				qc.markUpdated()
			} else {
				qc.bell()
			}
		}
		return true
	}
}

// handleCursor moves the text cursor belonging to whichever buffer
// the current Mode owns (spec.md §4.5 "Cursor and column policy").
func (qc *QueryController) handleCursor(delta int) bool {
	qc.mu.Lock()
	defer qc.mu.Unlock()
	switch qc.mode {
	case ModeEdit:
		if qc.rowEdit == nil {
			return false
		}
		if delta < 0 {
			qc.rowEdit.MoveLeft()
		} else if delta > 0 {
			qc.rowEdit.MoveRight()
		}
		return true
	case ModeQuery:
		if delta < 0 {
			qc.edit.MoveLeft()
		} else if delta > 0 {
			qc.edit.MoveRight()
		}
		return true
	default:
		return false
	}
}

// handleNavigate moves the Viewport's highlighted row, available in
// every mode but HELP so results can be browsed while composing a
// pattern.
func (qc *QueryController) handleNavigate(delta, pageSize int) bool {
	qc.mu.Lock()
	defer qc.mu.Unlock()
	if qc.mode == ModeHelp {
		return false
	}
	qc.vp.MoveSelection(delta, pageSize)
	return true
}

// handlePage scrolls the Viewport's window by whole pages.
func (qc *QueryController) handlePage(delta, pageSize int) bool {
	qc.mu.Lock()
	defer qc.mu.Unlock()
	if qc.mode == ModeHelp {
		return false
	}
	qc.vp.SetRow(qc.vp.Row() + delta*pageSize)
	return true
}

// handleMarker jumps to the next/previous filename marker line
// (spec.md §4.7 "next()"/"back()").
func (qc *QueryController) handleMarker(forward bool, pageSize int) bool {
	qc.mu.Lock()
	vp := qc.vp
	mode := qc.mode
	qc.mu.Unlock()
	if mode == ModeHelp {
		return false
	}
	if forward {
		vp.Next(pageSize)
	} else {
		vp.Back(pageSize)
	}
	return true
}

// handleToggleSelect flips the highlighted row's selection bit.
func (qc *QueryController) handleToggleSelect() bool {
	qc.mu.Lock()
	vp := qc.vp
	row := vp.SelectedRow()
	qc.mu.Unlock()
	if row < 0 || row >= vp.Len() {
		return false
	}
	vp.ToggleSelect(row)
	return true
}

// handleModeChange applies an explicit Mode transition. Entering EDIT
// seeds the row editor from the highlighted line; leaving EDIT any
// other way than Escape or Enter (e.g. switching straight to LIST)
// still commits the in-progress row.
func (qc *QueryController) handleModeChange(m Mode) bool {
	if m == ModeEdit {
		return qc.enterEditMode()
	}
	qc.mu.Lock()
	defer qc.mu.Unlock()
	if qc.mode == ModeEdit && qc.rowEdit != nil {
		qc.commitEditLocked()
	}
	qc.mode = m
	return true
}

// enterEditMode switches to EDIT, loading the currently highlighted
// Viewport row into a byte-level line editor (spec.md §4.5 "EDIT").
func (qc *QueryController) enterEditMode() bool {
	qc.mu.Lock()
	defer qc.mu.Unlock()
	row := qc.vp.SelectedRow()
	if row < 0 {
		row = qc.vp.Row()
	}
	if row < 0 || row >= qc.vp.Len() {
		return false
	}
	qc.editRow = row
	qc.rowEdit = newLineEditor(qc.vp.Line(row))
	qc.mode = ModeEdit
	return true
}

// commitEditLocked writes the row editor's bytes back to the Viewport
// and returns to QUERY mode. Callers must hold qc.mu.
func (qc *QueryController) commitEditLocked() {
	if qc.rowEdit != nil {
		qc.vp.SetLine(qc.editRow, qc.rowEdit.Bytes())
	}
	qc.rowEdit = nil
	qc.mode = ModeQuery
}

func (qc *QueryController) handleFlagToggle(key byte) bool {
	qc.mu.Lock()
	changed := qc.flags.Toggle(key, &qc.cfg)
	qc.mu.Unlock()
	if changed {
		qc.markUpdated()
	}
	return changed
}

func (qc *QueryController) bell() {
	// spec.md §7 "InputTooLong": emit terminal bell. Rendering owns the
	// actual bell write; the controller just records the intent via a
	// transient message so termio can surface it.
	qc.mu.Lock()
	qc.message = "\a"
	qc.mu.Unlock()
}

func (qc *QueryController) markUpdated() {
	qc.mu.Lock()
	qc.updated = true
	qc.err = nil
	qc.mu.Unlock()
}

// Tick drives the ~100ms debounce and restart logic from spec.md §4.5
// "each modification ... triggers a restart of the search pipeline".
// Call it from the UI's timer tick.
func (qc *QueryController) Tick(ctx context.Context) {
	qc.mu.Lock()
	due := qc.updated && time.Since(qc.lastDebounce) >= debounceTick
	qc.mu.Unlock()
	if !due {
		return
	}
	qc.restart(ctx)
}

// restart cancels the running Worker, closes the old pipe, opens a
// fresh non-blocking pipe, discards the Viewport, and spawns a new
// search with the current pattern and flags (spec.md §4.5 "QUERY").
func (qc *QueryController) restart(ctx context.Context) {
	qc.mu.Lock()
	if qc.cancelSearch != nil {
		qc.cancelSearch()
	}
	if qc.pipe != nil {
		qc.pipe.Close()
	}

	p, err := pipe.New()
	if err != nil {
		qc.err = &ErrorState{Message: "pipe: " + err.Error()}
		qc.updated = false
		qc.mu.Unlock()
		return
	}

	qc.pipe = p
	qc.vp = NewViewport(qc.cfg.FilesWithMatches, qc.cfg.Degrades())
	qc.fetcher = NewResultFetcher(p, qc.vp)
	qc.updated = false
	qc.lastDebounce = time.Now()

	cfg := qc.cfg
	cfg.Pattern = qc.edit.Text()
	eng := qc.eng
	writeEnd := p.WriteEnd()
	qc.mu.Unlock()

	searchCtx, cancel := context.WithCancel(ctx)
	qc.mu.Lock()
	qc.cancelSearch = cancel
	qc.mu.Unlock()

	go func() {
		defer writeEnd.Close()
		if err := eng.RunSearch(searchCtx, cfg, writeEnd); err != nil {
			if re, ok := err.(*engine.RegexError); ok {
				qc.mu.Lock()
				qc.err = &ErrorState{Message: re.Message, Column: qc.mapErrorColumn(re.Offset)}
				qc.mu.Unlock()
			}
		}
	}()
}

// mapErrorColumn undoes any implicit pattern prefix the controller
// added (e.g. a leading "(?m)") before mapping the engine's byte
// offset onto the edit buffer's display column (spec.md §4.5
// "Rendering policy"; SPEC_FULL.md §4.9 query.cpp regex-offset
// mapping).
func (qc *QueryController) mapErrorColumn(offset int) int {
	const implicitPrefixLen = 0 // this controller adds no implicit prefix yet
	col := offset - implicitPrefixLen
	if col < 0 {
		col = 0
	}
	return col
}

// Fetcher exposes the active ResultFetcher, or nil before the first
// restart.
func (qc *QueryController) Fetcher() *ResultFetcher {
	qc.mu.Lock()
	defer qc.mu.Unlock()
	return qc.fetcher
}

// Mark records the bookmark at the current viewport top.
func (qc *QueryController) Mark() {
	qc.mu.Lock()
	defer qc.mu.Unlock()
	qc.vp.Mark(qc.vp.Row())
}

// Jump restores the bookmark, blocking on the ResultFetcher until that
// row is visible (spec.md §4.5 "Bookmark"; SPEC_FULL.md §4.9).
func (qc *QueryController) Jump() bool {
	qc.mu.Lock()
	row := qc.vp.Bookmark()
	fetcher := qc.fetcher
	vp := qc.vp
	qc.mu.Unlock()

	if fetcher == nil {
		return false
	}
	ok := fetcher.WaitFor(row, func() bool {
		time.Sleep(debounceTick)
		return true
	})
	if ok {
		vp.SetRow(row)
	}
	return ok
}

// Shutdown cancels any in-flight search and releases the pipe.
func (qc *QueryController) Shutdown() {
	qc.mu.Lock()
	defer qc.mu.Unlock()
	if qc.cancelSearch != nil {
		qc.cancelSearch()
	}
	if qc.pipe != nil {
		qc.pipe.Close()
	}
}
