package termio

import (
	"context"
	"os"

	"github.com/gdamore/tcell/v2"

	"github.com/polluks/ugrep/internal/query"
)

// handleKeyEvent decodes one tcell key event into QueryController
// Actions. The Ctrl-letter bindings below follow
// original_source/src/query.cpp's key-dispatch switch (CTRL_R/F4
// jump-to-mark, CTRL_S/CTRL_W marker forward/back, CTRL_X/F3 set-mark,
// CTRL_Y/F2 edit-under-cursor, F1 help, arrows/PGUP/PGDN/Enter). Two
// bindings are this package's own addition, not the original's: Enter
// in QUERY enters ModeList (the original reaches row-selection through
// a select_ index rather than a distinct mode), and CTRL_E switches a
// highlighted LIST row into ModeEdit (the original's Mode::EDIT is
// assigned only at construction and never reached at runtime from the
// key loop, so this package gives it a real entry point instead of
// leaving it dead).
func (s *Screen) handleKeyEvent(ctx context.Context, ev *tcell.EventKey) (quit bool) {
	mode := s.qc.Mode()
	rows := s.pageSize()

	switch ev.Key() {
	case tcell.KeyCtrlC, tcell.KeyCtrlQ:
		s.qc.Dispatch(query.QuitAction{})
		return true

	case tcell.KeyEscape:
		if mode == query.ModeQuery {
			s.qc.Dispatch(query.QuitAction{})
			return true
		}
		s.qc.Dispatch(query.KeyAction{Rune: 0x1b})
		return false

	case tcell.KeyEnter:
		switch mode {
		case query.ModeQuery:
			s.qc.Dispatch(query.ModeAction{Mode: query.ModeList})
		case query.ModeList:
			s.qc.Dispatch(query.ToggleSelectAction{})
			s.qc.Dispatch(query.NavigateAction{Delta: 1, PageSize: rows})
		case query.ModeEdit:
			s.qc.Dispatch(query.KeyAction{Rune: '\r'})
			s.afterEditCommit()
		}
		return false

	case tcell.KeyBackspace, tcell.KeyBackspace2:
		s.qc.Dispatch(query.KeyAction{Rune: 0x7f})
		return false

	case tcell.KeyTab:
		s.qc.Dispatch(query.KeyAction{Rune: '\t'})
		return false

	case tcell.KeyLeft:
		s.qc.Dispatch(query.CursorAction{Delta: -1})
		return false

	case tcell.KeyRight:
		s.qc.Dispatch(query.CursorAction{Delta: 1})
		return false

	case tcell.KeyUp:
		s.qc.Dispatch(query.NavigateAction{Delta: -1, PageSize: rows})
		return false

	case tcell.KeyDown:
		s.qc.Dispatch(query.NavigateAction{Delta: 1, PageSize: rows})
		return false

	case tcell.KeyPgUp:
		s.qc.Dispatch(query.PageAction{Delta: -1, PageSize: rows})
		return false

	case tcell.KeyPgDn:
		s.qc.Dispatch(query.PageAction{Delta: 1, PageSize: rows})
		return false

	case tcell.KeyF1:
		if mode == query.ModeHelp {
			s.qc.Dispatch(query.ModeAction{Mode: query.ModeQuery})
		} else {
			s.qc.Dispatch(query.ModeAction{Mode: query.ModeHelp})
		}
		return false

	case tcell.KeyF2, tcell.KeyCtrlY:
		s.editUnderCursor()
		return false

	case tcell.KeyF3, tcell.KeyCtrlX:
		s.qc.Dispatch(query.MarkAction{})
		return false

	case tcell.KeyF4, tcell.KeyCtrlR:
		s.qc.Dispatch(query.JumpAction{})
		return false

	case tcell.KeyCtrlS:
		s.qc.Dispatch(query.MarkerAction{Forward: true, PageSize: rows})
		return false

	case tcell.KeyCtrlW:
		s.qc.Dispatch(query.MarkerAction{Forward: false, PageSize: rows})
		return false

	case tcell.KeyCtrlL:
		s.scr.Sync()
		return false

	case tcell.KeyCtrlE:
		if mode == query.ModeList {
			s.qc.Dispatch(query.ModeAction{Mode: query.ModeEdit})
		}
		return false

	case tcell.KeyRune:
		s.qc.Dispatch(query.KeyAction{Rune: ev.Rune()})
		return false
	}
	return false
}

// editUnderCursor resolves the filename marker governing the
// highlighted row and hands it to the configured external editor, the
// CTRL_Y/F2 binding in original_source/src/query.cpp's edit().
func (s *Screen) editUnderCursor() {
	name, ok := s.qc.Viewport().CurrentFilename()
	if !ok {
		return
	}
	if _, err := os.Stat(name); err != nil {
		return
	}
	_ = s.openFileInEditor(name)
}

// afterEditCommit opens a FilePager on the row's governing file once
// an EDIT-mode row commits, the SPEC_FULL.md §4.8 supplemental review
// step layered on top of the original's in-buffer row edit.
func (s *Screen) afterEditCommit() {
	name, ok := s.qc.Viewport().CurrentFilename()
	if !ok {
		return
	}
	if info, err := os.Stat(name); err != nil || info.IsDir() {
		return
	}
	_ = s.openFileInPager(name)
}
