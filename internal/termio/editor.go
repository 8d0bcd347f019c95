package termio

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"unicode"
)

// detectEditorCommand reads GREP_EDIT then EDITOR, the priority order
// spec.md §6 "Environment (interactive mode only)" specifies, and
// resolves the executable the way the teacher's detectEditorCommand
// resolves VISUAL/EDITOR (internal/app/application.go) — minus the
// teacher's OS-default fallback list. Absence of both variables
// disables the edit-under-cursor key outright, per spec.md, rather
// than silently picking an editor nobody asked for.
func detectEditorCommand() ([]string, bool) {
	return detectEditorCommandInternal(os.Getenv, exec.LookPath)
}

func detectEditorCommandInternal(getenv func(string) string, lookPath func(string) (string, error)) ([]string, bool) {
	for _, name := range []string{"GREP_EDIT", "EDITOR"} {
		args := parseShellWords(getenv(name))
		if len(args) == 0 {
			continue
		}
		if resolved, err := lookPath(args[0]); err == nil && resolved != "" {
			args[0] = resolved
			return args, true
		}
	}
	return nil, false
}

// parseShellWords splits a command string on whitespace, honoring
// single and double quotes — the same minimal shell-word splitting the
// teacher's parseEditorCommand does.
func parseShellWords(cmd string) []string {
	cmd = strings.TrimSpace(cmd)
	if cmd == "" {
		return nil
	}
	var args []string
	var cur strings.Builder
	inSingle, inDouble := false, false
	for _, r := range cmd {
		switch r {
		case '\'':
			if inDouble {
				cur.WriteRune(r)
			} else {
				inSingle = !inSingle
			}
		case '"':
			if inSingle {
				cur.WriteRune(r)
			} else {
				inDouble = !inDouble
			}
		default:
			if !inSingle && !inDouble && unicode.IsSpace(r) {
				if cur.Len() > 0 {
					args = append(args, cur.String())
					cur.Reset()
				}
				continue
			}
			cur.WriteRune(r)
		}
	}
	if cur.Len() > 0 {
		args = append(args, cur.String())
	}
	return args
}

func editorArgsWithFile(editorCmd []string, filePath string) []string {
	args := make([]string, len(editorCmd)+1)
	copy(args, editorCmd)
	args[len(editorCmd)] = filePath
	return args
}

// openFileInEditor suspends the tcell screen, execs the configured
// editor against filePath on the controlling tty, and resumes — the
// external-process handoff the teacher's openFileInEditor performs
// around app.screen.Suspend()/Resume() (internal/app/actions.go,
// internal/app/suspend_unix.go). This is the "edit-under-cursor" key.
func (s *Screen) openFileInEditor(filePath string) error {
	if len(s.editorCmd) == 0 {
		return fmt.Errorf("no editor configured")
	}
	return s.suspendAndExec(editorArgsWithFile(s.editorCmd, filePath))
}

// openFileInPager suspends the tcell screen and hands the terminal to
// a FilePager for full-file review (SPEC_FULL.md §4.8's non-tcell
// fallback pager), the action an EDIT-mode row commit resolves to once
// its line names a real file.
func (s *Screen) openFileInPager(filePath string) error {
	if err := s.scr.Suspend(); err != nil {
		return fmt.Errorf("failed to suspend screen: %w", err)
	}
	defer func() {
		_ = s.scr.Resume()
		s.scr.Sync()
	}()

	pager, err := NewFilePager(filePath)
	if err != nil {
		return err
	}
	return pager.Run()
}

func (s *Screen) suspendAndExec(args []string) error {
	tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return s.suspendAndExecFallback(args)
	}
	defer func() { _ = tty.Close() }()

	if err := s.scr.Suspend(); err != nil {
		return fmt.Errorf("failed to suspend screen: %w", err)
	}

	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = tty, tty, tty
	runErr := cmd.Run()

	if err := s.scr.Resume(); err != nil {
		return fmt.Errorf("failed to resume screen: %w", err)
	}
	s.scr.Sync()
	return runErr
}

func (s *Screen) suspendAndExecFallback(args []string) error {
	if err := s.scr.Suspend(); err != nil {
		return fmt.Errorf("failed to suspend screen: %w", err)
	}
	defer func() {
		_ = s.scr.Resume()
		s.scr.Sync()
	}()
	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	return cmd.Run()
}
