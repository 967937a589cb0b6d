package main

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"github.com/thrash-sh/thrash/internal/shell"
)

// scannerReader adapts a bufio.Scanner to shell.LineReader for the
// non-interactive case (stdin is a pipe or file, not a terminal): prompts
// are meaningless there, so SetPrompt is a no-op.
type scannerReader struct {
	scanner *bufio.Scanner
}

func (s *scannerReader) Readline() (string, error) {
	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return s.scanner.Text(), nil
}

func (s *scannerReader) SetPrompt(string) {}

func (s *scannerReader) Close() error { return nil }

func newReader() shell.LineReader {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return &scannerReader{scanner: bufio.NewScanner(os.Stdin)}
	}

	histPath := filepath.Join(os.Getenv("HOME"), ".thrash_history")
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "$ ",
		HistoryFile:     histPath,
		HistoryLimit:    1000,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		shell.Logger.WithError(err).Warn("readline init failed, falling back to plain scanner")
		return &scannerReader{scanner: bufio.NewScanner(os.Stdin)}
	}
	return rl
}

// claimTerminal puts the shell in its own process group and, if stdin is
// the controlling terminal, hands that terminal's foreground ownership to
// the new group. Errors here are non-fatal: a shell run with stdin
// already redirected has no terminal to claim.
func claimTerminal() int {
	ttyFd := int(os.Stdin.Fd())

	if err := unix.Setpgid(0, 0); err != nil {
		shell.Logger.WithError(err).Debug("setpgid at startup failed")
	}
	shellPGID, err := unix.Getpgid(os.Getpid())
	if err != nil {
		shellPGID = os.Getpid()
	}
	if err := unix.Tcsetpgrp(ttyFd, shellPGID); err != nil {
		shell.Logger.WithError(err).Debug("tcsetpgrp at startup failed")
	}
	return shellPGID
}

func seedEnvironment(vars *shell.VarTable) {
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		_ = vars.Set(name, value, shell.FlagExported)
	}
}

func main() {
	shellPGID := claimTerminal()
	shell.IgnoreJobControlSignals()

	histPath := filepath.Join(os.Getenv("HOME"), ".thrash_history")
	st := shell.NewState(int(os.Stdin.Fd()), shellPGID, shell.HistoryFile{Path: histPath, Limit: 1000})
	seedEnvironment(st.Vars)

	reader := newReader()
	sh := shell.NewShell(st, reader)

	exitCode := sh.Run()
	syscall.Exit(exitCode)
}
