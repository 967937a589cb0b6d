package shell

import "os"

// HistoryFile describes the persistent command history the external line
// editor owns. The core never opens this file itself; it only threads the
// path/limit through to readline's configuration at construction time.
type HistoryFile struct {
	Path  string
	Limit int
}

// State is the shell's process-wide singleton, created once at startup and
// mutated by the Driver Loop, the Pipeline Executor, and the builtins.
type State struct {
	Running        bool
	LastStatus     int
	Cwd            string
	TTYFd          int
	ShellPGID      int
	ForegroundPGID int
	RunningPGID    int
	Vars           *VarTable
	History        HistoryFile
	// StoppedJobs maps a stopped pipeline's process-group id to the text it
	// was started from, for a future fg/bg builtin.
	StoppedJobs map[int]string
}

// NewState builds the initial shell state. ttyFd is the controlling
// terminal descriptor (conventionally os.Stdin's fd, or a dedicated
// /dev/tty open when stdin has been redirected).
func NewState(ttyFd, shellPGID int, history HistoryFile) *State {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	return &State{
		Running:     true,
		LastStatus:  0,
		Cwd:         cwd,
		TTYFd:       ttyFd,
		ShellPGID:   shellPGID,
		Vars:        NewVarTable(),
		History:     history,
		StoppedJobs: make(map[int]string),
	}
}
