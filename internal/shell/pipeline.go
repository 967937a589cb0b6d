package shell

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"

	"golang.org/x/sys/unix"
)

// Execute runs one parsed Pipeline against st and returns the status to
// record as $? and whether the Driver Loop should keep running.
func (pipe Pipeline) Execute(st *State) (status int, keepRunning bool) {
	cmds := filterEmpty(pipe.Commands)
	if len(cmds) == 0 {
		return st.LastStatus, true
	}

	if len(cmds) == 1 && len(cmds[0].Argv) > 0 {
		switch cmds[0].Argv[0] {
		case "exit":
			st.Running = false
			return 0, false
		case "cd":
			return builtinCD(cmds[0].Argv[1:], st), true
		}
	}

	return runForked(st, cmds)
}

func filterEmpty(cmds []Command) []Command {
	out := make([]Command, 0, len(cmds))
	for _, c := range cmds {
		if !c.Empty() {
			out = append(out, c)
		}
	}
	return out
}

func pathEnvOf(st *State) string {
	v, _ := st.Vars.Get("PATH")
	return v.Value
}

func resolutionDiagnostic(name string, kind OutcomeKind) string {
	switch kind {
	case OutcomeNotFound:
		return "command not found: " + name
	case OutcomeDirectory:
		return name + ": is a directory"
	case OutcomeNonExecutable:
		return "permission denied: " + name
	default:
		return name + ": cannot execute"
	}
}

// benignGroupErr reports whether err from a race-proofing setpgid call is
// one of the outcomes §4.6 step 4 says to tolerate and stop retrying on:
// the child may already have placed itself in the group, or already exec'd.
func benignGroupErr(err error) bool {
	return errors.Is(err, unix.EACCES) || errors.Is(err, unix.EINVAL) ||
		errors.Is(err, unix.EPERM) || errors.Is(err, unix.ESRCH)
}

func reclaimTerminal(st *State) {
	if err := unix.Tcsetpgrp(st.TTYFd, st.ShellPGID); err != nil {
		Logger.WithError(err).Debug("tcsetpgrp reclaim failed")
	}
}

func pipelineText(cmds []Command) string {
	parts := make([]string, 0, len(cmds))
	for _, c := range cmds {
		parts = append(parts, strings.Join(c.Argv, " "))
	}
	return strings.Join(parts, " | ")
}

// stageResult tracks one pipeline stage's fork outcome.
type stageResult struct {
	pid  int
	skip bool
}

// runForked implements §4.6's single-command and multi-stage paths
// uniformly: N-1 pipes are allocated (zero for a lone stage), each
// non-builtin command is forked into a shared process group via
// os/exec.Cmd with SysProcAttr{Setpgid: true}, the controlling terminal is
// handed to that group, and the group is waited on with stop
// notification enabled.
func runForked(st *State, cmds []Command) (int, bool) {
	n := len(cmds)
	readEnds := make([]*os.File, n-1)
	writeEnds := make([]*os.File, n-1)
	for i := 0; i < n-1; i++ {
		r, w, err := os.Pipe()
		if err != nil {
			fmt.Fprintf(os.Stderr, "thrash: pipe: %s\n", err)
			for j := 0; j < i; j++ {
				_ = readEnds[j].Close()
				_ = writeEnds[j].Close()
			}
			return 1, true
		}
		readEnds[i] = r
		writeEnds[i] = w
	}

	stages := make([]stageResult, n)
	var leaderPGID int

	for i, c := range cmds {
		if len(c.Argv) == 0 {
			sio, err := planStageIO(c.Redirs, os.Stdin, os.Stdout, os.Stderr)
			if err != nil {
				fmt.Fprintf(os.Stderr, "thrash: %s\n", err)
				st.LastStatus = 1
			} else {
				sio.Close()
			}
			stages[i] = stageResult{skip: true}
			continue
		}

		name := c.Argv[0]

		if name == "exit" {
			fmt.Fprintln(os.Stderr, "thrash: exit: not valid in a pipeline")
			st.LastStatus = 1
			stages[i] = stageResult{skip: true}
			continue
		}
		if name == "cd" {
			reclaimTerminal(st)
			st.LastStatus = builtinCD(c.Argv[1:], st)
			stages[i] = stageResult{skip: true}
			continue
		}

		var stdin, stdout *os.File = os.Stdin, os.Stdout
		if i > 0 {
			stdin = readEnds[i-1]
		}
		if i < n-1 {
			stdout = writeEnds[i]
		}

		sio, err := planStageIO(c.Redirs, stdin, stdout, os.Stderr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "thrash: %s\n", err)
			st.LastStatus = 1
			stages[i] = stageResult{skip: true}
			continue
		}

		outcome := ResolvePath(name, pathEnvOf(st))
		if outcome.Kind != OutcomeExecutable {
			fmt.Fprintf(os.Stderr, "thrash: %s\n", resolutionDiagnostic(name, outcome.Kind))
			st.LastStatus = execCodeForOutcome(outcome.Kind)
			sio.Close()
			stages[i] = stageResult{skip: true}
			continue
		}

		cmd := exec.Command(outcome.Path, c.Argv[1:]...)
		cmd.Args[0] = name
		cmd.Env = st.Vars.BuildEnv()
		if err := sio.apply(cmd); err != nil {
			fmt.Fprintf(os.Stderr, "thrash: %s\n", err)
			sio.Close()
			stages[i] = stageResult{skip: true}
			continue
		}

		pgid := 0
		if leaderPGID != 0 {
			pgid = leaderPGID
		}
		cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true, Pgid: pgid}

		startErr := withDefaultDispositions(func() error { return cmd.Start() })
		sio.Close()
		if startErr != nil {
			fmt.Fprintf(os.Stderr, "thrash: %s: %s\n", name, startErr)
			st.LastStatus = 1
			stages[i] = stageResult{skip: true}
			continue
		}

		stages[i] = stageResult{pid: cmd.Process.Pid}

		if leaderPGID == 0 {
			leaderPGID = cmd.Process.Pid
			st.RunningPGID = leaderPGID
			if err := unix.Tcsetpgrp(st.TTYFd, leaderPGID); err != nil {
				Logger.WithError(err).Debug("tcsetpgrp to new pipeline group failed")
			}
		} else if err := unix.Setpgid(cmd.Process.Pid, leaderPGID); err != nil && !benignGroupErr(err) {
			Logger.WithError(err).Warn("setpgid race-proofing failed")
		}
	}

	for i := 0; i < n-1; i++ {
		_ = readEnds[i].Close()
		_ = writeEnds[i].Close()
	}

	if leaderPGID == 0 {
		return st.LastStatus, true
	}

	// Only the literal last (rightmost) stage's own exit ever sets the
	// pipeline's reported status, per §4.6 step 6. If that stage never
	// forked (resolution or fork failure), the code st.LastStatus already
	// holds from that failure stands, regardless of what order any other
	// stage happens to exit in.
	lastStageForked := !stages[n-1].skip
	lastPID := stages[n-1].pid

	alive := make(map[int]bool, n)
	for _, s := range stages {
		if !s.skip {
			alive[s.pid] = true
		}
	}

	status := st.LastStatus
	for len(alive) > 0 {
		var ws unix.WaitStatus
		pid, err := unix.Wait4(-leaderPGID, &ws, unix.WUNTRACED, nil)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			Logger.WithError(err).Debug("wait4 on pipeline group failed")
			break
		}

		switch {
		case ws.Stopped():
			reclaimTerminal(st)
			st.RunningPGID = 0
			st.StoppedJobs[leaderPGID] = pipelineText(cmds)
			return 128 + int(ws.StopSignal()), true
		case ws.Signaled():
			delete(alive, pid)
			if lastStageForked && pid == lastPID {
				status = 128 + int(ws.Signal())
			}
		case ws.Exited():
			delete(alive, pid)
			if lastStageForked && pid == lastPID {
				status = ws.ExitStatus()
			}
		}
	}

	reclaimTerminal(st)
	st.RunningPGID = 0
	return status, true
}
