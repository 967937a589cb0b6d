package shell

import (
	"fmt"
	"os"
	"strings"
)

// LineReader is the narrow interface the Driver Loop consumes from the
// external line editor. *readline.Instance satisfies it directly; a
// bufio.Scanner-backed fallback satisfies it for non-terminal stdin.
type LineReader interface {
	Readline() (string, error)
	SetPrompt(string)
	Close() error
}

// Shell wires the Driver Loop to a State and a LineReader.
type Shell struct {
	State     *State
	Reader    LineReader
	assembler *Assembler
}

// NewShell builds a Shell ready to Run.
func NewShell(st *State, reader LineReader) *Shell {
	return &Shell{
		State:     st,
		Reader:    reader,
		assembler: NewAssembler(reader, "$ ", "> "),
	}
}

// Run is the Driver Loop of §4.9: assemble a logical line, expand it,
// split into segments, dispatch each segment, and record the resulting
// status. Returns the final last-exit-status for the process's exit code.
func (s *Shell) Run() int {
	for s.State.Running {
		line, err := s.assembler.Next()
		if err != nil {
			break
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.TrimSpace(line) == "$?" {
			fmt.Println(s.State.LastStatus)
			continue
		}

		expanded := Expand(line, s.State.LastStatus, s.State.Vars)

		for _, segment := range SplitSegments(expanded) {
			s.runSegment(segment)
			if !s.State.Running {
				break
			}
		}
	}

	_ = s.Reader.Close()
	return s.State.LastStatus
}

// runSegment parses one segment and routes it to a builtin or the
// Pipeline Executor, recording the resulting status on s.State.
func (s *Shell) runSegment(segment string) {
	pipeline, err := ParseSegment(segment)
	if err != nil {
		fmt.Fprintf(os.Stderr, "thrash: %s\n", err)
		s.State.LastStatus = 1
		return
	}

	cmds := filterEmpty(pipeline.Commands)
	if len(cmds) == 0 {
		return
	}

	first := cmds[0]
	if len(first.Argv) > 0 {
		if name, value, ok := parseAssignment(first.Argv[0]); ok {
			if err := s.State.Vars.Set(name, value, 0); err != nil {
				fmt.Fprintf(os.Stderr, "thrash: %s\n", err)
				s.State.LastStatus = 1
				return
			}
			if len(cmds) > 1 {
				fmt.Fprintln(os.Stderr, "thrash: assignment cannot be followed by a pipeline")
				s.State.LastStatus = 1
				return
			}
			s.State.LastStatus = 0
			return
		}

		switch first.Argv[0] {
		case "unset":
			if len(cmds) > 1 {
				fmt.Fprintln(os.Stderr, "thrash: unset: not valid in a pipeline")
				s.State.LastStatus = 1
				return
			}
			s.State.LastStatus = builtinUnset(first.Argv[1:], s.State)
			return
		case "export":
			if len(cmds) == 1 {
				s.State.LastStatus = builtinExport(first.Argv[1:], s.State)
				return
			}
		case "readonly":
			if len(cmds) == 1 {
				s.State.LastStatus = builtinReadonly(first.Argv[1:], s.State)
				return
			}
		}
	}

	status, keepRunning := Pipeline{Commands: cmds}.Execute(s.State)
	s.State.LastStatus = status
	s.State.Running = keepRunning
}
