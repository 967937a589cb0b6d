package shell

import (
	"fmt"
	"io"
	"os"
	"os/exec"
)

// hereDocPipeThreshold is the payload size above which a here-document is
// spilled to a temp file instead of fed through a pipe. A background
// goroutine writing into the pipe never deadlocks regardless of size, but
// original_source/ spills large here-docs to a file rather than holding an
// unbounded write goroutine open, and this plan follows that precedent.
const hereDocPipeThreshold = 65536

// stagedIO is the per-command result of the Redirection Planner: the
// concrete *os.File bound to each fd the command touches, plus the
// closers the caller must run once the stage has been waited on.
type stagedIO struct {
	files   map[int]*os.File
	closers []func()
}

// planStageIO applies a Command's redirection list, in order, against the
// base stdin/stdout/stderr a pipeline stage starts with (wired from the
// adjacent pipes, or the shell's own standard streams for a lone stage).
// Redirections override pipe wiring on a shared fd, per §4.6 step 3.
func planStageIO(redirs []Redirection, stdin, stdout, stderr *os.File) (*stagedIO, error) {
	s := &stagedIO{files: map[int]*os.File{0: stdin, 1: stdout, 2: stderr}}

	for _, r := range redirs {
		switch r.Kind {
		case RedirRead:
			f, err := os.Open(r.Filename)
			if err != nil {
				s.Close()
				return nil, err
			}
			s.files[r.TargetFD] = f
			s.closers = append(s.closers, closerFor(f))

		case RedirWriteTruncate:
			f, err := os.OpenFile(r.Filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
			if err != nil {
				s.Close()
				return nil, err
			}
			s.files[r.TargetFD] = f
			s.closers = append(s.closers, closerFor(f))

		case RedirWriteAppend:
			f, err := os.OpenFile(r.Filename, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
			if err != nil {
				s.Close()
				return nil, err
			}
			s.files[r.TargetFD] = f
			s.closers = append(s.closers, closerFor(f))

		case RedirDup:
			src, ok := s.files[r.SourceFD]
			if !ok {
				s.Close()
				return nil, fmt.Errorf("%d: bad file descriptor", r.SourceFD)
			}
			s.files[r.TargetFD] = src

		case RedirHereDoc:
			f, closer, err := openHereDoc(r.HereDoc)
			if err != nil {
				s.Close()
				return nil, err
			}
			s.files[r.TargetFD] = f
			s.closers = append(s.closers, closer)
		}
	}

	return s, nil
}

func closerFor(f *os.File) func() {
	return func() { _ = f.Close() }
}

// openHereDoc materializes a here-document payload as a readable *os.File.
// Small payloads are fed through a pipe by a background writer goroutine;
// larger ones are spilled to a temp file so a write that would exceed one
// pipe buffer can never block against a reader that hasn't started yet.
func openHereDoc(payload string) (*os.File, func(), error) {
	if len(payload) <= hereDocPipeThreshold {
		r, w, err := os.Pipe()
		if err != nil {
			return nil, nil, err
		}
		go func() {
			_, _ = io.WriteString(w, payload)
			_ = w.Close()
		}()
		return r, closerFor(r), nil
	}

	tmp, err := os.CreateTemp("", "thrash-heredoc-*")
	if err != nil {
		return nil, nil, err
	}
	if _, err := io.WriteString(tmp, payload); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return nil, nil, err
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return nil, nil, err
	}

	name := tmp.Name()
	return tmp, func() {
		_ = tmp.Close()
		_ = os.Remove(name)
	}, nil
}

// Close runs every closer collected so far, in case plan construction or
// application fails partway through.
func (s *stagedIO) Close() {
	for _, c := range s.closers {
		c()
	}
	s.closers = nil
}

// apply wires s's fd table onto cmd. Target fds 0/1/2 become
// Stdin/Stdout/Stderr; fd >= 3 becomes a slot in ExtraFiles, which
// os/exec requires to be contiguous starting at 3 — a gap left by a
// command that redirects fd 5 but not fd 3 or 4 is filled with a
// /dev/null descriptor of its own, a deliberate simplification over the
// spec's "opens a new descriptor at that numeric slot" wording, recorded
// in DESIGN.md.
func (s *stagedIO) apply(cmd *exec.Cmd) error {
	cmd.Stdin = s.files[0]
	cmd.Stdout = s.files[1]
	cmd.Stderr = s.files[2]

	maxFD := 2
	for fd := range s.files {
		if fd > maxFD {
			maxFD = fd
		}
	}
	if maxFD <= 2 {
		return nil
	}

	extra := make([]*os.File, maxFD-2)
	for fd := 3; fd <= maxFD; fd++ {
		f := s.files[fd]
		if f == nil {
			null, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
			if err != nil {
				return err
			}
			s.closers = append(s.closers, closerFor(null))
			f = null
		}
		extra[fd-3] = f
	}
	cmd.ExtraFiles = extra
	return nil
}
