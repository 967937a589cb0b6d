package shell

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// OutcomeKind is the tagged-variant discriminator for PathOutcome.
type OutcomeKind int

const (
	// OutcomeNotFound means no candidate existed on PATH, nor was the
	// literal name an existing path.
	OutcomeNotFound OutcomeKind = iota
	// OutcomeExecutable means a regular, executable file was found.
	OutcomeExecutable
	// OutcomeNonExecutable means a regular file was found but lacks an
	// executable bit.
	OutcomeNonExecutable
	// OutcomeDirectory means the candidate exists but is a directory.
	OutcomeDirectory
)

// PathOutcome is the result of resolving a command name, per §3 and §4.1.
type PathOutcome struct {
	Kind OutcomeKind
	Path string // populated only when Kind == OutcomeExecutable
}

func classifyCandidate(path string) OutcomeKind {
	info, err := os.Stat(path)
	if err != nil {
		return OutcomeNotFound
	}
	if info.IsDir() {
		return OutcomeDirectory
	}
	if info.Mode()&0o111 == 0 {
		return OutcomeNonExecutable
	}
	return OutcomeExecutable
}

// ResolvePath implements the Path Resolver's resolve operation. pathEnv is
// the raw value of PATH (colon-separated, empty segment = cwd).
func ResolvePath(name, pathEnv string) PathOutcome {
	if strings.ContainsRune(name, os.PathSeparator) {
		switch classifyCandidate(name) {
		case OutcomeExecutable:
			return PathOutcome{Kind: OutcomeExecutable, Path: name}
		case OutcomeDirectory:
			return PathOutcome{Kind: OutcomeDirectory}
		case OutcomeNonExecutable:
			return PathOutcome{Kind: OutcomeNonExecutable}
		default:
			return PathOutcome{Kind: OutcomeNotFound}
		}
	}

	var sawNonExecutable, sawDirectory bool
	for _, dir := range strings.Split(pathEnv, string(os.PathListSeparator)) {
		candidate := "./" + name
		if dir != "" {
			candidate = filepath.Join(dir, name)
		}
		switch classifyCandidate(candidate) {
		case OutcomeExecutable:
			return PathOutcome{Kind: OutcomeExecutable, Path: candidate}
		case OutcomeNonExecutable:
			sawNonExecutable = true
		case OutcomeDirectory:
			sawDirectory = true
		}
	}

	// Preference order when both sightings occur: non-executable wins,
	// per §4.1, so the caller gets a precise diagnostic instead of a bare
	// "not found".
	switch {
	case sawNonExecutable:
		return PathOutcome{Kind: OutcomeNonExecutable}
	case sawDirectory:
		return PathOutcome{Kind: OutcomeDirectory}
	default:
		return PathOutcome{Kind: OutcomeNotFound}
	}
}

// ClassifyExecError maps an exec(2)-time failure to the shell exit code
// §4.1 prescribes. The corpus's job-control code reaches for
// golang.org/x/sys/unix for process-group and signal work, but the errno
// values an os/exec Start failure wraps are always the stdlib
// syscall.Errno type (that's what os.PathError/os.LinkError carry on every
// unix GOOS), so the comparison stays on syscall.Errno rather than
// introducing a needless conversion to unix.Errno.
func ClassifyExecError(err error) int {
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return 126
	}
	switch errno {
	case syscall.ENOENT, syscall.ENOTDIR:
		return 127
	case syscall.EACCES, syscall.ENOEXEC, syscall.EISDIR:
		return 126
	default:
		return 126
	}
}

// execCodeForOutcome maps a failed-resolution outcome to the shell exit
// code the caller should report without forking.
func execCodeForOutcome(kind OutcomeKind) int {
	switch kind {
	case OutcomeNotFound:
		return 127
	default: // OutcomeNonExecutable, OutcomeDirectory
		return 126
	}
}
