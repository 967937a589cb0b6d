package shell

import (
	"fmt"
	"os"
	"strings"
)

// builtinCD changes the shell's working directory. With no argument it
// falls back to HOME, per §6's observable surface for `cd`.
func builtinCD(args []string, st *State) int {
	var target string
	if len(args) > 0 {
		target = args[0]
	} else {
		home, _ := st.Vars.Get("HOME")
		target = home.Value
	}
	if target == "" {
		fmt.Fprintln(os.Stderr, "thrash: cd: HOME not set")
		return 1
	}

	if err := os.Chdir(target); err != nil {
		fmt.Fprintf(os.Stderr, "thrash: cd: %s\n", err)
		return 1
	}
	if cwd, err := os.Getwd(); err == nil {
		st.Cwd = cwd
	}
	return 0
}

// builtinUnset removes each named variable, honoring readonly. An unknown
// name is a no-op per the Variable Table's own rule — see DESIGN.md for
// the ambiguity this resolves.
func builtinUnset(args []string, st *State) int {
	status := 0
	for _, name := range args {
		if err := st.Vars.Unset(name); err != nil {
			fmt.Fprintf(os.Stderr, "thrash: unset: %s\n", err)
			status = 1
		}
	}
	return status
}

// builtinExport marks each named variable exported. `export NAME=VALUE`
// sets the value and the exported flag in one step; `export NAME` with no
// `=` only sets the flag, creating NAME empty if it doesn't exist yet.
// Both forms come from original_source/, which the distilled spec is
// silent on rather than excluding.
func builtinExport(args []string, st *State) int {
	status := 0
	for _, arg := range args {
		name, value, hasValue := strings.Cut(arg, "=")
		var err error
		if hasValue {
			err = st.Vars.Set(name, value, FlagExported)
		} else {
			err = st.Vars.Export(name)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "thrash: export: %s\n", err)
			status = 1
		}
	}
	return status
}

// builtinReadonly sets NAME=VALUE and marks it readonly in one step. Also
// supplemented from original_source/.
func builtinReadonly(args []string, st *State) int {
	status := 0
	for _, arg := range args {
		name, value, _ := strings.Cut(arg, "=")
		if err := st.Vars.Set(name, value, FlagReadonly); err != nil {
			fmt.Fprintf(os.Stderr, "thrash: readonly: %s\n", err)
			status = 1
		}
	}
	return status
}

// parseAssignment recognizes a leading "NAME=VALUE" token, per §4.9's
// definition of a variable assignment segment.
func parseAssignment(word string) (name, value string, ok bool) {
	eq := strings.IndexByte(word, '=')
	if eq <= 0 {
		return "", "", false
	}
	name = word[:eq]
	if !isValidIdentifier(name) {
		return "", "", false
	}
	return name, word[eq+1:], true
}
