package shell

import (
	"strconv"
	"strings"
)

// Expand rewrites line by substituting variable references, per §4.3.
// Quoting is not interpreted here — that's the Parser's job downstream.
func Expand(line string, lastStatus int, vars *VarTable) string {
	var out strings.Builder
	out.Grow(len(line))

	i := 0
	n := len(line)
	for i < n {
		c := line[i]

		if c == '\\' && i+1 < n && line[i+1] == '$' {
			out.WriteByte('$')
			i += 2
			continue
		}

		if c != '$' {
			out.WriteByte(c)
			i++
			continue
		}

		// c == '$'
		if i+1 < n && line[i+1] == '?' {
			out.WriteString(strconv.Itoa(lastStatus))
			i += 2
			continue
		}

		if i+1 < n && line[i+1] == '{' {
			rest := line[i+2:]
			end := strings.IndexByte(rest, '}')
			if end == -1 {
				out.WriteString("${")
				i += 2
				continue
			}
			name := rest[:end]
			if v, ok := vars.Get(name); ok {
				out.WriteString(v.Value)
			}
			i += 2 + end + 1
			continue
		}

		if i+1 < n && isIdentStart(line[i+1]) {
			j := i + 1
			for j < n && isIdentCont(line[j]) {
				j++
			}
			name := line[i+1 : j]
			if v, ok := vars.Get(name); ok {
				out.WriteString(v.Value)
			}
			i = j
			continue
		}

		// Dollar followed by anything else: literal dollar, resume at the
		// following character.
		out.WriteByte('$')
		i++
	}

	return out.String()
}
