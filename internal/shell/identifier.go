package shell

// isIdentStart reports whether c may begin a variable name.
func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// isIdentCont reports whether c may continue a variable name.
func isIdentCont(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

// isValidIdentifier checks the Variable Table's naming rule from §3:
// first character is letter or underscore, the rest letters/digits/underscore.
func isValidIdentifier(name string) bool {
	if name == "" {
		return false
	}
	if !isIdentStart(name[0]) {
		return false
	}
	for i := 1; i < len(name); i++ {
		if !isIdentCont(name[i]) {
			return false
		}
	}
	return true
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t'
}
