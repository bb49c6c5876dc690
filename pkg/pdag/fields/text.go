package fields

import "unicode"

func parseWhitespace(str string, offs int, _ any, suppress bool) (int, any, error) {
	i := offs
	for i < len(str) && (str[i] == ' ' || str[i] == '\t') {
		i++
	}
	if i == offs {
		return 0, nil, ErrNoMatch
	}
	if suppress {
		return i - offs, nil, nil
	}
	return i - offs, str[offs:i], nil
}

// parseWord matches a maximal run of non-whitespace bytes.
func parseWord(str string, offs int, _ any, suppress bool) (int, any, error) {
	i := offs
	for i < len(str) && !unicode.IsSpace(rune(str[i])) {
		i++
	}
	if i == offs {
		return 0, nil, ErrNoMatch
	}
	if suppress {
		return i - offs, nil, nil
	}
	return i - offs, str[offs:i], nil
}

// parseAlpha matches a maximal run of alphabetic bytes.
func parseAlpha(str string, offs int, _ any, suppress bool) (int, any, error) {
	i := offs
	for i < len(str) {
		c := str[i]
		if !((c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')) {
			break
		}
		i++
	}
	if i == offs {
		return 0, nil, ErrNoMatch
	}
	if suppress {
		return i - offs, nil, nil
	}
	return i - offs, str[offs:i], nil
}

// parseRest consumes everything remaining in the input, always succeeding
// (even on an empty remainder), matching liblognorm's "rest" parser.
func parseRest(str string, offs int, _ any, suppress bool) (int, any, error) {
	parsed := len(str) - offs
	if suppress {
		return parsed, nil, nil
	}
	return parsed, str[offs:], nil
}

func parseQuotedStringWith(str string, offs int, suppress bool, optional bool) (int, any, error) {
	i := offs
	if i >= len(str) || str[i] != '"' {
		if optional {
			return parseWord(str, offs, nil, suppress)
		}
		return 0, nil, ErrNoMatch
	}
	i++
	start := i
	for i < len(str) && str[i] != '"' {
		if str[i] == '\\' && i+1 < len(str) {
			i++
		}
		i++
	}
	if i >= len(str) {
		return 0, nil, ErrNoMatch
	}
	content := str[start:i]
	i++ // consume closing quote
	parsed := i - offs
	if suppress {
		return parsed, nil, nil
	}
	return parsed, content, nil
}

func parseQuotedString(str string, offs int, data any, suppress bool) (int, any, error) {
	return parseQuotedStringWith(str, offs, suppress, false)
}

// parseOpQuotedString matches a quoted string if present, or falls back to
// an unquoted word ("op" for optional), mirroring liblognorm's
// op-quoted-string parser.
func parseOpQuotedString(str string, offs int, data any, suppress bool) (int, any, error) {
	return parseQuotedStringWith(str, offs, suppress, true)
}
