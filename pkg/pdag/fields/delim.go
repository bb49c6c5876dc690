package fields

import "strings"

// constructCharTo stores the terminator character (or, for char-sep, the
// separator character) taken from the rulebase's extra data.
func constructCharTo(extraData string, _ map[string]string) (any, error) {
	if len(extraData) == 0 {
		return nil, ErrNoMatch
	}
	return extraData[0], nil
}

// constructStringTo stores the terminator string taken from the rulebase's
// extra data.
func constructStringTo(extraData string, _ map[string]string) (any, error) {
	if len(extraData) == 0 {
		return nil, ErrNoMatch
	}
	return extraData, nil
}

// parseCharTo matches everything up to, but not including, the configured
// terminator character. The terminator itself is left for a following edge
// (typically a literal) to consume.
func parseCharTo(str string, offs int, data any, suppress bool) (int, any, error) {
	term := data.(byte)
	idx := strings.IndexByte(str[offs:], term)
	if idx <= 0 {
		return 0, nil, ErrNoMatch
	}
	if suppress {
		return idx, nil, nil
	}
	return idx, str[offs : offs+idx], nil
}

// parseStringTo matches everything up to, but not including, the configured
// terminator string.
func parseStringTo(str string, offs int, data any, suppress bool) (int, any, error) {
	term := data.(string)
	idx := strings.Index(str[offs:], term)
	if idx <= 0 {
		return 0, nil, ErrNoMatch
	}
	if suppress {
		return idx, nil, nil
	}
	return idx, str[offs : offs+idx], nil
}

// parseCharSeparated matches everything up to and including the configured
// separator character, returning only the content before it. Unlike
// char-to, the separator is consumed as part of the match.
func parseCharSeparated(str string, offs int, data any, suppress bool) (int, any, error) {
	term := data.(byte)
	idx := strings.IndexByte(str[offs:], term)
	if idx < 0 {
		return 0, nil, ErrNoMatch
	}
	parsed := idx + 1
	if suppress {
		return parsed, nil, nil
	}
	return parsed, str[offs : offs+idx], nil
}
