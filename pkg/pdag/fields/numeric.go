package fields

import "strconv"

func parseNumber(str string, offs int, _ any, suppress bool) (int, any, error) {
	i := offs
	if i < len(str) && (str[i] == '+' || str[i] == '-') {
		i++
	}
	start := i
	for i < len(str) && str[i] >= '0' && str[i] <= '9' {
		i++
	}
	if i == start {
		return 0, nil, ErrNoMatch
	}
	parsed := i - offs
	if suppress {
		return parsed, nil, nil
	}
	n, err := strconv.ParseInt(str[offs:i], 10, 64)
	if err != nil {
		return 0, nil, ErrNoMatch
	}
	return parsed, n, nil
}

func parseFloat(str string, offs int, _ any, suppress bool) (int, any, error) {
	i := offs
	if i < len(str) && (str[i] == '+' || str[i] == '-') {
		i++
	}
	digitsStart := i
	for i < len(str) && str[i] >= '0' && str[i] <= '9' {
		i++
	}
	hasIntPart := i > digitsStart
	hasFracPart := false
	if i < len(str) && str[i] == '.' {
		j := i + 1
		fracStart := j
		for j < len(str) && str[j] >= '0' && str[j] <= '9' {
			j++
		}
		if j > fracStart {
			hasFracPart = true
			i = j
		}
	}
	if !hasIntPart || !hasFracPart {
		return 0, nil, ErrNoMatch
	}
	parsed := i - offs
	if suppress {
		return parsed, nil, nil
	}
	f, err := strconv.ParseFloat(str[offs:i], 64)
	if err != nil {
		return 0, nil, ErrNoMatch
	}
	return parsed, f, nil
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func parseHexNumber(str string, offs int, _ any, suppress bool) (int, any, error) {
	i := offs
	if i+1 < len(str) && str[i] == '0' && (str[i+1] == 'x' || str[i+1] == 'X') {
		i += 2
	}
	start := i
	for i < len(str) && isHexDigit(str[i]) {
		i++
	}
	if i == start {
		return 0, nil, ErrNoMatch
	}
	parsed := i - offs
	if suppress {
		return parsed, nil, nil
	}
	n, err := strconv.ParseUint(str[start:i], 16, 64)
	if err != nil {
		return 0, nil, ErrNoMatch
	}
	return parsed, n, nil
}
