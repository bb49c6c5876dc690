package fields

import (
	"strconv"
	"strings"
	"time"
)

var rfc3164Months = map[string]bool{
	"Jan": true, "Feb": true, "Mar": true, "Apr": true, "May": true, "Jun": true,
	"Jul": true, "Aug": true, "Sep": true, "Oct": true, "Nov": true, "Dec": true,
}

// parseRFC3164Date matches the classic syslog timestamp, e.g. "Jan  2 15:04:05".
func parseRFC3164Date(str string, offs int, _ any, suppress bool) (int, any, error) {
	if offs+3 > len(str) || !rfc3164Months[str[offs:offs+3]] {
		return 0, nil, ErrNoMatch
	}
	const layout = "Jan _2 15:04:05"
	end := offs + len(layout)
	if end > len(str) {
		return 0, nil, ErrNoMatch
	}
	candidate := str[offs:end]
	t, err := time.Parse(layout, candidate)
	if err != nil {
		return 0, nil, ErrNoMatch
	}
	parsed := end - offs
	if suppress {
		return parsed, nil, nil
	}
	return parsed, t, nil
}

// parseRFC5424Date matches an RFC5424/ISO8601 timestamp with optional
// fractional seconds and a 'Z' or numeric zone offset.
func parseRFC5424Date(str string, offs int, _ any, suppress bool) (int, any, error) {
	i := offs
	for i < len(str) {
		c := str[i]
		if (c >= '0' && c <= '9') || c == '-' || c == ':' || c == '.' || c == 'T' || c == 'Z' || c == '+' {
			i++
			continue
		}
		break
	}
	if i == offs {
		return 0, nil, ErrNoMatch
	}
	candidate := str[offs:i]
	t, err := time.Parse(time.RFC3339Nano, candidate)
	if err != nil {
		return 0, nil, ErrNoMatch
	}
	parsed := i - offs
	if suppress {
		return parsed, nil, nil
	}
	return parsed, t, nil
}

// parseISODate matches a bare "2006-01-02" date.
func parseISODate(str string, offs int, _ any, suppress bool) (int, any, error) {
	const layout = "2006-01-02"
	end := offs + len(layout)
	if end > len(str) {
		return 0, nil, ErrNoMatch
	}
	candidate := str[offs:end]
	t, err := time.Parse(layout, candidate)
	if err != nil {
		return 0, nil, ErrNoMatch
	}
	if suppress {
		return len(layout), nil, nil
	}
	return len(layout), t, nil
}

func parseClock(str string, offs int, layout string, suppress bool) (int, any, error) {
	end := offs + len(layout)
	if end > len(str) {
		return 0, nil, ErrNoMatch
	}
	candidate := str[offs:end]
	t, err := time.Parse(layout, candidate)
	if err != nil {
		return 0, nil, ErrNoMatch
	}
	if suppress {
		return len(layout), nil, nil
	}
	return len(layout), t, nil
}

func parseTime24hr(str string, offs int, _ any, suppress bool) (int, any, error) {
	return parseClock(str, offs, "15:04:05", suppress)
}

func parseTime12hr(str string, offs int, _ any, suppress bool) (int, any, error) {
	const layout = "03:04:05 PM"
	end := offs + len(layout)
	if end > len(str) {
		return 0, nil, ErrNoMatch
	}
	return parseClock(str, offs, layout, suppress)
}

// parseDuration matches an "HH:MM:SS" span, expressed as a time.Duration.
func parseDuration(str string, offs int, _ any, suppress bool) (int, any, error) {
	i := offs
	for i < len(str) && (str[i] == ':' || (str[i] >= '0' && str[i] <= '9')) {
		i++
	}
	if i == offs {
		return 0, nil, ErrNoMatch
	}
	parts := strings.Split(str[offs:i], ":")
	if len(parts) != 3 {
		return 0, nil, ErrNoMatch
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	s, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil || m >= 60 || s >= 60 {
		return 0, nil, ErrNoMatch
	}
	parsed := i - offs
	if suppress {
		return parsed, nil, nil
	}
	dur := time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second
	return parsed, dur, nil
}

// parseKernelTimestamp matches the "seconds.microseconds" timestamp found
// inside kernel log lines' "[    12.345678]" bracket, without the brackets
// themselves (those are ordinary literal text in the sample).
func parseKernelTimestamp(str string, offs int, _ any, suppress bool) (int, any, error) {
	i := offs
	start := i
	for i < len(str) && str[i] >= '0' && str[i] <= '9' {
		i++
	}
	if i == start {
		return 0, nil, ErrNoMatch
	}
	if i < len(str) && str[i] == '.' {
		i++
		fracStart := i
		for i < len(str) && str[i] >= '0' && str[i] <= '9' {
			i++
		}
		if i == fracStart {
			return 0, nil, ErrNoMatch
		}
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
