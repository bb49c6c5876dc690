package fields

import (
	"net"
	"strings"
)

func parseIPv4(str string, offs int, _ any, suppress bool) (int, any, error) {
	i := offs
	for i < len(str) && (str[i] == '.' || (str[i] >= '0' && str[i] <= '9')) {
		i++
	}
	if i == offs {
		return 0, nil, ErrNoMatch
	}
	candidate := str[offs:i]
	ip := net.ParseIP(candidate)
	if ip == nil || ip.To4() == nil || strings.Contains(candidate, ":") {
		return 0, nil, ErrNoMatch
	}
	parsed := i - offs
	if suppress {
		return parsed, nil, nil
	}
	return parsed, candidate, nil
}

func parseIPv6(str string, offs int, _ any, suppress bool) (int, any, error) {
	i := offs
	for i < len(str) && (str[i] == ':' || isHexDigit(str[i])) {
		i++
	}
	if i == offs {
		return 0, nil, ErrNoMatch
	}
	candidate := str[offs:i]
	ip := net.ParseIP(candidate)
	if ip == nil || ip.To4() != nil {
		return 0, nil, ErrNoMatch
	}
	parsed := i - offs
	if suppress {
		return parsed, nil, nil
	}
	return parsed, candidate, nil
}

func parseMAC48(str string, offs int, _ any, suppress bool) (int, any, error) {
	const macLen = len("00:00:00:00:00:00")
	if offs+macLen > len(str) {
		return 0, nil, ErrNoMatch
	}
	candidate := str[offs : offs+macLen]
	if _, err := net.ParseMAC(candidate); err != nil {
		return 0, nil, ErrNoMatch
	}
	if suppress {
		return macLen, nil, nil
	}
	return macLen, candidate, nil
}
