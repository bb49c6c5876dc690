package fields

import (
	"encoding/json"
	"strings"
)

// parseJSON decodes one JSON value starting at offs and reports how many
// bytes it consumed, using json.Decoder's input-offset tracking rather than
// assuming the value runs to the end of the string.
func parseJSON(str string, offs int, _ any, suppress bool) (int, any, error) {
	dec := json.NewDecoder(strings.NewReader(str[offs:]))
	var value any
	if err := dec.Decode(&value); err != nil {
		return 0, nil, ErrNoMatch
	}
	parsed := int(dec.InputOffset())
	if suppress {
		return parsed, nil, nil
	}
	return parsed, value, nil
}

// parseCEESyslog matches the CEE cookie "@cee:" followed by a JSON object,
// as emitted by lumberjack/rsyslog CEE-enhanced syslog.
func parseCEESyslog(str string, offs int, data any, suppress bool) (int, any, error) {
	const cookie = "@cee:"
	if !strings.HasPrefix(str[offs:], cookie) {
		return 0, nil, ErrNoMatch
	}
	i := offs + len(cookie)
	for i < len(str) && str[i] == ' ' {
		i++
	}
	parsedJSON, value, err := parseJSON(str, i, data, suppress)
	if err != nil {
		return 0, nil, err
	}
	return (i - offs) + parsedJSON, value, nil
}

// parseNameValueList matches a run of whitespace-separated key=value pairs,
// merging them into a map so the caller can fold the result with the "."
// (merge-as-object) field name.
func parseNameValueList(str string, offs int, _ any, suppress bool) (int, any, error) {
	i := offs
	values := map[string]any{}
	matchedAny := false
	for i < len(str) {
		for i < len(str) && str[i] == ' ' {
			i++
		}
		start := i
		eq := -1
		for i < len(str) && str[i] != ' ' {
			if str[i] == '=' && eq == -1 {
				eq = i
			}
			i++
		}
		if eq == -1 || eq == start {
			i = start
			break
		}
		matchedAny = true
		if !suppress {
			values[str[start:eq]] = str[eq+1 : i]
		}
	}
	if !matchedAny {
		return 0, nil, ErrNoMatch
	}
	parsed := i - offs
	if suppress {
		return parsed, nil, nil
	}
	return parsed, values, nil
}

// parseV2IPTables matches iptables log-style KEY=VALUE pairs (e.g. "SRC=1.2.3.4 DST=5.6.7.8").
// The grammar is identical to name-value-list; it is kept as a distinct
// registry entry because the rulebase loader treats it as a semantically
// distinct parser id, per the original registry ABI.
func parseV2IPTables(str string, offs int, data any, suppress bool) (int, any, error) {
	return parseNameValueList(str, offs, data, suppress)
}

// parseCheckpointLEA matches "key: value;" pairs as emitted by Check Point's
// Log Export API.
func parseCheckpointLEA(str string, offs int, _ any, suppress bool) (int, any, error) {
	i := offs
	values := map[string]any{}
	matchedAny := false
	for i < len(str) {
		for i < len(str) && str[i] == ' ' {
			i++
		}
		keyStart := i
		colon := -1
		for i < len(str) && str[i] != ';' {
			if str[i] == ':' && colon == -1 {
				colon = i
			}
			i++
		}
		if colon == -1 || i >= len(str) || str[i] != ';' {
			i = keyStart
			break
		}
		key := strings.TrimSpace(str[keyStart:colon])
		val := strings.TrimSpace(str[colon+1 : i])
		i++ // consume ';'
		if key == "" {
			i = keyStart
			break
		}
		matchedAny = true
		if !suppress {
			values[key] = val
		}
	}
	if !matchedAny {
		return 0, nil, ErrNoMatch
	}
	parsed := i - offs
	if suppress {
		return parsed, nil, nil
	}
	return parsed, values, nil
}

// parseCEF matches an ArcSight Common Event Format header:
// "CEF:Version|Device Vendor|Device Product|Device Version|Signature ID|Name|Severity|Extension".
func parseCEF(str string, offs int, _ any, suppress bool) (int, any, error) {
	const prefix = "CEF:"
	if !strings.HasPrefix(str[offs:], prefix) {
		return 0, nil, ErrNoMatch
	}
	rest := str[offs+len(prefix):]
	fieldNames := []string{"version", "deviceVendor", "deviceProduct", "deviceVersion", "signatureId", "name", "severity", "extension"}
	values := map[string]any{}
	i := 0
	for fi, fname := range fieldNames {
		start := i
		last := fi == len(fieldNames)-1
		for i < len(rest) && !(rest[i] == '|' && !last) {
			if rest[i] == '\n' {
				break
			}
			i++
		}
		if i == start && !last {
			return 0, nil, ErrNoMatch
		}
		if !suppress {
			values[fname] = rest[start:i]
		}
		if !last {
			if i >= len(rest) || rest[i] != '|' {
				return 0, nil, ErrNoMatch
			}
			i++
		}
	}
	parsed := len(prefix) + i
	if suppress {
		return parsed, nil, nil
	}
	return parsed, values, nil
}

// parseCiscoInterfaceSpec matches a Cisco IOS interface name such as
// "GigabitEthernet0/1" or "Gi0/0/1.100": a leading alphabetic run followed
// by digits, dots, and slashes.
func parseCiscoInterfaceSpec(str string, offs int, _ any, suppress bool) (int, any, error) {
	i := offs
	for i < len(str) && ((str[i] >= 'a' && str[i] <= 'z') || (str[i] >= 'A' && str[i] <= 'Z')) {
		i++
	}
	if i == offs {
		return 0, nil, ErrNoMatch
	}
	numStart := i
	for i < len(str) && (str[i] == '/' || str[i] == '.' || (str[i] >= '0' && str[i] <= '9')) {
		i++
	}
	if i == numStart {
		return 0, nil, ErrNoMatch
	}
	parsed := i - offs
	if suppress {
		return parsed, nil, nil
	}
	return parsed, str[offs:i], nil
}
