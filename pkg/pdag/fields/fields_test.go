package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDOf(t *testing.T) {
	assert.Equal(t, ID(0), IDOf("literal"))
	assert.Equal(t, Invalid, IDOf("no-such-parser"))
}

func TestName(t *testing.T) {
	assert.Equal(t, "literal", Name(IDOf("literal")))
	assert.Equal(t, "USER-DEFINED", Name(CustomType))
	assert.Equal(t, "INVALID", Name(Invalid))
}

func TestTableOrderIsStable(t *testing.T) {
	// The registry ABI promises that id IS array position; this pins the
	// order so an accidental reorder/insert fails loudly.
	want := []string{
		"literal", "date-rfc3164", "date-rfc5424", "number", "float",
		"hexnumber", "kernel-timestamp", "whitespace", "ipv4", "ipv6",
		"word", "alpha", "rest", "op-quoted-string", "quoted-string",
		"date-iso", "time-24hr", "time-12hr", "duration",
		"cisco-interface-spec", "name-value-list", "json", "cee-syslog",
		"mac48", "cef", "checkpoint-lea", "v2-iptables", "string-to",
		"char-to", "char-sep",
	}
	got := make([]string, len(Table))
	for i, e := range Table {
		got[i] = e.Name
	}
	assert.Equal(t, want, got)
}

func TestParseNumber(t *testing.T) {
	tests := map[string]struct {
		in      string
		ok      bool
		parsed  int
		value   int64
	}{
		"positive":  {in: "123abc", ok: true, parsed: 3, value: 123},
		"negative":  {in: "-42", ok: true, parsed: 3, value: -42},
		"no digits": {in: "abc", ok: false},
	}
	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			parsed, value, err := parseNumber(tc.in, 0, nil, false)
			if !tc.ok {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.parsed, parsed)
			assert.Equal(t, tc.value, value)
		})
	}
}

func TestParseFloat(t *testing.T) {
	parsed, value, err := parseFloat("3.14x", 0, nil, false)
	require.NoError(t, err)
	assert.Equal(t, 4, parsed)
	assert.Equal(t, 3.14, value)

	_, _, err = parseFloat("314", 0, nil, false)
	assert.Error(t, err, "an integer with no fractional part is not a float")
}

func TestParseIPv4(t *testing.T) {
	parsed, value, err := parseIPv4("10.0.0.1 rest", 0, nil, false)
	require.NoError(t, err)
	assert.Equal(t, 8, parsed)
	assert.Equal(t, "10.0.0.1", value)

	_, _, err = parseIPv4("::1", 0, nil, false)
	assert.Error(t, err)
}

func TestParseIPv6(t *testing.T) {
	parsed, value, err := parseIPv6("::1 rest", 0, nil, false)
	require.NoError(t, err)
	assert.Equal(t, 3, parsed)
	assert.Equal(t, "::1", value)
}

func TestParseWord(t *testing.T) {
	parsed, value, err := parseWord("hello world", 0, nil, false)
	require.NoError(t, err)
	assert.Equal(t, 5, parsed)
	assert.Equal(t, "hello", value)
}

func TestParseRest(t *testing.T) {
	parsed, value, err := parseRest("tail of the line", 5, nil, false)
	require.NoError(t, err)
	assert.Equal(t, len("of the line"), parsed)
	assert.Equal(t, "of the line", value)
}

func TestParseQuotedString(t *testing.T) {
	parsed, value, err := parseQuotedString(`"hello \"there\"" rest`, 0, nil, false)
	require.NoError(t, err)
	assert.Equal(t, `hello \"there\"`, value)
	assert.Equal(t, len(`"hello \"there\""`), parsed)
}

func TestParseOpQuotedString_FallsBackToWord(t *testing.T) {
	parsed, value, err := parseOpQuotedString("bareword rest", 0, nil, false)
	require.NoError(t, err)
	assert.Equal(t, 8, parsed)
	assert.Equal(t, "bareword", value)
}

func TestParseCharTo(t *testing.T) {
	data, err := constructCharTo(",", nil)
	require.NoError(t, err)
	parsed, value, err := parseCharTo("key,rest", 0, data, false)
	require.NoError(t, err)
	assert.Equal(t, 3, parsed)
	assert.Equal(t, "key", value)
}

func TestParseCharSeparated(t *testing.T) {
	data, err := constructCharTo(",", nil)
	require.NoError(t, err)
	parsed, value, err := parseCharSeparated("key,rest", 0, data, false)
	require.NoError(t, err)
	assert.Equal(t, 4, parsed, "the separator itself is consumed")
	assert.Equal(t, "key", value)
}

func TestParseJSON(t *testing.T) {
	parsed, value, err := parseJSON(`{"a":1}rest`, 0, nil, false)
	require.NoError(t, err)
	assert.Equal(t, len(`{"a":1}`), parsed)
	assert.EqualValues(t, 1, value.(map[string]any)["a"])
}

func TestParseNameValueList(t *testing.T) {
	parsed, value, err := parseNameValueList("src=1.2.3.4 dst=5.6.7.8", 0, nil, false)
	require.NoError(t, err)
	assert.Equal(t, 23, parsed)
	m := value.(map[string]any)
	assert.Equal(t, "1.2.3.4", m["src"])
	assert.Equal(t, "5.6.7.8", m["dst"])
}

func TestParseCEF(t *testing.T) {
	line := "CEF:0|Vendor|Product|1.0|100|Signature|5|msg=hi"
	parsed, value, err := parseCEF(line, 0, nil, false)
	require.NoError(t, err)
	assert.Equal(t, len(line), parsed)
	m := value.(map[string]any)
	assert.Equal(t, "Vendor", m["deviceVendor"])
	assert.Equal(t, "msg=hi", m["extension"])
}

func TestParseMAC48(t *testing.T) {
	parsed, value, err := parseMAC48("00:1a:2b:3c:4d:5e rest", 0, nil, false)
	require.NoError(t, err)
	assert.Equal(t, 17, parsed)
	assert.Equal(t, "00:1a:2b:3c:4d:5e", value)
}

func TestParseCiscoInterfaceSpec(t *testing.T) {
	parsed, value, err := parseCiscoInterfaceSpec("GigabitEthernet0/1 is up", 0, nil, false)
	require.NoError(t, err)
	assert.Equal(t, "GigabitEthernet0/1", value)
	assert.Equal(t, len("GigabitEthernet0/1"), parsed)
}

func TestParseDuration(t *testing.T) {
	parsed, value, err := parseDuration("01:02:03 rest", 0, nil, false)
	require.NoError(t, err)
	assert.Equal(t, 8, parsed)
	assert.Equal(t, "1h2m3s", value.(interface{ String() string }).String())
}

func TestSuppressValue_SkipsExtraction(t *testing.T) {
	parsed, value, err := parseWord("hello", 0, nil, true)
	require.NoError(t, err)
	assert.Equal(t, 5, parsed)
	assert.Nil(t, value)
}
