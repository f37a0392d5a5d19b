// Package coerce turns loosely typed device values into numbers. Devices send
// numbers, numeric strings or garbage; parsing takes the longest numeric prefix
// of the value's string form ("22.5C" is 22.5) and anything that yields no
// finite number falls back to a caller supplied default. Coercion never fails.
package coerce

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Float parses raw as a decimal number, returning def when no finite number
// can be read from it.
func Float(raw any, def float64) float64 {
	s, ok := stringForm(raw)
	if !ok {
		return def
	}
	f, ok := FloatPrefix(s)
	if !ok {
		return def
	}
	return f + 0 // folds -0 into 0
}

// Int parses raw as a base-10 integer (a fractional part is dropped), returning
// def when no integer can be read from it.
func Int(raw any, def int) int {
	s, ok := stringForm(raw)
	if !ok {
		return def
	}
	n, ok := IntPrefix(s)
	if !ok {
		return def
	}
	return n
}

// FloatPrefix parses the longest decimal literal at the start of s after
// leading white space. It reports false when there is none or when the value
// is not finite.
func FloatPrefix(s string) (float64, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := scanDecimal(s)
	if end == 0 {
		return 0, false
	}
	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// IntPrefix parses the longest integer at the start of s after leading white
// space. A "0x" prefix selects base 16. It reports false when there are no
// digits or the value overflows int.
func IntPrefix(s string) (int, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	base, isDigit := 10, isDecDigit
	if len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base, isDigit = 16, isHexDigit
		s = s[2:]
	}
	end := 0
	for end < len(s) && isDigit(s[end]) {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.ParseInt(s[:end], base, strconv.IntSize)
	if err != nil {
		return 0, false
	}
	if neg {
		n = -n
	}
	return int(n), true
}

// scanDecimal returns the length of the decimal literal starting s:
// [sign] digits [. digits] [e [sign] digits], with at least one mantissa digit.
func scanDecimal(s string) int {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && isDecDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		j := i + 1
		frac := 0
		for j < len(s) && isDecDigit(s[j]) {
			j++
			frac++
		}
		if digits+frac > 0 {
			i = j
			digits += frac
		}
	}
	if digits == 0 {
		return 0
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && isDecDigit(s[k]) {
			k++
		}
		if k > j {
			i = k
		}
	}
	return i
}

// stringForm renders raw the way a loosely typed sender would see it as text.
// Objects have no numeric form.
func stringForm(raw any) (string, bool) {
	switch v := raw.(type) {
	case nil:
		return "null", true
	case string:
		return v, true
	case json.Number:
		// JSON numbers are parsed from their canonical form, so 5e2 reads as 500.
		if f, err := v.Float64(); err == nil {
			return numberString(f), true
		}
		return v.String(), true
	case float64:
		return numberString(v), true
	case float32:
		return numberString(float64(v)), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case int32:
		return strconv.FormatInt(int64(v), 10), true
	case uint:
		return strconv.FormatUint(uint64(v), 10), true
	case uint64:
		return strconv.FormatUint(v, 10), true
	case bool:
		return strconv.FormatBool(v), true
	case []any:
		parts := make([]string, len(v))
		for i, e := range v {
			if e == nil {
				continue
			}
			s, ok := stringForm(e)
			if !ok {
				return "", false
			}
			parts[i] = s
		}
		return strings.Join(parts, ","), true
	default:
		return "", false
	}
}

// numberString formats f with the shortest round-trip digits, switching to
// exponent form outside [1e-6, 1e21) so that integer parsing of very large or
// very small values stops at the mantissa.
func numberString(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		// Go pads the exponent to two digits ("1e-07"); drop the padding.
		if i := strings.IndexByte(s, 'e'); i >= 0 && i+2 < len(s) && s[i+2] == '0' && len(s) > i+3 {
			s = s[:i+2] + s[i+3:]
		}
		return s
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func isDecDigit(c byte) bool { return '0' <= c && c <= '9' }

func isHexDigit(c byte) bool {
	return isDecDigit(c) || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}
