package feed

import (
	"strconv"
	"strings"
	"time"
)

// scalar unwraps the single-vs-array ambiguity the decode step introduces:
// a field may arrive as a value or as a singleton list depending on the
// source revision. Downstream extraction code always sees the scalar.
func scalar(v any) any {
	if list, ok := v.([]any); ok {
		if len(list) == 0 {
			return nil
		}
		return list[0]
	}
	return v
}

// child resolves one path segment inside a map node. Keys are matched
// exactly first, then case-insensitively, since feed revisions disagree on
// key casing. Only singleton lists are unwrapped while descending; a
// multi-element list is a record container, not a node to traverse through.
func child(node any, key string) (any, bool) {
	if list, ok := node.([]any); ok {
		if len(list) != 1 {
			return nil, false
		}
		node = list[0]
	}
	m, ok := node.(map[string]any)
	if !ok {
		return nil, false
	}
	if v, ok := m[key]; ok {
		return v, true
	}
	for k, v := range m {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return nil, false
}

// lookup walks a dot-separated path from node, unwrapping singleton lists
// at each step.
func lookup(node any, path string) (any, bool) {
	cur := node
	for _, seg := range strings.Split(path, ".") {
		next, ok := child(cur, seg)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return scalar(cur), true
}

// firstMatch tries candidate paths in order and returns the first present,
// non-empty value.
func firstMatch(node any, paths []string) (any, bool) {
	for _, p := range paths {
		v, ok := lookup(node, p)
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			continue
		}
		return v, true
	}
	return nil, false
}

// listAt returns the list found at the first matching path. A scalar value
// is wrapped into a singleton list, the inverse of scalar().
func listAt(node any, paths []string) []any {
	for _, p := range paths {
		cur := node
		segs := strings.Split(p, ".")
		ok := true
		for _, seg := range segs {
			next, found := child(cur, seg)
			if !found {
				ok = false
				break
			}
			cur = next
		}
		if !ok || cur == nil {
			continue
		}
		if list, isList := cur.([]any); isList {
			return list
		}
		return []any{cur}
	}
	return nil
}

// asString renders a scalar value as a trimmed string.
func asString(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}

// asInt parses a scalar as a non-negative integer. String values parse as
// the leading digit group: leading currency symbols and whitespace are
// skipped, thousands separators inside the group are absorbed, and the
// first trailing non-digit (a unit like "m2", a decimal remainder) ends
// the number instead of being folded into it.
func asInt(v any) int {
	switch n := v.(type) {
	case float64:
		if n < 0 {
			return 0
		}
		return int(n)
	case int:
		if n < 0 {
			return 0
		}
		return n
	case string:
		return parseLeadingInt(n)
	default:
		return 0
	}
}

// parseLeadingInt extracts the integer at the start of s, ignoring any
// non-digit prefix. A "." or "," is treated as a thousands separator only
// when exactly three digits follow it; otherwise it is a decimal point and
// parsing stops, truncating the fraction. Anything else ends the number,
// so "95 m2" is 95 and "250.000 EUR" is 250000.
func parseLeadingInt(s string) int {
	digits := func(str string) int {
		i := 0
		for i < len(str) && str[i] >= '0' && str[i] <= '9' {
			i++
		}
		return i
	}

	start := strings.IndexFunc(s, func(r rune) bool { return r >= '0' && r <= '9' })
	if start < 0 {
		return 0
	}
	s = s[start:]

	var b strings.Builder
	for {
		n := digits(s)
		b.WriteString(s[:n])
		s = s[n:]

		if len(s) == 0 || (s[0] != '.' && s[0] != ',') {
			break
		}
		if digits(s[1:]) != 3 {
			break
		}
		s = s[1:]
	}

	i, err := strconv.Atoi(b.String())
	if err != nil {
		return 0
	}
	return i
}

// asFloat parses a scalar as a float, used for geocoordinates.
func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(n, ",", ".")), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// feedTimeLayouts are the timestamp formats observed across feed revisions.
var feedTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"02/01/2006",
}

// asTime parses a scalar as a timestamp, returning the zero time when no
// known layout matches.
func asTime(v any) time.Time {
	s := asString(v)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range feedTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
