package tfedit

import (
	"fmt"
	"regexp"
	"strings"
)

// GetProperty returns the value of the first `key = value` line inside the
// block's body, with any trailing line comment and surrounding whitespace
// removed. The second return is false when the key is not present.
func GetProperty(doc string, block Block, key string) (string, bool) {
	re := propertyPattern(key)
	for _, line := range strings.Split(block.Inner(doc), "\n") {
		m := re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		value, _ := splitValueComment(m[2])
		return strings.TrimSpace(value), true
	}
	return "", false
}

// SetProperty returns a new document in which the block's key has exactly the
// given value.
//
// The first existing occurrence is rewritten in place, keeping its
// indentation and trailing comment. Any further occurrences of the same key
// are removed: duplicate keys are a bug state introduced by manual edits and
// are collapsed rather than preserved. If the key is absent a new line is
// appended before the closing brace. Setting the same value twice is a no-op
// on the second call.
func SetProperty(doc string, block Block, key, value string) (string, error) {
	if strings.ContainsAny(value, "\r\n") {
		return "", fmt.Errorf("property %q: value must be a single line", key)
	}

	eol := "\n"
	if strings.Contains(doc, "\r\n") {
		eol = "\r\n"
	}

	inner := block.Inner(doc)
	re := propertyPattern(key)

	lines := strings.Split(inner, "\n")
	out := make([]string, 0, len(lines))
	seen := false

	for _, line := range lines {
		m := re.FindStringSubmatch(line)
		if m == nil {
			out = append(out, line)
			continue
		}
		if seen {
			// Duplicate occurrence: drop the whole line.
			continue
		}
		seen = true
		cr := ""
		if strings.HasSuffix(line, "\r") {
			cr = "\r"
		}
		_, tail := splitValueComment(m[2])
		out = append(out, m[1]+value+tail+cr)
	}

	newInner := strings.Join(out, "\n")
	if !seen {
		newInner = appendProperty(newInner, key, value, eol)
	}

	if newInner == inner {
		return doc, nil
	}
	return ReplaceBlockBody(doc, block, newInner), nil
}

// propertyPattern matches a `key = value` line, capturing everything through
// the equals sign and its surrounding whitespace in group 1 and the rest of
// the line in group 2.
func propertyPattern(key string) *regexp.Regexp {
	return regexp.MustCompile(`^(\s*` + regexp.QuoteMeta(key) + `\s*=\s*)(.*)$`)
}

// splitValueComment splits the text after the equals sign into the value part
// and a tail holding the whitespace plus trailing line comment, if any. A `#`
// or `//` inside a quoted string does not start a comment.
func splitValueComment(rest string) (value, tail string) {
	rest = strings.TrimSuffix(rest, "\r")
	inString := false
	for i := 0; i < len(rest); i++ {
		switch rest[i] {
		case '\\':
			if inString {
				i++
			}
		case '"':
			inString = !inString
		case '#':
			if !inString {
				return strings.TrimRight(rest[:i], " \t"), rest[len(strings.TrimRight(rest[:i], " \t")):]
			}
		case '/':
			if !inString && i+1 < len(rest) && rest[i+1] == '/' {
				return strings.TrimRight(rest[:i], " \t"), rest[len(strings.TrimRight(rest[:i], " \t")):]
			}
		}
	}
	trimmed := strings.TrimRight(rest, " \t")
	return trimmed, rest[len(trimmed):]
}

// appendProperty inserts a `key = value` line at the end of the block body,
// keeping the closing brace on its own line.
func appendProperty(inner, key, value, eol string) string {
	line := "  " + key + " = " + value

	// Body may or may not end with a newline before the closing brace.
	switch {
	case inner == "" || inner == eol:
		return eol + line + eol
	case strings.HasSuffix(inner, eol):
		return inner + line + eol
	default:
		return inner + eol + line + eol
	}
}
