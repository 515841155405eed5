// Package frontmatter splits an optional YAML frontmatter block off a
// description file.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates the document started with a YAML
// frontmatter delimiter but did not contain a closing delimiter.
var ErrMissingClosingDelimiter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")

var utf8BOM = []byte("\xef\xbb\xbf")

// Split separates YAML frontmatter (`---` delimited) from the body.
//
// If the document does not start with a delimiter line, had is false and
// body is the full input. A leading UTF-8 byte order mark is ignored and
// both LF and CRLF line endings are accepted.
func Split(content []byte) (front []byte, body []byte, had bool, err error) {
	rest := bytes.TrimPrefix(content, utf8BOM)

	first, after, ok := cutLine(rest)
	if !ok || strings.TrimRight(string(first), " \t") != "---" {
		return nil, content, false, nil
	}

	start := len(rest) - len(after)
	cursor := after
	for len(cursor) > 0 {
		line, next, _ := cutLine(cursor)
		if strings.TrimRight(string(line), " \t") == "---" {
			end := len(rest) - len(cursor)
			return rest[start:end], next, true, nil
		}
		cursor = next
	}
	return nil, nil, false, ErrMissingClosingDelimiter
}

// cutLine returns the first line without its terminator and the remainder.
// ok is false when content is empty.
func cutLine(content []byte) (line []byte, rest []byte, ok bool) {
	if len(content) == 0 {
		return nil, nil, false
	}
	idx := bytes.IndexByte(content, '\n')
	if idx < 0 {
		return bytes.TrimSuffix(content, []byte("\r")), nil, true
	}
	return bytes.TrimSuffix(content[:idx], []byte("\r")), content[idx+1:], true
}

// ParseYAML parses raw YAML frontmatter (without --- delimiters) into a map.
func ParseYAML(front []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(front)) == 0 {
		return map[string]any{}, nil
	}

	var fields map[string]any
	if err := yaml.Unmarshal(front, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

// Fields parses frontmatter into lowercase keys with scalar values rendered
// as strings. Nested maps and lists are skipped.
func Fields(front []byte) (map[string]string, error) {
	raw, err := ParseYAML(front)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		key := strings.ToLower(strings.TrimSpace(k))
		switch val := v.(type) {
		case nil:
			out[key] = ""
		case string:
			out[key] = val
		case bool, int, int64, uint64, float64:
			out[key] = fmt.Sprint(val)
		}
	}
	return out, nil
}
