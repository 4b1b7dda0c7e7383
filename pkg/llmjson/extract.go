// Package llmjson pulls a JSON document out of free-form model output.
package llmjson

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNoJSON is returned when the reply holds no valid JSON value.
var ErrNoJSON = errors.New("no valid JSON found in reply")

var leadingThink = regexp.MustCompile(`(?s)^\s*<think>.*?</think>\s*`)

// Extract returns the first balanced JSON object or array in reply.
// Reasoning blocks and markdown fences around the payload are ignored.
func Extract(reply string) (string, error) {
	text := leadingThink.ReplaceAllString(reply, "")

	obj := strings.IndexByte(text, '{')
	arr := strings.IndexByte(text, '[')

	if obj >= 0 && (arr < 0 || obj < arr) {
		if doc, ok := balanced(text[obj:], '{', '}'); ok && json.Valid([]byte(doc)) {
			return doc, nil
		}
	}
	if arr >= 0 {
		if doc, ok := balanced(text[arr:], '[', ']'); ok && json.Valid([]byte(doc)) {
			return doc, nil
		}
	}

	if trimmed := strings.TrimSpace(text); json.Valid([]byte(trimmed)) {
		return trimmed, nil
	}
	return "", ErrNoJSON
}

// Decode extracts and unmarshals reply into T.
func Decode[T any](reply string) (T, error) {
	var out T
	doc, err := Extract(reply)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal([]byte(doc), &out); err != nil {
		return out, fmt.Errorf("decode reply: %w", err)
	}
	return out, nil
}

// balanced scans s, which starts with openCh, up to the matching closeCh.
func balanced(s string, openCh, closeCh byte) (string, bool) {
	depth := 0
	inString, escaped := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == openCh:
			depth++
		case c == closeCh:
			depth--
			if depth == 0 {
				return s[:i+1], true
			}
		}
	}
	return "", false
}
