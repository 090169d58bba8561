package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

const snippetLimit = 200

// StripCodeFences removes Markdown code-fence markers from a model reply.
// Models routinely wrap JSON answers in ```json blocks (or bare ``` fences)
// even when asked not to.
func StripCodeFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// Snippet bounds raw upstream text for log lines, cutting on a rune boundary
// so a truncated multi-byte character never produces invalid UTF-8.
func Snippet(s string) string {
	if len(s) <= snippetLimit {
		return s
	}
	cut := snippetLimit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// DecodeModelJSON extracts the JSON payload embedded in a model's free-text
// reply and decodes it into v. If the fence-stripped text still does not
// decode, the substring between the outermost braces is tried, which covers
// replies wrapped in prose. validate may be nil.
func DecodeModelJSON(raw string, v any, validate func() bool) error {
	cleaned := StripCodeFences(raw)

	if err := json.Unmarshal([]byte(cleaned), v); err != nil {
		start := strings.Index(cleaned, "{")
		end := strings.LastIndex(cleaned, "}")
		if start < 0 || end <= start {
			return fmt.Errorf("decode model reply: %w", err)
		}
		if err := json.Unmarshal([]byte(cleaned[start:end+1]), v); err != nil {
			return fmt.Errorf("decode model reply: %w", err)
		}
	}

	if validate != nil && !validate() {
		return errors.New("model reply failed validation")
	}
	return nil
}
