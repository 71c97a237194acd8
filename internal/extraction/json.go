package extraction

import "strings"

// CleanJSONBlock strips the markdown fencing and surrounding prose that
// generation models wrap around JSON payloads and returns the outermost JSON
// value. Returns "" when the text contains no JSON at all.
func CleanJSONBlock(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}
	return sliceOutermostJSON(s)
}

// sliceOutermostJSON returns the first balanced {...} or [...] block in s,
// tracking string literals so braces inside values don't end the scan. An
// unterminated block is returned as-is and left for the JSON decoder to
// reject.
func sliceOutermostJSON(s string) string {
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return s[start:]
}
