package extract

import "strings"

// StripCodeFences removes leading/trailing triple-backtick fences from a
// model response, tolerating a language tag on the opening fence.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	lines = lines[1:]
	if len(lines) > 0 && strings.HasPrefix(strings.TrimSpace(lines[len(lines)-1]), "```") {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// FirstCompleteJSON scans s for the first balanced JSON object or array and
// returns it. It tracks bracket depth, in-string and escape state, so nested
// structures and escaped quotes inside strings are handled correctly. Returns
// ("", false) when no balanced value exists.
func FirstCompleteJSON(s string) (string, bool) {
	start := -1
	var stack []byte
	inStr := false
	esc := false

	for i := 0; i < len(s); i++ {
		ch := s[i]

		if start < 0 {
			if ch == '{' || ch == '[' {
				start = i
				stack = append(stack[:0], ch)
				inStr = false
				esc = false
			}
			continue
		}

		if inStr {
			switch {
			case esc:
				esc = false
			case ch == '\\':
				esc = true
			case ch == '"':
				inStr = false
			}
			continue
		}

		switch ch {
		case '"':
			inStr = true
		case '{', '[':
			stack = append(stack, ch)
		case '}', ']':
			if len(stack) == 0 {
				return "", false
			}
			open := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if (open == '{' && ch != '}') || (open == '[' && ch != ']') {
				return "", false
			}
			if len(stack) == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
