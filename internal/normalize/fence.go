package normalize

import (
	"regexp"
	"strings"
)

const fence = "```"

// fenceTag matches the info string that may follow an opening fence.
var fenceTag = regexp.MustCompile(`^[A-Za-z0-9_+#.\-]*[ \t]*\r?\n`)

// StripFences trims whitespace and removes every wrapping code-fence layer
// together with its language tag. Text without a leading fence is returned
// trimmed and otherwise untouched. An unterminated opening fence (a reply
// cut off by the token limit) is still removed.
func StripFences(text string) string {
	s := strings.TrimSpace(text)
	for strings.HasPrefix(s, fence) {
		body := s[len(fence):]
		if loc := fenceTag.FindStringIndex(body); loc != nil {
			body = body[loc[1]:]
		} else {
			body = trimInlineTag(body)
		}

		trimmed := strings.TrimRight(body, " \t\r\n")
		switch {
		case strings.HasSuffix(trimmed, fence):
			body = trimmed[:len(trimmed)-len(fence)]
		case strings.Contains(trimmed, "\n"+fence):
			body = trimmed[:strings.LastIndex(trimmed, "\n"+fence)]
		default:
			body = trimmed
		}
		s = strings.TrimSpace(body)
	}
	return s
}

// trimInlineTag drops a "json" tag written on the same line as the payload.
func trimInlineTag(body string) string {
	if len(body) >= 4 && strings.EqualFold(body[:4], "json") {
		rest := body[4:]
		if rest == "" || rest[0] == ' ' || rest[0] == '\t' || rest[0] == '{' || rest[0] == '[' {
			return rest
		}
	}
	return body
}

// ExtractFencedBlock returns the body of the first complete fenced block in
// text, used when a reply wraps its payload in prose.
func ExtractFencedBlock(text string) (string, bool) {
	start := strings.Index(text, fence)
	if start < 0 {
		return "", false
	}
	rest := text[start+len(fence):]
	nl := strings.IndexByte(rest, '\n')
	if nl < 0 {
		return "", false
	}
	if tag := strings.TrimSpace(rest[:nl]); strings.ContainsAny(tag, " `") {
		return "", false
	}
	body := rest[nl+1:]
	end := strings.Index(body, fence)
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(body[:end]), true
}
