package normalize

import "regexp"

// Big-O notation with at most one level of nested parentheses, e.g. O(n log(n)).
const bigO = `\b([Oo]\((?:[^()\n]|\([^()\n]*\))*\))`

// A label followed by Big-O on the same line, or at the start of the next
// non-blank line as markdown replies often do.
const (
	sameLine = `[^\n;]*?`
	nextLine = `[^\n;]*\n(?:[ \t]*\n)?[ \t>*_` + "`" + `-]*`
)

var (
	timePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i:time[\s_-]*complexity)` + sameLine + bigO),
		regexp.MustCompile(`(?i:time[\s_-]*complexity)` + nextLine + bigO),
	}
	spacePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i:space[\s_-]*complexity)` + sameLine + bigO),
		regexp.MustCompile(`(?i:space[\s_-]*complexity)` + nextLine + bigO),
	}
)

func matchComplexity(patterns []*regexp.Regexp, text string) string {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); len(m) >= 2 {
			return m[1]
		}
	}
	return ""
}
