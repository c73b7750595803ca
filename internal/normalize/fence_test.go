package normalize

import "testing"

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "  hello world \n", "hello world"},
		{"untagged", "```\nx := 1\n```", "x := 1"},
		{"json tag", "```json\n{\"a\":1}\n```", "{\"a\":1}"},
		{"upper tag with spaces", "```JSON  \n{\"a\":1}\n```  ", "{\"a\":1}"},
		{"language tag", "```c++\nint x;\n```", "int x;"},
		{"inline json", "```json {\"a\":1}```", "{\"a\":1}"},
		{"crlf", "```go\r\nfmt.Println()\r\n```", "fmt.Println()"},
		{"unterminated", "```python\nprint(1)\n", "print(1)"},
		{"trailing commentary", "```go\nx := 1\n```\nThis declares x.", "x := 1"},
		{"nested layers", "```\n```json\n{}\n```\n```", "{}"},
		{"code on fence line", "```x = 1\n```", "x = 1"},
		{"empty fence", "```\n```", ""},
		{"inner fence kept", "before\n```\ncode\n```", "before\n```\ncode\n```"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripFences(tt.in); got != tt.want {
				t.Errorf("StripFences(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestStripFences_Idempotent(t *testing.T) {
	inputs := []string{
		"This sets x to 1.",
		"{\"time_complexity\": \"O(n)\"}",
		"```json\n{\"time_complexity\": \"O(n)\"}\n```",
		"def f():\n    return 1",
	}
	for _, in := range inputs {
		once := StripFences(in)
		if twice := StripFences(once); twice != once {
			t.Errorf("not idempotent for %q: %q then %q", in, once, twice)
		}
		wrapped := "```\n" + in + "\n```"
		if got := StripFences(wrapped); got != once {
			t.Errorf("extra fence layer changed result for %q: %q vs %q", in, got, once)
		}
		tagged := "```json\n" + in + "\n```"
		if got := StripFences(tagged); got != once {
			t.Errorf("extra tagged layer changed result for %q: %q vs %q", in, got, once)
		}
	}
}

func TestExtractFencedBlock(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"Here you go:\n```rust\nfn main() {}\n```\nEnjoy!", "fn main() {}", true},
		{"```\na\n```\n```\nb\n```", "a", true},
		{"no fences here", "", false},
		{"```unterminated\ncode", "", false},
		{"```inline```", "", false},
	}
	for _, tt := range tests {
		got, ok := ExtractFencedBlock(tt.in)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("ExtractFencedBlock(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}
