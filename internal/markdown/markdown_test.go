package markdown

import (
	"reflect"
	"testing"
)

func TestToHTML(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"plain", "plain"},
		{"**bold** text", "<b>bold</b> text"},
		{"*italic*", "<i>italic</i>"},
		{"_under_", "<u>under</u>"},
		{"one\ntwo", "one<br>two"},
		{"a < b & c", "a &lt; b &amp; c"},
		{"**bold** and *it*", "<b>bold</b> and <i>it</i>"},
		{"lonely * star", "lonely * star"},
		{"*not\nclosed*", "*not<br>closed*"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ToHTML(tt.input); got != tt.want {
				t.Errorf("ToHTML(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestToPlainText(t *testing.T) {
	got := ToPlainText("**Hello** *there*\n_friend_")
	if got != "Hello there\nfriend" {
		t.Errorf("got %q", got)
	}
}

func TestCharacterCountExcludesMarkupAndNewlines(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"", 0},
		{"abc", 3},
		{"**abc**", 3},
		{"ab\ncd", 4},
		{"*a* _b_ **c**", 5},
		{"héllo", 5},
		{"é", 1},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := CharacterCount(tt.input); got != tt.want {
				t.Errorf("CharacterCount(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestLineCharacterCounts(t *testing.T) {
	got := LineCharacterCounts("**one**\ntwo two")
	want := []int{3, 7}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if got := LineCharacterCounts(""); len(got) != 0 {
		t.Errorf("expected no lines for empty text, got %v", got)
	}
}

func TestRender(t *testing.T) {
	tags := Tags{
		Bold:      [2]string{`{\b1}`, `{\b0}`},
		Italic:    [2]string{`{\i1}`, `{\i0}`},
		Underline: [2]string{`{\u1}`, `{\u0}`},
	}
	got := Render("**a** *b* _c_ & d", tags)
	want := `{\b1}a{\b0} {\i1}b{\i0} {\u1}c{\u0} & d`
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}
