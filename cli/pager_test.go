package cli

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFindLines(t *testing.T) {
	lines := []string{
		"# Worldwide Fire Data Visualization",
		"\x1b[1mChina\x1b[0m ████ 10",
		"United States ██ 5",
		"china again",
	}

	tests := []struct {
		query string
		want  []int
	}{
		{"china", []int{1, 3}},
		{"China", []int{1}},
		{"█", []int{1, 2}},
		{"Atlantis", nil},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, findLines(lines, tt.query)); diff != "" {
				t.Errorf("findLines() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPagerJumpWraps(t *testing.T) {
	m := NewPager("a\nb\na\nc")
	m.setMatches(findLines(m.lines, "a"))

	m.jump(1)
	if m.current != 1 {
		t.Errorf("current = %d, want 1", m.current)
	}
	m.jump(1)
	if m.current != 0 {
		t.Errorf("current = %d, want 0 after wrapping", m.current)
	}
	m.jump(-1)
	if m.current != 1 {
		t.Errorf("current = %d, want 1 after wrapping back", m.current)
	}
}
