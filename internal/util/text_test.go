package util

import (
	"reflect"
	"testing"
)

func TestNormalizeTitle(t *testing.T) {
	cases := map[string]string{
		"12. Dune: Part Two": "Dune: Part Two",
		"  Inside   Out 2 ":  "Inside Out 2",
		"1917":               "1917",
		"Cafe\u0301 Society": "Caf\u00e9 Society",
	}
	for in, want := range cases {
		if got := NormalizeTitle(in); got != want {
			t.Errorf("NormalizeTitle(%q) = %q want %q", in, got, want)
		}
	}
}

func TestNormalizeGenre(t *testing.T) {
	if got := NormalizeGenre(" sci-fi "); got != "Sci-fi" {
		t.Fatalf("got %q", got)
	}
	if got := NormalizeGenre("ACTION"); got != "Action" {
		t.Fatalf("got %q", got)
	}
	if got := NormalizeGenre(""); got != "" {
		t.Fatalf("got %q", got)
	}
}

func TestSplitList(t *testing.T) {
	got := SplitList("Action, Drama", "", "Horror")
	want := []string{"Action", "Drama", "Horror"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}
