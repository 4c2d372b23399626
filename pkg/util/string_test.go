package util

import (
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitHashtags(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"   ", nil},
		{"#go", []string{"#go"}},
		{"#go #cloud", []string{"#go", "#cloud"}},
		{"go cloud", []string{"#go", "#cloud"}},
		{"  #go   cloud  ", []string{"#go", "#cloud"}},
		{"#", nil},
	}

	for _, tc := range cases {
		if got := SplitHashtags(tc.in); !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("SplitHashtags(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestJoinCaption(t *testing.T) {
	if got := JoinCaption("hello", []string{"#a", "#b"}); got != "hello\n\n#a #b" {
		t.Fatalf("JoinCaption = %q", got)
	}
	if got := JoinCaption("hello", nil); got != "hello" {
		t.Fatalf("JoinCaption without hashtags = %q", got)
	}
	if got := JoinCaption("", []string{"#a"}); got != "#a" {
		t.Fatalf("JoinCaption with empty text = %q", got)
	}
}

func TestTruncateRunes(t *testing.T) {
	if got := TruncateRunes("short", 280); got != "short" {
		t.Fatalf("TruncateRunes must not touch short strings, got %q", got)
	}

	long := strings.Repeat("é", 300)
	got := TruncateRunes(long, 280)
	if n := utf8.RuneCountInString(got); n != 280 {
		t.Fatalf("truncated length = %d runes, want 280", n)
	}
	if !strings.HasSuffix(got, "…") {
		t.Fatalf("truncated string should end with an ellipsis")
	}

	if got := TruncateRunes("abc", 0); got != "" {
		t.Fatalf("zero limit should yield empty string, got %q", got)
	}
}
