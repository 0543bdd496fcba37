package domain

import (
	"testing"
)

func TestNote_Valid(t *testing.T) {
	tests := []struct {
		name string
		note Note
		want bool
	}{
		{"valid", Note{Text: "Introduces X", PageNumbers: []int{1, 2}}, true},
		{"empty text", Note{Text: "  ", PageNumbers: []int{1}}, false},
		{"no pages", Note{Text: "Introduces X"}, false},
		{"zero page", Note{Text: "Introduces X", PageNumbers: []int{0}}, false},
		{"negative page", Note{Text: "Introduces X", PageNumbers: []int{2, -1}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.note.Valid(); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestPaper_HasNotes(t *testing.T) {
	var nilPaper *Paper
	if nilPaper.HasNotes() {
		t.Error("nil paper should not have notes")
	}

	paper := &Paper{URL: "u"}
	if paper.HasNotes() {
		t.Error("paper without notes should report false")
	}

	paper.Notes = []Note{{Text: "a", PageNumbers: []int{1}}, {Text: "b", PageNumbers: []int{2}}}
	if !paper.HasNotes() {
		t.Error("paper with notes should report true")
	}

	texts := paper.NoteTexts()
	if len(texts) != 2 || texts[0] != "a" || texts[1] != "b" {
		t.Errorf("unexpected note texts: %v", texts)
	}
}

func TestTextSegment_WithURL(t *testing.T) {
	seg := NewTextSegment("hello", "paper.pdf")
	tagged := seg.WithURL("https://example.com/p.pdf")

	if tagged.Metadata[MetaURL] != "https://example.com/p.pdf" {
		t.Errorf("expected url metadata, got %q", tagged.Metadata[MetaURL])
	}
	if tagged.Metadata[MetaSource] != "paper.pdf" {
		t.Errorf("expected source to be preserved, got %q", tagged.Metadata[MetaSource])
	}
	if _, ok := seg.Metadata[MetaURL]; ok {
		t.Error("original segment metadata should not be modified")
	}
}

func TestJoinSegments(t *testing.T) {
	segments := []TextSegment{
		NewTextSegment("first", "s"),
		NewTextSegment("second", "s"),
		NewTextSegment("third", "s"),
	}

	if got := JoinSegments(segments); got != "first\n\nsecond\n\nthird" {
		t.Errorf("unexpected join: %q", got)
	}
	if got := JoinSegments(nil); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestOutcome(t *testing.T) {
	ok := Succeeded("index")
	if !ok.OK() {
		t.Error("expected succeeded outcome to be OK")
	}

	failed := Failed("index", ErrPersistence)
	if failed.OK() {
		t.Error("expected failed outcome not to be OK")
	}
	if failed.Step != "index" {
		t.Errorf("expected step index, got %s", failed.Step)
	}
}
