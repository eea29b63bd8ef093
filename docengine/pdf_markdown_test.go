package docengine

import "testing"

func TestToMarkdown_PromotesHeadingLine(t *testing.T) {
	sections := []Section{{Text: "Introduction\nSome body text here."}}
	md := toMarkdown(sections)
	if md != "## Introduction\nSome body text here." {
		t.Fatalf("got %q", md)
	}
}

func TestToMarkdown_RendersColumnRunsAsTableRow(t *testing.T) {
	sections := []Section{{Text: "Name    Score    Grade"}}
	md := toMarkdown(sections)
	want := "| Name | Score | Grade |"
	if md != want {
		t.Fatalf("got %q, want %q", md, want)
	}
}

func TestIsHeadingLine_RejectsSentences(t *testing.T) {
	if isHeadingLine("This is a full sentence about something.") {
		t.Fatal("sentence should not be treated as a heading")
	}
}

func TestIsHeadingLine_AcceptsShortTitleCase(t *testing.T) {
	if !isHeadingLine("Results And Discussion") {
		t.Fatal("short title-case line should be treated as a heading")
	}
}
