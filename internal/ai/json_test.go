package ai

import (
	"testing"
	"unicode/utf8"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestExtractJSONPlain(t *testing.T) {
	var p payload
	if err := extractJSON(`{"name": "a", "count": 2}`, &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "a" || p.Count != 2 {
		t.Errorf("got %+v", p)
	}
}

func TestExtractJSONMarkdownFences(t *testing.T) {
	var p payload
	input := "```json\n{\"name\": \"fenced\", \"count\": 1}\n```"
	if err := extractJSON(input, &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "fenced" {
		t.Errorf("name = %q", p.Name)
	}
}

func TestExtractJSONSurroundedByProse(t *testing.T) {
	var p payload
	input := `Sure! Here is the analysis you asked for:

{"name": "prose", "count": 3}

Let me know if you need anything else.`
	if err := extractJSON(input, &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "prose" || p.Count != 3 {
		t.Errorf("got %+v", p)
	}
}

func TestExtractJSONBracesInsideStrings(t *testing.T) {
	var p payload
	input := `{"name": "has {braces} and \"quotes\"", "count": 4}`
	if err := extractJSON(input, &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Count != 4 {
		t.Errorf("count = %d", p.Count)
	}
}

func TestExtractJSONNoObject(t *testing.T) {
	var p payload
	if err := extractJSON("there is no JSON here", &p); err == nil {
		t.Fatal("expected error for prose-only input")
	}
}

func TestExtractJSONNested(t *testing.T) {
	var v struct {
		Outer struct {
			Inner string `json:"inner"`
		} `json:"outer"`
	}
	if err := extractJSON(`noise {"outer": {"inner": "deep"}} trailing`, &v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Outer.Inner != "deep" {
		t.Errorf("inner = %q", v.Outer.Inner)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("got %q", got)
	}
	if got := truncate("  padded  ", 10); got != "padded" {
		t.Errorf("got %q", got)
	}
	long := truncate("abcdefghij", 5)
	if long != "abcde…" {
		t.Errorf("got %q", long)
	}
}

func TestTruncateMultiByte(t *testing.T) {
	got := truncate("Überweisung für Lebensmittel im Supermarkt", 12)
	if !utf8.ValidString(got) {
		t.Errorf("truncation produced invalid UTF-8: %q", got)
	}
	if got != "Überweisung…" {
		t.Errorf("got %q", got)
	}
}
