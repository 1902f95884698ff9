package prompt

import (
	"reflect"
	"strings"
	"testing"
)

func TestKeywordsPrompt(t *testing.T) {
	p := Keywords("Rover lands on Mars", "The rover touched down.")
	for _, want := range []string{
		"extract the 2 or 3 most relevant",
		"Title: Rover lands on Mars",
		"Content: The rover touched down.",
		"Return only a JSON array of strings.",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q:\n%s", want, p)
		}
	}
}

func TestSummaryPrompt(t *testing.T) {
	p := Summary("technology", []string{"Chip sales soar", "New phone launched"})
	if !strings.Contains(p, `Based on the topic "technology"`) {
		t.Errorf("prompt missing topic:\n%s", p)
	}
	if !strings.Contains(p, "- Chip sales soar\n- New phone launched\n") {
		t.Errorf("prompt missing bullet list:\n%s", p)
	}
	if !strings.HasSuffix(p, "Generate the summary only.") {
		t.Errorf("unexpected prompt ending:\n%s", p)
	}
}

func TestParseKeywords(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"plain", `["NASA", "Mars rover"]`, []string{"NASA", "Mars rover"}},
		{"fenced", "```json\n[\"NASA\", \"Jezero crater\"]\n```", []string{"NASA", "Jezero crater"}},
		{"prose around", `Here are the keywords: ["Apple", "iPhone 16"] Hope this helps.`, []string{"Apple", "iPhone 16"}},
		{"trailing comma", "[\n  \"OpenAI\",\n  \"GPT-5\",\n]", []string{"OpenAI", "GPT-5"}},
		{"comments", "[\"Fed\", // central bank\n \"interest rates\"]", []string{"Fed", "interest rates"}},
		{"blanks and non strings", `["  ", "Tesla", 42, " Elon Musk "]`, []string{"Tesla", "Elon Musk"}},
		{"empty array", `[]`, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseKeywords(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseKeywords_Invalid(t *testing.T) {
	for _, in := range []string{"", "no array here", `["unterminated`, `[1, 2`} {
		if _, err := ParseKeywords(in); err == nil {
			t.Errorf("expected error for %q", in)
		}
	}
}

func TestSanitizeModelText_RemovesInlineParenthesizedDisclaimer(t *testing.T) {
	in := "Markets rallied today.\n(Note: This summary was generated automatically and may contain errors.) Investors cheered the rate cut."
	out := SanitizeModelText(in)
	if strings.Contains(strings.ToLower(out), "note:") {
		t.Errorf("output still contains disclaimer: %q", out)
	}
	if !strings.Contains(out, "Investors cheered the rate cut.") {
		t.Errorf("expected content preserved after disclaimer removal, got: %q", out)
	}
}

func TestSanitizeModelText_RemovesFullLineNote(t *testing.T) {
	in := "Note: I am an AI and cannot browse the news.\nMarkets rallied today."
	out := SanitizeModelText(in)
	if out != "Markets rallied today." {
		t.Errorf("disclaimer line was not removed: %q", out)
	}
}

func TestSanitizeModelText_RemovesBracketedDisclaimer(t *testing.T) {
	in := "[Note: generated text] Markets rallied today."
	out := SanitizeModelText(in)
	if out != "Markets rallied today." {
		t.Errorf("bracketed disclaimer was not removed: %q", out)
	}
}

func TestSanitizeModelText_StripsFences(t *testing.T) {
	in := "```markdown\n**Tech** stocks climbed.\n```"
	if out := SanitizeModelText(in); out != "**Tech** stocks climbed." {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestClip(t *testing.T) {
	if got := Clip("  short \n text ", 100); got != "short text" {
		t.Errorf("unexpected clip: %q", got)
	}
	long := strings.Repeat("Sentence one is here. ", 10)
	got := Clip(long, 50)
	if !strings.HasSuffix(got, ".") || len([]rune(got)) > 50 {
		t.Errorf("expected sentence boundary cut within limit, got %q", got)
	}
	if got := Clip("ééééééé", 3); got != "ééé" {
		t.Errorf("expected rune safe cut, got %q", got)
	}
}
