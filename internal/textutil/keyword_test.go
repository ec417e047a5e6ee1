package textutil

import "testing"

func TestExtractKeyword(t *testing.T) {
	stop := EnglishStopwords()
	tests := []struct {
		name        string
		description string
		want        string
	}{
		{"most frequent", "A photo of a sunset over red mountains and a red sky", "red"},
		{"tie first occurrence", "Ocean waves meet sandy beach", "ocean"},
		{"tie after filtering", "the the cat dog dog cat", "cat"},
		{"case folded", "Garden GARDEN roses", "garden"},
		{"digits dropped", "2024 2024 2024 invoice", "invoice"},
		{"only stop words", "it is what it is", "images"},
		{"empty", "", "images"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractKeyword(tt.description, stop, "images"); got != tt.want {
				t.Fatalf("ExtractKeyword(%q) = %q, want %q", tt.description, got, tt.want)
			}
		})
	}
}

func TestExtractKeywordDeterministic(t *testing.T) {
	stop := EnglishStopwords()
	description := "alpha beta gamma delta alpha beta gamma delta epsilon"
	first := ExtractKeyword(description, stop, "files")
	for i := 0; i < 50; i++ {
		if got := ExtractKeyword(description, stop, "files"); got != first {
			t.Fatalf("run %d returned %q, first run %q", i, got, first)
		}
	}
	if first != "alpha" {
		t.Fatalf("expected first-seen tie winner alpha, got %q", first)
	}
}

func TestStopwordSetWith(t *testing.T) {
	base := EnglishStopwords()
	extended := base.With("Scan", " receipt ")
	if !extended.Contains("scan") || !extended.Contains("receipt") {
		t.Fatal("expected extra words to be added lowercased")
	}
	if base.Contains("scan") {
		t.Fatal("With must not mutate the receiver")
	}
	if got := ExtractKeyword("scan scan receipt invoice", extended, "documents"); got != "invoice" {
		t.Fatalf("expected invoice, got %q", got)
	}
}
