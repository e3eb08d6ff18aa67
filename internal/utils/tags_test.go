package utils

import (
	"reflect"
	"testing"
)

func TestMatchVibeTags(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"none", "a room with a view", nil},
		{"vocabulary order", "clean and quiet", []string{"Quiet", "Clean"}},
		{"outdoor maps to outdoorsy", "outdoor lovers welcome", []string{"Outdoorsy"}},
		{"substring semantics", "students who study late", []string{"Study-friendly"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchVibeTags(tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MatchVibeTags(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestMatchLanguages(t *testing.T) {
	got := MatchLanguages("we speak portuguese, spanish and a bit of korean")
	want := []string{"Spanish", "Korean", "Portuguese"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestNormalizeVibeTag(t *testing.T) {
	tests := []struct {
		in    string
		want  string
		known bool
	}{
		{"study", "Study-friendly", true},
		{"Study-Friendly", "Study-friendly", true},
		{" tidy ", "Clean", true},
		{"laid-back", "Relaxed", true},
		{"OUTDOOR", "Outdoorsy", true},
		{"night owl", "Night Owl", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, known := NormalizeVibeTag(tt.in)
		if got != tt.want || known != tt.known {
			t.Errorf("NormalizeVibeTag(%q) = (%q, %v), want (%q, %v)", tt.in, got, known, tt.want, tt.known)
		}
	}
}

func TestNormalizeLanguage(t *testing.T) {
	if got, ok := NormalizeLanguage("english"); got != "English" || !ok {
		t.Errorf("got (%q, %v)", got, ok)
	}
	if got, ok := NormalizeLanguage("JAPANESE"); got != "Japanese" || !ok {
		t.Errorf("got (%q, %v)", got, ok)
	}
	if _, ok := NormalizeLanguage("klingon"); ok {
		t.Error("klingon should not be known")
	}
}

func TestVibeVector(t *testing.T) {
	vec := VibeVector([]string{"Quiet", "tidy", "unknown"})
	if len(vec) != len(VibeVocabulary) {
		t.Fatalf("expected %d dims, got %d", len(VibeVocabulary), len(vec))
	}
	if vec[0] != 1 || vec[4] != 1 {
		t.Errorf("expected quiet and clean dims set, got %v", vec)
	}
	var sum float32
	for _, v := range vec {
		sum += v
	}
	if sum != 2 {
		t.Errorf("expected two dims set, got %v", vec)
	}
}

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{"quiet", "Quiet", "calm", "clean"}, NormalizeVibeTag)
	want := []string{"Quiet", "Clean"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
