package service

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestExtractDraft_FullMessage(t *testing.T) {
	msg := "2BR apartment near Times Square, $1500, utilities $200, 0.5 miles, furnished, pet friendly, quiet, clean, speaks Spanish"
	d := ExtractDraft(msg)

	if d.Title != "Cozy 2BR near Campus" {
		t.Errorf("title = %q", d.Title)
	}
	if d.Rent.String() != "1500" {
		t.Errorf("rent = %s", d.Rent)
	}
	if d.Utilities.String() != "200" {
		t.Errorf("utilities = %s", d.Utilities)
	}
	if d.DistanceToCampus.String() != "0.5" {
		t.Errorf("distance = %s", d.DistanceToCampus)
	}
	if !d.IsFurnished || !d.AllowsPets {
		t.Errorf("furnished=%v pets=%v, want both true", d.IsFurnished, d.AllowsPets)
	}
	if !d.VibeTags.Contains("Quiet") || !d.VibeTags.Contains("Clean") {
		t.Errorf("vibe tags = %v", d.VibeTags)
	}
	if !reflect.DeepEqual([]string(d.Languages), []string{"English", "Spanish"}) {
		t.Errorf("languages = %v", d.Languages)
	}
	if d.Address != "Times Square" {
		t.Errorf("address = %q", d.Address)
	}
	if d.Description != msg {
		t.Errorf("description should be the message verbatim")
	}
}

func TestExtractDraft_Defaults(t *testing.T) {
	d := ExtractDraft("Room for rent, message me")

	if d.Title != defaultTitle {
		t.Errorf("title = %q", d.Title)
	}
	if d.Rent.String() != "1200" || d.Utilities.String() != "150" || d.DistanceToCampus.String() != "0.8" {
		t.Errorf("numeric defaults = %s/%s/%s", d.Rent, d.Utilities, d.DistanceToCampus)
	}
	if d.IsFurnished || d.AllowsPets {
		t.Errorf("flags should default to false")
	}
	if !reflect.DeepEqual([]string(d.VibeTags), []string{"Quiet", "Study-friendly"}) {
		t.Errorf("vibe tags = %v", d.VibeTags)
	}
	if !reflect.DeepEqual([]string(d.Languages), []string{"English"}) {
		t.Errorf("languages = %v", d.Languages)
	}
	if d.Address != defaultAddress {
		t.Errorf("address = %q", d.Address)
	}
}

func TestExtractDraft_Title(t *testing.T) {
	tests := []struct {
		msg  string
		want string
	}{
		{"Lovely 2 bedroom flat", "Cozy 2BR near Campus"},
		{"studio with 3br vibes", "Modern Studio Apartment"},
		{"3 Bedroom house", "Spacious 3BR House"},
		{"Industrial LOFT", "Downtown Loft"},
		{"2br and a studio", "Cozy 2BR near Campus"},
		{"basement room", "Room Available"},
	}
	for _, tt := range tests {
		if got := ExtractDraft(tt.msg).Title; got != tt.want {
			t.Errorf("title(%q) = %q, want %q", tt.msg, got, tt.want)
		}
	}
}

func TestExtractDraft_Numbers(t *testing.T) {
	tests := []struct {
		name      string
		msg       string
		rent      string
		utilities string
		distance  string
	}{
		{"first dollar amount is rent", "$950 a month, deposit $500", "950", "150", "0.8"},
		{"rent capped at four digits", "$12345 total", "1234", "150", "0.8"},
		{"utility singular", "Utility: about $90", "90", "90", "0.8"},
		{"utility after rent", "$1100 rent, utility $80", "1100", "80", "0.8"},
		{"plural utilities", "$1000, utilities $120", "1000", "120", "0.8"},
		{"leading zero normalized", "$0950 a month", "950", "150", "0.8"},
		{"trailing zero normalized", "0.50 miles out", "1200", "150", "0.5"},
		{"utilities without dollar", "utilities 80 included", "1200", "150", "0.8"},
		{"utilities on another line", "utilities included\n$75 deposit", "75", "150", "0.8"},
		{"utilities reuse rent amount when rent follows", "utilities included, $900/month", "900", "900", "0.8"},
		{"distance integer", "2 miles from campus", "1200", "150", "2"},
		{"distance abbreviation", "1.25mi walk", "1200", "150", "1.25"},
		{"distance mile", "about 3 Mile", "1200", "150", "3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := ExtractDraft(tt.msg)
			if d.Rent.String() != tt.rent {
				t.Errorf("rent = %s, want %s", d.Rent, tt.rent)
			}
			if d.Utilities.String() != tt.utilities {
				t.Errorf("utilities = %s, want %s", d.Utilities, tt.utilities)
			}
			if d.DistanceToCampus.String() != tt.distance {
				t.Errorf("distance = %s, want %s", d.DistanceToCampus, tt.distance)
			}
		})
	}
}

func TestExtractDraft_Flags(t *testing.T) {
	tests := []struct {
		msg       string
		furnished bool
		pets      bool
	}{
		{"FURNISHED room", true, false},
		{"Dogs welcome", false, true},
		{"cat lovers", false, true},
		{"new carpet throughout", false, true},
		{"semi-furnished, no animals", true, false},
	}
	for _, tt := range tests {
		d := ExtractDraft(tt.msg)
		if d.IsFurnished != tt.furnished || d.AllowsPets != tt.pets {
			t.Errorf("%q: furnished=%v pets=%v, want %v/%v", tt.msg, d.IsFurnished, d.AllowsPets, tt.furnished, tt.pets)
		}
	}
}

func TestExtractDraft_Address(t *testing.T) {
	tests := []struct {
		msg  string
		want string
	}{
		{"Room near Times Square, $1500", "Times Square"},
		{"Apartment at Main Street.", "Main Street"},
		{"Sublet in downtown with parking", "downtown"},
		{"NEAR Central Park", "Central Park"},
		{"Great location near campus", "location"},
		{"flat available now", "available"},
		{"Room available now", "Near Campus"},
		{"Room near 5th Avenue", "Near Campus"},
	}
	for _, tt := range tests {
		if got := ExtractDraft(tt.msg).Address; got != tt.want {
			t.Errorf("address(%q) = %q, want %q", tt.msg, got, tt.want)
		}
	}
}

func TestExtractDraft_Deterministic(t *testing.T) {
	msg := "Cozy studio in Brooklyn, $1100, utilities ~$120, 1.5 miles, social, creative, French and German spoken"
	a, err := json.Marshal(ExtractDraft(msg))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	b, err := json.Marshal(ExtractDraft(msg))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(a) != string(b) {
		t.Fatalf("extraction is not deterministic:\n%s\n%s", a, b)
	}
}

func TestExtractDraft_JSONShape(t *testing.T) {
	raw, err := json.Marshal(ExtractDraft("studio, $800"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m["rent"] != "800" {
		t.Errorf("rent should serialize as a string, got %#v", m["rent"])
	}
	for _, key := range []string{"title", "description", "utilities", "distanceToCampus", "isFurnished", "allowsPets", "vibeTags", "languages", "address"} {
		if _, ok := m[key]; !ok {
			t.Errorf("missing key %q", key)
		}
	}
}

func TestListingExtractor_Extract(t *testing.T) {
	delay := &recordingDelayer{}
	ex := NewListingExtractor(delay, 2*time.Second, nil, nil)

	d, err := ex.Extract(context.Background(), "loft near Union Square $2000")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if d.Title != "Downtown Loft" || d.Address != "Union Square" {
		t.Errorf("unexpected draft %+v", d)
	}
	if len(delay.waits) != 1 || delay.waits[0] != 2*time.Second {
		t.Errorf("expected one 2s wait, got %v", delay.waits)
	}
}

func TestListingExtractor_EmptyMessage(t *testing.T) {
	delay := &recordingDelayer{}
	ex := NewListingExtractor(delay, 2*time.Second, nil, nil)

	for _, msg := range []string{"", "   \n\t"} {
		d, err := ex.Extract(context.Background(), msg)
		if d != nil {
			t.Fatalf("expected no draft for %q", msg)
		}
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if verr.Message != messageRequired {
			t.Errorf("message = %q", verr.Message)
		}
	}
	if len(delay.waits) != 0 {
		t.Errorf("validation failures should not wait, got %v", delay.waits)
	}
}

func TestListingExtractor_DelayFailure(t *testing.T) {
	ex := NewListingExtractor(&recordingDelayer{err: context.DeadlineExceeded}, time.Second, nil, nil)

	_, err := ex.Extract(context.Background(), "studio")
	var perr *ProcessingError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ProcessingError, got %v", err)
	}
	if perr.Message != parseFailureMessage {
		t.Errorf("message = %q", perr.Message)
	}
	if IsValidationError(err) {
		t.Error("processing failure reported as validation error")
	}
}

func TestListingExtractor_RecoversPanics(t *testing.T) {
	boom := DelayFunc(func(context.Context, time.Duration) error { panic("boom") })
	ex := NewListingExtractor(boom, time.Second, nil, nil)

	d, err := ex.Extract(context.Background(), "studio")
	if d != nil {
		t.Fatal("expected no draft after panic")
	}
	var perr *ProcessingError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ProcessingError, got %v", err)
	}
}
