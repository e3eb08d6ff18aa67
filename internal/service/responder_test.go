package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"roomie/internal/model"
	"roomie/internal/randx"
)

type recordingDelayer struct {
	waits []time.Duration
	err   error
}

func (r *recordingDelayer) Wait(_ context.Context, d time.Duration) error {
	r.waits = append(r.waits, d)
	return r.err
}

func newTestSelector(t *testing.T, seed uint64, opts ...SelectorOption) (*ResponseSelector, *recordingDelayer) {
	t.Helper()
	delay := &recordingDelayer{}
	sel, err := NewResponseSelector(DefaultCatalogue(), randx.NewSeeded(seed), delay, opts...)
	if err != nil {
		t.Fatalf("new selector: %v", err)
	}
	return sel, delay
}

// splitFollowUp strips a trailing follow-up question, if any, and reports
// whether one was found.
func splitFollowUp(cat *Catalogue, reply string) (string, bool) {
	for _, f := range cat.FollowUps {
		if strings.HasSuffix(reply, " "+f) {
			return strings.TrimSuffix(reply, " "+f), true
		}
	}
	return reply, false
}

func assertInCategory(t *testing.T, cat *Catalogue, name, reply string) {
	t.Helper()
	base, _ := splitFollowUp(cat, reply)
	c, ok := cat.Category(name)
	if !ok {
		t.Fatalf("unknown category %q", name)
	}
	for _, r := range c.Replies {
		if r == base {
			return
		}
	}
	t.Errorf("reply %q is not a %s reply", reply, name)
}

func TestResponseSelector_SingleCategory(t *testing.T) {
	sel, _ := newTestSelector(t, 1)
	cat := sel.Catalogue()

	tests := []struct {
		message  string
		category string
	}{
		{"How much is the RENT?", "rent"},
		{"what's the monthly total", "rent"},
		{"Can I tour it on Friday?", "viewing"},
		{"Does it come with furniture?", "furnished"},
		{"Is internet included?", "utilities"},
		{"How do I apply?", "application"},
		{"Do you have pictures?", "photos"},
		{"Is the room still available?", "availability"},
		{"is it vacant", "availability"},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			for i := 0; i < 20; i++ {
				reply, err := sel.Reply(context.Background(), tt.message, nil)
				if err != nil {
					t.Fatalf("reply: %v", err)
				}
				if reply.Category != tt.category {
					t.Fatalf("category = %q, want %q", reply.Category, tt.category)
				}
				assertInCategory(t, cat, tt.category, reply.Text)
			}
		})
	}
}

func TestResponseSelector_FirstDeclaredCategoryWins(t *testing.T) {
	sel, _ := newTestSelector(t, 2)
	cat := sel.Catalogue()

	tests := []struct {
		message string
		want    string
	}{
		// rent is declared before viewing
		{"can I see the place and what's the price", "rent"},
		// viewing is declared before utilities
		{"is water included? I'd like to visit", "viewing"},
		// furnished is declared before availability
		{"is the furnished room available", "furnished"},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			got, ok := sel.Match(tt.message)
			if !ok || got.Name != tt.want {
				t.Fatalf("Match = %q (ok=%v), want %q", got.Name, ok, tt.want)
			}
			reply, err := sel.Reply(context.Background(), tt.message, nil)
			if err != nil {
				t.Fatalf("reply: %v", err)
			}
			assertInCategory(t, cat, tt.want, reply.Text)
		})
	}
}

func TestResponseSelector_DefaultReply(t *testing.T) {
	sel, _ := newTestSelector(t, 3)
	cat := sel.Catalogue()

	for i := 0; i < 20; i++ {
		reply, err := sel.Reply(context.Background(), "hello there!", &model.ChatContext{Recipient: "Sam", IsPremium: true})
		if err != nil {
			t.Fatalf("reply: %v", err)
		}
		base, _ := splitFollowUp(cat, reply.Text)
		if base != cat.DefaultReply {
			t.Fatalf("expected default reply, got %q", reply.Text)
		}
		if reply.Category != "" {
			t.Fatalf("expected no category, got %q", reply.Category)
		}
	}
}

func TestResponseSelector_FollowUpProbability(t *testing.T) {
	never, _ := newTestSelector(t, 4, WithFollowUpProbability(0))
	always, _ := newTestSelector(t, 4, WithFollowUpProbability(1))
	cat := never.Catalogue()

	for i := 0; i < 10; i++ {
		text, _, followUp := never.Compose("how much is rent")
		if followUp {
			t.Fatal("follow-up appended with probability 0")
		}
		if _, found := splitFollowUp(cat, text); found {
			t.Fatalf("unexpected follow-up in %q", text)
		}

		text, _, followUp = always.Compose("how much is rent")
		if !followUp {
			t.Fatal("follow-up missing with probability 1")
		}
		if _, found := splitFollowUp(cat, text); !found {
			t.Fatalf("expected follow-up in %q", text)
		}
	}
}

func TestResponseSelector_FollowUpRoughlyHalf(t *testing.T) {
	sel, _ := newTestSelector(t, 5)
	n, with := 2000, 0
	for i := 0; i < n; i++ {
		if _, _, followUp := sel.Compose("hi"); followUp {
			with++
		}
	}
	if with < n*4/10 || with > n*6/10 {
		t.Errorf("follow-up rate %d/%d is far from one half", with, n)
	}
}

func TestResponseSelector_SeededIsReproducible(t *testing.T) {
	a, _ := newTestSelector(t, 99)
	b, _ := newTestSelector(t, 99)
	for i := 0; i < 10; i++ {
		ta, _, _ := a.Compose("when can I view it?")
		tb, _, _ := b.Compose("when can I view it?")
		if ta != tb {
			t.Fatalf("seeded selectors diverged: %q vs %q", ta, tb)
		}
	}
}

func TestResponseSelector_DelayWithinRange(t *testing.T) {
	sel, delay := newTestSelector(t, 6, WithDelayRange(time.Second, 3*time.Second))
	for i := 0; i < 50; i++ {
		if _, err := sel.Reply(context.Background(), "rent?", nil); err != nil {
			t.Fatalf("reply: %v", err)
		}
	}
	if len(delay.waits) != 50 {
		t.Fatalf("expected 50 waits, got %d", len(delay.waits))
	}
	for _, d := range delay.waits {
		if d < time.Second || d >= 3*time.Second {
			t.Fatalf("delay %s outside [1s, 3s)", d)
		}
	}
}

func TestResponseSelector_TimestampFromClock(t *testing.T) {
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	sel, _ := newTestSelector(t, 7, WithClock(func() time.Time { return fixed }))

	reply, err := sel.Reply(context.Background(), "photos please", nil)
	if err != nil {
		t.Fatalf("reply: %v", err)
	}
	if !reply.Timestamp.Equal(fixed) {
		t.Errorf("timestamp = %v, want %v", reply.Timestamp, fixed)
	}
}

func TestResponseSelector_Failures(t *testing.T) {
	t.Run("empty message", func(t *testing.T) {
		sel, _ := newTestSelector(t, 8)
		_, err := sel.Reply(context.Background(), "   ", nil)
		var perr *ProcessingError
		if !errors.As(err, &perr) {
			t.Fatalf("expected ProcessingError, got %v", err)
		}
		if perr.Fallback != sel.Apology() {
			t.Errorf("fallback = %q, want apology", perr.Fallback)
		}
	})

	t.Run("delay interrupted", func(t *testing.T) {
		delay := &recordingDelayer{err: context.Canceled}
		sel, err := NewResponseSelector(DefaultCatalogue(), randx.NewSeeded(9), delay)
		if err != nil {
			t.Fatalf("new selector: %v", err)
		}
		_, err = sel.Reply(context.Background(), "rent?", nil)
		var perr *ProcessingError
		if !errors.As(err, &perr) || !errors.Is(err, context.Canceled) {
			t.Fatalf("expected ProcessingError wrapping context.Canceled, got %v", err)
		}
		if perr.Message != chatFailureMessage {
			t.Errorf("message = %q", perr.Message)
		}
	})
}

func TestNewResponseSelector_Validation(t *testing.T) {
	if _, err := NewResponseSelector(nil, randx.NewSeeded(1), NoDelay{}); err == nil {
		t.Error("expected error for nil catalogue")
	}
	if _, err := NewResponseSelector(DefaultCatalogue(), nil, NoDelay{}); err == nil {
		t.Error("expected error for nil rng")
	}
	if _, err := NewResponseSelector(DefaultCatalogue(), randx.NewSeeded(1), NoDelay{}, WithDelayRange(2*time.Second, time.Second)); err == nil {
		t.Error("expected error for inverted delay range")
	}
}

func TestResponseSelector_DuplicateTriggerBelongsToFirstCategory(t *testing.T) {
	cat, err := ParseCatalogue([]byte(`
default_reply: "default"
apology: "sorry"
categories:
  - name: first
    triggers: [deposit]
    replies: ["one"]
  - name: second
    triggers: [deposit, key]
    replies: ["two"]
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	sel, err := NewResponseSelector(cat, randx.NewSeeded(1), NoDelay{})
	if err != nil {
		t.Fatalf("new selector: %v", err)
	}

	if c, _ := sel.Match("what about the DEPOSIT"); c.Name != "first" {
		t.Errorf("deposit matched %q, want first", c.Name)
	}
	if c, _ := sel.Match("when do I get the key"); c.Name != "second" {
		t.Errorf("key matched %q, want second", c.Name)
	}
	text, _, _ := sel.Compose("nothing relevant")
	if text != "default" {
		t.Errorf("expected bare default without follow-ups, got %q", text)
	}
}
