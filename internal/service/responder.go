package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/cloudflare/ahocorasick"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"roomie/internal/metrics"
	"roomie/internal/model"
	"roomie/internal/randx"
)

const chatFailureMessage = "Failed to generate response"

// ResponseSelector picks a canned reply for a chat message. Category choice
// is deterministic; the reply text and the follow-up are drawn from rng.
type ResponseSelector struct {
	catalogue *Catalogue
	matcher   *ahocorasick.Matcher
	owners    []int // pattern index -> lowest category index declaring it

	rng      randx.Source
	delay    Delayer
	delayMin time.Duration
	delayMax time.Duration
	followUp float64
	now      func() time.Time
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// SelectorOption customizes a ResponseSelector
type SelectorOption func(*ResponseSelector)

// WithDelayRange sets the bounds of the simulated thinking time
func WithDelayRange(min, max time.Duration) SelectorOption {
	return func(s *ResponseSelector) {
		s.delayMin, s.delayMax = min, max
	}
}

// WithFollowUpProbability sets how often a follow-up question is appended
func WithFollowUpProbability(p float64) SelectorOption {
	return func(s *ResponseSelector) {
		s.followUp = p
	}
}

// WithClock overrides the timestamp source
func WithClock(now func() time.Time) SelectorOption {
	return func(s *ResponseSelector) {
		s.now = now
	}
}

// WithSelectorMetrics records reply categories
func WithSelectorMetrics(m *metrics.Metrics) SelectorOption {
	return func(s *ResponseSelector) {
		s.metrics = m
	}
}

// WithSelectorLogger sets the logger
func WithSelectorLogger(l *slog.Logger) SelectorOption {
	return func(s *ResponseSelector) {
		s.logger = l
	}
}

// NewResponseSelector compiles the catalogue triggers into one automaton.
func NewResponseSelector(cat *Catalogue, rng randx.Source, delay Delayer, opts ...SelectorOption) (*ResponseSelector, error) {
	if cat == nil {
		return nil, errors.New("selector: catalogue must not be nil")
	}
	if rng == nil {
		return nil, errors.New("selector: random source must not be nil")
	}
	if delay == nil {
		delay = TimerDelayer{}
	}

	s := &ResponseSelector{
		catalogue: cat,
		rng:       rng,
		delay:     delay,
		delayMin:  time.Second,
		delayMax:  3 * time.Second,
		followUp:  0.5,
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.delayMax < s.delayMin {
		return nil, errors.New("selector: delay max below min")
	}

	// A trigger declared by two categories belongs to the first one.
	index := make(map[string]int)
	var patterns [][]byte
	for ci, c := range cat.Categories {
		for _, t := range c.Triggers {
			if _, ok := index[t]; ok {
				continue
			}
			index[t] = len(patterns)
			patterns = append(patterns, []byte(t))
			s.owners = append(s.owners, ci)
		}
	}
	if len(patterns) > 0 {
		s.matcher = ahocorasick.NewMatcher(patterns)
	}

	return s, nil
}

// Catalogue returns the catalogue the selector was built from
func (s *ResponseSelector) Catalogue() *Catalogue {
	return s.catalogue
}

// Match returns the first declared category with a trigger contained in the
// message.
func (s *ResponseSelector) Match(message string) (Category, bool) {
	if s.matcher == nil {
		return Category{}, false
	}
	lowered := cases.Lower(language.Und).String(message)

	best := -1
	for _, pattern := range s.matcher.MatchThreadSafe([]byte(lowered)) {
		if owner := s.owners[pattern]; best < 0 || owner < best {
			best = owner
		}
	}
	if best < 0 {
		return Category{}, false
	}
	return s.catalogue.Categories[best], true
}

// Compose builds the reply text without any artificial latency.
func (s *ResponseSelector) Compose(message string) (text, category string, followUp bool) {
	text = s.catalogue.DefaultReply
	if c, ok := s.Match(message); ok {
		text = c.Replies[s.rng.IntN(len(c.Replies))]
		category = c.Name
	}

	if len(s.catalogue.FollowUps) > 0 && s.rng.Float64() < s.followUp {
		text += " " + s.catalogue.FollowUps[s.rng.IntN(len(s.catalogue.FollowUps))]
		followUp = true
	}
	return text, category, followUp
}

// Reply waits out the simulated latency and returns a reply. Any failure is a
// *ProcessingError carrying the catalogue apology.
func (s *ResponseSelector) Reply(ctx context.Context, message string, chatCtx *model.ChatContext) (*model.ChatReply, error) {
	if strings.TrimSpace(message) == "" {
		return nil, newProcessingError(chatFailureMessage, s.catalogue.Apology, errors.New("empty message"))
	}

	d := s.thinkingTime()
	if err := s.delay.Wait(ctx, d); err != nil {
		return nil, newProcessingError(chatFailureMessage, s.catalogue.Apology, err)
	}
	s.metrics.ObserveDelay("chat", d)

	text, category, followUp := s.Compose(message)
	s.metrics.ObserveChatReply(category, followUp)

	recipient := ""
	if chatCtx != nil {
		recipient = chatCtx.Recipient
	}
	s.logger.Debug("chat_reply",
		"category", category,
		"follow_up", followUp,
		"recipient", recipient,
		"delay", d,
	)

	return &model.ChatReply{
		Text:      text,
		Category:  category,
		FollowUp:  followUp,
		Timestamp: s.now(),
	}, nil
}

// Apology is the reply callers show when Reply fails
func (s *ResponseSelector) Apology() string {
	return s.catalogue.Apology
}

func (s *ResponseSelector) thinkingTime() time.Duration {
	span := s.delayMax - s.delayMin
	if span <= 0 {
		return s.delayMin
	}
	return s.delayMin + time.Duration(s.rng.Int64N(int64(span)))
}
