package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"roomie/internal/metrics"
	"roomie/internal/model"
	"roomie/internal/utils"
)

const (
	messageRequired     = "Message is required"
	parseFailureMessage = "Failed to process message. Please try again or use the manual form."

	defaultTitle   = "Room Available"
	defaultAddress = "Near Campus"
)

var (
	defaultRent      = decimal.NewFromInt(1200)
	defaultUtilities = decimal.NewFromInt(150)
	defaultDistance  = decimal.RequireFromString("0.8")

	rentPattern      = regexp.MustCompile(`\$(\d{1,4})`)
	utilitiesPattern = regexp.MustCompile(`(?i)utilit(?:y|ies).*?\$(\d{1,3})`)
	distancePattern  = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:mi|miles?|mile)`)
	// First word after near/at/in, continued through capitalized words so
	// multi-word place names survive ("near Times Square"). The marker may
	// sit inside a word: "Great location" yields "location".
	addressPattern = regexp.MustCompile(`(?i:near|at|in)\s+([A-Za-z]+(?:[ \t]+[A-Z][A-Za-z]*)*)`)
)

type titleRule struct {
	keywords []string
	title    string
}

var titleRules = []titleRule{
	{[]string{"2br", "2 bedroom"}, "Cozy 2BR near Campus"},
	{[]string{"studio"}, "Modern Studio Apartment"},
	{[]string{"3br", "3 bedroom"}, "Spacious 3BR House"},
	{[]string{"loft"}, "Downtown Loft"},
}

var petKeywords = []string{"pet", "dog", "cat"}

// ListingExtractor turns a pasted host message into a ListingDraft after a
// simulated processing delay.
type ListingExtractor struct {
	delay   Delayer
	wait    time.Duration
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewListingExtractor creates an extractor that waits for wait before answering
func NewListingExtractor(delay Delayer, wait time.Duration, m *metrics.Metrics, logger *slog.Logger) *ListingExtractor {
	if delay == nil {
		delay = TimerDelayer{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ListingExtractor{
		delay:   delay,
		wait:    wait,
		metrics: m,
		logger:  logger,
	}
}

// Extract validates the message, waits, and derives the draft. Empty input is
// a *ValidationError; anything else that goes wrong is a *ProcessingError.
func (e *ListingExtractor) Extract(ctx context.Context, message string) (draft *model.ListingDraft, err error) {
	if strings.TrimSpace(message) == "" {
		e.metrics.ObserveExtraction("invalid")
		return nil, newValidationError(messageRequired)
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("listing_extraction_panic", "panic", r)
			draft = nil
			err = newProcessingError(parseFailureMessage, "", fmt.Errorf("panic: %v", r))
		}
		if err != nil {
			e.metrics.ObserveExtraction("failed")
		}
	}()

	if err := e.delay.Wait(ctx, e.wait); err != nil {
		return nil, newProcessingError(parseFailureMessage, "", err)
	}
	e.metrics.ObserveDelay("parse_listing", e.wait)

	draft = ExtractDraft(message)
	e.metrics.ObserveExtraction("success")
	return draft, nil
}

// ExtractDraft applies every field rule to message. It is a pure function:
// equal input yields an equal draft, and absent fields take their defaults.
func ExtractDraft(message string) *model.ListingDraft {
	lowered := strings.ToLower(message)

	draft := &model.ListingDraft{
		Title:            extractTitle(lowered),
		Description:      message,
		Rent:             defaultRent,
		Utilities:        defaultUtilities,
		DistanceToCampus: defaultDistance,
		IsFurnished:      strings.Contains(lowered, "furnished"),
		AllowsPets:       containsAny(lowered, petKeywords),
		VibeTags:         utils.MatchVibeTags(lowered),
		Languages:        append([]string{utils.BaseLanguage}, utils.MatchLanguages(lowered)...),
		Address:          defaultAddress,
	}

	if v, ok := matchRent(message); ok {
		draft.Rent = v
	}
	if v, ok := matchUtilities(message); ok {
		draft.Utilities = v
	}
	if v, ok := matchDistance(message); ok {
		draft.DistanceToCampus = v
	}
	if len(draft.VibeTags) == 0 {
		draft.VibeTags = append(model.JSONArray(nil), utils.DefaultVibeTags...)
	}
	if v, ok := matchAddress(message); ok {
		draft.Address = v
	}

	return draft
}

func extractTitle(lowered string) string {
	for _, rule := range titleRules {
		if containsAny(lowered, rule.keywords) {
			return rule.title
		}
	}
	return defaultTitle
}

func matchRent(message string) (decimal.Decimal, bool) {
	return firstDecimal(rentPattern, message)
}

func matchUtilities(message string) (decimal.Decimal, bool) {
	return firstDecimal(utilitiesPattern, message)
}

func matchDistance(message string) (decimal.Decimal, bool) {
	return firstDecimal(distancePattern, message)
}

func matchAddress(message string) (string, bool) {
	m := addressPattern.FindStringSubmatch(message)
	if len(m) < 2 {
		return "", false
	}
	addr := strings.TrimSpace(m[1])
	return addr, addr != ""
}

// firstDecimal parses the first capture group of re. A capture that does not
// parse counts as absent.
func firstDecimal(re *regexp.Regexp, s string) (decimal.Decimal, bool) {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return decimal.Decimal{}, false
	}
	v, err := decimal.NewFromString(m[1])
	if err != nil {
		return decimal.Decimal{}, false
	}
	return v, true
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// IsValidationError reports whether err is a *ValidationError
func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
