package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"roomie/internal/metrics"
	"roomie/internal/model"
	"roomie/internal/randx"
)

const (
	// SixerPriceCents is the only accepted Sixer charge ($6.99)
	SixerPriceCents = 699
	SixerCurrency   = "usd"

	invalidAmountMessage   = "Invalid amount. Expected $6.99 (699 cents)"
	invalidCurrencyMessage = "Invalid currency. Expected USD"
	paymentFailedMessage   = "Payment failed"
	sixerStartedMessage    = "Sixer started successfully. You will be matched with hosts within 24 hours."

	idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	idLength   = 9
)

// ErrPaymentDeclined is returned when the simulated charge fails
var ErrPaymentDeclined = errors.New(paymentFailedMessage)

// SixerService simulates the $6.99 Sixer checkout: a card charge followed by
// the host matchmaking kickoff. No money moves.
type SixerService struct {
	rng          randx.Source
	delay        Delayer
	paymentDelay time.Duration
	matchDelay   time.Duration
	successRate  float64
	metrics      *metrics.Metrics
	logger       *slog.Logger
}

// NewSixerService creates the checkout simulator
func NewSixerService(
	rng randx.Source,
	delay Delayer,
	paymentDelay, matchDelay time.Duration,
	successRate float64,
	m *metrics.Metrics,
	logger *slog.Logger,
) *SixerService {
	if delay == nil {
		delay = TimerDelayer{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SixerService{
		rng:          rng,
		delay:        delay,
		paymentDelay: paymentDelay,
		matchDelay:   matchDelay,
		successRate:  successRate,
		metrics:      m,
		logger:       logger,
	}
}

// Start validates the request, charges, and starts matchmaking. Bad input
// is a *ValidationError, a declined charge is ErrPaymentDeclined.
func (s *SixerService) Start(ctx context.Context, req *model.SixerStartRequest) (*model.SixerStartResponse, error) {
	if req == nil || req.Amount != SixerPriceCents {
		s.metrics.ObserveSixer("invalid")
		return nil, newValidationError(invalidAmountMessage)
	}
	if req.Currency != SixerCurrency {
		s.metrics.ObserveSixer("invalid")
		return nil, newValidationError(invalidCurrencyMessage)
	}

	payment, err := s.charge(ctx, SixerPriceCents, req.Currency)
	if err != nil {
		s.metrics.ObserveSixer("error")
		return nil, err
	}
	if !payment.Success {
		s.metrics.ObserveSixer("declined")
		s.logger.Info("sixer_payment_declined", "amount", payment.Amount, "currency", payment.Currency)
		return nil, ErrPaymentDeclined
	}

	match, err := s.startMatchmaking(ctx)
	if err != nil {
		s.metrics.ObserveSixer("error")
		return nil, err
	}

	s.metrics.ObserveSixer("started")
	s.logger.Info("sixer_started", "payment_id", payment.PaymentID, "matchmaking_id", match.ID)

	return &model.SixerStartResponse{
		Success:       true,
		PaymentID:     payment.PaymentID,
		MatchmakingID: match.ID,
		Message:       sixerStartedMessage,
	}, nil
}

func (s *SixerService) charge(ctx context.Context, amount int, currency string) (*model.PaymentResult, error) {
	if err := s.delay.Wait(ctx, s.paymentDelay); err != nil {
		return nil, err
	}
	s.metrics.ObserveDelay("sixer_payment", s.paymentDelay)

	result := &model.PaymentResult{
		Success:  s.rng.Float64() < s.successRate,
		Amount:   amount,
		Currency: currency,
	}
	if result.Success {
		result.PaymentID = "pi_" + s.randomID()
	}
	return result, nil
}

func (s *SixerService) startMatchmaking(ctx context.Context) (*model.Matchmaking, error) {
	if err := s.delay.Wait(ctx, s.matchDelay); err != nil {
		return nil, err
	}
	s.metrics.ObserveDelay("sixer_match", s.matchDelay)

	return &model.Matchmaking{
		ID:            "mm_" + s.randomID(),
		Status:        "active",
		EstimatedTime: "24 hours",
	}, nil
}

func (s *SixerService) randomID() string {
	var b strings.Builder
	b.Grow(idLength)
	for i := 0; i < idLength; i++ {
		b.WriteByte(idAlphabet[s.rng.IntN(len(idAlphabet))])
	}
	return b.String()
}
