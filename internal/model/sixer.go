package model

// SixerStartRequest is the body of POST /api/sixer/start. Amount is in cents.
type SixerStartRequest struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// SixerStartResponse is returned once payment and matchmaking both started
type SixerStartResponse struct {
	Success       bool   `json:"success"`
	PaymentID     string `json:"paymentId"`
	MatchmakingID string `json:"matchmakingId"`
	Message       string `json:"message"`
}

// PaymentResult is the outcome of the simulated card charge
type PaymentResult struct {
	Success   bool
	PaymentID string
	Amount    int
	Currency  string
}

// Matchmaking describes the host-matching workflow kicked off after payment
type Matchmaking struct {
	ID            string
	Status        string
	EstimatedTime string
}
