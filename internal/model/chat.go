package model

import "time"

// ChatContext carries who the user is talking to. It does not influence reply
// selection.
type ChatContext struct {
	Recipient string `json:"recipient,omitempty"`
	IsPremium bool   `json:"isPremium,omitempty"`
}

// ChatRequest is the body of POST /api/ai/chat
type ChatRequest struct {
	Message string       `json:"message"`
	Context *ChatContext `json:"context,omitempty"`
}

// ChatReply is one generated reply
type ChatReply struct {
	Text      string
	Category  string // empty when the default reply was used
	FollowUp  bool
	Timestamp time.Time
}

// ChatResponse is the success envelope of POST /api/ai/chat
type ChatResponse struct {
	Success   bool   `json:"success"`
	Response  string `json:"response"`
	Timestamp string `json:"timestamp"`
}

// ChatErrorResponse is the failure envelope; Response is safe to show as-is
type ChatErrorResponse struct {
	Success  bool   `json:"success"`
	Error    string `json:"error"`
	Response string `json:"response"`
}

// ParseListingRequest is the body of POST /api/ai/parse-listing
type ParseListingRequest struct {
	Message string `json:"message" binding:"required"`
}

// ParseListingResponse is the success envelope of POST /api/ai/parse-listing
type ParseListingResponse struct {
	Success bool          `json:"success"`
	Listing *ListingDraft `json:"listing"`
}

// FormatTimestamp renders t like JavaScript's Date.toISOString
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}
