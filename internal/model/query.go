package model

import "time"

// Sender identifies who wrote a conversation message
type Sender string

const (
	SenderUser Sender = "You"
	SenderBot  Sender = "Bot"
)

// ChatRequest represents a chat message sent by the user
type ChatRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message" binding:"required"`
}

// ChatReply is the assistant answer to a single chat message
type ChatReply struct {
	Text       string    `json:"reply"`
	Tier       string    `json:"tier,omitempty"`
	Language   string    `json:"language"`
	Translated bool      `json:"translated"`
	Intent     *Query    `json:"intent,omitempty"`
	Listings   []Listing `json:"listings,omitempty"` // rows rendered as the result table
	Generated  bool      `json:"generated,omitempty"`
}

// ChatResponse represents the HTTP response for a chat message
type ChatResponse struct {
	SessionID string `json:"session_id"`
	ChatReply
	Took int64 `json:"took_ms"` // Response time in milliseconds
}

// SearchRequest represents a structured search request. Query is optional
// free text whose extracted constraints fill the filters left unset.
type SearchRequest struct {
	Query   string         `json:"query,omitempty"`
	Filters Query          `json:"filters"`
	Options *SearchOptions `json:"options,omitempty"`
}

// SearchOptions represents search options
type SearchOptions struct {
	TopK int `json:"top_k"`
}

// SearchResponse represents a structured search response
type SearchResponse struct {
	Results []ListingResult `json:"results"`
	Total   int             `json:"total"` // matches before truncation
	Tier    string          `json:"tier"`
	Intent  *IntentResult   `json:"intent,omitempty"`
	Took    int64           `json:"took_ms"`
}

// Message is a single entry of a conversation log
type Message struct {
	ID        string    `json:"id"`
	Sender    Sender    `json:"sender"`
	Message   string    `json:"message"`
	Listings  []Listing `json:"properties,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
