package types

import "time"

type ChatRequest struct {
	SessionID string `json:"sessionId,omitempty"`
	Message   string `json:"message"`
}

type ChatResponse struct {
	SessionID string `json:"sessionId"`
	Reply     string `json:"reply"`
	Intent    string `json:"intent"`
}

type TranscriptMessage struct {
	Role   string    `json:"role"`
	Text   string    `json:"text"`
	Intent string    `json:"intent,omitempty"`
	At     time.Time `json:"at"`
}

type TranscriptResponse struct {
	SessionID string              `json:"sessionId"`
	Messages  []TranscriptMessage `json:"messages"`
	Pending   int                 `json:"pending"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
