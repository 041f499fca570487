// Package domain defines the types and interfaces for the sales service
package domain

import (
	"time"

	"tradepost/internal/core/catalog"
)

// Resolution is the single terminal verdict of a confirmation session
type Resolution string

const (
	// ResolutionConfirmed means the requester confirmed within the window
	ResolutionConfirmed Resolution = "confirmed"

	// ResolutionCancelled means the requester explicitly cancelled
	ResolutionCancelled Resolution = "cancelled"

	// ResolutionTimedOut means the window elapsed with no response
	ResolutionTimedOut Resolution = "timed_out"
)

// Choice is a user-actionable prompt button
type Choice string

const (
	// ChoiceConfirm confirms the pending sell
	ChoiceConfirm Choice = "confirm"

	// ChoiceCancel cancels the pending sell
	ChoiceCancel Choice = "cancel"
)

// Valid reports whether c is one of the two prompt choices
func (c Choice) Valid() bool { return c == ChoiceConfirm || c == ChoiceCancel }

// Session is the live record of one pending confirmation
type Session struct {
	ID          string
	RequesterID string
	Item        catalog.Item
	Amount      int
	CreatedAt   time.Time
	Deadline    time.Time
}

// Prompt is the artifact presented to the requester when a session opens
type Prompt struct {
	SessionID string         `json:"session_id"`
	Content   string         `json:"content"`
	Choices   []PromptChoice `json:"choices"`
	ExpiresAt time.Time      `json:"expires_at"`
}

// PromptChoice is one selectable prompt button
type PromptChoice struct {
	ID    Choice `json:"id"`
	Label string `json:"label"`
}

// Receipt is the remote marketplace response to a sell call
type Receipt struct {
	Message string `json:"message"`
}

// Outcome classifies the remote sell call, distinct from the session Resolution
type Outcome struct {
	Success bool
	Message string
}

// FinalMessage replaces the prompt once a session reaches a terminal state
type FinalMessage struct {
	SessionID   string     `json:"session_id"`
	RequesterID string     `json:"requester_id"`
	Resolution  Resolution `json:"resolution"`
	Content     string     `json:"content"`
}

// AuditEntry is one appended record per terminal transition
type AuditEntry struct {
	SessionID   string
	RequesterID string
	ItemID      string
	Amount      int
	Resolution  Resolution
	Success     bool
	Message     string
	At          time.Time
}
