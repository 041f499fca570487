// Package domain defines the types and interfaces for the ident service
package domain

import "time"

// AccountLink ties a chat-platform requester to a marketplace API token
type AccountLink struct {
	RequesterID string
	Token       string
	LinkedAt    time.Time
}
