// Package queue defines message payloads exchanged over the message broker
// and the publishers and consumers that move them.
package queue

import "time"

// Mail event kinds.
const (
	MailPasswordRecovery = "password_recovery"
	MailWelcome          = "welcome"
)

// MailEvent asks the mailer to deliver one email. It carries everything the
// templates need so the mailer never queries the primary database.
type MailEvent struct {
	ID          string     `json:"id"`
	Kind        string     `json:"kind"`
	To          string     `json:"to"`
	Link        string     `json:"link,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	RequestedAt time.Time  `json:"requested_at"`
}
