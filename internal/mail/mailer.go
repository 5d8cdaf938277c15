// Package mail delivers invoice and receipt documents to clients.
package mail

import (
	"context"
	"time"
)

// Attachment is one file carried by a message.
type Attachment struct {
	Filename string
	Content  []byte
}

// Message is a fully composed outbound mail. Template, when set, replaces
// the built-in body; {{ClientName}}, {{InvoiceNumber}} and {{DueDate}}
// placeholders are substituted either way.
type Message struct {
	Recipient     string
	ClientName    string
	InvoiceNumber string
	DueDate       time.Time
	Receipt       bool
	Template      string
	Attachments   []Attachment
}

// Sender delivers a message. The boolean mirrors delivery acknowledgement:
// false with a nil error means the transport declined without failing.
type Sender interface {
	Send(ctx context.Context, msg Message) (bool, error)
}
