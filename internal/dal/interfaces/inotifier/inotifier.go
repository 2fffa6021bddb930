package inotifier

import "context"

// Attachment is a named binary payload attached to a message.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Message is one outbound notification.
type Message struct {
	To          string
	ReplyTo     string
	Subject     string
	HTML        string
	Attachments []Attachment
}

// INotifier delivers notifications to customers and operators.
type INotifier interface {
	Send(ctx context.Context, msg Message) error
}
