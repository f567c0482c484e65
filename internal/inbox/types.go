package inbox

import (
	"context"
	"time"
)

// Message is one contact-form submission, as stored by the backend.
// The id is server-assigned and immutable; the read flag only ever moves
// false→true.
type Message struct {
	ID        int64
	Name      string
	Email     string
	Phone     string
	Subject   string
	Body      string
	CreatedAt time.Time
	Read      bool
}

// Stats is the derived inbox aggregate. Always recomputed from the backend,
// never stored.
type Stats struct {
	UniqueSenders  int
	TotalMessages  int
	UnreadMessages int
}

// Repository is the slice of the row store the inbox consumes. The sender
// emails are fetched separately from the message list when computing stats,
// so the unique-sender count tolerates any pagination of the list query.
type Repository interface {
	// ListMessages returns all messages, newest first.
	ListMessages(ctx context.Context) ([]Message, error)
	// SenderEmails returns every non-null email across all messages,
	// duplicates included.
	SenderEmails(ctx context.Context) ([]string, error)
	CountMessages(ctx context.Context) (int, error)
	CountUnread(ctx context.Context) (int, error)
	// MarkRead sets read=true on the given message.
	MarkRead(ctx context.Context, id int64) error
}
