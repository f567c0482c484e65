// Package rowstore is the console's client for the hosted backend's
// Postgres row store. Rows are decoded into explicit typed records and
// validated at this boundary; nothing downstream trusts the store's shape.
package rowstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/miccroten/mtadmin/internal/inbox"
	"go.uber.org/zap"
)

// Store wraps a pgx connection pool for the backend database.
type Store struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// Open connects to the backend and verifies the connection.
func Open(ctx context.Context, databaseURL string, logger *zap.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open backend pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping backend: %w", err)
	}
	return &Store{pool: pool, logger: logger}, nil
}

// Pool exposes the underlying pool for the change feed's dedicated
// listening connection.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// Close releases the pool.
func (s *Store) Close() {
	s.pool.Close()
}

var _ inbox.Repository = (*Store)(nil)

// ListMessages returns every contact message, newest first.
func (s *Store) ListMessages(ctx context.Context) ([]inbox.Message, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, COALESCE(name, ''), COALESCE(email, ''), COALESCE(phone, ''),
		       COALESCE(subject, ''), COALESCE(message, ''), created_at, read
		FROM messages
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var msgs []inbox.Message
	for rows.Next() {
		var m inbox.Message
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Phone, &m.Subject,
			&m.Body, &m.CreatedAt, &m.Read); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		if err := validate(&m); err != nil {
			// Display-only system: incomplete rows are reported, not hidden.
			s.logger.Warn("message row missing fields",
				zap.Int64("message_id", m.ID), zap.Error(err))
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// SenderEmails returns all non-null emails, duplicates included. Fetched
// separately from the message list so the unique-sender statistic never
// depends on how the list query is paginated.
func (s *Store) SenderEmails(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT email FROM messages WHERE email IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("list sender emails: %w", err)
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var e string
		if err := rows.Scan(&e); err != nil {
			return nil, fmt.Errorf("scan email: %w", err)
		}
		emails = append(emails, e)
	}
	return emails, rows.Err()
}

// CountMessages returns the total number of messages.
func (s *Store) CountMessages(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM messages`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return n, nil
}

// CountUnread returns the number of messages with read = false.
func (s *Store) CountUnread(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM messages WHERE NOT read`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return n, nil
}

// MarkRead sets read = true on a message. The flag never reverses; rows
// already read are unaffected.
func (s *Store) MarkRead(ctx context.Context, id int64) error {
	if _, err := s.pool.Exec(ctx, `UPDATE messages SET read = TRUE WHERE id = $1`, id); err != nil {
		return fmt.Errorf("mark message %d read: %w", id, err)
	}
	return nil
}

// Insert stores a new contact message the way the marketing site's form
// does, populating the server-assigned fields. Used by mtctl.
func (s *Store) Insert(ctx context.Context, m *inbox.Message) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO messages (name, email, phone, subject, message, read)
		VALUES (NULLIF($1, ''), NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''), $5, FALSE)
		RETURNING id, created_at`,
		m.Name, m.Email, m.Phone, m.Subject, m.Body,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}
