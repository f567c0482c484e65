package inbox

import (
	"context"
	"strings"
	"sync"

	"github.com/miccroten/mtadmin/internal/bus"
	"go.uber.org/zap"
)

// Synchronizer keeps an in-memory view of the message inbox aligned with
// the backend. On activation it fetches everything once, then refetches
// wholesale on every change notification; there are no incremental updates,
// trading efficiency for the impossibility of partial-update bugs.
type Synchronizer struct {
	repo   Repository
	bus    *bus.Bus
	logger *zap.Logger

	mu       sync.RWMutex
	messages []Message
	stats    Stats
	active   bool
	cancel   context.CancelFunc

	onUpdate func()
}

// NewSynchronizer creates an inactive synchronizer.
func NewSynchronizer(repo Repository, b *bus.Bus, logger *zap.Logger) *Synchronizer {
	return &Synchronizer{
		repo:   repo,
		bus:    b,
		logger: logger,
	}
}

// SetOnUpdate registers a hook invoked after any state change, outside the
// synchronizer's lock. The TUI uses it to queue a redraw.
func (s *Synchronizer) SetOnUpdate(fn func()) {
	s.onUpdate = fn
}

// Activate performs the initial fetch and subscribes to change
// notifications. Any notification, whatever the operation, invalidates both
// the message list and the statistics wholesale. The returned error is the
// initial fetch's; the subscription is live either way, so the next change
// notification repairs a failed first load.
func (s *Synchronizer) Activate(ctx context.Context) error {
	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		return nil
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.active = true
	s.mu.Unlock()

	ch, unsub := s.bus.Subscribe("store.", 64)
	go func() {
		defer unsub()
		for {
			select {
			case evt := <-ch:
				s.logger.Debug("change notification, refetching inbox",
					zap.String("event_id", evt.ID))
				s.refreshAll(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()

	return s.refreshAll(ctx)
}

// Deactivate cancels the change subscription and any in-flight refresh.
// Safe to call repeatedly and on every exit path.
func (s *Synchronizer) Deactivate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.active = false
}

// Active reports whether the synchronizer holds a live subscription.
func (s *Synchronizer) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Messages returns a snapshot of the current message list, newest first.
func (s *Synchronizer) Messages() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Stats returns the current derived statistics.
func (s *Synchronizer) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// Filtered returns the messages whose name, email or body contains query,
// case-insensitively. The filter is a view: it never touches the fetched
// set. An empty query returns everything.
func (s *Synchronizer) Filtered(query string) []Message {
	msgs := s.Messages()
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return msgs
	}
	var out []Message
	for _, m := range msgs {
		if strings.Contains(strings.ToLower(m.Name), q) ||
			strings.Contains(strings.ToLower(m.Email), q) ||
			strings.Contains(strings.ToLower(m.Body), q) {
			out = append(out, m)
		}
	}
	return out
}

// MarkRead flips a message to read. The local copy is updated immediately
// and the backend update is issued without waiting for it; a failed update
// is logged but not rolled back, leaving the next change notification or
// refetch to reconcile. Calling it on an already-read (or unknown) id is a
// no-op, so the unread count can never go negative.
func (s *Synchronizer) MarkRead(ctx context.Context, id int64) {
	s.mu.Lock()
	idx := -1
	for i := range s.messages {
		if s.messages[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 || s.messages[idx].Read {
		s.mu.Unlock()
		return
	}
	s.messages[idx].Read = true
	if s.stats.UnreadMessages > 0 {
		s.stats.UnreadMessages--
	}
	s.mu.Unlock()
	s.notify()

	go func() {
		if err := s.repo.MarkRead(ctx, id); err != nil {
			s.logger.Error("failed to mark message read",
				zap.Int64("message_id", id), zap.Error(err))
		}
		if err := s.refreshStats(ctx); err != nil {
			s.logger.Error("failed to refresh stats after mark-read", zap.Error(err))
		}
	}()
}

// Refresh refetches messages and statistics on demand, outside the change
// notification cycle. The manual fallback when the feed is gone.
func (s *Synchronizer) Refresh(ctx context.Context) error {
	return s.refreshAll(ctx)
}

// refreshAll refetches messages and statistics. The two fetches are
// independent; a failure of one does not block the other.
func (s *Synchronizer) refreshAll(ctx context.Context) error {
	msgErr := s.refreshMessages(ctx)
	statsErr := s.refreshStats(ctx)
	if msgErr != nil {
		return msgErr
	}
	return statsErr
}

func (s *Synchronizer) refreshMessages(ctx context.Context) error {
	msgs, err := s.repo.ListMessages(ctx)
	if err != nil {
		s.logger.Error("failed to fetch messages", zap.Error(err))
		return err
	}
	s.mu.Lock()
	s.messages = msgs
	s.mu.Unlock()
	s.notify()
	return nil
}

func (s *Synchronizer) refreshStats(ctx context.Context) error {
	stats, err := CollectStats(ctx, s.repo)
	if err != nil {
		s.logger.Error("failed to refresh inbox stats", zap.Error(err))
		return err
	}

	s.mu.Lock()
	s.stats = stats
	s.mu.Unlock()
	s.notify()
	return nil
}

func (s *Synchronizer) notify() {
	if s.onUpdate != nil {
		s.onUpdate()
	}
}
