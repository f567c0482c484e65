package inbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/miccroten/mtadmin/internal/bus"
	"go.uber.org/zap"
)

// fakeRepo is an in-memory Repository.
type fakeRepo struct {
	mu           sync.Mutex
	messages     []Message
	failMarkRead bool
	failList     bool
	listCalls    int
}

func (r *fakeRepo) ListMessages(_ context.Context) ([]Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	if r.failList {
		return nil, errors.New("backend unavailable")
	}
	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out, nil
}

func (r *fakeRepo) SenderEmails(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var emails []string
	for _, m := range r.messages {
		if m.Email != "" {
			emails = append(emails, m.Email)
		}
	}
	return emails, nil
}

func (r *fakeRepo) CountMessages(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages), nil
}

func (r *fakeRepo) CountUnread(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.messages {
		if !m.Read {
			n++
		}
	}
	return n, nil
}

func (r *fakeRepo) MarkRead(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failMarkRead {
		return errors.New("backend unavailable")
	}
	for i := range r.messages {
		if r.messages[i].ID == id {
			r.messages[i].Read = true
		}
	}
	return nil
}

func (r *fakeRepo) countListCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listCalls
}

func testMessages() []Message {
	now := time.Now()
	return []Message{
		{ID: 3, Name: "Carol", Email: "b@x", Body: "hello world", CreatedAt: now, Read: false},
		{ID: 2, Name: "Alice", Email: "a@x", Body: "second", CreatedAt: now.Add(-time.Minute), Read: true},
		{ID: 1, Name: "Alice", Email: "a@x", Body: "first", CreatedAt: now.Add(-2 * time.Minute), Read: false},
	}
}

func newTestSync(repo Repository, b *bus.Bus) *Synchronizer {
	return NewSynchronizer(repo, b, zap.NewNop())
}

func TestActivateFetchesMessagesAndStats(t *testing.T) {
	repo := &fakeRepo{messages: testMessages()}
	s := newTestSync(repo, bus.New())
	defer s.Deactivate()

	if err := s.Activate(context.Background()); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}

	msgs := s.Messages()
	if len(msgs) != 3 {
		t.Fatalf("got %d messages, want 3", len(msgs))
	}
	if msgs[0].ID != 3 {
		t.Errorf("first message id = %d, want 3 (newest first)", msgs[0].ID)
	}

	// Read flags [false, true, false], emails [b@x, a@x, a@x].
	stats := s.Stats()
	if stats.UniqueSenders != 2 || stats.TotalMessages != 3 || stats.UnreadMessages != 2 {
		t.Errorf("stats = %+v, want {2 3 2}", stats)
	}
}

func TestChangeNotificationTriggersRefetch(t *testing.T) {
	repo := &fakeRepo{messages: testMessages()}
	b := bus.New()
	s := newTestSync(repo, b)
	defer s.Deactivate()

	if err := s.Activate(context.Background()); err != nil {
		t.Fatal(err)
	}

	// A new row appears in the backend, then a change notification arrives.
	repo.mu.Lock()
	repo.messages = append([]Message{{ID: 4, Name: "Dave", Email: "d@x", Body: "new"}}, repo.messages...)
	repo.mu.Unlock()

	b.Publish(bus.Event{Kind: bus.KindMessagesChanged, Payload: "INSERT"})

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if len(s.Messages()) == 4 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if len(s.Messages()) != 4 {
		t.Fatalf("got %d messages after notification, want 4", len(s.Messages()))
	}
	if got := s.Stats().TotalMessages; got != 4 {
		t.Errorf("stats total = %d, want 4", got)
	}
}

func TestRefreshRefetchesOnDemand(t *testing.T) {
	repo := &fakeRepo{messages: testMessages()}
	s := newTestSync(repo, bus.New())
	defer s.Deactivate()

	if err := s.Activate(context.Background()); err != nil {
		t.Fatal(err)
	}

	repo.mu.Lock()
	repo.messages = append([]Message{{ID: 4, Name: "Dave", Email: "d@x", Body: "new"}}, repo.messages...)
	repo.mu.Unlock()

	// No change notification; the refetch is explicit.
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if len(s.Messages()) != 4 {
		t.Fatalf("got %d messages after refresh, want 4", len(s.Messages()))
	}
}

func TestDeactivateReleasesSubscription(t *testing.T) {
	repo := &fakeRepo{messages: testMessages()}
	b := bus.New()
	s := newTestSync(repo, b)

	if err := s.Activate(context.Background()); err != nil {
		t.Fatal(err)
	}
	s.Deactivate()

	if s.Active() {
		t.Error("synchronizer reports active after Deactivate")
	}

	calls := repo.countListCalls()
	b.Publish(bus.Event{Kind: bus.KindMessagesChanged})
	time.Sleep(100 * time.Millisecond)

	if got := repo.countListCalls(); got != calls {
		t.Errorf("refetch after deactivation: list calls %d -> %d", calls, got)
	}
}

func TestMarkReadOptimisticAndIdempotent(t *testing.T) {
	repo := &fakeRepo{messages: []Message{
		{ID: 5, Name: "Eve", Email: "e@x", Body: "unread", Read: false},
		{ID: 6, Name: "Frank", Email: "f@x", Body: "read", Read: true},
	}}
	s := newTestSync(repo, bus.New())
	defer s.Deactivate()
	if err := s.Activate(context.Background()); err != nil {
		t.Fatal(err)
	}

	before := s.Stats().UnreadMessages
	if before != 1 {
		t.Fatalf("unread before = %d, want 1", before)
	}

	// Local echo happens before the backend round-trip resolves.
	s.MarkRead(context.Background(), 5)
	for _, m := range s.Messages() {
		if m.ID == 5 && !m.Read {
			t.Error("message 5 not read in local copy immediately after MarkRead")
		}
	}
	if got := s.Stats().UnreadMessages; got != 0 {
		t.Errorf("unread after MarkRead = %d, want 0", got)
	}

	// Second call is a no-op: the count must not go negative.
	s.MarkRead(context.Background(), 5)
	if got := s.Stats().UnreadMessages; got != 0 {
		t.Errorf("unread after repeated MarkRead = %d, want 0", got)
	}

	// Backend eventually receives the update.
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		repo.mu.Lock()
		done := repo.messages[0].Read
		repo.mu.Unlock()
		if done {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Error("backend never received the read update")
}

// A failed update is logged, not rolled back: the local copy keeps read=true
// until the next refetch reconciles it.
func TestMarkReadFailureKeepsLocalEcho(t *testing.T) {
	repo := &fakeRepo{
		messages:     []Message{{ID: 7, Name: "Grace", Email: "g@x", Read: false}},
		failMarkRead: true,
	}
	s := newTestSync(repo, bus.New())
	defer s.Deactivate()
	if err := s.Activate(context.Background()); err != nil {
		t.Fatal(err)
	}

	s.MarkRead(context.Background(), 7)
	time.Sleep(50 * time.Millisecond)

	if msgs := s.Messages(); !msgs[0].Read {
		t.Error("local echo reverted on backend failure; current design keeps it")
	}
}

func TestMarkReadUnknownIDIsNoop(t *testing.T) {
	repo := &fakeRepo{messages: testMessages()}
	s := newTestSync(repo, bus.New())
	defer s.Deactivate()
	if err := s.Activate(context.Background()); err != nil {
		t.Fatal(err)
	}

	before := s.Stats()
	s.MarkRead(context.Background(), 999)
	if got := s.Stats(); got != before {
		t.Errorf("stats changed on unknown id: %+v -> %+v", before, got)
	}
}

func TestFilteredMatchesCaseInsensitively(t *testing.T) {
	repo := &fakeRepo{messages: []Message{
		{ID: 1, Name: "Alice", Email: "alice@example.com", Body: "greetings"},
		{ID: 2, Name: "Bob", Email: "BOB@x.com", Body: "hello world"},
		{ID: 3, Name: "Carol", Email: "carol@x.com", Body: "about bob's order"},
	}}
	s := newTestSync(repo, bus.New())
	defer s.Deactivate()
	if err := s.Activate(context.Background()); err != nil {
		t.Fatal(err)
	}

	got := s.Filtered("bob")
	if len(got) != 2 {
		t.Fatalf("Filtered(bob) returned %d messages, want 2", len(got))
	}
	for _, m := range got {
		if m.ID != 2 && m.ID != 3 {
			t.Errorf("unexpected match id=%d", m.ID)
		}
	}

	// The filter is a view; the fetched set is untouched.
	if len(s.Messages()) != 3 {
		t.Errorf("fetched set mutated by filter: %d messages", len(s.Messages()))
	}

	if got := s.Filtered(""); len(got) != 3 {
		t.Errorf("empty filter returned %d messages, want all 3", len(got))
	}
}

func TestActivateFailureKeepsSubscriptionLive(t *testing.T) {
	repo := &fakeRepo{failList: true}
	b := bus.New()
	s := newTestSync(repo, b)
	defer s.Deactivate()

	if err := s.Activate(context.Background()); err == nil {
		t.Fatal("Activate() should surface the initial fetch error")
	}

	// Backend recovers; the next change notification repairs the view.
	repo.mu.Lock()
	repo.failList = false
	repo.messages = testMessages()
	repo.mu.Unlock()

	b.Publish(bus.Event{Kind: bus.KindMessagesChanged})

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if len(s.Messages()) == 3 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Error("view never repaired after backend recovery")
}
