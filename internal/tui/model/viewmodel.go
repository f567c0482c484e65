package model

import (
	"sync"

	"github.com/miccroten/mtadmin/internal/inbox"
	"github.com/miccroten/mtadmin/internal/session"
)

// ViewModel glues the session store and inbox synchronizer to the views.
// It owns the UI-only state that neither of them should carry: the current
// filter string and the flash message.
type ViewModel struct {
	Session *session.Store
	Inbox   *inbox.Synchronizer
	Flash   Flash

	mu     sync.RWMutex
	filter string
}

// NewViewModel creates a view model over the given stores.
func NewViewModel(sess *session.Store, ib *inbox.Synchronizer) *ViewModel {
	return &ViewModel{
		Session: sess,
		Inbox:   ib,
	}
}

// SetFilter updates the live search query.
func (vm *ViewModel) SetFilter(q string) {
	vm.mu.Lock()
	vm.filter = q
	vm.mu.Unlock()
}

// Filter returns the live search query.
func (vm *ViewModel) Filter() string {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.filter
}

// VisibleMessages returns the messages the dashboard should render: the
// synchronizer's snapshot narrowed by the current filter.
func (vm *ViewModel) VisibleMessages() []inbox.Message {
	return vm.Inbox.Filtered(vm.Filter())
}

// Stats returns the current inbox statistics.
func (vm *ViewModel) Stats() inbox.Stats {
	return vm.Inbox.Stats()
}
