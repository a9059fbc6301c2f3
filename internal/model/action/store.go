package action

// Store exposes the quick-action catalog.
type Store interface {
	List() []QuickAction
	FindByKind(kind Kind) (QuickAction, bool)
}

// MemoryStore implements Store with an in-memory slice.
type MemoryStore struct {
	items []QuickAction
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied actions.
func NewMemoryStore(items []QuickAction) *MemoryStore {
	return &MemoryStore{items: append([]QuickAction(nil), items...)}
}

// List returns the catalog in display order.
func (s *MemoryStore) List() []QuickAction {
	return append([]QuickAction(nil), s.items...)
}

// FindByKind looks up an action by kind.
func (s *MemoryStore) FindByKind(kind Kind) (QuickAction, bool) {
	for _, item := range s.items {
		if item.Kind == kind {
			return item, true
		}
	}
	return QuickAction{}, false
}
