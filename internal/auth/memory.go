package auth

import "sync"

// MemoryStore держит сессию только в памяти процесса.
type MemoryStore struct {
	mu        sync.Mutex
	current   *Authenticated
	onboarded map[string]bool
}

// NewMemoryStore создаёт пустое хранилище.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{onboarded: make(map[string]bool)}
}

func (m *MemoryStore) Load() (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return Anonymous{}, nil
	}
	s := *m.current
	s.Onboarded = m.onboarded[s.User.ID]
	return s, nil
}

func (m *MemoryStore) Save(s Authenticated) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = &s
	m.onboarded[s.User.ID] = s.Onboarded
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = nil
	return nil
}

func (m *MemoryStore) Onboarded(userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.onboarded[userID], nil
}
