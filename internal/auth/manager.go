package auth

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/mmeshcher/receiptly/internal/validation"
)

// Manager хранит текущую сессию и синхронизирует её с хранилищем.
type Manager struct {
	provider Provider
	store    Store
	logger   *zap.Logger

	mu      sync.RWMutex
	current Session
}

// NewManager создаёт менеджер сессии. До Restore сессия анонимная.
func NewManager(provider Provider, store Store, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		provider: provider,
		store:    store,
		logger:   logger,
		current:  Anonymous{},
	}
}

// Restore загружает сессию из хранилища. При ошибке чтения пользователь
// считается анонимным, ошибка возвращается вызывающему.
func (m *Manager) Restore() (Session, error) {
	s, err := m.store.Load()
	if err != nil {
		m.logger.Warn("restore session failed", zap.Error(err))
		s = Anonymous{}
	}

	m.set(s)
	return s, err
}

// Current возвращает текущую сессию.
func (m *Manager) Current() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Token отдаёт токен текущей сессии для клиента API.
func (m *Manager) Token() (string, bool) {
	if s, ok := m.Current().(Authenticated); ok && s.Token != "" {
		return s.Token, true
	}
	return "", false
}

// SignIn выполняет вход. Признак онбординга восстанавливается из хранилища.
func (m *Manager) SignIn(ctx context.Context, email, password string) (Authenticated, error) {
	if err := validation.ValidateCredentials(email, password, "", false); err != nil {
		return Authenticated{}, err
	}

	s, err := m.provider.SignIn(ctx, email, password)
	if err != nil {
		return Authenticated{}, fmt.Errorf("sign in: %w", err)
	}

	onboarded, err := m.store.Onboarded(s.User.ID)
	if err != nil {
		m.logger.Warn("read onboarding flag failed", zap.Error(err), zap.String("userID", s.User.ID))
	}
	s.Onboarded = onboarded

	if err := m.save(s); err != nil {
		return Authenticated{}, err
	}

	m.logger.Info("signed in", zap.String("userID", s.User.ID))
	return s, nil
}

// SignUp регистрирует пользователя. Новый пользователь всегда проходит онбординг.
func (m *Manager) SignUp(ctx context.Context, email, password, displayName string) (Authenticated, error) {
	if err := validation.ValidateCredentials(email, password, displayName, true); err != nil {
		return Authenticated{}, err
	}

	s, err := m.provider.SignUp(ctx, email, password, displayName)
	if err != nil {
		return Authenticated{}, fmt.Errorf("sign up: %w", err)
	}
	s.Onboarded = false

	if err := m.save(s); err != nil {
		return Authenticated{}, err
	}

	m.logger.Info("signed up", zap.String("userID", s.User.ID))
	return s, nil
}

// SignOut завершает сессию.
func (m *Manager) SignOut() error {
	if err := m.store.Clear(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	m.set(Anonymous{})
	return nil
}

// CompleteOnboarding отмечает онбординг пройденным.
func (m *Manager) CompleteOnboarding() (Authenticated, error) {
	s, ok := m.Current().(Authenticated)
	if !ok {
		return Authenticated{}, ErrNoSession
	}

	s.Onboarded = true
	if err := m.save(s); err != nil {
		return Authenticated{}, err
	}
	return s, nil
}

func (m *Manager) save(s Authenticated) error {
	if err := m.store.Save(s); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	m.set(s)
	return nil
}

func (m *Manager) set(s Session) {
	m.mu.Lock()
	m.current = s
	m.mu.Unlock()
}
