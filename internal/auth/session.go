// Package auth управляет сессией пользователя клиента: вход, регистрация,
// выход и отметка о прохождении онбординга.
package auth

import (
	"context"
	"errors"

	"github.com/mmeshcher/receiptly/internal/model"
)

// ErrNoSession возвращается, если операция требует входа.
var ErrNoSession = errors.New("not signed in")

// Session принимает одно из двух значений: Anonymous или Authenticated.
type Session interface {
	isSession()
}

// Anonymous означает, что пользователь не вошёл.
type Anonymous struct{}

// Authenticated описывает вошедшего пользователя с токеном.
type Authenticated struct {
	User      model.User
	Token     string
	Onboarded bool
}

func (Anonymous) isSession()     {}
func (Authenticated) isSession() {}

// Provider выдаёт учётные данные. Реальная реализация обращается к провайдеру
// идентификации, SimulatedProvider выпускает их локально.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (Authenticated, error)
	SignUp(ctx context.Context, email, password, displayName string) (Authenticated, error)
}

// Store хранит сессию между запусками клиента.
type Store interface {
	Load() (Session, error)
	Save(s Authenticated) error
	Clear() error
	Onboarded(userID string) (bool, error)
}
