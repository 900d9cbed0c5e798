package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/mmeshcher/receiptly/internal/model"
	"github.com/mmeshcher/receiptly/internal/token"
)

// SimulatedProvider выпускает пользователя и подписанный токен без внешнего
// провайдера. Пароль не проверяется.
type SimulatedProvider struct {
	signer *token.Signer
}

// NewSimulatedProvider создаёт провайдер, подписывающий токены signer.
func NewSimulatedProvider(signer *token.Signer) *SimulatedProvider {
	return &SimulatedProvider{signer: signer}
}

// SignIn выпускает сессию для email. Имя берётся из локальной части адреса.
func (p *SimulatedProvider) SignIn(_ context.Context, email, _ string) (Authenticated, error) {
	email = strings.TrimSpace(email)
	name, _, _ := strings.Cut(email, "@")
	return p.issue(email, name), nil
}

// SignUp выпускает сессию для нового пользователя с указанным именем.
func (p *SimulatedProvider) SignUp(_ context.Context, email, _, displayName string) (Authenticated, error) {
	return p.issue(strings.TrimSpace(email), strings.TrimSpace(displayName)), nil
}

func (p *SimulatedProvider) issue(email, displayName string) Authenticated {
	user := model.User{
		ID:          UserID(email),
		Email:       email,
		DisplayName: displayName,
	}
	return Authenticated{
		User:  user,
		Token: p.signer.Sign(user.ID),
	}
}

// UserID возвращает стабильный идентификатор пользователя по email.
func UserID(email string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+strings.ToLower(strings.TrimSpace(email)))).String()
}
