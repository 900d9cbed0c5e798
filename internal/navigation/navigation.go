// Package navigation определяет, какие экраны доступны пользователю
// в зависимости от состояния сессии.
package navigation

import (
	"errors"

	"github.com/mmeshcher/receiptly/internal/auth"
	"github.com/mmeshcher/receiptly/internal/model"
)

var (
	// ErrNotSignedIn возвращается при попытке открыть экран без входа.
	ErrNotSignedIn = errors.New("sign in first")
	// ErrNotOnboarded возвращается, пока пользователь не прошёл онбординг.
	ErrNotOnboarded = errors.New("complete onboarding first")
	// ErrUnavailable возвращается для экранов, недоступных в текущем состоянии.
	ErrUnavailable = errors.New("screen is not available")
)

// Screen описывает экран приложения.
type Screen string

const (
	ScreenAuth              Screen = "Auth"
	ScreenOnboarding        Screen = "Onboarding"
	ScreenDashboard         Screen = "Dashboard"
	ScreenTransactions      Screen = "Transactions"
	ScreenScan              Screen = "Scan"
	ScreenSettings          Screen = "Settings"
	ScreenReviewReceipt     Screen = "ReviewReceipt"
	ScreenTransactionDetail Screen = "TransactionDetail"
)

// Tabs перечисляет вкладки главного экрана в порядке отображения.
var Tabs = []Screen{ScreenDashboard, ScreenTransactions, ScreenScan, ScreenSettings}

// State описывает состояние навигации.
type State interface {
	isState()
}

// SignedOut означает, что пользователь не вошёл.
type SignedOut struct{}

// NeedsOnboarding означает, что пользователь вошёл, но не прошёл онбординг.
type NeedsOnboarding struct {
	User model.User
}

// Ready означает, что пользователь вошёл и прошёл онбординг.
type Ready struct {
	User model.User
}

func (SignedOut) isState()       {}
func (NeedsOnboarding) isState() {}
func (Ready) isState()           {}

// FromSession выводит состояние навигации из сессии.
func FromSession(s auth.Session) State {
	a, ok := s.(auth.Authenticated)
	if !ok {
		return SignedOut{}
	}
	if !a.Onboarded {
		return NeedsOnboarding{User: a.User}
	}
	return Ready{User: a.User}
}

// Screens возвращает экраны, доступные в состоянии.
func Screens(st State) []Screen {
	switch st.(type) {
	case Ready:
		return append(append([]Screen{}, Tabs...), ScreenReviewReceipt, ScreenTransactionDetail)
	case NeedsOnboarding:
		return []Screen{ScreenOnboarding}
	default:
		return []Screen{ScreenAuth}
	}
}

// Home возвращает стартовый экран состояния.
func Home(st State) Screen {
	return Screens(st)[0]
}

// Allows проверяет, можно ли открыть экран. Ошибка объясняет, что сделать пользователю.
func Allows(st State, screen Screen) error {
	for _, s := range Screens(st) {
		if s == screen {
			return nil
		}
	}

	switch st.(type) {
	case SignedOut:
		return ErrNotSignedIn
	case NeedsOnboarding:
		return ErrNotOnboarded
	default:
		return ErrUnavailable
	}
}

// UserOf возвращает пользователя состояния, если он есть.
func UserOf(st State) (model.User, bool) {
	switch s := st.(type) {
	case NeedsOnboarding:
		return s.User, true
	case Ready:
		return s.User, true
	default:
		return model.User{}, false
	}
}
