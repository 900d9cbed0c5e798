package screen

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/mmeshcher/receiptly/internal/auth"
	"github.com/mmeshcher/receiptly/internal/model"
)

// Slide описывает страницу онбординга.
type Slide struct {
	Title       string
	Description string
}

// OnboardingSlides показываются новому пользователю один раз.
var OnboardingSlides = []Slide{
	{
		Title:       "Scan Receipts",
		Description: "Take a photo of any receipt and let our OCR technology extract all the details automatically.",
	},
	{
		Title:       "Track Spending",
		Description: "View all your transactions in one place. Filter by date, vendor, or amount.",
	},
	{
		Title:       "Export to Sheets",
		Description: "Connect your Google Sheets and automatically export receipt data for easy bookkeeping.",
	},
}

// Sessions описывает операции над сессией для экранов входа, онбординга и настроек.
type Sessions interface {
	Current() auth.Session
	SignIn(ctx context.Context, email, password string) (auth.Authenticated, error)
	SignUp(ctx context.Context, email, password, displayName string) (auth.Authenticated, error)
	SignOut() error
	CompleteOnboarding() (auth.Authenticated, error)
}

// Profile содержит данные пользователя для экрана настроек.
type Profile struct {
	DisplayName string
	Email       string
	Initial     string
}

// ProfileOf готовит профиль для вывода.
func ProfileOf(u model.User) Profile {
	p := Profile{DisplayName: u.DisplayName, Email: u.Email, Initial: "?"}
	if p.DisplayName == "" {
		p.DisplayName = "User"
	}
	if r, _ := utf8.DecodeRuneInString(p.DisplayName); r != utf8.RuneError {
		p.Initial = strings.ToUpper(string(r))
	}
	return p
}
