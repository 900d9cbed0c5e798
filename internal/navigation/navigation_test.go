package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mmeshcher/receiptly/internal/auth"
	"github.com/mmeshcher/receiptly/internal/model"
)

func TestFromSession(t *testing.T) {
	user := model.User{ID: "u1", DisplayName: "Ann"}

	tests := []struct {
		name    string
		session auth.Session
		want    State
		home    Screen
	}{
		{name: "anonymous", session: auth.Anonymous{}, want: SignedOut{}, home: ScreenAuth},
		{name: "nil session", session: nil, want: SignedOut{}, home: ScreenAuth},
		{name: "new user", session: auth.Authenticated{User: user, Token: "t"}, want: NeedsOnboarding{User: user}, home: ScreenOnboarding},
		{name: "onboarded", session: auth.Authenticated{User: user, Token: "t", Onboarded: true}, want: Ready{User: user}, home: ScreenDashboard},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := FromSession(tt.session)
			assert.Equal(t, tt.want, st)
			assert.Equal(t, tt.home, Home(st))
		})
	}
}

func TestAllows(t *testing.T) {
	user := model.User{ID: "u1"}

	tests := []struct {
		name   string
		state  State
		screen Screen
		want   error
	}{
		{name: "signed out sees auth", state: SignedOut{}, screen: ScreenAuth},
		{name: "signed out blocked from dashboard", state: SignedOut{}, screen: ScreenDashboard, want: ErrNotSignedIn},
		{name: "onboarding only", state: NeedsOnboarding{User: user}, screen: ScreenOnboarding},
		{name: "onboarding blocks scan", state: NeedsOnboarding{User: user}, screen: ScreenScan, want: ErrNotOnboarded},
		{name: "ready opens detail", state: Ready{User: user}, screen: ScreenTransactionDetail},
		{name: "ready opens review", state: Ready{User: user}, screen: ScreenReviewReceipt},
		{name: "ready has no auth screen", state: Ready{User: user}, screen: ScreenAuth, want: ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Allows(tt.state, tt.screen))
		})
	}
}

func TestScreensDoNotAliasTabs(t *testing.T) {
	screens := Screens(Ready{})
	screens[0] = ScreenAuth
	assert.Equal(t, ScreenDashboard, Tabs[0])
}

func TestUserOf(t *testing.T) {
	_, ok := UserOf(SignedOut{})
	assert.False(t, ok)

	u, ok := UserOf(Ready{User: model.User{ID: "x"}})
	assert.True(t, ok)
	assert.Equal(t, "x", u.ID)
}
