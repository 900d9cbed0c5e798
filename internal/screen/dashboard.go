package screen

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mmeshcher/receiptly/internal/model"
	"github.com/mmeshcher/receiptly/internal/presenter"
	"github.com/mmeshcher/receiptly/internal/refresh"
	"github.com/mmeshcher/receiptly/internal/stats"
)

// DashboardView содержит данные дашборда на момент последней загрузки.
type DashboardView struct {
	Greeting  string
	Stats     model.DashboardStats
	Recent    []model.Receipt
	UpdatedAt time.Time
}

// Dashboard загружает чеки и считает по ним сводку.
type Dashboard struct {
	source ReceiptLister
	user   model.User
	now    func() time.Time

	latest refresh.Latest[[]model.Receipt]

	mu   sync.RWMutex
	view DashboardView
}

// NewDashboard создаёт дашборд пользователя. now задаёт текущий момент для месячной суммы.
func NewDashboard(source ReceiptLister, user model.User, now func() time.Time) *Dashboard {
	if now == nil {
		now = time.Now
	}
	return &Dashboard{
		source: source,
		user:   user,
		now:    now,
		view:   DashboardView{Greeting: Greeting(user), Stats: stats.ComputeStatsAt(nil, now())},
	}
}

// Refresh перезагружает чеки. Если во время загрузки стартовала более новая,
// возвращается refresh.ErrSuperseded и состояние не меняется.
func (d *Dashboard) Refresh(ctx context.Context) (DashboardView, error) {
	err := d.latest.Run(ctx, d.source.ListReceipts, func(receipts []model.Receipt, err error) {
		if err != nil {
			return
		}

		now := d.now()
		view := DashboardView{
			Greeting:  Greeting(d.user),
			Stats:     stats.ComputeStatsAt(receipts, now),
			Recent:    presenter.RecentReceipts(receipts),
			UpdatedAt: now,
		}

		d.mu.Lock()
		d.view = view
		d.mu.Unlock()
	})
	if err != nil {
		return d.View(), fmt.Errorf("load dashboard: %w", err)
	}

	return d.View(), nil
}

// View возвращает последнее применённое состояние.
func (d *Dashboard) View() DashboardView {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.view
}

// Greeting возвращает приветствие пользователя.
func Greeting(u model.User) string {
	name := strings.TrimSpace(u.DisplayName)
	if name == "" {
		name = "there"
	}
	return "Hi, " + name + "!"
}
