// Package stats считает сводную статистику по чекам для дашборда.
package stats

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/receiptly/internal/model"
)

// ComputeStats считает статистику относительно текущего момента.
func ComputeStats(receipts []model.Receipt) model.DashboardStats {
	return ComputeStatsAt(receipts, time.Now())
}

// ComputeStatsAt считает статистику относительно момента now.
// Текущий месяц определяется по UTC, как и даты чеков.
func ComputeStatsAt(receipts []model.Receipt, now time.Time) model.DashboardStats {
	now = now.UTC()

	total := decimal.Zero
	monthly := decimal.Zero

	for _, r := range receipts {
		amount := decimal.NewFromFloat(r.Amount())
		total = total.Add(amount)

		if d, ok := r.ParsedDate(); ok && d.Year() == now.Year() && d.Month() == now.Month() {
			monthly = monthly.Add(amount)
		}
	}

	res := model.DashboardStats{
		TotalSpent:   total.InexactFloat64(),
		ReceiptCount: len(receipts),
		TopVendor:    TopVendor(receipts),
		MonthlySpent: monthly.InexactFloat64(),
	}

	if res.ReceiptCount > 0 {
		res.AvgPerReceipt = total.Div(decimal.NewFromInt(int64(res.ReceiptCount))).InexactFloat64()
	}

	return res
}

// TopVendor возвращает самого частого продавца. При равенстве побеждает тот,
// кто встретился раньше. Чеки без продавца или с пробелами вместо него не учитываются.
func TopVendor(receipts []model.Receipt) string {
	counts := make(map[string]int)
	order := make([]string, 0)

	for _, r := range receipts {
		if strings.TrimSpace(r.Vendor) == "" {
			continue
		}
		if _, seen := counts[r.Vendor]; !seen {
			order = append(order, r.Vendor)
		}
		counts[r.Vendor]++
	}

	top, best := model.NoTopVendor, 0
	for _, v := range order {
		if counts[v] > best {
			top, best = v, counts[v]
		}
	}

	return top
}
