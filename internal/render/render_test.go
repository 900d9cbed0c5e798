package render

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/receiptly/internal/model"
	"github.com/mmeshcher/receiptly/internal/screen"
)

func TestMoney(t *testing.T) {
	assert.Equal(t, "$1,234.50", Money(1234.5))
	assert.Equal(t, "$0.00", Money(0))
	assert.Equal(t, "$12.00", Money(12))
}

func TestCardDate(t *testing.T) {
	assert.Equal(t, "Mar 1, 2024", CardDate(model.Receipt{Date: "2024-03-01"}))
	assert.Equal(t, "someday", CardDate(model.Receipt{Date: "someday"}))
}

func TestTransactions(t *testing.T) {
	var buf bytes.Buffer
	err := Transactions(&buf, []model.Receipt{
		{ID: "r1", Vendor: "Walmart", Date: "2024-03-01", Total: model.Float(42.5)},
		{ID: "r2", Vendor: "", Date: "2024-01-05", Total: nil},
	}, "")
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Walmart")
	assert.Contains(t, out, "$42.50")
	assert.Contains(t, out, model.UnknownVendor)
	assert.Contains(t, out, "$0.00")
	assert.Contains(t, out, "2 receipts")
}

func TestTransactions_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Transactions(&buf, nil, "ikea"))
	assert.Equal(t, "No transactions match \"ikea\".\n", buf.String())

	buf.Reset()
	require.NoError(t, Transactions(&buf, nil, ""))
	assert.Contains(t, buf.String(), "No transactions yet")
}

func TestDashboard(t *testing.T) {
	var buf bytes.Buffer
	err := Dashboard(&buf, screen.DashboardView{
		Greeting: "Hi, Ann!",
		Stats: model.DashboardStats{
			TotalSpent:    1500,
			ReceiptCount:  3,
			AvgPerReceipt: 500,
			TopVendor:     "Costco",
			MonthlySpent:  20,
		},
		Recent: []model.Receipt{{ID: "1", Vendor: "Costco", Date: "2024-06-01", Total: model.Float(20)}},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Hi, Ann!")
	assert.Contains(t, out, "$1,500.00")
	assert.Contains(t, out, "$500.00")
	assert.Contains(t, out, "Costco")
	assert.Contains(t, out, "Recent Transactions")
	assert.Contains(t, out, "Jun 1, 2024")
}

func TestDetail(t *testing.T) {
	now := time.Date(2024, 6, 14, 21, 0, 0, 0, time.UTC)
	scanned := now.Add(-3 * time.Hour)

	var buf bytes.Buffer
	err := Detail(&buf, screen.ReceiptDetails{
		ShortID:   "01234567...",
		Vendor:    "Target",
		Date:      "Friday, June 14, 2024",
		Total:     "12.50",
		HasImage:  true,
		ScannedAt: "2024-06-14",
		CreatedAt: scanned,
	}, now)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "$12.50")
	assert.Contains(t, out, "Friday, June 14, 2024")
	assert.Contains(t, out, "3 hours ago")
	assert.Contains(t, out, "01234567...")
}

func TestSlides(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Slides(&buf, screen.OnboardingSlides))
	assert.Contains(t, buf.String(), "1/3  Scan Receipts")
	assert.Contains(t, buf.String(), "3/3  Export to Sheets")
}
