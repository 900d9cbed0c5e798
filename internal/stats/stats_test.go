package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/receiptly/internal/model"
)

var june15 = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func receipt(vendor, date string, total *float64) model.Receipt {
	return model.Receipt{ID: vendor + date, Vendor: vendor, Date: date, Total: total}
}

func TestComputeStats_Empty(t *testing.T) {
	got := ComputeStatsAt(nil, june15)

	assert.Equal(t, model.DashboardStats{
		TotalSpent:    0,
		ReceiptCount:  0,
		AvgPerReceipt: 0,
		TopVendor:     "N/A",
		MonthlySpent:  0,
	}, got)
}

func TestComputeStats_TopVendorByCount(t *testing.T) {
	receipts := []model.Receipt{
		receipt("A", "2024-06-01", model.Float(10)),
		receipt("B", "2024-06-01", model.Float(5)),
		receipt("A", "2024-06-01", model.Float(3)),
	}

	got := ComputeStatsAt(receipts, june15)

	assert.Equal(t, "A", got.TopVendor)
	assert.Equal(t, 3, got.ReceiptCount)
	assert.InDelta(t, 18, got.TotalSpent, 1e-9)
	assert.InDelta(t, 6, got.AvgPerReceipt, 1e-9)
}

func TestTopVendor(t *testing.T) {
	tests := []struct {
		name     string
		receipts []model.Receipt
		want     string
	}{
		{
			name: "tie goes to first seen",
			receipts: []model.Receipt{
				receipt("Target", "", nil),
				receipt("Walmart", "", nil),
				receipt("Walmart", "", nil),
				receipt("Target", "", nil),
			},
			want: "Target",
		},
		{
			name: "later vendor overtakes",
			receipts: []model.Receipt{
				receipt("Target", "", nil),
				receipt("Walmart", "", nil),
				receipt("Walmart", "", nil),
			},
			want: "Walmart",
		},
		{
			name: "no vendors",
			receipts: []model.Receipt{
				receipt("", "2024-01-01", model.Float(1)),
			},
			want: "N/A",
		},
		{
			name: "blank vendors are ignored",
			receipts: []model.Receipt{
				receipt("  ", "2024-01-01", model.Float(1)),
				receipt("\t", "2024-01-02", model.Float(1)),
			},
			want: "N/A",
		},
		{
			name: "blank vendors do not outvote a real one",
			receipts: []model.Receipt{
				receipt(" ", "", nil),
				receipt(" ", "", nil),
				receipt("Aldi", "", nil),
			},
			want: "Aldi",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TopVendor(tt.receipts))
		})
	}
}

func TestComputeStats_MonthlySpent(t *testing.T) {
	receipts := []model.Receipt{
		receipt("A", "2024-06-01", model.Float(7.25)),
		receipt("B", "2024-05-31", model.Float(100)),
		receipt("C", "2023-06-10", model.Float(50)),
		receipt("D", "2024-06-30T23:59:59Z", model.Float(1)),
		receipt("E", "not a date", model.Float(9)),
		receipt("F", "2024-06-20", nil),
	}

	got := ComputeStatsAt(receipts, june15)

	assert.InDelta(t, 8.25, got.MonthlySpent, 1e-9)
	assert.InDelta(t, 167.25, got.TotalSpent, 1e-9)
}

func TestComputeStats_MonthUsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	// 2024-06-30 22:00 по UTC-5 по UTC уже июль.
	now := time.Date(2024, 6, 30, 22, 0, 0, 0, loc)

	receipts := []model.Receipt{
		receipt("A", "2024-07-01", model.Float(4)),
		receipt("B", "2024-06-30", model.Float(6)),
	}

	got := ComputeStatsAt(receipts, now)
	assert.InDelta(t, 4, got.MonthlySpent, 1e-9)
}

func TestComputeStats_AverageTimesCount(t *testing.T) {
	receipts := []model.Receipt{
		receipt("A", "2024-01-01", model.Float(0.1)),
		receipt("B", "2024-01-02", model.Float(0.2)),
		receipt("C", "2024-01-03", model.Float(19.99)),
		receipt("D", "2024-01-04", nil),
	}

	got := ComputeStatsAt(receipts, june15)
	require.Equal(t, 4, got.ReceiptCount)
	assert.InDelta(t, got.TotalSpent, got.AvgPerReceipt*float64(got.ReceiptCount), 1e-9)
	assert.InDelta(t, 20.29, got.TotalSpent, 1e-9)
}

func TestComputeStats_Idempotent(t *testing.T) {
	receipts := []model.Receipt{
		receipt("A", "2024-06-01", model.Float(10)),
		receipt("B", "2024-06-02", model.Float(5)),
	}
	before := append([]model.Receipt(nil), receipts...)

	first := ComputeStatsAt(receipts, june15)
	second := ComputeStatsAt(receipts, june15)

	assert.Equal(t, first, second)
	assert.Equal(t, before, receipts)
}
