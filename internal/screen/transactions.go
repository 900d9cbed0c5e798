package screen

import (
	"context"
	"fmt"
	"sync"

	"github.com/mmeshcher/receiptly/internal/model"
	"github.com/mmeshcher/receiptly/internal/presenter"
	"github.com/mmeshcher/receiptly/internal/refresh"
)

// Transactions держит отсортированный снимок чеков и фильтрует его по запросу.
type Transactions struct {
	source ReceiptLister
	latest refresh.Latest[[]model.Receipt]

	mu       sync.RWMutex
	receipts []model.Receipt
}

// NewTransactions создаёт экран списка операций.
func NewTransactions(source ReceiptLister) *Transactions {
	return &Transactions{source: source}
}

// Refresh загружает чеки и возвращает их по убыванию даты.
func (t *Transactions) Refresh(ctx context.Context) ([]model.Receipt, error) {
	err := t.latest.Run(ctx, t.source.ListReceipts, func(receipts []model.Receipt, err error) {
		if err != nil {
			return
		}
		sorted := presenter.SortByDateDesc(receipts)

		t.mu.Lock()
		t.receipts = sorted
		t.mu.Unlock()
	})
	if err != nil {
		return t.Search(""), fmt.Errorf("load transactions: %w", err)
	}

	return t.Search(""), nil
}

// Search фильтрует последний загруженный снимок. Сеть не используется.
func (t *Transactions) Search(query string) []model.Receipt {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return presenter.FilterAndSort(t.receipts, query)
}
