package screen

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/mmeshcher/receiptly/internal/model"
	"github.com/mmeshcher/receiptly/internal/validation"
)

// Draft хранит поля формы проверки чека в том виде, как их ввёл пользователь.
// Пустой ID означает новый чек.
type Draft struct {
	ID       string
	Vendor   string
	Date     string
	Total    string
	ImageRef string
}

// DraftFrom заполняет форму из существующего чека.
func DraftFrom(r model.Receipt) Draft {
	d := Draft{
		ID:       r.ID,
		Vendor:   r.Vendor,
		Date:     r.Date,
		ImageRef: r.ImageURL,
	}
	if r.Total != nil {
		d.Total = strconv.FormatFloat(*r.Total, 'f', -1, 64)
	}
	return d
}

// Review сохраняет проверенный пользователем чек.
type Review struct {
	store ReceiptWriter
	now   func() time.Time
}

// NewReview создаёт экран проверки чека.
func NewReview(store ReceiptWriter, now func() time.Time) *Review {
	if now == nil {
		now = time.Now
	}
	return &Review{store: store, now: now}
}

// Save проверяет форму и до обращения к сервису возвращает ошибку валидации.
// Черновик с ID обновляет чек, без ID создаёт новый.
func (r *Review) Save(ctx context.Context, d Draft) (*model.Receipt, error) {
	in, err := validation.ValidateReceiptForm(d.Vendor, d.Date, d.Total, r.now())
	if err != nil {
		return nil, err
	}
	in.ImageURL = d.ImageRef

	if d.ID != "" {
		res, err := r.store.UpdateReceipt(ctx, d.ID, in)
		if err != nil {
			return nil, fmt.Errorf("update receipt: %w", err)
		}
		return res, nil
	}

	res, err := r.store.CreateReceipt(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("create receipt: %w", err)
	}
	return res, nil
}
