package screen

import (
	"context"
	"fmt"
	"time"
)

// ReceiptDetails содержит поля карточки чека, готовые к выводу.
type ReceiptDetails struct {
	ID        string
	ShortID   string
	Vendor    string
	Date      string
	Total     string
	HasImage  bool
	ScannedAt string
	CreatedAt time.Time
}

// Detail показывает и удаляет отдельный чек.
type Detail struct {
	store ReceiptReader
}

// NewDetail создаёт экран карточки чека.
func NewDetail(store ReceiptReader) *Detail {
	return &Detail{store: store}
}

// Load загружает чек и готовит поля для вывода.
func (d *Detail) Load(ctx context.Context, id string) (ReceiptDetails, error) {
	r, err := d.store.GetReceipt(ctx, id)
	if err != nil {
		return ReceiptDetails{}, fmt.Errorf("load receipt %s: %w", id, err)
	}

	res := ReceiptDetails{
		ID:        r.ID,
		ShortID:   shortID(r.ID),
		Vendor:    r.DisplayVendor(),
		Date:      r.Date,
		Total:     r.DisplayTotal(),
		HasImage:  r.ImageURL != "",
		CreatedAt: r.CreatedAt,
	}
	if t, ok := r.ParsedDate(); ok {
		res.Date = t.Format("Monday, January 2, 2006")
	}
	if !r.CreatedAt.IsZero() {
		res.ScannedAt = r.CreatedAt.UTC().Format("2006-01-02")
	}

	return res, nil
}

// Delete удаляет чек.
func (d *Detail) Delete(ctx context.Context, id string) error {
	if err := d.store.DeleteReceipt(ctx, id); err != nil {
		return fmt.Errorf("delete receipt %s: %w", id, err)
	}
	return nil
}

// Image скачивает изображение чека.
func (d *Detail) Image(ctx context.Context, id string) ([]byte, string, error) {
	data, contentType, err := d.store.ReceiptImage(ctx, id)
	if err != nil {
		return nil, "", fmt.Errorf("load image %s: %w", id, err)
	}
	return data, contentType, nil
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8] + "..."
}
