// Package screen содержит модели экранов клиента: дашборд, список операций,
// сканирование, форму проверки чека, карточку чека, настройки и онбординг.
package screen

import (
	"context"

	"github.com/mmeshcher/receiptly/internal/model"
)

// ReceiptLister загружает все чеки пользователя.
type ReceiptLister interface {
	ListReceipts(ctx context.Context) ([]model.Receipt, error)
}

// ReceiptWriter создаёт и обновляет чеки.
type ReceiptWriter interface {
	CreateReceipt(ctx context.Context, in model.ReceiptInput) (*model.Receipt, error)
	UpdateReceipt(ctx context.Context, id string, in model.ReceiptInput) (*model.Receipt, error)
}

// ReceiptReader читает и удаляет отдельный чек.
type ReceiptReader interface {
	GetReceipt(ctx context.Context, id string) (*model.Receipt, error)
	DeleteReceipt(ctx context.Context, id string) error
	ReceiptImage(ctx context.Context, id string) ([]byte, string, error)
}

// ImageUploader загружает фото чека на распознавание.
type ImageUploader interface {
	UploadReceiptImage(ctx context.Context, filename string, data []byte) (*model.Receipt, error)
}
