// Package service реализует бизнес-логику сервиса чеков.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmeshcher/receiptly/internal/model"
	"github.com/mmeshcher/receiptly/internal/repository"
	"github.com/mmeshcher/receiptly/internal/validation"
)

// ErrEmptyUpload возвращается при загрузке пустого файла.
var ErrEmptyUpload = errors.New("no file uploaded")

// Repository описывает контракт доступа к данным, используемый сервисом.
type Repository interface {
	Close() error
	CreateReceipt(ctx context.Context, userID string, in model.ReceiptInput) (*model.Receipt, error)
	GetReceipt(ctx context.Context, userID, id string) (*model.Receipt, error)
	ListReceipts(ctx context.Context, userID string) ([]model.Receipt, error)
	UpdateReceipt(ctx context.Context, userID, id string, in model.ReceiptInput) (*model.Receipt, error)
	DeleteReceipt(ctx context.Context, userID, id string) error
	CreateReceiptWithImage(ctx context.Context, userID string, in model.ReceiptInput, img repository.Image) (*model.Receipt, error)
	GetImage(ctx context.Context, userID, id string) (*repository.Image, error)
}

// Service содержит бизнес-логику сервиса чеков.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService создаёт новый сервис с указанным репозиторием.
func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}

// ListReceipts возвращает чеки пользователя. Пустой результат возвращается пустым срезом, не nil.
func (s *Service) ListReceipts(ctx context.Context, userID string) ([]model.Receipt, error) {
	receipts, err := s.repo.ListReceipts(ctx, userID)
	if err != nil {
		return nil, err
	}
	if receipts == nil {
		receipts = []model.Receipt{}
	}
	return receipts, nil
}

// GetReceipt возвращает чек пользователя.
func (s *Service) GetReceipt(ctx context.Context, userID, id string) (*model.Receipt, error) {
	return s.repo.GetReceipt(ctx, userID, id)
}

// CreateReceipt проверяет и сохраняет новый чек.
func (s *Service) CreateReceipt(ctx context.Context, userID string, in model.ReceiptInput) (*model.Receipt, error) {
	in, err := normalize(in)
	if err != nil {
		return nil, err
	}
	return s.repo.CreateReceipt(ctx, userID, in)
}

// UpdateReceipt проверяет и перезаписывает поля чека.
func (s *Service) UpdateReceipt(ctx context.Context, userID, id string, in model.ReceiptInput) (*model.Receipt, error) {
	in, err := normalize(in)
	if err != nil {
		return nil, err
	}
	return s.repo.UpdateReceipt(ctx, userID, id, in)
}

// DeleteReceipt удаляет чек пользователя.
func (s *Service) DeleteReceipt(ctx context.Context, userID, id string) error {
	return s.repo.DeleteReceipt(ctx, userID, id)
}

// UploadReceipt создаёт чек по фотографии. Поля чека заполняет пользователь на экране проверки,
// сервис сохраняет только изображение и сегодняшнюю дату.
func (s *Service) UploadReceipt(ctx context.Context, userID, contentType string, data []byte) (*model.Receipt, error) {
	if len(data) == 0 {
		return nil, ErrEmptyUpload
	}

	if !strings.HasPrefix(contentType, "image/") {
		contentType = http.DetectContentType(data)
	}

	res, err := s.repo.CreateReceiptWithImage(ctx, userID,
		model.ReceiptInput{Date: s.now().UTC().Format(model.DateLayout)},
		repository.Image{Data: data, ContentType: contentType},
	)
	if err != nil {
		return nil, fmt.Errorf("store uploaded receipt: %w", err)
	}
	return res, nil
}

// ReceiptImage возвращает изображение чека.
func (s *Service) ReceiptImage(ctx context.Context, userID, id string) (*repository.Image, error) {
	return s.repo.GetImage(ctx, userID, id)
}

func normalize(in model.ReceiptInput) (model.ReceiptInput, error) {
	in.Vendor = strings.TrimSpace(in.Vendor)
	in.Date = strings.TrimSpace(in.Date)
	in.ImageURL = strings.TrimSpace(in.ImageURL)

	if err := validation.ValidateTotal(in.Total); err != nil {
		return model.ReceiptInput{}, err
	}
	if in.Date != "" {
		if _, ok := model.ParseDate(in.Date); !ok {
			return model.ReceiptInput{}, &validation.FieldError{Field: "date", Message: "Please enter a valid date (YYYY-MM-DD)."}
		}
	}

	return in, nil
}
