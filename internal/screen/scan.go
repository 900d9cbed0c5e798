package screen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// ScanResult описывает результат сканирования. Если загрузка не удалась, черновик
// содержит только ссылку на локальный файл, а Err хранит причину.
type ScanResult struct {
	Draft    Draft
	Uploaded bool
	Err      error
}

// Scan отправляет фото чека на распознавание.
type Scan struct {
	uploader ImageUploader
	logger   *zap.Logger
}

// NewScan создаёт экран сканирования.
func NewScan(uploader ImageUploader, logger *zap.Logger) *Scan {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scan{uploader: uploader, logger: logger}
}

// Upload читает файл и загружает его. Ошибка загрузки не фатальна:
// пользователь переходит к ручному заполнению формы.
func (s *Scan) Upload(ctx context.Context, path string) (ScanResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ScanResult{}, fmt.Errorf("read image: %w", err)
	}
	if len(data) == 0 {
		return ScanResult{}, fmt.Errorf("read image: %s is empty", path)
	}

	r, err := s.uploader.UploadReceiptImage(ctx, filepath.Base(path), data)
	if err != nil {
		s.logger.Warn("upload failed, falling back to manual entry", zap.Error(err), zap.String("path", path))
		return ScanResult{
			Draft: Draft{ImageRef: path},
			Err:   err,
		}, nil
	}

	return ScanResult{Draft: DraftFrom(*r), Uploaded: true}, nil
}
