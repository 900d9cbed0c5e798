// Package handler содержит HTTP-обработчики API сервиса чеков.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/receiptly/internal/middleware"
	"github.com/mmeshcher/receiptly/internal/model"
	"github.com/mmeshcher/receiptly/internal/repository"
	"github.com/mmeshcher/receiptly/internal/service"
	"github.com/mmeshcher/receiptly/internal/validation"
)

// MaxUploadSize ограничивает размер загружаемой фотографии чека.
const MaxUploadSize = 10 << 20

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	ListReceipts(ctx context.Context, userID string) ([]model.Receipt, error)
	GetReceipt(ctx context.Context, userID, id string) (*model.Receipt, error)
	CreateReceipt(ctx context.Context, userID string, in model.ReceiptInput) (*model.Receipt, error)
	UpdateReceipt(ctx context.Context, userID, id string, in model.ReceiptInput) (*model.Receipt, error)
	DeleteReceipt(ctx context.Context, userID, id string) error
	UploadReceipt(ctx context.Context, userID, contentType string, data []byte) (*model.Receipt, error)
	ReceiptImage(ctx context.Context, userID, id string) (*repository.Image, error)
}

// Handler реализует HTTP-обработчики API сервиса чеков.
type Handler struct {
	service        Service
	logger         *zap.Logger
	authMiddleware *middleware.AuthMiddleware
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{
		service:        s,
		logger:         logger,
		authMiddleware: auth,
	}
}

// ListReceipts возвращает чеки текущего пользователя.
func (h *Handler) ListReceipts(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	receipts, err := h.service.ListReceipts(r.Context(), userID)
	if err != nil {
		h.fail(w, "list receipts error", err, zap.String("userID", userID))
		return
	}

	h.writeJSON(w, http.StatusOK, receipts)
}

// GetReceipt возвращает один чек.
func (h *Handler) GetReceipt(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	receipt, err := h.service.GetReceipt(r.Context(), userID, id)
	if err != nil {
		h.fail(w, "get receipt error", err, zap.String("id", id))
		return
	}

	h.writeJSON(w, http.StatusOK, receipt)
}

// CreateReceipt сохраняет чек, введённый вручную.
func (h *Handler) CreateReceipt(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	var in model.ReceiptInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	receipt, err := h.service.CreateReceipt(r.Context(), userID, in)
	if err != nil {
		h.fail(w, "create receipt error", err, zap.String("userID", userID))
		return
	}

	h.writeJSON(w, http.StatusOK, receipt)
}

// UpdateReceipt перезаписывает поля чека.
func (h *Handler) UpdateReceipt(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var in model.ReceiptInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	receipt, err := h.service.UpdateReceipt(r.Context(), userID, id, in)
	if err != nil {
		h.fail(w, "update receipt error", err, zap.String("id", id))
		return
	}

	h.writeJSON(w, http.StatusOK, receipt)
}

// DeleteReceipt удаляет чек.
func (h *Handler) DeleteReceipt(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteReceipt(r.Context(), userID, id); err != nil {
		h.fail(w, "delete receipt error", err, zap.String("id", id))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UploadReceipt принимает фотографию чека в multipart-поле file.
func (h *Handler) UploadReceipt(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize+1<<20)
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, http.StatusText(http.StatusRequestEntityTooLarge), http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "No file uploaded", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if header.Size > MaxUploadSize {
		http.Error(w, http.StatusText(http.StatusRequestEntityTooLarge), http.StatusRequestEntityTooLarge)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	receipt, err := h.service.UploadReceipt(r.Context(), userID, header.Header.Get("Content-Type"), data)
	if err != nil {
		h.fail(w, "upload receipt error", err, zap.String("filename", header.Filename))
		return
	}

	h.writeJSON(w, http.StatusOK, receipt)
}

// ReceiptImage отдаёт сохранённое изображение чека.
func (h *Handler) ReceiptImage(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	img, err := h.service.ReceiptImage(r.Context(), userID, id)
	if err != nil {
		h.fail(w, "get image error", err, zap.String("id", id))
		return
	}

	w.Header().Set("Content-Type", img.ContentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(img.Data); err != nil {
		h.logger.Debug("write image", zap.Error(err))
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response error", zap.Error(err))
	}
}

// fail переводит ошибку сервиса в HTTP-статус. Неожиданные ошибки логируются.
func (h *Handler) fail(w http.ResponseWriter, msg string, err error, fields ...zap.Field) {
	var fieldErr *validation.FieldError

	switch {
	case errors.Is(err, repository.ErrReceiptNotFound), errors.Is(err, repository.ErrImageNotFound):
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	case errors.As(err, &fieldErr):
		http.Error(w, fieldErr.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, validation.ErrInvalidInput):
		http.Error(w, http.StatusText(http.StatusUnprocessableEntity), http.StatusUnprocessableEntity)
	case errors.Is(err, service.ErrEmptyUpload):
		http.Error(w, "No file uploaded", http.StatusBadRequest)
	default:
		h.logger.Error(msg, append(fields, zap.Error(err))...)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
