package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	custommiddleware "github.com/mmeshcher/receiptly/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware сервиса чеков.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))

	r.Route("/api/receipts", func(r chi.Router) {
		r.Use(h.authMiddleware.Middleware)

		r.Get("/", h.ListReceipts)
		r.Post("/", h.CreateReceipt)
		r.Post("/upload", h.UploadReceipt)

		r.Get("/{id}", h.GetReceipt)
		r.Put("/{id}", h.UpdateReceipt)
		r.Delete("/{id}", h.DeleteReceipt)
		r.Get("/{id}/image", h.ReceiptImage)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}
