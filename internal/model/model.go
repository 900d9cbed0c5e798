// Package model содержит доменные сущности приложения receiptly.
package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// UnknownVendor выводится вместо пустого названия продавца.
	UnknownVendor = "Unknown Vendor"
	// NoTopVendor выводится, если ни у одного чека нет продавца.
	NoTopVendor = "N/A"
	// DateLayout задаёт формат календарной даты чека.
	DateLayout = "2006-01-02"
)

// Receipt описывает один чек. Владельцем записи является сервис чеков,
// клиент только читает полученные снимки.
type Receipt struct {
	ID        string    `json:"id"`
	Vendor    string    `json:"vendor"`
	Date      string    `json:"date"`
	Total     *float64  `json:"total"`
	ImageURL  string    `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
	UserID    string    `json:"user_id"`
}

// Amount возвращает сумму чека, отсутствующая сумма считается нулевой.
func (r Receipt) Amount() float64 {
	if r.Total == nil {
		return 0
	}
	return *r.Total
}

// DisplayVendor возвращает название продавца или заглушку.
func (r Receipt) DisplayVendor() string {
	if strings.TrimSpace(r.Vendor) == "" {
		return UnknownVendor
	}
	return r.Vendor
}

// DisplayTotal возвращает сумму с двумя знаками после запятой.
func (r Receipt) DisplayTotal() string {
	return FormatAmount(r.Amount())
}

// ParsedDate разбирает дату чека. Все даты трактуются в UTC.
func (r Receipt) ParsedDate() (time.Time, bool) {
	return ParseDate(r.Date)
}

// ReceiptInput содержит изменяемые поля чека для создания и обновления.
type ReceiptInput struct {
	Vendor   string   `json:"vendor"`
	Date     string   `json:"date"`
	Total    *float64 `json:"total"`
	ImageURL string   `json:"image_url,omitempty"`
}

// User описывает пользователя приложения.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
}

// DashboardStats содержит сводку по коллекции чеков. Не хранится, пересчитывается на каждый снимок.
type DashboardStats struct {
	TotalSpent    float64 `json:"totalSpent"`
	ReceiptCount  int     `json:"receiptCount"`
	AvgPerReceipt float64 `json:"avgPerReceipt"`
	TopVendor     string  `json:"topVendor"`
	MonthlySpent  float64 `json:"monthlySpent"`
}

// FormatAmount форматирует денежную сумму с точностью до двух знаков.
func FormatAmount(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

var dateLayouts = []string{
	DateLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
}

// ParseDate разбирает дату в одном из поддерживаемых ISO 8601 форматов.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// Float возвращает указатель на значение, удобно для необязательных сумм.
func Float(v float64) *float64 {
	return &v
}
