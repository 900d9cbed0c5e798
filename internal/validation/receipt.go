// Package validation содержит проверки пользовательского ввода до обращения к сети.
package validation

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/mmeshcher/receiptly/internal/model"
)

// ErrInvalidInput лежит в основе всех ошибок валидации.
var ErrInvalidInput = errors.New("invalid input")

// MaxTotal ограничивает сумму чека, чтобы она помещалась в int64 в центах.
const MaxTotal = 1e12

// FieldError описывает ошибку в конкретном поле формы.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *FieldError) Unwrap() error {
	return ErrInvalidInput
}

func fieldError(field, message string) error {
	return &FieldError{Field: field, Message: message}
}

// ValidateReceiptForm проверяет поля формы чека и собирает ReceiptInput.
// Продавец обязателен, сумма должна быть неотрицательным числом,
// пустая дата заменяется на today.
func ValidateReceiptForm(vendor, date, total string, today time.Time) (model.ReceiptInput, error) {
	vendor = strings.TrimSpace(vendor)
	if vendor == "" {
		return model.ReceiptInput{}, fieldError("vendor", "Please enter a vendor name.")
	}

	amount, err := ParseTotal(total)
	if err != nil {
		return model.ReceiptInput{}, err
	}

	date = strings.TrimSpace(date)
	if date == "" {
		date = today.UTC().Format(model.DateLayout)
	} else if _, ok := model.ParseDate(date); !ok {
		return model.ReceiptInput{}, fieldError("date", "Please enter a valid date (YYYY-MM-DD).")
	}

	return model.ReceiptInput{
		Vendor: vendor,
		Date:   date,
		Total:  &amount,
	}, nil
}

// ParseTotal разбирает сумму. Допускается десятичная запятая.
func ParseTotal(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return 0, fieldError("total", "Please enter a valid amount.")
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fieldError("total", "Please enter a valid amount.")
	}

	if err := ValidateTotal(&v); err != nil {
		return 0, err
	}

	return v, nil
}

// ValidateTotal проверяет необязательную сумму: nil допустим, иначе конечное неотрицательное
// число не больше MaxTotal.
func ValidateTotal(v *float64) error {
	if v == nil {
		return nil
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) || *v < 0 {
		return fieldError("total", "Amount must be a non-negative number.")
	}
	if *v > MaxTotal {
		return fieldError("total", "Amount is too large.")
	}
	return nil
}

// ValidateCredentials проверяет поля экрана входа и регистрации.
func ValidateCredentials(email, password, displayName string, signUp bool) error {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return fieldError("credentials", "Please fill in all fields.")
	}
	if !strings.Contains(email, "@") {
		return fieldError("email", "Please enter a valid email address.")
	}
	if signUp && strings.TrimSpace(displayName) == "" {
		return fieldError("displayName", "Please enter your name.")
	}
	return nil
}
