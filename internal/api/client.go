// Package api предоставляет клиент REST-сервиса чеков.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"

	"github.com/mmeshcher/receiptly/internal/model"
)

const (
	defaultTimeout  = 10 * time.Second
	defaultRetryMax = 2
	defaultFilename = "receipt.jpg"
)

var (
	// ErrNotConfigured возвращается, если у клиента не задан адрес сервиса.
	ErrNotConfigured = errors.New("api client not configured")
	// ErrEmptyID возвращается при обращении к чеку без идентификатора.
	ErrEmptyID = errors.New("empty receipt id")
)

// TokenSource отдаёт токен текущей сессии. Без токена запросы уходят анонимно.
type TokenSource interface {
	Token() (string, bool)
}

// Options задаёт параметры клиента.
type Options struct {
	Timeout  time.Duration
	RetryMax int
	Tokens   TokenSource
	Logger   *zap.Logger
}

// Client инкапсулирует HTTP-взаимодействие с сервисом чеков.
type Client struct {
	baseURL string
	http    *retryablehttp.Client
	tokens  TokenSource
}

// NewClient создаёт клиент сервиса чеков по базовому адресу API, например http://localhost:8080/api.
func NewClient(baseURL string, opts Options) *Client {
	base := strings.TrimRight(baseURL, "/")
	if base != "" && !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}

	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.RetryMax < 0 {
		opts.RetryMax = 0
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	httpClient := cleanhttp.DefaultPooledClient()
	httpClient.Timeout = opts.Timeout

	rc := retryablehttp.NewClient()
	rc.HTTPClient = httpClient
	rc.RetryMax = opts.RetryMax
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.Logger = zapLeveledLogger{opts.Logger.Sugar()}
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.CheckRetry = checkRetry

	return &Client{
		baseURL: base,
		http:    rc,
		tokens:  opts.Tokens,
	}
}

// SetTokenSource заменяет источник токена.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.tokens = ts
}

// ListReceipts возвращает все чеки пользователя.
func (c *Client) ListReceipts(ctx context.Context) ([]model.Receipt, error) {
	var res []model.Receipt
	if err := c.doJSON(ctx, http.MethodGet, "/receipts", nil, &res); err != nil {
		return nil, err
	}
	if res == nil {
		res = []model.Receipt{}
	}
	return res, nil
}

// GetReceipt возвращает чек по идентификатору.
func (c *Client) GetReceipt(ctx context.Context, id string) (*model.Receipt, error) {
	if id == "" {
		return nil, ErrEmptyID
	}
	var res model.Receipt
	if err := c.doJSON(ctx, http.MethodGet, receiptPath(id), nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// CreateReceipt создаёт чек вручную.
func (c *Client) CreateReceipt(ctx context.Context, in model.ReceiptInput) (*model.Receipt, error) {
	var res model.Receipt
	if err := c.doJSON(ctx, http.MethodPost, "/receipts", in, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// UpdateReceipt полностью заменяет изменяемые поля чека.
func (c *Client) UpdateReceipt(ctx context.Context, id string, in model.ReceiptInput) (*model.Receipt, error) {
	if id == "" {
		return nil, ErrEmptyID
	}
	var res model.Receipt
	if err := c.doJSON(ctx, http.MethodPut, receiptPath(id), in, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// DeleteReceipt удаляет чек.
func (c *Client) DeleteReceipt(ctx context.Context, id string) error {
	if id == "" {
		return ErrEmptyID
	}
	return c.doJSON(ctx, http.MethodDelete, receiptPath(id), nil, nil)
}

// UploadReceiptImage загружает изображение чека. Сервис сам извлекает поля
// и возвращает заполненный или частично заполненный чек.
func (c *Client) UploadReceiptImage(ctx context.Context, filename string, data []byte) (*model.Receipt, error) {
	filename = filepath.Base(filename)
	if filename == "" || filename == "." || filename == string(filepath.Separator) {
		filename = defaultFilename
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", ImageContentType(filename))

	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("create form part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("write form part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close form: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/receipts/upload", body.Bytes(), mw.FormDataContentType())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var res model.Receipt
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &res, nil
}

// ReceiptImage скачивает изображение чека и возвращает его вместе с типом содержимого.
func (c *Client) ReceiptImage(ctx context.Context, id string) ([]byte, string, error) {
	if id == "" {
		return nil, "", ErrEmptyID
	}
	resp, err := c.do(ctx, http.MethodGet, receiptPath(id)+"/image", nil, "")
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read image: %w", err)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

// ImageContentType определяет тип изображения по расширению файла.
func ImageContentType(filename string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	switch ext {
	case "":
		return "image/jpeg"
	case "jpg":
		return "image/jpeg"
	default:
		return "image/" + ext
	}
}

func receiptPath(id string) string {
	return path.Join("/receipts", url.PathEscape(id))
}

func (c *Client) doJSON(ctx context.Context, method, endpoint string, in, out any) error {
	var body []byte
	contentType := ""
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = b
		contentType = "application/json"
	}

	resp, err := c.do(ctx, method, endpoint, body, contentType)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// do выполняет запрос и возвращает ответ с кодом 2xx. Тело ответа закрывает вызывающий.
func (c *Client) do(ctx context.Context, method, endpoint string, body []byte, contentType string) (*http.Response, error) {
	if c == nil || c.baseURL == "" {
		return nil, ErrNotConfigured
	}

	var reqBody any
	if body != nil {
		reqBody = body
	}

	if !idempotent(method) {
		ctx = context.WithValue(ctx, noRetryKey{}, true)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.tokens != nil {
		if tok, ok := c.tokens.Token(); ok {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return nil, fmt.Errorf("do request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, newStatusError(resp)
	}

	return resp, nil
}

type noRetryKey struct{}

// checkRetry не повторяет неидемпотентные запросы, остальные решает политика по умолчанию.
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if noRetry, _ := ctx.Value(noRetryKey{}).(bool); noRetry {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, ctxErr
		}
		return false, nil
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

func idempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}
