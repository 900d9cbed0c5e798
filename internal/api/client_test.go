package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/receiptly/internal/model"
)

type staticToken string

func (s staticToken) Token() (string, bool) {
	return string(s), s != ""
}

func newTestClient(t *testing.T, h http.HandlerFunc, ts TokenSource) *Client {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	return NewClient(srv.URL+"/api", Options{
		Timeout:  time.Second,
		RetryMax: 2,
		Tokens:   ts,
	})
}

func testCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestListReceipts_OK(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/receipts", r.URL.Path)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{"id":"a","vendor":"Walmart","date":"2024-06-01","total":12.5,"image_url":"","user_id":"u1","created_at":"2024-06-01T10:00:00Z"},{"id":"b","vendor":null,"date":"2024-05-01","total":null}]`)
	}, staticToken("tok-1"))

	got, err := c.ListReceipts(testCtx(t))
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "Walmart", got[0].Vendor)
	require.NotNil(t, got[0].Total)
	assert.Equal(t, 12.5, *got[0].Total)
	assert.Equal(t, "u1", got[0].UserID)

	assert.Equal(t, model.UnknownVendor, got[1].DisplayVendor())
	assert.Nil(t, got[1].Total)
}

func TestListReceipts_Anonymous(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `null`)
	}, staticToken(""))

	got, err := c.ListReceipts(testCtx(t))
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGetReceipt_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/receipts/missing", r.URL.Path)
		http.Error(w, "receipt not found", http.StatusNotFound)
	}, nil)

	_, err := c.GetReceipt(testCtx(t), "missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.EqualError(t, err, "API Error 404: receipt not found")
}

func TestCreateReceipt_SendsJSONWithoutRetry(t *testing.T) {
	var calls atomic.Int32

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var in model.ReceiptInput
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "Target", in.Vendor)

		w.WriteHeader(http.StatusServiceUnavailable)
	}, nil)

	_, err := c.CreateReceipt(testCtx(t), model.ReceiptInput{Vendor: "Target", Date: "2024-06-01", Total: model.Float(3)})
	require.Error(t, err)
	assert.EqualError(t, err, "API Error 503: Service Unavailable")
	assert.Equal(t, int32(1), calls.Load())
}

func TestGetReceipt_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = io.WriteString(w, `{"id":"r1","vendor":"Costco","date":"2024-06-01","total":7}`)
	}, nil)

	got, err := c.GetReceipt(testCtx(t), "r1")
	require.NoError(t, err)
	assert.Equal(t, "Costco", got.Vendor)
	assert.Equal(t, int32(2), calls.Load())
}

func TestUpdateAndDelete(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			assert.Equal(t, "/api/receipts/r1", r.URL.Path)
			var in model.ReceiptInput
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			_ = json.NewEncoder(w).Encode(model.Receipt{ID: "r1", Vendor: in.Vendor, Date: in.Date, Total: in.Total})
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	}, nil)

	ctx := testCtx(t)

	got, err := c.UpdateReceipt(ctx, "r1", model.ReceiptInput{Vendor: "Aldi", Date: "2024-06-02", Total: model.Float(4.2)})
	require.NoError(t, err)
	assert.Equal(t, "Aldi", got.Vendor)

	require.NoError(t, c.DeleteReceipt(ctx, "r1"))
	assert.ErrorIs(t, c.DeleteReceipt(ctx, ""), ErrEmptyID)
}

func TestUploadReceiptImage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/receipts/upload", r.URL.Path)

		file, header, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()

		data, _ := io.ReadAll(file)
		assert.Equal(t, "png-bytes", string(data))
		assert.Equal(t, "scan.png", header.Filename)
		assert.Equal(t, "image/png", header.Header.Get("Content-Type"))

		_, _ = io.WriteString(w, `{"id":"up1","image_url":"/api/receipts/up1/image"}`)
	}, nil)

	got, err := c.UploadReceiptImage(testCtx(t), "/tmp/photos/scan.png", []byte("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "up1", got.ID)
	assert.Equal(t, "/api/receipts/up1/image", got.ImageURL)
}

func TestReceiptImage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/receipts/r1/image", r.URL.Path)
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte{1, 2, 3})
	}, nil)

	data, ct, err := c.ReceiptImage(testCtx(t), "r1")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, data)
	assert.Equal(t, "image/png", ct)
}

func TestNotConfigured(t *testing.T) {
	c := NewClient("", Options{})
	_, err := c.ListReceipts(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestImageContentType(t *testing.T) {
	assert.Equal(t, "image/jpeg", ImageContentType("a.jpg"))
	assert.Equal(t, "image/jpeg", ImageContentType("noext"))
	assert.Equal(t, "image/png", ImageContentType("A.PNG"))
	assert.Equal(t, "image/heic", ImageContentType("IMG_1.heic"))
}
