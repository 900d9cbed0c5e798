package handler

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/mmeshcher/receiptly/internal/model"
	"github.com/mmeshcher/receiptly/internal/repository"
)

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		t.Fatalf("write gzip: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close gzip: %v", err)
	}
	return buf.Bytes()
}

func readBody(t *testing.T, res *http.Response) []byte {
	t.Helper()

	var r io.Reader = res.Body
	if res.Header.Get("Content-Encoding") == "gzip" {
		zr, err := gzip.NewReader(res.Body)
		if err != nil {
			t.Fatalf("new gzip reader: %v", err)
		}
		defer zr.Close()
		r = zr
	}

	body, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return body
}

func TestRouterCompression(t *testing.T) {
	target := model.Receipt{ID: "r1", Vendor: "Target", Date: "2024-06-01", Total: model.Float(12.5)}
	aldiJSON := []byte(`{"vendor":"Aldi","date":"2024-06-02","total":3.2}`)

	tests := []struct {
		name         string
		method       string
		target       string
		body         []byte
		header       http.Header
		wantStatus   int
		wantEncoding string
		wantType     string
		check        func(t *testing.T, svc *stubService, body []byte)
	}{
		{
			name:         "receipt list is gzipped",
			method:       http.MethodGet,
			target:       "/api/receipts",
			header:       http.Header{"Accept-Encoding": {"gzip"}},
			wantStatus:   http.StatusOK,
			wantEncoding: "gzip",
			wantType:     "application/json",
			check: func(t *testing.T, _ *stubService, body []byte) {
				var got []model.Receipt
				if err := json.Unmarshal(body, &got); err != nil {
					t.Fatalf("decode list: %v", err)
				}
				if len(got) != 1 || got[0].Vendor != "Target" || got[0].Amount() != 12.5 {
					t.Fatalf("list = %+v", got)
				}
			},
		},
		{
			name:       "plain list without accept-encoding",
			method:     http.MethodGet,
			target:     "/api/receipts",
			wantStatus: http.StatusOK,
			wantType:   "application/json",
			check: func(t *testing.T, _ *stubService, body []byte) {
				if !bytes.Contains(body, []byte(`"vendor":"Target"`)) {
					t.Fatalf("body = %s", body)
				}
			},
		},
		{
			name:   "gzipped receipt is unpacked before decoding",
			method: http.MethodPost,
			target: "/api/receipts",
			body:   gzipBytes(t, aldiJSON),
			header: http.Header{
				"Content-Encoding": {"gzip"},
				"Content-Type":     {"application/json"},
				"Accept-Encoding":  {"gzip"},
			},
			wantStatus:   http.StatusOK,
			wantEncoding: "gzip",
			wantType:     "application/json",
			check: func(t *testing.T, svc *stubService, body []byte) {
				if svc.createIn.Vendor != "Aldi" || svc.createIn.Date != "2024-06-02" {
					t.Fatalf("service got %+v", svc.createIn)
				}
				if !bytes.Contains(body, []byte(`"id":"r2"`)) {
					t.Fatalf("body = %s", body)
				}
			},
		},
		{
			name:       "receipt image is sent as is",
			method:     http.MethodGet,
			target:     "/api/receipts/r1/image",
			header:     http.Header{"Accept-Encoding": {"gzip"}},
			wantStatus: http.StatusOK,
			wantType:   "image/png",
			check: func(t *testing.T, _ *stubService, body []byte) {
				if string(body) != "\x89PNG" {
					t.Fatalf("image bytes changed: %q", body)
				}
			},
		},
		{
			name:       "delete has no body to compress",
			method:     http.MethodDelete,
			target:     "/api/receipts/r1",
			header:     http.Header{"Accept-Encoding": {"gzip"}},
			wantStatus: http.StatusNoContent,
		},
		{
			name:   "broken gzip body",
			method: http.MethodPost,
			target: "/api/receipts",
			body:   aldiJSON,
			header: http.Header{
				"Content-Encoding": {"gzip"},
				"Content-Type":     {"application/json"},
			},
			wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, svc *stubService, _ []byte) {
				if svc.createIn.Vendor != "" {
					t.Fatalf("service must not be called, got %+v", svc.createIn)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{
				listResp:   []model.Receipt{target},
				createResp: &model.Receipt{ID: "r2", Vendor: "Aldi"},
				image:      &repository.Image{Data: []byte("\x89PNG"), ContentType: "image/png"},
			}
			h := newTestHandler(t, svc, false)

			res := serve(h, tt.method, tt.target, tt.body, tt.header)
			defer res.Body.Close()

			if res.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", res.StatusCode, tt.wantStatus)
			}
			if ce := res.Header.Get("Content-Encoding"); ce != tt.wantEncoding {
				t.Fatalf("content-encoding = %q, want %q", ce, tt.wantEncoding)
			}
			if tt.wantType != "" {
				if ct := res.Header.Get("Content-Type"); ct != tt.wantType {
					t.Fatalf("content-type = %q, want %q", ct, tt.wantType)
				}
			}

			body := readBody(t, res)
			if tt.check != nil {
				tt.check(t, svc, body)
			}
		})
	}
}
