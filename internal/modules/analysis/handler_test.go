package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestRouter(svc *Service, limit int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(svc, limit).RegisterRoutes(r.Group("/api"), func(c *gin.Context) { c.Next() })
	return r
}

func multipartRequest(t *testing.T, fields map[string]string, file []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if file != nil {
		fw, err := w.CreateFormFile("file", "lease.pdf")
		if err != nil {
			t.Fatal(err)
		}
		fw.Write(file)
	}
	w.Close()
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestAnalyzeHandlerCacheHeader(t *testing.T) {
	sum := &fakeSummarizer{configured: true, summary: sampleSummary}
	r := newTestRouter(newTestService(&fakeExtractor{text: "text"}, sum), 1<<20)

	for i, want := range []string{"miss", "hit"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, multipartRequest(t, map[string]string{"selectedPages": "all"}, []byte("%PDF-1.4")))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status %d body %s", i, rec.Code, rec.Body)
		}
		if got := rec.Header().Get(CacheHeader); got != want {
			t.Fatalf("request %d: %s = %q, want %q", i, CacheHeader, got, want)
		}
		var entry Entry
		if err := json.Unmarshal(rec.Body.Bytes(), &entry); err != nil {
			t.Fatal(err)
		}
		if !entry.Success || len(entry.Highlights) != 3 {
			t.Fatalf("request %d: %+v", i, entry)
		}
	}
	if n := sum.calls.Load(); n != 1 {
		t.Fatalf("summarizer called %d times", n)
	}
}

func TestAnalyzeHandlerErrors(t *testing.T) {
	tests := []struct {
		name    string
		ext     *fakeExtractor
		sum     *fakeSummarizer
		file    []byte
		status  int
		message string
	}{
		{"no file", &fakeExtractor{text: "x"}, &fakeSummarizer{configured: true}, nil, http.StatusBadRequest, "No file provided"},
		{"no key", &fakeExtractor{text: "x"}, &fakeSummarizer{}, []byte("doc"), http.StatusInternalServerError, "API key not configured"},
		{"no text", &fakeExtractor{}, &fakeSummarizer{configured: true}, []byte("doc"), http.StatusBadRequest, "Could not extract text from PDF"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(newTestService(tt.ext, tt.sum), 1<<20)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, multipartRequest(t, nil, tt.file))
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			var body struct {
				Error string `json:"error"`
			}
			json.Unmarshal(rec.Body.Bytes(), &body)
			if body.Error != tt.message {
				t.Fatalf("error = %q, want %q", body.Error, tt.message)
			}
		})
	}
}

func TestAnalyzeHandlerTooLarge(t *testing.T) {
	r := newTestRouter(newTestService(&fakeExtractor{text: "x"}, &fakeSummarizer{configured: true}), 1024)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, multipartRequest(t, nil, bytes.Repeat([]byte("a"), 4096)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestAdminCacheRoutes(t *testing.T) {
	svc := newTestService(&fakeExtractor{text: "x"}, &fakeSummarizer{configured: true, summary: "ok"})
	r := newTestRouter(svc, 1<<20)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, multipartRequest(t, nil, []byte("doc")))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/cache/analysis", nil))
	var stats Stats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatal(err)
	}
	if stats.Entries != 1 || stats.Misses != 1 || stats.Backend != "memory" {
		t.Fatalf("stats = %+v", stats)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/admin/cache/analysis", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("DELETE status = %d", rec.Code)
	}
	if n, _ := svc.Cache().store.Len(context.Background()); n != 0 {
		t.Fatalf("entries after clear = %d", n)
	}
}
