package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/legalai/core/internal/transcache"
)

func TestTranslateTextUsesCache(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/api/translate" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.FormValue("text"); got != "Hello world" {
			t.Errorf("text = %q", got)
		}
		if got := r.FormValue("targetLanguage"); got != "fr" {
			t.Errorf("targetLanguage = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"originalText":"Hello world","translatedText":"Bonjour le monde","detectedLanguage":"en","targetLanguage":"fr"}`)
	}))
	defer srv.Close()

	cache := transcache.New(transcache.NewMemoryStorage(0))
	c := New(srv.URL, WithTranslationCache(cache))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res, err := c.TranslateText(ctx, "Hello world", "fr")
		if err != nil {
			t.Fatal(err)
		}
		if res.TranslatedText != "Bonjour le monde" {
			t.Fatalf("call %d: %+v", i, res)
		}
	}
	if n := calls.Load(); n != 1 {
		t.Fatalf("server called %d times, want 1", n)
	}
	stats := cache.Stats(ctx)
	if stats.Hits != 1 || stats.Misses != 1 || stats.CacheSize != 1 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestTranslatePDFSkipsCache(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		f, fh, err := r.FormFile("pdf")
		if err != nil {
			t.Errorf("pdf field: %v", err)
		} else {
			f.Close()
			if fh.Filename != "lease.pdf" {
				t.Errorf("filename = %q", fh.Filename)
			}
		}
		io.WriteString(w, `{"originalText":"x","translatedText":"y","detectedLanguage":"en","targetLanguage":"fr"}`)
	}))
	defer srv.Close()

	cache := transcache.New(transcache.NewMemoryStorage(0))
	c := New(srv.URL, WithTranslationCache(cache))
	for i := 0; i < 2; i++ {
		if _, err := c.TranslatePDF(context.Background(), "lease.pdf", []byte("%PDF"), ""); err != nil {
			t.Fatal(err)
		}
	}
	if n := calls.Load(); n != 2 {
		t.Fatalf("server called %d times, want 2", n)
	}
	if cache.Inspect(context.Background()) != nil {
		t.Fatal("PDF translation was cached")
	}
}

func TestAnalyze(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.FormValue("selectedPages") != "1-2" {
			t.Errorf("selectedPages = %q", r.FormValue("selectedPages"))
		}
		w.Header().Set(analysisCacheHeader, "hit")
		io.WriteString(w, `{"summary":"S","highlights":["• a"],"extractedText":"t...","success":true}`)
	}))
	defer srv.Close()

	res, err := New(srv.URL).Analyze(context.Background(), "a.pdf", []byte("%PDF"), "1-2")
	if err != nil {
		t.Fatal(err)
	}
	if !res.Cached || res.Summary != "S" || len(res.Highlights) != 1 {
		t.Fatalf("result = %+v", res)
	}
}

func TestAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"error":"Failed to analyze document","details":"quota"}`)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Analyze(context.Background(), "a.pdf", []byte("%PDF"), "")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v", err)
	}
	if apiErr.Status != 500 || apiErr.Message != "Failed to analyze document" || apiErr.Details != "quota" {
		t.Fatalf("apiErr = %+v", apiErr)
	}
}

func TestTranslateTextErrorIsNotCached(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"error":"Azure Translator service not configured."}`)
	}))
	defer srv.Close()

	cache := transcache.New(transcache.NewMemoryStorage(0))
	c := New(srv.URL, WithTranslationCache(cache))
	for i := 0; i < 2; i++ {
		if _, err := c.TranslateText(context.Background(), "Hi", "de"); err == nil {
			t.Fatal("expected error")
		}
	}
	if calls.Load() != 2 {
		t.Fatalf("server called %d times", calls.Load())
	}
}

func TestAssist(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		io.WriteString(w, `{"action":"explain","result":"It means...","source":"ai"}`)
	}))
	defer srv.Close()

	res, err := New(srv.URL + "/").Assist(context.Background(), "explain", "Tort", "")
	if err != nil {
		t.Fatal(err)
	}
	if res.Source != "ai" || res.Result != "It means..." {
		t.Fatalf("result = %+v", res)
	}
}
