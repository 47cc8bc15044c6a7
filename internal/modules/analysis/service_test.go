package analysis

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/legalai/core/internal/pkg/apperr"
	"github.com/legalai/core/internal/pkg/pdftext"
)

type fakeExtractor struct {
	text  string
	err   error
	calls atomic.Int32
	pages []pdftext.PageSet
	mu    sync.Mutex
}

func (f *fakeExtractor) Extract(_ []byte, pages pdftext.PageSet) (string, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.pages = append(f.pages, pages)
	f.mu.Unlock()
	return f.text, f.err
}

type fakeSummarizer struct {
	configured bool
	summary    string
	err        error
	release    chan struct{}
	calls      atomic.Int32
	lastPrompt atomic.Value
}

func (f *fakeSummarizer) Configured() bool { return f.configured }

func (f *fakeSummarizer) Summarize(_ context.Context, prompt string) (string, error) {
	f.calls.Add(1)
	f.lastPrompt.Store(prompt)
	if f.release != nil {
		<-f.release
	}
	return f.summary, f.err
}

const sampleSummary = `This is a lease agreement for a residential property. Key points include:

• Term: 12 months
- Deposit: two months of rent
2. Pets are not allowed

The document appears balanced.`

func newTestService(ext *fakeExtractor, sum *fakeSummarizer, opts ...ServiceOption) *Service {
	cache := NewCache(NewMemoryStore(100, 0), "memory", 100, 0, nil)
	opts = append([]ServiceOption{WithExtractor(ext)}, opts...)
	return NewService(cache, sum, nil, opts...)
}

func TestAnalyzeTwiceCallsSummarizerOnce(t *testing.T) {
	ctx := context.Background()
	ext := &fakeExtractor{text: "The tenant shall pay rent monthly."}
	sum := &fakeSummarizer{configured: true, summary: sampleSummary}
	svc := newTestService(ext, sum)
	doc := []byte("%PDF-1.4 lease")

	first, hit, err := svc.Analyze(ctx, doc, "")
	if err != nil {
		t.Fatal(err)
	}
	if hit {
		t.Fatal("first call reported a hit")
	}
	second, hit, err := svc.Analyze(ctx, doc, "all")
	if err != nil {
		t.Fatal(err)
	}
	if !hit {
		t.Fatal("second call reported a miss")
	}
	if first != second {
		t.Fatal("cached entry differs from computed entry")
	}
	if n := sum.calls.Load(); n != 1 {
		t.Fatalf("summarizer called %d times, want 1", n)
	}
	if n := ext.calls.Load(); n != 1 {
		t.Fatalf("extractor called %d times, want 1", n)
	}

	if !first.Success || first.Summary != sampleSummary {
		t.Fatalf("entry = %+v", first)
	}
	want := []string{"• Term: 12 months", "- Deposit: two months of rent", "2. Pets are not allowed"}
	if strings.Join(first.Highlights, "|") != strings.Join(want, "|") {
		t.Fatalf("highlights = %q", first.Highlights)
	}
	if first.ExtractedText != "The tenant shall pay rent monthly...." {
		t.Fatalf("extractedText = %q", first.ExtractedText)
	}
	prompt, _ := sum.lastPrompt.Load().(string)
	if !strings.Contains(prompt, "Document Content:\nThe tenant shall pay rent monthly.") {
		t.Fatalf("prompt missing document text: %q", prompt)
	}

	stats, err := svc.Cache().Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Hits != 1 || stats.Misses != 1 || stats.Entries != 1 || stats.HitRate != 50 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestAnalyzeDistinctKeys(t *testing.T) {
	ctx := context.Background()
	ext := &fakeExtractor{text: "text"}
	sum := &fakeSummarizer{configured: true, summary: "ok"}
	svc := newTestService(ext, sum)

	svc.Analyze(ctx, []byte("doc-a"), "all")
	svc.Analyze(ctx, []byte("doc-b"), "all")
	svc.Analyze(ctx, []byte("doc-a"), "1-2")

	if n := sum.calls.Load(); n != 3 {
		t.Fatalf("summarizer called %d times, want 3", n)
	}
	if Key([]byte("doc-a"), "all") == Key([]byte("doc-b"), "all") {
		t.Fatal("different documents share a key")
	}
	if Key([]byte("doc-a"), "all") == Key([]byte("doc-a"), "1-2") {
		t.Fatal("different selections share a key")
	}
}

func TestKeyFormat(t *testing.T) {
	got := Key([]byte("abc"), "all")
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad-all"
	if got != want {
		t.Fatalf("Key = %q, want %q", got, want)
	}
}

func TestAnalyzeEmptyExtractionIsNotCached(t *testing.T) {
	ctx := context.Background()
	ext := &fakeExtractor{text: "  \n "}
	sum := &fakeSummarizer{configured: true, summary: "ok"}
	svc := newTestService(ext, sum)

	for i := 0; i < 2; i++ {
		_, _, err := svc.Analyze(ctx, []byte("scan"), "")
		if !apperr.Is(err, apperr.KindExtraction) {
			t.Fatalf("err = %v, want extraction error", err)
		}
	}
	if n := ext.calls.Load(); n != 2 {
		t.Fatalf("extractor called %d times, want 2", n)
	}
	if n := sum.calls.Load(); n != 0 {
		t.Fatalf("summarizer called %d times, want 0", n)
	}
	if n, _ := svc.Cache().store.Len(ctx); n != 0 {
		t.Fatalf("cache holds %d entries", n)
	}
}

func TestAnalyzeUpstreamFailureIsNotCached(t *testing.T) {
	ctx := context.Background()
	ext := &fakeExtractor{text: "text"}
	sum := &fakeSummarizer{configured: true, err: errors.New("quota exhausted")}
	svc := newTestService(ext, sum)

	_, _, err := svc.Analyze(ctx, []byte("doc"), "")
	if !apperr.Is(err, apperr.KindUpstream) {
		t.Fatalf("err = %v, want upstream error", err)
	}
	var e *apperr.Error
	if !errors.As(err, &e) || e.Message != "Failed to analyze document" || e.Details() != "quota exhausted" {
		t.Fatalf("err = %#v", err)
	}

	sum.err = nil
	sum.summary = "ok"
	if _, hit, err := svc.Analyze(ctx, []byte("doc"), ""); err != nil || hit {
		t.Fatalf("retry: hit=%v err=%v", hit, err)
	}
}

func TestAnalyzeNotConfigured(t *testing.T) {
	ctx := context.Background()
	ext := &fakeExtractor{text: "text"}
	svc := newTestService(ext, &fakeSummarizer{})

	_, _, err := svc.Analyze(ctx, []byte("doc"), "")
	if !apperr.Is(err, apperr.KindConfiguration) {
		t.Fatalf("err = %v, want configuration error", err)
	}
	if n := ext.calls.Load(); n != 0 {
		t.Fatal("extraction ran without a configured summarizer")
	}
}

func TestAnalyzeHitWithoutSummarizer(t *testing.T) {
	ctx := context.Background()
	ext := &fakeExtractor{text: "text"}
	sum := &fakeSummarizer{configured: true, summary: "ok"}
	svc := newTestService(ext, sum)

	if _, _, err := svc.Analyze(ctx, []byte("doc"), ""); err != nil {
		t.Fatal(err)
	}
	sum.configured = false
	if _, hit, err := svc.Analyze(ctx, []byte("doc"), ""); err != nil || !hit {
		t.Fatalf("hit=%v err=%v", hit, err)
	}
}

func TestAnalyzeEmptyDocument(t *testing.T) {
	svc := newTestService(&fakeExtractor{}, &fakeSummarizer{configured: true})
	_, _, err := svc.Analyze(context.Background(), nil, "")
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestAnalyzePageSelection(t *testing.T) {
	ctx := context.Background()

	ext := &fakeExtractor{text: "text"}
	svc := newTestService(ext, &fakeSummarizer{configured: true, summary: "ok"})
	if _, _, err := svc.Analyze(ctx, []byte("doc"), "2-3"); err != nil {
		t.Fatal(err)
	}
	if ext.pages[0] != nil {
		t.Fatal("selection applied while page selection is off")
	}

	ext = &fakeExtractor{text: "text"}
	svc = newTestService(ext, &fakeSummarizer{configured: true, summary: "ok"}, WithPageSelection(true))
	if _, _, err := svc.Analyze(ctx, []byte("doc"), "2-3"); err != nil {
		t.Fatal(err)
	}
	got := ext.pages[0]
	if len(got) != 2 || !got.Contains(2) || !got.Contains(3) {
		t.Fatalf("pages = %v", got)
	}
	if _, _, err := svc.Analyze(ctx, []byte("doc"), "5-1"); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestAnalyzeConcurrentMissesShareOneCall(t *testing.T) {
	ctx := context.Background()
	ext := &fakeExtractor{text: "text"}
	sum := &fakeSummarizer{configured: true, summary: "ok", release: make(chan struct{})}
	svc := newTestService(ext, sum)

	const n = 8
	var wg sync.WaitGroup
	entries := make([]*Entry, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			entries[i], _, errs[i] = svc.Analyze(ctx, []byte("same"), "")
		}(i)
	}
	close(sum.release)
	wg.Wait()

	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("call %d: %v", i, errs[i])
		}
		if entries[i].Summary != "ok" {
			t.Fatalf("call %d: %+v", i, entries[i])
		}
	}
	if c := sum.calls.Load(); c != 1 {
		t.Fatalf("summarizer called %d times, want 1", c)
	}
	stats, _ := svc.Cache().Stats(ctx)
	if stats.Misses != 1 || stats.Hits != n-1 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestExtractHighlights(t *testing.T) {
	in := "Intro line.\nRent - monthly\n  • spaced bullet  \nâ€¢ legacy bullet\n- dash\n10. tenth\nno marker\n\n"
	got := ExtractHighlights(in)
	want := []string{"• spaced bullet", "â€¢ legacy bullet", "- dash", "10. tenth"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("got %q", got)
	}
	if got := ExtractHighlights("plain"); got == nil || len(got) != 0 {
		t.Fatalf("got %#v, want empty non-nil", got)
	}
}

func TestPreview(t *testing.T) {
	long := strings.Repeat("é", 600)
	got := Preview(long)
	if got != strings.Repeat("é", 500)+"..." {
		t.Fatalf("preview of long text has %d runes", len([]rune(got)))
	}
	if Preview("short") != "short..." {
		t.Fatal("short text should still get an ellipsis")
	}
}
