package assist

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/legalai/core/internal/pkg/apperr"
)

type fakeAssistant struct {
	configured bool
	out        string
	err        error
	prompt     string
}

func (f *fakeAssistant) AssistConfigured() bool { return f.configured }

func (f *fakeAssistant) Assist(_ context.Context, _, prompt string) (string, error) {
	f.prompt = prompt
	return f.out, f.err
}

func TestRunMockResponses(t *testing.T) {
	svc := NewService(&fakeAssistant{}, nil)
	tests := []struct {
		action string
		want   string
	}{
		{"translate", "Translation: Force Majeure (French: Texte traduit en français)"},
		{"summarize", "Summary: This text discusses force majeure and its key implications."},
		{"explain", "Explanation: Force Majeure refers to a legal concept that means..."},
	}
	for _, tt := range tests {
		res, err := svc.Run(context.Background(), Request{Action: tt.action, Text: "Force Majeure"})
		if err != nil {
			t.Fatalf("%s: %v", tt.action, err)
		}
		if res.Result != tt.want || res.Source != SourceMock || res.Action != tt.action {
			t.Fatalf("%s: %+v", tt.action, res)
		}
	}
}

func TestRunUsesModel(t *testing.T) {
	fa := &fakeAssistant{configured: true, out: "  Der Mieter zahlt.  "}
	res, err := NewService(fa, nil).Run(context.Background(), Request{Action: "Translate", Text: "The tenant pays.", TargetLanguage: "de"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Result != "Der Mieter zahlt." || res.Source != SourceAI || res.Action != "translate" {
		t.Fatalf("result = %+v", res)
	}
	if !strings.Contains(fa.prompt, "German") || !strings.Contains(fa.prompt, "The tenant pays.") {
		t.Fatalf("prompt = %q", fa.prompt)
	}
}

func TestRunFallsBackOnFailure(t *testing.T) {
	fa := &fakeAssistant{configured: true, err: errors.New("timeout")}
	res, err := NewService(fa, nil).Run(context.Background(), Request{Action: "explain", Text: "Estoppel"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Source != SourceMock {
		t.Fatalf("source = %q", res.Source)
	}
}

func TestRunValidation(t *testing.T) {
	svc := NewService(nil, nil)
	for _, req := range []Request{{Action: "explain"}, {Action: "rewrite", Text: "x"}} {
		if _, err := svc.Run(context.Background(), req); !apperr.Is(err, apperr.KindValidation) {
			t.Fatalf("%+v: err = %v", req, err)
		}
	}
}

func TestHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(NewService(nil, nil)).RegisterRoutes(r.Group("/api"))

	tests := []struct {
		body   string
		status int
		substr string
	}{
		{`{"action":"summarize","text":"Indemnity"}`, http.StatusOK, `"source":"mock"`},
		{`{"action":"summarize"}`, http.StatusBadRequest, "No text provided"},
		{`not json`, http.StatusBadRequest, "Invalid request body"},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/assist", strings.NewReader(tt.body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(rec, req)
		if rec.Code != tt.status || !strings.Contains(rec.Body.String(), tt.substr) {
			t.Fatalf("%s: %d %s", tt.body, rec.Code, rec.Body)
		}
	}
}
