package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ZaguanLabs/i18nmig"
	"github.com/google/go-cmp/cmp"
)

func TestBuildSystemPrompt(t *testing.T) {
	p := NewOpenAIProvider(OpenAIConfig{APIKey: "test"})

	req := SuggestRequest{
		SourceLocale: "es",
		TargetLocale: "en",
		Context:      "Back office of a logistics company",
		Glossary:     map[string]string{"Envío": "Shipment", "Albarán": "Delivery note"},
	}

	prompt := p.buildSystemPrompt(req)

	for _, want := range []string{"from Spanish to English", "logistics company", `"Albarán" → Delivery note`, `"Envío" → Shipment`} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt should contain %q", want)
		}
	}
	if strings.Index(prompt, "Albarán") > strings.Index(prompt, "Envío") {
		t.Error("glossary terms should be sorted")
	}
}

func TestBuildUserMessage(t *testing.T) {
	p := NewOpenAIProvider(OpenAIConfig{APIKey: "test"})

	tests := []struct {
		name string
		req  SuggestRequest
		want string
	}{
		{
			name: "plain array",
			req:  SuggestRequest{Texts: []string{"Guardar", "Cancelar"}, Hints: []string{"", ""}},
			want: `["Guardar","Cancelar"]`,
		},
		{
			name: "with hints",
			req:  SuggestRequest{Texts: []string{"Guardar", "Buscar"}, Hints: []string{"", "placeholder"}},
			want: `{"items":[{"text":"Guardar"},{"text":"Buscar","hint":"placeholder"}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.buildUserMessage(tt.req); got != tt.want {
				t.Errorf("buildUserMessage = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestParseResponse(t *testing.T) {
	p := NewOpenAIProvider(OpenAIConfig{APIKey: "test"})

	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{"suggestions key", `{"suggestions": ["Save", "Cancel"]}`, []string{"Save", "Cancel"}},
		{"other key", `{"results": ["Save", "Cancel"]}`, []string{"Save", "Cancel"}},
		{"direct array", `["Save", "Cancel"]`, []string{"Save", "Cancel"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.parseResponse(tt.content, 2)
			if err != nil {
				t.Fatalf("parseResponse failed: %v", err)
			}
			if d := cmp.Diff(tt.want, got); d != "" {
				t.Errorf("mismatch (-want +got):\n%s", d)
			}
		})
	}
}

func TestParseResponse_Errors(t *testing.T) {
	p := NewOpenAIProvider(OpenAIConfig{APIKey: "test"})

	_, err := p.parseResponse(`{"suggestions": ["Save"]}`, 2)
	var mismatch *i18nmig.CountMismatchError
	if !errors.As(err, &mismatch) {
		t.Errorf("expected CountMismatchError, got %v", err)
	}

	_, err = p.parseResponse("not json", 1)
	var perr *i18nmig.ProviderError
	if !errors.As(err, &perr) || perr.Retryable {
		t.Errorf("expected non-retryable ProviderError, got %v", err)
	}
}

func chatResponse(content string) string {
	body, _ := json.Marshal(map[string]interface{}{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 0,
		"model":   DefaultModel,
		"choices": []map[string]interface{}{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]string{"role": "assistant", "content": content},
		}},
	})
	return string(body)
}

func TestOpenAIProvider_Suggest(t *testing.T) {
	var gotAgent string
	var gotBody map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chatResponse(`{"suggestions": ["Save", "Cancel"]}`)))
	}))
	defer srv.Close()

	p := NewOpenAIProvider(OpenAIConfig{APIKey: "test", BaseURL: srv.URL})

	got, err := p.Suggest(context.Background(), SuggestRequest{
		Texts:        []string{"Guardar", "Cancelar"},
		SourceLocale: "es",
		TargetLocale: "en",
	})
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}

	if d := cmp.Diff([]string{"Save", "Cancel"}, got); d != "" {
		t.Errorf("suggestions mismatch (-want +got):\n%s", d)
	}
	if gotAgent != i18nmig.UserAgent() {
		t.Errorf("User-Agent = %q, want %q", gotAgent, i18nmig.UserAgent())
	}
	if gotBody["model"] != DefaultModel {
		t.Errorf("model = %v", gotBody["model"])
	}
}

func TestOpenAIProvider_Suggest_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "Rate limit reached", "type": "requests"}}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider(OpenAIConfig{APIKey: "test", BaseURL: srv.URL})

	_, err := p.Suggest(context.Background(), SuggestRequest{Texts: []string{"Guardar"}})

	var perr *i18nmig.ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if !perr.Retryable {
		t.Error("429 should be retryable")
	}
	if !i18nmig.IsRetryable(err) {
		t.Error("IsRetryable should agree with the error")
	}
}

func TestOpenAIProvider_Suggest_Empty(t *testing.T) {
	p := NewOpenAIProvider(OpenAIConfig{APIKey: "test", BaseURL: "http://127.0.0.1:0"})

	got, err := p.Suggest(context.Background(), SuggestRequest{})
	if err != nil || len(got) != 0 {
		t.Errorf("empty request should not call the API: %v, %v", got, err)
	}
}

func TestMockProvider(t *testing.T) {
	m := NewMockProvider()

	result, err := m.Suggest(context.Background(), SuggestRequest{Texts: []string{"Guardar", "Texto raro"}})
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}

	if d := cmp.Diff([]string{"Save", "[Texto raro]"}, result); d != "" {
		t.Errorf("mismatch (-want +got):\n%s", d)
	}
	if m.CallCount() != 1 || m.LastRequest() == nil {
		t.Errorf("call bookkeeping wrong: %d, %v", m.CallCount(), m.LastRequest())
	}

	m.Err = errors.New("offline")
	if _, err := m.Suggest(context.Background(), SuggestRequest{Texts: []string{"Guardar"}}); err == nil {
		t.Error("expected configured error")
	}
}

func TestMockProvider_WithSuggester(t *testing.T) {
	m := NewMockProvider()
	s := i18nmig.NewSuggester(i18nmig.NewRetryingProvider(m, i18nmig.DefaultBackoff()))

	result, err := s.Suggest(context.Background(), []i18nmig.SuggestItem{{Key: "estado", Text: "Estado"}})
	if err != nil {
		t.Fatal(err)
	}
	if result.Suggestions["estado"] != "Status" {
		t.Errorf("unexpected suggestions: %v", result.Suggestions)
	}
}
