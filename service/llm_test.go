package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseTranslations(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []string
		wantErr bool
	}{
		{"plain array", `["a", "b"]`, []string{"a", "b"}, false},
		{"code fence", "```json\n[\"a\", \"b\"]\n```", []string{"a", "b"}, false},
		{"surrounding prose", `Here you go: ["a"] hope it helps`, []string{"a"}, false},
		{"empty array", `[]`, nil, true},
		{"not json", `sorry`, nil, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseTranslations(tc.in, 2)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("error: %v", err)
			}
			if strings.Join(got, "|") != strings.Join(tc.want, "|") {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestExtractResponseText(t *testing.T) {
	openai := `{"choices":[{"message":{"content":"[\"x\"]"}}]}`
	if got, err := extractResponseText([]byte(openai)); err != nil || got != `["x"]` {
		t.Fatalf("openai: %q, %v", got, err)
	}
	gemini := `{"candidates":[{"content":{"parts":[{"text":"[\"y\"]"}]}}]}`
	if got, err := extractResponseText([]byte(gemini)); err != nil || got != `["y"]` {
		t.Fatalf("gemini: %q, %v", got, err)
	}
	if _, err := extractResponseText([]byte(`{"error":{"message":"quota"}}`)); err == nil || !strings.Contains(err.Error(), "API error: quota") {
		t.Fatalf("error response: %v", err)
	}
	if _, err := extractResponseText([]byte(`{"foo":1}`)); err == nil {
		t.Fatal("expected error for unknown shape")
	}
}

func TestOpenAITranslateBatch(t *testing.T) {
	var gotPrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &req)
		if req.Model != "test-model" || len(req.Messages) != 2 {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		gotPrompt = req.Messages[1].Content
		w.Write([]byte(`{"choices":[{"message":{"content":"` + "```json\\n[\\\"Bonjour\\\", \\\"Au revoir\\\"]\\n```" + `"}}]}`))
	}))
	defer srv.Close()

	p, _ := New(OpenAI)
	err := p.Initialize(context.Background(), Config{APIKey: "sk-test", Model: "test-model", BaseURL: srv.URL + "/v1"})
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	got, err := p.TranslateBatch(context.Background(), []String{{Key: "hi", Text: "Hello"}, {Key: "bye", Text: "Bye"}}, "en", "fr")
	if err != nil {
		t.Fatalf("TranslateBatch: %v", err)
	}
	if len(got) != 2 || got[0].Translated != "Bonjour" || got[1].Key != "bye" || got[1].Translated != "Au revoir" {
		t.Fatalf("results = %#v", got)
	}
	if !strings.Contains(gotPrompt, `1. "Hello"`) || !strings.Contains(gotPrompt, "exactly 2 translated strings") {
		t.Fatalf("prompt = %q", gotPrompt)
	}
	if !strings.Contains(gotPrompt, "to French") {
		t.Fatalf("prompt does not name the target language: %q", gotPrompt)
	}
}

func TestOpenAICountMismatchReturnsNothing(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"one dropped", `[\"Au revoir\"]`},
		{"one extra", `[\"Bonjour\", \"Au revoir\", \"Merci\"]`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"choices":[{"message":{"content":"` + tc.content + `"}}]}`))
			}))
			defer srv.Close()

			p, _ := New(OpenAI)
			p.Initialize(context.Background(), Config{BaseURL: srv.URL})
			got, err := p.TranslateBatch(context.Background(),
				[]String{{Key: "hello", Text: "Hello"}, {Key: "bye", Text: "Bye"}}, "en", "fr")
			if err != nil {
				t.Fatalf("TranslateBatch: %v", err)
			}
			if len(got) != 0 {
				t.Fatalf("results = %#v, want none", got)
			}
		})
	}
}

func TestOpenAIRequiresKeyForDefaultEndpoint(t *testing.T) {
	p, _ := New(OpenAI)
	if err := p.Initialize(context.Background(), Config{}); err == nil {
		t.Fatal("expected error without key")
	}
}

func TestGeminiTranslateBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1beta/models/"+GeminiModel+":generateContent" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("x-goog-api-key") != "g-key" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"[\"Hallo\"]"}]}}]}`))
	}))
	defer srv.Close()

	p, _ := New(Gemini)
	if err := p.Initialize(context.Background(), Config{APIKey: "g-key", BaseURL: srv.URL}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	got, err := p.TranslateBatch(context.Background(), []String{{Key: "hello", Text: "Hello"}}, "en", "de")
	if err != nil {
		t.Fatalf("TranslateBatch: %v", err)
	}
	if len(got) != 1 || got[0].Translated != "Hallo" {
		t.Fatalf("results = %#v", got)
	}
}

func TestEscapeForPrompt(t *testing.T) {
	if got := escapeForPrompt("a\nb\tc"); got != `"a\nb\tc"` {
		t.Fatalf("escapeForPrompt = %s", got)
	}
}
