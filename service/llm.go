package service

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/minios-linux/locsync/langmeta"
)

// Default endpoints and models of the LLM services.
const (
	OpenAIBaseURL = "https://api.openai.com/v1"
	OpenAIModel   = "gpt-4o-mini"
	GeminiBaseURL = "https://generativelanguage.googleapis.com"
	GeminiModel   = "gemini-2.0-flash"
)

// SystemPrompt is sent to the LLM services. {{targetLang}} is replaced
// with the English name of the target language.
const SystemPrompt = `You are a professional translator specializing in software and product localization. You are translating UI strings for a software application.

CONTEXT AWARENESS:
- The audience is software users
- Tone: professional yet approachable, clear and concise
- Use IT/software terminology that is standard in {{targetLang}} tech community

IMPORTANT TRANSLATION PRINCIPLES:
- Translate for NATURALNESS and FLUENCY in the target language, not word-for-word
- Use idiomatic expressions natural to {{targetLang}}, not literal translations
- Maintain the original tone and intent, but express it naturally in {{targetLang}}

TECHNICAL REQUIREMENTS:
- Return ONLY a JSON array of translated strings, one for each input entry, in the same order.
- Markup of the form <span translate="no">N</span> stands for a placeholder. Copy every such span exactly, including its number, and move it where the grammar of {{targetLang}} needs it.
- Preserve leading/trailing whitespace, newlines, and punctuation patterns.
- Keep brand names and proper nouns unchanged.
- Return ONLY the JSON array, no explanations or markdown code blocks.`

var markdownCodeBlock = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// llmService asks a chat model for a JSON array of translations.
type llmService struct {
	id      string
	model   string
	baseURL string
	apiKey  string
	http    *caller
}

func newLLMService(id string) *llmService {
	return &llmService{id: id}
}

func (l *llmService) Name() string { return l.id }

func (l *llmService) Initialize(_ context.Context, cfg Config) error {
	l.apiKey = cfg.APIKey
	if l.apiKey == "" {
		l.apiKey = cfg.Raw
	}
	l.model = cfg.Model
	l.baseURL = strings.TrimRight(cfg.BaseURL, "/")

	switch l.id {
	case Gemini:
		if l.baseURL == "" {
			l.baseURL = GeminiBaseURL
		}
		if l.model == "" {
			l.model = GeminiModel
		}
		if l.apiKey == "" {
			return fmt.Errorf("gemini: an API key is required")
		}
	default:
		if l.baseURL == "" {
			l.baseURL = OpenAIBaseURL
		}
		if l.model == "" {
			l.model = OpenAIModel
		}
		// Local OpenAI-compatible servers (Ollama) need no key.
		if l.apiKey == "" && l.baseURL == OpenAIBaseURL {
			return fmt.Errorf("openai: an API key is required")
		}
	}

	l.http = newCaller(l.id, cfg)
	return nil
}

func (l *llmService) SupportsLanguage(code string) bool {
	_, ok := parseLang(code)
	return ok
}

func (l *llmService) TranslateBatch(ctx context.Context, batch []String, from, to string) ([]Result, error) {
	if len(batch) == 0 {
		return nil, nil
	}

	targetName := langmeta.EnglishName(to)
	systemPrompt := strings.ReplaceAll(SystemPrompt, "{{targetLang}}", targetName)

	var userMsg strings.Builder
	fmt.Fprintf(&userMsg, "Translate these UI strings from %s to %s:\n\n", langmeta.EnglishName(from), targetName)
	for i, s := range batch {
		fmt.Fprintf(&userMsg, "%d. %s\n", i+1, escapeForPrompt(s.Text))
	}
	fmt.Fprintf(&userMsg, "\nReturn a JSON array with exactly %d translated strings.", len(batch))

	endpoint, headers, body, err := l.buildRequest(systemPrompt, userMsg.String())
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	respBody, err := l.http.do(ctx, "POST", endpoint, headers, body)
	if err != nil {
		return nil, err
	}
	text, err := extractResponseText(respBody)
	if err != nil {
		return nil, err
	}
	translations, err := parseTranslations(text, len(batch))
	if err != nil {
		return nil, err
	}

	// Entries carry no keys, so a count mismatch leaves no way to tell
	// which string was dropped or added. Nothing is returned and the
	// caller reports every key of the batch as missing.
	if len(translations) != len(batch) {
		return nil, nil
	}
	results := make([]Result, len(batch))
	for i, s := range batch {
		results[i] = Result{Key: s.Key, Translated: translations[i]}
	}
	return results, nil
}

// buildRequest constructs the endpoint, headers, and body for the service.
func (l *llmService) buildRequest(systemPrompt, userPrompt string) (string, map[string]string, []byte, error) {
	headers := map[string]string{
		"Content-Type": "application/json",
	}

	if l.id == Gemini {
		// Google AI: POST /v1beta/models/{model}:generateContent
		endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", l.baseURL, l.model)
		headers["x-goog-api-key"] = l.apiKey
		body, err := buildGeminiRequest(systemPrompt, userPrompt, 0.3)
		return endpoint, headers, body, err
	}

	endpoint := l.baseURL
	if !strings.HasSuffix(endpoint, "/chat/completions") {
		endpoint += "/chat/completions"
	}
	if l.apiKey != "" {
		headers["Authorization"] = "Bearer " + l.apiKey
	}
	body, err := buildOpenAIChatRequest(l.model, systemPrompt, userPrompt, 0.3)
	return endpoint, headers, body, err
}

// ---------------------------------------------------------------------------
// Request builders
// ---------------------------------------------------------------------------

func buildOpenAIChatRequest(model, systemPrompt, userPrompt string, temperature float64) ([]byte, error) {
	type msg struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	req := struct {
		Model       string  `json:"model"`
		Messages    []msg   `json:"messages"`
		Temperature float64 `json:"temperature"`
		Stream      bool    `json:"stream"`
	}{
		Model: model,
		Messages: []msg{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: temperature,
	}
	return json.Marshal(req)
}

func buildGeminiRequest(systemPrompt, userPrompt string, temperature float64) ([]byte, error) {
	type part struct {
		Text string `json:"text"`
	}
	type content struct {
		Role  string `json:"role,omitempty"`
		Parts []part `json:"parts"`
	}
	type genConfig struct {
		Temperature float64 `json:"temperature"`
	}
	req := struct {
		Contents          []content `json:"contents"`
		GenerationConfig  genConfig `json:"generationConfig"`
		SystemInstruction *content  `json:"systemInstruction,omitempty"`
	}{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: userPrompt}}},
		},
		GenerationConfig: genConfig{Temperature: temperature},
	}
	if systemPrompt != "" {
		req.SystemInstruction = &content{Parts: []part{{Text: systemPrompt}}}
	}
	return json.Marshal(req)
}

// ---------------------------------------------------------------------------
// Response parsing
// ---------------------------------------------------------------------------

// extractResponseText returns the model text of an OpenAI chat or Gemini
// generateContent response.
func extractResponseText(body []byte) (string, error) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", fmt.Errorf("invalid JSON response: %w", err)
	}

	if errObj, ok := raw["error"]; ok {
		if errMap, ok := errObj.(map[string]any); ok {
			if msg, ok := errMap["message"].(string); ok {
				return "", fmt.Errorf("API error: %s", msg)
			}
		}
		return "", fmt.Errorf("API error: %v", errObj)
	}

	// OpenAI chat format: choices[0].message.content
	if choices, ok := raw["choices"].([]any); ok && len(choices) > 0 {
		if choice, ok := choices[0].(map[string]any); ok {
			if message, ok := choice["message"].(map[string]any); ok {
				if content, ok := message["content"].(string); ok {
					return content, nil
				}
			}
		}
	}

	// Gemini format: candidates[0].content.parts[0].text
	if candidates, ok := raw["candidates"].([]any); ok && len(candidates) > 0 {
		if candidate, ok := candidates[0].(map[string]any); ok {
			if content, ok := candidate["content"].(map[string]any); ok {
				if parts, ok := content["parts"].([]any); ok && len(parts) > 0 {
					if part, ok := parts[0].(map[string]any); ok {
						if text, ok := part["text"].(string); ok {
							return text, nil
						}
					}
				}
			}
		}
	}

	return "", fmt.Errorf("could not extract text from response: %s", truncate(string(body), 500))
}

// parseTranslations extracts a JSON array of strings from the model text.
func parseTranslations(content string, expected int) ([]string, error) {
	content = strings.TrimSpace(content)

	if m := markdownCodeBlock.FindStringSubmatch(content); len(m) > 1 {
		content = m[1]
	}

	startIdx := strings.Index(content, "[")
	endIdx := strings.LastIndex(content, "]")
	if startIdx >= 0 && endIdx > startIdx {
		content = content[startIdx : endIdx+1]
	}

	var translations []string
	if err := json.Unmarshal([]byte(content), &translations); err != nil {
		return nil, fmt.Errorf("failed to parse translation response as JSON array: %w\nResponse: %s", err, truncate(content, 300))
	}

	if len(translations) == 0 {
		return nil, fmt.Errorf("got 0 translations, expected %d", expected)
	}

	return translations, nil
}

// escapeForPrompt prepares a string for inclusion in the prompt.
func escapeForPrompt(s string) string {
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\t", "\\t")
	return fmt.Sprintf(`"%s"`, s)
}
