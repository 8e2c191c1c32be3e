package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/ZaguanLabs/i18nmig"
	"github.com/sashabaranov/go-openai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o-mini"

// OpenAIProvider implements AIProvider using an OpenAI-compatible chat API.
type OpenAIProvider struct {
	client      *openai.Client
	model       string
	temperature float32
}

// OpenAIConfig holds configuration for the OpenAI provider.
type OpenAIConfig struct {
	APIKey      string  // OpenAI API key
	Model       string  // Model to use (default: "gpt-4o-mini")
	Temperature float32 // Temperature for generation (default: 0.2)
	BaseURL     string  // Custom base URL for compatible gateways (optional)
	HTTPClient  *http.Client
}

// userAgentTransport stamps every request with the tool's user agent.
type userAgentTransport struct {
	next http.RoundTripper
}

func (t userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", i18nmig.UserAgent())
	return t.next.RoundTrip(req)
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	base := http.DefaultTransport
	if cfg.HTTPClient != nil && cfg.HTTPClient.Transport != nil {
		base = cfg.HTTPClient.Transport
	}
	httpClient := &http.Client{Transport: userAgentTransport{next: base}}
	if cfg.HTTPClient != nil {
		httpClient.Timeout = cfg.HTTPClient.Timeout
	}
	config.HTTPClient = httpClient

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.2
	}

	return &OpenAIProvider{
		client:      openai.NewClientWithConfig(config),
		model:       model,
		temperature: temperature,
	}
}

// Model returns the configured model name.
func (p *OpenAIProvider) Model() string {
	return p.model
}

// Suggest requests secondary-locale suggestions for a batch of UI strings.
func (p *OpenAIProvider) Suggest(ctx context.Context, req SuggestRequest) ([]string, error) {
	if len(req.Texts) == 0 {
		return []string{}, nil
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: p.buildSystemPrompt(req)},
			{Role: openai.ChatMessageRoleUser, Content: p.buildUserMessage(req)},
		},
		Temperature: p.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, &i18nmig.ProviderError{
			Message:   "OpenAI API call failed",
			Cause:     err,
			Retryable: isRetryableError(err),
		}
	}

	if len(resp.Choices) == 0 {
		return nil, &i18nmig.ProviderError{
			Message:   "no response from OpenAI",
			Retryable: true,
		}
	}

	return p.parseResponse(resp.Choices[0].Message.Content, len(req.Texts))
}

func (p *OpenAIProvider) buildSystemPrompt(req SuggestRequest) string {
	source := i18nmig.GetLanguageName(req.SourceLocale)
	target := i18nmig.GetLanguageName(req.TargetLocale)

	contextText := "The strings come from the user interface of a web application."
	if req.Context != "" {
		contextText = fmt.Sprintf("The strings come from: %s", req.Context)
	}

	var b strings.Builder
	fmt.Fprintf(&b, `# Role
You localize user interface strings from %s to %s.

# Context
%s

# Style Guide
- **Brevity**: UI labels must stay short. Keep buttons and headings as concise as the source.
- **Consistency**: Use the same wording for the same concept across strings.
- **Interpolation**: Do NOT translate placeholders (e.g., {{name}}, {count}, %%s).
- **Punctuation**: Keep trailing colons, ellipses and question marks when the source has them.
- **Hints**: An item may carry a "hint" naming the attribute it comes from (title, placeholder, aria-label, alt). Tooltips and accessibility labels may be full sentences; placeholders are short prompts.`, source, target, contextText)

	if len(req.Glossary) > 0 {
		terms := make([]string, 0, len(req.Glossary))
		for term := range req.Glossary {
			terms = append(terms, term)
		}
		sort.Strings(terms)

		b.WriteString("\n\n# Glossary\nUse these curated translations whenever the term appears:")
		for _, term := range terms {
			fmt.Fprintf(&b, "\n- %q → %s", term, req.Glossary[term])
		}
	}

	b.WriteString(`

# Format
Return a valid JSON object with a single key "suggestions" containing an array of strings in the exact same order as the input.
Example: { "suggestions": ["string 1", "string 2"] }
- Do NOT wrap in Markdown code blocks.`)

	return b.String()
}

func (p *OpenAIProvider) buildUserMessage(req SuggestRequest) string {
	hasHints := false
	for _, h := range req.Hints {
		if h != "" {
			hasHints = true
			break
		}
	}

	if !hasHints {
		data, _ := json.Marshal(req.Texts)
		return string(data)
	}

	type item struct {
		Text string `json:"text"`
		Hint string `json:"hint,omitempty"`
	}

	items := make([]item, len(req.Texts))
	for i, text := range req.Texts {
		items[i].Text = text
		if i < len(req.Hints) {
			items[i].Hint = req.Hints[i]
		}
	}

	data, _ := json.Marshal(map[string][]item{"items": items})
	return string(data)
}

func (p *OpenAIProvider) parseResponse(content string, expectedCount int) ([]string, error) {
	var objResult map[string]interface{}
	if err := json.Unmarshal([]byte(content), &objResult); err == nil {
		if arr, ok := objResult["suggestions"].([]interface{}); ok {
			return toStringSlice(arr, expectedCount)
		}

		// Some models pick their own key.
		keys := make([]string, 0, len(objResult))
		for k := range objResult {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if arr, ok := objResult[k].([]interface{}); ok {
				return toStringSlice(arr, expectedCount)
			}
		}
	}

	var arrResult []interface{}
	if err := json.Unmarshal([]byte(content), &arrResult); err == nil {
		return toStringSlice(arrResult, expectedCount)
	}

	return nil, &i18nmig.ProviderError{
		Message:   "invalid response format from OpenAI",
		Retryable: false,
	}
}

func toStringSlice(arr []interface{}, expectedCount int) ([]string, error) {
	result := make([]string, len(arr))
	for i, v := range arr {
		if s, ok := v.(string); ok {
			result[i] = s
		} else {
			result[i] = fmt.Sprintf("%v", v)
		}
	}

	if len(result) != expectedCount {
		return nil, &i18nmig.CountMismatchError{
			Expected: expectedCount,
			Got:      len(result),
		}
	}
	return result, nil
}

func isRetryableError(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500
	}

	errStr := strings.ToLower(err.Error())
	for _, pattern := range []string{"rate limit", "timeout", "connection refused", "temporary", "503", "502", "429"} {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

var _ AIProvider = (*OpenAIProvider)(nil)
