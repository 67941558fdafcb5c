package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

const (
	azureEndpoint   = "https://api.cognitive.microsofttranslator.com"
	azureAPIVersion = "3.0"
	azureBatchSize  = 50
)

// azureService talks to Azure Translator v3. Text is sent with
// textType=html so the sentinel markup is left alone.
type azureService struct {
	endpoint  string
	key       string
	region    string
	languages map[string]bool
	http      *caller
}

func (a *azureService) Name() string { return Azure }

func (a *azureService) BatchSize() int { return azureBatchSize }

// Initialize parses "key[,region]" from cfg.Raw (or cfg.APIKey) and loads
// the list of supported languages.
func (a *azureService) Initialize(ctx context.Context, cfg Config) error {
	raw := cfg.Raw
	if raw == "" {
		raw = cfg.APIKey
	}
	key, region, _ := strings.Cut(raw, ",")
	a.key = strings.TrimSpace(key)
	a.region = strings.TrimSpace(region)
	if a.key == "" {
		return fmt.Errorf("azure: an API key is required (config: key[,region])")
	}

	a.endpoint = strings.TrimSuffix(cfg.BaseURL, "/")
	if a.endpoint == "" {
		a.endpoint = azureEndpoint
	}
	a.http = newCaller(Azure, cfg)

	body, err := a.http.do(ctx, "GET", a.endpoint+"/languages?"+url.Values{
		"api-version": {azureAPIVersion},
		"scope":       {"translation"},
	}.Encode(), nil, nil)
	if err != nil {
		return fmt.Errorf("azure: fetching languages: %w", err)
	}

	var resp struct {
		Translation map[string]json.RawMessage `json:"translation"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("azure: parsing languages: %w", err)
	}
	a.languages = make(map[string]bool, len(resp.Translation))
	for code := range resp.Translation {
		code = strings.ToLower(code)
		a.languages[code] = true
		// zh-Hans is also usable as zh
		if strings.Contains(code, "-") {
			a.languages[baseLang(code)] = true
		}
	}
	return nil
}

func (a *azureService) SupportsLanguage(code string) bool {
	code = strings.ToLower(strings.ReplaceAll(code, "_", "-"))
	return a.languages[code] || a.languages[baseLang(code)]
}

func (a *azureService) TranslateBatch(ctx context.Context, batch []String, from, to string) ([]Result, error) {
	if len(batch) == 0 {
		return nil, nil
	}

	type textItem struct {
		Text string `json:"Text"`
	}
	items := make([]textItem, len(batch))
	for i, s := range batch {
		items[i] = textItem{Text: s.Text}
	}
	body, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	headers := map[string]string{
		"Content-Type":              "application/json; charset=UTF-8",
		"Ocp-Apim-Subscription-Key": a.key,
	}
	if a.region != "" {
		headers["Ocp-Apim-Subscription-Region"] = a.region
	}

	endpoint := a.endpoint + "/translate?" + url.Values{
		"api-version": {azureAPIVersion},
		"from":        {from},
		"to":          {to},
		"textType":    {"html"},
	}.Encode()

	respBody, err := a.http.do(ctx, "POST", endpoint, headers, body)
	if err != nil {
		return nil, err
	}

	var resp []struct {
		Translations []struct {
			Text string `json:"text"`
			To   string `json:"to"`
		} `json:"translations"`
	}
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("parsing azure response: %w", err)
	}

	results := make([]Result, 0, len(batch))
	for i, item := range resp {
		if i >= len(batch) || len(item.Translations) == 0 {
			continue
		}
		results = append(results, Result{Key: batch[i].Key, Translated: item.Translations[0].Text})
	}
	return results, nil
}
