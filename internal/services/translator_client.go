package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"golang.org/x/time/rate"

	"github.com/credinta-blog/backend/internal/metrics"
)

const (
	// DeepL REST endpoint (free tier default, override with DEEPL_API_URL)
	defaultTranslateAPIURL = "https://api-free.deepl.com/v2/translate"

	// Default timeout for translation requests
	translateTimeout = 10 * time.Second

	// Upstream rate limit: the provider bills and rate-limits per call
	upstreamRatePerSecond = 10
	upstreamBurst         = 5
)

// TranslatorClient handles calls to the upstream translation provider.
type TranslatorClient struct {
	apiURL     string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	enabled    bool
}

// UpstreamTranslation is one translated text with its detected source
// language, normalized to lowercase API-boundary form.
type UpstreamTranslation struct {
	Text               string
	DetectedSourceLang string
}

// UpstreamError carries the provider's HTTP status and body so transport
// handlers can pass the status through to their own caller.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("translation API returned status %d: %s", e.StatusCode, e.Body)
}

// upstreamRequest is the provider's wire format. Language codes are
// uppercase 2-letter on the wire.
type upstreamRequest struct {
	Text       []string `json:"text"`
	TargetLang string   `json:"target_lang"`
	SourceLang string   `json:"source_lang,omitempty"`
}

type upstreamResponse struct {
	Translations []struct {
		Text                   string `json:"text"`
		DetectedSourceLanguage string `json:"detected_source_language"`
	} `json:"translations"`
	Message string `json:"message,omitempty"`
}

// NewTranslatorClient creates a translator client.
// It auto-enables if DEEPL_API_KEY is set.
func NewTranslatorClient() *TranslatorClient {
	client := &TranslatorClient{
		apiURL:     defaultTranslateAPIURL,
		httpClient: &http.Client{Timeout: translateTimeout},
		limiter:    rate.NewLimiter(rate.Limit(upstreamRatePerSecond), upstreamBurst),
		enabled:    false,
	}

	if url := os.Getenv("DEEPL_API_URL"); url != "" {
		client.apiURL = url
	}

	apiKey := os.Getenv("DEEPL_API_KEY")
	if apiKey == "" {
		infoLog("DEEPL_API_KEY not set, upstream translation disabled")
		return client
	}

	client.apiKey = apiKey
	client.enabled = true
	return client
}

// IsEnabled returns whether the upstream provider is configured
func (c *TranslatorClient) IsEnabled() bool {
	return c.enabled
}

// TranslateBatch sends one batch of texts to the upstream provider.
// sourceLang may be empty, in which case the provider detects the source
// language per text. Results come back in request order.
func (c *TranslatorClient) TranslateBatch(ctx context.Context, texts []string, targetLang, sourceLang string) ([]UpstreamTranslation, error) {
	if !c.enabled {
		return nil, fmt.Errorf("translation API key not configured")
	}
	if len(texts) == 0 {
		return nil, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	reqBody := upstreamRequest{
		Text:       texts,
		TargetLang: ToUpstreamLang(targetLang),
	}
	if sourceLang != "" {
		reqBody.SourceLang = ToUpstreamLang(sourceLang)
	}

	reqJSON, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.apiURL, bytes.NewReader(reqJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "DeepL-Auth-Key "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.TranslationErrorsTotal.WithLabelValues("api").Inc()
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	metrics.TranslationAPILatency.Observe(time.Since(startTime).Seconds())
	metrics.TranslationBatchSize.Observe(float64(len(texts)))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.TranslationErrorsTotal.WithLabelValues("api").Inc()
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		metrics.TranslationErrorsTotal.WithLabelValues("api").Inc()
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var result upstreamResponse
	if err := json.Unmarshal(body, &result); err != nil {
		metrics.TranslationErrorsTotal.WithLabelValues("api").Inc()
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(result.Translations) != len(texts) {
		metrics.TranslationErrorsTotal.WithLabelValues("api").Inc()
		return nil, fmt.Errorf("expected %d translations, got %d", len(texts), len(result.Translations))
	}

	translations := make([]UpstreamTranslation, len(result.Translations))
	for i, tr := range result.Translations {
		translations[i] = UpstreamTranslation{
			Text:               tr.Text,
			DetectedSourceLang: NormalizeLang(tr.DetectedSourceLanguage),
		}
	}
	return translations, nil
}
