package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/credinta-blog/backend/internal/metrics"
)

// TranslationOrchestrator resolves translations through the cache before
// falling back to the upstream provider, issuing at most one upstream batch
// call per invocation.
type TranslationOrchestrator struct {
	cache  *TranslationCacheService
	client *TranslatorClient
}

// TranslateOutcome is the result of one orchestrator invocation.
// Texts are in the same order as the input.
type TranslateOutcome struct {
	Texts              []string
	DetectedSourceLang string // first per-text detection, empty when source was supplied
	FromCache          bool   // true when no upstream call was issued
	CachedCount        int
	TranslatedCount    int
}

// NewTranslationOrchestrator creates an orchestrator backed by the given
// database for caching and the environment-configured upstream client.
func NewTranslationOrchestrator(db *gorm.DB) *TranslationOrchestrator {
	return &TranslationOrchestrator{
		cache:  NewTranslationCacheService(db),
		client: NewTranslatorClient(),
	}
}

// IsConfigured returns whether the upstream provider is available.
func (o *TranslationOrchestrator) IsConfigured() bool {
	return o.client.IsEnabled()
}

// CacheEnabled returns whether the cache has a backing store.
func (o *TranslationOrchestrator) CacheEnabled() bool {
	return o.cache.Enabled()
}

// Translate resolves each text via cache-or-call and reassembles results in
// input order.
//
// Cache lookups are skipped when autoDetect is true or no source language was
// supplied: without a known source language no cache key can be constructed
// ahead of the call. Fresh results are still cache-written under the per-text
// detected source language, so auto-detect calls contribute future cache
// value for keyed lookups.
//
// If the upstream call fails the whole batch of misses fails together;
// texts already resolved from cache are unaffected by upstream outages only
// in the sense that a subsequent cache-only call succeeds without upstream.
func (o *TranslationOrchestrator) Translate(ctx context.Context, texts []string, targetLang, sourceLang string, autoDetect bool) (*TranslateOutcome, error) {
	targetLang = NormalizeLang(targetLang)
	sourceLang = NormalizeLang(sourceLang)

	// Translating a language into itself is identity: no cache or upstream
	// interaction at all.
	if sourceLang != "" && sourceLang == targetLang && !autoDetect {
		return &TranslateOutcome{
			Texts:     append([]string(nil), texts...),
			FromCache: true,
		}, nil
	}

	outcome := &TranslateOutcome{Texts: make([]string, len(texts))}
	lookupCache := !autoDetect && sourceLang != ""

	// Resolve what we can from cache; collect the rest into one batch.
	var pending []int
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			outcome.Texts[i] = text
			continue
		}
		if lookupCache {
			if cached, ok := o.cache.Get(text, sourceLang, targetLang); ok {
				outcome.Texts[i] = cached
				outcome.CachedCount++
				metrics.TranslationRequestsTotal.WithLabelValues("cache").Inc()
				continue
			}
		}
		pending = append(pending, i)
	}

	// Fast path: everything served from cache, zero network latency.
	if len(pending) == 0 {
		outcome.FromCache = true
		return outcome, nil
	}

	batch := make([]string, len(pending))
	for k, i := range pending {
		batch[k] = texts[i]
	}

	upstreamSource := sourceLang
	if autoDetect {
		upstreamSource = ""
	}

	debugLog("Upstream batch: %d of %d texts (%s->%s)", len(batch), len(texts), sourceLang, targetLang)
	translations, err := o.client.TranslateBatch(ctx, batch, targetLang, upstreamSource)
	if err != nil {
		return nil, err
	}

	// Reassemble positionally and write fresh results back into the cache.
	// Cache keys use the per-text detected source language when the caller
	// did not supply one: each text in a batch may be detected differently.
	for k, tr := range translations {
		i := pending[k]
		outcome.Texts[i] = tr.Text
		outcome.TranslatedCount++
		metrics.TranslationRequestsTotal.WithLabelValues("api").Inc()

		resolvedSource := sourceLang
		if resolvedSource == "" || autoDetect {
			resolvedSource = tr.DetectedSourceLang
		}
		if outcome.DetectedSourceLang == "" && tr.DetectedSourceLang != "" {
			outcome.DetectedSourceLang = tr.DetectedSourceLang
		}
		if resolvedSource == "" || resolvedSource == targetLang {
			continue
		}
		if err := o.cache.Put(texts[i], tr.Text, resolvedSource, targetLang); err != nil {
			// Cache writes are best-effort, never in the critical path.
			metrics.TranslationErrorsTotal.WithLabelValues("cache_write").Inc()
			infoLog("Cache write failed (%s->%s): %v", resolvedSource, targetLang, err)
		}
	}

	return outcome, nil
}
