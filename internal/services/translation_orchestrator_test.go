package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"

	"golang.org/x/time/rate"

	"gorm.io/gorm"
)

// fakeUpstream is a recording stub for the translation provider.
type fakeUpstream struct {
	mu         sync.Mutex
	calls      int
	batches    [][]string
	replies    map[string]string // source text -> translated text
	detected   string            // detected_source_language reported per text
	statusCode int               // non-zero forces an error response
	server     *httptest.Server
}

func newFakeUpstream(t *testing.T) *fakeUpstream {
	t.Helper()
	f := &fakeUpstream{replies: map[string]string{}, detected: "DE"}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req upstreamRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("fake upstream: bad request body: %v", err)
		}

		f.mu.Lock()
		f.calls++
		f.batches = append(f.batches, req.Text)
		status := f.statusCode
		f.mu.Unlock()

		if status != 0 {
			w.WriteHeader(status)
			json.NewEncoder(w).Encode(map[string]string{"message": "upstream unavailable"})
			return
		}

		type wireTranslation struct {
			Text                   string `json:"text"`
			DetectedSourceLanguage string `json:"detected_source_language"`
		}
		resp := struct {
			Translations []wireTranslation `json:"translations"`
		}{}
		for _, text := range req.Text {
			translated, ok := f.replies[text]
			if !ok {
				translated = "T:" + text
			}
			resp.Translations = append(resp.Translations, wireTranslation{
				Text:                   translated,
				DetectedSourceLanguage: f.detected,
			})
		}
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeUpstream) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeUpstream) lastBatch() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.batches) == 0 {
		return nil
	}
	return f.batches[len(f.batches)-1]
}

func newTestOrchestrator(db *gorm.DB, upstream *fakeUpstream) *TranslationOrchestrator {
	client := &TranslatorClient{
		apiURL:     upstream.server.URL,
		apiKey:     "test-key",
		httpClient: upstream.server.Client(),
		limiter:    rate.NewLimiter(rate.Inf, 1),
		enabled:    true,
	}
	return &TranslationOrchestrator{
		cache:  NewTranslationCacheService(db),
		client: client,
	}
}

func TestTranslate_IdentityShortCircuit(t *testing.T) {
	upstream := newFakeUpstream(t)
	orch := newTestOrchestrator(newTestDB(t), upstream)

	outcome, err := orch.Translate(context.Background(), []string{"hello"}, "de", "de", false)
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if outcome.Texts[0] != "hello" {
		t.Errorf("Expected identity result, got %q", outcome.Texts[0])
	}
	if !outcome.FromCache {
		t.Error("Expected FromCache for identity translation")
	}
	if upstream.callCount() != 0 {
		t.Errorf("Expected zero upstream calls, got %d", upstream.callCount())
	}
}

func TestTranslate_BatchOrderPreserved(t *testing.T) {
	upstream := newFakeUpstream(t)
	upstream.replies["b"] = "B-translated"
	db := newTestDB(t)
	orch := newTestOrchestrator(db, upstream)

	// Pre-cache "a" and "c"; "b" must go upstream alone.
	cache := NewTranslationCacheService(db)
	if err := cache.Put("a", "A-cached", "de", "en"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := cache.Put("c", "C-cached", "de", "en"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	outcome, err := orch.Translate(context.Background(), []string{"a", "b", "c"}, "en", "de", false)
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}

	want := []string{"A-cached", "B-translated", "C-cached"}
	if !reflect.DeepEqual(outcome.Texts, want) {
		t.Errorf("Expected %v, got %v", want, outcome.Texts)
	}
	if upstream.callCount() != 1 {
		t.Errorf("Expected exactly one upstream call, got %d", upstream.callCount())
	}
	if batch := upstream.lastBatch(); !reflect.DeepEqual(batch, []string{"b"}) {
		t.Errorf("Expected upstream batch [b], got %v", batch)
	}
	if outcome.CachedCount != 2 || outcome.TranslatedCount != 1 {
		t.Errorf("Expected cached=2 translated=1, got cached=%d translated=%d",
			outcome.CachedCount, outcome.TranslatedCount)
	}
	if outcome.FromCache {
		t.Error("FromCache must be false when an upstream call was made")
	}
}

func TestTranslate_AllCachedFastPath(t *testing.T) {
	upstream := newFakeUpstream(t)
	db := newTestDB(t)
	orch := newTestOrchestrator(db, upstream)

	cache := NewTranslationCacheService(db)
	if err := cache.Put("Hallo Welt", "Hello World", "de", "en"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	outcome, err := orch.Translate(context.Background(), []string{"Hallo Welt"}, "en", "de", false)
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if !outcome.FromCache {
		t.Error("Expected FromCache on all-cached batch")
	}
	if outcome.Texts[0] != "Hello World" {
		t.Errorf("Expected cached translation, got %q", outcome.Texts[0])
	}
	if upstream.callCount() != 0 {
		t.Errorf("Expected zero upstream calls, got %d", upstream.callCount())
	}
}

func TestTranslate_MissThenHit(t *testing.T) {
	upstream := newFakeUpstream(t)
	upstream.replies["Hallo Welt"] = "Hello World"
	orch := newTestOrchestrator(newTestDB(t), upstream)
	ctx := context.Background()

	// First call: cache empty, upstream called once with the full batch
	outcome, err := orch.Translate(ctx, []string{"Hallo Welt"}, "en", "de", false)
	if err != nil {
		t.Fatalf("first Translate failed: %v", err)
	}
	if outcome.Texts[0] != "Hello World" || outcome.FromCache {
		t.Errorf("Expected fresh translation, got %+v", outcome)
	}
	if batch := upstream.lastBatch(); !reflect.DeepEqual(batch, []string{"Hallo Welt"}) {
		t.Errorf("Expected upstream batch [Hallo Welt], got %v", batch)
	}

	// Second identical call: served entirely from cache
	outcome, err = orch.Translate(ctx, []string{"Hallo Welt"}, "en", "de", false)
	if err != nil {
		t.Fatalf("second Translate failed: %v", err)
	}
	if outcome.Texts[0] != "Hello World" || !outcome.FromCache {
		t.Errorf("Expected cached translation with FromCache, got %+v", outcome)
	}
	if upstream.callCount() != 1 {
		t.Errorf("Expected exactly one upstream call total, got %d", upstream.callCount())
	}
}

func TestTranslate_AutoDetectSkipsLookupButWritesCache(t *testing.T) {
	upstream := newFakeUpstream(t)
	upstream.replies["Hallo"] = "Hello"
	upstream.detected = "DE"
	db := newTestDB(t)
	orch := newTestOrchestrator(db, upstream)
	ctx := context.Background()

	// Pre-cache the exact triple the detection will resolve to. Auto-detect
	// must not read it, so the upstream still gets called.
	cache := NewTranslationCacheService(db)
	if err := cache.Put("Hallo", "Cached-Hello", "de", "en"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	outcome, err := orch.Translate(ctx, []string{"Hallo"}, "en", "", true)
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if outcome.Texts[0] != "Hello" {
		t.Errorf("Expected upstream translation under auto-detect, got %q", outcome.Texts[0])
	}
	if outcome.DetectedSourceLang != "de" {
		t.Errorf("Expected detected source lang de, got %q", outcome.DetectedSourceLang)
	}
	if upstream.callCount() != 1 {
		t.Errorf("Expected one upstream call, got %d", upstream.callCount())
	}

	// The fresh result was written back under the detected source language
	got, found := cache.Get("Hallo", "de", "en")
	if !found || got != "Hello" {
		t.Errorf("Expected cache updated to %q, got %q (found=%v)", "Hello", got, found)
	}
}

func TestTranslate_EmptyTextsPassThrough(t *testing.T) {
	upstream := newFakeUpstream(t)
	orch := newTestOrchestrator(newTestDB(t), upstream)

	outcome, err := orch.Translate(context.Background(), []string{"", "  ", "text"}, "en", "de", false)
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if outcome.Texts[0] != "" || outcome.Texts[1] != "  " {
		t.Errorf("Expected empty texts unchanged, got %v", outcome.Texts)
	}
	if batch := upstream.lastBatch(); !reflect.DeepEqual(batch, []string{"text"}) {
		t.Errorf("Expected only non-empty text upstream, got %v", batch)
	}
}

func TestTranslate_UpstreamErrorFailsBatch(t *testing.T) {
	upstream := newFakeUpstream(t)
	upstream.statusCode = http.StatusTooManyRequests
	db := newTestDB(t)
	orch := newTestOrchestrator(db, upstream)

	_, err := orch.Translate(context.Background(), []string{"Hallo"}, "en", "de", false)
	if err == nil {
		t.Fatal("Expected error from failed upstream call")
	}
	upstreamErr, ok := err.(*UpstreamError)
	if !ok {
		t.Fatalf("Expected *UpstreamError, got %T", err)
	}
	if upstreamErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("Expected status 429, got %d", upstreamErr.StatusCode)
	}

	// No partial or garbage writes on failure
	var count int64
	db.Table("translation_caches").Count(&count)
	if count != 0 {
		t.Errorf("Expected empty cache after upstream failure, got %d rows", count)
	}
}

func TestToUpstreamLang(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"de", "DE"},
		{"en", "EN"},
		{"ro", "RO"},
		{"RU", "RU"},
		{"fr", "FR"}, // unknown codes uppercased, not rejected
		{" en ", "EN"},
	}
	for _, tt := range tests {
		if got := ToUpstreamLang(tt.input); got != tt.expected {
			t.Errorf("ToUpstreamLang(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
