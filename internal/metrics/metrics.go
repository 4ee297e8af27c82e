package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blog_http_requests_total",
		Help: "Total HTTP requests by method, path, and status code",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "blog_http_request_duration_seconds",
		Help:    "HTTP request latency by method and path",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})
)

// Translation metrics
var (
	TranslationCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blog_translation_cache_hits_total",
		Help: "Translation cache lookups that returned a cached translation",
	})

	TranslationCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blog_translation_cache_misses_total",
		Help: "Translation cache lookups that missed (absent row or storage error)",
	})

	TranslationRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blog_translation_requests_total",
		Help: "Translations served by source (cache, api)",
	}, []string{"source"})

	TranslationErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blog_translation_errors_total",
		Help: "Translation failures by stage (api, cache_write)",
	}, []string{"stage"})

	TranslationAPILatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "blog_translation_api_latency_seconds",
		Help:    "Upstream translation API call latency",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	})

	TranslationBatchSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "blog_translation_batch_size",
		Help:    "Number of texts sent per upstream translation call",
		Buckets: []float64{1, 2, 5, 10, 25, 50, 100},
	})
)

// Search metrics
var (
	SearchRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blog_search_requests_total",
		Help: "Search requests by outcome (results, empty, rejected)",
	}, []string{"outcome"})

	SearchCacheAssistedHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blog_search_cache_assisted_hits_total",
		Help: "Posts surfaced via the translation cache reverse-lookup branch",
	})

	SearchQueryErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blog_search_query_errors_total",
		Help: "Storage errors swallowed by individual search pipeline steps",
	})
)

// Content gauges, refreshed by UpdateContentMetrics
var (
	TranslationCacheEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "blog_translation_cache_entries",
		Help: "Total rows in the translation cache",
	})

	TranslationCacheEntriesByLang = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "blog_translation_cache_entries_by_target_lang",
		Help: "Translation cache rows by target language",
	}, []string{"target_lang"})

	PublishedPostsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "blog_published_posts",
		Help: "Number of published posts",
	})
)
