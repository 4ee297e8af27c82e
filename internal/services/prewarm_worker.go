package services

import (
	"context"
	"log"
	"os"
	"strconv"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/credinta-blog/backend/internal/models"
)

// Constants for pre-warm worker configuration
const (
	// defaultPrewarmBatchSize is the number of posts to warm per run
	defaultPrewarmBatchSize = 20
	// prewarmInterval is the delay between pre-warm runs
	prewarmInterval = 1 * time.Hour
)

// PrewarmWorker translates the title and excerpt of recently published posts
// into every supported display language through the orchestrator, so that
// interactive requests mostly hit cache. Texts already cached cost nothing:
// the orchestrator's fast path skips the upstream call entirely.
type PrewarmWorker struct {
	db           *gorm.DB
	orchestrator *TranslationOrchestrator
	originLang   string
	interval     time.Duration
	batchSize    int
	mu           sync.RWMutex

	// Stats
	postsWarmed int
	lastRunTime time.Time
}

type PrewarmStatus struct {
	LastRunTime time.Time `json:"last_run_time"`
	NextRunTime time.Time `json:"next_run_time"`
	PostsWarmed int       `json:"posts_warmed"`
	BatchSize   int       `json:"batch_size"`
	Enabled     bool      `json:"enabled"`
}

// NewPrewarmWorker creates a new pre-warm worker
func NewPrewarmWorker(db *gorm.DB, orchestrator *TranslationOrchestrator, originLang string) *PrewarmWorker {
	batchSize := defaultPrewarmBatchSize
	if v := os.Getenv("PREWARM_BATCH_SIZE"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			batchSize = parsed
		}
	}

	if originLang == "" {
		originLang = DefaultOriginLang
	}

	return &PrewarmWorker{
		db:           db,
		orchestrator: orchestrator,
		originLang:   NormalizeLang(originLang),
		interval:     prewarmInterval,
		batchSize:    batchSize,
	}
}

// Start begins the background pre-warm worker
func (w *PrewarmWorker) Start(ctx context.Context) {
	if !w.orchestrator.IsConfigured() {
		log.Println("Pre-warm worker: upstream translation not configured, worker idle")
		return
	}

	log.Printf("Pre-warm worker started: will warm %d posts per run", w.batchSize)

	// Run immediately on startup
	if warmed, err := w.RunOnce(ctx); err != nil {
		log.Printf("Pre-warm worker: initial run failed: %v", err)
	} else {
		log.Printf("Pre-warm worker: initial run warmed %d posts", warmed)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Pre-warm worker stopping...")
			return
		case <-ticker.C:
			if warmed, err := w.RunOnce(ctx); err != nil {
				log.Printf("Pre-warm worker: run failed: %v", err)
			} else if warmed > 0 {
				log.Printf("Pre-warm worker: warmed %d posts", warmed)
			}
		}
	}
}

// RunOnce warms one batch of recent published posts into every supported
// display language. Returns the number of posts processed.
func (w *PrewarmWorker) RunOnce(ctx context.Context) (int, error) {
	if w.db == nil {
		return 0, nil
	}

	var posts []models.Post
	err := w.db.
		Where("published = ?", true).
		Order("created_at DESC").
		Limit(w.batchSize).
		Find(&posts).Error
	if err != nil {
		return 0, err
	}
	if len(posts) == 0 {
		return 0, nil
	}

	texts := make([]string, 0, len(posts)*2)
	for _, post := range posts {
		if post.Title != "" {
			texts = append(texts, post.Title)
		}
		if post.Excerpt != "" {
			texts = append(texts, post.Excerpt)
		}
	}

	for _, lang := range SupportedLangs() {
		if lang == w.originLang {
			continue
		}
		outcome, err := w.orchestrator.Translate(ctx, texts, lang, w.originLang, false)
		if err != nil {
			// One failing language pair should not stop the others.
			infoLog("Pre-warm %s->%s failed: %v", w.originLang, lang, err)
			continue
		}
		debugLog("Pre-warm %s->%s: %d cached, %d translated",
			w.originLang, lang, outcome.CachedCount, outcome.TranslatedCount)
	}

	w.mu.Lock()
	w.postsWarmed += len(posts)
	w.lastRunTime = time.Now()
	w.mu.Unlock()

	return len(posts), nil
}

// GetStatus returns the current worker status
func (w *PrewarmWorker) GetStatus() PrewarmStatus {
	w.mu.RLock()
	defer w.mu.RUnlock()

	status := PrewarmStatus{
		LastRunTime: w.lastRunTime,
		PostsWarmed: w.postsWarmed,
		BatchSize:   w.batchSize,
		Enabled:     w.orchestrator.IsConfigured(),
	}
	if !w.lastRunTime.IsZero() {
		status.NextRunTime = w.lastRunTime.Add(w.interval)
	}
	return status
}
