package services

import (
	"context"
	"testing"
	"time"

	"github.com/credinta-blog/backend/internal/models"
)

func TestPrewarmWorker_RunOnceWarmsCache(t *testing.T) {
	upstream := newFakeUpstream(t)
	db := newTestDB(t)
	orch := newTestOrchestrator(db, upstream)

	post := models.Post{
		ID: "p1", Slug: "despre-har", Title: "Despre har", Excerpt: "Un studiu despre har",
		Published: true, CreatedAt: time.Now(),
	}
	if err := db.Create(&post).Error; err != nil {
		t.Fatalf("failed to seed post: %v", err)
	}
	// Unpublished posts are never warmed
	draft := models.Post{ID: "p2", Slug: "draft", Title: "Ciornă", Published: false}
	if err := db.Create(&draft).Error; err != nil {
		t.Fatalf("failed to seed draft: %v", err)
	}

	worker := NewPrewarmWorker(db, orch, "ro")
	warmed, err := worker.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}
	if warmed != 1 {
		t.Errorf("expected 1 post warmed, got %d", warmed)
	}

	// Title and excerpt are now cached for every non-origin language
	cache := NewTranslationCacheService(db)
	for _, lang := range []string{"de", "en", "ru"} {
		if _, found := cache.Get("Despre har", "ro", lang); !found {
			t.Errorf("expected title cached for ro->%s", lang)
		}
		if _, found := cache.Get("Un studiu despre har", "ro", lang); !found {
			t.Errorf("expected excerpt cached for ro->%s", lang)
		}
	}
	if _, found := cache.Get("Ciornă", "ro", "en"); found {
		t.Error("unpublished post must not be warmed")
	}

	// A second run is served from cache: no further upstream calls
	before := upstream.callCount()
	if _, err := worker.RunOnce(context.Background()); err != nil {
		t.Fatalf("second RunOnce failed: %v", err)
	}
	if upstream.callCount() != before {
		t.Errorf("expected no new upstream calls, got %d extra", upstream.callCount()-before)
	}

	status := worker.GetStatus()
	if status.PostsWarmed != 2 {
		t.Errorf("expected 2 posts warmed across runs, got %d", status.PostsWarmed)
	}
	if status.LastRunTime.IsZero() {
		t.Error("expected last run time to be set")
	}
}
