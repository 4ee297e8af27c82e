package services

import (
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/credinta-blog/backend/internal/metrics"
	"github.com/credinta-blog/backend/internal/models"
)

const (
	// minQueryLen is the minimum effective query length. Shorter queries are
	// routine during incremental typing and return empty, not an error.
	minQueryLen = 2

	// Cache-assisted branch caps
	maxCacheCandidates    = 5  // fuzzy candidates probed against the cache
	cacheRowsPerCandidate = 10 // cache rows scanned per candidate
	maxCacheSnippets      = 10 // unique original snippets accumulated
	snippetRequeryLimit   = 3  // posts fetched per recovered snippet
	snippetRequeryWords   = 3  // leading snippet words used for the re-query

	// Token score weights
	scoreTitle      = 100
	scoreTitleEn    = 90
	scoreExcerpt    = 30
	scoreExcerptEn  = 25
	scoreSnippet    = 50 // title confirmed against a recovered cache snippet
	snippetScoreLen = 30
)

var searchColumns = []string{"title", "title_en", "excerpt", "excerpt_en"}

// SearchService finds published posts matching a free-text query, including
// posts whose match only exists in a cached translation of their content.
type SearchService struct {
	db         *gorm.DB
	cache      *TranslationCacheService
	originLang string
}

// SearchOutcome is the ranked result of one search call.
type SearchOutcome struct {
	Results     []models.PostSearchResult
	Total       int
	Query       string
	SearchTerms []string
	Language    string
	Message     string
}

// NewSearchService creates a search service. originLang is the language posts
// are authored in; searches in any other language also probe the translation
// cache.
func NewSearchService(db *gorm.DB, originLang string) *SearchService {
	if originLang == "" {
		originLang = DefaultOriginLang
	}
	return &SearchService{
		db:         db,
		cache:      NewTranslationCacheService(db),
		originLang: NormalizeLang(originLang),
	}
}

// Search returns published posts ranked by relevance for the query.
// Storage errors in individual pipeline steps degrade to fewer results; only
// a missing database is a hard failure.
func (s *SearchService) Search(query string, limit int, displayLang string) (*SearchOutcome, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not configured")
	}
	if limit <= 0 {
		limit = 10
	}
	displayLang = NormalizeLang(displayLang)
	if displayLang == "" {
		displayLang = s.originLang
	}

	outcome := &SearchOutcome{
		Query:    strings.TrimSpace(query),
		Language: displayLang,
	}

	trimmed := strings.TrimSpace(query)
	if len([]rune(trimmed)) < minQueryLen {
		outcome.Message = "query too short"
		metrics.SearchRequestsTotal.WithLabelValues("rejected").Inc()
		return outcome, nil
	}

	tokens := tokenize(trimmed)
	if len(tokens) == 0 {
		outcome.Message = "no usable search terms"
		metrics.SearchRequestsTotal.WithLabelValues("rejected").Inc()
		return outcome, nil
	}
	outcome.SearchTerms = tokens

	// The first token drives retrieval; all tokens drive scoring.
	term := tokens[0]
	candidates := prefixCandidates(term)
	debugLog("Search %q lang=%s candidates=%v", trimmed, displayLang, candidates)

	matched := s.directMatch(candidates, limit)

	// Reverse lookup through the translation cache: recover original-language
	// snippets whose cached translation contains a candidate, then re-query
	// posts with those snippets. Only meaningful when the display language is
	// not the one posts are authored in.
	var snippets []string
	if displayLang != s.originLang {
		snippets = s.cacheSnippets(displayLang, candidates)
		for _, snippet := range snippets {
			for _, post := range s.requeryBySnippet(snippet) {
				matched = append(matched, post)
				metrics.SearchCacheAssistedHits.Inc()
			}
		}
	}

	// Dedupe by post id, first occurrence wins.
	seen := make(map[string]bool, len(matched))
	unique := matched[:0]
	for _, post := range matched {
		if seen[post.ID] {
			continue
		}
		seen[post.ID] = true
		unique = append(unique, post)
	}

	results := scorePosts(unique, tokens, snippets)
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RelevanceScore > results[j].RelevanceScore
	})

	outcome.Total = len(results)
	if len(results) > limit {
		results = results[:limit]
	}
	outcome.Results = results

	if len(results) == 0 {
		metrics.SearchRequestsTotal.WithLabelValues("empty").Inc()
	} else {
		metrics.SearchRequestsTotal.WithLabelValues("results").Inc()
	}
	return outcome, nil
}

// directMatch queries published posts whose title or excerpt columns contain
// any fuzzy candidate, newest first.
func (s *SearchService) directMatch(candidates []string, limit int) []models.Post {
	var conds []string
	var args []interface{}
	for _, candidate := range candidates {
		pattern := "%" + escapeLike(candidate) + "%"
		for _, col := range searchColumns {
			conds = append(conds, "LOWER("+col+`) LIKE ? ESCAPE '\'`)
			args = append(args, pattern)
		}
	}

	var posts []models.Post
	err := s.db.
		Where("published = ?", true).
		Where(strings.Join(conds, " OR "), args...).
		Order("created_at DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		infoLog("Search direct match failed: %v", err)
		metrics.SearchQueryErrors.Inc()
		return nil
	}
	return posts
}

// cacheSnippets probes the translation cache with the leading fuzzy
// candidates and accumulates unique original-text snippets, stopping early
// once the cap is reached.
func (s *SearchService) cacheSnippets(displayLang string, candidates []string) []string {
	probes := candidates
	if len(probes) > maxCacheCandidates {
		probes = probes[:maxCacheCandidates]
	}

	var snippets []string
	seen := make(map[string]bool)
	for _, candidate := range probes {
		for _, match := range s.cache.FindByTranslatedSubstring(displayLang, candidate, cacheRowsPerCandidate) {
			snippet := strings.TrimSpace(match.OriginalSnippet)
			if snippet == "" || seen[snippet] {
				continue
			}
			seen[snippet] = true
			snippets = append(snippets, snippet)
			if len(snippets) >= maxCacheSnippets {
				return snippets
			}
		}
	}
	return snippets
}

// requeryBySnippet re-queries published posts with the leading words of a
// recovered snippet, falling back to its single longest word when the word
// sequence matches nothing. Snippets are prefix-limited, so the tail of a
// long snippet may be truncated mid-sentence; leading words are reliable.
func (s *SearchService) requeryBySnippet(snippet string) []models.Post {
	words := strings.Fields(snippet)
	if len(words) == 0 {
		return nil
	}
	lead := words
	if len(lead) > snippetRequeryWords {
		lead = lead[:snippetRequeryWords]
	}

	posts := s.findByNeedle(strings.Join(lead, " "))
	if len(posts) > 0 {
		return posts
	}

	// Fall back to the longest individual word worth searching for.
	longest := ""
	for _, w := range words {
		if len(w) > 3 && len(w) > len(longest) {
			longest = w
		}
	}
	if longest == "" {
		return nil
	}
	return s.findByNeedle(longest)
}

func (s *SearchService) findByNeedle(needle string) []models.Post {
	pattern := "%" + escapeLike(strings.ToLower(needle)) + "%"
	var conds []string
	var args []interface{}
	for _, col := range searchColumns {
		conds = append(conds, "LOWER("+col+`) LIKE ? ESCAPE '\'`)
		args = append(args, pattern)
	}

	var posts []models.Post
	err := s.db.
		Where("published = ?", true).
		Where(strings.Join(conds, " OR "), args...).
		Limit(snippetRequeryLimit).
		Find(&posts).Error
	if err != nil {
		infoLog("Search snippet re-query failed for %q: %v", needle, err)
		metrics.SearchQueryErrors.Inc()
		return nil
	}
	return posts
}

// scorePosts computes a relevance score per post from the full token list
// plus a provenance bonus for titles confirmed against a recovered cache
// snippet. Scores are a pure function of the column contents.
func scorePosts(posts []models.Post, tokens []string, snippets []string) []models.PostSearchResult {
	results := make([]models.PostSearchResult, 0, len(posts))
	for _, post := range posts {
		title := strings.ToLower(post.Title)
		titleEn := strings.ToLower(post.TitleEn)
		excerpt := strings.ToLower(post.Excerpt)
		excerptEn := strings.ToLower(post.ExcerptEn)

		score := 0
		for _, token := range tokens {
			if strings.Contains(title, token) {
				score += scoreTitle
			}
			if strings.Contains(titleEn, token) {
				score += scoreTitleEn
			}
			if strings.Contains(excerpt, token) {
				score += scoreExcerpt
			}
			if strings.Contains(excerptEn, token) {
				score += scoreExcerptEn
			}
		}

		for _, snippet := range snippets {
			prefix := strings.ToLower(truncateRunes(snippet, snippetScoreLen))
			if prefix != "" && strings.Contains(title, prefix) {
				score += scoreSnippet
				break
			}
		}

		results = append(results, models.PostSearchResult{Post: post, RelevanceScore: score})
	}
	return results
}

// tokenize splits a query into lowercase whitespace-separated tokens,
// discarding tokens shorter than the minimum query length.
func tokenize(query string) []string {
	var tokens []string
	for _, field := range strings.Fields(strings.ToLower(query)) {
		if len([]rune(field)) >= minQueryLen {
			tokens = append(tokens, field)
		}
	}
	return tokens
}

// prefixCandidates expands a term into itself plus every prefix down to two
// characters: "jesus" -> ["jesus","jesu","jes","je"]. Prefix containment
// covers both over-typed and under-typed queries without edit-distance
// machinery.
func prefixCandidates(term string) []string {
	runes := []rune(term)
	candidates := make([]string, 0, len(runes))
	for n := len(runes); n >= minQueryLen; n-- {
		candidates = append(candidates, string(runes[:n]))
	}
	if len(candidates) == 0 {
		candidates = append(candidates, term)
	}
	return candidates
}
