package models

import "time"

// SnippetMaxLen is the number of leading characters of the original text
// persisted alongside a cached translation. Lookups always key on the hash of
// the full text, so the snippet is only used for debugging and for the
// reverse-lookup path in search (matches against it are prefix-limited).
const SnippetMaxLen = 1000

// TranslationCache stores one cached machine translation.
//
// Identity is the triple (OriginalTextHash, SourceLang, TargetLang):
// re-translating the same text for the same language pair overwrites the
// existing row rather than creating a duplicate. Entries never expire and are
// never deleted by this subsystem.
type TranslationCache struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	OriginalTextHash    string    `gorm:"uniqueIndex:idx_translation_identity;not null;size:64" json:"original_text_hash"` // SHA256 hex of the full source text
	SourceLang          string    `gorm:"uniqueIndex:idx_translation_identity;not null;size:10" json:"source_lang"`        // lowercase 2-letter code
	TargetLang          string    `gorm:"uniqueIndex:idx_translation_identity;not null;size:10;index" json:"target_lang"`  // lowercase 2-letter code
	OriginalTextSnippet string    `gorm:"not null" json:"original_text_snippet"`                                           // first SnippetMaxLen chars of the source text
	TranslatedText      string    `gorm:"not null" json:"translated_text"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func (TranslationCache) TableName() string {
	return "translation_caches"
}
