package domain

// Language is a target language for property content.
type Language string

const (
	LangEnglish Language = "en"
	LangRussian Language = "ru"
)

// DefaultLanguages is the set processed when none is configured.
var DefaultLanguages = []Language{LangEnglish, LangRussian}

// Origin says where a translation came from.
type Origin string

const (
	OriginAPI      Origin = "api"
	OriginFallback Origin = "fallback"
	OriginNone     Origin = "none"
)

// Candidate is a property row still missing content for at least one
// configured language. Loaded fresh by discovery each cycle, never cached.
type Candidate struct {
	ID                int64
	ExternalID        string // key into the statements API
	SourceTitle       string // Georgian
	SourceDescription string
}

// Translation is the per-language outcome for one property. Nil fields are
// absent, not empty: a nil column is never written, so an existing DB value
// survives a partial result.
type Translation struct {
	Language    Language
	Title       *string
	Description *string
	Origin      Origin
}

// Update aggregates the translations to persist for one property. Only
// languages with Origin api or fallback appear; it is applied in a single
// transaction and discarded.
type Update struct {
	PropertyID   int64
	Translations []Translation
}

// Empty reports whether the update carries nothing worth writing.
func (u Update) Empty() bool {
	for _, t := range u.Translations {
		if t.Title != nil || t.Description != nil {
			return false
		}
	}
	return true
}

// UsedFallback reports whether any language was filled from the term dictionary.
func (u Update) UsedFallback() bool {
	for _, t := range u.Translations {
		if t.Origin == OriginFallback {
			return true
		}
	}
	return false
}

// Content is a language-scoped payload extracted from the statements API.
// A nil field means the payload did not carry that key; an empty string is a
// valid (empty) translation.
type Content struct {
	Title       *string
	Description *string
}
