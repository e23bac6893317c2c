package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/DanteTheCreator/real-estate-deployment-sub001/internal/domain"
)

// Processor assembles the per-language update for one property. All I/O is
// delegated; per-language fetch failures are absorbed here and converted to
// fallback-or-omit, never surfaced to the scheduler.
type Processor struct {
	api      domain.TranslationClient
	terms    *TermTranslator
	cache    domain.Cache // optional
	langs    []domain.Language
	cacheTTL time.Duration
}

func NewProcessor(api domain.TranslationClient, terms *TermTranslator, cache domain.Cache, langs []domain.Language, cacheTTL time.Duration) *Processor {
	if len(langs) == 0 {
		langs = domain.DefaultLanguages
	}
	return &Processor{api: api, terms: terms, cache: cache, langs: langs, cacheTTL: cacheTTL}
}

// Process fetches every configured language for the candidate. The returned
// error is non-nil only when the context was canceled mid-property; the
// update must then be discarded so a shutdown never causes a partial write.
func (p *Processor) Process(ctx context.Context, cand domain.Candidate) (domain.Update, error) {
	upd := domain.Update{PropertyID: cand.ID}

	for _, lang := range p.langs {
		content, err := p.fetch(ctx, cand.ExternalID, lang)
		if err == nil {
			upd.Translations = append(upd.Translations, domain.Translation{
				Language:    lang,
				Title:       content.Title,
				Description: content.Description,
				Origin:      domain.OriginAPI,
			})
			continue
		}
		if ctx.Err() != nil {
			return upd, fmt.Errorf("process %s: %w", cand.ExternalID, ctx.Err())
		}

		log.Warn().
			Str("external_id", cand.ExternalID).
			Str("lang", string(lang)).
			Err(err).
			Msg("fetch failed, trying term fallback")

		if tr, ok := p.terms.Translate(cand.SourceTitle, cand.SourceDescription, lang); ok {
			upd.Translations = append(upd.Translations, tr)
			continue
		}
		// no recognized terms: omit the language, leave existing columns alone
		log.Debug().
			Str("external_id", cand.ExternalID).
			Str("lang", string(lang)).
			Msg("no fallback terms matched, language omitted")
	}

	return upd, nil
}

func (p *Processor) fetch(ctx context.Context, externalID string, lang domain.Language) (domain.Content, error) {
	key := fmt.Sprintf("translation:%s:%s", externalID, lang)

	if p.cache != nil {
		var cached domain.Content
		if ok, _ := p.cache.Get(ctx, key, &cached); ok {
			return cached, nil
		}
	}

	content, err := p.api.FetchTranslation(ctx, externalID, lang)
	if err != nil {
		return domain.Content{}, err
	}
	if p.cache != nil {
		_ = p.cache.Set(ctx, key, content, int(p.cacheTTL.Seconds()))
	}
	return content, nil
}
