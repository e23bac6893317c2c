package domain

import (
	"context"
	"errors"
)

// Sentinel failures. The first three are permanent API outcomes; ErrNotFound
// doubles as the repository's missing-row result. Anything else returned by
// the translation client is transient (network, 5xx exhausted) and was
// already retried.
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrRateLimited  = errors.New("rate limited")
	ErrMalformed    = errors.New("malformed payload")
)

// Permanent reports whether err must not be retried.
func Permanent(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrMalformed)
}

type PropertyRepository interface {
	// FindCandidates returns up to limit properties missing content for at
	// least one configured language, ordered by id ascending.
	FindCandidates(ctx context.Context, limit int) ([]Candidate, error)

	// FindByExternalID loads one property for the diagnostic path,
	// bypassing discovery. ErrNotFound when absent.
	FindByExternalID(ctx context.Context, externalID string) (Candidate, error)

	// ApplyUpdate writes the language columns present in u within a single
	// transaction scoped to that property. Not retried here.
	ApplyUpdate(ctx context.Context, u Update) error

	// PendingCount is the number of properties still awaiting translation.
	PendingCount(ctx context.Context) (int64, error)
}

type TranslationClient interface {
	FetchTranslation(ctx context.Context, externalID string, lang Language) (Content, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
