package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/DanteTheCreator/real-estate-deployment-sub001/internal/domain"
)

// langColumns whitelists the per-language title/description columns. Column
// names are never taken from input; an unknown configured language is rejected
// at construction.
var langColumns = map[domain.Language][2]string{
	domain.LangEnglish: {"title_en", "description_en"},
	domain.LangRussian: {"title_ru", "description_ru"},
}

type Repo struct {
	db    *sql.DB
	langs []domain.Language
	// precomputed OR-joined emptiness predicate for the configured languages
	pendingClause string
}

func New(db *sql.DB, langs []domain.Language) (*Repo, error) {
	if len(langs) == 0 {
		langs = domain.DefaultLanguages
	}
	preds := make([]string, 0, len(langs))
	for _, l := range langs {
		cols, ok := langColumns[l]
		if !ok {
			return nil, fmt.Errorf("no columns mapped for language %q", l)
		}
		preds = append(preds, fmt.Sprintf(
			"(%[1]s IS NULL OR %[1]s = '' OR %[2]s IS NULL OR %[2]s = '')",
			cols[0], cols[1],
		))
	}
	return &Repo{
		db:            db,
		langs:         langs,
		pendingClause: strings.Join(preds, " OR "),
	}, nil
}

func (r *Repo) FindCandidates(ctx context.Context, limit int) ([]domain.Candidate, error) {
	rows, err := r.db.QueryContext(ctx, selectCandidatesPrefix+r.pendingClause+selectCandidatesSuffix, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repo) FindByExternalID(ctx context.Context, externalID string) (domain.Candidate, error) {
	row := r.db.QueryRowContext(ctx, selectByExternalIDSQL, externalID)
	c, err := scanCandidate(row)
	if err == sql.ErrNoRows {
		return domain.Candidate{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Candidate{}, err
	}
	return c, nil
}

// ApplyUpdate writes only the language columns present in u, in one
// transaction scoped to that property. A failure rolls back fully and is
// reported to the caller; retrying is the scheduler's call.
func (r *Repo) ApplyUpdate(ctx context.Context, u domain.Update) error {
	var sets []string
	var args []any
	for _, t := range u.Translations {
		cols, ok := langColumns[t.Language]
		if !ok {
			return fmt.Errorf("no columns mapped for language %q", t.Language)
		}
		if t.Title != nil {
			sets = append(sets, cols[0]+" = ?")
			args = append(args, *t.Title)
		}
		if t.Description != nil {
			sets = append(sets, cols[1]+" = ?")
			args = append(args, *t.Description)
		}
	}
	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, u.PropertyID)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	query := "UPDATE properties SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (r *Repo) PendingCount(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, countPendingPrefix+r.pendingClause+countPendingSuffix).Scan(&n)
	return n, err
}

type rowScanner interface{ Scan(dest ...any) error }

func scanCandidate(row rowScanner) (domain.Candidate, error) {
	var c domain.Candidate
	var desc sql.NullString
	if err := row.Scan(&c.ID, &c.ExternalID, &c.SourceTitle, &desc); err != nil {
		return domain.Candidate{}, err
	}
	if desc.Valid {
		c.SourceDescription = desc.String
	}
	return c, nil
}
