package mysql

// Candidate discovery selects rows whose language columns are still empty for
// at least one configured language. The per-language predicate is assembled in
// repo.go from a column whitelist; ordering by id keeps repeated cycles
// deterministic.
const selectCandidatesPrefix = `
SELECT id, external_id, title, description
FROM properties
WHERE external_id IS NOT NULL AND external_id <> ''
  AND title IS NOT NULL AND title <> ''
  AND (`

const selectCandidatesSuffix = `)
ORDER BY id ASC
LIMIT ?`

const selectByExternalIDSQL = `
SELECT id, external_id, title, description
FROM properties
WHERE external_id = ?`

const countPendingPrefix = `
SELECT COUNT(*)
FROM properties
WHERE external_id IS NOT NULL AND external_id <> ''
  AND title IS NOT NULL AND title <> ''
  AND (`

const countPendingSuffix = `)`
