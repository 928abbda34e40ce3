package transcript

import (
	"github.com/Masterminds/squirrel"

	"github.com/contentpipe/backend/internal/domain"
)

const (
	defaultLimit = 50
	maxLimit     = 200

	sortByCreatedAt  = "created_at"
	sortByIngestedAt = "ingested_at"
)

// normalize applies defaults and clamps values.
func normalize(f domain.TranscriptFilter) domain.TranscriptFilter {
	switch f.SortBy {
	case sortByCreatedAt, sortByIngestedAt:
		// valid
	default:
		f.SortBy = sortByCreatedAt
	}

	switch f.SortOrder {
	case domain.SortOrderASC, domain.SortOrderDESC:
		// valid
	default:
		f.SortOrder = domain.SortOrderASC
	}

	if f.Limit <= 0 {
		f.Limit = defaultLimit
	}
	if f.Limit > maxLimit {
		f.Limit = maxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	return f
}

// whereClauses builds the WHERE conjunction for a normalized filter.
// Soft-deleted rows are always excluded.
func whereClauses(f domain.TranscriptFilter) squirrel.And {
	where := squirrel.And{squirrel.Expr("deleted_at IS NULL")}

	if f.SourceRef != nil {
		where = append(where, squirrel.Eq{"source_ref": *f.SourceRef})
	}
	if f.Language != nil {
		where = append(where, squirrel.Eq{"language": *f.Language})
	}
	if f.IngestedAfter != nil {
		where = append(where, squirrel.GtOrEq{"ingested_at": *f.IngestedAfter})
	}
	if f.IngestedBefore != nil {
		where = append(where, squirrel.LtOrEq{"ingested_at": *f.IngestedBefore})
	}

	return where
}

// orderBy returns the ORDER BY clauses for a normalized filter.
// The id column is a deterministic tiebreak so pages never overlap.
func orderBy(f domain.TranscriptFilter) []string {
	return []string{f.SortBy + " " + f.SortOrder, "id ASC"}
}
