package insight

import (
	"github.com/Masterminds/squirrel"

	"github.com/contentpipe/backend/internal/domain"
)

const (
	defaultLimit = 50
	maxLimit     = 200

	sortByCreatedAt  = "created_at"
	sortByConfidence = "confidence"
)

// normalize applies defaults and clamps values.
func normalize(f domain.InsightFilter) domain.InsightFilter {
	switch f.SortBy {
	case sortByCreatedAt, sortByConfidence:
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
// MinConfidence naturally drops rows without a confidence value.
func whereClauses(f domain.InsightFilter) squirrel.And {
	var where squirrel.And

	if f.TranscriptID != nil {
		where = append(where, squirrel.Eq{"transcript_id": *f.TranscriptID})
	}
	if f.Kind != nil {
		where = append(where, squirrel.Eq{"kind": string(*f.Kind)})
	}
	if f.MinConfidence != nil {
		where = append(where, squirrel.GtOrEq{"confidence": *f.MinConfidence})
	}

	return where
}

// orderBy returns the ORDER BY clauses for a normalized filter.
// The id column is a deterministic tiebreak so pages never overlap.
func orderBy(f domain.InsightFilter) []string {
	return []string{f.SortBy + " " + f.SortOrder, "id ASC"}
}
