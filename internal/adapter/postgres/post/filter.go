package post

import (
	"github.com/Masterminds/squirrel"

	"github.com/contentpipe/backend/internal/domain"
)

const (
	defaultLimit = 50
	maxLimit     = 200

	sortByCreatedAt   = "created_at"
	sortByPublishedAt = "published_at"
)

// normalize applies defaults and clamps values.
func normalize(f domain.PostFilter) domain.PostFilter {
	switch f.SortBy {
	case sortByCreatedAt, sortByPublishedAt:
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
func whereClauses(f domain.PostFilter) squirrel.And {
	var where squirrel.And

	if f.Status != nil {
		where = append(where, squirrel.Eq{"status": string(*f.Status)})
	}
	if f.InsightID != nil {
		where = append(where, squirrel.Eq{"insight_id": *f.InsightID})
	}
	if f.Search != nil && *f.Search != "" {
		pattern := "%" + *f.Search + "%"
		where = append(where, squirrel.Or{
			squirrel.ILike{"title": pattern},
			squirrel.ILike{"content": pattern},
		})
	}

	return where
}

// orderBy returns the ORDER BY clauses for a normalized filter.
// The id column is a deterministic tiebreak so pages never overlap.
func orderBy(f domain.PostFilter) []string {
	return []string{f.SortBy + " " + f.SortOrder, "id ASC"}
}
