package domain

import "strings"

// Paging bounds.
const (
	MinPageLimit     = 1
	MaxPageLimit     = 100
	DefaultPageLimit = 20
	MaxQueryLength   = 100
)

// PageRequest is a validated offset/limit pair.
type PageRequest struct {
	Offset int
	Limit  int
}

// NewPageRequest rejects a negative offset and clamps limit into
// [MinPageLimit, MaxPageLimit].
func NewPageRequest(offset, limit int) (PageRequest, error) {
	if offset < 0 {
		return PageRequest{}, NewValidationError("offset", "must not be negative", nil)
	}
	if limit < MinPageLimit {
		limit = MinPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return PageRequest{Offset: offset, Limit: limit}, nil
}

// NormalizeQuery trims a free-text search query. Matching is a
// case-insensitive substring match, so the query itself is not lower-cased here.
func NormalizeQuery(q string) (string, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return "", NewValidationError("q", "must not be empty", nil)
	}
	if len(q) > MaxQueryLength {
		return "", NewValidationError("q", "is too long", nil)
	}
	return q, nil
}

// SearchResultPage is one page of users ordered by id ascending.
type SearchResultPage struct {
	Items   []UserSummary `json:"items"`
	Total   int           `json:"total"`
	HasMore bool          `json:"has_more"`
	Offset  int           `json:"offset"`
	Limit   int           `json:"limit"`
}

// NewSearchResultPage assembles a page from the rows returned for req and
// the total number of matching rows.
func NewSearchResultPage(users []*User, total int, req PageRequest) *SearchResultPage {
	return &SearchResultPage{
		Items:   Summaries(users),
		Total:   total,
		HasMore: req.Offset+len(users) < total,
		Offset:  req.Offset,
		Limit:   req.Limit,
	}
}
