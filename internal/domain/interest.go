package domain

// Interest is a catalog entry. The catalog is seeded out of band and is
// read-only here.
type Interest struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// AddInterestsResult reports the outcome of a bulk add. Added counts only
// newly created associations; Missing lists unknown interest ids in request order.
type AddInterestsResult struct {
	Requested int     `json:"requested"`
	Added     int     `json:"added"`
	Missing   []int64 `json:"missing"`
}

// NormalizeInterestIDs removes duplicates while preserving first-seen order.
// Non-positive ids are rejected.
func NormalizeInterestIDs(ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, NewValidationError("interest_ids", "must not be empty", nil)
	}

	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			return nil, NewValidationError("interest_ids", "must contain positive ids", ErrInvalidID)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}
