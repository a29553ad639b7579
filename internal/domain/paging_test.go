package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPageRequest(t *testing.T) {
	tests := []struct {
		name      string
		offset    int
		limit     int
		wantLimit int
		wantErr   bool
	}{
		{"in range", 0, 10, 10, false},
		{"upper bound kept", 5, 100, 100, false},
		{"clamped high", 0, 500, 100, false},
		{"clamped low", 0, 0, 1, false},
		{"negative limit clamped", 0, -4, 1, false},
		{"negative offset rejected", -1, 10, 0, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req, err := NewPageRequest(tc.offset, tc.limit)
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.offset, req.Offset)
			assert.Equal(t, tc.wantLimit, req.Limit)
		})
	}
}

func TestNormalizeQuery(t *testing.T) {
	q, err := NormalizeQuery("  Jo ")
	require.NoError(t, err)
	assert.Equal(t, "Jo", q)

	_, err = NormalizeQuery("   ")
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = NormalizeQuery(strings.Repeat("a", MaxQueryLength+1))
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestNewSearchResultPage(t *testing.T) {
	users := []*User{{ID: 3, Username: "jo"}, {ID: 4, Username: "joe"}}

	page := NewSearchResultPage(users, 5, PageRequest{Offset: 0, Limit: 2})
	assert.True(t, page.HasMore)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, int64(3), page.Items[0].ID)

	last := NewSearchResultPage(users, 5, PageRequest{Offset: 3, Limit: 2})
	assert.False(t, last.HasMore)

	empty := NewSearchResultPage(nil, 0, PageRequest{Offset: 0, Limit: 10})
	assert.NotNil(t, empty.Items)
	assert.Empty(t, empty.Items)
}

func TestNormalizeInterestIDs(t *testing.T) {
	ids, err := NormalizeInterestIDs([]int64{1, 1, 2})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids)

	_, err = NormalizeInterestIDs(nil)
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = NormalizeInterestIDs([]int64{1, 0})
	assert.True(t, errors.Is(err, ErrInvalidID))
}
