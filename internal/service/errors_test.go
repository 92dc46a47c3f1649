package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/phrazzld/lingo-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapStoreError(t *testing.T) {
	t.Parallel() // Enable parallel execution
	testCases := []struct {
		name string
		err  error
		want error
	}{
		{name: "nil passes through", err: nil, want: nil},
		{name: "not found", err: store.ErrNotFound, want: ErrNotFound},
		{name: "entity-specific not found", err: store.ErrSessionNotFound, want: ErrNotFound},
		{name: "unavailable", err: store.ErrUnavailable, want: ErrStoreUnavailable},
		{name: "invalid entity", err: store.ErrInvalidEntity, want: ErrInvalidInput},
		{
			name: "wrapped sentinel",
			err:  fmt.Errorf("close session: %w", store.ErrSessionNotFound),
			want: ErrNotFound,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := mapStoreError("test_op", tc.err)
			if tc.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tc.want)
		})
	}
}

func TestMapStoreErrorUnexpected(t *testing.T) {
	t.Parallel() // Enable parallel execution
	cause := errors.New("disk on fire")
	got := mapStoreError("touch_streak", cause)

	var trackerErr *TrackerError
	require.ErrorAs(t, got, &trackerErr)
	assert.Equal(t, "touch_streak", trackerErr.Operation)
	assert.ErrorIs(t, got, cause)
}
