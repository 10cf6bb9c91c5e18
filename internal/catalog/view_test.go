package catalog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestView_Refresh(t *testing.T) {
	errSource := errors.New("source down")
	testCases := []struct {
		name       string
		fetch      Fetcher
		wantStatus Status
		wantIDs    []int64
		wantErr    error
	}{
		{
			name: "success",
			fetch: func(_ context.Context, _ Query) ([]Product, error) {
				return []Product{{ID: 7}}, nil
			},
			wantStatus: StatusSuccess,
			wantIDs:    []int64{7},
		},
		{
			name: "empty",
			fetch: func(_ context.Context, _ Query) ([]Product, error) {
				return nil, nil
			},
			wantStatus: StatusEmpty,
			wantIDs:    []int64{},
		},
		{
			name: "error keeps the cause",
			fetch: func(_ context.Context, _ Query) ([]Product, error) {
				return nil, errSource
			},
			wantStatus: StatusError,
			wantIDs:    []int64{},
			wantErr:    errSource,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			view := NewView(tc.fetch, discardLogger())
			require.Equal(t, StatusIdle, view.State().Status)

			// when
			state := view.Refresh(context.Background(), Query{SearchText: "x"})

			// then
			assert.Equal(t, tc.wantStatus, state.Status)
			assert.Equal(t, tc.wantIDs, ids(state.Products))
			assert.Equal(t, "x", state.Query.SearchText)
			if tc.wantErr != nil {
				assert.ErrorIs(t, state.Err, tc.wantErr)
				assert.Equal(t, tc.wantErr.Error(), state.Error)
			} else {
				assert.NoError(t, state.Err)
			}
		})
	}
}

func TestView_DropsStaleResult(t *testing.T) {
	// given
	view := NewView(nil, discardLogger())
	ctx := context.Background()
	older := view.Begin(Query{SearchText: "old"})
	newer := view.Begin(Query{SearchText: "new"})
	assert.Equal(t, StatusLoading, view.State().Status)

	// when: the newer fetch resolves first
	appliedNewer := view.Complete(ctx, newer, Query{SearchText: "new"}, []Product{{ID: 2}}, nil)
	appliedOlder := view.Complete(ctx, older, Query{SearchText: "old"}, []Product{{ID: 1}}, nil)

	// then
	assert.True(t, appliedNewer)
	assert.False(t, appliedOlder)
	state := view.State()
	assert.Equal(t, StatusSuccess, state.Status)
	assert.Equal(t, []int64{2}, ids(state.Products))
	assert.Equal(t, "new", state.Query.SearchText)
	assert.Equal(t, newer, state.Token)
}

func TestView_InOrderResultsAreApplied(t *testing.T) {
	// given
	view := NewView(nil, discardLogger())
	ctx := context.Background()
	first := view.Begin(Query{})
	second := view.Begin(Query{})

	// when
	assert.True(t, view.Complete(ctx, first, Query{}, []Product{{ID: 1}}, nil))
	assert.True(t, view.Complete(ctx, second, Query{}, nil, nil))

	// then
	assert.Equal(t, StatusEmpty, view.State().Status)
}

func TestView_StateIsACopy(t *testing.T) {
	// given
	view := NewView(func(_ context.Context, _ Query) ([]Product, error) {
		return []Product{{ID: 1, Title: "A"}}, nil
	}, discardLogger())
	view.Refresh(context.Background(), Query{})

	// when
	s := view.State()
	s.Products[0].Title = "mutated"

	// then
	assert.Equal(t, "A", view.State().Products[0].Title)
}
