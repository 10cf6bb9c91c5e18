package service

import (
	"context"
	"errors"
	"testing"

	"github.com/abgdnv/storefront/internal/catalog"
	perrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// mockProductStore is a testify mock of store.ProductStore.
type mockProductStore struct {
	mock.Mock
}

func (m *mockProductStore) ListAll(ctx context.Context) ([]catalog.Product, error) {
	args := m.Called(ctx)
	products, _ := args.Get(0).([]catalog.Product)
	return products, args.Error(1)
}

func (m *mockProductStore) GetByID(ctx context.Context, id int64) (catalog.Product, bool, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(catalog.Product), args.Bool(1), args.Error(2)
}

func (m *mockProductStore) ListByCategory(ctx context.Context, category string) ([]catalog.Product, error) {
	args := m.Called(ctx, category)
	products, _ := args.Get(0).([]catalog.Product)
	return products, args.Error(1)
}

func (m *mockProductStore) Search(ctx context.Context, text string) ([]catalog.Product, error) {
	args := m.Called(ctx, text)
	products, _ := args.Get(0).([]catalog.Product)
	return products, args.Error(1)
}

func (m *mockProductStore) Filter(ctx context.Context, q catalog.Query) ([]catalog.Product, error) {
	args := m.Called(ctx, q)
	products, _ := args.Get(0).([]catalog.Product)
	return products, args.Error(1)
}

func (m *mockProductStore) ListCategories(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	categories, _ := args.Get(0).([]string)
	return categories, args.Error(1)
}

func newest(n int) []catalog.Product {
	out := make([]catalog.Product, n)
	for i := range out {
		out[i] = catalog.Product{ID: int64(n - i), Image: "img.png"}
	}
	return out
}

func Test_CatalogService_GetByID(t *testing.T) {
	errSource := perrors.NewFetchError("GetByID", errors.New("boom"))
	testCases := []struct {
		name        string
		product     catalog.Product
		found       bool
		storeErr    error
		expectError error
	}{
		{name: "Success - product found", product: catalog.Product{ID: 1, Title: "Tee"}, found: true},
		{name: "Success - product missing", found: false},
		{name: "Error - source failure", storeErr: errSource, expectError: perrors.ErrFetchFailure},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			st := new(mockProductStore)
			st.On("GetByID", mock.Anything, int64(1)).Return(tc.product, tc.found, tc.storeErr).Once()
			svc := NewService(st)

			// when
			product, found, err := svc.GetByID(context.Background(), 1)

			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				assert.False(t, found)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.found, found)
			assert.Equal(t, tc.product, product)
			st.AssertExpectations(t)
		})
	}
}

func Test_CatalogService_Filter(t *testing.T) {
	valid := catalog.NewPriceRange(decimal.NewFromInt(10), decimal.NewFromInt(20))
	inverted := catalog.PriceRange{Min: decimal.NewFromInt(50), Max: decimal.NewFromInt(5)}
	negative := catalog.PriceRange{Min: decimal.NewFromInt(-1), Max: decimal.NewFromInt(5)}

	testCases := []struct {
		name        string
		query       catalog.Query
		callsStore  bool
		expectError error
	}{
		{name: "Success - no range", query: catalog.Query{SearchText: "tee"}, callsStore: true},
		{name: "Success - valid range", query: catalog.Query{PriceRange: &valid}, callsStore: true},
		{name: "Error - inverted range", query: catalog.Query{PriceRange: &inverted}, expectError: perrors.ErrInvalidQuery},
		{name: "Error - negative bound", query: catalog.Query{PriceRange: &negative}, expectError: perrors.ErrInvalidQuery},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			st := new(mockProductStore)
			if tc.callsStore {
				st.On("Filter", mock.Anything, tc.query).Return([]catalog.Product{{ID: 1}}, nil).Once()
			}
			svc := NewService(st)

			// when
			products, err := svc.Filter(context.Background(), tc.query)

			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				st.AssertNotCalled(t, "Filter", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Len(t, products, 1)
			st.AssertExpectations(t)
		})
	}
}

func Test_CatalogService_Featured(t *testing.T) {
	testCases := []struct {
		name      string
		available int
		limit     int
		wantLen   int
	}{
		{name: "default limit", available: 20, limit: 0, wantLen: catalog.DefaultFeaturedLimit},
		{name: "explicit limit", available: 20, limit: 5, wantLen: 5},
		{name: "fewer products than limit", available: 3, limit: 12, wantLen: 3},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			st := new(mockProductStore)
			st.On("Filter", mock.Anything, catalog.Query{SortBy: catalog.SortNewest}).Return(newest(tc.available), nil).Once()
			svc := NewService(st)

			// when
			products, err := svc.Featured(context.Background(), tc.limit)

			// then
			require.NoError(t, err)
			assert.Len(t, products, tc.wantLen)
			assert.Equal(t, int64(tc.available), products[0].ID)
		})
	}
}

func Test_CatalogService_Variants(t *testing.T) {
	// given
	st := new(mockProductStore)
	st.On("GetByID", mock.Anything, int64(7)).Return(catalog.Product{ID: 7, Image: "x.png"}, true, nil).Once()
	st.On("GetByID", mock.Anything, int64(8)).Return(catalog.Product{}, false, nil).Once()
	svc := NewService(st)

	// when
	variants, found, err := svc.Variants(context.Background(), 7)
	_, missing, errMissing := svc.Variants(context.Background(), 8)

	// then
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"x.png", "x.png", "x.png", "x.png"}, variants.Images)
	require.NoError(t, errMissing)
	assert.False(t, missing)
}

func Test_CatalogService_ListOperationsWrapErrors(t *testing.T) {
	errSource := perrors.NewFetchError("ListAll", errors.New("down"))
	st := new(mockProductStore)
	st.On("ListAll", mock.Anything).Return(nil, errSource)
	st.On("ListByCategory", mock.Anything, "Hats").Return(nil, errSource)
	st.On("Search", mock.Anything, "cap").Return(nil, errSource)
	st.On("ListCategories", mock.Anything).Return(nil, errSource)
	svc := NewService(st)
	ctx := context.Background()

	_, err := svc.ListAll(ctx)
	assert.ErrorIs(t, err, perrors.ErrFetchFailure)
	_, err = svc.ListByCategory(ctx, "Hats")
	assert.ErrorIs(t, err, perrors.ErrFetchFailure)
	_, err = svc.Search(ctx, "cap")
	assert.ErrorIs(t, err, perrors.ErrFetchFailure)
	_, err = svc.ListCategories(ctx)
	assert.ErrorIs(t, err, perrors.ErrFetchFailure)
}

func Test_CatalogService_RecordsSpans(t *testing.T) {
	// given
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	st := new(mockProductStore)
	st.On("ListCategories", mock.Anything).Return([]string{"A"}, nil).Once()
	st.On("ListAll", mock.Anything).Return(nil, errors.New("down")).Once()
	svc := NewService(st)

	// when
	_, _ = svc.ListCategories(context.Background())
	_, _ = svc.ListAll(context.Background())

	// then
	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "catalog.ListCategories", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.Equal(t, "catalog.ListAll", spans[1].Name())
	assert.Equal(t, codes.Error, spans[1].Status().Code)
}
