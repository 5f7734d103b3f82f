package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tariffsvc/internal/domain"
	"tariffsvc/internal/tariff"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockService struct{ mock.Mock }

func (m *MockService) GetTariffs(ctx context.Context, base string, limit, offset int) (*tariff.Page, error) {
	args := m.Called(ctx, base, limit, offset)
	page, _ := args.Get(0).(*tariff.Page)
	return page, args.Error(1)
}

func (m *MockService) GetTariffsCached(ctx context.Context, base string, limit, offset int) (*tariff.Page, error) {
	args := m.Called(ctx, base, limit, offset)
	page, _ := args.Get(0).(*tariff.Page)
	return page, args.Error(1)
}

func (m *MockService) GetTariffByID(ctx context.Context, id int64) (*tariff.View, error) {
	args := m.Called(ctx, id)
	view, _ := args.Get(0).(*tariff.View)
	return view, args.Error(1)
}

func testPage(fromCache bool) *tariff.Page {
	page := &tariff.Page{
		Data: []tariff.View{
			{
				ID:             1,
				BaseCurrency:   "EUR",
				TargetCurrency: "USD",
				Rate:           decimal.RequireFromString("1.1571"),
				EffectiveDate:  "2026-08-30",
			},
		},
		Total:     1,
		Timestamp: time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC),
		FromCache: fromCache,
	}
	if fromCache {
		cachedAt := page.Timestamp.Add(-time.Minute)
		page.CachedAt = &cachedAt
	}
	return page
}

func TestHandler_GetTariffs_Success(t *testing.T) {
	mockSvc := new(MockService)
	h := NewTariffHandler(mockSvc)

	mockSvc.On("GetTariffs", mock.Anything, "", defaultLimit, defaultOffset).
		Return(testPage(false), nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tariffs", nil)
	rec := httptest.NewRecorder()
	h.GetTariffs(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got tariff.Page
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Data, 1)
	require.Equal(t, "EUR", got.Data[0].BaseCurrency)
	require.Equal(t, 1, got.Total)
	require.False(t, got.FromCache)
	mockSvc.AssertExpectations(t)
}

func TestHandler_GetTariffs_PassesQueryParams(t *testing.T) {
	mockSvc := new(MockService)
	h := NewTariffHandler(mockSvc)

	mockSvc.On("GetTariffs", mock.Anything, "EUR", 25, 50).Return(testPage(false), nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tariffs?base=EUR&limit=25&offset=50", nil)
	rec := httptest.NewRecorder()
	h.GetTariffs(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	mockSvc.AssertExpectations(t)
}

func TestHandler_GetTariffs_NonNumericParams(t *testing.T) {
	mockSvc := new(MockService)
	h := NewTariffHandler(mockSvc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tariffs?limit=abc", nil)
	rec := httptest.NewRecorder()
	h.GetTariffs(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	mockSvc.AssertNotCalled(t, "GetTariffs", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandler_GetTariffs_InvalidPagination(t *testing.T) {
	mockSvc := new(MockService)
	h := NewTariffHandler(mockSvc)

	wantErr := fmt.Errorf("%w: limit must be positive, got -1", domain.ErrInvalidArgument)
	mockSvc.On("GetTariffs", mock.Anything, "", -1, defaultOffset).Return(nil, wantErr).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tariffs?limit=-1", nil)
	rec := httptest.NewRecorder()
	h.GetTariffs(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "limit must be positive")
	mockSvc.AssertExpectations(t)
}

func TestHandler_GetTariffs_StoreError(t *testing.T) {
	mockSvc := new(MockService)
	h := NewTariffHandler(mockSvc)

	mockSvc.On("GetTariffs", mock.Anything, "", defaultLimit, defaultOffset).
		Return(nil, errors.New("db query failed")).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tariffs", nil)
	rec := httptest.NewRecorder()
	h.GetTariffs(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	// Internal details must not leak to the client.
	require.NotContains(t, rec.Body.String(), "db query failed")
	mockSvc.AssertExpectations(t)
}

func TestHandler_GetTariffsCached_Success(t *testing.T) {
	mockSvc := new(MockService)
	h := NewTariffHandler(mockSvc)

	mockSvc.On("GetTariffsCached", mock.Anything, "", defaultLimit, defaultOffset).
		Return(testPage(true), nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tariffs/cached", nil)
	rec := httptest.NewRecorder()
	h.GetTariffsCached(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got tariff.Page
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.True(t, got.FromCache)
	require.NotNil(t, got.CachedAt)
	mockSvc.AssertExpectations(t)
}

func TestHandler_GetTariffsCached_InvalidOffset(t *testing.T) {
	mockSvc := new(MockService)
	h := NewTariffHandler(mockSvc)

	wantErr := fmt.Errorf("%w: offset must not be negative, got -1", domain.ErrInvalidArgument)
	mockSvc.On("GetTariffsCached", mock.Anything, "", defaultLimit, -1).Return(nil, wantErr).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tariffs/cached?offset=-1", nil)
	rec := httptest.NewRecorder()
	h.GetTariffsCached(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	mockSvc.AssertExpectations(t)
}

func newByIDRequest(id string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tariffs/"+id, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestHandler_GetTariffByID_Success(t *testing.T) {
	mockSvc := new(MockService)
	h := NewTariffHandler(mockSvc)

	want := &testPage(false).Data[0]
	mockSvc.On("GetTariffByID", mock.Anything, int64(1)).Return(want, nil).Once()

	rec := httptest.NewRecorder()
	h.GetTariffByID(rec, newByIDRequest("1"))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got tariff.View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, int64(1), got.ID)
	require.Equal(t, "USD", got.TargetCurrency)
	mockSvc.AssertExpectations(t)
}

func TestHandler_GetTariffByID_NonNumericID(t *testing.T) {
	mockSvc := new(MockService)
	h := NewTariffHandler(mockSvc)

	rec := httptest.NewRecorder()
	h.GetTariffByID(rec, newByIDRequest("abc"))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	mockSvc.AssertNotCalled(t, "GetTariffByID", mock.Anything, mock.Anything)
}

func TestHandler_GetTariffByID_NotFound(t *testing.T) {
	mockSvc := new(MockService)
	h := NewTariffHandler(mockSvc)

	mockSvc.On("GetTariffByID", mock.Anything, int64(42)).
		Return(nil, domain.ErrTariffNotFound).Once()

	rec := httptest.NewRecorder()
	h.GetTariffByID(rec, newByIDRequest("42"))

	require.Equal(t, http.StatusNotFound, rec.Code)
	mockSvc.AssertExpectations(t)
}

func TestHandler_GetTariffByID_StoreError(t *testing.T) {
	mockSvc := new(MockService)
	h := NewTariffHandler(mockSvc)

	mockSvc.On("GetTariffByID", mock.Anything, int64(7)).
		Return(nil, errors.New("db query failed")).Once()

	rec := httptest.NewRecorder()
	h.GetTariffByID(rec, newByIDRequest("7"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotContains(t, rec.Body.String(), "db query failed")
	mockSvc.AssertExpectations(t)
}
