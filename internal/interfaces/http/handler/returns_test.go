package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	inventoryapp "github.com/retailpos/backend/internal/application/inventory"
	returnsapp "github.com/retailpos/backend/internal/application/returns"
	"github.com/retailpos/backend/internal/domain/returns"
	"github.com/retailpos/backend/internal/domain/sales"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/retailpos/backend/internal/interfaces/http/dto"
)

// MockReturnRepository implements returns.ReturnRepository for testing
type MockReturnRepository struct {
	mock.Mock
}

func (m *MockReturnRepository) Create(ctx context.Context, r *returns.Return) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockReturnRepository) FindByID(ctx context.Context, id uuid.UUID) (*returns.Return, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*returns.Return), args.Error(1)
}

func (m *MockReturnRepository) FindByReturnNumber(ctx context.Context, returnNumber string) (*returns.Return, error) {
	args := m.Called(ctx, returnNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*returns.Return), args.Error(1)
}

func (m *MockReturnRepository) FindAll(ctx context.Context, filter shared.Filter) ([]returns.Return, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]returns.Return), args.Error(1)
}

func (m *MockReturnRepository) FindBySale(ctx context.Context, saleID uuid.UUID) ([]returns.Return, error) {
	args := m.Called(ctx, saleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]returns.Return), args.Error(1)
}

func (m *MockReturnRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReturnRepository) CountByStatus(ctx context.Context, status returns.ReturnStatus) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReturnRepository) UpdateStatus(ctx context.Context, id uuid.UUID, expected, next returns.ReturnStatus, update returns.StatusUpdate) error {
	args := m.Called(ctx, id, expected, next, update)
	return args.Error(0)
}

func (m *MockReturnRepository) SumReturnedQuantityForSaleLine(ctx context.Context, saleLineID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, saleLineID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockReturnRepository) GenerateReturnNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// MockSaleReader implements sales.SaleReader for testing
type MockSaleReader struct {
	mock.Mock
}

func (m *MockSaleReader) FindByID(ctx context.Context, id uuid.UUID) (*sales.Sale, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.Sale), args.Error(1)
}

func (m *MockSaleReader) FindLine(ctx context.Context, saleID, lineID uuid.UUID) (*sales.SaleLine, error) {
	args := m.Called(ctx, saleID, lineID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.SaleLine), args.Error(1)
}

func newTestReturnsHandler(t *testing.T) (*ReturnsHandler, *MockReturnRepository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := new(MockReturnRepository)
	saleReader := new(MockSaleReader)
	logger := zap.NewNop()
	scope := inventoryapp.NewNoOpTransactionScope(repo, nil, nil, nil)
	service := returnsapp.NewReturnService(
		repo,
		saleReader,
		scope,
		inventoryapp.NewSerialLedger(logger),
		inventoryapp.NewStockApplier(logger),
		logger,
	)

	return NewReturnsHandler(service), repo
}

func pendingReturn() *returns.Return {
	return &returns.Return{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ReturnNumber:      "RT-2026-00042",
		SaleID:            uuid.New(),
		SaleNumber:        "S-1001",
		Status:            returns.ReturnStatusPending,
		RefundMethod:      returns.RefundMethodCash,
	}
}

func performRequest(h gin.HandlerFunc, method, target string, body []byte, params gin.Params, headers map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}
	c.Request = httptest.NewRequest(method, target, reader)
	c.Request.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		c.Request.Header.Set(k, v)
	}
	c.Params = params

	h(c)
	return w
}

func TestReturnsHandler_Create_InvalidBody(t *testing.T) {
	h, _ := newTestReturnsHandler(t)

	w := performRequest(h.Create, http.MethodPost, "/returns", []byte(`{"sale_id":"not-a-uuid"}`), nil, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, dto.ErrCodeBadRequest, resp.Error.Code)
}

func TestReturnsHandler_GetByID_InvalidID(t *testing.T) {
	h, _ := newTestReturnsHandler(t)

	w := performRequest(h.GetByID, http.MethodGet, "/returns/abc", nil,
		gin.Params{{Key: "id", Value: "abc"}}, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReturnsHandler_GetByID_NotFound(t *testing.T) {
	h, repo := newTestReturnsHandler(t)

	id := uuid.New()
	repo.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

	w := performRequest(h.GetByID, http.MethodGet, "/returns/"+id.String(), nil,
		gin.Params{{Key: "id", Value: id.String()}}, nil)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, dto.ErrCodeNotFound, resp.Error.Code)
	repo.AssertExpectations(t)
}

func TestReturnsHandler_GetByID_Found(t *testing.T) {
	h, repo := newTestReturnsHandler(t)

	r := pendingReturn()
	repo.On("FindByID", mock.Anything, r.ID).Return(r, nil)

	w := performRequest(h.GetByID, http.MethodGet, "/returns/"+r.ID.String(), nil,
		gin.Params{{Key: "id", Value: r.ID.String()}}, nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "RT-2026-00042", data["return_number"])
	assert.Equal(t, "PENDING", data["status"])
	repo.AssertExpectations(t)
}

func TestReturnsHandler_GetByReturnNumber(t *testing.T) {
	h, repo := newTestReturnsHandler(t)

	r := pendingReturn()
	repo.On("FindByReturnNumber", mock.Anything, "RT-2026-00042").Return(r, nil)

	w := performRequest(h.GetByReturnNumber, http.MethodGet, "/returns/number/RT-2026-00042", nil,
		gin.Params{{Key: "return_number", Value: "RT-2026-00042"}}, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	repo.AssertExpectations(t)
}

func TestReturnsHandler_List(t *testing.T) {
	h, repo := newTestReturnsHandler(t)

	items := []returns.Return{*pendingReturn(), *pendingReturn()}
	repo.On("FindAll", mock.Anything, mock.Anything).Return(items, nil)
	repo.On("Count", mock.Anything, mock.Anything).Return(int64(2), nil)

	w := performRequest(h.List, http.MethodGet, "/returns?page=1&page_size=20", nil, nil, nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(2), resp.Meta.Total)
	assert.Equal(t, 1, resp.Meta.Page)
	assert.Equal(t, 20, resp.Meta.PageSize)
	repo.AssertExpectations(t)
}

func TestReturnsHandler_ListBySale(t *testing.T) {
	h, repo := newTestReturnsHandler(t)

	saleID := uuid.New()
	repo.On("FindBySale", mock.Anything, saleID).Return([]returns.Return{*pendingReturn()}, nil)

	w := performRequest(h.ListBySale, http.MethodGet, "/sales/"+saleID.String()+"/returns", nil,
		gin.Params{{Key: "id", Value: saleID.String()}}, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	repo.AssertExpectations(t)
}

func TestReturnsHandler_Approve_MissingActor(t *testing.T) {
	h, _ := newTestReturnsHandler(t)

	id := uuid.New()
	body := []byte(`{"refund_amount":"10.00","store_credit_amount":"0"}`)

	w := performRequest(h.Approve, http.MethodPost, "/returns/"+id.String()+"/approve", body,
		gin.Params{{Key: "id", Value: id.String()}}, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReturnsHandler_Reject_Success(t *testing.T) {
	h, repo := newTestReturnsHandler(t)

	r := pendingReturn()
	actor := uuid.New()
	repo.On("FindByID", mock.Anything, r.ID).Return(r, nil)
	repo.On("UpdateStatus", mock.Anything, r.ID, returns.ReturnStatusPending, returns.ReturnStatusRejected, mock.Anything).Return(nil)

	body := []byte(`{"reason":"customer changed mind"}`)
	w := performRequest(h.Reject, http.MethodPost, "/returns/"+r.ID.String()+"/reject", body,
		gin.Params{{Key: "id", Value: r.ID.String()}},
		map[string]string{"X-User-ID": actor.String()})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "REJECTED", data["status"])
	repo.AssertExpectations(t)
}

func TestReturnsHandler_Reject_ConcurrencyConflict(t *testing.T) {
	h, repo := newTestReturnsHandler(t)

	r := pendingReturn()
	actor := uuid.New()
	repo.On("FindByID", mock.Anything, r.ID).Return(r, nil)
	repo.On("UpdateStatus", mock.Anything, r.ID, returns.ReturnStatusPending, returns.ReturnStatusRejected, mock.Anything).
		Return(shared.ErrConcurrencyConflict)

	body := []byte(`{"reason":"too late"}`)
	w := performRequest(h.Reject, http.MethodPost, "/returns/"+r.ID.String()+"/reject", body,
		gin.Params{{Key: "id", Value: r.ID.String()}},
		map[string]string{"X-User-ID": actor.String()})

	assert.Equal(t, http.StatusConflict, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, dto.ErrCodeConcurrencyConflict, resp.Error.Code)
	repo.AssertExpectations(t)
}

func TestReturnsHandler_Cancel_MissingReason(t *testing.T) {
	h, _ := newTestReturnsHandler(t)

	id := uuid.New()
	w := performRequest(h.Cancel, http.MethodPost, "/returns/"+id.String()+"/cancel", []byte(`{}`),
		gin.Params{{Key: "id", Value: id.String()}}, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReturnsHandler_GetStatusSummary(t *testing.T) {
	h, repo := newTestReturnsHandler(t)

	repo.On("CountByStatus", mock.Anything, returns.ReturnStatusPending).Return(int64(3), nil)
	repo.On("CountByStatus", mock.Anything, returns.ReturnStatusApproved).Return(int64(2), nil)
	repo.On("CountByStatus", mock.Anything, returns.ReturnStatusRejected).Return(int64(1), nil)
	repo.On("CountByStatus", mock.Anything, returns.ReturnStatusCompleted).Return(int64(5), nil)
	repo.On("CountByStatus", mock.Anything, returns.ReturnStatusCancelled).Return(int64(0), nil)

	w := performRequest(h.GetStatusSummary, http.MethodGet, "/returns/stats/summary", nil, nil, nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(3), data["pending"])
	assert.Equal(t, float64(11), data["total"])
	repo.AssertExpectations(t)
}
