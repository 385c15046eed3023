package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndthanh/storefront/internal/handler"
	"github.com/ndthanh/storefront/internal/order"
)

type mockOrderService struct {
	getByIDFunc             func(ctx context.Context, id uuid.UUID) (*order.Order, error)
	listFunc                func(ctx context.Context) ([]order.Order, error)
	listByUserFunc          func(ctx context.Context, userID uuid.UUID) ([]order.Order, error)
	advanceFunc             func(ctx context.Context, orderID uuid.UUID) (*order.Order, error)
	cancelFunc              func(ctx context.Context, orderID uuid.UUID) (*order.Order, error)
	requestCancellationFunc func(ctx context.Context, orderID, requesterID uuid.UUID, reason string) (*order.Order, error)
	approveCancellationFunc func(ctx context.Context, orderID uuid.UUID) (*order.Order, error)
	rejectCancellationFunc  func(ctx context.Context, orderID uuid.UUID) (*order.Order, error)
	requestReturnFunc       func(ctx context.Context, orderID, requesterID uuid.UUID, reason string) (*order.Order, error)
	acceptReturnFunc        func(ctx context.Context, orderID uuid.UUID) (*order.Order, error)
	confirmPaymentFunc      func(ctx context.Context, orderID uuid.UUID) (*order.Order, error)
}

func (m *mockOrderService) GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockOrderService) List(ctx context.Context) ([]order.Order, error) {
	return m.listFunc(ctx)
}

func (m *mockOrderService) ListByUser(ctx context.Context, userID uuid.UUID) ([]order.Order, error) {
	return m.listByUserFunc(ctx, userID)
}

func (m *mockOrderService) Advance(ctx context.Context, orderID uuid.UUID) (*order.Order, error) {
	return m.advanceFunc(ctx, orderID)
}

func (m *mockOrderService) Cancel(ctx context.Context, orderID uuid.UUID) (*order.Order, error) {
	return m.cancelFunc(ctx, orderID)
}

func (m *mockOrderService) RequestCancellation(ctx context.Context, orderID, requesterID uuid.UUID, reason string) (*order.Order, error) {
	return m.requestCancellationFunc(ctx, orderID, requesterID, reason)
}

func (m *mockOrderService) ApproveCancellation(ctx context.Context, orderID uuid.UUID) (*order.Order, error) {
	return m.approveCancellationFunc(ctx, orderID)
}

func (m *mockOrderService) RejectCancellation(ctx context.Context, orderID uuid.UUID) (*order.Order, error) {
	return m.rejectCancellationFunc(ctx, orderID)
}

func (m *mockOrderService) RequestReturn(ctx context.Context, orderID, requesterID uuid.UUID, reason string) (*order.Order, error) {
	return m.requestReturnFunc(ctx, orderID, requesterID, reason)
}

func (m *mockOrderService) AcceptReturn(ctx context.Context, orderID uuid.UUID) (*order.Order, error) {
	return m.acceptReturnFunc(ctx, orderID)
}

func (m *mockOrderService) ConfirmPayment(ctx context.Context, orderID uuid.UUID) (*order.Order, error) {
	return m.confirmPaymentFunc(ctx, orderID)
}

var (
	customerID = uuid.Must(uuid.FromString("123e4567-e89b-12d3-a456-426614174000"))
	otherID    = uuid.Must(uuid.FromString("9f8a1c44-2f61-4a10-8cce-2e9be1b4d0a3"))
)

func sampleOrder(owner uuid.UUID, status order.Status) order.Order {
	return order.Order{
		ID:            uuid.Must(uuid.NewV4()),
		Code:          "DH00042",
		UserID:        owner,
		Status:        status,
		PaymentMethod: order.PaymentCOD,
		Paid:          true,
	}
}

func customerRouter(svc order.Service) *chi.Mux {
	r := chi.NewRouter()
	handler.NewOrderHandler(svc).RegisterRoutes(r)
	return r
}

func adminRouter(svc order.Service) *chi.Mux {
	r := chi.NewRouter()
	handler.NewAdminOrderHandler(svc).RegisterRoutes(r)
	return r
}

func TestOrderHandler_Get_MasksOtherUsersOrders(t *testing.T) {
	o := sampleOrder(otherID, order.StatusPreparing)
	svc := &mockOrderService{
		getByIDFunc: func(ctx context.Context, id uuid.UUID) (*order.Order, error) {
			copied := o
			return &copied, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/orders/"+o.ID.String(), nil)
	req.Header.Set("X-User-ID", customerID.String())
	rec := httptest.NewRecorder()

	customerRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOrderHandler_Get_ReturnsViewWithPresentation(t *testing.T) {
	o := sampleOrder(customerID, order.StatusShipping)
	svc := &mockOrderService{
		getByIDFunc: func(ctx context.Context, id uuid.UUID) (*order.Order, error) {
			copied := o
			return &copied, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/orders/"+o.ID.String(), nil)
	req.Header.Set("X-User-ID", customerID.String())
	rec := httptest.NewRecorder()

	customerRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var view handler.OrderView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, "Shipping", view.StatusLabel)
	assert.Equal(t, "primary", view.StatusColor)
}

func TestOrderHandler_RequestCancellation_RequiresReason(t *testing.T) {
	o := sampleOrder(customerID, order.StatusPreparing)
	svc := &mockOrderService{}

	req := httptest.NewRequest(http.MethodPost, "/orders/"+o.ID.String()+"/cancel-request", strings.NewReader(`{}`))
	req.Header.Set("X-User-ID", customerID.String())
	rec := httptest.NewRecorder()

	customerRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrderHandler_RequestCancellation_MissingIdentity(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/orders/"+uuid.Must(uuid.NewV4()).String()+"/cancel-request", strings.NewReader(`{"reason":"changed my mind"}`))
	rec := httptest.NewRecorder()

	customerRouter(&mockOrderService{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminOrderHandler_Advance(t *testing.T) {
	o := sampleOrder(customerID, order.StatusShipping)
	svc := &mockOrderService{
		advanceFunc: func(ctx context.Context, orderID uuid.UUID) (*order.Order, error) {
			copied := o
			copied.Status = order.StatusDelivered
			return &copied, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/orders/"+o.ID.String()+"/advance", nil)
	rec := httptest.NewRecorder()

	adminRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var view handler.OrderView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, order.StatusDelivered, view.Status)
}

func TestAdminOrderHandler_Advance_InvalidTransitionIsConflict(t *testing.T) {
	svc := &mockOrderService{
		advanceFunc: func(ctx context.Context, orderID uuid.UUID) (*order.Order, error) {
			return nil, order.ErrInvalidTransition
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/orders/"+uuid.Must(uuid.NewV4()).String()+"/advance", nil)
	rec := httptest.NewRecorder()

	adminRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAdminOrderHandler_ConfirmPayment_AlreadyPaidIsConflict(t *testing.T) {
	svc := &mockOrderService{
		confirmPaymentFunc: func(ctx context.Context, orderID uuid.UUID) (*order.Order, error) {
			return nil, order.ErrAlreadyPaid
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/orders/"+uuid.Must(uuid.NewV4()).String()+"/confirm-payment", nil)
	rec := httptest.NewRecorder()

	adminRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAdminOrderHandler_InvalidID(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/orders/not-a-uuid/advance", nil)
	rec := httptest.NewRecorder()

	adminRouter(&mockOrderService{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
