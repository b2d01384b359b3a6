package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/abgdnv/gocheckout/internal/checkout"
	checkouterrors "github.com/abgdnv/gocheckout/internal/errors"
	"github.com/abgdnv/gocheckout/internal/service"
	"github.com/abgdnv/gocheckout/pkg/web"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockCheckoutService is a mock implementation of the CheckoutService interface
type mockCheckoutService struct {
	product  *service.ProductDto
	products []service.ProductDto
	customer *service.CustomerDto
	cart     *service.CartDto
	result   *service.CheckoutResult
	error    error

	gotOffset, gotLimit int
	gotKey              string
	gotUserID           uuid.UUID
}

func (m *mockCheckoutService) CreateProduct(_ context.Context, _ service.ProductCreateDto) (*service.ProductDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.product, nil
}

func (m *mockCheckoutService) FindProduct(_ context.Context, _ string) (*service.ProductDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.product, nil
}

func (m *mockCheckoutService) FindAllProducts(_ context.Context, offset, limit int) ([]service.ProductDto, error) {
	m.gotOffset, m.gotLimit = offset, limit
	if m.error != nil {
		return nil, m.error
	}
	return m.products, nil
}

func (m *mockCheckoutService) Restock(_ context.Context, _ string, _ int) (*service.ProductDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.product, nil
}

func (m *mockCheckoutService) CreateCustomer(_ context.Context, _ service.CustomerCreateDto) (*service.CustomerDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.customer, nil
}

func (m *mockCheckoutService) FindCustomer(_ context.Context, _ uuid.UUID) (*service.CustomerDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.customer, nil
}

func (m *mockCheckoutService) CreateCart(_ context.Context, customerID uuid.UUID) (*service.CartDto, error) {
	m.gotUserID = customerID
	if m.error != nil {
		return nil, m.error
	}
	return m.cart, nil
}

func (m *mockCheckoutService) FindCart(_ context.Context, customerID, _ uuid.UUID) (*service.CartDto, error) {
	m.gotUserID = customerID
	if m.error != nil {
		return nil, m.error
	}
	return m.cart, nil
}

func (m *mockCheckoutService) AddItem(_ context.Context, customerID, _ uuid.UUID, _ service.AddItemDto) (*service.CartDto, error) {
	m.gotUserID = customerID
	if m.error != nil {
		return nil, m.error
	}
	return m.cart, nil
}

func (m *mockCheckoutService) Checkout(_ context.Context, customerID, _ uuid.UUID, key string) (*service.CheckoutResult, error) {
	m.gotUserID, m.gotKey = customerID, key
	if m.error != nil {
		return nil, m.error
	}
	return m.result, nil
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type ValidationErrorResponse struct {
	ValidationErrors map[string]string `json:"validation_errors"`
}

// toJSON is a helper function to convert a struct to JSON string
func toJSON(t *testing.T, v interface{}) string {
	t.Helper()
	bytes, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal to JSON: %v", err)
	}
	return string(bytes)
}

func newTestHandler(m *mockCheckoutService) *Handler {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return NewHandler(m, logger)
}

func withUser(req *http.Request, userID uuid.UUID) *http.Request {
	ctx := context.WithValue(req.Context(), web.UserIDKey, userID.String())
	return req.WithContext(ctx)
}

func Test_Handler_FindProduct(t *testing.T) {
	weight := decimal.NewFromInt(15)
	tv := &service.ProductDto{Name: "TV", Kind: "shippable", Price: decimal.NewFromInt(500), Stock: 3, WeightKg: &weight, Available: true}
	testCases := []struct {
		name         string
		mockService  mockCheckoutService
		productName  string
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Success - product found",
			mockService:  mockCheckoutService{product: tv},
			productName:  "TV",
			expectedCode: http.StatusOK,
			expectedBody: toJSON(t, tv),
		},
		{
			name:         "Error - product not found",
			mockService:  mockCheckoutService{error: checkouterrors.ErrProductNotFound},
			productName:  "Radio",
			expectedCode: http.StatusNotFound,
			expectedBody: toJSON(t, ErrorResponse{Error: checkouterrors.ErrProductNotFound.Error()}),
		},
		{
			name:         "Error - service error",
			mockService:  mockCheckoutService{error: errors.New("boom")},
			productName:  "TV",
			expectedCode: http.StatusInternalServerError,
			expectedBody: toJSON(t, ErrorResponse{Error: "Failed to retrieve product TV"}),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			api := newTestHandler(&tc.mockService)
			req := httptest.NewRequest(http.MethodGet, "/api/v1/products/"+tc.productName, nil)
			req.SetPathValue("name", tc.productName)
			rr := httptest.NewRecorder()

			// when
			api.FindProduct(rr, req)

			// then
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
			assert.JSONEq(t, tc.expectedBody, rr.Body.String(), "response body should match")
		})
	}
}

func Test_Handler_FindAllProducts(t *testing.T) {
	testCases := []struct {
		name           string
		query          string
		mockService    mockCheckoutService
		expectedCode   int
		expectedBody   string
		expectedOffset int
		expectedLimit  int
	}{
		{
			name:           "Success - defaults",
			query:          "",
			mockService:    mockCheckoutService{products: []service.ProductDto{}},
			expectedCode:   http.StatusOK,
			expectedBody:   `[]`,
			expectedOffset: 0,
			expectedLimit:  defaultPageLimit,
		},
		{
			name:           "Success - paged",
			query:          "?offset=2&limit=5",
			mockService:    mockCheckoutService{products: []service.ProductDto{{Name: "TV", Kind: "shippable", Price: decimal.NewFromInt(1)}}},
			expectedCode:   http.StatusOK,
			expectedBody:   toJSON(t, []service.ProductDto{{Name: "TV", Kind: "shippable", Price: decimal.NewFromInt(1)}}),
			expectedOffset: 2,
			expectedLimit:  5,
		},
		{
			name:         "Error - negative offset",
			query:        "?offset=-1",
			expectedCode: http.StatusBadRequest,
			expectedBody: toJSON(t, ErrorResponse{Error: "Invalid offset number: -1"}),
		},
		{
			name:         "Error - limit too large",
			query:        "?limit=1000",
			expectedCode: http.StatusBadRequest,
			expectedBody: toJSON(t, ErrorResponse{Error: "Invalid limit number: 1000"}),
		},
		{
			name:         "Error - limit not a number",
			query:        "?limit=ten",
			expectedCode: http.StatusBadRequest,
			expectedBody: toJSON(t, ErrorResponse{Error: "Invalid limit number: ten"}),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			api := newTestHandler(&tc.mockService)
			req := httptest.NewRequest(http.MethodGet, "/api/v1/products"+tc.query, nil)
			rr := httptest.NewRecorder()

			// when
			api.FindAllProducts(rr, req)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
			assert.JSONEq(t, tc.expectedBody, rr.Body.String(), "response body should match")
			if tc.expectedCode == http.StatusOK {
				assert.Equal(t, tc.expectedOffset, tc.mockService.gotOffset)
				assert.Equal(t, tc.expectedLimit, tc.mockService.gotLimit)
			}
		})
	}
}

func Test_Handler_CreateProduct(t *testing.T) {
	created := &service.ProductDto{Name: "Voucher", Kind: "digital", Price: decimal.NewFromInt(5), Stock: 1, Available: true}
	testCases := []struct {
		name         string
		body         string
		mockService  mockCheckoutService
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Success - product created",
			body:         `{"kind":"digital","name":"Voucher","price":5,"stock":1}`,
			mockService:  mockCheckoutService{product: created},
			expectedCode: http.StatusCreated,
			expectedBody: toJSON(t, created),
		},
		{
			name:         "Error - invalid request body",
			body:         `{"kind":`,
			expectedCode: http.StatusBadRequest,
			expectedBody: toJSON(t, ErrorResponse{Error: "Invalid request body"}),
		},
		{
			name:         "Error - unknown field",
			body:         `{"kind":"digital","name":"Voucher","colour":"red"}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: toJSON(t, ErrorResponse{Error: "Invalid request body"}),
		},
		{
			name:         "Error - validation failed",
			body:         `{"kind":"service","name":"","price":5,"stock":-1,"expiry":"tomorrow"}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: toJSON(t, ValidationErrorResponse{ValidationErrors: map[string]string{
				"Kind":   "failed on rule: oneof",
				"Name":   "failed on rule: required",
				"Stock":  "failed on rule: min",
				"Expiry": "failed on rule: datetime",
			}}),
		},
		{
			name:         "Error - duplicate product",
			body:         `{"kind":"digital","name":"Voucher","price":5,"stock":1}`,
			mockService:  mockCheckoutService{error: checkouterrors.ErrProductExists},
			expectedCode: http.StatusConflict,
			expectedBody: toJSON(t, ErrorResponse{Error: checkouterrors.ErrProductExists.Error()}),
		},
		{
			name:         "Error - invalid product",
			body:         `{"kind":"digital","name":"Voucher","price":-5,"stock":1}`,
			mockService:  mockCheckoutService{error: checkouterrors.ErrInvalidProduct},
			expectedCode: http.StatusBadRequest,
			expectedBody: toJSON(t, ErrorResponse{Error: checkouterrors.ErrInvalidProduct.Error()}),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			api := newTestHandler(&tc.mockService)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/products", strings.NewReader(tc.body))
			rr := httptest.NewRecorder()

			// when
			api.CreateProduct(rr, req)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
			assert.JSONEq(t, tc.expectedBody, rr.Body.String(), "response body should match")
		})
	}
}

func Test_Handler_Restock(t *testing.T) {
	restocked := &service.ProductDto{Name: "TV", Kind: "shippable", Price: decimal.NewFromInt(500), Stock: 5, Available: true}
	testCases := []struct {
		name         string
		body         string
		mockService  mockCheckoutService
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Success - restocked",
			body:         `{"amount":2}`,
			mockService:  mockCheckoutService{product: restocked},
			expectedCode: http.StatusOK,
			expectedBody: toJSON(t, restocked),
		},
		{
			name:         "Error - amount missing",
			body:         `{}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: toJSON(t, ValidationErrorResponse{ValidationErrors: map[string]string{"Amount": "failed on rule: required"}}),
		},
		{
			name:         "Error - product not found",
			body:         `{"amount":2}`,
			mockService:  mockCheckoutService{error: checkouterrors.ErrProductNotFound},
			expectedCode: http.StatusNotFound,
			expectedBody: toJSON(t, ErrorResponse{Error: checkouterrors.ErrProductNotFound.Error()}),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			api := newTestHandler(&tc.mockService)
			req := httptest.NewRequest(http.MethodPut, "/api/v1/products/TV/stock", strings.NewReader(tc.body))
			req.SetPathValue("name", "TV")
			rr := httptest.NewRecorder()

			// when
			api.Restock(rr, req)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
			assert.JSONEq(t, tc.expectedBody, rr.Body.String(), "response body should match")
		})
	}
}

func Test_Handler_Customers(t *testing.T) {
	customerID := uuid.MustParse("123e4567-e89b-12d3-a456-426614174001")
	dto := &service.CustomerDto{ID: customerID, Name: "Ahmad Hassan", Balance: decimal.NewFromInt(2000)}

	t.Run("create", func(t *testing.T) {
		// given
		api := newTestHandler(&mockCheckoutService{customer: dto})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/customers", strings.NewReader(`{"name":"Ahmad Hassan","balance":"2000"}`))
		rr := httptest.NewRecorder()

		// when
		api.CreateCustomer(rr, req)

		// then
		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.JSONEq(t, toJSON(t, dto), rr.Body.String())
	})

	t.Run("create without name", func(t *testing.T) {
		api := newTestHandler(&mockCheckoutService{customer: dto})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/customers", strings.NewReader(`{"balance":"2000"}`))
		rr := httptest.NewRecorder()

		api.CreateCustomer(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.JSONEq(t, toJSON(t, ValidationErrorResponse{ValidationErrors: map[string]string{"Name": "failed on rule: required"}}), rr.Body.String())
	})

	t.Run("create with negative balance", func(t *testing.T) {
		api := newTestHandler(&mockCheckoutService{error: checkouterrors.ErrInvalidCustomer})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/customers", strings.NewReader(`{"name":"Ahmad Hassan","balance":-1}`))
		rr := httptest.NewRecorder()

		api.CreateCustomer(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("find", func(t *testing.T) {
		api := newTestHandler(&mockCheckoutService{customer: dto})
		req := httptest.NewRequest(http.MethodGet, "/api/v1/customers/"+customerID.String(), nil)
		req.SetPathValue("id", customerID.String())
		rr := httptest.NewRecorder()

		api.FindCustomer(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, toJSON(t, dto), rr.Body.String())
	})

	t.Run("find with invalid id", func(t *testing.T) {
		api := newTestHandler(&mockCheckoutService{customer: dto})
		req := httptest.NewRequest(http.MethodGet, "/api/v1/customers/123-invalid-id", nil)
		req.SetPathValue("id", "123-invalid-id")
		rr := httptest.NewRecorder()

		api.FindCustomer(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.JSONEq(t, toJSON(t, ErrorResponse{Error: "Invalid ID: 123-invalid-id"}), rr.Body.String())
	})

	t.Run("find missing", func(t *testing.T) {
		api := newTestHandler(&mockCheckoutService{error: checkouterrors.ErrCustomerNotFound})
		req := httptest.NewRequest(http.MethodGet, "/api/v1/customers/"+customerID.String(), nil)
		req.SetPathValue("id", customerID.String())
		rr := httptest.NewRecorder()

		api.FindCustomer(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func Test_Handler_AddItem(t *testing.T) {
	cartID := uuid.MustParse("123e4567-e89b-12d3-a456-426614174000")
	userID := uuid.MustParse("123e4567-e89b-12d3-a456-426614174001")
	cartDto := &service.CartDto{
		ID:         cartID,
		CustomerID: userID,
		Lines:      []service.CartLineDto{{Name: "TV", Quantity: 1, UnitPrice: decimal.NewFromInt(500), Total: decimal.NewFromInt(500)}},
		Subtotal:   decimal.NewFromInt(500),
		Shipping:   decimal.NewFromInt(150),
		Total:      decimal.NewFromInt(650),
	}
	testCases := []struct {
		name         string
		mockService  mockCheckoutService
		userID       uuid.UUID
		body         string
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Success - item added",
			mockService:  mockCheckoutService{cart: cartDto},
			userID:       userID,
			body:         `{"name":"TV","quantity":1}`,
			expectedCode: http.StatusOK,
			expectedBody: toJSON(t, cartDto),
		},
		{
			name:         "Error - missing user",
			mockService:  mockCheckoutService{cart: cartDto},
			userID:       uuid.Nil,
			body:         `{"name":"TV","quantity":1}`,
			expectedCode: http.StatusUnauthorized,
			expectedBody: toJSON(t, ErrorResponse{Error: "Unauthorized: Missing or invalid user ID"}),
		},
		{
			name:         "Error - zero quantity",
			mockService:  mockCheckoutService{cart: cartDto},
			userID:       userID,
			body:         `{"name":"TV","quantity":0}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: toJSON(t, ValidationErrorResponse{ValidationErrors: map[string]string{"Quantity": "failed on rule: required"}}),
		},
		{
			name:         "Error - invalid item",
			mockService:  mockCheckoutService{error: checkouterrors.ErrInvalidItem},
			userID:       userID,
			body:         `{"name":"TV","quantity":10}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: toJSON(t, ErrorResponse{Error: checkouterrors.ErrInvalidItem.Error()}),
		},
		{
			name:         "Error - access denied",
			mockService:  mockCheckoutService{error: checkouterrors.ErrAccessDenied},
			userID:       userID,
			body:         `{"name":"TV","quantity":1}`,
			expectedCode: http.StatusForbidden,
			expectedBody: toJSON(t, ErrorResponse{Error: checkouterrors.ErrAccessDenied.Error()}),
		},
		{
			name:         "Error - cart not found",
			mockService:  mockCheckoutService{error: checkouterrors.ErrCartNotFound},
			userID:       userID,
			body:         `{"name":"TV","quantity":1}`,
			expectedCode: http.StatusNotFound,
			expectedBody: toJSON(t, ErrorResponse{Error: checkouterrors.ErrCartNotFound.Error()}),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			api := newTestHandler(&tc.mockService)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/carts/"+cartID.String()+"/items", strings.NewReader(tc.body))
			if tc.userID != uuid.Nil {
				req = withUser(req, tc.userID)
			}
			req.SetPathValue("id", cartID.String())
			rr := httptest.NewRecorder()

			// when
			api.AddItem(rr, req)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
			assert.JSONEq(t, tc.expectedBody, rr.Body.String(), "response body should match")
		})
	}
}

func Test_Handler_Checkout(t *testing.T) {
	cartID := uuid.MustParse("123e4567-e89b-12d3-a456-426614174000")
	userID := uuid.MustParse("123e4567-e89b-12d3-a456-426614174001")
	receipt := &checkout.Receipt{
		OrderID:      uuid.MustParse("123e4567-e89b-12d3-a456-426614174009"),
		CustomerID:   userID,
		CustomerName: "Ahmad Hassan",
		Lines:        []checkout.ReceiptLine{{Quantity: 1, Name: "TV", Total: decimal.NewFromInt(500)}},
		Subtotal:     decimal.NewFromInt(500),
		Shipping:     decimal.NewFromInt(150),
		Amount:       decimal.NewFromInt(650),
		Balance:      decimal.NewFromInt(1350),
		CompletedAt:  time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC),
	}
	testCases := []struct {
		name             string
		mockService      mockCheckoutService
		idempotencyKey   string
		expectedCode     int
		expectedReplayed string
		expectedError    string
	}{
		{
			name:         "Success - checkout completed",
			mockService:  mockCheckoutService{result: &service.CheckoutResult{Receipt: receipt}},
			expectedCode: http.StatusCreated,
		},
		{
			name:             "Success - replayed",
			mockService:      mockCheckoutService{result: &service.CheckoutResult{Receipt: receipt, Replayed: true}},
			idempotencyKey:   "key-1",
			expectedCode:     http.StatusOK,
			expectedReplayed: "true",
		},
		{
			name:          "Error - empty cart",
			mockService:   mockCheckoutService{error: checkouterrors.ErrEmptyCart},
			expectedCode:  http.StatusBadRequest,
			expectedError: checkouterrors.ErrEmptyCart.Error(),
		},
		{
			name:          "Error - insufficient balance",
			mockService:   mockCheckoutService{error: checkouterrors.ErrInsufficientBalance},
			expectedCode:  http.StatusPaymentRequired,
			expectedError: checkouterrors.ErrInsufficientBalance.Error(),
		},
		{
			name:          "Error - insufficient stock",
			mockService:   mockCheckoutService{error: checkouterrors.ErrInsufficientStock},
			expectedCode:  http.StatusConflict,
			expectedError: checkouterrors.ErrInsufficientStock.Error(),
		},
		{
			name:           "Error - checkout in progress",
			mockService:    mockCheckoutService{error: checkouterrors.ErrCheckoutInProgress},
			idempotencyKey: "key-1",
			expectedCode:   http.StatusConflict,
			expectedError:  checkouterrors.ErrCheckoutInProgress.Error(),
		},
		{
			name:          "Error - service error",
			mockService:   mockCheckoutService{error: errors.New("boom")},
			expectedCode:  http.StatusInternalServerError,
			expectedError: "Failed to checkout cart with ID " + cartID.String(),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			api := newTestHandler(&tc.mockService)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/carts/"+cartID.String()+"/checkout", nil)
			req = withUser(req, userID)
			req.SetPathValue("id", cartID.String())
			if tc.idempotencyKey != "" {
				req.Header.Set(web.HeaderIdempotency, tc.idempotencyKey)
			}
			rr := httptest.NewRecorder()

			// when
			api.Checkout(rr, req)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
			assert.Equal(t, tc.idempotencyKey, tc.mockService.gotKey)
			assert.Equal(t, userID, tc.mockService.gotUserID)
			if tc.expectedError != "" {
				assert.JSONEq(t, toJSON(t, ErrorResponse{Error: tc.expectedError}), rr.Body.String())
				return
			}
			assert.Equal(t, tc.expectedReplayed, rr.Header().Get(HeaderReplayed))
			var got struct {
				OrderID uuid.UUID `json:"order_id"`
				Amount  string    `json:"amount"`
				Text    string    `json:"text"`
			}
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
			assert.Equal(t, receipt.OrderID, got.OrderID)
			assert.Equal(t, "650", got.Amount)
			assert.Equal(t, receipt.Text(), got.Text)
		})
	}
}

func Test_Handler_HealthCheck(t *testing.T) {
	api := newTestHandler(&mockCheckoutService{})
	rr := httptest.NewRecorder()

	api.HealthCheck(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
}
