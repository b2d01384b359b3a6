// Package rest provides HTTP handlers for the checkout service.
package rest

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/gocheckout/internal/checkout"
	checkouterrors "github.com/abgdnv/gocheckout/internal/errors"
	"github.com/abgdnv/gocheckout/internal/service"
	"github.com/abgdnv/gocheckout/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100

	// HeaderReplayed is set on checkout responses served from an earlier request with the same idempotency key.
	HeaderReplayed = "Idempotent-Replayed"
)

type Handler struct {
	service  service.CheckoutService
	validate *validator.Validate
	logger   *slog.Logger
}

// CheckoutResponse is the receipt plus its printed form.
type CheckoutResponse struct {
	*checkout.Receipt
	Text string `json:"text"`
}

// NewHandler creates a new instance of Handler with the provided service.
func NewHandler(service service.CheckoutService, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the checkout service.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", h.FindAllProducts)
		r.Post("/", h.CreateProduct)
		r.Route("/{name}", func(r chi.Router) {
			r.Get("/", h.FindProduct)
			r.Put("/stock", h.Restock)
		})
	})
	r.Route("/api/v1/customers", func(r chi.Router) {
		r.Post("/", h.CreateCustomer)
		r.Get("/{id}", h.FindCustomer)
	})
	r.Group(func(r chi.Router) {
		r.Use(web.AuthMiddleware)
		r.Route("/api/v1/carts", func(r chi.Router) {
			r.Post("/", h.CreateCart)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.FindCart)
				r.Post("/items", h.AddItem)
				r.Post("/checkout", h.Checkout)
			})
		})
	})
	r.Get("/healthz", h.HealthCheck)
}

// FindAllProducts lists the catalog, paged by the optional offset and limit parameters.
func (h *Handler) FindAllProducts(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	offset, ok := web.QueryInt(r, w, mLogger, "offset", 0, web.Gte(0))
	if !ok {
		return
	}
	limit, ok := web.QueryInt(r, w, mLogger, "limit", defaultPageLimit, web.Between(1, maxPageLimit))
	if !ok {
		return
	}

	list, err := h.service.FindAllProducts(r.Context(), offset, limit)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, "Failed to fetch products")
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved product list", "count", len(list))
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// FindProduct retrieves a product by name.
func (h *Handler) FindProduct(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	name := web.PathParam(r, "name")

	found, err := h.service.FindProduct(r.Context(), name)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, fmt.Sprintf("Failed to retrieve product %s", name))
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// CreateProduct adds a product to the catalog.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var dto service.ProductCreateDto
	if !h.decodeAndValidate(w, r, mLogger, &dto) {
		return
	}

	created, err := h.service.CreateProduct(r.Context(), dto)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, "Failed to create product")
		return
	}
	mLogger.InfoContext(r.Context(), "Product created successfully", "name", created.Name)
	web.RespondJSON(w, mLogger, http.StatusCreated, created)
}

// Restock adds stock to a product.
func (h *Handler) Restock(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	name := web.PathParam(r, "name")
	var dto service.RestockDto
	if !h.decodeAndValidate(w, r, mLogger, &dto) {
		return
	}

	updated, err := h.service.Restock(r.Context(), name, dto.Amount)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, fmt.Sprintf("Failed to restock product %s", name))
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, updated)
}

// CreateCustomer registers a customer with an opening balance.
func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var dto service.CustomerCreateDto
	if !h.decodeAndValidate(w, r, mLogger, &dto) {
		return
	}

	created, err := h.service.CreateCustomer(r.Context(), dto)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, "Failed to create customer")
		return
	}
	mLogger.InfoContext(r.Context(), "Customer created successfully", slog.String("ID", created.ID.String()))
	web.RespondJSON(w, mLogger, http.StatusCreated, created)
}

// FindCustomer retrieves a customer by ID.
func (h *Handler) FindCustomer(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}

	found, err := h.service.FindCustomer(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, fmt.Sprintf("Failed to retrieve customer with ID %s", id))
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// CreateCart opens a cart for the calling customer.
func (h *Handler) CreateCart(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	userID, ok := web.GetUserID(w, r, mLogger)
	if !ok {
		return
	}

	created, err := h.service.CreateCart(r.Context(), userID)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, "Failed to create cart")
		return
	}
	mLogger.InfoContext(r.Context(), "Cart created successfully", slog.String("ID", created.ID.String()))
	web.RespondJSON(w, mLogger, http.StatusCreated, created)
}

// FindCart retrieves one of the caller's carts.
func (h *Handler) FindCart(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	userID, ok := web.GetUserID(w, r, mLogger)
	if !ok {
		return
	}

	found, err := h.service.FindCart(r.Context(), userID, id)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, fmt.Sprintf("Failed to retrieve cart with ID %s", id))
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// AddItem adds a product to one of the caller's carts.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	userID, ok := web.GetUserID(w, r, mLogger)
	if !ok {
		return
	}
	var dto service.AddItemDto
	if !h.decodeAndValidate(w, r, mLogger, &dto) {
		return
	}

	updated, err := h.service.AddItem(r.Context(), userID, id, dto)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, fmt.Sprintf("Failed to add item to cart with ID %s", id))
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, updated)
}

// Checkout settles one of the caller's carts. The optional Idempotency-Key header makes retries safe.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	userID, ok := web.GetUserID(w, r, mLogger)
	if !ok {
		return
	}
	key := r.Header.Get(web.HeaderIdempotency)

	mLogger.DebugContext(r.Context(), "Received checkout request", "ID", id, "idempotency_key", key)
	result, err := h.service.Checkout(r.Context(), userID, id, key)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err, fmt.Sprintf("Failed to checkout cart with ID %s", id))
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		w.Header().Set(HeaderReplayed, "true")
		status = http.StatusOK
	}
	web.RespondJSON(w, mLogger, status, CheckoutResponse{Receipt: result.Receipt, Text: result.Receipt.Text()})
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, logger *slog.Logger, dst any) bool {
	if !web.DecodeJSON(w, r, logger, dst) {
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		web.RespondValidation(w, r, logger, err)
		return false
	}
	return true
}

// respondServiceError maps service errors to HTTP statuses. Unknown errors are
// logged and answered with fallback.
func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error, fallback string) {
	var status int
	switch {
	case errors.Is(err, checkouterrors.ErrProductNotFound),
		errors.Is(err, checkouterrors.ErrCustomerNotFound),
		errors.Is(err, checkouterrors.ErrCartNotFound):
		status = http.StatusNotFound
	case errors.Is(err, checkouterrors.ErrAccessDenied):
		status = http.StatusForbidden
	case errors.Is(err, checkouterrors.ErrInsufficientBalance):
		status = http.StatusPaymentRequired
	case errors.Is(err, checkouterrors.ErrInsufficientStock),
		errors.Is(err, checkouterrors.ErrProductExists),
		errors.Is(err, checkouterrors.ErrCheckoutInProgress):
		status = http.StatusConflict
	case service.IsClientError(err):
		status = http.StatusBadRequest
	default:
		logger.ErrorContext(r.Context(), fallback, "error", err)
		web.RespondError(w, logger, http.StatusInternalServerError, fallback)
		return
	}
	logger.WarnContext(r.Context(), "Request rejected", "status", status, "error", err)
	web.RespondError(w, logger, status, err.Error())
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID := middleware.GetReqID(r.Context())
	return h.logger.With("request_id", reqID)
}
