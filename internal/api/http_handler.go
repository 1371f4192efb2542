package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"marketplace-state-service/internal/aggregate"
	"marketplace-state-service/internal/domain"
	"marketplace-state-service/internal/remote"
	"marketplace-state-service/internal/session"
	"marketplace-state-service/internal/store"
)

// HTTPHandler is the UI-facing command surface: one route per aggregate
// command. It owns input decoding and validation; every domain rule lives
// behind the aggregates.
type HTTPHandler struct {
	cart         *aggregate.Cart
	wishlist     *aggregate.Wishlist
	addresses    *aggregate.AddressBook
	profile      *aggregate.Profile
	subscription *aggregate.Subscription
	catalog      *aggregate.SellerCatalog
	searches     *aggregate.RecentSearches
	session      *session.Lifecycle
	validate     *validator.Validate
	logger       *zap.Logger
}

// Aggregates bundles the handler's dependencies.
type Aggregates struct {
	Cart         *aggregate.Cart
	Wishlist     *aggregate.Wishlist
	Addresses    *aggregate.AddressBook
	Profile      *aggregate.Profile
	Subscription *aggregate.Subscription
	Catalog      *aggregate.SellerCatalog
	Searches     *aggregate.RecentSearches
	Session      *session.Lifecycle
}

// NewHTTPHandler creates a new HTTPHandler with dependencies.
func NewHTTPHandler(deps Aggregates, logger *zap.Logger) *HTTPHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPHandler{
		cart:         deps.Cart,
		wishlist:     deps.Wishlist,
		addresses:    deps.Addresses,
		profile:      deps.Profile,
		subscription: deps.Subscription,
		catalog:      deps.Catalog,
		searches:     deps.Searches,
		session:      deps.Session,
		validate:     validator.New(),
		logger:       logger,
	}
}

// RegisterRoutes mounts every aggregate command under /api/v1.
func (h *HTTPHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Delete("/", h.ClearCart)
			r.Post("/items", h.AddCartItem)
			r.Put("/items/{productId}", h.SetCartQuantity)
			r.Delete("/items/{productId}", h.RemoveCartItem)
		})
		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", h.GetWishlist)
			r.Post("/items", h.AddWishlistItem)
			r.Delete("/items/{productId}", h.RemoveWishlistItem)
		})
		r.Route("/addresses", func(r chi.Router) {
			r.Get("/", h.GetAddresses)
			r.Post("/", h.AddAddress)
			r.Patch("/{addressId}", h.UpdateAddress)
			r.Delete("/{addressId}", h.DeleteAddress)
			r.Post("/{addressId}/default", h.SetDefaultAddress)
		})
		r.Route("/profile", func(r chi.Router) {
			r.Get("/", h.GetProfile)
			r.Patch("/", h.UpdateProfile)
			r.Delete("/", h.ClearProfile)
			r.Patch("/preferences", h.UpdatePreferences)
			r.Put("/preferences/{key}", h.UpdatePreference)
			r.Patch("/seller", h.UpdateSellerProfile)
		})
		r.Route("/subscription", func(r chi.Router) {
			r.Get("/", h.GetSubscription)
			r.Get("/plans", h.ListPlans)
			r.Post("/", h.ActivateSubscription)
			r.Delete("/", h.CancelSubscription)
		})
		r.Route("/seller", func(r chi.Router) {
			r.Get("/catalog", h.GetCatalog)
			r.Post("/products", h.AddProduct)
			r.Patch("/products/{productId}", h.UpdateProduct)
			r.Delete("/products/{productId}", h.DeleteProduct)
			r.Put("/orders/{orderId}/status", h.UpdateOrderStatus)
			r.Post("/orders/sync", h.SyncOrders)
		})
		r.Route("/searches", func(r chi.Router) {
			r.Get("/", h.GetRecentSearches)
			r.Post("/", h.RecordSearch)
			r.Delete("/", h.ClearRecentSearches)
		})
		r.Post("/logout", h.Logout)
	})
}

// --- Helpers ---

// ErrorResponse defines the structure for JSON error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (h *HTTPHandler) respondWithError(w http.ResponseWriter, code int, message string) {
	h.respondWithJSON(w, code, ErrorResponse{Error: message})
}

func (h *HTTPHandler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			h.logger.Error("failed to encode JSON response", zap.Error(err))
		}
	}
}

func (h *HTTPHandler) decodeAndValidate(w http.ResponseWriter, r *http.Request, input interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(input); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return false
	}
	defer r.Body.Close()
	if err := h.validate.Struct(input); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return false
	}
	return true
}

// respondCommand maps an aggregate command result onto the wire. Failure
// kinds translate to status codes; success returns the new snapshot.
func (h *HTTPHandler) respondCommand(w http.ResponseWriter, snapshot interface{}, err error) {
	if err == nil {
		h.respondWithJSON(w, http.StatusOK, snapshot)
		return
	}

	var perr *store.PersistenceError
	var rerr *remote.RemoteError
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrUnknownPlan):
		h.respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		h.respondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrAlreadyExists),
		errors.Is(err, domain.ErrAlreadyActive),
		errors.Is(err, domain.ErrNotSubscribed),
		errors.Is(err, domain.ErrInvalidTransition):
		h.respondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrAuthorization):
		h.respondWithError(w, http.StatusForbidden, err.Error())
	case errors.As(err, &rerr):
		h.logger.Error("remote operation failed", zap.Error(err))
		h.respondWithError(w, http.StatusBadGateway, "Marketplace API unavailable")
	case errors.As(err, &perr):
		h.logger.Error("persistence operation failed", zap.Error(err))
		h.respondWithError(w, http.StatusInternalServerError, "Failed to persist state")
	default:
		h.logger.Error("command failed", zap.Error(err))
		h.respondWithError(w, http.StatusInternalServerError, "Internal error")
	}
}

// --- Cart handlers ---

// CartItemInput defines the expected input for adding a cart line.
type CartItemInput struct {
	ProductID string  `json:"product_id" validate:"required"`
	Name      string  `json:"name" validate:"required,max=255"`
	Price     float64 `json:"price" validate:"gte=0"`
	ImageURL  string  `json:"image_url" validate:"omitempty,url"`
	Category  string  `json:"category" validate:"omitempty,max=100"`
	Quantity  *int    `json:"quantity" validate:"omitempty,gte=1"`
}

func (h *HTTPHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	h.respondWithJSON(w, http.StatusOK, h.cart.Snapshot())
}

func (h *HTTPHandler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var input CartItemInput
	if !h.decodeAndValidate(w, r, &input) {
		return
	}
	qty := 1
	if input.Quantity != nil {
		qty = *input.Quantity
	}
	product := domain.ProductSnapshot{
		ID:       input.ProductID,
		Name:     input.Name,
		Price:    input.Price,
		ImageURL: input.ImageURL,
		Category: input.Category,
	}
	snapshot, err := h.cart.AddItem(r.Context(), product, qty)
	h.respondCommand(w, snapshot, err)
}

// CartQuantityInput defines the expected input for replacing a quantity.
// Zero is allowed and behaves as removal.
type CartQuantityInput struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

func (h *HTTPHandler) SetCartQuantity(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	var input CartQuantityInput
	if !h.decodeAndValidate(w, r, &input) {
		return
	}
	snapshot, err := h.cart.SetQuantity(r.Context(), productID, input.Quantity)
	h.respondCommand(w, snapshot, err)
}

func (h *HTTPHandler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.cart.RemoveItem(r.Context(), chi.URLParam(r, "productId"))
	h.respondCommand(w, snapshot, err)
}

func (h *HTTPHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.cart.Clear(r.Context())
	h.respondCommand(w, snapshot, err)
}

// --- Wishlist handlers ---

func (h *HTTPHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	h.respondWithJSON(w, http.StatusOK, h.wishlist.Snapshot())
}

func (h *HTTPHandler) AddWishlistItem(w http.ResponseWriter, r *http.Request) {
	var input CartItemInput
	if !h.decodeAndValidate(w, r, &input) {
		return
	}
	product := domain.ProductSnapshot{
		ID:       input.ProductID,
		Name:     input.Name,
		Price:    input.Price,
		ImageURL: input.ImageURL,
		Category: input.Category,
	}
	snapshot, err := h.wishlist.Add(r.Context(), product)
	h.respondCommand(w, snapshot, err)
}

func (h *HTTPHandler) RemoveWishlistItem(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.wishlist.Remove(r.Context(), chi.URLParam(r, "productId"))
	h.respondCommand(w, snapshot, err)
}

// --- Address handlers ---

// AddressInput defines the expected input for adding an address.
type AddressInput struct {
	FullName    string `json:"full_name" validate:"required,max=255"`
	PhoneNumber string `json:"phone_number" validate:"omitempty,max=32"`
	Street      string `json:"street" validate:"required,max=255"`
	City        string `json:"city" validate:"required,max=100"`
	State       string `json:"state" validate:"omitempty,max=100"`
	PostalCode  string `json:"postal_code" validate:"omitempty,max=20"`
	Country     string `json:"country" validate:"required,max=100"`
}

func (h *HTTPHandler) GetAddresses(w http.ResponseWriter, r *http.Request) {
	h.respondWithJSON(w, http.StatusOK, h.addresses.Snapshot())
}

func (h *HTTPHandler) AddAddress(w http.ResponseWriter, r *http.Request) {
	var input AddressInput
	if !h.decodeAndValidate(w, r, &input) {
		return
	}
	fields := domain.AddressFields{
		FullName:    input.FullName,
		PhoneNumber: input.PhoneNumber,
		Street:      input.Street,
		City:        input.City,
		State:       input.State,
		PostalCode:  input.PostalCode,
		Country:     input.Country,
	}
	snapshot, err := h.addresses.Add(r.Context(), fields)
	h.respondCommand(w, snapshot, err)
}

func (h *HTTPHandler) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	var patch domain.AddressPatch
	if !h.decodeAndValidate(w, r, &patch) {
		return
	}
	snapshot, err := h.addresses.Update(r.Context(), chi.URLParam(r, "addressId"), patch)
	h.respondCommand(w, snapshot, err)
}

func (h *HTTPHandler) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.addresses.Delete(r.Context(), chi.URLParam(r, "addressId"))
	h.respondCommand(w, snapshot, err)
}

func (h *HTTPHandler) SetDefaultAddress(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.addresses.SetDefault(r.Context(), chi.URLParam(r, "addressId"))
	h.respondCommand(w, snapshot, err)
}

// --- Profile handlers ---

func (h *HTTPHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	h.respondWithJSON(w, http.StatusOK, h.profile.Snapshot())
}

func (h *HTTPHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var patch domain.ProfilePatch
	if !h.decodeAndValidate(w, r, &patch) {
		return
	}
	snapshot, err := h.profile.UpdateProfile(r.Context(), patch)
	h.respondCommand(w, snapshot, err)
}

func (h *HTTPHandler) ClearProfile(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.profile.Clear(r.Context())
	h.respondCommand(w, snapshot, err)
}

func (h *HTTPHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var patch domain.PreferencesPatch
	if !h.decodeAndValidate(w, r, &patch) {
		return
	}
	snapshot, err := h.profile.UpdatePreferences(r.Context(), patch)
	h.respondCommand(w, snapshot, err)
}

// PreferenceValueInput defines the expected input for a single-key
// preference update.
type PreferenceValueInput struct {
	Value *bool `json:"value" validate:"required"`
}

func (h *HTTPHandler) UpdatePreference(w http.ResponseWriter, r *http.Request) {
	var input PreferenceValueInput
	if !h.decodeAndValidate(w, r, &input) {
		return
	}
	snapshot, err := h.profile.UpdatePreference(r.Context(), chi.URLParam(r, "key"), *input.Value)
	h.respondCommand(w, snapshot, err)
}

func (h *HTTPHandler) UpdateSellerProfile(w http.ResponseWriter, r *http.Request) {
	var patch domain.SellerPatch
	if !h.decodeAndValidate(w, r, &patch) {
		return
	}
	snapshot, err := h.profile.UpdateSellerProfile(r.Context(), patch)
	h.respondCommand(w, snapshot, err)
}

// --- Subscription handlers ---

// SubscribeInput defines the expected input for activating a plan.
type SubscribeInput struct {
	PlanID string `json:"plan_id" validate:"required"`
}

func (h *HTTPHandler) GetSubscription(w http.ResponseWriter, r *http.Request) {
	h.respondWithJSON(w, http.StatusOK, h.subscription.Snapshot())
}

func (h *HTTPHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	h.respondWithJSON(w, http.StatusOK, h.subscription.Plans())
}

func (h *HTTPHandler) ActivateSubscription(w http.ResponseWriter, r *http.Request) {
	var input SubscribeInput
	if !h.decodeAndValidate(w, r, &input) {
		return
	}
	snapshot, err := h.subscription.Activate(r.Context(), input.PlanID)
	h.respondCommand(w, snapshot, err)
}

func (h *HTTPHandler) CancelSubscription(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.subscription.Cancel(r.Context())
	h.respondCommand(w, snapshot, err)
}

// --- Seller catalog handlers ---

// ProductInput defines the expected input for adding a catalog product.
type ProductInput struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Description string  `json:"description" validate:"omitempty,max=2000"`
	Price       float64 `json:"price" validate:"gte=0"`
	Stock       int     `json:"stock" validate:"gte=0"`
	Category    string  `json:"category" validate:"omitempty,max=100"`
	ImageURL    string  `json:"image_url" validate:"omitempty,url"`
}

func (h *HTTPHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	h.respondWithJSON(w, http.StatusOK, h.catalog.Snapshot())
}

func (h *HTTPHandler) AddProduct(w http.ResponseWriter, r *http.Request) {
	var input ProductInput
	if !h.decodeAndValidate(w, r, &input) {
		return
	}
	snapshot, err := h.catalog.AddProduct(r.Context(), aggregate.NewProduct{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Stock:       input.Stock,
		Category:    input.Category,
		ImageURL:    input.ImageURL,
	})
	h.respondCommand(w, snapshot, err)
}

func (h *HTTPHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var patch domain.SellerProductPatch
	if !h.decodeAndValidate(w, r, &patch) {
		return
	}
	snapshot, err := h.catalog.UpdateProduct(r.Context(), chi.URLParam(r, "productId"), patch)
	h.respondCommand(w, snapshot, err)
}

func (h *HTTPHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.catalog.DeleteProduct(r.Context(), chi.URLParam(r, "productId"))
	h.respondCommand(w, snapshot, err)
}

// OrderStatusInput defines the expected input for an order status change.
type OrderStatusInput struct {
	Status string `json:"status" validate:"required,oneof=pending processing shipped delivered cancelled"`
}

func (h *HTTPHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var input OrderStatusInput
	if !h.decodeAndValidate(w, r, &input) {
		return
	}
	snapshot, err := h.catalog.UpdateOrderStatus(r.Context(), chi.URLParam(r, "orderId"), domain.OrderStatus(input.Status))
	h.respondCommand(w, snapshot, err)
}

func (h *HTTPHandler) SyncOrders(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.catalog.SyncOrders(r.Context())
	h.respondCommand(w, snapshot, err)
}

// --- Recent search handlers ---

// SearchInput defines the expected input for recording a search.
type SearchInput struct {
	Query string `json:"query" validate:"required,max=255"`
}

func (h *HTTPHandler) GetRecentSearches(w http.ResponseWriter, r *http.Request) {
	h.respondWithJSON(w, http.StatusOK, h.searches.Snapshot())
}

func (h *HTTPHandler) RecordSearch(w http.ResponseWriter, r *http.Request) {
	var input SearchInput
	if !h.decodeAndValidate(w, r, &input) {
		return
	}
	snapshot, err := h.searches.Record(r.Context(), input.Query)
	h.respondCommand(w, snapshot, err)
}

func (h *HTTPHandler) ClearRecentSearches(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.searches.Clear(r.Context())
	h.respondCommand(w, snapshot, err)
}

// --- Session ---

func (h *HTTPHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Logout(r.Context()); err != nil {
		h.logger.Error("logout failed", zap.Error(err))
		h.respondWithError(w, http.StatusInternalServerError, "Failed to clear session state")
		return
	}
	h.respondWithJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}
