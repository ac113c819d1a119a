package draft

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warekit/pricing-api/internal/catalog"
	"github.com/warekit/pricing-api/internal/common"
	"github.com/warekit/pricing-api/internal/pricing"
)

// Handler exposes the order-draft editing endpoints.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
}

type createRequest struct {
	Currency string `json:"currency" validate:"required,alpha,len=3"`
	SaleType string `json:"saleType" validate:"omitempty,oneof=retail wholesale"`
}

type patchRequest struct {
	Currency      *string          `json:"currency" validate:"omitempty,alpha,len=3"`
	SaleType      *string          `json:"saleType" validate:"omitempty,oneof=retail wholesale"`
	DiscountType  *string          `json:"discountType" validate:"omitempty,oneof='' flat rate"`
	DiscountValue *decimal.Decimal `json:"discountValue"`
	TaxEnabled    *bool            `json:"taxEnabled"`
	TaxRate       *decimal.Decimal `json:"taxRate"`
	ShippingCost  *decimal.Decimal `json:"shippingCost"`
	Adjustment    *decimal.Decimal `json:"adjustment"`
	Carrier       *string          `json:"carrier"`
	PaymentMethod *string          `json:"paymentMethod"`
}

type addItemRequest struct {
	ItemType string `json:"itemType" validate:"required,oneof=product variant service bundle"`
	RefID    string `json:"refId" validate:"required,uuid4_rfc4122|uuid_rfc4122"`
	Qty      int    `json:"qty" validate:"required,min=1"`
}

type patchItemRequest struct {
	Field string          `json:"field" validate:"required,oneof=quantity unitPrice discountAmount discountPercent"`
	Value decimal.Decimal `json:"value"`
}

type targetTotalRequest struct {
	GrandTotal decimal.Decimal `json:"grandTotal"`
}

// Create starts a new draft.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "draft service not configured", nil)
		return
	}
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if err := h.validate(req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	view, err := h.Svc.Create(r.Context(), req.Currency, catalog.SaleType(req.SaleType))
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to create draft", nil)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": view})
}

// Get returns a draft with recomputed totals.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "draft service not configured", nil)
		return
	}
	id, ok := h.draftID(w, r)
	if !ok {
		return
	}
	view, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err, "failed to load draft")
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": view})
}

// Patch updates order-level fields. taxRate arrives as a percentage
// (0 to 100) and is converted to the engine fraction here.
func (h *Handler) Patch(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "draft service not configured", nil)
		return
	}
	id, ok := h.draftID(w, r)
	if !ok {
		return
	}
	var req patchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if err := h.validate(req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	patch := OrderPatch{
		Currency:      req.Currency,
		DiscountValue: req.DiscountValue,
		TaxEnabled:    req.TaxEnabled,
		ShippingCost:  req.ShippingCost,
		Adjustment:    req.Adjustment,
		Carrier:       req.Carrier,
		PaymentMethod: req.PaymentMethod,
	}
	if req.SaleType != nil {
		sale := catalog.SaleType(*req.SaleType)
		patch.SaleType = &sale
	}
	if req.DiscountType != nil {
		dt := pricing.DiscountType(*req.DiscountType)
		patch.DiscountType = &dt
	}
	if req.TaxRate != nil {
		if req.TaxRate.IsNegative() || req.TaxRate.GreaterThan(decimal.NewFromInt(100)) {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "taxRate must be between 0 and 100", nil)
			return
		}
		fraction := req.TaxRate.Div(decimal.NewFromInt(100))
		patch.TaxRate = &fraction
	}
	view, err := h.Svc.UpdateOrder(r.Context(), id, patch)
	if err != nil {
		h.writeError(w, err, "failed to update draft")
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": view})
}

// AddItem appends a catalog-referenced line to the draft.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "draft service not configured", nil)
		return
	}
	id, ok := h.draftID(w, r)
	if !ok {
		return
	}
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if err := h.validate(req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	refID, err := uuid.Parse(strings.TrimSpace(req.RefID))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid refId", nil)
		return
	}
	view, err := h.Svc.AddItem(r.Context(), id, catalog.ItemType(req.ItemType), refID, req.Qty)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "catalog entry not found", nil)
			return
		}
		h.writeError(w, err, "failed to add item")
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": view})
}

// PatchItem applies a single-field mutation to one line.
func (h *Handler) PatchItem(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "draft service not configured", nil)
		return
	}
	id, ok := h.draftID(w, r)
	if !ok {
		return
	}
	itemID, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "itemId")))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid item id", nil)
		return
	}
	var req patchItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if err := h.validate(req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	view, err := h.Svc.UpdateItemField(r.Context(), id, itemID, pricing.Field(req.Field), req.Value)
	if err != nil {
		h.writeError(w, err, "failed to update item")
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": view})
}

// DeleteItem removes one line.
func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "draft service not configured", nil)
		return
	}
	id, ok := h.draftID(w, r)
	if !ok {
		return
	}
	itemID, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "itemId")))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid item id", nil)
		return
	}
	view, err := h.Svc.RemoveItem(r.Context(), id, itemID)
	if err != nil {
		h.writeError(w, err, "failed to remove item")
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": view})
}

// TargetTotal applies the reverse-solved flat discount for a desired grand
// total.
func (h *Handler) TargetTotal(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "draft service not configured", nil)
		return
	}
	id, ok := h.draftID(w, r)
	if !ok {
		return
	}
	var req targetTotalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if req.GrandTotal.IsNegative() {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "grandTotal must not be negative", nil)
		return
	}
	view, err := h.Svc.ApplyTargetTotal(r.Context(), id, req.GrandTotal)
	if err != nil {
		h.writeError(w, err, "failed to apply target total")
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": view})
}

func (h *Handler) draftID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "id")))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid draft id", nil)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) validate(payload any) error {
	if h.Validate == nil {
		return nil
	}
	return h.Validate.Struct(payload)
}

func (h *Handler) writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "draft not found", nil)
	case errors.Is(err, ErrItemNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "draft item not found", nil)
	case errors.Is(err, ErrInvalid):
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", fallback, nil)
	}
}
