package discount

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warekit/pricing-api/internal/common"
)

// Handler exposes administrative discount catalog endpoints.
type Handler struct {
	Svc *Service
}

type rulePayload struct {
	Label       string          `json:"label"`
	Kind        string          `json:"kind"`
	Scope       string          `json:"scope"`
	Status      string          `json:"status"`
	Percentage  decimal.Decimal `json:"percentage"`
	FixedAmount decimal.Decimal `json:"fixedAmount"`
	BuyQty      int             `json:"buyQty"`
	GetQty      int             `json:"getQty"`
	ProductID   *string         `json:"productId"`
	ProductIDs  []string        `json:"productIds"`
	CategoryID  string          `json:"categoryId"`
	StartDate   *time.Time      `json:"startDate"`
	EndDate     *time.Time      `json:"endDate"`
}

type previewRequest struct {
	ProductID  string          `json:"productId"`
	CategoryID string          `json:"categoryId"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	Qty        int             `json:"qty"`
}

// List returns the catalog one page at a time.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "discount service not configured", nil)
		return
	}
	rules, err := h.Svc.List(r.Context())
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to list discounts", nil)
		return
	}
	page, perPage := common.ParsePagination(r, 50)
	total := len(rules)
	start, end := common.PageBounds(page, perPage, total)
	pageRules := rules[start:end]
	if pageRules == nil {
		pageRules = []Rule{}
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data": pageRules,
		"meta": common.Pagination{Page: page, PerPage: perPage, TotalItems: total},
	})
}

// Get returns a single rule by id.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "discount service not configured", nil)
		return
	}
	id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "id")))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid discount id", nil)
		return
	}
	rule, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "discount not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to load discount", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": rule})
}

// Create inserts a new discount rule.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "discount service not configured", nil)
		return
	}
	var payload rulePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	rule, err := ruleFromPayload(uuid.Nil, payload)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	created, err := h.Svc.Create(r.Context(), rule)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": created})
}

// Update replaces an existing rule.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "discount service not configured", nil)
		return
	}
	id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "id")))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid discount id", nil)
		return
	}
	var payload rulePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	rule, err := ruleFromPayload(id, payload)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	updated, err := h.Svc.Update(r.Context(), rule)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "discount not found", nil)
			return
		}
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": updated})
}

// Delete removes a rule.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "discount service not configured", nil)
		return
	}
	id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "id")))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid discount id", nil)
		return
	}
	if err := h.Svc.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "discount not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to delete discount", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{"deleted": true}})
}

// Preview resolves the discount effect for a hypothetical line without
// touching any draft.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "discount service not configured", nil)
		return
	}
	var req previewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	productID, err := uuid.Parse(strings.TrimSpace(req.ProductID))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid product id", nil)
		return
	}
	if req.Qty <= 0 {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "qty must be positive", nil)
		return
	}
	res, err := h.Svc.ForItem(r.Context(), productID, req.CategoryID, req.UnitPrice, req.Qty)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to resolve discount", nil)
		return
	}
	if res == nil {
		common.JSON(w, http.StatusOK, map[string]any{"data": nil})
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": res})
}

func ruleFromPayload(id uuid.UUID, p rulePayload) (Rule, error) {
	rule := Rule{
		ID:          id,
		Label:       strings.TrimSpace(p.Label),
		Kind:        Kind(strings.TrimSpace(p.Kind)),
		Scope:       Scope(strings.TrimSpace(p.Scope)),
		Status:      Status(strings.TrimSpace(p.Status)),
		Percentage:  p.Percentage,
		FixedAmount: p.FixedAmount,
		BuyQty:      p.BuyQty,
		GetQty:      p.GetQty,
		CategoryID:  strings.TrimSpace(p.CategoryID),
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
	}
	if p.ProductID != nil && strings.TrimSpace(*p.ProductID) != "" {
		parsed, err := uuid.Parse(strings.TrimSpace(*p.ProductID))
		if err != nil {
			return Rule{}, errors.New("invalid productId")
		}
		rule.ProductID = &parsed
	}
	for _, raw := range p.ProductIDs {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		parsed, err := uuid.Parse(trimmed)
		if err != nil {
			return Rule{}, errors.New("invalid productIds entry")
		}
		rule.ProductIDs = append(rule.ProductIDs, parsed)
	}
	return rule, nil
}
