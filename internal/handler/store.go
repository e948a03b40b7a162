package handler

import (
	"net/http"
	"strconv"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/msomdec/store-rating/internal/service"
	"github.com/msomdec/store-rating/internal/view"
)

// StoreHandler serves store listing, creation, rating and the owner dashboard.
type StoreHandler struct {
	stores  *service.StoreService
	ratings *service.RatingService
}

// NewStoreHandler creates a new StoreHandler.
func NewStoreHandler(stores *service.StoreService, ratings *service.RatingService) *StoreHandler {
	return &StoreHandler{stores: stores, ratings: ratings}
}

// HandleList lists stores with their aggregates and the caller's rating.
// GET /api/stores?search=&sortBy=&sortDirection=
func (h *StoreHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := listQuery(r)
	q.Role = ""

	stores, err := h.stores.ListStores(r.Context(), CallerFromContext(r.Context()), q)
	if err != nil {
		writeServiceError(w, r, "list stores", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"stores": toStoreViewDTOs(stores),
	})
}

// HandleSearch patches the store table body with rows matching the search
// signal.
// GET /api/stores/search (datastar)
func (h *StoreHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	var signals struct {
		Search string `json:"search"`
	}
	if err := datastar.ReadSignals(r, &signals); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid signals.")
		return
	}

	stores, err := h.stores.ListStores(r.Context(), CallerFromContext(r.Context()), service.ListQuery{Search: signals.Search})
	if err != nil {
		writeServiceError(w, r, "search stores", err)
		return
	}

	sse := datastar.NewSSE(w, r)
	if err := sse.PatchElementTempl(
		view.StoreRows(stores),
		datastar.WithSelectorID(view.StoreListID),
		datastar.WithModeInner(),
	); err != nil {
		logError(r, "patch store rows", err)
	}
}

// HandleCreate creates a store and promotes its owner when needed.
// POST /api/stores
// Request:  {"name":"...","email":"...","address":"...","ownerEmail":"..."}
func (h *StoreHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req service.NewStore
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	store, err := h.stores.CreateStore(r.Context(), CallerFromContext(r.Context()), req)
	if err != nil {
		writeServiceError(w, r, "create store", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"store": toStoreDTO(store),
	})
}

// HandleRate creates or updates the caller's rating of a store.
// POST /api/stores/{id}/rating
// Request:  {"rating": 1..5}
// Response: 201 on first rating, 200 on update.
func (h *StoreHandler) HandleRate(w http.ResponseWriter, r *http.Request) {
	storeID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || storeID <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid store ID.")
		return
	}

	var req service.RatingInput
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	res, err := h.ratings.SubmitInput(r.Context(), CallerFromContext(r.Context()), storeID, req)
	if err != nil {
		writeServiceError(w, r, "submit rating", err)
		return
	}

	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]any{
		"rating":  toRatingDTO(&res.Rating),
		"created": res.Created,
		"summary": toSummaryDTO(res.Summary),
	})
}

// HandleOwnerDashboard returns the caller's stores with their ratings.
// GET /api/stores/dashboard
func (h *StoreHandler) HandleOwnerDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.stores.OwnerDashboard(r.Context(), CallerFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, "owner dashboard", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"stores":       toOwnedStoreDTOs(d.Stores),
		"totalRatings": d.TotalRatings,
	})
}
